package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"cabinet-suite-core/internal/infrastructure/database/mongodb"
	"cabinet-suite-core/internal/infrastructure/database/postgres"
	"cabinet-suite-core/internal/infrastructure/database/redis"

	"github.com/joho/godotenv"
)

// Uniquement variables d'environnement

// Config structure unifiée
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	MongoDB     MongoConfig
	Session     SessionConfig
	Activation  ActivationConfig
	Developer   DeveloperConfig
	Storage     StorageConfig
	Agenda      AgendaConfig
	Facturation FacturationConfig
	Scheduler   SchedulerConfig
	Bootstrap   BootstrapConfig
	Logging     LoggingConfig
	CORS        CORSConfig
}

// ServerConfig configuration serveur HTTP
type ServerConfig struct {
	Host         string        `env:"SERVER_HOST"`
	Port         int           `env:"SERVER_PORT"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT"`
}

// DatabaseConfig configuration PostgreSQL
type DatabaseConfig struct {
	Host           string        `env:"DB_HOST"`
	Port           int           `env:"DB_PORT"`
	Database       string        `env:"DB_NAME"`
	Username       string        `env:"DB_USERNAME"`
	Password       string        `env:"DB_PASSWORD"`
	MaxConnections int           `env:"DB_MAX_CONNECTIONS"`
	ConnectionTTL  time.Duration `env:"DB_CONNECTION_TTL"`
	QueryTimeout   time.Duration `env:"DB_QUERY_TIMEOUT"`
	SSLMode        string        `env:"DB_SSL_MODE"`
}

// RedisConfig configuration Redis
type RedisConfig struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD"`
	Database int    `env:"REDIS_DATABASE"`
	PoolSize int    `env:"REDIS_POOL_SIZE"`
}

// MongoConfig configuration MongoDB
type MongoConfig struct {
	URI            string        `env:"MONGODB_URI"`
	Database       string        `env:"MONGODB_DATABASE"`
	ConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT"`
	MaxPoolSize    int           `env:"MONGODB_MAX_POOL_SIZE"`
}

// SessionConfig sessions et limitation des tentatives de connexion
type SessionConfig struct {
	TTL              time.Duration `env:"SESSION_TTL"`
	MaxLoginAttempts int           `env:"SESSION_MAX_LOGIN_ATTEMPTS"`
	LockoutWindow    time.Duration `env:"SESSION_LOCKOUT_WINDOW"`
}

// ActivationConfig licences et clés d'activation
type ActivationConfig struct {
	SigningSecret string        `env:"ACTIVATION_SIGNING_SECRET"`
	MasterKey     string        `env:"ACTIVATION_MASTER_KEY"`
	TrialDays     int           `env:"ACTIVATION_TRIAL_DAYS"`
	CacheTTL      time.Duration `env:"ACTIVATION_CACHE_TTL"`
	WarningDays   int           `env:"ACTIVATION_WARNING_DAYS"`
}

// DeveloperConfig accès aux routes d'émission de clés
type DeveloperConfig struct {
	Token string `env:"DEVELOPER_TOKEN"`
}

// StorageConfig répertoire racine des fichiers par cabinet
type StorageConfig struct {
	BaseDir        string `env:"STORAGE_BASE_DIR"`
	MaxUploadBytes int64  `env:"STORAGE_MAX_UPLOAD_BYTES"`
}

// AgendaConfig horaires d'ouverture et grille des créneaux
type AgendaConfig struct {
	Ouverture    string `env:"AGENDA_OUVERTURE"`
	Fermeture    string `env:"AGENDA_FERMETURE"`
	SlotMinutes  int    `env:"AGENDA_SLOT_MINUTES"`
	HorizonJours int    `env:"AGENDA_BOOKING_HORIZON_DAYS"`
	TimezoneName string `env:"AGENDA_TIMEZONE"`
	Location     *time.Location
}

// FacturationConfig présentation des montants (stockés en centimes)
type FacturationConfig struct {
	Devise string `env:"FACTURATION_DEVISE"`
}

// SchedulerConfig tâches de fond
type SchedulerConfig struct {
	Enabled          bool          `env:"SCHEDULER_ENABLED"`
	NoShowInterval   time.Duration `env:"SCHEDULER_NOSHOW_INTERVAL"`
	LicenceInterval  time.Duration `env:"SCHEDULER_LICENCE_INTERVAL"`
	CleanupInterval  time.Duration `env:"SCHEDULER_CLEANUP_INTERVAL"`
	ExportsRetention time.Duration `env:"SCHEDULER_EXPORTS_RETENTION"`
}

// BootstrapConfig phases exécutées avant le serveur HTTP
type BootstrapConfig struct {
	AutoMigrate  bool `env:"BOOTSTRAP_AUTO_MIGRATE"`
	SeedDemoData bool `env:"SEED_DEMO_DATA"`
}

// LoggingConfig configuration logging
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL"`
}

// CORSConfig configuration CORS
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"`
	MaxAge           int      `env:"CORS_MAX_AGE"`
}

// NewConfig charge la configuration depuis les variables d'environnement uniquement
func NewConfig() (*Config, error) {
	// Charger le fichier .env (optionnel)
	if err := godotenv.Load(".env"); err != nil {
		fmt.Printf("[CONFIG] Warning: Fichier .env non trouvé: %v\n", err)
	}

	return Load()
}

// Load construit la configuration à partir de l'environnement courant, sans lire de fichier
func Load() (*Config, error) {
	config := &Config{}

	config.Environment = getEnv("APP_ENV", "development")

	config.Server = ServerConfig{
		Host:         getEnv("SERVER_HOST", "localhost"),
		Port:         getEnvInt("SERVER_PORT", 4000),
		ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 30) * time.Second,
		WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 60) * time.Second,
	}

	config.Database = DatabaseConfig{
		Host:           getEnv("DB_HOST", "localhost"),
		Port:           getEnvInt("DB_PORT", 5432),
		Database:       getEnv("DB_NAME", "cabinet_suite"),
		Username:       getEnv("DB_USERNAME", "postgres"),
		Password:       getEnv("DB_PASSWORD", ""),
		MaxConnections: getEnvInt("DB_MAX_CONNECTIONS", 25),
		ConnectionTTL:  getEnvDuration("DB_CONNECTION_TTL", 300) * time.Second,
		QueryTimeout:   getEnvDuration("DB_QUERY_TIMEOUT", 30) * time.Second,
		SSLMode:        getEnv("DB_SSL_MODE", "disable"),
	}

	config.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnvInt("REDIS_PORT", 6379),
		Password: getEnv("REDIS_PASSWORD", ""),
		Database: getEnvInt("REDIS_DATABASE", 0),
		PoolSize: getEnvInt("REDIS_POOL_SIZE", 10),
	}

	defaultMongoURI := ""
	if config.Environment == "development" {
		defaultMongoURI = "mongodb://localhost:27017"
	}
	config.MongoDB = MongoConfig{
		URI:            getEnv("MONGODB_URI", defaultMongoURI),
		Database:       getEnv("MONGODB_DATABASE", "cabinet_suite"),
		ConnectTimeout: getEnvDuration("MONGODB_CONNECT_TIMEOUT", 10) * time.Second,
		MaxPoolSize:    getEnvInt("MONGODB_MAX_POOL_SIZE", 50),
	}

	config.Session = SessionConfig{
		TTL:              getEnvDuration("SESSION_TTL", 8*3600) * time.Second,
		MaxLoginAttempts: getEnvInt("SESSION_MAX_LOGIN_ATTEMPTS", 5),
		LockoutWindow:    getEnvDuration("SESSION_LOCKOUT_WINDOW", 15*60) * time.Second,
	}

	config.Activation = ActivationConfig{
		SigningSecret: getEnv("ACTIVATION_SIGNING_SECRET", ""),
		MasterKey:     strings.ToUpper(strings.TrimSpace(getEnv("ACTIVATION_MASTER_KEY", ""))),
		TrialDays:     getEnvInt("ACTIVATION_TRIAL_DAYS", 15),
		CacheTTL:      getEnvDuration("ACTIVATION_CACHE_TTL", 300) * time.Second,
		WarningDays:   getEnvInt("ACTIVATION_WARNING_DAYS", 7),
	}
	if config.Environment == "development" {
		if config.Activation.SigningSecret == "" {
			config.Activation.SigningSecret = "development-only-signing-secret"
		}
		if _, set := os.LookupEnv("ACTIVATION_MASTER_KEY"); !set {
			config.Activation.MasterKey = "0000-0000-0000-0000"
		}
	}

	config.Developer = DeveloperConfig{
		Token: getEnv("DEVELOPER_TOKEN", ""),
	}

	config.Storage = StorageConfig{
		BaseDir:        getEnv("STORAGE_BASE_DIR", "./data"),
		MaxUploadBytes: int64(getEnvInt("STORAGE_MAX_UPLOAD_BYTES", 5<<20)),
	}

	config.Agenda = AgendaConfig{
		Ouverture:    getEnv("AGENDA_OUVERTURE", "08:00"),
		Fermeture:    getEnv("AGENDA_FERMETURE", "18:00"),
		SlotMinutes:  getEnvInt("AGENDA_SLOT_MINUTES", 15),
		HorizonJours: getEnvInt("AGENDA_BOOKING_HORIZON_DAYS", 90),
		TimezoneName: getEnv("AGENDA_TIMEZONE", "Local"),
	}

	config.Facturation = FacturationConfig{
		Devise: getEnv("FACTURATION_DEVISE", "EUR"),
	}

	config.Scheduler = SchedulerConfig{
		Enabled:          getEnvBool("SCHEDULER_ENABLED", true),
		NoShowInterval:   getEnvDuration("SCHEDULER_NOSHOW_INTERVAL", 3600) * time.Second,
		LicenceInterval:  getEnvDuration("SCHEDULER_LICENCE_INTERVAL", 6*3600) * time.Second,
		CleanupInterval:  getEnvDuration("SCHEDULER_CLEANUP_INTERVAL", 24*3600) * time.Second,
		ExportsRetention: getEnvDuration("SCHEDULER_EXPORTS_RETENTION", 24*3600) * time.Second,
	}

	config.Bootstrap = BootstrapConfig{
		AutoMigrate:  getEnvBool("BOOTSTRAP_AUTO_MIGRATE", true),
		SeedDemoData: getEnvBool("SEED_DEMO_DATA", false),
	}

	config.Logging = LoggingConfig{
		Level: getEnv("LOG_LEVEL", "debug"),
	}

	config.CORS = CORSConfig{
		AllowedOrigins:   getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		AllowedMethods:   getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		AllowedHeaders:   getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
		MaxAge:           getEnvInt("CORS_MAX_AGE", 3600),
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("validation configuration échouée: %w", err)
	}

	fmt.Printf("[CONFIG] ✅ Configuration chargée pour environnement: %s\n", config.Environment)
	return config, nil
}

func (c *Config) GetDatabase() DatabaseConfig     { return c.Database }
func (c *Config) GetRedis() RedisConfig           { return c.Redis }
func (c *Config) GetMongoDB() MongoConfig         { return c.MongoDB }
func (c *Config) GetServer() ServerConfig         { return c.Server }
func (c *Config) GetLogging() LoggingConfig       { return c.Logging }
func (c *Config) GetCORS() CORSConfig             { return c.CORS }
func (c *Config) GetAgenda() AgendaConfig         { return c.Agenda }
func (c *Config) GetActivation() ActivationConfig { return c.Activation }

// IsDevelopment indique si l'application tourne en local
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// NewPostgresConfig convertit vers la configuration infrastructure
func NewPostgresConfig(config *Config) *postgres.DatabaseConfig {
	return &postgres.DatabaseConfig{
		Host:             config.Database.Host,
		Port:             config.Database.Port,
		Database:         config.Database.Database,
		Username:         config.Database.Username,
		Password:         config.Database.Password,
		SSLMode:          config.Database.SSLMode,
		MaxConnections:   config.Database.MaxConnections,
		ConnectionTTL:    config.Database.ConnectionTTL,
		StatementTimeout: config.Database.QueryTimeout,
	}
}

func NewRedisConfig(config *Config) *redis.RedisConfig {
	return &redis.RedisConfig{
		Host:     config.Redis.Host,
		Port:     config.Redis.Port,
		Password: config.Redis.Password,
		Database: config.Redis.Database,
		PoolSize: config.Redis.PoolSize,
	}
}

func NewMongoConfig(config *Config) *mongodb.MongoConfig {
	return &mongodb.MongoConfig{
		URI:            config.MongoDB.URI,
		Database:       config.MongoDB.Database,
		ConnectTimeout: config.MongoDB.ConnectTimeout,
		MaxPoolSize:    uint64(config.MongoDB.MaxPoolSize),
	}
}

// Helpers pour parsing variables d'environnement
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds))
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return defaultValue
}

// validateConfig valide la configuration selon l'environnement
func validateConfig(config *Config) error {
	env := config.Environment

	if env != "development" && env != "docker" && env != "production" {
		return fmt.Errorf("environnement non supporté: %s (utilisez 'development', 'docker' ou 'production')", env)
	}

	if config.Database.Host == "" {
		return fmt.Errorf("DB_HOST ne peut pas être vide")
	}
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT invalide: %d", config.Server.Port)
	}

	if config.Agenda.SlotMinutes <= 0 {
		return fmt.Errorf("AGENDA_SLOT_MINUTES doit être positif")
	}
	ouverture, err := time.Parse("15:04", config.Agenda.Ouverture)
	if err != nil {
		return fmt.Errorf("AGENDA_OUVERTURE invalide: %w", err)
	}
	fermeture, err := time.Parse("15:04", config.Agenda.Fermeture)
	if err != nil {
		return fmt.Errorf("AGENDA_FERMETURE invalide: %w", err)
	}
	if !ouverture.Before(fermeture) {
		return fmt.Errorf("AGENDA_OUVERTURE doit précéder AGENDA_FERMETURE")
	}

	location, err := time.LoadLocation(config.Agenda.TimezoneName)
	if err != nil {
		return fmt.Errorf("AGENDA_TIMEZONE invalide: %w", err)
	}
	config.Agenda.Location = location

	if config.Activation.TrialDays <= 0 {
		return fmt.Errorf("ACTIVATION_TRIAL_DAYS doit être positif")
	}

	missingVars := []string{}

	if env != "development" {
		if config.Database.Password == "" {
			missingVars = append(missingVars, "DB_PASSWORD")
		}
		if config.Activation.SigningSecret == "" {
			missingVars = append(missingVars, "ACTIVATION_SIGNING_SECRET")
		}

		if config.Redis.Password == "" {
			fmt.Printf("[CONFIG] ⚠️ REDIS_PASSWORD non défini pour environnement %s\n", env)
		}
		if config.Activation.MasterKey != "" {
			fmt.Printf("[CONFIG] ⚠️ ACTIVATION_MASTER_KEY actif en environnement %s\n", env)
		}
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("variables critiques manquantes pour environnement %s: %v", env, missingVars)
	}

	return nil
}
