package redis

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const keyPrefix = "cabinet_suite"

var (
	validKeyRegex      = regexp.MustCompile(`^[a-zA-Z0-9_:\-.@]+$`)
	validCabinetRegex  = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)
	identifierReplacer = strings.NewReplacer(" ", "_", "*", "_", "?", "_", "[", "_", "]", "_")
)

// RedisKeyGenerator génère et valide les clés Redis selon les conventions du projet
type RedisKeyGenerator struct{}

func NewRedisKeyGenerator() *RedisKeyGenerator {
	return &RedisKeyGenerator{}
}

// RedisKeyPattern définit un pattern de clé
// Format: cabinet_suite_{code_cabinet}_{domain}_{context}:{identifier}
type RedisKeyPattern struct {
	Domain  string
	Context string
	TTL     time.Duration // 0 = TTL fourni par l'appelant ou pas d'expiration
}

// Patterns utilisés par les middlewares et les services
var RedisKeyPatterns = map[string]RedisKeyPattern{
	"auth_session":        {Domain: "auth", Context: "session"},
	"auth_user_sessions":  {Domain: "auth", Context: "user_sessions"},
	"auth_login_attempts": {Domain: "auth", Context: "login_attempts"},
	"cache_cabinet":       {Domain: "cache", Context: "cabinet", TTL: 10 * time.Minute},
	"cache_licence":       {Domain: "cache", Context: "licence", TTL: 5 * time.Minute},
	"cache_patient":       {Domain: "cache", Context: "patient", TTL: 10 * time.Minute},
}

// GenerateKey génère une clé cabinet_suite_{cabinet}_{domain}_{context}:{identifier}
func (rkg *RedisKeyGenerator) GenerateKey(patternName, cabinetCode string, identifier ...string) (string, error) {
	pattern, exists := RedisKeyPatterns[patternName]
	if !exists {
		return "", fmt.Errorf("pattern Redis non trouvé: %s", patternName)
	}

	if cabinetCode == "" {
		return "", fmt.Errorf("code cabinet requis pour la génération de clé")
	}
	if !validCabinetRegex.MatchString(cabinetCode) {
		return "", fmt.Errorf("code cabinet invalide: %s", cabinetCode)
	}

	prefix := fmt.Sprintf("%s_%s_%s_%s", keyPrefix, cabinetCode, pattern.Domain, pattern.Context)

	if len(identifier) > 0 {
		identifierStr := identifierReplacer.Replace(strings.ToLower(strings.Join(identifier, "_")))
		return fmt.Sprintf("%s:%s", prefix, identifierStr), nil
	}

	return prefix, nil
}

// MustKey panique si le pattern est inconnu; réservé aux patterns déclarés ci-dessus
func (rkg *RedisKeyGenerator) MustKey(patternName, cabinetCode string, identifier ...string) string {
	key, err := rkg.GenerateKey(patternName, cabinetCode, identifier...)
	if err != nil {
		panic(err)
	}
	return key
}

// GetTTL récupère le TTL d'un pattern
func (rkg *RedisKeyGenerator) GetTTL(patternName string) (time.Duration, error) {
	pattern, exists := RedisKeyPatterns[patternName]
	if !exists {
		return 0, fmt.Errorf("pattern Redis non trouvé: %s", patternName)
	}
	return pattern.TTL, nil
}

// ValidateKey valide qu'une clé respecte les conventions
func (rkg *RedisKeyGenerator) ValidateKey(key string) error {
	if len(key) == 0 {
		return fmt.Errorf("clé vide")
	}

	if len(key) > 250 {
		return fmt.Errorf("clé trop longue (max 250 caractères): %d", len(key))
	}

	if !validKeyRegex.MatchString(key) {
		return fmt.Errorf("clé contient des caractères invalides: %s", key)
	}

	if !strings.HasPrefix(key, keyPrefix+"_") {
		return fmt.Errorf("clé doit commencer par '%s_': %s", keyPrefix, key)
	}

	prefix := strings.SplitN(key, ":", 2)[0]
	prefixParts := strings.Split(strings.TrimPrefix(prefix, keyPrefix+"_"), "_")
	if len(prefixParts) < 3 {
		return fmt.Errorf("structure préfixe invalide (format: %s_cabinet_domain_context): %s", keyPrefix, prefix)
	}

	if !validCabinetRegex.MatchString(prefixParts[0]) {
		return fmt.Errorf("code cabinet invalide: %s", prefixParts[0])
	}

	return nil
}

// GenerateWildcardPattern génère un pattern SCAN pour un domaine/context
func (rkg *RedisKeyGenerator) GenerateWildcardPattern(cabinetCode, domain, context string) string {
	return fmt.Sprintf("%s_%s_%s_%s*", keyPrefix, cabinetCode, domain, context)
}
