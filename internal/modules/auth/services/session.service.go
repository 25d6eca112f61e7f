package services

import (
	"context"
	"fmt"
	"time"

	redisInfra "cabinet-suite-core/internal/infrastructure/database/redis"
	"cabinet-suite-core/internal/modules/auth/dto"
)

// SessionService stocke les sessions dans Redis:
// un hash par token et un set des tokens de chaque utilisateur
type SessionService struct {
	redisClient *redisInfra.Client
}

// NewSessionService crée une nouvelle instance du service de session
func NewSessionService(redisClient *redisInfra.Client) *SessionService {
	return &SessionService{redisClient: redisClient}
}

func (s *SessionService) keys(cabinetCode, token, userID string) (sessionKey, userKey string, err error) {
	gen := s.redisClient.Keys()
	if sessionKey, err = gen.GenerateKey("auth_session", cabinetCode, token); err != nil {
		return "", "", err
	}
	if userID != "" {
		if userKey, err = gen.GenerateKey("auth_user_sessions", cabinetCode, userID); err != nil {
			return "", "", err
		}
	}
	return sessionKey, userKey, nil
}

// Create enregistre la session avec pipeline
func (s *SessionService) Create(ctx context.Context, token string, data *dto.SessionData, ttl time.Duration) error {
	sessionKey, userKey, err := s.keys(data.CabinetCode, token, data.UserID)
	if err != nil {
		return err
	}

	pipe := s.redisClient.Client().TxPipeline()
	pipe.HSet(ctx, sessionKey, data.ToMap())
	pipe.Expire(ctx, sessionKey, ttl)
	pipe.SAdd(ctx, userKey, token)
	pipe.Expire(ctx, userKey, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("création session: %w", err)
	}
	return nil
}

// Get retourne nil, nil pour un token inconnu ou expiré
func (s *SessionService) Get(ctx context.Context, cabinetCode, token string) (*dto.SessionData, error) {
	sessionKey, _, err := s.keys(cabinetCode, token, "")
	if err != nil {
		return nil, nil
	}

	data, err := s.redisClient.HGetAll(ctx, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("lecture session: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return dto.SessionFromMap(data), nil
}

// Touch prolonge la session (expiration glissante)
func (s *SessionService) Touch(ctx context.Context, cabinetCode, token, userID string, now time.Time, ttl time.Duration) error {
	sessionKey, userKey, err := s.keys(cabinetCode, token, userID)
	if err != nil {
		return err
	}

	pipe := s.redisClient.Client().Pipeline()
	pipe.HSet(ctx, sessionKey,
		"last_activity", now.Format(time.RFC3339),
		"expires_at", now.Add(ttl).Format(time.RFC3339),
	)
	pipe.Expire(ctx, sessionKey, ttl)
	pipe.Expire(ctx, userKey, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Delete supprime la session; sans effet si elle n'existe plus
func (s *SessionService) Delete(ctx context.Context, cabinetCode, token, userID string) error {
	sessionKey, userKey, err := s.keys(cabinetCode, token, userID)
	if err != nil {
		return nil
	}

	pipe := s.redisClient.Client().Pipeline()
	pipe.Del(ctx, sessionKey)
	if userKey != "" {
		pipe.SRem(ctx, userKey, token)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// RevokeUser supprime toutes les sessions d'un utilisateur
func (s *SessionService) RevokeUser(ctx context.Context, cabinetCode, userID string) error {
	_, userKey, err := s.keys(cabinetCode, "revoke", userID)
	if err != nil {
		return err
	}

	tokens, err := s.redisClient.SMembers(ctx, userKey)
	if err != nil {
		return fmt.Errorf("lecture index sessions: %w", err)
	}

	toDelete := []string{userKey}
	for _, token := range tokens {
		sessionKey, _, err := s.keys(cabinetCode, token, "")
		if err == nil {
			toDelete = append(toDelete, sessionKey)
		}
	}
	return s.redisClient.Del(ctx, toDelete...)
}

// RegisterFailure incrémente le compteur d'échecs sur la fenêtre donnée
func (s *SessionService) RegisterFailure(ctx context.Context, cabinetCode, identifiant string, window time.Duration) (int64, error) {
	key, err := s.redisClient.Keys().GenerateKey("auth_login_attempts", cabinetCode, identifiant)
	if err != nil {
		return 0, err
	}
	return s.redisClient.IncrWithWindow(ctx, key, window)
}

func (s *SessionService) FailureCount(ctx context.Context, cabinetCode, identifiant string) (int64, error) {
	key, err := s.redisClient.Keys().GenerateKey("auth_login_attempts", cabinetCode, identifiant)
	if err != nil {
		return 0, err
	}
	value, err := s.redisClient.Client().Get(ctx, key).Int64()
	if redisInfra.IsNil(err) {
		return 0, nil
	}
	return value, err
}

func (s *SessionService) ResetFailures(ctx context.Context, cabinetCode, identifiant string) error {
	key, err := s.redisClient.Keys().GenerateKey("auth_login_attempts", cabinetCode, identifiant)
	if err != nil {
		return err
	}
	return s.redisClient.Del(ctx, key)
}
