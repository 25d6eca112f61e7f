package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/modules/auth/dto"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/audit"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/utils"

	"go.uber.org/zap"
)

type stubUsers struct {
	users map[string]*dto.UserRecord
	hash  map[string]string
}

func (s *stubUsers) FindByIdentifiant(_ context.Context, cabinetID, identifiant string) (*dto.UserRecord, error) {
	for _, u := range s.users {
		if u.CabinetID == cabinetID && u.Identifiant == identifiant {
			rec := *u
			return &rec, nil
		}
	}
	return nil, nil
}

func (s *stubUsers) FindByID(_ context.Context, cabinetID, userID string) (*dto.UserRecord, error) {
	u, ok := s.users[userID]
	if !ok || u.CabinetID != cabinetID {
		return nil, nil
	}
	rec := *u
	return &rec, nil
}

func (s *stubUsers) TouchDerniereConnexion(context.Context, string) error { return nil }

func (s *stubUsers) UpdatePassword(_ context.Context, _ string, userID, hash string) error {
	s.users[userID].PasswordHash = hash
	return nil
}

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]*dto.SessionData
	failures map[string]int64
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: map[string]*dto.SessionData{}, failures: map[string]int64{}}
}

func (m *memorySessions) Create(_ context.Context, token string, data *dto.SessionData, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *data
	m.sessions[data.CabinetCode+":"+token] = &stored
	return nil
}

func (m *memorySessions) Get(_ context.Context, cabinetCode, token string) (*dto.SessionData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[cabinetCode+":"+token], nil
}

func (m *memorySessions) Touch(context.Context, string, string, string, time.Time, time.Duration) error {
	return nil
}

func (m *memorySessions) Delete(_ context.Context, cabinetCode, token, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, cabinetCode+":"+token)
	return nil
}

func (m *memorySessions) RevokeUser(_ context.Context, cabinetCode, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, s := range m.sessions {
		if s.CabinetCode == cabinetCode && s.UserID == userID {
			delete(m.sessions, k)
		}
	}
	return nil
}

func (m *memorySessions) RegisterFailure(_ context.Context, cabinetCode, identifiant string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[cabinetCode+":"+identifiant]++
	return m.failures[cabinetCode+":"+identifiant], nil
}

func (m *memorySessions) FailureCount(_ context.Context, cabinetCode, identifiant string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[cabinetCode+":"+identifiant], nil
}

func (m *memorySessions) ResetFailures(_ context.Context, cabinetCode, identifiant string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failures, cabinetCode+":"+identifiant)
	return nil
}

var cabinetA = tenant.CabinetContext{ID: "cab-a", Code: "CABA", Nom: "Cabinet A"}
var cabinetB = tenant.CabinetContext{ID: "cab-b", Code: "CABB", Nom: "Cabinet B"}

func newTestAuthService(t *testing.T) (*AuthService, *memorySessions, *stubUsers) {
	t.Helper()
	hash, err := utils.HashPassword("secret-123")
	if err != nil {
		t.Fatal(err)
	}
	users := &stubUsers{users: map[string]*dto.UserRecord{
		"u1": {ID: "u1", CabinetID: cabinetA.ID, Identifiant: "dr.yao", Nom: "Yao", Role: authMiddleware.RoleMedecin, PasswordHash: hash, Actif: true},
		"u2": {ID: "u2", CabinetID: cabinetA.ID, Identifiant: "ancien", Nom: "Ancien", Role: authMiddleware.RoleAssistante, PasswordHash: hash, Actif: false},
	}}
	sessions := newMemorySessions()
	cfg := &config.Config{Session: config.SessionConfig{TTL: time.Hour, MaxLoginAttempts: 3, LockoutWindow: 15 * time.Minute}}

	svc := NewAuthService(users, sessions, NewPermissionService(), nil, audit.NewJournal(nil, zap.NewNop()), cfg)
	return svc, sessions, users
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if !apperr.IsCode(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestLoginSuccess(t *testing.T) {
	svc, sessions, _ := newTestAuthService(t)

	res, err := svc.Login(context.Background(), dto.LoginRequest{Identifiant: " Dr.Yao ", MotDePasse: "secret-123"}, cabinetA, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" || res.User.Role != authMiddleware.RoleMedecin || len(res.Permissions) == 0 {
		t.Fatalf("unexpected response: %+v", res)
	}
	if stored, _ := sessions.Get(context.Background(), cabinetA.Code, res.Token); stored == nil {
		t.Fatal("session not stored")
	}
}

func TestLoginRateLimit(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()
	bad := dto.LoginRequest{Identifiant: "dr.yao", MotDePasse: "mauvais-mdp"}

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, bad, cabinetA, "", "")
		assertCode(t, err, "INVALID_CREDENTIALS")
	}

	_, err := svc.Login(ctx, dto.LoginRequest{Identifiant: "dr.yao", MotDePasse: "secret-123"}, cabinetA, "", "")
	assertCode(t, err, "TOO_MANY_ATTEMPTS")
	if appErr, _ := apperr.As(err); appErr.Status() != 429 {
		t.Fatalf("status = %d", appErr.Status())
	}

	// Le compteur est propre à chaque cabinet
	_, err = svc.Login(ctx, bad, cabinetB, "", "")
	assertCode(t, err, "INVALID_CREDENTIALS")
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	_, err := svc.Login(context.Background(), dto.LoginRequest{Identifiant: "ancien", MotDePasse: "secret-123"}, cabinetA, "", "")
	assertCode(t, err, "ACCOUNT_DISABLED")
}

func TestValidateSession(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()
	res, err := svc.Login(ctx, dto.LoginRequest{Identifiant: "dr.yao", MotDePasse: "secret-123"}, cabinetA, "", "")
	if err != nil {
		t.Fatal(err)
	}

	session, err := svc.ValidateSession(ctx, res.Token, cabinetA)
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if session.UserID != "u1" || session.CabinetCode != cabinetA.Code {
		t.Fatalf("unexpected session %+v", session)
	}

	_, err = svc.ValidateSession(ctx, res.Token, cabinetB)
	assertCode(t, err, "SESSION_INVALID")

	_, err = svc.ValidateSession(ctx, "inconnu", cabinetA)
	assertCode(t, err, "SESSION_INVALID")
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, sessions, _ := newTestAuthService(t)
	ctx := context.Background()
	res, _ := svc.Login(ctx, dto.LoginRequest{Identifiant: "dr.yao", MotDePasse: "secret-123"}, cabinetA, "", "")

	for i := 0; i < 2; i++ {
		if err := svc.Logout(ctx, res.Token, cabinetA); err != nil {
			t.Fatalf("Logout #%d: %v", i+1, err)
		}
	}
	if stored, _ := sessions.Get(ctx, cabinetA.Code, res.Token); stored != nil {
		t.Fatal("session still present")
	}
}

func TestChangePassword(t *testing.T) {
	svc, sessions, users := newTestAuthService(t)
	ctx := context.Background()
	first, _ := svc.Login(ctx, dto.LoginRequest{Identifiant: "dr.yao", MotDePasse: "secret-123"}, cabinetA, "", "")
	other, _ := svc.Login(ctx, dto.LoginRequest{Identifiant: "dr.yao", MotDePasse: "secret-123"}, cabinetA, "", "")

	current, err := svc.ValidateSession(ctx, first.Token, cabinetA)
	if err != nil {
		t.Fatal(err)
	}

	err = svc.ChangePassword(ctx, *current, dto.ChangePasswordRequest{AncienMotDePasse: "faux", NouveauMotDePasse: "nouveau-123"})
	assertCode(t, err, "INVALID_PASSWORD")

	if err := svc.ChangePassword(ctx, *current, dto.ChangePasswordRequest{AncienMotDePasse: "secret-123", NouveauMotDePasse: "nouveau-123"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if !utils.VerifyPassword("nouveau-123", users.users["u1"].PasswordHash) {
		t.Fatal("password not updated")
	}
	if s, _ := sessions.Get(ctx, cabinetA.Code, first.Token); s == nil {
		t.Fatal("current session must survive")
	}
	if s, _ := sessions.Get(ctx, cabinetA.Code, other.Token); s != nil {
		t.Fatal("other sessions must be revoked")
	}
}

func TestPermissionsByRole(t *testing.T) {
	p := NewPermissionService()
	if !p.Has(authMiddleware.RoleAdmin, PermUtilisateurs) {
		t.Error("admin must manage accounts")
	}
	if p.Has(authMiddleware.RoleAssistante, PermFacturesAnnuler) {
		t.Error("assistante cannot cancel invoices")
	}
	if len(p.ForRole("inconnu")) != 0 {
		t.Error("unknown role must have no permission")
	}
}
