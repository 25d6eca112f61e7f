package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/middleware/authentication"
	"cabinet-suite-core/internal/shared/middleware/tenant"

	"github.com/gin-gonic/gin"
)

type stubLookup struct {
	cabinets map[string]*authentication.CabinetData
}

func (s *stubLookup) FindCabinetByCode(_ context.Context, code string) (*authentication.CabinetData, error) {
	return s.cabinets[code], nil
}

type stubValidator struct {
	sessions map[string]*SessionContext
}

func (s *stubValidator) ValidateSession(_ context.Context, token string, cabinet tenant.CabinetContext) (*SessionContext, error) {
	session, ok := s.sessions[token]
	if !ok || session.CabinetID != cabinet.ID {
		return nil, apperr.Session("INVALID_TOKEN", "Session invalide ou expirée")
	}
	return session, nil
}

type stubChecker struct {
	err error
}

func (s *stubChecker) CheckLicence(_ context.Context, _ tenant.CabinetContext) (*tenant.LicenceContext, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &tenant.LicenceContext{Plan: "mensuel", JoursRestants: 12}, nil
}

func newTestStack(checker *stubChecker) *AuthMiddlewareStack {
	lookup := &stubLookup{cabinets: map[string]*authentication.CabinetData{
		"CAB001": {ID: "cab-1", Code: "CAB001", Nom: "Cabinet Test", Statut: "actif"},
		"CAB002": {ID: "cab-2", Code: "CAB002", Nom: "Suspendu", Statut: "suspendu"},
	}}
	validator := &stubValidator{sessions: map[string]*SessionContext{
		"tok-admin":  {UserID: "u1", CabinetID: "cab-1", Role: RoleAdmin},
		"tok-assist": {UserID: "u2", CabinetID: "cab-1", Role: RoleAssistante},
		"tok-other":  {UserID: "u3", CabinetID: "cab-9", Role: RoleAdmin},
	}}
	return NewAuthMiddlewareStack(
		authentication.NewCabinetMiddleware(lookup),
		NewSessionMiddleware(validator),
		authentication.NewLicenceMiddleware(checker),
	)
}

func perform(r *gin.Engine, cabinet, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if cabinet != "" {
		req.Header.Set(authentication.HeaderCabinetCode, cabinet)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Details map[string]interface{} `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
	code, _ := body.Details["code"].(string)
	return code
}

func TestLicensedStack(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		cabinet    string
		token      string
		checkerErr error
		roles      []string
		wantStatus int
		wantCode   string
	}{
		{name: "missing cabinet", wantStatus: 460, wantCode: "CABINET_CODE_REQUIRED"},
		{name: "bad format", cabinet: "ab", wantStatus: 460, wantCode: "CABINET_CODE_INVALID_FORMAT"},
		{name: "unknown cabinet", cabinet: "NOPE01", wantStatus: 460, wantCode: "CABINET_NOT_FOUND"},
		{name: "suspended cabinet", cabinet: "CAB002", token: "tok-admin", wantStatus: 460, wantCode: "CABINET_SUSPENDED"},
		{name: "missing token", cabinet: "CAB001", wantStatus: 480, wantCode: "TOKEN_REQUIRED"},
		{name: "token of another cabinet", cabinet: "CAB001", token: "tok-other", wantStatus: 480, wantCode: "INVALID_TOKEN"},
		{
			name: "expired licence", cabinet: "CAB001", token: "tok-admin",
			checkerErr: apperr.Licence("LICENCE_EXPIRED", "Licence expirée"),
			wantStatus: 465, wantCode: "LICENCE_EXPIRED",
		},
		{name: "role refused", cabinet: "CAB001", token: "tok-assist", roles: []string{RoleAdmin}, wantStatus: 403, wantCode: "ROLE_NOT_ALLOWED"},
		{name: "ok", cabinet: "CAB001", token: "tok-admin", roles: []string{RoleAdmin}, wantStatus: 200},
		{name: "lower case cabinet header", cabinet: "cab001", token: "tok-admin", wantStatus: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stack := newTestStack(&stubChecker{err: tt.checkerErr})
			r := gin.New()
			handlers := append(stack.Licensed(tt.roles...), func(c *gin.Context) {
				session, _ := SessionFromContext(c)
				licence, _ := tenant.LicenceFromContext(c)
				c.JSON(http.StatusOK, gin.H{"user": session.UserID, "plan": licence.Plan})
			})
			r.GET("/x", handlers...)

			w := perform(r, tt.cabinet, tt.token)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantCode != "" {
				if got := errorCode(t, w); got != tt.wantCode {
					t.Fatalf("code = %q, want %q", got, tt.wantCode)
				}
			}
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":  "abc",
		"bearer  abc": "abc",
		"Basic abc":   "",
		"Bearer ":     "",
		"":            "",
	}
	for header, want := range cases {
		if got := ExtractBearerToken(header); got != want {
			t.Errorf("ExtractBearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}
