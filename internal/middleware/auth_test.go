package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"marketplace/internal/domain"
)

type fakeSessions struct {
	sessions map[string]*domain.Session
}

func (f *fakeSessions) Create(_ context.Context, s *domain.Session) error {
	f.sessions[s.Token] = s
	return nil
}

func (f *fakeSessions) Get(_ context.Context, token string) (*domain.Session, error) {
	s, ok := f.sessions[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s, nil
}

func (f *fakeSessions) Delete(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func sessionStore() *fakeSessions {
	return &fakeSessions{sessions: map[string]*domain.Session{
		"tok-customer": {Token: "tok-customer", UserID: "u1", Role: domain.RoleCustomer},
		"tok-vendor":   {Token: "tok-vendor", UserID: "v1", Role: domain.RoleVendor},
	}}
}

func okHandler(t *testing.T, wantUser string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, wantUser, session.UserID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	handler := Authenticate(sessionStore(), zap.NewNop())(okHandler(t, "u1"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-customer")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticateMissingToken(t *testing.T) {
	handler := Authenticate(sessionStore(), zap.NewNop())(okHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateUnknownToken(t *testing.T) {
	handler := Authenticate(sessionStore(), zap.NewNop())(okHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	handler := Authenticate(sessionStore(), zap.NewNop())(okHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	auth := Authenticate(sessionStore(), zap.NewNop())
	vendorOnly := auth(RequireRole(domain.RoleVendor)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-vendor")
	rec := httptest.NewRecorder()
	vendorOnly.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-customer")
	rec = httptest.NewRecorder()
	vendorOnly.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
