package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/userhub/internal/cache"
	"github.com/dropDatabas3/userhub/internal/domain"
	jwtx "github.com/dropDatabas3/userhub/internal/jwt"
	"github.com/dropDatabas3/userhub/internal/rate"
	"github.com/dropDatabas3/userhub/internal/session"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(GetUserID(r.Context())))
	})
}

func decodeCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

type gateFixture struct {
	issuer   *jwtx.Issuer
	sessions *session.Store
	handler  http.Handler
	user     *domain.User
}

func newGate(t *testing.T, mws ...Middleware) *gateFixture {
	t.Helper()
	iss := jwtx.NewIssuer(jwtx.Config{
		ActivationSecret: "act",
		AccessSecret:     "access",
		RefreshSecret:    "refresh",
		AccessTTL:        time.Minute,
		RefreshTTL:       time.Hour,
	})
	sessions := session.NewStore(cache.NewMemory("test", time.Minute), time.Hour)
	all := append([]Middleware{RequireSession(iss, sessions)}, mws...)
	return &gateFixture{
		issuer:   iss,
		sessions: sessions,
		handler:  Chain(okHandler(), all...),
		user:     &domain.User{ID: "u1", Name: "Jane", Email: "jane@example.com", Role: domain.RoleUser},
	}
}

func (f *gateFixture) do(t *testing.T, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: jwtx.AccessCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRequireSessionMissingCookie(t *testing.T) {
	f := newGate(t)
	rec := f.do(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", decodeCode(t, rec))
}

func TestRequireSessionInvalidToken(t *testing.T) {
	f := newGate(t)
	rec := f.do(t, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", decodeCode(t, rec))
}

func TestRequireSessionRejectsRevokedToken(t *testing.T) {
	f := newGate(t)
	token, err := f.issuer.IssueAccess(f.user)
	require.NoError(t, err)

	// sin sesión: token válido pero revocado
	rec := f.do(t, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "USER_NOT_FOUND", decodeCode(t, rec))

	require.NoError(t, f.sessions.Put(context.Background(), f.user))
	rec = f.do(t, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())

	require.NoError(t, f.sessions.Delete(context.Background(), f.user.ID))
	rec = f.do(t, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type failingSessions struct{}

func (failingSessions) Get(context.Context, string) (*domain.User, error) {
	return nil, errors.New("redis: connection refused")
}

func TestRequireSessionCacheFailure(t *testing.T) {
	iss := jwtx.NewIssuer(jwtx.Config{AccessSecret: "access", AccessTTL: time.Minute})
	token, err := iss.IssueAccess(&domain.User{ID: "u1"})
	require.NoError(t, err)

	h := Chain(okHandler(), RequireSession(iss, failingSessions{}))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: jwtx.AccessCookie, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "DEPENDENCY_FAILURE", decodeCode(t, rec))
}

func TestRequireRole(t *testing.T) {
	f := newGate(t, RequireRole(domain.RoleAdmin))
	require.NoError(t, f.sessions.Put(context.Background(), f.user))
	token, err := f.issuer.IssueAccess(f.user)
	require.NoError(t, err)

	rec := f.do(t, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeCode(t, rec))

	// el rol sale de la sesión, no del token
	admin := *f.user
	admin.Role = domain.RoleAdmin
	require.NoError(t, f.sessions.Put(context.Background(), &admin))
	rec = f.do(t, token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleWithoutUser(t *testing.T) {
	rec := httptest.NewRecorder()
	Chain(okHandler(), RequireRole(domain.RoleAdmin)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mk := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	Chain(okHandler(), mk("a"), mk("b"), mk("c")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}), WithRequestID())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 32)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", seen)
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }), WithRecover())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", decodeCode(t, rec))
}

func TestCORS(t *testing.T) {
	h := Chain(okHandler(), WithCORS([]string{"http://localhost:3000/"}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/users/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	Chain(okHandler(), WithSecurityHeaders(), WithNoStore()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

type errLimiter struct{}

func (errLimiter) Allow(context.Context, string) (rate.Result, error) {
	return rate.Result{}, errors.New("redis down")
}

func TestRateLimit(t *testing.T) {
	h := Chain(okHandler(), WithRateLimit(RateLimitConfig{
		Limiter:   rate.NewMemoryLimiter("rl:", 2, time.Hour),
		Whitelist: []string{"/healthz"},
	}))

	call := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("/login").Code)
	assert.Equal(t, http.StatusOK, call("/login").Code)
	rec := call("/login")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// otra ruta, otro cupo
	assert.Equal(t, http.StatusOK, call("/register").Code)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, call("/healthz").Code)
	}
}

func TestRateLimitFailOpen(t *testing.T) {
	h := Chain(okHandler(), WithRateLimit(RateLimitConfig{Limiter: errLimiter{}}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(req))
}
