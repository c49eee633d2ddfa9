package jwt

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dropDatabas3/userhub/internal/domain"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIssuer() *Issuer {
	return NewIssuer(Config{
		ActivationSecret: "activation",
		AccessSecret:     "access",
		RefreshSecret:    "refresh",
		ActivationTTL:    30 * time.Minute,
		AccessTTL:        30 * time.Minute,
		RefreshTTL:       72 * time.Hour,
		CookieSameSite:   "lax",
		CookieSecure:     true,
	})
}

func testUser() *domain.User {
	hash := "$2a$10$secret"
	return &domain.User{ID: "u-1", Name: "Jane", Email: "jane@example.com", Password: &hash, Role: domain.RoleUser}
}

func TestActivationRoundTrip(t *testing.T) {
	iss := testIssuer()
	pending := testUser()
	pending.ID = ""

	ticket, err := iss.IssueActivation(pending)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[1-9][0-9]{5}$`), ticket.Code)

	got, err := iss.VerifyActivation(ticket.Token, ticket.Code)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", got.Email)
	require.NotNil(t, got.Password)
	assert.Equal(t, "$2a$10$secret", *got.Password)
}

func TestActivationWrongCode(t *testing.T) {
	iss := testIssuer()
	ticket, err := iss.IssueActivation(testUser())
	require.NoError(t, err)

	wrong := "000000"
	if ticket.Code == wrong {
		wrong = "111111"
	}
	_, err = iss.VerifyActivation(ticket.Token, wrong)
	assert.ErrorIs(t, err, ErrInvalidActivationCode)
}

func TestActivationExpiredOrTampered(t *testing.T) {
	iss := testIssuer()
	ticket, err := iss.IssueActivation(testUser())
	require.NoError(t, err)

	// Tampered: otra firma
	other := NewIssuer(Config{ActivationSecret: "other", ActivationTTL: time.Minute})
	forged, err := other.IssueActivation(testUser())
	require.NoError(t, err)
	_, err = iss.VerifyActivation(forged.Token, forged.Code)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	_, err = iss.VerifyActivation(ticket.Token+"x", ticket.Code)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	// Expired
	iss.now = func() time.Time { return time.Now().Add(31 * time.Minute) }
	_, err = iss.VerifyActivation(ticket.Token, ticket.Code)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestAccessAndRefreshUseDistinctSecrets(t *testing.T) {
	iss := testIssuer()
	u := testUser()

	pair, err := iss.IssuePair(u)
	require.NoError(t, err)

	claims, err := iss.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "jane@example.com", claims.User.Email)
	assert.Nil(t, claims.User.Password, "tokens carry the sanitized snapshot")

	rc, err := iss.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", rc.Subject)

	_, err = iss.VerifyAccess(pair.RefreshToken)
	assert.Error(t, err)
	_, err = iss.VerifyRefresh(pair.AccessToken)
	assert.Error(t, err)
}

func TestIssuePairRotatesWithinSameSecond(t *testing.T) {
	iss := testIssuer()
	fixed := time.Now()
	iss.now = func() time.Time { return fixed }

	a, err := iss.IssuePair(testUser())
	require.NoError(t, err)
	b, err := iss.IssuePair(testUser())
	require.NoError(t, err)
	assert.NotEqual(t, a.AccessToken, b.AccessToken)
	assert.NotEqual(t, a.RefreshToken, b.RefreshToken)

	claims, err := iss.VerifyRefresh(b.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
}

func TestVerifyAccessExpiredKeepsJWTSentinel(t *testing.T) {
	iss := testIssuer()
	at, err := iss.IssueAccess(testUser())
	require.NoError(t, err)

	iss.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = iss.VerifyAccess(at)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwtv5.ErrTokenExpired))
}

func TestRejectsNoneAlgorithm(t *testing.T) {
	iss := testIssuer()
	claims := UserClaims{
		User:             *testUser().Sanitized(),
		RegisteredClaims: jwtv5.RegisteredClaims{Subject: "u-1", ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(time.Hour))},
	}
	tok, err := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, claims).SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = iss.VerifyAccess(tok)
	assert.Error(t, err)
}

func TestAttachAndClearCookies(t *testing.T) {
	iss := testIssuer()
	rec := httptest.NewRecorder()

	pair, err := iss.AttachTokens(rec, testUser())
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	byName := map[string]*http.Cookie{}
	for _, c := range cookies {
		byName[c.Name] = c
	}
	access := byName[AccessCookie]
	refresh := byName[RefreshCookie]
	require.NotNil(t, access)
	require.NotNil(t, refresh)

	assert.Equal(t, pair.AccessToken, access.Value)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, 30*60, access.MaxAge)
	assert.Equal(t, 72*3600, refresh.MaxAge)

	rec = httptest.NewRecorder()
	iss.ClearTokens(rec)
	for _, h := range rec.Result().Header.Values("Set-Cookie") {
		assert.True(t, strings.Contains(h, "Max-Age=0"), h)
	}
}

func TestCookiesNotSecureInDevelopment(t *testing.T) {
	cfg := testIssuer().Config()
	cfg.CookieSecure = false
	iss := NewIssuer(cfg)

	rec := httptest.NewRecorder()
	_, err := iss.AttachTokens(rec, testUser())
	require.NoError(t, err)
	for _, c := range rec.Result().Cookies() {
		assert.False(t, c.Secure)
	}
}

func TestParseSameSite(t *testing.T) {
	assert.Equal(t, http.SameSiteStrictMode, ParseSameSite("Strict"))
	assert.Equal(t, http.SameSiteNoneMode, ParseSameSite("none"))
	assert.Equal(t, http.SameSiteLaxMode, ParseSameSite(""))
}
