package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/userhub/internal/domain"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config agrupa secretos y vidas útiles. Se construye una vez desde config.Config.
type Config struct {
	ActivationSecret string
	AccessSecret     string
	RefreshSecret    string

	ActivationTTL time.Duration
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Cookies
	CookieDomain   string
	CookieSameSite string
	CookieSecure   bool
}

// Issuer emite y verifica tokens de activación, access y refresh (HS256, secretos distintos).
type Issuer struct {
	cfg Config
	now func() time.Time
}

// NewIssuer crea un Issuer.
func NewIssuer(cfg Config) *Issuer {
	return &Issuer{cfg: cfg, now: time.Now}
}

// Config devuelve la configuración efectiva.
func (i *Issuer) Config() Config { return i.cfg }

// UserClaims es el payload de access y refresh: snapshot sanitizado del usuario.
type UserClaims struct {
	User domain.User `json:"user"`
	jwtv5.RegisteredClaims
}

// Pair es el resultado de emitir access + refresh para un usuario.
type Pair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// IssueAccess firma un access token.
func (i *Issuer) IssueAccess(u *domain.User) (string, error) {
	return i.signUser(u, i.cfg.AccessSecret, i.cfg.AccessTTL)
}

// IssueRefresh firma un refresh token.
func (i *Issuer) IssueRefresh(u *domain.User) (string, error) {
	return i.signUser(u, i.cfg.RefreshSecret, i.cfg.RefreshTTL)
}

// IssuePair firma ambos tokens.
func (i *Issuer) IssuePair(u *domain.User) (Pair, error) {
	at, err := i.IssueAccess(u)
	if err != nil {
		return Pair{}, err
	}
	rt, err := i.IssueRefresh(u)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: at, RefreshToken: rt, AccessTTL: i.cfg.AccessTTL, RefreshTTL: i.cfg.RefreshTTL}, nil
}

// VerifyAccess valida firma y expiración de un access token.
func (i *Issuer) VerifyAccess(token string) (*UserClaims, error) {
	return i.parseUser(token, i.cfg.AccessSecret)
}

// VerifyRefresh valida firma y expiración de un refresh token.
func (i *Issuer) VerifyRefresh(token string) (*UserClaims, error) {
	return i.parseUser(token, i.cfg.RefreshSecret)
}

func (i *Issuer) signUser(u *domain.User, secret string, ttl time.Duration) (string, error) {
	if u == nil || u.ID == "" {
		return "", errors.New("jwt: user without id")
	}
	now := i.now()
	claims := UserClaims{
		User: *u.Sanitized(),
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
		},
	}
	return i.sign(claims, secret)
}

func (i *Issuer) parseUser(token, secret string) (*UserClaims, error) {
	var claims UserClaims
	if err := i.parse(token, secret, &claims); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		claims.Subject = claims.User.ID
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("jwt: %w", jwtv5.ErrTokenInvalidClaims)
	}
	return &claims, nil
}

func (i *Issuer) sign(claims jwtv5.Claims, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("jwt: empty signing secret")
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	return tk.SignedString([]byte(secret))
}

// parse verifica firma HS256 y expiración. Los errores conservan los sentinels de jwt/v5.
func (i *Issuer) parse(token, secret string, claims jwtv5.Claims) error {
	_, err := jwtv5.ParseWithClaims(token, claims,
		func(t *jwtv5.Token) (any, error) { return []byte(secret), nil },
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithTimeFunc(i.now),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}
	return nil
}
