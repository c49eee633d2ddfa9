package jwt

import (
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/userhub/internal/domain"
)

// Nombres de cookie.
const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

func ParseSameSite(s string) http.SameSite {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (i *Issuer) buildCookie(name, value string, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   i.cfg.CookieSecure,
		SameSite: ParseSameSite(i.cfg.CookieSameSite),
	}
	if strings.TrimSpace(i.cfg.CookieDomain) != "" {
		ck.Domain = i.cfg.CookieDomain
	}
	if ttl > 0 {
		ck.Expires = i.now().Add(ttl).UTC()
		ck.MaxAge = int(ttl.Seconds())
	}
	return ck
}

func (i *Issuer) buildDeletionCookie(name string) *http.Cookie {
	ck := i.buildCookie(name, "", 0)
	ck.Expires = time.Unix(0, 0).UTC()
	ck.MaxAge = -1
	return ck
}

// SetCookies escribe access_token y refresh_token en la respuesta.
func (i *Issuer) SetCookies(w http.ResponseWriter, p Pair) {
	http.SetCookie(w, i.buildCookie(AccessCookie, p.AccessToken, p.AccessTTL))
	http.SetCookie(w, i.buildCookie(RefreshCookie, p.RefreshToken, p.RefreshTTL))
}

// AttachTokens emite el par para u y lo escribe como cookies.
func (i *Issuer) AttachTokens(w http.ResponseWriter, u *domain.User) (Pair, error) {
	p, err := i.IssuePair(u)
	if err != nil {
		return Pair{}, err
	}
	i.SetCookies(w, p)
	return p, nil
}

// ClearTokens expira ambas cookies.
func (i *Issuer) ClearTokens(w http.ResponseWriter) {
	http.SetCookie(w, i.buildDeletionCookie(AccessCookie))
	http.SetCookie(w, i.buildDeletionCookie(RefreshCookie))
}
