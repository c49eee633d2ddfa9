package jwt

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"

	"github.com/dropDatabas3/userhub/internal/domain"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidOrExpiredToken: firma inválida, token malformado o vencido.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired activation token")

	// ErrInvalidActivationCode: el código no coincide con el embebido en el ticket.
	ErrInvalidActivationCode = errors.New("invalid activation code")
)

// ActivationTicket es el par entregado al registrarse: el token va en la respuesta,
// el código viaja por email.
type ActivationTicket struct {
	Token string
	Code  string
}

type activationClaims struct {
	User           domain.User `json:"user"`
	ActivationCode string      `json:"activationCode"`
	jwtv5.RegisteredClaims
}

// IssueActivation firma el registro pendiente junto a un código de 6 dígitos.
// El snapshot incluye el hash de password: el ticket se firma, no se cifra.
func (i *Issuer) IssueActivation(pending *domain.User) (ActivationTicket, error) {
	if pending == nil {
		return ActivationTicket{}, errors.New("jwt: nil pending user")
	}
	code, err := activationCode()
	if err != nil {
		return ActivationTicket{}, err
	}
	now := i.now()
	claims := activationClaims{
		User:           *pending,
		ActivationCode: code,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(i.cfg.ActivationTTL)),
		},
	}
	tok, err := i.sign(claims, i.cfg.ActivationSecret)
	if err != nil {
		return ActivationTicket{}, err
	}
	return ActivationTicket{Token: tok, Code: code}, nil
}

// VerifyActivation devuelve el registro pendiente si token y código son válidos.
func (i *Issuer) VerifyActivation(token, code string) (*domain.User, error) {
	var claims activationClaims
	if err := i.parse(token, i.cfg.ActivationSecret, &claims); err != nil {
		return nil, ErrInvalidOrExpiredToken
	}
	if subtle.ConstantTimeCompare([]byte(claims.ActivationCode), []byte(code)) != 1 {
		return nil, ErrInvalidActivationCode
	}
	u := claims.User
	return &u, nil
}

// activationCode genera un código numérico uniforme en [100000, 999999].
func activationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("jwt: activation code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
