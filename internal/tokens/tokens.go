package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ourstory/scrapbook/internal/identity"
)

var ErrInvalidToken = errors.New("invalid session token")

// Claims is what a session token asserts.
type Claims struct {
	SessionID string
	Role      identity.Role
	Name      string
	IssuedAt  time.Time
}

// Generate creates a signed HS256 token. Tokens carry no expiry; a session
// ends only when it is revoked.
func Generate(secret string, c Claims) (string, error) {
	if secret == "" {
		return "", errors.New("tokens: empty signing secret")
	}
	claims := jwt.MapClaims{
		"jti":  c.SessionID,
		"sub":  c.Role.String(),
		"name": c.Name,
		"iat":  c.IssuedAt.Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}

// Parse verifies the signature and returns the claims.
func Parse(secret, token string) (Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	sub, _ := mc["sub"].(string)
	role, err := identity.ParseRole(sub)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	jti, _ := mc["jti"].(string)
	if jti == "" {
		return Claims{}, fmt.Errorf("%w: missing jti", ErrInvalidToken)
	}
	name, _ := mc["name"].(string)
	var iat time.Time
	if d, err := mc.GetIssuedAt(); err == nil && d != nil {
		iat = d.Time
	}
	return Claims{SessionID: jti, Role: role, Name: name, IssuedAt: iat}, nil
}
