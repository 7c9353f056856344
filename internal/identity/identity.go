// Package identity resolves who owns the locally captured records.
// Token issuance happens elsewhere (the login flow writes a signed
// token to disk); this package only reads and verifies it.
package identity

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Provider reports the current identity, or ok=false when the device
// is not authenticated. Sync treats the latter as a non-error outcome:
// the next cycle simply tries again.
type Provider interface {
	CurrentIdentity() (ownerID string, ok bool)
}

// TokenFileProvider reads an HS256-signed token from a file on each
// call, so a login or logout between sync cycles is picked up without
// restarting the agent.
type TokenFileProvider struct {
	path   string
	secret string
}

func NewTokenFileProvider(path, secret string) *TokenFileProvider {
	return &TokenFileProvider{path: path, secret: secret}
}

func (p *TokenFileProvider) CurrentIdentity() (string, bool) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return "", false
	}
	ownerID, err := VerifyToken(strings.TrimSpace(string(raw)), p.secret)
	if err != nil {
		return "", false
	}
	return ownerID, true
}

// VerifyToken validates signature and expiry and extracts the owner id
// from the subject claim.
func VerifyToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// Static is a fixed identity, used by tests and single-user kiosks.
type Static string

func (s Static) CurrentIdentity() (string, bool) {
	return string(s), s != ""
}
