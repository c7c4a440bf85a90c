package mocks

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fairsailau/conganew/internal/core/domain"
	"github.com/fairsailau/conganew/internal/core/ports/driven"
)

// AuthAdapter is a deterministic mock of the auth crypto port. Hashing is
// reversible on purpose so tests can assert on it; tokens are plain JSON.
type AuthAdapter struct {
	HashPasswordFn  func(password string) (string, error)
	GenerateTokenFn func(claims *domain.TokenClaims) (string, error)
	ParseTokenFn    func(token string) (*domain.TokenClaims, error)
}

var _ driven.AuthAdapter = (*AuthAdapter)(nil)

func (m *AuthAdapter) HashPassword(password string) (string, error) {
	if m.HashPasswordFn != nil {
		return m.HashPasswordFn(password)
	}
	return "hashed:" + password, nil
}

func (m *AuthAdapter) VerifyPassword(password, hash string) bool {
	return hash == "hashed:"+password
}

func (m *AuthAdapter) GenerateToken(claims *domain.TokenClaims) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(claims)
	}
	b, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	return "tok." + string(b), nil
}

func (m *AuthAdapter) ParseToken(token string) (*domain.TokenClaims, error) {
	if m.ParseTokenFn != nil {
		return m.ParseTokenFn(token)
	}
	raw, ok := strings.CutPrefix(token, "tok.")
	if !ok {
		return nil, fmt.Errorf("%w: bad mock token", domain.ErrTokenInvalid)
	}
	var claims domain.TokenClaims
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	return &claims, nil
}
