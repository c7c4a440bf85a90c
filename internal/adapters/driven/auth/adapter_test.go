package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/fairsailau/conganew/internal/core/domain"
)

func testClaims(expiresIn time.Duration) *domain.TokenClaims {
	now := time.Now()
	return &domain.TokenClaims{
		UserID:    "user-123",
		Email:     "test@example.com",
		Role:      domain.RoleMember,
		TeamID:    "team-456",
		SessionID: "session-789",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(expiresIn).Unix(),
	}
}

func TestHashPassword(t *testing.T) {
	adapter := NewAdapterWithCost("secret", 4) // Low cost for faster tests

	hash, err := adapter.HashPassword("mypassword")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if hash == "" || hash == "mypassword" {
		t.Error("expected a non-empty hash distinct from the plaintext")
	}

	// Salted: two hashes of the same password differ
	hash2, _ := adapter.HashPassword("mypassword")
	if hash == hash2 {
		t.Error("expected different hashes for same password")
	}
}

func TestVerifyPassword(t *testing.T) {
	adapter := NewAdapterWithCost("secret", 4)
	hash, _ := adapter.HashPassword("correctpassword")

	if !adapter.VerifyPassword("correctpassword", hash) {
		t.Error("expected verification to succeed")
	}
	if adapter.VerifyPassword("wrongpassword", hash) {
		t.Error("expected verification to fail for wrong password")
	}
	if adapter.VerifyPassword("correctpassword", "not-a-valid-hash") {
		t.Error("expected verification to fail for invalid hash")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	adapter := NewAdapter("test-jwt-secret")
	claims := testClaims(24 * time.Hour)

	token, err := adapter.GenerateToken(claims)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	parsed, err := adapter.ParseToken(token)
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if parsed.UserID != claims.UserID ||
		parsed.Email != claims.Email ||
		parsed.Role != claims.Role ||
		parsed.TeamID != claims.TeamID ||
		parsed.SessionID != claims.SessionID {
		t.Errorf("parsed claims %+v do not match original %+v", parsed, claims)
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	adapter := NewAdapter("test-jwt-secret")
	claims := testClaims(-2 * time.Hour)

	token, _ := adapter.GenerateToken(claims)

	_, err := adapter.ParseToken(token)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("error = %v, want ErrTokenExpired", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	adapter1 := NewAdapter("secret-1")
	adapter2 := NewAdapter("secret-2")

	token, _ := adapter1.GenerateToken(testClaims(24 * time.Hour))

	if _, err := adapter2.ParseToken(token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("error = %v, want ErrTokenInvalid", err)
	}
}

func TestParseToken_MalformedToken(t *testing.T) {
	adapter := NewAdapter("test-secret")

	testCases := []string{
		"",
		"not-a-jwt",
		"only.two.parts.missing",
		"header.payload", // missing signature
	}

	for _, tc := range testCases {
		if _, err := adapter.ParseToken(tc); !errors.Is(err, domain.ErrTokenInvalid) {
			t.Errorf("token %q: error = %v, want ErrTokenInvalid", tc, err)
		}
	}
}

func BenchmarkHashPassword(b *testing.B) {
	adapter := NewAdapterWithCost("secret", 4)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = adapter.HashPassword("testpassword")
	}
}

func BenchmarkParseToken(b *testing.B) {
	adapter := NewAdapter("test-secret")
	token, _ := adapter.GenerateToken(testClaims(24 * time.Hour))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = adapter.ParseToken(token)
	}
}
