package utils

import (
	"errors"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret", time.Hour)

	token, exp, err := GenerateJWTToken("abc123", "editor@voxarena.test", "editor")
	if err != nil {
		t.Fatalf("GenerateJWTToken failed: %v", err)
	}
	if time.Until(exp) > time.Hour || time.Until(exp) < 59*time.Minute {
		t.Errorf("Expected expiry about an hour away, got %v", exp)
	}

	claims, err := ParseJWTToken(token)
	if err != nil {
		t.Fatalf("ParseJWTToken failed: %v", err)
	}
	if claims.Subject != "editor@voxarena.test" || claims.Role != "editor" || claims.AdminID != "abc123" {
		t.Errorf("Unexpected claims %+v", claims)
	}

	SetJWTSecret("other-secret", 0)
	if _, err := ParseJWTToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken with the wrong secret, got %v", err)
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPasswordHash("s3cret!", hash) {
		t.Error("Expected password to match its hash")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("Expected a wrong password not to match")
	}
}

func TestExtractNameFromEmail(t *testing.T) {
	if got := ExtractNameFromEmail("ada@example.com"); got != "ada" {
		t.Errorf("Expected ada, got %q", got)
	}
}
