package jwt

import (
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("user-1", AccessToken, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateToken(token, testSecret)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user-1, got %s", claims.UserID)
	}
	if claims.TokenType != AccessToken {
		t.Fatalf("expected access token type, got %s", claims.TokenType)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("user-1", AccessToken, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ValidateToken(token, "other-secret"); err == nil {
		t.Fatal("expected validation to fail with the wrong secret")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateToken("user-1", AccessToken, testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ValidateToken(token, testSecret); err == nil {
		t.Fatal("expected validation to fail for an expired token")
	}
}

func TestIsTokenValid_TypeMismatch(t *testing.T) {
	token, err := GenerateToken("user-1", RefreshToken, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if IsTokenValid(token, testSecret, AccessToken) {
		t.Fatal("refresh token must not pass as access token")
	}
	if !IsTokenValid(token, testSecret, RefreshToken) {
		t.Fatal("refresh token must pass as refresh token")
	}
}
