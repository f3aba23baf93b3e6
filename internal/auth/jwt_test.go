package auth

import (
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateToken(42, "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("expected email user@example.com, got %s", claims.Email)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	InitJWT("test-secret")

	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	InitJWT("first-secret")
	token, err := GenerateToken(1, "a@example.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	InitJWT("second-secret")
	if _, err := ValidateToken(token); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
}
