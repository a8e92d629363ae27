package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIssueAndValidateToken(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "test-secret")

	userID := uuid.New()
	token, err := IssueToken(userID, time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("userID = %s, want %s", claims.UserID, userID)
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "test-secret")

	token, err := IssueToken(uuid.New(), -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := ValidateToken(token); err == nil {
		t.Error("expired token validated")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "first-secret")
	token, err := IssueToken(uuid.New(), time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	t.Setenv("ACCESS_TOKEN_SECRET", "second-secret")
	if _, err := ValidateToken(token); err == nil {
		t.Error("token signed with another secret validated")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := VerifyPassword(hash, "hunter22"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Error("wrong password accepted")
	}
}
