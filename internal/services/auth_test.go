package services_test

import (
	"testing"
	"time"

	"kanban-board/backend/internal/services"

	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T) *services.AuthService {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	return services.NewAuthService("test-secret", "admin", string(hash), time.Hour)
}

func TestLogin_IssuesVerifiableToken(t *testing.T) {
	auth := newTestAuthService(t)

	token, err := auth.Login("admin", "correct horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	claims, err := auth.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}

	if claims["sub"] != "admin" {
		t.Errorf("Expected subject 'admin', got %v", claims["sub"])
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	auth := newTestAuthService(t)

	if _, err := auth.Login("admin", "wrong"); err != services.ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownUsername(t *testing.T) {
	auth := newTestAuthService(t)

	if _, err := auth.Login("root", "correct horse"); err != services.ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyToken_RejectsForeignSignature(t *testing.T) {
	auth := newTestAuthService(t)
	other := services.NewAuthService("other-secret", "admin", "", time.Hour)

	token, err := other.GenerateToken("admin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := auth.VerifyToken(token); err == nil {
		t.Error("Expected verification to fail for a token signed with another secret")
	}
}

func TestVerifyToken_RejectsExpired(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	auth := services.NewAuthService("test-secret", "admin", string(hash), -time.Minute)

	token, err := auth.GenerateToken("admin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := auth.VerifyToken(token); err == nil {
		t.Error("Expected verification to fail for an expired token")
	}
}
