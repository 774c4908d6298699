package auth

import (
	"testing"

	"fare-backend/internal/config"
	"fare-backend/internal/models"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-key-for-unit-tests"
	cfg.JWT.ExpirationHours = 24
	cfg.JWT.Issuer = "fare-backend-test"
	return cfg
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash equals plaintext")
	}
	if !VerifyPassword(hash, "correct horse battery staple") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "wrong password") {
		t.Fatal("wrong password accepted")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager := NewJWTManager(testConfig())
	user := &models.User{ID: 7, Email: "admin@example.com", Role: "admin", IsActive: true}

	token, err := manager.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 7 || claims.Email != "admin@example.com" || claims.Role != "admin" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	manager := NewJWTManager(testConfig())
	user := &models.User{ID: 7, Email: "admin@example.com", Role: "admin", IsActive: true}

	token, err := manager.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	other := testConfig()
	other.JWT.Secret = "a-different-secret"
	if _, err := NewJWTManager(other).ValidateToken(token); err == nil {
		t.Fatal("token validated with wrong secret")
	}
}

func TestTempTokenIsNotASessionToken(t *testing.T) {
	manager := NewJWTManager(testConfig())
	user := &models.User{ID: 7, Email: "admin@example.com", Role: "admin", IsActive: true}

	tempToken, err := manager.GenerateTempToken(user)
	if err != nil {
		t.Fatalf("GenerateTempToken: %v", err)
	}

	claims, err := manager.ValidateTempToken(tempToken)
	if err != nil {
		t.Fatalf("ValidateTempToken: %v", err)
	}
	if claims.UserID != 7 || claims.Type != "2fa_pending" {
		t.Fatalf("temp claims = %+v", claims)
	}

	// A session token must not pass temp validation and vice versa.
	sessionToken, err := manager.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := manager.ValidateTempToken(sessionToken); err == nil {
		t.Fatal("session token accepted as temp token")
	}
}
