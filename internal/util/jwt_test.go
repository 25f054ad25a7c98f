package util

import (
	"testing"
	"time"

	"lms_backend/internal/model"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Email: "alice@example.com", Role: model.Staff}
	user.ID = 42

	token, err := GenerateJWT(user, "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	claims, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("ParseJWT failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Role != model.Staff {
		t.Errorf("expected staff role, got %s", claims.Role)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("unexpected email: %s", claims.Email)
	}
	if !claims.IsAdminOrStaff() {
		t.Error("staff claims should pass IsAdminOrStaff")
	}
}

func TestParseJWTRejectsWrongSecret(t *testing.T) {
	user := &model.User{Email: "alice@example.com", Role: model.Student}
	user.ID = 1

	token, err := GenerateJWT(user, "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	if _, err := ParseJWT(token, "other-secret"); err == nil {
		t.Error("expected an error for a token signed with a different secret")
	}
}

func TestParseJWTRejectsExpiredToken(t *testing.T) {
	user := &model.User{Email: "alice@example.com", Role: model.Student}
	user.ID = 1

	token, err := GenerateJWT(user, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	if _, err := ParseJWT(token, "secret"); err == nil {
		t.Error("expected an error for an expired token")
	}
}
