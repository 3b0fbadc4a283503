package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService("secret", 0)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, "a@example.com", "user")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != userID.String() || claims.Email != "a@example.com" || claims.Role != "user" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if lifetime != DefaultTokenTTL {
		t.Errorf("token lifetime = %v, want %v", lifetime, DefaultTokenTTL)
	}

	got, err := svc.ExtractUserID(token)
	if err != nil || got != userID {
		t.Errorf("ExtractUserID = %v, %v", got, err)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	userID := uuid.New()

	expiredSvc := NewJWTService("secret", time.Hour)
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredSvc.GenerateToken(userID, "a@example.com", "user")
	if err != nil {
		t.Fatal(err)
	}

	foreign, err := NewJWTService("other-secret", time.Hour).GenerateToken(userID, "a@example.com", "user")
	if err != nil {
		t.Fatal(err)
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: "not-a-uuid",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "not.a.token"},
		{"empty", ""},
		{"expired", expired},
		{"unknown key", foreign},
		{"alg none", noneToken},
		{"bad user id", badSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ExtractUserID(tt.token); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
