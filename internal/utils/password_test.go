package utils

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/rajivgeraev/skillswap-api/internal/apperrors"
)

func TestCheckPasswordLength(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"12345", false},
		{"123456", true},
		{strings.Repeat("x", 72), true},
		{strings.Repeat("x", 73), false},
		{strings.Repeat("я", 37), false},
	}
	for _, tt := range tests {
		err := CheckPasswordLength(tt.password)
		if tt.ok && err != nil {
			t.Errorf("CheckPasswordLength(%d bytes) = %v", len(tt.password), err)
		}
		if !tt.ok && apperrors.KindOf(err) != apperrors.KindValidation {
			t.Errorf("CheckPasswordLength(%d bytes) = %v, want validation error", len(tt.password), err)
		}
	}
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash(strings.Repeat("x", MaxPasswordBytes))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !h.Check(hash, strings.Repeat("x", MaxPasswordBytes)) {
		t.Error("Check rejected the original password")
	}
	if h.Check(hash, "other-password") {
		t.Error("Check accepted a wrong password")
	}
}
