// Package auth tests cover password hashing/verification.
package auth

import (
	"strings"
	"testing"
)

// TestHashAndVerifyPassword validates positive and negative password checks.
func TestHashAndVerifyPassword(t *testing.T) {
	h, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(h, "argon2id$") {
		t.Fatalf("unexpected hash format: %s", h)
	}
	ok, err := VerifyPassword("secret", h)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Fatalf("expected password to verify")
	}

	ok, err = VerifyPassword("wrong", h)
	if err != nil {
		t.Fatalf("VerifyPassword(wrong): %v", err)
	}
	if ok {
		t.Fatalf("expected wrong password to fail")
	}
}

// TestVerifyPasswordMalformed rejects hashes that are not PHC argon2id.
func TestVerifyPasswordMalformed(t *testing.T) {
	if _, err := VerifyPassword("x", "bcrypt$nope"); err == nil {
		t.Fatalf("expected error for malformed hash")
	}
	ok, err := VerifyPassword("", "anything")
	if err != nil || ok {
		t.Fatalf("empty password must not verify")
	}
}
