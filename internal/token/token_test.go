package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestActivationRoundTrip(t *testing.T) {
	s := NewSigner("secret", time.Hour, time.Hour)

	tok, err := s.Activation(7)
	if err != nil {
		t.Fatalf("Activation failed: %v", err)
	}
	if err := s.VerifyActivation(tok, 7); err != nil {
		t.Fatalf("expected token to verify: %v", err)
	}
}

func TestActivationWrongUser(t *testing.T) {
	s := NewSigner("secret", time.Hour, time.Hour)

	tok, _ := s.Activation(7)
	if err := s.VerifyActivation(tok, 8); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for wrong user, got %v", err)
	}
}

func TestActivationTampered(t *testing.T) {
	s := NewSigner("secret", time.Hour, time.Hour)

	tok, _ := s.Activation(7)
	parts := strings.Split(tok, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if err := s.VerifyActivation(tampered, 7); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for tampered token, got %v", err)
	}
}

func TestActivationWrongSecret(t *testing.T) {
	issuer := NewSigner("secret-a", time.Hour, time.Hour)
	verifier := NewSigner("secret-b", time.Hour, time.Hour)

	tok, _ := issuer.Activation(7)
	if err := verifier.VerifyActivation(tok, 7); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid across secrets, got %v", err)
	}
}

func TestActivationExpired(t *testing.T) {
	s := NewSigner("secret", -time.Minute, time.Hour)

	tok, _ := s.Activation(7)
	if err := s.VerifyActivation(tok, 7); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for expired token, got %v", err)
	}
}

func TestResetTokenBoundToPasswordHash(t *testing.T) {
	s := NewSigner("secret", time.Hour, time.Hour)

	tok, err := s.PasswordReset(3, "old-bcrypt-hash")
	if err != nil {
		t.Fatalf("PasswordReset failed: %v", err)
	}
	if err := s.VerifyPasswordReset(tok, 3, "old-bcrypt-hash"); err != nil {
		t.Fatalf("expected reset token to verify: %v", err)
	}

	// once the password changes, the token is spent
	if err := s.VerifyPasswordReset(tok, 3, "new-bcrypt-hash"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid after password change, got %v", err)
	}
}

func TestResetTokenNotValidForActivation(t *testing.T) {
	s := NewSigner("secret", time.Hour, time.Hour)

	tok, _ := s.PasswordReset(3, "hash")
	if err := s.VerifyActivation(tok, 3); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected purpose mismatch to fail, got %v", err)
	}
}
