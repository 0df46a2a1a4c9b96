// Package token issues and verifies the signed, time-limited tokens used in
// account activation and password-reset links.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid is returned for every verification failure. Callers must not
// distinguish expired from tampered from mismatched tokens: the user-facing
// message is the same generic one in all cases.
var ErrInvalid = errors.New("invalid token")

const (
	purposeActivate = "activate"
	purposeReset    = "password-reset"
)

// Signer creates and verifies HS256 tokens bound to a user's primary key.
type Signer struct {
	secret        []byte
	activationTTL time.Duration
	resetTTL      time.Duration
}

// NewSigner returns a Signer using the given HMAC secret and lifetimes.
func NewSigner(secret string, activationTTL, resetTTL time.Duration) *Signer {
	return &Signer{
		secret:        []byte(secret),
		activationTTL: activationTTL,
		resetTTL:      resetTTL,
	}
}

func (s *Signer) sign(userID uint, purpose string, ttl time.Duration, extra map[string]any) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     strconv.FormatUint(uint64(userID), 10),
		"purpose": purpose,
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
		"nbf":     now.Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Signer) verify(tokenString string, userID uint, purpose string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalid
	}

	if p, ok := claims["purpose"].(string); !ok || p != purpose {
		return nil, ErrInvalid
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalid
	}
	if sub != strconv.FormatUint(uint64(userID), 10) {
		return nil, ErrInvalid
	}

	return claims, nil
}

// Activation issues a token proving control over the registration email.
func (s *Signer) Activation(userID uint) (string, error) {
	return s.sign(userID, purposeActivate, s.activationTTL, nil)
}

// VerifyActivation checks an activation token against the user it claims to
// activate. All failure modes return ErrInvalid.
func (s *Signer) VerifyActivation(tokenString string, userID uint) error {
	_, err := s.verify(tokenString, userID, purposeActivate)
	return err
}

// PasswordReset issues a reset token fingerprinted to the user's current
// password hash, so the token stops verifying once the password changes
// (single effective use).
func (s *Signer) PasswordReset(userID uint, passwordHash string) (string, error) {
	return s.sign(userID, purposeReset, s.resetTTL, map[string]any{
		"pwd": hashFingerprint(passwordHash),
	})
}

// VerifyPasswordReset checks a reset token against the user and their
// current password hash.
func (s *Signer) VerifyPasswordReset(tokenString string, userID uint, passwordHash string) error {
	claims, err := s.verify(tokenString, userID, purposeReset)
	if err != nil {
		return err
	}
	fp, ok := claims["pwd"].(string)
	if !ok || fp != hashFingerprint(passwordHash) {
		return ErrInvalid
	}
	return nil
}

func hashFingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:])[:12]
}
