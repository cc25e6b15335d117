package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/siriphobmean/next-crud/internal/core/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	issuer := NewTokenIssuer("secret", time.Hour).WithClock(fixedClock(now))

	tok, err := issuer.Issue(42, "ann@x.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if tok.Value == "" {
		t.Fatalf("expected signed token")
	}
	if !tok.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected expiry %v, got %v", now.Add(time.Hour), tok.ExpiresAt)
	}

	id, err := issuer.Verify(tok.Value)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if id.AccountID != 42 || id.Email != "ann@x.com" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if !id.IssuedAt.Equal(now) || !id.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected times: %+v", id)
	}
}

func TestTokenIssuer_DefaultTTL(t *testing.T) {
	issuer := NewTokenIssuer("secret", 0)
	if issuer.ttl != DefaultTokenTTL {
		t.Fatalf("expected default ttl, got %v", issuer.ttl)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	issuer := NewTokenIssuer("secret", time.Hour).WithClock(fixedClock(now))

	tok, err := issuer.Issue(1, "a@b.co")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	issuer.WithClock(fixedClock(now.Add(59 * time.Minute)))
	if _, err := issuer.Verify(tok.Value); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	issuer.WithClock(fixedClock(now.Add(61 * time.Minute)))
	_, err = issuer.Verify(tok.Value)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expired should also be ErrTokenInvalid")
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	tok, err := NewTokenIssuer("secret", time.Hour).Issue(1, "a@b.co")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = NewTokenIssuer("other", time.Hour).Verify(tok.Value)
	if !errors.Is(err, domain.ErrTokenInvalidSignature) {
		t.Fatalf("expected ErrTokenInvalidSignature, got %v", err)
	}
}

func TestTokenIssuer_Tampered(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	tok, err := issuer.Issue(1, "a@b.co")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	forged, err := NewTokenIssuer("attacker", time.Hour).Issue(2, "evil@b.co")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	// Original header and payload, forged signature.
	parts := strings.Split(tok.Value, ".")
	forgedParts := strings.Split(forged.Value, ".")
	tampered := parts[0] + "." + parts[1] + "." + forgedParts[2]

	if _, err := issuer.Verify(tampered); !errors.Is(err, domain.ErrTokenInvalidSignature) {
		t.Fatalf("expected ErrTokenInvalidSignature, got %v", err)
	}
}

func TestTokenIssuer_UnexpectedAlgorithm(t *testing.T) {
	claims := Claims{
		AccountID: 1,
		Email:     "a@b.co",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = NewTokenIssuer("secret", time.Hour).Verify(signed)
	if !errors.Is(err, domain.ErrTokenInvalidSignature) {
		t.Fatalf("expected ErrTokenInvalidSignature, got %v", err)
	}
}

func TestTokenIssuer_Malformed(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c"} {
		_, err := issuer.Verify(raw)
		if !errors.Is(err, domain.ErrTokenMalformed) {
			t.Fatalf("Verify(%q): expected ErrTokenMalformed, got %v", raw, err)
		}
	}
}

func TestTokenIssuer_MissingExpiry(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{AccountID: 1}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = NewTokenIssuer("secret", time.Hour).Verify(signed)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
