package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	m, err := NewManager(Config{TTL: ttl, SigningMethod: MethodHS256, Secret: testSecret, Issuer: "verifact"})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{name: "zero ttl", cfg: Config{Secret: testSecret}},
		{name: "short secret", cfg: Config{TTL: time.Hour, Secret: []byte("short")}},
		{name: "unknown method", cfg: Config{TTL: time.Hour, SigningMethod: "rs256", Secret: testSecret}},
		{name: "ed25519 without public key", cfg: Config{TTL: time.Hour, SigningMethod: MethodEd25519}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewManager(tc.cfg); err == nil {
				t.Fatal("expected config error")
			}
		})
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := newTestManager(t, 24*time.Hour)
	now := time.Unix(1_700_000_000, 0)

	token, exp, err := m.Issue("alice@example.com", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !exp.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("unexpected expiry %v", exp)
	}

	claims, err := m.Verify(token, now)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "alice@example.com" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.IssuedAt == nil || !claims.IssuedAt.Time.Equal(now) {
		t.Fatalf("unexpected iat %v", claims.IssuedAt)
	}

	subject, err := m.ExtractSubject(token, now)
	if err != nil || subject != "alice@example.com" {
		t.Fatalf("extract subject = %q, %v", subject, err)
	}
}

func TestVerifyExpiryBoundary(t *testing.T) {
	ttl := time.Hour
	m := newTestManager(t, ttl)
	t0 := time.Unix(1_700_000_000, 0)

	token, _, err := m.Issue("bob@example.com", t0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Verify(token, t0.Add(ttl-time.Second)); err != nil {
		t.Fatalf("expected token valid one second before expiry: %v", err)
	}
	if _, err := m.Verify(token, t0.Add(ttl)); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired at exp, got %v", err)
	}
	if _, err := m.Verify(token, t0.Add(2*ttl)); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired after exp, got %v", err)
	}
}

func TestIssueSubSecondNowMatchesExpClaim(t *testing.T) {
	ttl := time.Minute
	m := newTestManager(t, ttl)
	t0 := time.Unix(1_700_000_000, 0)

	token, expiresAt, err := m.Issue("bob@example.com", t0.Add(900*time.Millisecond))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expiresAt.Equal(t0.Add(ttl)) {
		t.Fatalf("expiresAt = %v, want %v", expiresAt, t0.Add(ttl))
	}

	claims, err := m.Verify(token, expiresAt.Add(-time.Nanosecond))
	if err != nil {
		t.Fatalf("expected token valid just before reported expiry: %v", err)
	}
	if !claims.ExpiresAt.Time.Equal(expiresAt) || !claims.IssuedAt.Time.Equal(t0) {
		t.Fatalf("claims iat=%v exp=%v, want %v and %v", claims.IssuedAt.Time, claims.ExpiresAt.Time, t0, expiresAt)
	}
	if _, err := m.Verify(token, expiresAt); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired at reported expiry, got %v", err)
	}
}

func TestVerifyRejectsEveryFlippedByte(t *testing.T) {
	m := newTestManager(t, time.Hour)
	now := time.Unix(1_700_000_000, 0)

	token, _, err := m.Issue("carol@example.com", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for i := 0; i < len(token); i++ {
		b := []byte(token)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		if _, err := m.Verify(string(b), now); !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("byte %d flipped: expected ErrInvalidSignature, got %v", i, err)
		}
	}
}

func TestVerifyRejectsForeignSecretAndAlgorithms(t *testing.T) {
	m := newTestManager(t, time.Hour)
	now := time.Unix(1_700_000_000, 0)

	other, err := NewManager(Config{TTL: time.Hour, Secret: []byte("ffffffffffffffffffffffffffffffff"), Issuer: "verifact"})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	foreign, _, err := other.Issue("mallory@example.com", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(foreign, now); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected foreign token rejected, got %v", err)
	}

	unsigned := gjwt.NewWithClaims(gjwt.SigningMethodNone, Claims{RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "mallory@example.com",
		Issuer:    "verifact",
		ExpiresAt: gjwt.NewNumericDate(now.Add(time.Hour)),
	}})
	none, err := unsigned.SignedString(gjwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := m.Verify(none, now); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected alg=none rejected, got %v", err)
	}

	for _, input := range []string{"", "not-a-token", "a.b.c", strings.Repeat(".", 5)} {
		if _, err := m.Verify(input, now); !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("input %q: expected ErrInvalidSignature, got %v", input, err)
		}
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	m := newTestManager(t, time.Hour)
	now := time.Unix(1_700_000_000, 0)

	claims := Claims{RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "dave@example.com",
		Issuer:    "someone-else",
		IssuedAt:  gjwt.NewNumericDate(now),
		ExpiresAt: gjwt.NewNumericDate(now.Add(time.Hour)),
	}}
	token, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Verify(token, now); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected wrong issuer rejected, got %v", err)
	}
}

func TestEd25519RoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	m, err := NewManager(Config{TTL: time.Minute, SigningMethod: MethodEd25519, PrivateKey: priv, PublicKey: pub, KeyID: "k1"})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	now := time.Unix(1_700_000_000, 0)

	token, _, err := m.Issue("erin@example.com", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(token, now); err != nil {
		t.Fatalf("verify: %v", err)
	}

	verifyOnly, err := NewManager(Config{TTL: time.Minute, SigningMethod: MethodEd25519, PublicKey: pub, KeyID: "k2"})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if _, err := verifyOnly.Verify(token, now); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected kid mismatch rejected, got %v", err)
	}
}

func TestVerifyConcurrent(t *testing.T) {
	m := newTestManager(t, time.Hour)
	now := time.Unix(1_700_000_000, 0)
	token, _, err := m.Issue("frank@example.com", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Verify(token, now); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent verify failed: %v", err)
	}
}
