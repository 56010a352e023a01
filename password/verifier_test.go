package password

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestVerifierAcceptsArgonAndBcrypt(t *testing.T) {
	v, err := NewVerifier(secureConfig())
	if err != nil {
		t.Fatalf("NewVerifier error: %v", err)
	}

	argonHash, err := v.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if ok, err := v.Verify("secret1", argonHash); err != nil || !ok {
		t.Fatalf("argon verify: ok=%v err=%v", ok, err)
	}
	if ok, err := v.Verify("secret2", argonHash); err != nil || ok {
		t.Fatalf("argon wrong password: ok=%v err=%v", ok, err)
	}
	if v.NeedsRehash(argonHash) {
		t.Fatal("fresh argon hash should not need rehash")
	}

	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	if ok, err := v.Verify("legacy-pass", string(legacy)); err != nil || !ok {
		t.Fatalf("bcrypt verify: ok=%v err=%v", ok, err)
	}
	if ok, err := v.Verify("not-it", string(legacy)); err != nil || ok {
		t.Fatalf("bcrypt wrong password: ok=%v err=%v", ok, err)
	}
	if !v.NeedsRehash(string(legacy)) {
		t.Fatal("bcrypt hash should be flagged for rehash")
	}
}

func TestVerifierRejectsUnknownFormat(t *testing.T) {
	v, err := NewVerifier(secureConfig())
	if err != nil {
		t.Fatalf("NewVerifier error: %v", err)
	}
	if _, err := v.Verify("secret1", "plaintext"); !errors.Is(err, ErrUnsupportedHash) {
		t.Fatalf("expected ErrUnsupportedHash, got %v", err)
	}
}

func TestBcryptHashRoundTrip(t *testing.T) {
	b := NewBcrypt(bcrypt.MinCost)
	hash, err := b.Hash("bcrypt-pass")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if ok, err := b.Verify("bcrypt-pass", hash); err != nil || !ok {
		t.Fatalf("verify: ok=%v err=%v", ok, err)
	}
	if _, err := b.Hash("abc"); !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
}
