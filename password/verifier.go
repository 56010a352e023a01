package password

import "strings"

// Verifier hashes new passwords with Argon2id and verifies stored hashes in
// either Argon2id or bcrypt format.
type Verifier struct {
	argon  *Argon2
	bcrypt *Bcrypt
}

// NewVerifier builds a Verifier whose new hashes use cfg.
func NewVerifier(cfg Config) (*Verifier, error) {
	argon, err := NewArgon2(cfg)
	if err != nil {
		return nil, err
	}
	return &Verifier{argon: argon, bcrypt: NewBcrypt(0)}, nil
}

// Hash returns an Argon2id hash of password.
func (v *Verifier) Hash(password string) (string, error) {
	return v.argon.Hash(password)
}

// Verify dispatches on the hash prefix.
func (v *Verifier) Verify(password string, encodedHash string) (bool, error) {
	switch {
	case strings.HasPrefix(encodedHash, "$"+algorithmID+"$"):
		return v.argon.Verify(password, encodedHash)
	case isBcryptHash(encodedHash):
		return v.bcrypt.Verify(password, encodedHash)
	default:
		return false, ErrUnsupportedHash
	}
}

// NeedsRehash reports whether encodedHash should be replaced with a fresh
// Argon2id hash after the next successful verification.
func (v *Verifier) NeedsRehash(encodedHash string) bool {
	if isBcryptHash(encodedHash) {
		return true
	}
	upgrade, err := v.argon.NeedsUpgrade(encodedHash)
	return err != nil || upgrade
}
