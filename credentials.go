package verifact

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/MrEthical07/verifact/password"
	"github.com/sirupsen/logrus"
)

// credentialVerifier checks a plaintext password against the stored hash.
// Unknown emails are checked against a dummy hash so the result and the time
// taken match a wrong password.
type credentialVerifier struct {
	users          UserStore
	passwords      *password.Verifier
	dummyHash      string
	upgradeOnLogin bool
	logger         logrus.FieldLogger
}

func newCredentialVerifier(users UserStore, passwords *password.Verifier, upgradeOnLogin bool, logger logrus.FieldLogger) (*credentialVerifier, error) {
	seed := make([]byte, 24)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	dummy, err := passwords.Hash(hex.EncodeToString(seed))
	if err != nil {
		return nil, err
	}
	return &credentialVerifier{
		users:          users,
		passwords:      passwords,
		dummyHash:      dummy,
		upgradeOnLogin: upgradeOnLogin,
		logger:         logger,
	}, nil
}

// Verify returns ok=false for an unknown email and for a wrong password. err
// is set only when the store itself failed.
func (c *credentialVerifier) Verify(ctx context.Context, email, plaintext string) (UserRecord, bool, error) {
	user, err := c.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_, _ = c.passwords.Verify(plaintext, c.dummyHash)
			return UserRecord{}, false, nil
		}
		return UserRecord{}, false, err
	}

	ok, err := c.passwords.Verify(plaintext, user.PasswordHash)
	if err != nil {
		c.logger.WithField("subject", user.Email).Warn("stored password hash is unreadable")
		return UserRecord{}, false, nil
	}
	if !ok {
		return UserRecord{}, false, nil
	}

	if c.upgradeOnLogin && c.passwords.NeedsRehash(user.PasswordHash) {
		c.rehash(ctx, user.Email, plaintext)
	}

	return user, true, nil
}

func (c *credentialVerifier) rehash(ctx context.Context, email, plaintext string) {
	upgraded, err := c.passwords.Hash(plaintext)
	if err != nil {
		// Legacy passwords shorter than the current minimum keep their old hash.
		return
	}
	if err := c.users.UpdatePasswordHash(ctx, email, upgraded); err != nil {
		c.logger.WithError(err).WithField("subject", email).Warn("password hash upgrade failed")
	}
}
