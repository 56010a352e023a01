// Package password hashes and verifies account passwords.
//
// New hashes are Argon2id in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Stored bcrypt hashes ($2a$, $2b$, $2y$) are still accepted by [Verifier] so that
// accounts imported from older deployments can log in; [Verifier.NeedsRehash]
// reports them for upgrade.
//
// Callers supply plaintext and receive hashes; this package never stores,
// retrieves, or logs passwords.
package password
