// Package stores provides the one-time-passcode store used by email
// verification and password reset.
//
// # Design
//
// [OTPStore] generates codes and delegates persistence to an [OTPBackend].
// Two backends exist: [RedisOTPBackend] persists a versioned, binary-encoded
// record per (purpose, subject) key and mutates it inside WATCH/MULTI
// optimistic transactions with retry on contention; [MemoryOTPBackend] keeps
// the same records in a map guarded by a mutex.
//
// Saving a record overwrites the key, so a fresh code supersedes any earlier
// one for the same (purpose, subject). A matching Consume deletes the record,
// so at most one concurrent caller can observe success. Only a SHA-256 digest
// of the code is persisted and it is compared in constant time.
//
// # What this package must NOT do
//
//   - Import verifact or any sibling internal package.
//   - Log or expose plaintext codes.
//   - Hold a lock or transaction open while calling out of the package.
package stores
