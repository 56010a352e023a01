package stores

import (
	"context"
	"crypto/subtle"
	"math"
	"sync"
	"time"
)

type memoryOTPEntry struct {
	record  OTPRecord
	purgeAt int64
}

// MemoryOTPBackend is a process-local OTPBackend. Records leave the map when
// consumed, overwritten, or once their retention has passed. Retention is
// enforced on Consume for the key and by a sweep on Save whenever any record
// is due.
type MemoryOTPBackend struct {
	mu        sync.Mutex
	records   map[string]memoryOTPEntry
	nextPurge int64
}

func NewMemoryOTPBackend() *MemoryOTPBackend {
	return &MemoryOTPBackend{
		records:   make(map[string]memoryOTPEntry),
		nextPurge: math.MaxInt64,
	}
}

func (m *MemoryOTPBackend) Save(
	_ context.Context,
	purpose Purpose,
	subject string,
	record *OTPRecord,
	now time.Time,
	retention time.Duration,
) error {
	purgeAt := now.Add(retention).UnixNano()

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.UnixNano() >= m.nextPurge {
		m.sweepLocked(now.UnixNano())
	}
	m.records[otpKey("", purpose, subject)] = memoryOTPEntry{record: *record, purgeAt: purgeAt}
	if purgeAt < m.nextPurge {
		m.nextPurge = purgeAt
	}
	return nil
}

// sweepLocked drops every record whose retention ended at or before now.
func (m *MemoryOTPBackend) sweepLocked(now int64) {
	next := int64(math.MaxInt64)
	for key, entry := range m.records {
		if now >= entry.purgeAt {
			delete(m.records, key)
			continue
		}
		if entry.purgeAt < next {
			next = entry.purgeAt
		}
	}
	m.nextPurge = next
}

func (m *MemoryOTPBackend) Consume(
	_ context.Context,
	purpose Purpose,
	subject string,
	provided [32]byte,
	now time.Time,
	maxAttempts int,
) error {
	key := otpKey("", purpose, subject)

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.records[key]
	if !ok {
		return ErrOTPNotFound
	}
	if now.UnixNano() >= entry.purgeAt {
		delete(m.records, key)
		return ErrOTPNotFound
	}

	record := entry.record
	if now.UnixNano() >= record.ExpiresAt {
		delete(m.records, key)
		return ErrOTPExpired
	}

	if subtle.ConstantTimeCompare(record.CodeHash[:], provided[:]) != 1 {
		record.Attempts++
		if maxAttempts > 0 && int(record.Attempts) >= maxAttempts {
			delete(m.records, key)
			return ErrOTPAttemptsExceeded
		}
		entry.record = record
		m.records[key] = entry
		return ErrOTPWrongCode
	}

	delete(m.records, key)
	return nil
}

// Len reports how many records are held.
func (m *MemoryOTPBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
