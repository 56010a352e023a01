package stores

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	otpRecordVersionV1 = 1
	otpConsumeRetries  = 8
)

// RedisOTPBackend keeps OTP records in Redis under "<prefix>:<purpose>:<subject>".
type RedisOTPBackend struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisOTPBackend returns a backend using prefix "otp" when prefix is empty.
func NewRedisOTPBackend(redisClient redis.UniversalClient, prefix string) *RedisOTPBackend {
	if prefix == "" {
		prefix = "otp"
	}
	return &RedisOTPBackend{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *RedisOTPBackend) key(purpose Purpose, subject string) string {
	return otpKey(s.prefix, purpose, subject)
}

// Save overwrites the record for the key.
func (s *RedisOTPBackend) Save(
	ctx context.Context,
	purpose Purpose,
	subject string,
	record *OTPRecord,
	_ time.Time,
	retention time.Duration,
) error {
	encoded, err := encodeOTPRecord(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(purpose, subject), encoded, retention).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrOTPUnavailable, err)
	}

	return nil
}

// Consume checks provided against the stored hash inside a WATCH/MULTI
// transaction. The record is deleted on match or expiry; on mismatch it is
// kept, with its attempt counter bumped.
func (s *RedisOTPBackend) Consume(
	ctx context.Context,
	purpose Purpose,
	subject string,
	provided [32]byte,
	now time.Time,
	maxAttempts int,
) error {
	key := s.key(purpose, subject)

	del := func(tx *redis.Tx) error {
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}

	for i := 0; i < otpConsumeRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return ErrOTPNotFound
				}
				return err
			}

			record, err := decodeOTPRecord(data)
			if err != nil {
				if delErr := del(tx); delErr != nil {
					return delErr
				}
				return ErrOTPNotFound
			}

			if now.UnixNano() >= record.ExpiresAt {
				if err := del(tx); err != nil {
					return err
				}
				return ErrOTPExpired
			}

			if subtle.ConstantTimeCompare(record.CodeHash[:], provided[:]) != 1 {
				record.Attempts++
				if maxAttempts > 0 && int(record.Attempts) >= maxAttempts {
					if err := del(tx); err != nil {
						return err
					}
					return ErrOTPAttemptsExceeded
				}

				updated, err := encodeOTPRecord(record)
				if err != nil {
					return err
				}

				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Set(ctx, key, updated, redis.KeepTTL)
					return nil
				})
				if err != nil {
					return err
				}
				return ErrOTPWrongCode
			}

			return del(tx)
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, ErrOTPNotFound),
				errors.Is(err, ErrOTPWrongCode),
				errors.Is(err, ErrOTPExpired),
				errors.Is(err, ErrOTPAttemptsExceeded):
				return err
			default:
				return fmt.Errorf("%w: %v", ErrOTPUnavailable, err)
			}
		}

		return nil
	}

	// Contention never settled; another caller kept rewriting the key.
	return ErrOTPNotFound
}

func encodeOTPRecord(record *OTPRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(otpRecordVersionV1)

	if err := binary.Write(&buf, binary.BigEndian, record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	if len(record.Subject) > 65535 {
		return nil, errors.New("otp record subject too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.Subject))); err != nil {
		return nil, err
	}
	buf.WriteString(record.Subject)
	buf.Write(record.CodeHash[:])

	return buf.Bytes(), nil
}

func decodeOTPRecord(data []byte) (*OTPRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != otpRecordVersionV1 {
		return nil, errors.New("invalid otp record version")
	}

	record := &OTPRecord{}

	if err := binary.Read(reader, binary.BigEndian, &record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	var subjectLen uint16
	if err := binary.Read(reader, binary.BigEndian, &subjectLen); err != nil {
		return nil, err
	}

	subject := make([]byte, subjectLen)
	if _, err := io.ReadFull(reader, subject); err != nil {
		return nil, err
	}
	record.Subject = string(subject)

	if _, err := io.ReadFull(reader, record.CodeHash[:]); err != nil {
		return nil, err
	}

	return record, nil
}
