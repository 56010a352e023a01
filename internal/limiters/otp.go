package limiters

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/verifact/internal/rate"
	"github.com/redis/go-redis/v9"
)

var (
	ErrOTPRateLimited        = errors.New("otp rate limited")
	ErrOTPLimiterUnavailable = errors.New("otp limiter unavailable")
)

type OTPConfig struct {
	EnableIPThrottle bool
	Window           time.Duration
	MaxSends         int
	MaxConfirms      int
}

type OTPLimiter struct {
	redis  redis.UniversalClient
	config OTPConfig
}

func NewOTPLimiter(redisClient redis.UniversalClient, cfg OTPConfig) *OTPLimiter {
	return &OTPLimiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckSend counts one code send for (purpose, subject) and ip.
func (l *OTPLimiter) CheckSend(ctx context.Context, purpose, subject, ip string) error {
	if l == nil {
		return nil
	}
	if err := l.enforceFixedWindow(ctx, sendSubjectKey(purpose, subject), l.config.MaxSends); err != nil {
		return err
	}
	if l.config.EnableIPThrottle && ip != "" {
		if err := l.enforceFixedWindow(ctx, sendIPKey(purpose, ip), l.config.MaxSends); err != nil {
			return err
		}
	}
	return nil
}

// CheckConfirm counts one confirmation attempt for (purpose, subject) and ip.
func (l *OTPLimiter) CheckConfirm(ctx context.Context, purpose, subject, ip string) error {
	if l == nil {
		return nil
	}
	if err := l.enforceFixedWindow(ctx, confirmSubjectKey(purpose, subject), l.config.MaxConfirms); err != nil {
		return err
	}
	if l.config.EnableIPThrottle && ip != "" {
		if err := l.enforceFixedWindow(ctx, confirmIPKey(purpose, ip), l.config.MaxConfirms); err != nil {
			return err
		}
	}
	return nil
}

func (l *OTPLimiter) Window() time.Duration {
	return l.config.Window
}

func (l *OTPLimiter) enforceFixedWindow(ctx context.Context, key string, max int) error {
	if max <= 0 {
		return nil
	}
	count, err := rate.IncrementWindow(ctx, l.redis, key, l.config.Window)
	if err != nil {
		return errors.Join(ErrOTPLimiterUnavailable, err)
	}
	if count > int64(max) {
		return ErrOTPRateLimited
	}
	return nil
}

func sendSubjectKey(purpose, subject string) string {
	return "vos:" + purpose + ":" + subject
}

func sendIPKey(purpose, ip string) string {
	return "vosip:" + purpose + ":" + ip
}

func confirmSubjectKey(purpose, subject string) string {
	return "voc:" + purpose + ":" + subject
}

func confirmIPKey(purpose, ip string) string {
	return "vocip:" + purpose + ":" + ip
}
