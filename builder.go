package verifact

import (
	"errors"
	"io"
	"time"

	internalaudit "github.com/MrEthical07/verifact/internal/audit"
	internalflows "github.com/MrEthical07/verifact/internal/flows"
	"github.com/MrEthical07/verifact/internal/limiters"
	"github.com/MrEthical07/verifact/internal/rate"
	"github.com/MrEthical07/verifact/internal/stores"
	"github.com/MrEthical07/verifact/jwt"
	"github.com/MrEthical07/verifact/password"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Builder assembles an [Engine]. Configure it during initialization and call
// Build once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	users     UserStore
	notifier  Notifier
	auditSink AuditSink
	logger    logrus.FieldLogger
	clock     func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis stores OTP records in Redis and enables the optional rate
// limiters. Without it OTPs live in process memory.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the account store. Required.
func (b *Builder) WithUserStore(users UserStore) *Builder {
	b.users = users
	return b
}

// WithNotifier sets the outbound mail collaborator. Required.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the operational logger. The default discards output.
func (b *Builder) WithLogger(logger logrus.FieldLogger) *Builder {
	b.logger = logger
	return b
}

// WithClock overrides time.Now for token and OTP expiry.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.users == nil {
		return nil, errors.New("user store required")
	}
	if b.notifier == nil {
		return nil, errors.New("notifier required")
	}
	if cfg.RateLimit.Enabled && b.redis == nil {
		return nil, errors.New("RateLimit requires redis client")
	}

	logger := b.logger
	if logger == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		logger = quiet
	}

	// -------- TOKENS --------
	jm, err := jwt.NewManager(jwt.Config{
		TTL:           cfg.JWT.TTL,
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		Secret:        cloneBytes(cfg.JWT.Secret),
		PrivateKey:    cloneBytes(cfg.JWT.PrivateKey),
		PublicKey:     cloneBytes(cfg.JWT.PublicKey),
		Issuer:        cfg.JWT.Issuer,
		KeyID:         cfg.JWT.KeyID,
	})
	if err != nil {
		return nil, err
	}

	// -------- PASSWORDS --------
	pv, err := password.NewVerifier(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}
	credentials, err := newCredentialVerifier(b.users, pv, cfg.Password.UpgradeOnLogin, logger)
	if err != nil {
		return nil, err
	}

	// -------- OTP STORE --------
	var backend stores.OTPBackend
	if b.redis != nil {
		backend = stores.NewRedisOTPBackend(b.redis, cfg.OTP.RedisPrefix)
	} else {
		backend = stores.NewMemoryOTPBackend()
	}
	otp, err := stores.NewOTPStore(backend, stores.OTPConfig{
		TTL:         cfg.OTP.TTL,
		Digits:      cfg.OTP.Digits,
		MaxAttempts: cfg.OTP.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:      cfg,
		jwtManager:  jm,
		passwords:   pv,
		credentials: credentials,
		otp:         otp,
		users:       b.users,
		notifier:    b.notifier,
		logger:      logger,
		clock:       b.clock,
		metrics:     NewMetrics(cfg.Metrics),
	}

	// -------- RATE LIMITS --------
	if cfg.RateLimit.Enabled {
		engine.loginLimiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle:      cfg.RateLimit.EnableIPThrottle,
			MaxLoginAttempts:      cfg.RateLimit.MaxLoginAttempts,
			LoginCooldownDuration: cfg.RateLimit.LoginCooldown,
		})
		engine.otpLimiter = limiters.NewOTPLimiter(b.redis, limiters.OTPConfig{
			EnableIPThrottle: cfg.RateLimit.EnableIPThrottle,
			Window:           cfg.RateLimit.OTPWindow,
			MaxSends:         cfg.RateLimit.MaxOTPSends,
			MaxConfirms:      cfg.RateLimit.MaxOTPConfirms,
		})
	}

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	engine.flows = internalflows.New(engine.flowDeps())

	b.built = true

	return engine, nil
}
