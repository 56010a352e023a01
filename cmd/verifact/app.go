package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/MrEthical07/verifact"
	"github.com/MrEthical07/verifact/config"
	"github.com/MrEthical07/verifact/httpapi"
	promexport "github.com/MrEthical07/verifact/metrics/export/prometheus"
	"github.com/MrEthical07/verifact/notify"
	"github.com/MrEthical07/verifact/userstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// app owns the process-lifetime collaborators.
type app struct {
	engine  *verifact.Engine
	server  *httpapi.Server
	redis   redis.UniversalClient
	db      *sql.DB
	logger  logrus.FieldLogger
	metrics *prometheus.Registry
}

func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*app, error) {
	a := &app{logger: logger}

	users, err := a.userStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	builder := verifact.New().
		WithConfig(cfg.ToEngineConfig()).
		WithUserStore(users).
		WithNotifier(notifier).
		WithLogger(logger).
		WithAuditSink(verifact.NewLogrusSink(logger.WithField("component", "audit")))

	if cfg.RedisAddr != "" {
		a.redis = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		builder = builder.WithRedis(a.redis)
	}

	a.engine, err = builder.Build()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build engine: %w", err)
	}

	report := a.engine.SecurityReport()
	logger.WithFields(logrus.Fields{
		"signing":       report.SigningAlgorithm,
		"token_ttl":     report.TokenTTL.String(),
		"otp_ttl":       report.OTPTTL.String(),
		"rate_limiting": report.RateLimitingActive,
		"attempt_cap":   report.OTPAttemptCapActive,
		"audit":         report.AuditActive,
	}).Info("security posture")
	for _, w := range report.Warnings {
		logger.WithField("warning", w).Warn("security posture")
	}

	a.server = httpapi.New(a.engine, httpapi.Options{
		BasePath:     cfg.BasePath,
		CookieSecure: cfg.CookieSecure,
		Logger:       logger,
	})

	if cfg.MetricsEnabled {
		a.metrics = prometheus.NewRegistry()
		a.metrics.MustRegister(promexport.NewCollector(a.engine))
		a.server.Router().Handle("/metrics", promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{}))
	}

	return a, nil
}

func (a *app) userStore(ctx context.Context, cfg *config.Config) (verifact.UserStore, error) {
	if cfg.DatabaseURL == "" {
		a.logger.Warn("DATABASE_URL not set, accounts are kept in memory")
		return userstore.NewMemory(), nil
	}

	db, err := userstore.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.db = db
	if err := userstore.Migrate(ctx, db); err != nil {
		return nil, err
	}
	return userstore.NewPostgres(db), nil
}

func newNotifier(cfg *config.Config, logger logrus.FieldLogger) (verifact.Notifier, error) {
	switch cfg.Notifier {
	case "smtp":
		return notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, logger)
	case "log":
		logger.Warn("NOTIFIER=log prints one-time codes to the log; do not use in production")
		return notify.NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}
}

func (a *app) Handler() http.Handler {
	return a.server.Handler()
}

// Close releases everything newApp opened. It is safe on a partial app.
func (a *app) Close() {
	if a.engine != nil {
		a.engine.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
