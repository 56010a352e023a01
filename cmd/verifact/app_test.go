package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/verifact/config"
	"github.com/MrEthical07/verifact/notify"
	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		HTTPAddr:        ":0",
		BasePath:        "/api/v1.0",
		Env:             "development",
		JWTSecret:       "0123456789abcdef0123456789abcdef",
		JWTTTL:          time.Hour,
		OTPTTL:          15 * time.Minute,
		OTPDigits:       6,
		RateLimitMax:    5,
		RateLimitWindow: 15 * time.Minute,
		Notifier:        "log",
		LogLevel:        "info",
		MetricsEnabled:  true,
	}
}

func TestAppServesAPIAndMetrics(t *testing.T) {
	logger, _ := test.NewNullLogger()
	a, err := newApp(context.Background(), testConfig(), logger)
	require.NoError(t, err)
	defer a.Close()

	body := `{"name":"Alice","email":"alice@example.com","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1.0/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var profile map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "alice@example.com", profile["email"])

	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "verifact_account_created_total 1")
}

func TestAppWithRedisAndMetricsDisabled(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.RedisAddr = mr.Addr()
	cfg.RateLimitEnabled = true
	cfg.MetricsEnabled = false

	logger, _ := test.NewNullLogger()
	a, err := newApp(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer a.Close()

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAppRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.RedisAddr = addr

	logger, _ := test.NewNullLogger()
	_, err := newApp(context.Background(), cfg, logger)
	require.Error(t, err)
}

func TestNewNotifier(t *testing.T) {
	logger, _ := test.NewNullLogger()

	n, err := newNotifier(testConfig(), logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.LogSender{}, n)

	cfg := testConfig()
	cfg.Notifier = "smtp"
	cfg.SMTPHost = "smtp.example.com"
	cfg.SMTPPort = 587
	cfg.SMTPFrom = "noreply@example.com"
	n, err = newNotifier(cfg, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.SMTPSender{}, n)

	cfg.Notifier = "pigeon"
	_, err = newNotifier(cfg, logger)
	require.Error(t, err)
}
