package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/verifact"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderKinds(t *testing.T) {
	msg, err := Render(verifact.Notification{
		Kind: verifact.NotifyResetPassword,
		To:   "bob@example.com",
		Name: "Bob",
		Code: "123456",
		TTL:  15 * time.Minute,
	})
	require.NoError(t, err)
	assert.Equal(t, "Password Reset OTP", msg.Subject)
	assert.Contains(t, msg.Body, "Hello Bob")
	assert.Contains(t, msg.Body, "123456")
	assert.Contains(t, msg.Body, "15 minutes")

	welcome, err := Render(verifact.Notification{Kind: verifact.NotifyWelcome})
	require.NoError(t, err)
	assert.Contains(t, welcome.Body, "Hello there")

	_, err = Render(verifact.Notification{Kind: "sms"})
	require.Error(t, err)
}

func TestNewSMTPSenderValidates(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{Port: 25, From: "a@example.com"}, nil)
	require.Error(t, err)
	_, err = NewSMTPSender(SMTPConfig{Host: "localhost", Port: 0, From: "a@example.com"}, nil)
	require.Error(t, err)
	_, err = NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25}, nil)
	require.Error(t, err)
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()
	s, err := NewSMTPSender(SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "mailer",
		Password: "pw",
		From:     "noreply@example.com",
	}, logger)
	require.NoError(t, err)

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
		gotAuth smtp.Auth
	)
	s.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotTo, gotMsg = addr, a, to, string(msg)
		return nil
	}

	err = s.Notify(context.Background(), verifact.Notification{
		Kind: verifact.NotifyVerifyEmail,
		To:   "erin@example.com",
		Name: "Erin",
		Code: "654321",
		TTL:  15 * time.Minute,
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, []string{"erin@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(gotMsg, "From: noreply@example.com\r\nTo: erin@example.com\r\nSubject: Account Verification OTP\r\n"))
	assert.Contains(t, gotMsg, "654321")
}

func TestSMTPSenderSurfacesFailure(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25, From: "noreply@example.com"}, nil)
	require.NoError(t, err)
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("421 service not available")
	}

	err = s.Notify(context.Background(), verifact.Notification{Kind: verifact.NotifyWelcome, To: "a@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "421")
}

func TestSMTPSenderHonoursCancelledContext(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25, From: "noreply@example.com"}, nil)
	require.NoError(t, err)
	called := false
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Notify(ctx, verifact.Notification{Kind: verifact.NotifyWelcome}), context.Canceled)
	assert.False(t, called)
}

func TestLogSenderLogsCode(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	s := NewLogSender(logger)

	require.NoError(t, s.Notify(context.Background(), verifact.Notification{
		Kind: verifact.NotifyVerifyEmail,
		To:   "erin@example.com",
		Code: "111222",
	}))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "111222", entry.Data["code"])
}
