package verifact

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/MrEthical07/verifact/internal/audit"
	"github.com/sirupsen/logrus"
)

// Identity is the resolved principal for one request. It is built from the
// UserStore, never from token claims, and is not mutated after construction.
type Identity struct {
	Subject     string
	Authorities []string
}

// HasAuthority reports whether the identity carries authority.
func (i Identity) HasAuthority(authority string) bool {
	for _, a := range i.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// UserRecord is an account as the UserStore persists it. Email is the
// subject of every token and OTP.
type UserRecord struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Enabled       bool
	EmailVerified bool
	Authorities   []string
	CreatedAt     time.Time
}

// CreateUserInput carries an already-hashed password to the store.
type CreateUserInput struct {
	Name         string
	Email        string
	PasswordHash string
	Authorities  []string
}

// UserStore is the account persistence collaborator.
//
// GetUserByEmail returns ErrUserNotFound for unknown emails; CreateUser
// returns ErrAccountExists for duplicates. Other errors are treated as
// backend failures.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, email, passwordHash string) error
	MarkEmailVerified(ctx context.Context, email string) error
}

// NotificationKind selects the message template.
type NotificationKind string

const (
	NotifyVerifyEmail   NotificationKind = "verify-email"
	NotifyResetPassword NotificationKind = "reset-password"
	NotifyWelcome       NotificationKind = "welcome"
)

// Notification is one outbound message. Code is empty for NotifyWelcome.
type Notification struct {
	Kind NotificationKind
	To   string
	Name string
	Code string
	TTL  time.Duration
}

// Notifier delivers notifications on a best-effort basis. The Engine does
// not retry failed deliveries.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// LoginResult is returned by a successful [Engine.Login]. The caller decides
// how Token travels to the client.
type LoginResult struct {
	Identity  Identity
	Token     string
	ExpiresAt time.Time
}

// RegisterRequest is the input to [Engine.Register].
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// Profile is the public view of an account.
type Profile struct {
	UserID        string
	Name          string
	Email         string
	EmailVerified bool
}

func profileFromRecord(u UserRecord) Profile {
	return Profile{
		UserID:        u.ID,
		Name:          u.Name,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
	}
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// LogrusSink is an [AuditSink] that logs events through logrus.
type LogrusSink = internalaudit.LogrusSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewLogrusSink creates a [LogrusSink]. A nil logger uses the logrus
// standard logger.
func NewLogrusSink(logger logrus.FieldLogger) *LogrusSink {
	return internalaudit.NewLogrusSink(logger)
}
