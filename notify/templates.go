package notify

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/MrEthical07/verifact"
)

// Message is a rendered notification.
type Message struct {
	Subject string
	Body    string
}

type templateSet struct {
	subject string
	body    *template.Template
}

var templates = map[verifact.NotificationKind]templateSet{
	verifact.NotifyVerifyEmail: {
		subject: "Account Verification OTP",
		body: template.Must(template.New("verify").Parse(
			`Hello {{.Name}},

Your verification code is {{.Code}}. It expires in {{.Minutes}} minutes.

If you did not request this, you can ignore this email.
`)),
	},
	verifact.NotifyResetPassword: {
		subject: "Password Reset OTP",
		body: template.Must(template.New("reset").Parse(
			`Hello {{.Name}},

Your password reset code is {{.Code}}. It expires in {{.Minutes}} minutes.

If you did not request a reset, your password is unchanged.
`)),
	},
	verifact.NotifyWelcome: {
		subject: "Welcome to Verifact",
		body: template.Must(template.New("welcome").Parse(
			`Hello {{.Name}},

Thanks for registering. Sign in and verify your email address to finish
setting up your account.
`)),
	},
}

// Render builds the subject and body for n.
func Render(n verifact.Notification) (Message, error) {
	set, ok := templates[n.Kind]
	if !ok {
		return Message{}, fmt.Errorf("notify: unknown notification kind %q", n.Kind)
	}

	name := n.Name
	if name == "" {
		name = "there"
	}

	var body bytes.Buffer
	err := set.body.Execute(&body, struct {
		Name    string
		Code    string
		Minutes int
	}{
		Name:    name,
		Code:    n.Code,
		Minutes: int(n.TTL / time.Minute),
	})
	if err != nil {
		return Message{}, fmt.Errorf("notify: render %s: %w", n.Kind, err)
	}

	return Message{Subject: set.subject, Body: body.String()}, nil
}
