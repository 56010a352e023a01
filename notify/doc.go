// Package notify delivers verifact notifications by email.
//
// [SMTPSender] renders a plain-text message per notification kind and sends
// it through an SMTP relay. [LogSender] writes the message, code included,
// to a logrus logger and exists for local development only.
package notify
