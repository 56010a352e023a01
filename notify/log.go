package notify

import (
	"context"

	"github.com/MrEthical07/verifact"
	"github.com/sirupsen/logrus"
)

// LogSender logs notifications instead of sending them. It prints one-time
// codes and must not run in production.
type LogSender struct {
	logger logrus.FieldLogger
}

var _ verifact.Notifier = (*LogSender)(nil)

func NewLogSender(logger logrus.FieldLogger) *LogSender {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Notify(_ context.Context, n verifact.Notification) error {
	msg, err := Render(n)
	if err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"kind":    string(n.Kind),
		"to":      n.To,
		"subject": msg.Subject,
		"code":    n.Code,
	}).Info("notification (log sender)")
	return nil
}
