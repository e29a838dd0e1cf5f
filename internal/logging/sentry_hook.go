package logging

import (
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// SentryHook forwards error-and-above log entries to sentry
type SentryHook struct {
	levels []logrus.Level
}

func NewSentryHook(levels []logrus.Level) *SentryHook {
	return &SentryHook{
		levels: levels,
	}
}

func (h *SentryHook) Levels() []logrus.Level {
	return h.levels
}

func (h *SentryHook) Fire(entry *logrus.Entry) error {
	switch entry.Level {
	case logrus.PanicLevel, logrus.FatalLevel:
		sentry.CaptureMessage(entry.Message)
		sentry.Flush(0)
	default:
		sentry.CaptureMessage(entry.Message)
	}
	return nil
}
