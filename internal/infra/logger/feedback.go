// internal/infra/logger/feedback.go
package logger

import (
	"github.com/sirupsen/logrus"

	"wellbeing_alert_bot/internal/domain/delivery"
)

// LogFeedback surfaces delivery outcomes through the application log,
// independent of the delivery channels themselves.
type LogFeedback struct {
	entry *logrus.Entry
}

var _ delivery.Feedback = (*LogFeedback)(nil)

func NewLogFeedback(entry *logrus.Entry) *LogFeedback {
	return &LogFeedback{entry: entry}
}

func (f *LogFeedback) Success(msg string) {
	f.entry.Info(msg)
}

func (f *LogFeedback) Failure(msg string) {
	f.entry.Warn(msg)
}
