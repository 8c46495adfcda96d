package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ashmitsharp/vendlens-api/internal/logger"
)

// Severity classifies an operator notification
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier delivers outcome messages to operators. Notify must not block on delivery.
type Notifier interface {
	Notify(ctx context.Context, message string, severity Severity)
}

// LogNotifier writes notifications to the request logger
type LogNotifier struct{}

// NewLogNotifier creates a notifier backed by zerolog
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs message at a level matching severity
func (n *LogNotifier) Notify(ctx context.Context, message string, severity Severity) {
	log := logger.FromContext(ctx)

	var event *zerolog.Event
	switch severity {
	case SeverityError:
		event = log.Error()
	case SeverityWarning:
		event = log.Warn()
	default:
		event = log.Info()
	}
	event.Str("severity", string(severity)).Msg(message)
}

// Multi fans a notification out to several notifiers
type Multi []Notifier

// Notify forwards to every notifier in order
func (m Multi) Notify(ctx context.Context, message string, severity Severity) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, message, severity)
		}
	}
}
