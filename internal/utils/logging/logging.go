// Package logging wires logrus and Sentry together so that services can
// report failures with structured context in one call.
package logging

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

var sentryEnabled bool

// Init configures the global logrus logger and, when dsn is set, Sentry.
func Init(level, dsn, environment string) error {
	logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	if dsn == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	}); err != nil {
		return err
	}
	sentryEnabled = true
	return nil
}

// Flush waits for buffered Sentry events.
func Flush() {
	if sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
}

// LogError logs errors with structured context to both console and Sentry.
func LogError(errorType string, err error, context map[string]interface{}) {
	if err == nil {
		return
	}
	entry := logrus.WithFields(logrus.Fields{
		"error_type": errorType,
		"error":      err.Error(),
	})
	for k, v := range context {
		entry = entry.WithField(k, v)
	}
	entry.Error("Error occurred")

	if !sentryEnabled {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_type", errorType)
		for k, v := range context {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// LogEvent logs events with structured context.
func LogEvent(eventType string, data map[string]interface{}) {
	entry := logrus.WithField("event_type", eventType)
	for k, v := range data {
		entry = entry.WithField(k, v)
	}
	entry.Info("Event occurred")

	if !sentryEnabled {
		return
	}
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "info",
		Category:  eventType,
		Data:      data,
		Timestamp: time.Now(),
	})
}
