package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/exeosec/riskd/internal/interfaces"
)

// LogrusLogger adapts a logrus entry to interfaces.Logger. With() returns a
// child carrying the extra fields on every subsequent line.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger builds the deployment logger: JSON formatter, stdout, and
// the given minimum level ("debug", "info", "warn", "error"; anything else
// means info).
func NewLogrusLogger(level string) *LogrusLogger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05Z07:00"})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

func (l *LogrusLogger) withFields(fields []interfaces.Field) *logrus.Entry {
	if len(fields) == 0 {
		return l.entry
	}
	m := make(logrus.Fields, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	return l.entry.WithFields(m)
}

func (l *LogrusLogger) Debug(msg string, fields ...interfaces.Field) {
	l.withFields(fields).Debug(msg)
}

func (l *LogrusLogger) Info(msg string, fields ...interfaces.Field) {
	l.withFields(fields).Info(msg)
}

func (l *LogrusLogger) Warn(msg string, fields ...interfaces.Field) {
	l.withFields(fields).Warn(msg)
}

func (l *LogrusLogger) Error(msg string, fields ...interfaces.Field) {
	l.withFields(fields).Error(msg)
}

func (l *LogrusLogger) With(fields ...interfaces.Field) interfaces.Logger {
	return &LogrusLogger{entry: l.withFields(fields)}
}
