package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger interface for structured logging
type Logger interface {
	Info(ctx context.Context, message string, fields map[string]interface{})
	Error(ctx context.Context, message string, err error, fields map[string]interface{})
	Warn(ctx context.Context, message string, fields map[string]interface{})
	Debug(ctx context.Context, message string, fields map[string]interface{})
	WithFields(fields map[string]interface{}) Logger
}

type correlationIDKey struct{}

// ContextWithCorrelationID stores the request correlation ID for later log entries.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationIDFromContext returns the correlation ID set by the HTTP middleware, if any.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// structuredLogger implements Logger on top of logrus
type structuredLogger struct {
	logger *logrus.Logger
	fields map[string]interface{}
}

// LogEntry is the structured payload attached to each log line
type LogEntry struct {
	Timestamp     string                 `json:"timestamp"`
	Level         string                 `json:"level"`
	Message       string                 `json:"message"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Error         string                 `json:"error,omitempty"`
	Fields        map[string]interface{} `json:"fields,omitempty"`
	Service       string                 `json:"service"`
}

// LoggerConfig configuration for the logger
type LoggerConfig struct {
	Level       string
	Format      string
	ServiceName string
	// Output defaults to stdout.
	Output io.Writer
}

// NewStructuredLogger creates a logrus-backed Logger
func NewStructuredLogger(config LoggerConfig) Logger {
	logrusLogger := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrusLogger.SetLevel(level)

	if config.Format == "json" {
		logrusLogger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		logrusLogger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339Nano,
			FullTimestamp:   true,
		})
	}

	if config.Output != nil {
		logrusLogger.SetOutput(config.Output)
	} else {
		logrusLogger.SetOutput(os.Stdout)
	}

	return &structuredLogger{
		logger: logrusLogger,
		fields: map[string]interface{}{
			"service": config.ServiceName,
		},
	}
}

// NewNopLogger discards everything. Used by tests and tools.
func NewNopLogger() Logger {
	return NewStructuredLogger(LoggerConfig{Level: "panic", Format: "text", Output: io.Discard})
}

func (l *structuredLogger) Info(ctx context.Context, message string, fields map[string]interface{}) {
	l.log(l.createEntry(ctx, "INFO", message, nil, fields))
}

func (l *structuredLogger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
	l.log(l.createEntry(ctx, "ERROR", message, err, fields))
}

func (l *structuredLogger) Warn(ctx context.Context, message string, fields map[string]interface{}) {
	l.log(l.createEntry(ctx, "WARN", message, nil, fields))
}

func (l *structuredLogger) Debug(ctx context.Context, message string, fields map[string]interface{}) {
	l.log(l.createEntry(ctx, "DEBUG", message, nil, fields))
}

// WithFields returns a logger carrying additional base fields
func (l *structuredLogger) WithFields(fields map[string]interface{}) Logger {
	newFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &structuredLogger{
		logger: l.logger,
		fields: newFields,
	}
}

func (l *structuredLogger) createEntry(ctx context.Context, level, message string, err error, fields map[string]interface{}) LogEntry {
	entry := LogEntry{
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		Level:         level,
		Message:       message,
		CorrelationID: CorrelationIDFromContext(ctx),
		Fields:        make(map[string]interface{}),
	}

	if err != nil {
		entry.Error = err.Error()
	}

	for k, v := range l.fields {
		entry.Fields[k] = v
	}
	for k, v := range fields {
		entry.Fields[k] = v
	}
	if svc, ok := l.fields["service"].(string); ok {
		entry.Service = svc
	}

	if pc, file, line, ok := runtime.Caller(2); ok {
		funcName := runtime.FuncForPC(pc).Name()
		entry.Fields["caller"] = fmt.Sprintf("%s:%d %s", file, line, funcName)
	}

	return entry
}

func (l *structuredLogger) log(entry LogEntry) {
	fields := logrus.Fields{}

	if entry.CorrelationID != "" {
		fields["correlation_id"] = entry.CorrelationID
	}
	if entry.Error != "" {
		fields["error"] = entry.Error
	}
	for k, v := range entry.Fields {
		fields[k] = v
	}

	if jsonData, err := json.Marshal(entry); err == nil {
		fields["structured_data"] = string(jsonData)
	}

	switch entry.Level {
	case "ERROR":
		l.logger.WithFields(fields).Error(entry.Message)
	case "WARN":
		l.logger.WithFields(fields).Warn(entry.Message)
	case "DEBUG":
		l.logger.WithFields(fields).Debug(entry.Message)
	default:
		l.logger.WithFields(fields).Info(entry.Message)
	}
}

// Helper functions for common logging scenarios

// LogLifecycleEvent records a state transition of a governed entity
func LogLifecycleEvent(ctx context.Context, logger Logger, entityType, action, entityID, actorID string, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["event_type"] = "lifecycle"
	fields["entity_type"] = entityType
	fields["action"] = action
	fields["entity_id"] = entityID
	if actorID != "" {
		fields["performed_by"] = actorID
	}

	logger.Info(ctx, fmt.Sprintf("Lifecycle event: %s %s", entityType, action), fields)
}

// LogSecurityEvent for security events
func LogSecurityEvent(ctx context.Context, logger Logger, event string, severity string, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["event_type"] = "security"
	fields["security_event"] = event
	fields["severity"] = severity

	message := fmt.Sprintf("Security event: %s", event)

	switch severity {
	case "HIGH":
		logger.Error(ctx, message, nil, fields)
	case "MEDIUM":
		logger.Warn(ctx, message, fields)
	default:
		logger.Info(ctx, message, fields)
	}
}

// LogPerformance for performance metrics
func LogPerformance(ctx context.Context, logger Logger, operation string, duration time.Duration, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["event_type"] = "performance"
	fields["operation"] = operation
	fields["duration_ms"] = duration.Milliseconds()
	fields["duration_human"] = duration.String()

	message := fmt.Sprintf("Performance: %s took %s", operation, duration)
	logger.Info(ctx, message, fields)
}
