package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Fields carries structured log fields.
type Fields map[string]any

// Logger is the logging interface used across the service.
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(msg string, fields ...Fields)
	Fatal(msg string, fields ...Fields)

	WithField(key string, value any) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger

	SetLevel(level string)
	SetOutput(w io.Writer)
}

// logrusLogger wraps a logrus logger and a field-carrying entry.
type logrusLogger struct {
	logger *logrus.Logger
	entry  *logrus.Entry
}

var (
	globalLogger *logrusLogger
	once         sync.Once
)

// Init initializes the global logger. Safe to call more than once.
func Init() {
	once.Do(func() {
		globalLogger = newLogrusLogger()
		configureFromEnv(globalLogger)
	})
}

func newLogrusLogger() *logrusLogger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	return &logrusLogger{
		logger: l,
		entry:  logrus.NewEntry(l),
	}
}

func configureFromEnv(l *logrusLogger) {
	if level := os.Getenv("COMPLIAD_LOG_LEVEL"); level != "" {
		l.SetLevel(level)
	}
	if format := os.Getenv("COMPLIAD_LOG_FORMAT"); strings.EqualFold(format, "json") {
		l.logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if logFile := os.Getenv("COMPLIAD_LOG_FILE"); logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err == nil {
			l.logger.SetOutput(file)
			l.logger.SetFormatter(&logrus.JSONFormatter{})
		}
	}
}

// GetLogger returns the global logger instance.
func GetLogger() Logger {
	if globalLogger == nil {
		Init()
	}
	return globalLogger
}

// New creates an independent logger instance.
func New() Logger {
	return newLogrusLogger()
}

func (l *logrusLogger) SetLevel(level string) {
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.logger.SetLevel(parsed)
}

func (l *logrusLogger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

func (l *logrusLogger) WithField(key string, value any) Logger {
	return &logrusLogger{logger: l.logger, entry: l.entry.WithField(key, value)}
}

func (l *logrusLogger) WithFields(fields Fields) Logger {
	return &logrusLogger{logger: l.logger, entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *logrusLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return &logrusLogger{logger: l.logger, entry: l.entry.WithError(err)}
}

func (l *logrusLogger) Debug(msg string, fields ...Fields) {
	l.withMerged(fields).Debug(msg)
}

func (l *logrusLogger) Info(msg string, fields ...Fields) {
	l.withMerged(fields).Info(msg)
}

func (l *logrusLogger) Warn(msg string, fields ...Fields) {
	l.withMerged(fields).Warn(msg)
}

func (l *logrusLogger) Error(msg string, fields ...Fields) {
	l.withMerged(fields).Error(msg)
}

func (l *logrusLogger) Fatal(msg string, fields ...Fields) {
	l.withMerged(fields).Fatal(msg)
}

func (l *logrusLogger) withMerged(extra []Fields) *logrus.Entry {
	entry := l.entry
	for _, f := range extra {
		entry = entry.WithFields(logrus.Fields(f))
	}
	return entry
}

// Global convenience methods.
func Debug(msg string, fields ...Fields) {
	GetLogger().Debug(msg, fields...)
}

func Info(msg string, fields ...Fields) {
	GetLogger().Info(msg, fields...)
}

func Warn(msg string, fields ...Fields) {
	GetLogger().Warn(msg, fields...)
}

func Error(msg string, fields ...Fields) {
	GetLogger().Error(msg, fields...)
}

func Fatal(msg string, fields ...Fields) {
	GetLogger().Fatal(msg, fields...)
}

func WithField(key string, value any) Logger {
	return GetLogger().WithField(key, value)
}

func WithFields(fields Fields) Logger {
	return GetLogger().WithFields(fields)
}

func WithError(err error) Logger {
	return GetLogger().WithError(err)
}
