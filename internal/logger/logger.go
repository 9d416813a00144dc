package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Environments. Development logs text, production logs JSON
const (
	EnvDevelopment = "dev"
	EnvProduction  = "prod"
)

// Logger is what services and handlers log through
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	With(args ...any) Logger
	WithGroup(name string) Logger
}

// New creates stderr logger suitable for environment
func New(env string, level string) (Logger, error) {
	return newForEnv(os.Stderr, env, level)
}

func newForEnv(w io.Writer, env string, level string) (Logger, error) {
	switch env {
	case EnvDevelopment:
		return newSlogLogger(w, level, textHandler)
	case EnvProduction:
		return newSlogLogger(w, level, jsonHandler)
	default:
		return nil, fmt.Errorf("unknown environment %q, expected %q or %q", env, EnvDevelopment, EnvProduction)
	}
}

// NewTextLogger is the development logger, used by command line tools
func NewTextLogger(level string) (Logger, error) {
	return newSlogLogger(os.Stderr, level, textHandler)
}

func NewNoOpLogger() Logger {
	return &slogLogger{logger: slog.New(slog.DiscardHandler)}
}
