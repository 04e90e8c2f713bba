package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultDir  = "logs"
	DefaultFile = "moderator.log"

	fileBufferSize = 32 * 1024
)

type Config struct {
	Dir   string
	File  string
	Level string
	// Console mirrors every entry to stdout.
	Console bool
}

// ConfigFromEnv reads LOG_LEVEL; everything else keeps its default.
func ConfigFromEnv() Config {
	return Config{
		Dir:     DefaultDir,
		File:    DefaultFile,
		Level:   os.Getenv("LOG_LEVEL"),
		Console: true,
	}
}

// New builds the JSON logger. The returned close func flushes the file writer.
func New(cfg Config) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})
	logger.SetLevel(ParseLevel(cfg.Level))

	if cfg.Dir == "" {
		cfg.Dir = DefaultDir
	}
	if cfg.File == "" {
		cfg.File = DefaultFile
	}
	logFile := filepath.Join(cfg.Dir, filepath.Base(filepath.Clean(cfg.File)))
	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	writer, err := NewAsyncFileWriter(logFile, fileBufferSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize async log writer: %w", err)
	}
	logger.SetOutput(writer)
	if cfg.Console {
		logger.AddHook(NewConsoleHook(os.Stdout))
	}

	return logger, writer.Close, nil
}

// ParseLevel maps a level name to a logrus level, defaulting to Info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
