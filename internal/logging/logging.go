package logging

import (
	"fmt"
	"io"
	"os"

	"dupetrack/internal/config"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the diagnostics logger from config. Logs go to stderr unless a
// file is configured, so they never mix with the operator conversation on
// stdout. The caller closes the returned Closer.
func New(cfg config.LoggingConfig) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	if cfg.File == "" {
		logger.SetOutput(os.Stderr)
		return logger, nopCloser{}, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, f, nil
}

// runIDHook stamps every entry with the run identifier
type runIDHook struct {
	id string
}

func (h runIDHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h runIDHook) Fire(entry *logrus.Entry) error {
	entry.Data["run_id"] = h.id
	return nil
}

// AddRunID tags all entries of logger with a fresh run id and returns it
func AddRunID(logger *logrus.Logger) string {
	id := uuid.NewString()
	logger.AddHook(runIDHook{id: id})
	return id
}
