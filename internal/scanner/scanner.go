package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"dupetrack/internal/fingerprint"
	"dupetrack/internal/policy"
	"dupetrack/pkg/models"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// MetadataReader reads a metadata record for one file. It must not fail;
// degraded reads come back with default field values.
type MetadataReader interface {
	Read(path string) models.TrackMetadata
}

// Scanner walks a directory tree and groups audio files by fingerprint
type Scanner struct {
	reader     MetadataReader
	extensions []string
	policy     policy.Policy
	logger     *logrus.Logger
}

// Result holds the groups built by a scan plus any errors kept under the
// collect policy.
type Result struct {
	Groups       models.Groups
	FilesScanned int
	Errors       []error
}

// NewScanner creates a scanner. Extensions are matched case-sensitively
// against filepath.Ext, e.g. ".mp3".
func NewScanner(reader MetadataReader, extensions []string, p policy.Policy, logger *logrus.Logger) *Scanner {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scanner{
		reader:     reader,
		extensions: extensions,
		policy:     p,
		logger:     logger,
	}
}

// Scan recursively walks root. Under the abort policy the first walk error
// ends the scan and no result is returned.
func (s *Scanner) Scan(root string) (*Result, error) {
	s.logger.WithField("root", root).Info("Scanning directory")

	result := &Result{Groups: make(models.Groups)}
	errs := policy.NewCollector(s.policy)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			err = fmt.Errorf("walk %s: %w", path, err)
			if handled := errs.Handle(err); handled != nil {
				return handled
			}
			s.logger.WithError(err).WithField("policy", s.policy).Warn("Skipping unreadable path")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext == "" {
			s.logger.WithField("filePath", path).Warn("File has no extension, skipping")
			return nil
		}
		if !s.isSupported(ext) {
			return nil
		}

		track := s.reader.Read(path)
		key := fingerprint.Key(track)
		result.Groups.Add(key, track)
		result.FilesScanned++

		s.logger.WithFields(logrus.Fields{
			"key":      key,
			"filePath": path,
		}).Debug("Got key")
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	result.Errors = errs.Errors()

	s.logger.WithFields(logrus.Fields{
		"files":  result.FilesScanned,
		"groups": len(result.Groups),
		"errors": len(result.Errors),
	}).Info("Scan complete")
	return result, nil
}

// Err combines the errors collected during the scan
func (r *Result) Err() error {
	return multierr.Combine(r.Errors...)
}

func (s *Scanner) isSupported(ext string) bool {
	for _, supported := range s.extensions {
		if ext == supported {
			return true
		}
	}
	return false
}
