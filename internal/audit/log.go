package audit

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Header is written once at the top of a new audit file
const Header = "NUMBER - NAME - ALBUM - ARTIST,          OLD PATH,          NEW PATH"

const fieldSeparator = ",          "

var ErrClosed = errors.New("audit: log is closed")

// Log is an append-only record of confirmed deletions. Each record is
// flushed as soon as it is written, so nothing is lost if the run aborts.
type Log struct {
	path   string
	file   *os.File
	writer *bufio.Writer
	count  int
	mutex  sync.Mutex
}

// Open opens (or creates) the audit file at path for appending. The header
// line is written only when the file is empty.
func Open(path string) (*Log, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat audit file: %w", err)
	}

	l := &Log{
		path:   path,
		file:   file,
		writer: bufio.NewWriter(file),
	}

	if stat.Size() == 0 {
		if err := l.writeLine(Header); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write audit header: %w", err)
		}
	}

	return l, nil
}

// Record appends one deletion: the group fingerprint, the deleted path and
// the path that was kept in its place.
func (l *Log) Record(key, deletedPath, retainedPath string) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.file == nil {
		return ErrClosed
	}
	if err := l.writeLine(key + fieldSeparator + deletedPath + fieldSeparator + retainedPath); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	l.count++
	return nil
}

// Count returns the number of records written through this handle
func (l *Log) Count() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.count
}

// Path returns the audit file location
func (l *Log) Path() string {
	return l.path
}

// Close flushes and closes the file. Calling it more than once is safe.
func (l *Log) Close() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.file == nil {
		return nil
	}
	flushErr := l.writer.Flush()
	closeErr := l.file.Close()
	l.file = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

func (l *Log) writeLine(line string) error {
	if _, err := l.writer.WriteString(line + "\n"); err != nil {
		return err
	}
	return l.writer.Flush()
}
