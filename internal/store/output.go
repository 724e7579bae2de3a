package store

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"showlink/internal/match"
	"showlink/internal/models"
)

// OutputHeader is written first when the output file is new or empty.
const OutputHeader = "Title,Show,Season,Episode,URL,target\n"

// OutputWriter appends output rows one at a time. Writes are serialized within
// the process by a mutex and across processes by an advisory lock file.
type OutputWriter struct {
	mu   sync.Mutex
	f    *os.File
	lock *flock.Flock
}

// OpenOutput opens path for appending, writing the header if the file is empty.
func OpenOutput(path string) (*OutputWriter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}

	w := &OutputWriter{f: f, lock: flock.New(path + ".lock")}

	if err := w.withLock(func() error {
		info, err := f.Stat()
		if err != nil {
			return err
		}
		if info.Size() > 0 {
			return nil
		}
		_, err = f.WriteString(OutputHeader)
		return err
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("write output header: %w", err)
	}

	return w, nil
}

// Write appends one row.
func (w *OutputWriter) Write(rec models.OutputRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.withLock(func() error {
		_, err := w.f.WriteString(FormatRow(rec))
		return err
	})
}

// Close closes the output file.
func (w *OutputWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	lockErr := w.lock.Close()
	if err := w.f.Close(); err != nil {
		return err
	}
	return lockErr
}

func (w *OutputWriter) withLock(fn func() error) error {
	if err := w.lock.Lock(); err != nil {
		return fmt.Errorf("lock output: %w", err)
	}
	defer w.lock.Unlock()

	return fn()
}

// FormatRow renders rec as `"Title",Show,Season,Episode,URL,target`.
// Title is always quoted; the other fields are written as-is, with Show
// whitespace-collapsed to the search term it was matched by.
func FormatRow(rec models.OutputRecord) string {
	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(strings.ReplaceAll(rec.Title, `"`, `""`))
	b.WriteString(`",`)
	b.WriteString(match.SearchTerm(rec.Show))
	b.WriteByte(',')
	b.WriteString(models.FormatInt(rec.Season))
	b.WriteByte(',')
	b.WriteString(models.FormatInt(rec.Episode))
	b.WriteByte(',')
	b.WriteString(rec.SourceURL)
	b.WriteByte(',')
	b.WriteString(rec.TargetURL)
	b.WriteByte('\n')
	return b.String()
}
