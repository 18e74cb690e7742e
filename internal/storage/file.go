package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"expenses/internal/ledger"
	"expenses/internal/log"
)

// LoadStatus tells the caller whether prior records were found.
type LoadStatus int

const (
	// StatusNoRecord means the file was missing or empty; the ledger starts empty.
	StatusNoRecord LoadStatus = iota
	// StatusLoaded means the ledger was read from the file.
	StatusLoaded
)

func (s LoadStatus) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusNoRecord:
		return "no_record"
	default:
		return fmt.Sprintf("LoadStatus(%d)", int(s))
	}
}

// FileStore persists a ledger to a single JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the whole ledger. A missing or empty file yields an empty ledger
// and StatusNoRecord. Unreadable content yields a *CorruptError matching
// ErrCorruptLedger and no ledger at all.
func (s *FileStore) Load(ctx context.Context) (*ledger.Ledger, LoadStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, StatusNoRecord, err
	}
	logger := log.ComponentFromContext(ctx, log.ComponentStorage)
	start := time.Now()

	data, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		logger.InfoContext(ctx, "Ledger file not found, starting empty", log.FieldPath, s.path)
		return ledger.New(), StatusNoRecord, nil
	}
	if err != nil {
		logger.ErrorContext(ctx, "Failed to read ledger file", log.NewFields().
			WithOperation(log.OpLoad).
			WithPath(s.path).
			WithDuration(time.Since(start).Milliseconds()).
			WithErrorType(log.ErrorTypeStorage).
			WithError(err).
			ToSlice()...)
		return nil, StatusNoRecord, fmt.Errorf("read ledger file %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		logger.InfoContext(ctx, "Ledger file is empty, starting empty", log.FieldPath, s.path)
		return ledger.New(), StatusNoRecord, nil
	}

	l, err := decodeLedger(bytes.NewReader(data))
	if err != nil {
		var ce *CorruptError
		if errors.As(err, &ce) {
			ce.Path = s.path
		}
		logger.ErrorContext(ctx, "Ledger file is corrupt", log.NewFields().
			WithOperation(log.OpParse).
			WithPath(s.path).
			WithDuration(time.Since(start).Milliseconds()).
			WithErrorType(log.ErrorTypeCorrupt).
			WithError(err).
			ToSlice()...)
		return nil, StatusNoRecord, err
	}

	logger.InfoContext(ctx, "Ledger loaded",
		log.FieldPath, s.path,
		log.FieldDates, l.Len(),
		log.FieldItems, itemCount(l),
		log.FieldDuration, time.Since(start).Milliseconds())
	return l, StatusLoaded, nil
}

func (s *FileStore) read() ([]byte, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Save overwrites the file with the full ledger. Content goes to a temp file
// in the same directory first and is renamed into place, so a failed save
// leaves the previous file intact.
func (s *FileStore) Save(ctx context.Context, l *ledger.Ledger) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := log.ComponentFromContext(ctx, log.ComponentStorage)
	start := time.Now()
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "Failed to save ledger", log.NewFields().
				WithOperation(log.OpSave).
				WithPath(s.path).
				WithDuration(time.Since(start).Milliseconds()).
				WithErrorType(log.ErrorTypeStorage).
				WithError(err).
				ToSlice()...)
		}
	}()

	var buf bytes.Buffer
	if err := encodeLedger(&buf, l); err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace ledger file %s: %w", s.path, err)
	}

	logger.InfoContext(ctx, "Ledger saved",
		log.FieldPath, s.path,
		log.FieldDates, l.Len(),
		log.FieldItems, itemCount(l),
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

func itemCount(l *ledger.Ledger) int {
	n := 0
	for _, d := range l.Dates() {
		day, _ := l.Day(d)
		n += day.ItemCount()
	}
	return n
}
