// Package history keeps the append-only ledger of completed batches.
package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// --- Constants ---

// FileName is the default ledger file name inside the user config directory.
const FileName = "history.csv"

// TimeLayout is the serialized form of Record.Timestamp.
const TimeLayout = "2006-01-02 15:04:05"

const (
	markYes = "✓"
	markNo  = "✗"
)

// Header is the first row of every ledger file.
var Header = []string{"Date", "ConversionKey", "Mode", "Compressed", "Files", "OutputLocation"}

// --- Error Variables ---

// ErrHistoryLoad indicates the ledger file could not be opened or parsed.
var ErrHistoryLoad = errors.New("failed to load history")

// ErrHistoryPersist indicates the ledger file could not be written.
var ErrHistoryPersist = errors.New("failed to persist history")

// --- Data Structures ---

// Record is one finished batch as stored in the ledger.
type Record struct {
	Timestamp  time.Time
	Direction  string // conversion key, e.g. "pdf_to_pptx"
	Mode       int    // 1 single, 2 multiple, 3 folder; 0 if unreadable
	Compressed bool
	Files      int
	Location   string
}

// Mark renders the Compressed column.
func Mark(compressed bool) string {
	if compressed {
		return markYes
	}
	return markNo
}

func (r Record) row() []string {
	mark := Mark(r.Compressed)
	return []string{
		r.Timestamp.Format(TimeLayout),
		r.Direction,
		strconv.Itoa(r.Mode),
		mark,
		strconv.Itoa(r.Files),
		r.Location,
	}
}

func parseRow(row []string) (Record, error) {
	if len(row) != len(Header) {
		return Record{}, fmt.Errorf("expected %d columns, got %d", len(Header), len(row))
	}
	ts, err := time.ParseInLocation(TimeLayout, row[0], time.Local)
	if err != nil {
		return Record{}, fmt.Errorf("bad date %q: %w", row[0], err)
	}
	mode, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil {
		mode = 0
	}
	files, err := strconv.Atoi(strings.TrimSpace(row[4]))
	if err != nil {
		return Record{}, fmt.Errorf("bad file count %q: %w", row[4], err)
	}
	return Record{
		Timestamp:  ts,
		Direction:  row[1],
		Mode:       mode,
		Compressed: parseMark(row[3]),
		Files:      files,
		Location:   row[5],
	}, nil
}

func parseMark(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case markYes, "true", "1":
		return true
	default:
		return false
	}
}

// --- Interfaces ---

// Ledger stores batch records. Implementations must be safe for concurrent use.
type Ledger interface {
	// Append adds a record at the end of the ledger.
	Append(r Record) error
	// ReadAll returns every record in file order.
	ReadAll() ([]Record, error)
	// Clear removes every record, keeping the header.
	Clear() error
}

// --- CSVLedger Implementation ---

// CSVLedger is a Ledger backed by a CSV file.
type CSVLedger struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

var _ Ledger = (*CSVLedger)(nil)

// DefaultPath returns <user config dir>/converty/history.csv.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "converty", FileName), nil
}

// NewCSVLedger creates a ledger at path. The file is created on first use.
func NewCSVLedger(path string, loggerHandler slog.Handler) *CSVLedger { // minimal comment
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	return &CSVLedger{
		path:   path,
		logger: slog.New(loggerHandler).With(slog.String("component", "historyLedger"), slog.String("path", path)),
	}
}

// Path returns the ledger file location.
func (l *CSVLedger) Path() string { return l.path }

// ensure creates the file with its header if it does not exist yet.
func (l *CSVLedger) ensure() error {
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return err
	}
	w := csv.NewWriter(f)
	_ = w.Write(Header)
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	l.logger.Debug("History file created")
	return f.Close()
}

// Append implements Ledger.
func (l *CSVLedger) Append(r Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensure(); err != nil {
		return fmt.Errorf("%w: %w", ErrHistoryPersist, err)
	}
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("%w: cannot open '%s': %w", ErrHistoryPersist, l.path, err)
	}
	w := csv.NewWriter(f)
	_ = w.Write(r.row())
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %w", ErrHistoryPersist, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrHistoryPersist, err)
	}
	return nil
}

// ReadAll implements Ledger. Rows that cannot be parsed are skipped and logged.
func (l *CSVLedger) ReadAll() ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensure(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHistoryLoad, err)
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open '%s': %w", ErrHistoryLoad, l.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHistoryLoad, err)
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		rec, err := parseRow(row)
		if err != nil {
			l.logger.Warn("Skipping malformed history row", slog.Int("line", i+1), slog.Any("error", err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Clear implements Ledger by atomically replacing the file with a bare header.
func (l *CSVLedger) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrHistoryPersist, err)
	}
	tmp, err := os.CreateTemp(dir, ".history-*.csv")
	if err != nil {
		return fmt.Errorf("%w: cannot create temporary file: %w", ErrHistoryPersist, err)
	}
	tmpPath := tmp.Name()
	w := csv.NewWriter(tmp)
	_ = w.Write(Header)
	w.Flush()
	if err := w.Error(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %w", ErrHistoryPersist, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %w", ErrHistoryPersist, err)
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: cannot replace '%s': %w", ErrHistoryPersist, l.path, err)
	}
	l.logger.Info("History cleared")
	return nil
}
