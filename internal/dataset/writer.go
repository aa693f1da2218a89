package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Writer appends JSON lines to a file. All appends go through one mutex so
// concurrent producers cannot interleave partial lines; this is the single
// serialization funnel the engine's callers are required to use.
type Writer struct {
	mu  sync.Mutex
	f   *os.File
	buf *bufio.Writer
	enc *json.Encoder
	n   int
}

// NewWriter creates (or truncates) the file at path, creating parent
// directories as needed.
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	buf := bufio.NewWriter(f)
	return &Writer{f: f, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// Append writes one record as a JSON line.
func (w *Writer) Append(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(v); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	w.n++
	return nil
}

// Count returns the number of records appended so far.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.buf.Flush(); err != nil {
		_ = w.f.Close()
		return err
	}
	return w.f.Close()
}

// ReadAll reads a JSONL file of records back. Blank lines are skipped; a
// malformed line is an error, since generated files are fully machine-written.
func ReadAll[T any](path string) ([]*T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	defer f.Close()

	var records []*T
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxLineBytes)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		rec := new(T)
		if err := json.Unmarshal(raw, rec); err != nil {
			return nil, fmt.Errorf("parse line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read records file: %w", err)
	}
	return records, nil
}

// WriteAll writes records to path in one shot and reports the count.
func WriteAll[T any](path string, records []T) (int, error) {
	w, err := NewWriter(path)
	if err != nil {
		return 0, err
	}
	for _, r := range records {
		if err := w.Append(r); err != nil {
			_ = w.Close()
			return 0, err
		}
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return len(records), nil
}
