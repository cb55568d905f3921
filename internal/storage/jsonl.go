package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"simpleswap/internal/model"
)

// JsonlStorage appends emitted logs to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutLogBatch appends a batch of logs as JSON lines. The file is opened per
// batch so a crashed replay leaves every flushed batch readable.
func (s *JsonlStorage) PutLogBatch(ctx context.Context, logs []model.LogRecord) error {
	if len(logs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := OpenJSONL(s.path, true)
	if err != nil {
		return err
	}
	for _, record := range logs {
		if err := w.Write(record); err != nil {
			w.Close()
			return fmt.Errorf("write log record: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// JSONLWriter writes one JSON value per line.
type JSONLWriter struct {
	file   *os.File
	writer *bufio.Writer
}

// OpenJSONL opens path for writing, creating parent directories. appendMode
// keeps existing lines, otherwise the file is truncated.
func OpenJSONL(path string, appendMode bool) (*JSONLWriter, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return &JSONLWriter{file: file, writer: bufio.NewWriter(file)}, nil
}

func (w *JSONLWriter) Write(value interface{}) error {
	line, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if _, err := w.writer.Write(line); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	return nil
}

func (w *JSONLWriter) Close() error {
	if w == nil {
		return nil
	}
	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// ScanJSONL calls fn with the 1-based line number and raw bytes of every
// non-blank line in path. A non-nil error from fn stops the scan.
func ScanJSONL(path string, fn func(line int, raw []byte) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		if err := fn(line, raw); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}
	return nil
}
