package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ErrJournalClosed is returned by Write after Close.
var ErrJournalClosed = errors.New("journal is closed")

// ErrJournalFull is returned when the write buffer is saturated.
var ErrJournalFull = errors.New("journal buffer full")

// JSONLWriter appends JSON records, one per line, to a size-rotated file.
// Writes are queued and flushed by a background goroutine.
type JSONLWriter struct {
	path    string
	writeCh chan any
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once

	mu     sync.Mutex
	logger *lumberjack.Logger
}

// NewJSONLWriter opens path for appending. Older segments are kept up to
// maxBackups files of maxSizeMB each.
func NewJSONLWriter(path string, bufferSize, maxSizeMB, maxBackups int) (*JSONLWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("journal: mkdir: %w", err)
	}
	if bufferSize <= 0 {
		bufferSize = 256
	}

	w := &JSONLWriter{
		path:    path,
		writeCh: make(chan any, bufferSize),
		done:    make(chan struct{}),
		logger: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     30,
		},
	}

	w.wg.Add(1)
	go w.writeLoop()

	slog.Info("journal opened", "file", path)
	return w, nil
}

// Write queues a record without blocking.
func (w *JSONLWriter) Write(record any) error {
	select {
	case <-w.done:
		return ErrJournalClosed
	default:
	}

	select {
	case w.writeCh <- record:
		return nil
	case <-w.done:
		return ErrJournalClosed
	default:
		slog.Warn("journal buffer full, dropping record", "file", w.path)
		return ErrJournalFull
	}
}

// Close stops the writer after flushing queued records.
func (w *JSONLWriter) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.wg.Wait()

		timeout := time.After(5 * time.Second)
	drain:
		for {
			select {
			case record := <-w.writeCh:
				w.writeRecord(record)
			case <-timeout:
				slog.Warn("journal close timeout, some records may be lost", "file", w.path)
				break drain
			default:
				break drain
			}
		}

		w.mu.Lock()
		err = w.logger.Close()
		w.mu.Unlock()
	})
	return err
}

func (w *JSONLWriter) writeLoop() {
	defer w.wg.Done()

	for {
		select {
		case record := <-w.writeCh:
			w.writeRecord(record)
		case <-w.done:
			return
		}
	}
}

func (w *JSONLWriter) writeRecord(record any) {
	data, err := json.Marshal(record)
	if err != nil {
		slog.Error("journal marshal failed", "error", err, "file", w.path)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.logger.Write(append(data, '\n')); err != nil {
		slog.Error("journal write failed", "error", err, "file", w.path)
	}
}
