package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestJSONLWriterFlushesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal", "closures.jsonl")
	w, err := NewJSONLWriter(path, 16, 1, 1)
	if err != nil {
		t.Fatalf("NewJSONLWriter() error = %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := w.Write(map[string]int{"tab_id": i}); err != nil {
			t.Fatalf("Write(%d) error = %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()

	var ids []int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec struct {
			TabID int `json:"tab_id"`
		}
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("line %q is not JSON: %v", sc.Text(), err)
		}
		ids = append(ids, rec.TabID)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Fatalf("ids = %v; want [1 2 3]", ids)
	}
}

func TestJSONLWriterRejectsAfterClose(t *testing.T) {
	w, err := NewJSONLWriter(filepath.Join(t.TempDir(), "j.jsonl"), 1, 1, 1)
	if err != nil {
		t.Fatalf("NewJSONLWriter() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Write("late"); !errors.Is(err, ErrJournalClosed) {
		t.Fatalf("Write() after Close = %v; want ErrJournalClosed", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
