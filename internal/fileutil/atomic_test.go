package fileutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func assertOnlyFile(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	for _, entry := range entries {
		if entry.Name() != name {
			t.Errorf("Unexpected file in directory: %s", entry.Name())
		}
	}
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "report.txt")

	if err := WriteFileAtomic(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("second"), 0o600); err != nil {
		t.Fatalf("WriteFileAtomic overwrite failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("File content mismatch: got %q, want %q", data, "second")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("File permissions mismatch: got %o, want %o", info.Mode().Perm(), 0o600)
	}

	assertOnlyFile(t, tmpDir, "report.txt")
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "report.txt")
	if err := WriteFileAtomic(path, []byte("x"), 0o644); err == nil {
		t.Error("Expected error writing into a missing directory")
	}
}

func TestWriteJSONAtomic(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "report.json")
	in := map[string]int{"hands": 70, "calls": 41}

	if err := WriteJSONAtomic(path, in, 0o644); err != nil {
		t.Fatalf("WriteJSONAtomic failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	var out map[string]int
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if out["hands"] != 70 || out["calls"] != 41 {
		t.Errorf("Unexpected content: %v", out)
	}

	if err := WriteJSONAtomic(path, func() {}, 0o644); err == nil {
		t.Error("Expected error encoding a func")
	}
	assertOnlyFile(t, tmpDir, "report.json")
}
