package hasher

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSum(t *testing.T) {
	if got := Sum([]byte("hello world")); got != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
		t.Errorf("md5 mismatch: %s", got)
	}
	if got := Sum(nil); got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("empty md5 mismatch: %s", got)
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hash-test")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := File(path)
	if err != nil {
		t.Fatalf("hash file: %v", err)
	}
	if got != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
		t.Errorf("md5 mismatch: %s", got)
	}
	if _, err := File(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
