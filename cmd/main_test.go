package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"etcfiles/config"
	"etcfiles/logger"
	"etcfiles/output"
	"etcfiles/scanner"
)

func init() {
	logger.Init("error")
}

func TestHandleSignalEventCancelsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)

	done := make(chan struct{})
	go func() {
		handleSignalEvent(cancel, sigChan)
		close(done)
	}()

	sigChan <- syscall.SIGTERM

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected context to be canceled")
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("signal handler did not return")
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("ETCFILES_DISABLE_PROGRESS", "1")
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "app.conf"), []byte("listen = 8080\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return &config.Config{
		Root:           root,
		DpkgAdminDir:   t.TempDir(),
		OutputFormat:   "json",
		OutputFileName: filepath.Join(t.TempDir(), "blueprint.json"),
	}
}

func readOutput(t *testing.T, path string) output.Document {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc output.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return doc
}

func TestRunWritesBlueprint(t *testing.T) {
	cfg := testConfig(t)
	if err := run(context.Background(), cfg); err != nil {
		t.Fatalf("run: %v", err)
	}

	doc := readOutput(t, cfg.OutputFileName)
	if doc.SchemaVersion != output.SchemaVersion {
		t.Fatalf("unexpected schema version %q", doc.SchemaVersion)
	}
	if doc.Metrics == nil || doc.Metrics.StartTime == "" || doc.Metrics.EndTime == "" {
		t.Fatalf("expected scan timestamps, got %+v", doc.Metrics)
	}
	// Without ctime control a single file is never grouped with siblings.
	rec, ok := doc.Files[filepath.Join(cfg.Root, "app.conf")]
	if !ok {
		t.Fatalf("expected app.conf in %v", doc.Files)
	}
	if rec.Content != "listen = 8080\n" || rec.Mode != "100644" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if doc.Host != nil {
		t.Fatal("host facts must be omitted when collection is disabled")
	}
}

func TestRunCancelledWritesPartialBlueprint(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := run(ctx, cfg); err != nil {
		t.Fatalf("cancelled run must not fail: %v", err)
	}
	doc := readOutput(t, cfg.OutputFileName)
	if doc.Files == nil {
		t.Fatal("expected files object in partial blueprint")
	}
}

func TestRunInaccessibleRoot(t *testing.T) {
	cfg := testConfig(t)
	cfg.Root = filepath.Join(cfg.Root, "missing")
	err := run(context.Background(), cfg)
	if !errors.Is(err, scanner.ErrRootInaccessible) {
		t.Fatalf("expected ErrRootInaccessible, got %v", err)
	}
}
