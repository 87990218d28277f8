package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"etcfiles/logger"
	"etcfiles/tracing"
)

// dirEntry is one lstat'd child of a directory.
type dirEntry struct {
	path     string
	info     os.FileInfo
	isDir    bool // directory, or a symlink resolving to one
	ctime    int64
	hasCtime bool
}

func (e dirEntry) isSymlink() bool {
	return e.info.Mode()&os.ModeSymlink != 0
}

// visitFunc receives a directory together with all of its children.
type visitFunc func(ctx context.Context, dir string, entries []dirEntry) error

type walker interface {
	Walk(ctx context.Context, root string, fn visitFunc) error
}

// fastWalker visits directories top-down using an explicit stack. Symlinks
// to directories are reported as directories but never descended into.
type fastWalker struct{}

func (w fastWalker) Walk(ctx context.Context, root string, fn visitFunc) error {
	info, err := os.Lstat(root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRootInaccessible, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrRootInaccessible, root)
	}
	entries, err := readEntries(root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRootInaccessible, err)
	}

	type item struct {
		path    string
		entries []dirEntry
	}
	stack := []item{{path: root, entries: entries}}
	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current.entries == nil {
			current.entries, err = readEntries(current.path)
			if err != nil {
				logger.Warnf("Failed to read directory %s: %v", current.path, err)
				tracing.Log(ctx, "unreadable_dir", current.path)
				continue
			}
		}

		if err := fn(ctx, current.path, current.entries); err != nil {
			return err
		}

		// Reverse push keeps siblings in name order.
		for i := len(current.entries) - 1; i >= 0; i-- {
			child := current.entries[i]
			if child.isDir && !child.isSymlink() {
				stack = append(stack, item{path: child.path})
			}
		}
	}
	return nil
}

// readEntries lists dir and lstats every child. Children that vanish
// between the listing and the lstat are dropped.
func readEntries(dir string) ([]dirEntry, error) {
	names, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]dirEntry, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name.Name())
		info, err := os.Lstat(path)
		if err != nil {
			logger.Debugf("Failed to lstat %s: %v", path, err)
			continue
		}
		entry := dirEntry{path: path, info: info, isDir: info.IsDir()}
		if info.Mode()&os.ModeSymlink != 0 {
			if target, err := os.Stat(path); err == nil && target.IsDir() {
				entry.isDir = true
			}
		}
		entry.ctime, entry.hasCtime = fileChangeTime(info)
		entries = append(entries, entry)
	}
	return entries, nil
}

func selectWalker() walker {
	return fastWalker{}
}
