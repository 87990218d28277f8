package scanner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/exp/mmap"
)

const mmapMinSize = 128 * 1024

var (
	openMmapReader = mmap.Open

	errFileTooLarge = errors.New("file exceeds max_file_size")
)

// readContent returns the full content of path, following symlinks. Files
// larger than maxSize (when positive) are refused rather than truncated.
// A link to anything other than a regular file reads as empty.
func readContent(path string, maxSize int64) ([]byte, error) {
	// O_NONBLOCK keeps open(2) on a FIFO from waiting for a writer.
	file, err := os.OpenFile(path, os.O_RDONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return []byte{}, nil
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, fmt.Errorf("%w: %d bytes", errFileTooLarge, info.Size())
	}
	if info.Size() >= mmapMinSize {
		if content, err := readContentMmap(path, info.Size()); err == nil {
			return content, nil
		}
	}
	return io.ReadAll(file)
}

func readContentMmap(path string, size int64) ([]byte, error) {
	r, err := openMmapReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if int64(r.Len()) < size {
		size = int64(r.Len())
	}
	buf := make([]byte, size)
	if _, err := r.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return buf, nil
}
