package dpkg

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"etcfiles/logger"
)

// ManifestSource looks up the checksum a package shipped for a path.
type ManifestSource interface {
	Checksum(pkg, path string) (string, bool)
}

// InfoDirManifests reads <InfoDir>/<pkg>.md5sums, whose lines are
// "<md5>  <path without leading slash>". Files are read on every call.
type InfoDirManifests struct {
	InfoDir string
}

func (m InfoDirManifests) Checksum(pkg, path string) (string, bool) {
	manifest := filepath.Join(m.InfoDir, pkg+md5sumsSuffix)
	f, err := os.Open(manifest)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Debugf("Failed to open %s: %v", manifest, err)
		}
		return "", false
	}
	defer f.Close()

	suffix := strings.TrimPrefix(path, "/")
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if len(line) < 32 || !strings.HasSuffix(line, suffix) {
			continue
		}
		return line[:32], true
	}
	if err := scanner.Err(); err != nil {
		logger.Debugf("Failed to read %s: %v", manifest, err)
	}
	return "", false
}
