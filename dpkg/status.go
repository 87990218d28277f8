package dpkg

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"regexp"
	"sync"

	"etcfiles/logger"
)

// Conffiles entries in the status database: " <path> <md5> [obsolete]".
var statusLine = regexp.MustCompile(`^ ([\w/_:.-]*) (\w{32})( \w*)?$`)

// StatusIndex maps a path to the md5 sums the status database records for
// it. Several packages may record the same path.
type StatusIndex struct {
	once  sync.Once
	build func() map[string][]string
	sums  map[string][]string
}

// NewStatusIndex parses the status file at path on first lookup. A missing
// file yields an empty index.
func NewStatusIndex(path string) *StatusIndex {
	return &StatusIndex{build: func() map[string][]string {
		f, err := os.Open(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Warnf("Failed to open status database %s: %v", path, err)
			}
			return nil
		}
		defer f.Close()
		sums, err := parseStatus(f)
		if err != nil {
			logger.Warnf("Failed to read status database %s: %v", path, err)
		}
		logger.Debugf("Indexed %d conffile checksums from %s", len(sums), path)
		return sums
	}}
}

// ParseStatus builds an index from an already open status database.
func ParseStatus(r io.Reader) (*StatusIndex, error) {
	sums, err := parseStatus(r)
	idx := &StatusIndex{build: func() map[string][]string { return sums }}
	idx.load()
	return idx, err
}

func parseStatus(r io.Reader) (map[string][]string, error) {
	sums := make(map[string][]string)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := statusLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		sums[m[1]] = append(sums[m[1]], m[2])
	}
	return sums, scanner.Err()
}

func (s *StatusIndex) load() {
	s.once.Do(func() {
		s.sums = s.build()
		if s.sums == nil {
			s.sums = map[string][]string{}
		}
	})
}

func (s *StatusIndex) Checksums(path string) []string {
	s.load()
	return s.sums[path]
}
