// Package dpkg reads the package manager's on-disk metadata: the per-package
// installed-file lists, the status database and the per-package md5sums
// manifests. Every index is built at most once and is read-only afterwards.
package dpkg

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"etcfiles/logger"
)

const (
	DefaultAdminDir = "/var/lib/dpkg"
	listSuffix      = ".list"
	md5sumsSuffix   = ".md5sums"
)

// PackageIndex maps an absolute path to every package whose installed-file
// list names it.
type PackageIndex struct {
	once  sync.Once
	build func() map[string][]string
	paths map[string][]string
}

// NewPackageIndex indexes <infoDir>/*.list on first lookup.
func NewPackageIndex(infoDir string) *PackageIndex {
	return &PackageIndex{build: func() map[string][]string {
		return loadListFiles(infoDir)
	}}
}

// NewPackageIndexFromManifests indexes in-memory package → paths lists.
func NewPackageIndexFromManifests(manifests map[string][]string) *PackageIndex {
	return &PackageIndex{build: func() map[string][]string {
		paths := make(map[string][]string)
		for pkg, files := range manifests {
			for _, file := range files {
				addOwner(paths, file, pkg)
			}
		}
		return paths
	}}
}

func (idx *PackageIndex) load() {
	idx.once.Do(func() {
		idx.paths = idx.build()
		if idx.paths == nil {
			idx.paths = map[string][]string{}
		}
	})
}

// Lookup returns the owning packages of path, or nil.
func (idx *PackageIndex) Lookup(path string) []string {
	idx.load()
	return idx.paths[path]
}

func (idx *PackageIndex) Len() int {
	idx.load()
	return len(idx.paths)
}

func loadListFiles(infoDir string) map[string][]string {
	paths := make(map[string][]string)
	lists, err := filepath.Glob(filepath.Join(infoDir, "*"+listSuffix))
	if err != nil {
		logger.Warnf("Failed to list package manifests in %s: %v", infoDir, err)
		return paths
	}
	for _, list := range lists {
		pkg := strings.TrimSuffix(filepath.Base(list), listSuffix)
		if err := readListFile(list, pkg, paths); err != nil {
			logger.Warnf("Failed to read package manifest %s: %v", list, err)
		}
	}
	logger.Debugf("Indexed %d paths from %d package manifests", len(paths), len(lists))
	return paths
}

func readListFile(path, pkg string, paths map[string][]string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		name := strings.TrimRight(scanner.Text(), " \t\r")
		if name == "" {
			continue
		}
		addOwner(paths, name, pkg)
	}
	return scanner.Err()
}

func addOwner(paths map[string][]string, path, pkg string) {
	for _, existing := range paths[path] {
		if existing == pkg {
			return
		}
	}
	paths[path] = append(paths[path], pkg)
}
