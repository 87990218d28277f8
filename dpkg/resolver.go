package dpkg

import (
	"os"
	"path/filepath"
)

// Resolver answers which packages installed a path. A path missing from the
// index may be a diversion, so one symlink hop is followed before giving up.
type Resolver struct {
	index    *PackageIndex
	readlink func(string) (string, error)
}

func NewResolver(index *PackageIndex) *Resolver {
	return &Resolver{index: index, readlink: os.Readlink}
}

func (r *Resolver) OwningPackages(path string) []string {
	if pkgs := r.index.Lookup(path); len(pkgs) > 0 {
		return pkgs
	}
	target, err := r.readlink(path)
	if err != nil {
		return nil
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return r.index.Lookup(target)
}

// Database bundles the metadata sources found under one admin directory.
// Nothing is read from disk until the first lookup.
type Database struct {
	AdminDir  string
	Packages  *PackageIndex
	Status    *StatusIndex
	Manifests ManifestSource
	Resolver  *Resolver
}

func Open(adminDir string) *Database {
	infoDir := filepath.Join(adminDir, "info")
	packages := NewPackageIndex(infoDir)
	return &Database{
		AdminDir:  adminDir,
		Packages:  packages,
		Status:    NewStatusIndex(filepath.Join(adminDir, "status")),
		Manifests: InfoDirManifests{InfoDir: infoDir},
		Resolver:  NewResolver(packages),
	}
}
