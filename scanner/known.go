package scanner

import (
	"etcfiles/dpkg"
	"etcfiles/hasher"
	"etcfiles/ignore"
	"etcfiles/logger"
)

// DefaultTrustedPackages are packages whose files are never recorded, even
// when modified.
var DefaultTrustedPackages = []string{"base-files"}

type PackageOwners interface {
	OwningPackages(path string) []string
}

type StatusChecksums interface {
	Checksums(path string) []string
}

// Checker decides whether a file's content is what the package manager
// (or the override table) says it should be.
type Checker struct {
	Root            string
	Owners          PackageOwners
	Status          StatusChecksums
	Manifests       dpkg.ManifestSource
	Overrides       OverrideTable
	Ignore          *ignore.Engine
	TrustedPackages []string
}

func NewChecker(root string, db *dpkg.Database, engine *ignore.Engine) *Checker {
	return &Checker{
		Root:            root,
		Owners:          db.Resolver,
		Status:          db.Status,
		Manifests:       db.Manifests,
		Overrides:       DefaultOverrides,
		Ignore:          engine,
		TrustedPackages: DefaultTrustedPackages,
	}
}

// IsKnown reports whether content at path is a stock copy and should not be
// recorded. A user negation rule for the path wins over a checksum match.
func (c *Checker) IsKnown(path string, content []byte) bool {
	owners := c.Owners.OwningPackages(path)
	for _, pkg := range owners {
		if c.trusted(pkg) {
			logger.Debugf("%s belongs to trusted package %s", path, pkg)
			return true
		}
	}

	candidates := c.candidates(path, owners)
	if len(candidates) == 0 {
		return false
	}
	sum := hasher.Sum(content)
	if _, ok := candidates[sum]; !ok {
		return false
	}
	if c.Ignore == nil {
		return true
	}
	return c.Ignore.ShouldIgnore(path, true)
}

func (c *Checker) candidates(path string, owners []string) map[string]struct{} {
	sums := make(map[string]struct{})
	if len(owners) > 0 {
		if c.Status != nil {
			for _, sum := range c.Status.Checksums(path) {
				sums[sum] = struct{}{}
			}
		}
		if c.Manifests != nil {
			for _, pkg := range owners {
				if sum, ok := c.Manifests.Checksum(pkg, path); ok {
					sums[sum] = struct{}{}
				}
			}
		}
	}
	if sum, ok := c.Overrides.Checksum(c.Root, path); ok {
		sums[sum] = struct{}{}
	}
	return sums
}

func (c *Checker) trusted(pkg string) bool {
	for _, t := range c.TrustedPackages {
		if t == pkg {
			return true
		}
	}
	return false
}
