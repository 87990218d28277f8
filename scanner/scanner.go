// Package scanner walks a configuration tree and records every file that
// differs from what the package manager installed.
package scanner

import (
	"context"
	"errors"
	"os"
	"strings"

	"etcfiles/blueprint"
	"etcfiles/config"
	"etcfiles/dpkg"
	"etcfiles/ignore"
	"etcfiles/logger"
	"etcfiles/output"
	"etcfiles/tracing"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"
)

// ErrRootInaccessible is returned when the tree root cannot be listed.
var ErrRootInaccessible = errors.New("root directory is inaccessible")

type Scanner struct {
	Root        string
	Ignore      *ignore.Engine
	Checker     *Checker
	Sink        blueprint.Sink
	Metrics     *output.Metrics
	MaxFileSize int64
	Limiter     *rate.Limiter
	// Progress is called once per file considered.
	Progress func()

	idents *identCache
}

func New(root string, engine *ignore.Engine, checker *Checker, sink blueprint.Sink) *Scanner {
	return &Scanner{
		Root:    root,
		Ignore:  engine,
		Checker: checker,
		Sink:    sink,
		Metrics: &output.Metrics{},
		idents:  newIdentCache(),
	}
}

// Scan walks the root once. Only an unreadable root or a cancelled context
// ends the walk early.
func (s *Scanner) Scan(ctx context.Context) error {
	ctx, endTask := tracing.StartTask(ctx, "scan")
	defer endTask()
	if s.idents == nil {
		s.idents = newIdentCache()
	}
	if s.Metrics == nil {
		s.Metrics = &output.Metrics{}
	}
	return selectWalker().Walk(ctx, s.Root, s.scanDir)
}

func (s *Scanner) scanDir(ctx context.Context, dir string, entries []dirEntry) error {
	defer tracing.StartRegion(ctx, "scanDir")()

	dirIgnored := s.Ignore.ShouldIgnore(dir, false)
	ctimes := newCtimeHistogram(entries)
	for _, e := range entries {
		if e.isDir {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if s.Limiter != nil {
			if err := s.Limiter.Wait(ctx); err != nil {
				return err
			}
		}
		s.scanFile(e, dirIgnored || ctimes.Shared(e))
		if s.Progress != nil {
			s.Progress()
		}
	}
	return nil
}

func (s *Scanner) scanFile(e dirEntry, ignored bool) {
	m := s.Metrics
	m.FilesSeen++

	if s.Ignore.ShouldIgnore(e.path, ignored) {
		logger.Debugf("Ignoring %s", e.path)
		m.SkippedIgnored++
		return
	}

	mode := e.info.Mode()
	if !mode.IsRegular() && mode&os.ModeSymlink == 0 {
		logger.WithField("path", e.path).Warnf("Skipping %s file", describeMode(mode))
		m.SkippedUnsupported++
		return
	}

	content, err := readContent(e.path, s.MaxFileSize)
	if err != nil {
		logger.Debugf("Failed to read %s: %v", e.path, err)
		m.SkippedUnreadable++
		return
	}

	if s.Checker.IsKnown(e.path, content) {
		logger.Debugf("%s matches its packaged content", e.path)
		m.SkippedKnown++
		return
	}
	if isLegacyFuseDefault(s.Root, e.path, content) && s.Ignore.ShouldIgnore(e.path, true) {
		m.SkippedKnown++
		return
	}

	record, reason := s.buildRecord(e, content)
	switch reason {
	case skipUnreadable:
		m.SkippedUnreadable++
		return
	case skipManagedLink:
		m.SkippedManagedLinks++
		return
	}
	s.Sink.AddFile(e.path, record)
	m.FilesRecorded++
}

// ScanFiles builds every collaborator from cfg and runs one scan into sink.
func ScanFiles(ctx context.Context, cfg *config.Config, metrics *output.Metrics, sink blueprint.Sink) error {
	engine := ignore.Load(cfg.Root, cfg.IgnoreFile)
	logger.Debugf("Loaded %d ignore rules anchored at %s", len(engine.Rules()), engine.Root())
	db := dpkg.Open(cfg.DpkgAdminDir)
	checker := NewChecker(cfg.Root, db, engine)
	if len(cfg.TrustedPackages) > 0 {
		checker.TrustedPackages = cfg.TrustedPackages
	}

	s := New(cfg.Root, engine, checker, sink)
	s.Metrics = metrics
	s.MaxFileSize = cfg.MaxFileSize
	if cfg.MaxIOPerSecond > 0 {
		s.Limiter = rate.NewLimiter(rate.Limit(cfg.MaxIOPerSecond), cfg.MaxIOPerSecond)
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Scanning files"),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetVisibility(progressVisible()),
		progressbar.OptionFullWidth(),
	)
	s.Progress = func() { _ = bar.Add(1) }

	logger.Infof("Searching for configuration files under %s", cfg.Root)
	err := s.Scan(ctx)
	_ = bar.Finish()
	logger.Infof("Recorded %d of %d files", metrics.FilesRecorded, metrics.FilesSeen)
	return err
}

func describeMode(mode os.FileMode) string {
	switch {
	case mode&os.ModeNamedPipe != 0:
		return "fifo"
	case mode&os.ModeSocket != 0:
		return "socket"
	case mode&os.ModeCharDevice != 0:
		return "character device"
	case mode&os.ModeDevice != 0:
		return "block device"
	}
	return "unsupported"
}

func progressVisible() bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv("ETCFILES_DISABLE_PROGRESS")))
	return value != "1" && value != "true" && value != "yes" && value != "on"
}
