// Package ignore decides whether a path under the scanned root is excluded
// from the blueprint, using gitignore-style rules.
package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"etcfiles/logger"
	"etcfiles/utils"

	"github.com/adrg/xdg"
	"github.com/bmatcuk/doublestar/v4"
)

const userFileName = ".blueprintignore"

// Rule is one line of an ignore file. Negate marks a "!" inclusion override.
type Rule struct {
	Pattern string
	Negate  bool
}

// Engine evaluates an ordered rule list. It is immutable once built and may
// be shared by any number of callers.
type Engine struct {
	root  string
	rules []Rule
	stat  func(string) (fs.FileInfo, error)
}

func NewEngine(root string, rules []Rule) *Engine {
	return &Engine{
		root:  filepath.Clean(root),
		rules: append([]Rule(nil), rules...),
		stat:  os.Stat,
	}
}

// Load builds the engine from the built-in defaults followed by the rules in
// userFile. A missing or unreadable user file only means there are no extra
// rules.
func Load(root, userFile string) *Engine {
	rules := DefaultRules()
	if userFile != "" {
		extra, err := ReadRuleFile(userFile)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debugf("No ignore file at %s", userFile)
			} else {
				logger.Warnf("Ignoring unreadable ignore file %s: %v", userFile, err)
			}
		} else {
			logger.Debugf("Loaded %d rules from %s", len(extra), userFile)
			rules = append(rules, extra...)
		}
	}
	return NewEngine(root, rules)
}

// DefaultUserFile is ~/.blueprintignore.
func DefaultUserFile() string {
	return filepath.Join(xdg.Home, userFileName)
}

func ReadRuleFile(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rules, err := ParseRules(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rules, nil
}

// ParseRules reads gitignore syntax: blank lines and lines starting with '#'
// are skipped, a leading '!' negates the rule.
func ParseRules(r io.Reader) ([]Rule, error) {
	var rules []Rule
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRightFunc(scanner.Text(), isSpace)
		if line == "" || line[0] == '#' {
			continue
		}
		rule := Rule{Pattern: line}
		if line[0] == '!' {
			rule = Rule{Pattern: line[1:], Negate: true}
		}
		if rule.Pattern == "" {
			continue
		}
		rules = append(rules, rule)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\v' || r == '\f'
}

func (e *Engine) Root() string { return e.root }

func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// ShouldIgnore walks the rules in order. While the path is not ignored only
// exclusion rules are consulted and a match marks it ignored; once ignored
// only later negation rules are consulted and the first match includes the
// path. ignored seeds the starting state.
func (e *Engine) ShouldIgnore(path string, ignored bool) bool {
	path = filepath.Clean(path)
	base := filepath.Base(path)
	for _, rule := range e.rules {
		if rule.Negate != ignored {
			continue
		}
		if ignored {
			if e.match(path, base, rule.Pattern) {
				return false
			}
			continue
		}
		ignored = e.match(path, base, rule.Pattern)
	}
	return ignored
}

func (e *Engine) match(path, base, pattern string) bool {
	dirOnly := strings.HasSuffix(pattern, "/")
	pattern = strings.TrimRight(pattern, "/")
	if pattern == "" {
		return false
	}

	if !strings.Contains(pattern, "/") {
		ok, err := doublestar.Match(pattern, base)
		if err != nil || !ok {
			return false
		}
		if dirOnly {
			return e.isDir(path)
		}
		return true
	}

	anchored := e.anchor(pattern)
	for i, candidate := range utils.Ancestors(path, e.root) {
		ok, err := doublestar.PathMatch(anchored, candidate)
		if err != nil {
			return false
		}
		if !ok {
			continue
		}
		// Ancestors are directories by construction.
		if dirOnly && i == 0 {
			return e.isDir(path)
		}
		return true
	}
	return false
}

func (e *Engine) anchor(pattern string) string {
	if filepath.IsAbs(pattern) && utils.HasPathPrefix(pattern, e.root) {
		return filepath.Clean(pattern)
	}
	return filepath.Join(e.root, pattern)
}

func (e *Engine) isDir(path string) bool {
	info, err := e.stat(path)
	return err == nil && info.IsDir()
}
