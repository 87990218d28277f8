package ignore

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"etcfiles/logger"
)

func init() {
	logger.Init("error")
}

func TestDefaultRulesExclude(t *testing.T) {
	root := t.TempDir()
	e := NewEngine(root, DefaultRules())

	tests := []struct {
		path string
		want bool
	}{
		{"fstab", true},
		{"hosts", false},
		{"apt/sources.list.dpkg-new", true},
		{"apt/sources.list.dpkg-old", true},
		{"rc2.d/S01ssh", true},
		{"ssl/certs/ca.pem", true},
		{"ssl/private/key.pem", false},
		{"udev/rules.d/70-persistent-net.rules", true},
		{"udev/rules.d/80-custom.rules", false},
		{"passwd", true},
		{"passwd.bak", false},
	}
	for _, tt := range tests {
		path := filepath.Join(root, tt.path)
		if got := e.ShouldIgnore(path, false); got != tt.want {
			t.Fatalf("ShouldIgnore(%s) = %t, want %t", tt.path, got, tt.want)
		}
	}
}

func TestUserNegationOverridesDefault(t *testing.T) {
	root := t.TempDir()
	rules := append(DefaultRules(), Rule{Pattern: "/fstab", Negate: true})
	e := NewEngine(root, rules)
	if e.ShouldIgnore(filepath.Join(root, "fstab"), false) {
		t.Fatal("user negation should include fstab")
	}
	if !e.ShouldIgnore(filepath.Join(root, "passwd"), false) {
		t.Fatal("passwd should still be ignored")
	}
}

func TestNegationBeforeExclusionDoesNotRescue(t *testing.T) {
	root := t.TempDir()
	e := NewEngine(root, []Rule{
		{Pattern: "app.conf", Negate: true},
		{Pattern: "app.conf"},
	})
	if !e.ShouldIgnore(filepath.Join(root, "app.conf"), false) {
		t.Fatal("negation preceding the exclusion must not apply")
	}
}

func TestSeededIgnoreState(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "app.conf")

	e := NewEngine(root, DefaultRules())
	if !e.ShouldIgnore(path, true) {
		t.Fatal("seeded ignore with no negation should stay ignored")
	}
	if e.ShouldIgnore(path, false) {
		t.Fatal("unmatched path should be included")
	}

	e = NewEngine(root, append(DefaultRules(), Rule{Pattern: "*.conf", Negate: true}))
	if e.ShouldIgnore(path, true) {
		t.Fatal("negation should rescue a seeded path")
	}
}

func TestDirectoryOnlyPattern(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "cache"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Mkdir(filepath.Join(root, "other"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "other", "cache"), nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	e := NewEngine(root, []Rule{{Pattern: "cache/"}})
	if !e.ShouldIgnore(filepath.Join(root, "cache"), false) {
		t.Fatal("directory should match a directory-only rule")
	}
	if e.ShouldIgnore(filepath.Join(root, "other", "cache"), false) {
		t.Fatal("regular file must not match a directory-only rule")
	}
}

func TestAbsolutePatternInsideRoot(t *testing.T) {
	root := t.TempDir()
	e := NewEngine(root, []Rule{{Pattern: filepath.Join(root, "nginx")}})
	if !e.ShouldIgnore(filepath.Join(root, "nginx", "sites-enabled", "default"), false) {
		t.Fatal("absolute pattern under the root should be used as-is")
	}
	e = NewEngine(root, []Rule{{Pattern: "nginx/sites-*"}})
	if !e.ShouldIgnore(filepath.Join(root, "nginx", "sites-enabled", "default"), false) {
		t.Fatal("relative slash pattern should be anchored at the root")
	}
	if e.ShouldIgnore(filepath.Join(root, "nginx", "nginx.conf"), false) {
		t.Fatal("sibling outside the glob should be included")
	}
}

func TestParseRules(t *testing.T) {
	input := strings.Join([]string{
		"# comment",
		"",
		"*.bak   ",
		"!/ssh/sshd_config",
		"!",
		"/cron.d/",
	}, "\n")
	rules, err := ParseRules(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []Rule{
		{Pattern: "*.bak"},
		{Pattern: "/ssh/sshd_config", Negate: true},
		{Pattern: "/cron.d/"},
	}
	if !reflect.DeepEqual(rules, want) {
		t.Fatalf("expected %+v, got %+v", want, rules)
	}
}

func TestLoadAppendsUserRules(t *testing.T) {
	root := t.TempDir()
	userFile := filepath.Join(t.TempDir(), ".blueprintignore")
	if err := os.WriteFile(userFile, []byte("!/hostname\n*.local\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	e := Load(root, userFile)
	rules := e.Rules()
	if len(rules) != len(DefaultPatterns)+2 {
		t.Fatalf("expected %d rules, got %d", len(DefaultPatterns)+2, len(rules))
	}
	if e.ShouldIgnore(filepath.Join(root, "hostname"), false) {
		t.Fatal("user negation should include hostname")
	}
	if !e.ShouldIgnore(filepath.Join(root, "site.local"), false) {
		t.Fatal("user exclusion should apply")
	}
}

func TestLoadMissingUserFile(t *testing.T) {
	root := t.TempDir()
	e := Load(root, filepath.Join(root, "does-not-exist"))
	if len(e.Rules()) != len(DefaultPatterns) {
		t.Fatalf("expected only defaults, got %d rules", len(e.Rules()))
	}
}

func TestDefaultUserFile(t *testing.T) {
	if filepath.Base(DefaultUserFile()) != ".blueprintignore" {
		t.Fatalf("unexpected default user file: %s", DefaultUserFile())
	}
}
