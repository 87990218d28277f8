package systeminfo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"etcfiles/logger"

	"github.com/shirou/gopsutil/v4/host"
)

func init() {
	logger.Init("error")
}

func TestGetHost(t *testing.T) {
	h := GetHost(context.Background())
	if h == nil {
		t.Fatal("nil host")
	}
	if h.Arch == "" || h.OS == "" {
		t.Fatalf("expected arch and os to be populated: %+v", h)
	}
}

func TestGetHostFallbacks(t *testing.T) {
	oldInfo, oldRelease := hostInfo, osReleasePath
	defer func() { hostInfo, osReleasePath = oldInfo, oldRelease }()

	release := filepath.Join(t.TempDir(), "os-release")
	if err := os.WriteFile(release, []byte("NAME=\"Debian\"\nPRETTY_NAME=\"Debian GNU/Linux 12 (bookworm)\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	osReleasePath = release
	hostInfo = func(context.Context) (*host.InfoStat, error) {
		return nil, errors.New("unavailable")
	}

	h := GetHost(context.Background())
	if h.Arch != runtime.GOARCH || h.OS != runtime.GOOS {
		t.Fatalf("expected runtime fallbacks, got %+v", h)
	}
	if h.Platform != "Debian GNU/Linux 12 (bookworm)" {
		t.Fatalf("expected os-release platform, got %q", h.Platform)
	}
}

func TestGetHostFromInfo(t *testing.T) {
	oldInfo := hostInfo
	defer func() { hostInfo = oldInfo }()
	hostInfo = func(context.Context) (*host.InfoStat, error) {
		return &host.InfoStat{
			Hostname:        "web-1",
			OS:              "linux",
			Platform:        "ubuntu",
			PlatformVersion: "24.04",
			KernelVersion:   "6.8.0",
			KernelArch:      "x86_64",
		}, nil
	}
	h := GetHost(context.Background())
	if h.Hostname != "web-1" || h.Platform != "ubuntu" || h.PlatformVersion != "24.04" || h.Arch != "x86_64" {
		t.Fatalf("unexpected host %+v", h)
	}
}

func TestParsePrettyName(t *testing.T) {
	name, err := parsePrettyName(strings.NewReader("ID=alpine\n"))
	if err != nil || name != "" {
		t.Fatalf("expected no name, got %q (%v)", name, err)
	}
}
