// Package systeminfo gathers the host facts stamped into a blueprint header.
package systeminfo

import (
	"bufio"
	"context"
	"io"
	"os"
	"runtime"
	"strings"

	"etcfiles/blueprint"
	"etcfiles/logger"

	"github.com/shirou/gopsutil/v4/host"
)

var (
	osReleasePath = "/etc/os-release"
	hostInfo      = host.InfoWithContext
)

// GetHost never fails outright: facts that cannot be gathered are left
// empty, and the architecture and OS fall back to the Go runtime's.
func GetHost(ctx context.Context) *blueprint.Host {
	h := &blueprint.Host{Arch: runtime.GOARCH, OS: runtime.GOOS}
	info, err := hostInfo(ctx)
	if err != nil {
		logger.Warnf("Failed to gather host info: %v", err)
	}
	if info != nil {
		h.Hostname = info.Hostname
		h.Platform = info.Platform
		h.PlatformVersion = info.PlatformVersion
		h.KernelVersion = info.KernelVersion
		if info.KernelArch != "" {
			h.Arch = info.KernelArch
		}
		if info.OS != "" {
			h.OS = info.OS
		}
	}
	if h.Hostname == "" {
		h.Hostname, _ = os.Hostname()
	}
	if h.Platform == "" {
		if name, err := prettyName(osReleasePath); err == nil {
			h.Platform = name
		}
	}
	return h
}

func prettyName(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return parsePrettyName(f)
}

func parsePrettyName(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "PRETTY_NAME=") {
			return strings.Trim(line[len("PRETTY_NAME="):], "\""), nil
		}
	}
	return "", scanner.Err()
}
