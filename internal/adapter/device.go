package adapter

import (
	"book-tracker/internal/core"
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// DevicePermissions gates capture sources by platform. Desktop systems have
// no per-app photo or camera permission, so nothing is requested there.
type DevicePermissions struct {
	GOOS string
	// Grant answers requests on gated platforms.
	Grant func(src core.CaptureSource) bool
}

func NewDevicePermissions() *DevicePermissions {
	return &DevicePermissions{GOOS: runtime.GOOS}
}

func (p *DevicePermissions) Required(core.CaptureSource) bool {
	switch p.GOOS {
	case "android", "ios":
		return true
	}
	return false
}

func (p *DevicePermissions) Request(_ context.Context, src core.CaptureSource) (bool, error) {
	if p.Grant == nil {
		return false, nil
	}
	return p.Grant(src), nil
}

// PathSource yields an image already on disk, standing in for the camera
// roll or a captured photo. An empty Path is a cancelled pick.
type PathSource struct {
	Path string
}

func (s PathSource) Acquire(_ context.Context, _ core.CaptureSource) (string, error) {
	if strings.TrimSpace(s.Path) == "" {
		return "", nil
	}
	fi, err := os.Stat(s.Path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	if !fi.Mode().IsRegular() {
		return "", fmt.Errorf("open image: %s is not a regular file", s.Path)
	}
	return core.LocalRefFromPath(s.Path)
}

type FallbackPolicy string

const (
	FallbackAsk     FallbackPolicy = "ask"
	FallbackLocal   FallbackPolicy = "local"
	FallbackAbandon FallbackPolicy = "abandon"
)

// TerminalPrompter shows notifications on Out and asks questions on In.
type TerminalPrompter struct {
	In     io.Reader
	Out    io.Writer
	Policy FallbackPolicy
}

func NewTerminalPrompter(in io.Reader, out io.Writer, policy FallbackPolicy) *TerminalPrompter {
	if policy == "" {
		policy = FallbackAsk
	}
	return &TerminalPrompter{In: in, Out: out, Policy: policy}
}

func (p *TerminalPrompter) Notify(title, message string) {
	fmt.Fprintf(p.Out, "%s: %s\n", title, message)
}

func (p *TerminalPrompter) ConfirmFallback(_ context.Context, localRef string, cause error) bool {
	fmt.Fprintf(p.Out, "Upload failed: %v\n", cause)
	switch p.Policy {
	case FallbackLocal:
		fmt.Fprintf(p.Out, "Keeping the local image %s (only visible on this device).\n", localRef)
		return true
	case FallbackAbandon:
		fmt.Fprintln(p.Out, "Cover left unset.")
		return false
	}

	fmt.Fprintf(p.Out, "Use the local image %s instead? It is only visible on this device. [y/N] ", localRef)
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
