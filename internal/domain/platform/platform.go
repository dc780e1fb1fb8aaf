// Package platform detects the host operating system for precondition
// evaluation and installer argument selection.
package platform

import (
	"os/exec"
	"runtime"
	"sync"
)

// Kind represents the operating system family the installer distinguishes.
type Kind string

const (
	// KindWindows is native Windows.
	KindWindows Kind = "windows"
	// KindLinux is Linux.
	KindLinux Kind = "linux"
	// KindOther is any platform without a dedicated install path.
	KindOther Kind = "other"
)

// Platform contains detected host information.
type Platform struct {
	kind Kind
	arch string
}

var (
	detected     *Platform
	detectOnce   sync.Once
	testPlatform *Platform
)

// Detect returns the current platform. The result is cached after the first
// call.
func Detect() *Platform {
	if testPlatform != nil {
		return testPlatform
	}
	detectOnce.Do(func() {
		detected = detect()
	})
	return detected
}

// SetTestPlatform overrides detection for tests. Pass nil to restore real
// detection.
func SetTestPlatform(p *Platform) {
	testPlatform = p
}

func detect() *Platform {
	p := &Platform{arch: runtime.GOARCH}
	switch runtime.GOOS {
	case "windows":
		p.kind = KindWindows
	case "linux":
		p.kind = KindLinux
	default:
		p.kind = KindOther
	}
	return p
}

// New creates a Platform with the given values (for testing).
func New(kind Kind, arch string) *Platform {
	return &Platform{kind: kind, arch: arch}
}

// Kind returns the operating system family.
func (p *Platform) Kind() Kind {
	return p.kind
}

// Arch returns the architecture.
func (p *Platform) Arch() string {
	return p.arch
}

// IsWindows returns true on native Windows.
func (p *Platform) IsWindows() bool {
	return p.kind == KindWindows
}

// IsLinux returns true on Linux.
func (p *Platform) IsLinux() bool {
	return p.kind == KindLinux
}

// HasCommand checks if a command is available in PATH.
func (p *Platform) HasCommand(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// String returns a human-readable description.
func (p *Platform) String() string {
	return string(p.kind) + "/" + p.arch
}
