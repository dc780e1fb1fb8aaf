package method

import (
	"archive/zip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/agentstrap/internal/domain/config"
	"github.com/felixgeelhaar/agentstrap/internal/domain/platform"
	"github.com/felixgeelhaar/agentstrap/internal/domain/probe"
	"github.com/felixgeelhaar/agentstrap/internal/ports"
)

// scriptedRunner returns canned results keyed by command name.
type scriptedRunner struct {
	results map[string]ports.CommandResult
	errs    map[string]error
	calls   [][]string
}

func (s *scriptedRunner) Run(_ context.Context, command string, args ...string) (ports.CommandResult, error) {
	s.calls = append(s.calls, append([]string{command}, args...))
	if err, ok := s.errs[command]; ok {
		return ports.CommandResult{}, err
	}
	if result, ok := s.results[command]; ok {
		return result, nil
	}
	return ports.CommandResult{}, fmt.Errorf("exec %q: executable file not found in $PATH", command)
}

func builtinConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.InstallRoot = filepath.Join(dir, "ComputerUseAgent")
	cfg.BundlePath = filepath.Join(dir, "ComputerUseAgent_Portable.zip")
	return cfg
}

func TestBuiltinRegistry_OrderAndCatchAll(t *testing.T) {
	cfg := builtinConfig(t)
	registry, err := BuiltinRegistry(cfg, &scriptedRunner{}, platform.New(platform.KindLinux, "amd64"))
	require.NoError(t, err)

	ordered := registry.Methods()
	require.Equal(t,
		[]string{MethodRuntimeLaunch, MethodLocalBundle, MethodRuntimeDownload, MethodManual},
		methodNames(ordered))
	require.True(t, ordered[len(ordered)-1].CatchAll())
}

func TestBuiltinRegistry_Preconditions(t *testing.T) {
	cfg := builtinConfig(t)
	registry, err := BuiltinRegistry(cfg, &scriptedRunner{}, platform.New(platform.KindLinux, "amd64"))
	require.NoError(t, err)

	launch, _ := registry.Lookup(MethodRuntimeLaunch)
	require.False(t, launch.Eligible(probe.Facts{}))
	require.True(t, launch.Eligible(probe.Facts{RuntimePresent: true, RuntimeVersion: "v3.11.9"}))
	require.False(t, launch.Eligible(probe.Facts{RuntimePresent: true, RuntimeVersion: "v3.6.0"}),
		"a runtime below the minimum version is present but not launchable")

	bundle, _ := registry.Lookup(MethodLocalBundle)
	require.False(t, bundle.Eligible(probe.Facts{}), "bundle file absent")
	writeBundle(t, cfg.BundlePath, map[string]string{"readme.txt": "hi"})
	require.True(t, bundle.Eligible(probe.Facts{}))

	download, _ := registry.Lookup(MethodRuntimeDownload)
	require.False(t, download.Eligible(probe.Facts{NetworkReachable: true}))
	require.False(t, download.Eligible(probe.Facts{InstallRootWritable: true}))
	require.True(t, download.Eligible(probe.Facts{NetworkReachable: true, InstallRootWritable: true}))
}

func TestRuntimeLaunchAction(t *testing.T) {
	cfg := builtinConfig(t)
	runner := &scriptedRunner{results: map[string]ports.CommandResult{
		"python3": {Stdout: "agent ready"},
	}}
	a := newActions(cfg, runner, platform.New(platform.KindLinux, "amd64"))

	facts := probe.Facts{RuntimePresent: true, RuntimePath: "python3"}

	// Entrypoint missing: fails with a diagnostic, nothing executed.
	_, err := a.runtimeLaunch(context.Background(), facts, t.TempDir())
	require.Error(t, err)
	require.Empty(t, runner.calls)

	writeEntrypoint(t, cfg)
	output, err := a.runtimeLaunch(context.Background(), facts, t.TempDir())
	require.NoError(t, err)
	require.Contains(t, output, "agent ready")
	require.Len(t, runner.calls, 1)
	require.Equal(t, "python3", runner.calls[0][0])
}

func TestRuntimeLaunchAction_NonZeroExit(t *testing.T) {
	cfg := builtinConfig(t)
	writeEntrypoint(t, cfg)
	runner := &scriptedRunner{results: map[string]ports.CommandResult{
		"python3": {ExitCode: 3, Stderr: "missing dependency"},
	}}
	a := newActions(cfg, runner, platform.New(platform.KindLinux, "amd64"))

	output, err := a.runtimeLaunch(context.Background(), probe.Facts{RuntimePath: "python3"}, t.TempDir())
	require.Error(t, err)
	require.Contains(t, output, "missing dependency")
}

func TestExtractBundleAction(t *testing.T) {
	cfg := builtinConfig(t)
	writeBundle(t, cfg.BundlePath, map[string]string{
		"ai_computer_agent.py": "print('hi')",
		"models/config.json":   "{}",
	})
	a := newActions(cfg, &scriptedRunner{}, platform.New(platform.KindLinux, "amd64"))

	// No runtime: extraction alone completes the install.
	output, err := a.extractBundle(context.Background(), probe.Facts{}, t.TempDir())
	require.NoError(t, err)
	require.Contains(t, output, "extracted 2 files")
	require.FileExists(t, filepath.Join(cfg.InstallRoot, "ai_computer_agent.py"))
	require.FileExists(t, filepath.Join(cfg.InstallRoot, "models", "config.json"))
}

func TestExtractBundleAction_LaunchesWhenRuntimePresent(t *testing.T) {
	cfg := builtinConfig(t)
	writeBundle(t, cfg.BundlePath, map[string]string{cfg.Entrypoint: "print('hi')"})
	runner := &scriptedRunner{results: map[string]ports.CommandResult{
		"python3": {Stdout: "agent ready"},
	}}
	a := newActions(cfg, runner, platform.New(platform.KindLinux, "amd64"))

	facts := probe.Facts{RuntimePresent: true, RuntimePath: "python3"}
	output, err := a.extractBundle(context.Background(), facts, t.TempDir())
	require.NoError(t, err)
	require.Contains(t, output, "agent ready")
}

func TestExtractZip_RejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.zip")

	f, err := os.Create(archive)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	entry, err := w.Create("../escape.txt")
	require.NoError(t, err)
	_, err = entry.Write([]byte("nope"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	_, err = extractZip(archive, filepath.Join(dir, "out"))
	require.ErrorContains(t, err, "escapes install root")
}

func TestDownloadRuntimeAction(t *testing.T) {
	cfg := builtinConfig(t)
	writeEntrypoint(t, cfg)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("installer-bytes"))
	}))
	defer server.Close()
	cfg.RuntimeDownloadURL = server.URL + "/python-installer.exe"

	runner := &scriptedRunner{results: map[string]ports.CommandResult{
		"apt-get": {Stdout: "python3 installed"},
		"python3": {Stdout: "ok"},
	}}
	a := newActions(cfg, runner, platform.New(platform.KindLinux, "amd64"))
	a.httpClient = server.Client()

	output, err := a.downloadRuntime(context.Background(), probe.Facts{}, t.TempDir())
	require.NoError(t, err)
	require.Contains(t, output, "downloaded runtime installer")
	require.Contains(t, output, "runtime available as python3")
}

func TestDownloadRuntimeAction_DownloadFailure(t *testing.T) {
	cfg := builtinConfig(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	cfg.RuntimeDownloadURL = server.URL + "/missing.exe"

	a := newActions(cfg, &scriptedRunner{}, platform.New(platform.KindLinux, "amd64"))
	a.httpClient = server.Client()

	_, err := a.downloadRuntime(context.Background(), probe.Facts{}, t.TempDir())
	require.ErrorContains(t, err, "unexpected status")
}

// On windows the silent installer's PrependPath only reaches future
// sessions, so the resolver must also probe the installer's target
// directories directly.
func TestResolveRuntime_WindowsInstallLocations(t *testing.T) {
	cfg := builtinConfig(t)
	t.Setenv("LOCALAPPDATA", `C:\Users\agent\AppData\Local`)
	userPython := `C:\Users\agent\AppData\Local\Programs\Python\Python311\python.exe`
	runner := &scriptedRunner{results: map[string]ports.CommandResult{
		userPython: {Stdout: "Python 3.11.9"},
	}}
	a := newActions(cfg, runner, platform.New(platform.KindWindows, "amd64"))

	path, ok := a.resolveRuntime(context.Background())
	require.True(t, ok)
	require.Equal(t, userPython, path)
}

func TestResolveRuntime_SystemWideWindowsInstall(t *testing.T) {
	cfg := builtinConfig(t)
	runner := &scriptedRunner{results: map[string]ports.CommandResult{
		`C:\Program Files\Python311\python.exe`: {Stdout: "Python 3.11.9"},
	}}
	a := newActions(cfg, runner, platform.New(platform.KindWindows, "amd64"))

	path, ok := a.resolveRuntime(context.Background())
	require.True(t, ok)
	require.Equal(t, `C:\Program Files\Python311\python.exe`, path)
}

func TestResolveRuntime_NonWindowsUsesPathNamesOnly(t *testing.T) {
	cfg := builtinConfig(t)
	runner := &scriptedRunner{}
	a := newActions(cfg, runner, platform.New(platform.KindLinux, "amd64"))

	_, ok := a.resolveRuntime(context.Background())
	require.False(t, ok)
	require.Len(t, runner.calls, len(runtimeCandidates))
}

func TestManualInstructionsAction(t *testing.T) {
	cfg := builtinConfig(t)
	a := newActions(cfg, &scriptedRunner{}, platform.New(platform.KindOther, "amd64"))

	output, err := a.manualInstructions(context.Background(), probe.Facts{}, t.TempDir())
	require.Error(t, err, "catch-all reports failure so the run terminates with guidance")
	require.Contains(t, output, cfg.MinRuntimeVersion)
	require.Contains(t, output, cfg.BundlePath)
}

func TestInstallRuntime_UnsupportedPlatform(t *testing.T) {
	cfg := builtinConfig(t)
	a := newActions(cfg, &scriptedRunner{}, platform.New(platform.KindOther, "amd64"))

	var transcript strings.Builder
	err := a.installRuntime(context.Background(), "installer.bin", &transcript)
	require.ErrorContains(t, err, "not supported")
}

func writeEntrypoint(t *testing.T, cfg *config.Config) {
	t.Helper()
	require.NoError(t, os.MkdirAll(cfg.InstallRoot, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InstallRoot, cfg.Entrypoint), []byte("print('hi')"), 0o644))
}

func writeBundle(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	for name, content := range files {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}
