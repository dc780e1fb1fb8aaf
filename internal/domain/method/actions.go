package method

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/agentstrap/internal/domain/config"
	"github.com/felixgeelhaar/agentstrap/internal/domain/platform"
	"github.com/felixgeelhaar/agentstrap/internal/domain/probe"
	"github.com/felixgeelhaar/agentstrap/internal/ports"
)

// actions holds the shared collaborators of the builtin install steps.
type actions struct {
	cfg    *config.Config
	runner ports.CommandRunner
	plat   *platform.Platform

	// httpClient is replaceable in tests.
	httpClient *http.Client
}

func newActions(cfg *config.Config, runner ports.CommandRunner, plat *platform.Platform) *actions {
	return &actions{
		cfg:        cfg,
		runner:     runner,
		plat:       plat,
		httpClient: &http.Client{},
	}
}

// runtimeLaunch runs the agent entrypoint with the runtime found by the
// prober. The entrypoint performs its own dependency setup; a zero exit
// means the agent is installed and runnable.
func (a *actions) runtimeLaunch(ctx context.Context, facts probe.Facts, _ string) (string, error) {
	if facts.RuntimePath == "" {
		return "", fmt.Errorf("no runtime executable recorded by the probe")
	}
	return a.launchWith(ctx, facts.RuntimePath)
}

func (a *actions) launchWith(ctx context.Context, runtimePath string) (string, error) {
	if err := os.MkdirAll(a.cfg.InstallRoot, 0o755); err != nil {
		return "", fmt.Errorf("create install root: %w", err)
	}

	entrypoint := filepath.Join(a.cfg.InstallRoot, a.cfg.Entrypoint)
	if _, err := os.Stat(entrypoint); err != nil {
		return "", fmt.Errorf("agent entrypoint %s not present: %w", entrypoint, err)
	}

	result, err := a.runner.Run(ctx, runtimePath, entrypoint, "--setup")
	if err != nil {
		return result.Combined(), fmt.Errorf("launch agent: %w", err)
	}
	if !result.Success() {
		return result.Combined(), fmt.Errorf("agent setup exited with code %d", result.ExitCode)
	}
	return result.Combined(), nil
}

// extractBundle unpacks the pre-fetched portable bundle into the install
// root, then launches the agent if a runtime is available.
func (a *actions) extractBundle(ctx context.Context, facts probe.Facts, _ string) (string, error) {
	count, err := extractZip(a.cfg.BundlePath, a.cfg.InstallRoot)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", a.cfg.BundlePath, err)
	}

	summary := fmt.Sprintf("extracted %d files into %s", count, a.cfg.InstallRoot)
	if !facts.RuntimePresent {
		// The portable bundle carries its own runtime; extraction alone
		// completes the install.
		return summary, nil
	}

	output, err := a.launchWith(ctx, facts.RuntimePath)
	if output != "" {
		summary += "\n" + output
	}
	return summary, err
}

// downloadRuntime fetches the runtime installer, installs it unattended,
// and then retries the direct launch with the freshly installed runtime.
func (a *actions) downloadRuntime(ctx context.Context, facts probe.Facts, workdir string) (string, error) {
	installerPath, err := a.fetchInstaller(ctx, workdir)
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(installerPath) }()

	var transcript strings.Builder
	fmt.Fprintf(&transcript, "downloaded runtime installer to %s\n", installerPath)

	if err := a.installRuntime(ctx, installerPath, &transcript); err != nil {
		return transcript.String(), err
	}

	runtimePath, ok := a.resolveRuntime(ctx)
	if !ok {
		return transcript.String(), fmt.Errorf("runtime still not found after unattended install")
	}
	fmt.Fprintf(&transcript, "runtime available as %s\n", runtimePath)

	facts.RuntimePath = runtimePath
	output, err := a.runtimeLaunch(ctx, facts, workdir)
	if output != "" {
		transcript.WriteString(output)
	}
	return transcript.String(), err
}

func (a *actions) fetchInstaller(ctx context.Context, workdir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.RuntimeDownloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download runtime installer: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download runtime installer: unexpected status %s", resp.Status)
	}

	file, err := os.CreateTemp(workdir, "runtime-installer-*"+filepath.Ext(a.cfg.RuntimeDownloadURL))
	if err != nil {
		return "", fmt.Errorf("create installer file: %w", err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return "", fmt.Errorf("write installer file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close installer file: %w", err)
	}
	return file.Name(), nil
}

// installRuntime performs the platform's unattended runtime install.
func (a *actions) installRuntime(ctx context.Context, installerPath string, transcript *strings.Builder) error {
	var result ports.CommandResult
	var err error

	switch a.plat.Kind() {
	case platform.KindWindows:
		result, err = a.runner.Run(ctx, installerPath,
			"/quiet", "InstallAllUsers=1", "PrependPath=1", "Include_test=0")
	case platform.KindLinux:
		result, err = a.runner.Run(ctx, "apt-get", "install", "-y", "python3")
	default:
		return fmt.Errorf("unattended runtime install is not supported on %s", a.plat.Kind())
	}

	if out := result.Combined(); out != "" {
		transcript.WriteString(out + "\n")
	}
	if err != nil {
		return fmt.Errorf("run runtime installer: %w", err)
	}
	if !result.Success() {
		return fmt.Errorf("runtime installer exited with code %d", result.ExitCode)
	}
	return nil
}

// resolveRuntime re-checks the runtime after an install, since the probed
// facts predate it. The unattended installer prepends the runtime to PATH
// for future sessions only, so the PATH names are followed by the
// installer's well-known target locations.
func (a *actions) resolveRuntime(ctx context.Context) (string, bool) {
	candidates := append([]string{}, runtimeCandidates...)
	candidates = append(candidates, a.installedRuntimePaths()...)

	for _, candidate := range candidates {
		result, err := a.runner.Run(ctx, candidate, "--version")
		if err == nil && result.Success() {
			return candidate, true
		}
	}
	return "", false
}

// installedRuntimePaths lists where the unattended installer places the
// runtime executable. On non-windows platforms the package manager puts it
// on PATH, so there is nothing to add.
func (a *actions) installedRuntimePaths() []string {
	if !a.plat.IsWindows() {
		return nil
	}
	paths := []string{`C:\Program Files\Python311\python.exe`}
	if local := os.Getenv("LOCALAPPDATA"); local != "" {
		paths = append(paths, local+`\Programs\Python\Python311\python.exe`)
	}
	return paths
}

// runtimeCandidates mirrors the prober's search order.
var runtimeCandidates = []string{"python3", "python"}

// manualInstructions is the catch-all. It prints actionable guidance and
// reports failure so the run terminates with the instructions surfaced.
func (a *actions) manualInstructions(_ context.Context, _ probe.Facts, _ string) (string, error) {
	var b strings.Builder
	b.WriteString("automatic installation was not possible on this machine\n")
	fmt.Fprintf(&b, "  1. install a runtime version %s or newer\n", a.cfg.MinRuntimeVersion)
	fmt.Fprintf(&b, "  2. or place %s in the current directory\n", a.cfg.BundlePath)
	fmt.Fprintf(&b, "  3. run agentstrap again; it will pick the cheapest working method\n")
	return b.String(), fmt.Errorf("manual installation required")
}

// extractZip unpacks archive into dir, refusing entries that would escape
// it. Returns the number of extracted files.
func extractZip(archive, dir string) (int, error) {
	reader, err := zip.OpenReader(archive)
	if err != nil {
		return 0, err
	}
	defer func() { _ = reader.Close() }()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range reader.File {
		target := filepath.Join(dir, filepath.Clean(entry.Name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			return count, fmt.Errorf("archive entry %q escapes install root", entry.Name)
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return count, err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return count, err
		}
		if err := copyZipEntry(entry, target); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func copyZipEntry(entry *zip.File, target string) error {
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, entry.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}
