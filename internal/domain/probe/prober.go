package probe

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/felixgeelhaar/agentstrap/internal/domain/config"
	"github.com/felixgeelhaar/agentstrap/internal/domain/platform"
	"github.com/felixgeelhaar/agentstrap/internal/ports"
)

// runtimeCandidates are the executables tried for the version probe, in
// order. Windows installs typically expose "python", everywhere else
// "python3" is the reliable name.
var runtimeCandidates = []string{"python3", "python"}

// Prober gathers Facts from the host. All probes are read-only apart from
// the install-root write test, and each one is bounded by the configured
// probe timeout so a stuck probe cannot stall the run.
type Prober struct {
	runner ports.CommandRunner
	cfg    *config.Config
	logger ports.Logger

	// httpClient is replaceable in tests.
	httpClient *http.Client
}

// New creates a Prober.
func New(runner ports.CommandRunner, cfg *config.Config, logger ports.Logger) *Prober {
	return &Prober{
		runner:     runner,
		cfg:        cfg,
		logger:     logger,
		httpClient: &http.Client{},
	}
}

// Probe inspects the host and returns Facts. It never fails: a probe that
// errors leaves its fact at the conservative default.
func (p *Prober) Probe(ctx context.Context) Facts {
	facts := Facts{
		OS:          platform.Detect().Kind(),
		InstallRoot: p.cfg.InstallRoot,
	}

	facts.RuntimePresent, facts.RuntimeVersion, facts.RuntimePath = p.probeRuntime(ctx)
	facts.NetworkReachable = p.probeNetwork(ctx)
	facts.InstallRootWritable = p.probeWritable()

	p.logger.Debug(ctx, "environment probed", ports.F("facts", facts.String()))
	return facts
}

// probeRuntime looks for an installed runtime and records its version.
// Presence and version are separate facts; whether the version satisfies
// the configured minimum is the launch method's decision, not the probe's.
func (p *Prober) probeRuntime(ctx context.Context) (present bool, version, path string) {
	for _, candidate := range runtimeCandidates {
		probeCtx, cancel := context.WithTimeout(ctx, p.cfg.ProbeTimeout.Std())
		result, err := p.runner.Run(probeCtx, candidate, "--version")
		cancel()
		if err != nil || !result.Success() {
			continue
		}

		detected := parseRuntimeVersion(result.Combined())
		if detected == "" {
			continue
		}
		return true, detected, candidate
	}
	return false, "", ""
}

// MeetsMinimum reports whether a detected runtime version satisfies the
// minimum. An unparseable detected version never satisfies it; an empty
// minimum is satisfied by anything.
func MeetsMinimum(detected, minimum string) bool {
	d := canonicalVersion(detected)
	if d == "" {
		return false
	}
	m := canonicalVersion(minimum)
	if m == "" {
		return true
	}
	return semver.Compare(d, m) >= 0
}

// probeNetwork checks reachability of the runtime download host with a
// HEAD request.
func (p *Prober) probeNetwork(ctx context.Context) bool {
	target, err := url.Parse(p.cfg.RuntimeDownloadURL)
	if err != nil || target.Host == "" {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.cfg.ProbeTimeout.Std())
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, target.Scheme+"://"+target.Host, nil)
	if err != nil {
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}

// probeWritable tests whether the install root accepts writes. When the
// root does not exist yet, its parent is tested instead so the probe does
// not create directories.
func (p *Prober) probeWritable() bool {
	dir := p.cfg.InstallRoot
	if _, err := os.Stat(dir); err != nil {
		dir = filepath.Dir(dir)
	}

	file, err := os.CreateTemp(dir, ".agentstrap-probe-*")
	if err != nil {
		return false
	}
	name := file.Name()
	_ = file.Close()
	_ = os.Remove(name)
	return true
}

// parseRuntimeVersion extracts a canonical semver from version output such
// as "Python 3.11.9".
func parseRuntimeVersion(output string) string {
	fields := strings.Fields(strings.TrimSpace(output))
	if len(fields) < 2 {
		return ""
	}
	return canonicalVersion(fields[1])
}

// canonicalVersion normalizes "3.8" or "v3.8" into a form semver accepts,
// returning empty for garbage.
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}
