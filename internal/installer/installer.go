package installer

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"conductor/internal/capability"
	"conductor/internal/discovery"
	"conductor/internal/registry"
	"conductor/pkg/logging"
)

const subsystem = "Installer"

// Method identifies the external command family used to install a provider.
type Method string

const (
	MethodNPX Method = "npx"
	MethodUVX Method = "uvx"
	MethodPip Method = "pip"
	MethodGit Method = "git"
)

// DefaultTimeout bounds a single installation subprocess.
const DefaultTimeout = 5 * time.Minute

// DefaultConcurrency bounds parallel installs in a batch.
const DefaultConcurrency = 3

// verifyTimeout bounds the post-install connectivity check.
const verifyTimeout = 10 * time.Second

// Candidate is one installable provider together with the commands to try,
// in order.
type Candidate struct {
	Name         string
	Description  string
	Capabilities capability.Set
	Commands     []string
}

// InstallationResult records the outcome of one installation attempt chain
// for a provider. Failures surface here rather than as returned errors so the
// caller can iterate candidates without unwinding.
type InstallationResult struct {
	Provider string        `json:"provider"`
	Method   Method        `json:"method"`
	Command  string        `json:"command"`
	Success  bool          `json:"success"`
	ExitCode int           `json:"exit_code"`
	Stdout   string        `json:"-"`
	Stderr   string        `json:"stderr,omitempty"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Options configures an Installer. Zero values select the defaults.
type Options struct {
	Timeout     time.Duration
	Concurrency int

	// Refresh is invoked after each successful install so discovery can
	// re-probe the provider. Optional.
	Refresh func(ctx context.Context, name string) error

	// Session is used by Verify to confirm a freshly installed provider
	// answers. Optional.
	Session discovery.Session
}

// Installer makes providers for missing capabilities exist in the registry.
// It probes package-manager availability once per method, runs installs
// through the injected Launcher, and remembers permanently failed providers
// for the process lifetime.
type Installer struct {
	registry *registry.Registry
	launcher Launcher
	catalog  []discovery.WellKnownProvider
	refresh  func(ctx context.Context, name string) error
	session  discovery.Session
	timeout  time.Duration
	sem      *semaphore.Weighted

	mu        sync.Mutex
	methodOK  map[Method]bool
	installed map[string]InstallationResult
	failed    map[string]struct{}
}

// New creates an installer drawing candidates from the catalog.
func New(reg *registry.Registry, launcher Launcher, catalog []discovery.WellKnownProvider, opts Options) *Installer {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Installer{
		registry:  reg,
		launcher:  launcher,
		catalog:   catalog,
		refresh:   opts.Refresh,
		session:   opts.Session,
		timeout:   timeout,
		sem:       semaphore.NewWeighted(int64(concurrency)),
		methodOK:  make(map[Method]bool),
		installed: make(map[string]InstallationResult),
		failed:    make(map[string]struct{}),
	}
}

// Candidates returns the installable providers for the required capabilities,
// ranked by how many of them each candidate satisfies. Permanently failed
// providers are excluded.
func (i *Installer) Candidates(required capability.Set) []Candidate {
	i.mu.Lock()
	defer i.mu.Unlock()

	var out []Candidate
	for _, entry := range i.catalog {
		if _, bad := i.failed[entry.Name]; bad {
			continue
		}
		caps := capability.NewSet(entry.Capabilities...)
		if coverage(caps, required) == 0 {
			continue
		}
		out = append(out, Candidate{
			Name:         entry.Name,
			Description:  entry.Description,
			Capabilities: caps,
			Commands:     commandsFor(entry.InstallCommand),
		})
	}

	sort.SliceStable(out, func(a, b int) bool {
		ca := coverage(out[a].Capabilities, required)
		cb := coverage(out[b].Capabilities, required)
		if ca != cb {
			return ca > cb
		}
		return out[a].Name < out[b].Name
	})
	return out
}

// InstallForCapabilities installs candidates best-first until usable
// providers cover the required capabilities. Each round takes the minimal
// greedy cover of the still-missing capabilities from the ranked candidate
// list and installs it in parallel; candidates that add nothing are held back
// as fallbacks for when an install fails. It returns one result per attempted
// candidate; ErrNoCandidates is the only error.
func (i *Installer) InstallForCapabilities(ctx context.Context, required capability.Set) ([]InstallationResult, error) {
	remaining := i.Candidates(required)
	if len(remaining) == 0 {
		return nil, ErrNoCandidates
	}

	var results []InstallationResult
	for len(remaining) > 0 {
		_, missing := i.registry.UsableCovered(required)
		if len(missing) == 0 {
			break
		}
		var wave []Candidate
		wave, remaining = coverWave(remaining, missing)
		if len(wave) == 0 {
			break
		}
		results = append(results, i.installBatch(ctx, wave)...)
	}
	return results, nil
}

// installBatch installs candidates in parallel, bounded by the install
// semaphore.
func (i *Installer) installBatch(ctx context.Context, candidates []Candidate) []InstallationResult {
	results := make([]InstallationResult, len(candidates))
	var wg sync.WaitGroup
	for idx, cand := range candidates {
		if err := i.sem.Acquire(ctx, 1); err != nil {
			results[idx] = InstallationResult{Provider: cand.Name, Err: err}
			continue
		}
		wg.Add(1)
		go func(idx int, cand Candidate) {
			defer wg.Done()
			defer i.sem.Release(1)
			results[idx] = i.Install(ctx, cand)
		}(idx, cand)
	}
	wg.Wait()
	return results
}

// coverWave splits the ranked candidates into the greedy cover of the missing
// capabilities and the rest.
func coverWave(candidates []Candidate, missing capability.Set) (wave, rest []Candidate) {
	uncovered := capability.NewSet(missing.Sorted()...)
	for _, cand := range candidates {
		if coverage(cand.Capabilities, uncovered) == 0 {
			rest = append(rest, cand)
			continue
		}
		wave = append(wave, cand)
		for c := range cand.Capabilities {
			delete(uncovered, c)
		}
	}
	return wave, rest
}

// Install runs the candidate's commands in order until one succeeds. A
// provider that installed successfully before is a no-op and returns the
// recorded result. After exhausting every command the provider joins the
// permanent-failed set.
func (i *Installer) Install(ctx context.Context, cand Candidate) InstallationResult {
	i.mu.Lock()
	if prev, done := i.installed[cand.Name]; done {
		i.mu.Unlock()
		return prev
	}
	i.mu.Unlock()

	var last InstallationResult
	for _, command := range cand.Commands {
		last = i.attempt(ctx, cand.Name, command)
		if last.Success {
			i.recordSuccess(ctx, cand, last)
			return last
		}
		logging.Warn(subsystem, "install attempt for %s via %q failed: %v",
			cand.Name, command, last.Err)
	}

	i.mu.Lock()
	i.failed[cand.Name] = struct{}{}
	i.mu.Unlock()
	logging.Error(subsystem, last.Err, "all install methods exhausted for %s", cand.Name)
	return last
}

// Verify connects to a freshly installed provider and lists its tools under
// a short deadline. On failure the provider is marked error but stays in the
// registry.
func (i *Installer) Verify(ctx context.Context, name string) error {
	if i.session == nil {
		return nil
	}

	vctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	err := i.session.Connect(vctx, name)
	if err == nil {
		_, err = i.session.ListTools(vctx, name)
	}
	if err != nil {
		if serr := i.registry.SetStatus(name, registry.StatusError); serr != nil {
			logging.Debug(subsystem, "could not mark %s as error: %v", name, serr)
		}
		return err
	}
	return nil
}

func (i *Installer) attempt(ctx context.Context, provider, command string) InstallationResult {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return InstallationResult{Provider: provider, Err: &UnavailableError{}}
	}
	method := Method(argv[0])

	if !i.methodAvailable(method) {
		return InstallationResult{
			Provider: provider,
			Method:   method,
			Command:  command,
			Err:      &UnavailableError{Method: method},
		}
	}

	rctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	logging.Info(subsystem, "installing %s: %s", provider, command)
	run := i.launcher.Run(rctx, argv[0], argv[1:]...)

	result := InstallationResult{
		Provider: provider,
		Method:   method,
		Command:  command,
		ExitCode: run.ExitCode,
		Stdout:   run.Stdout,
		Stderr:   run.Stderr,
		Duration: run.Duration,
	}
	switch {
	case run.Err == nil:
		result.Success = true
	case rctx.Err() == context.DeadlineExceeded:
		result.Err = &TimeoutError{Provider: provider, Timeout: i.timeout}
	default:
		result.Err = &FailedError{
			Provider: provider,
			ExitCode: run.ExitCode,
			Stderr:   strings.TrimSpace(run.Stderr),
		}
	}
	return result
}

// methodAvailable probes the package manager binary once and caches the
// answer.
func (i *Installer) methodAvailable(m Method) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if ok, probed := i.methodOK[m]; probed {
		return ok
	}
	_, err := i.launcher.LookPath(string(m))
	i.methodOK[m] = err == nil
	return err == nil
}

func (i *Installer) recordSuccess(ctx context.Context, cand Candidate, result InstallationResult) {
	i.mu.Lock()
	i.installed[cand.Name] = result
	i.mu.Unlock()

	if i.registry.Has(cand.Name) {
		if err := i.registry.SetStatus(cand.Name, registry.StatusInstalled); err != nil {
			logging.Debug(subsystem, "could not mark %s installed: %v", cand.Name, err)
		}
	} else {
		i.registry.Upsert(registry.Profile{
			Name:           cand.Name,
			Description:    cand.Description,
			Capabilities:   cand.Capabilities,
			Status:         registry.StatusInstalled,
			InstallCommand: result.Command,
			PriorityScore:  0.5,
		})
	}
	logging.Info(subsystem, "installed %s via %s in %s",
		cand.Name, result.Method, result.Duration.Round(time.Millisecond))

	if i.refresh != nil {
		if err := i.refresh(ctx, cand.Name); err != nil {
			logging.Debug(subsystem, "post-install refresh for %s failed: %v", cand.Name, err)
		}
	}
}

// commandsFor expands one catalog install command into the ordered list of
// commands to try. uvx packages fall back to a plain pip install.
func commandsFor(installCommand string) []string {
	commands := []string{installCommand}
	argv := strings.Fields(installCommand)
	if len(argv) == 2 && Method(argv[0]) == MethodUVX {
		commands = append(commands, "pip install "+argv[1])
	}
	return commands
}

func coverage(have, required capability.Set) int {
	n := 0
	for c := range required {
		if have.Contains(c) {
			n++
		}
	}
	return n
}
