package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"conductor/internal/analyzer"
	"conductor/internal/capability"
	"conductor/internal/config"
	"conductor/internal/discovery"
	"conductor/internal/dispatch"
	"conductor/internal/installer"
	"conductor/internal/pool"
	"conductor/internal/registry"
	"conductor/internal/strategy"
	"conductor/pkg/logging"
)

const subsystem = "Coordinator"

const defaultShutdownGrace = 30 * time.Second

// Preferences are per-request overrides.
type Preferences struct {
	// LLMProvider hints which model backend the runner should use. The
	// coordinator passes it through opaquely.
	LLMProvider string

	// DeadlineS overrides the configured request deadline.
	DeadlineS int

	// QualityFloor overrides the evaluator-optimizer stop verdict.
	QualityFloor string
}

// Deps are the coordinator's external collaborators. Session and Runner are
// required; the rest default to the production implementations.
type Deps struct {
	Session   discovery.Session
	Runner    dispatch.Runner
	Executor  dispatch.Executor
	Launcher  installer.Launcher
	WellKnown []discovery.WellKnownProvider
}

// CapabilitiesSummary describes what the coordinator can currently do.
type CapabilitiesSummary struct {
	ProviderCount     int                   `json:"provider_count"`
	Providers         []string              `json:"providers"`
	Specializations   []string              `json:"specializations"`
	CoveredCategories []capability.Category `json:"covered_categories"`
}

// Coordinator owns the registry and drives a request end to end: analyze,
// ensure providers, select a pattern, lease roles, dispatch, record.
type Coordinator struct {
	cfg config.Config

	registry  *registry.Registry
	analyzer  *analyzer.Analyzer
	selector  *strategy.Selector
	discovery *discovery.Engine
	installer *installer.Installer
	pool      *pool.Pool
	executor  dispatch.Executor
	runner    dispatch.Runner

	requests *semaphore.Weighted
	metrics  *Metrics
	history  *history

	shutdownGrace time.Duration

	mu           sync.Mutex
	cancels      map[string]context.CancelFunc
	lastCleanup  time.Time
	shuttingDown bool

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}
}

// New wires a coordinator from configuration and collaborators.
func New(cfg config.Config, deps Deps) (*Coordinator, error) {
	if err := config.Validate(&cfg); err != nil {
		return nil, err
	}
	if deps.Session == nil {
		return nil, errors.New("a provider session is required")
	}
	if deps.Runner == nil {
		return nil, errors.New("a model runner is required")
	}

	wellKnown := deps.WellKnown
	if wellKnown == nil {
		wellKnown = discovery.DefaultWellKnown()
	}
	executor := deps.Executor
	if executor == nil {
		executor = &dispatch.Dispatcher{QualityFloor: dispatch.ParseQuality(cfg.QualityFloor)}
	}
	launcher := deps.Launcher
	if launcher == nil {
		launcher = installer.ExecLauncher{}
	}

	reg := registry.New()
	engine := discovery.New(reg, deps.Session, wellKnown, cfg.DiscoveryConcurrency)
	metrics := NewMetrics()

	c := &Coordinator{
		cfg:           cfg,
		registry:      reg,
		analyzer:      analyzer.New(cfg.AnalysisCacheSize),
		selector:      strategy.New(metrics, cfg.StrategyCacheSize),
		discovery:     engine,
		pool:          pool.New(pool.NewFactory(reg), cfg.PoolSize),
		executor:      executor,
		runner:        deps.Runner,
		requests:      semaphore.NewWeighted(int64(cfg.RequestConcurrency)),
		metrics:       metrics,
		history:       newHistory(cfg.HistorySize),
		shutdownGrace: defaultShutdownGrace,
		cancels:       make(map[string]context.CancelFunc),
		lastCleanup:   time.Now(),
		stopCh:        make(chan struct{}),
	}
	if cfg.InstallerEnabled() {
		c.installer = installer.New(reg, launcher, wellKnown, installer.Options{
			Concurrency: cfg.InstallConcurrency,
			Refresh:     engine.DiscoverProvider,
			Session:     deps.Session,
		})
	}
	return c, nil
}

// Start runs the initial discovery round and begins the periodic cleanup
// loop.
func (c *Coordinator) Start(ctx context.Context) error {
	if err := c.discovery.Discover(ctx); err != nil {
		return err
	}
	go c.cleanupLoop()
	logging.Info(subsystem, "started with %d known providers", c.registry.Len())
	return nil
}

// Execute runs one request end to end. The returned record is also appended
// to history; on failure the error is a *RequestError and the record carries
// its message.
func (c *Coordinator) Execute(ctx context.Context, text string, prefs *Preferences) (ExecutionRecord, error) {
	record := ExecutionRecord{
		ID:          uuid.NewString(),
		RequestText: text,
		Status:      StatusInitializing,
		StartTS:     time.Now(),
	}

	c.mu.Lock()
	if c.shuttingDown {
		c.mu.Unlock()
		return c.finish(&record, "", FailureShuttingDown, ErrShuttingDown)
	}
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	// The cancel is registered before the semaphore wait so a forced
	// shutdown also reaches requests still queued for a slot.
	qctx, qcancel := context.WithCancel(ctx)
	defer qcancel()
	c.trackCancel(record.ID, qcancel)
	defer c.untrackCancel(record.ID)

	if err := c.requests.Acquire(qctx, 1); err != nil {
		return c.finish(&record, "", FailureCancelled, err)
	}
	defer c.requests.Release(1)

	deadline := time.Duration(c.cfg.RequestDeadlineS) * time.Second
	if prefs != nil && prefs.DeadlineS > 0 {
		deadline = time.Duration(prefs.DeadlineS) * time.Second
	}
	rctx, cancel := context.WithTimeout(qctx, deadline)
	defer cancel()
	if prefs != nil && prefs.LLMProvider != "" {
		rctx = dispatch.WithModelProvider(rctx, prefs.LLMProvider)
	}

	record.Status = StatusAnalyzing
	record.Analysis = c.analyzer.Analyze(text)

	if err := c.ensureProviders(rctx, record.Analysis.RequiredCapabilities); err != nil {
		return c.finish(&record, "", FailureNoCapableProviders, err)
	}

	record.Status = StatusPlanning
	record.Recommendation = c.selector.Select(record.Analysis, c.registry)
	pattern := record.Recommendation.Pattern

	roles := c.rolesFor(pattern, record.Analysis)
	defer func() {
		for _, r := range roles {
			c.pool.Checkin(r)
		}
	}()
	for _, r := range roles {
		record.RolesUsed = append(record.RolesUsed, r.Name)
	}
	record.ProvidersUsed = providersOf(roles)

	executor := c.executor
	if prefs != nil && prefs.QualityFloor != "" {
		if d, ok := executor.(*dispatch.Dispatcher); ok {
			override := *d
			override.QualityFloor = dispatch.ParseQuality(prefs.QualityFloor)
			executor = &override
		}
	}

	record.Status = StatusExecuting
	result, err := executor.Execute(rctx, pattern, roles, text, c.runner)
	record.Status = StatusCoordinating

	if err != nil {
		kind := FailureExecutor
		switch {
		case errors.Is(err, context.DeadlineExceeded) || rctx.Err() == context.DeadlineExceeded:
			kind = FailureTimeout
		case errors.Is(err, context.Canceled):
			kind = FailureCancelled
		}
		return c.finish(&record, pattern, kind, err)
	}

	record.Result = result
	return c.finish(&record, pattern, "", nil)
}

// AnalyzeOnly explains what Execute would do without dispatching anything.
func (c *Coordinator) AnalyzeOnly(text string) (analyzer.TaskAnalysis, strategy.Recommendation) {
	analysis := c.analyzer.Analyze(text)
	return analysis, c.selector.Select(analysis, c.registry)
}

// Capabilities summarizes the current provider and specialization surface.
func (c *Coordinator) Capabilities() CapabilitiesSummary {
	summary := CapabilitiesSummary{
		ProviderCount: c.registry.Len(),
		Providers:     c.registry.Names(),
	}
	for _, t := range pool.Templates() {
		summary.Specializations = append(summary.Specializations, t.Name)
	}
	for _, cat := range capability.AllCategories() {
		if len(c.registry.NamesFor(cat)) > 0 {
			summary.CoveredCategories = append(summary.CoveredCategories, cat)
		}
	}
	return summary
}

// Providers returns the full registry view, for inspection surfaces.
func (c *Coordinator) Providers() []registry.Profile {
	return c.registry.List()
}

// Metrics returns a snapshot of every counter plus cache and pool stats.
func (c *Coordinator) Metrics() MetricsSnapshot {
	snap := c.metrics.Snapshot()
	snap.AnalysisCache = c.analyzer.CacheStats()
	snap.StrategyCache = c.selector.CacheStats()
	snap.Pool = c.pool.Stats()
	return snap
}

// History returns up to n most recent execution records.
func (c *Coordinator) History(n int) []ExecutionRecord {
	return c.history.Recent(n)
}

// Shutdown stops the cleanup loop, waits up to the grace period for
// in-flight requests, then cancels the remainder and drops the pool.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	if c.shuttingDown {
		c.mu.Unlock()
		return
	}
	c.shuttingDown = true
	c.mu.Unlock()
	c.stopOnce.Do(func() { close(c.stopCh) })

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(c.shutdownGrace):
		logging.Warn(subsystem, "grace period elapsed, cancelling in-flight requests")
		c.mu.Lock()
		for _, cancel := range c.cancels {
			cancel()
		}
		c.mu.Unlock()
		<-done
	}

	c.pool.Cleanup()
	logging.Info(subsystem, "shutdown complete")
}

// ensureProviders makes sure at least one registered provider covers the
// required capabilities, installing candidates when coverage is empty.
func (c *Coordinator) ensureProviders(ctx context.Context, required capability.Set) error {
	if len(required) == 0 {
		return nil
	}
	covered, missing := c.registry.UsableCovered(required)
	if len(covered) > 0 {
		return nil
	}
	if c.installer == nil {
		return ErrNoCapableProviders
	}

	logging.Info(subsystem, "no providers cover %v, attempting installation", missing.Sorted())
	results, err := c.installer.InstallForCapabilities(ctx, missing)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoCapableProviders, err)
	}
	for _, r := range results {
		if r.Success {
			logging.Info(subsystem, "installed provider %s", r.Provider)
		}
	}

	covered, _ = c.registry.UsableCovered(required)
	if len(covered) == 0 {
		return ErrNoCapableProviders
	}
	return nil
}

// rolesFor leases the roles each pattern needs.
func (c *Coordinator) rolesFor(p strategy.Pattern, a analyzer.TaskAnalysis) []*pool.Role {
	required := a.RequiredCapabilities

	switch p {
	case strategy.PatternParallel:
		// One specialist per capability group; dispatch reuses the first
		// for fan-in aggregation.
		return c.pool.TeamFor(required, len(required))
	case strategy.PatternRouter:
		team := c.pool.TeamFor(required, 3)
		return team
	case strategy.PatternSwarm:
		team := c.pool.TeamFor(required, 3)
		if len(team) < 2 {
			team = append(team, c.pool.Checkout(capability.NewSet(capability.CategoryReasoning)))
		}
		return team
	case strategy.PatternOrchestrator:
		planner := c.pool.Checkout(capability.NewSet(capability.CategoryReasoning))
		return append([]*pool.Role{planner}, c.pool.TeamFor(required, 3)...)
	case strategy.PatternEvaluatorOptimizer:
		optimizer := c.pool.Checkout(required)
		evaluator := c.pool.Checkout(capability.NewSet(capability.CategoryReasoning, capability.CategoryAnalysis))
		return []*pool.Role{optimizer, evaluator}
	default:
		return []*pool.Role{c.pool.Checkout(required)}
	}
}

// finish closes out a record, updates metrics and history, and returns the
// caller-facing error.
func (c *Coordinator) finish(record *ExecutionRecord, pattern strategy.Pattern, kind FailureKind, cause error) (ExecutionRecord, error) {
	record.EndTS = time.Now()

	var err error
	if cause == nil {
		record.Status = StatusCompleted
	} else {
		record.Status = StatusError
		err = &RequestError{
			Kind:      kind,
			Pattern:   pattern,
			ElapsedMS: record.ElapsedMS(),
			Cause:     cause,
		}
		record.Error = err.Error()
	}

	success := cause == nil
	c.metrics.RecordRequest(pattern, success, record.EndTS.Sub(record.StartTS),
		record.ProvidersUsed, record.Analysis.RequiredCapabilities)
	for _, name := range record.ProvidersUsed {
		c.registry.RecordCall(name, success, float64(record.ElapsedMS()))
	}
	c.history.append(*record)
	c.maybeCleanup(false)

	logging.Debug(subsystem, "request %s finished: %s", record.ID, record.Status)
	return *record, err
}

func (c *Coordinator) trackCancel(id string, cancel context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancels[id] = cancel
}

func (c *Coordinator) untrackCancel(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cancels, id)
}

// maybeCleanup evicts pool slack and clears caches when memory pressure or
// the cleanup interval demands it.
func (c *Coordinator) maybeCleanup(force bool) {
	interval := time.Duration(c.cfg.CleanupIntervalS) * time.Second

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	overThreshold := mem.HeapAlloc > uint64(c.cfg.MemoryCleanupThresholdMiB)*1024*1024

	c.mu.Lock()
	due := time.Since(c.lastCleanup) >= interval
	if !force && !overThreshold && !due {
		c.mu.Unlock()
		return
	}
	c.lastCleanup = time.Now()
	c.mu.Unlock()

	c.pool.EvictIdle(c.cfg.PoolSize / 2)
	c.analyzer.ClearCache()
	c.selector.ClearCache()
	runtime.GC()
	logging.Debug(subsystem, "resource cleanup ran (heap %d MiB)", mem.HeapAlloc/1024/1024)
}

func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(time.Duration(c.cfg.CleanupIntervalS) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.maybeCleanup(false)
		}
	}
}

// providersOf unions role provider lists preserving first-seen order.
func providersOf(roles []*pool.Role) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, r := range roles {
		for _, name := range r.Providers {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
