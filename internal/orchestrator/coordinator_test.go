package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conductor/internal/analyzer"
	"conductor/internal/capability"
	"conductor/internal/config"
	"conductor/internal/discovery"
	"conductor/internal/dispatch"
	"conductor/internal/installer"
	"conductor/internal/pool"
	"conductor/internal/registry"
	"conductor/internal/strategy"
)

type stubSession struct {
	connected []string
	tools     map[string][]string
}

func (s *stubSession) ListConnected(ctx context.Context) ([]string, error) {
	return append([]string(nil), s.connected...), nil
}

func (s *stubSession) ListTools(ctx context.Context, name string) ([]string, error) {
	return append([]string(nil), s.tools[name]...), nil
}

func (s *stubSession) ListResources(ctx context.Context, name string) ([]string, error) {
	return nil, nil
}

func (s *stubSession) Connect(ctx context.Context, name string) error { return nil }

type stubExecutor struct {
	mu          sync.Mutex
	calls       int
	lastPattern strategy.Pattern
	lastRoles   []*pool.Role
	result      string
	err         error
	blockOnCtx  bool
	delay       time.Duration
	inFlight    int
	maxInFlight int
}

func (e *stubExecutor) Execute(ctx context.Context, pattern strategy.Pattern, roles []*pool.Role, request string, runner dispatch.Runner) (string, error) {
	e.mu.Lock()
	e.calls++
	e.lastPattern = pattern
	e.lastRoles = roles
	e.inFlight++
	if e.inFlight > e.maxInFlight {
		e.maxInFlight = e.inFlight
	}
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.inFlight--
		e.mu.Unlock()
	}()

	if e.blockOnCtx {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return e.result, e.err
}

type okLauncher struct{}

func (okLauncher) LookPath(binary string) (string, error) { return "/usr/bin/" + binary, nil }
func (okLauncher) Run(ctx context.Context, name string, args ...string) installer.RunResult {
	return installer.RunResult{ExitCode: 0, Duration: time.Millisecond}
}

func noopRunner() dispatch.Runner {
	return dispatch.RunnerFunc(func(ctx context.Context, r *pool.Role, prompt string) (string, error) {
		return "", nil
	})
}

// fileSession covers file, search and web capabilities without any catalog.
func fileSession() *stubSession {
	return &stubSession{
		connected: []string{"filesystem", "brave-search"},
		tools: map[string][]string{
			"filesystem":   {"read_file", "write_file"},
			"brave-search": {"brave_web_search"},
		},
	}
}

func newTestCoordinator(t *testing.T, mutate func(*config.Config), deps Deps) *Coordinator {
	t.Helper()
	cfg := config.GetDefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := New(cfg, deps)
	require.NoError(t, err)
	require.NoError(t, c.discovery.Discover(context.Background()))
	t.Cleanup(c.Shutdown)
	return c
}

func TestExecuteSimpleFileRead(t *testing.T) {
	executor := &stubExecutor{result: "file contents"}
	c := newTestCoordinator(t, nil, Deps{
		Session:   fileSession(),
		Runner:    noopRunner(),
		Executor:  executor,
		WellKnown: []discovery.WellKnownProvider{},
	})

	record, err := c.Execute(context.Background(), "read the file notes.txt", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, record.Status)
	assert.Equal(t, "file contents", record.Result)
	assert.Equal(t, analyzer.TaskFileOps, record.Analysis.TaskType)
	assert.Equal(t, analyzer.ComplexitySimple, record.Analysis.Complexity)
	assert.Equal(t, 1, record.Analysis.EstimatedSteps)
	assert.False(t, record.Analysis.Parallelizable)

	assert.Equal(t, strategy.PatternDirect, record.Recommendation.Pattern)
	assert.GreaterOrEqual(t, record.Recommendation.Confidence, 0.6)

	assert.Equal(t, 1, executor.calls)
	assert.Len(t, executor.lastRoles, 1)
	assert.Contains(t, record.ProvidersUsed, "filesystem")

	snap := c.Metrics()
	assert.Equal(t, int64(1), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.SuccessfulRequests)
	assert.Len(t, c.History(0), 1)
}

func TestExecuteIterativeContentCreation(t *testing.T) {
	executor := &stubExecutor{result: "blog post"}
	c := newTestCoordinator(t, nil, Deps{
		Session:   fileSession(),
		Runner:    noopRunner(),
		Executor:  executor,
		WellKnown: []discovery.WellKnownProvider{},
	})

	record, err := c.Execute(context.Background(),
		"write a polished, high-quality blog post about autonomous agents; iterate until good", nil)
	require.NoError(t, err)

	assert.True(t, record.Analysis.RequiresIteration)
	assert.GreaterOrEqual(t, record.Analysis.Complexity.Level(), 2)
	assert.Equal(t, strategy.PatternEvaluatorOptimizer, record.Recommendation.Pattern)
	assert.Contains(t, record.Recommendation.Fallbacks, strategy.PatternDirect)
	// Optimizer plus evaluator.
	assert.Len(t, executor.lastRoles, 2)
}

func TestExecuteParallelResearch(t *testing.T) {
	executor := &stubExecutor{result: "combined findings"}
	c := newTestCoordinator(t, nil, Deps{
		Session:   fileSession(),
		Runner:    noopRunner(),
		Executor:  executor,
		WellKnown: []discovery.WellKnownProvider{},
	})

	record, err := c.Execute(context.Background(),
		"simultaneously search the web and check our database for Q3 sales anomalies and summarize", nil)
	require.NoError(t, err)

	assert.True(t, record.Analysis.Parallelizable)
	assert.GreaterOrEqual(t, len(record.Analysis.RequiredCapabilities), 2)
	assert.Equal(t, strategy.PatternParallel, record.Recommendation.Pattern)
	// One specialist per capability group.
	assert.Len(t, executor.lastRoles, len(record.Analysis.RequiredCapabilities))
}

func TestExecuteOrchestratedMultiStep(t *testing.T) {
	executor := &stubExecutor{result: "report"}
	c := newTestCoordinator(t, nil, Deps{
		Session:   fileSession(),
		Runner:    noopRunner(),
		Executor:  executor,
		WellKnown: []discovery.WellKnownProvider{},
	})

	record, err := c.Execute(context.Background(),
		"first search github for mcp servers, then clone the top 3, analyze their code, and produce a comparison report with charts", nil)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, record.Analysis.Complexity.Level(), 3)
	assert.GreaterOrEqual(t, record.Analysis.EstimatedSteps, 5)
	assert.False(t, record.Analysis.RequiresIteration)
	assert.Equal(t, strategy.PatternOrchestrator, record.Recommendation.Pattern)
	// Planner plus at least one worker.
	assert.GreaterOrEqual(t, len(executor.lastRoles), 2)
}

func TestExecuteInstallsMissingProvider(t *testing.T) {
	session := &stubSession{
		connected: []string{"filesystem"},
		tools: map[string][]string{
			"filesystem":   {"read_file", "write_file"},
			"brave-search": {"brave_web_search"},
		},
	}
	executor := &stubExecutor{result: "search results"}
	c := newTestCoordinator(t, nil, Deps{
		Session:  session,
		Runner:   noopRunner(),
		Executor: executor,
		Launcher: okLauncher{},
	})

	record, err := c.Execute(context.Background(), "search the web for 'mcp specification'", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, record.Status)
	assert.Contains(t, []strategy.Pattern{strategy.PatternDirect, strategy.PatternRouter},
		record.Recommendation.Pattern)
	assert.Contains(t, record.ProvidersUsed, "brave-search")

	p, ok := c.registry.Get("brave-search")
	require.True(t, ok)
	assert.Contains(t, []registry.Status{registry.StatusInstalled, registry.StatusConnected}, p.Status)
}

func TestExecuteNoCapableProviders(t *testing.T) {
	disabled := false
	executor := &stubExecutor{}
	c := newTestCoordinator(t, func(cfg *config.Config) {
		cfg.EnableInstaller = &disabled
	}, Deps{
		Session:   &stubSession{},
		Runner:    noopRunner(),
		Executor:  executor,
		WellKnown: []discovery.WellKnownProvider{},
	})

	_, err := c.Execute(context.Background(), "search the web for news", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoCapableProviders)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, FailureNoCapableProviders, reqErr.Kind)

	assert.Equal(t, 0, executor.calls)
	records := c.History(0)
	require.Len(t, records, 1)
	assert.Equal(t, StatusError, records[0].Status)
	assert.Equal(t, int64(1), c.Metrics().FailedRequests)
}

func TestExecuteTimeout(t *testing.T) {
	executor := &stubExecutor{blockOnCtx: true}
	c := newTestCoordinator(t, func(cfg *config.Config) {
		cfg.RequestDeadlineS = 1
	}, Deps{
		Session:   fileSession(),
		Runner:    noopRunner(),
		Executor:  executor,
		WellKnown: []discovery.WellKnownProvider{},
	})

	_, err := c.Execute(context.Background(), "read the file notes.txt", nil)
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, FailureTimeout, reqErr.Kind)
	assert.Equal(t, strategy.PatternDirect, reqErr.Pattern)
}

func TestExecuteCancellationChecksRolesIn(t *testing.T) {
	executor := &stubExecutor{blockOnCtx: true}
	c := newTestCoordinator(t, nil, Deps{
		Session:   fileSession(),
		Runner:    noopRunner(),
		Executor:  executor,
		WellKnown: []discovery.WellKnownProvider{},
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Execute(ctx, "read the file notes.txt", nil)
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, FailureCancelled, reqErr.Kind)

	// Leased roles are returned even on cancellation.
	assert.Equal(t, 0, c.pool.Stats().Active)
}

func TestExecuteRespectsRequestConcurrency(t *testing.T) {
	executor := &stubExecutor{result: "ok", delay: 10 * time.Millisecond}
	c := newTestCoordinator(t, func(cfg *config.Config) {
		cfg.RequestConcurrency = 2
	}, Deps{
		Session:   fileSession(),
		Runner:    noopRunner(),
		Executor:  executor,
		WellKnown: []discovery.WellKnownProvider{},
	})

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Execute(context.Background(), "read the file notes.txt", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, executor.maxInFlight, 2)
	assert.Equal(t, int64(6), c.Metrics().TotalRequests)
}

func TestAnalyzeOnly(t *testing.T) {
	executor := &stubExecutor{}
	c := newTestCoordinator(t, nil, Deps{
		Session:   fileSession(),
		Runner:    noopRunner(),
		Executor:  executor,
		WellKnown: []discovery.WellKnownProvider{},
	})

	analysis, rec := c.AnalyzeOnly("read the file notes.txt")
	assert.Equal(t, analyzer.TaskFileOps, analysis.TaskType)
	assert.Equal(t, strategy.PatternDirect, rec.Pattern)

	// Dry runs dispatch nothing and record nothing.
	assert.Equal(t, 0, executor.calls)
	assert.Empty(t, c.History(0))
}

func TestCapabilitiesSummary(t *testing.T) {
	c := newTestCoordinator(t, nil, Deps{
		Session:   fileSession(),
		Runner:    noopRunner(),
		Executor:  &stubExecutor{},
		WellKnown: []discovery.WellKnownProvider{},
	})

	summary := c.Capabilities()
	assert.Equal(t, 2, summary.ProviderCount)
	assert.Contains(t, summary.Providers, "filesystem")
	assert.Contains(t, summary.Specializations, "researcher")
	assert.Contains(t, summary.Specializations, pool.VersatileTemplate)
	assert.Contains(t, summary.CoveredCategories, capability.CategoryFile)
}

func TestShutdownRejectsNewRequests(t *testing.T) {
	c := newTestCoordinator(t, nil, Deps{
		Session:   fileSession(),
		Runner:    noopRunner(),
		Executor:  &stubExecutor{result: "ok"},
		WellKnown: []discovery.WellKnownProvider{},
	})

	c.Shutdown()

	_, err := c.Execute(context.Background(), "read the file notes.txt", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShuttingDown)
}

func TestShutdownCancelsQueuedRequests(t *testing.T) {
	executor := &stubExecutor{blockOnCtx: true}
	c := newTestCoordinator(t, func(cfg *config.Config) {
		cfg.RequestConcurrency = 1
	}, Deps{
		Session:   fileSession(),
		Runner:    noopRunner(),
		Executor:  executor,
		WellKnown: []discovery.WellKnownProvider{},
	})
	c.shutdownGrace = 30 * time.Millisecond

	errCh := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := c.Execute(context.Background(), "read the file notes.txt", nil)
			errCh <- err
		}()
	}

	// First request occupies the only slot; give the second time to park on
	// the request semaphore.
	require.Eventually(t, func() bool {
		executor.mu.Lock()
		defer executor.mu.Unlock()
		return executor.calls == 1
	}, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	start := time.Now()
	c.Shutdown()
	// Both the running and the queued request are force-cancelled after the
	// grace period, well before the 300s default deadline.
	assert.Less(t, time.Since(start), time.Second)

	for i := 0; i < 2; i++ {
		err := <-errCh
		require.Error(t, err)
		var reqErr *RequestError
		require.True(t, errors.As(err, &reqErr))
		assert.Contains(t, []FailureKind{FailureCancelled, FailureShuttingDown}, reqErr.Kind)
	}
	assert.Equal(t, 1, executor.calls)
	assert.Equal(t, 0, c.pool.Stats().Active)
}

func TestShutdownCancelsInFlightAfterGrace(t *testing.T) {
	executor := &stubExecutor{blockOnCtx: true}
	c := newTestCoordinator(t, nil, Deps{
		Session:   fileSession(),
		Runner:    noopRunner(),
		Executor:  executor,
		WellKnown: []discovery.WellKnownProvider{},
	})
	c.shutdownGrace = 30 * time.Millisecond

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Execute(context.Background(), "read the file notes.txt", nil)
		errCh <- err
	}()

	// Let the request reach the executor before shutting down.
	require.Eventually(t, func() bool {
		executor.mu.Lock()
		defer executor.mu.Unlock()
		return executor.calls == 1
	}, time.Second, time.Millisecond)

	c.Shutdown()

	err := <-errCh
	require.Error(t, err)
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, FailureCancelled, reqErr.Kind)
	assert.Equal(t, 0, c.pool.Stats().Active)
}
