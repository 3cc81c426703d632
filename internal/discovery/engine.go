package discovery

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"conductor/internal/cache"
	"conductor/internal/capability"
	"conductor/internal/registry"
	"conductor/pkg/logging"
)

const subsystem = "Discovery"

// DefaultConcurrency bounds the number of in-flight per-provider session
// operations during a discovery round.
const DefaultConcurrency = 10

// capCacheSize bounds the capability-analysis memoization cache.
const capCacheSize = 256

// Error wraps the cause of a failed discovery leg. Per-provider failures
// are absorbed; Error is returned only when an entire leg cannot run.
type Error struct {
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("discovery failed: %v", e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Engine populates the provider registry by interrogating connected
// providers through the session interface and merging in the well-known
// catalog. All per-provider work runs in parallel bounded by a semaphore;
// registry writes serialize inside the registry itself.
type Engine struct {
	registry  *registry.Registry
	session   Session
	wellKnown []WellKnownProvider

	sem         *semaphore.Weighted
	concurrency int64

	// capCache memoizes tool-set -> capability analysis per provider;
	// group collapses concurrent analyses of the same key.
	capCache *cache.LRU[capability.Set]
	group    singleflight.Group

	mu           sync.Mutex
	failureCount int64
	lastRound    time.Time
}

// New creates a discovery engine writing into reg through sess.
func New(reg *registry.Registry, sess Session, wellKnown []WellKnownProvider, concurrency int) *Engine {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Engine{
		registry:    reg,
		session:     sess,
		wellKnown:   wellKnown,
		sem:         semaphore.NewWeighted(int64(concurrency)),
		concurrency: int64(concurrency),
		capCache:    cache.NewLRU[capability.Set](capCacheSize),
	}
}

// Discover runs one full discovery round: the connected leg and the
// well-known leg proceed concurrently, and individual provider failures are
// counted without aborting the round. The registry is left consistent even
// on error; existing entries are only ever updated, never dropped.
func (e *Engine) Discover(ctx context.Context) error {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return e.discoverConnected(gctx) })
	g.Go(func() error { return e.discoverWellKnown(gctx) })

	err := g.Wait()

	e.mu.Lock()
	e.lastRound = time.Now()
	e.mu.Unlock()

	if err != nil {
		return &Error{Cause: err}
	}
	logging.Info(subsystem, "discovery round completed in %s (%d providers known)",
		time.Since(start).Round(time.Millisecond), e.registry.Len())
	return nil
}

// DiscoverProvider refreshes a single provider: connect, list tools and
// resources in parallel, recompute capabilities and upsert the profile.
func (e *Engine) DiscoverProvider(ctx context.Context, name string) error {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer e.sem.Release(1)
	return e.probeProvider(ctx, name)
}

// FailureCount returns the number of per-provider failures absorbed since
// the engine was created.
func (e *Engine) FailureCount() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failureCount
}

// CapabilityCacheStats exposes the capability-analysis cache statistics.
func (e *Engine) CapabilityCacheStats() cache.Stats {
	return e.capCache.Stats()
}

// ValidateConnectivity connects to each named provider and lists its tools,
// in parallel bounded by the discovery semaphore. The result maps each name
// to whether the provider answered.
func (e *Engine) ValidateConnectivity(ctx context.Context, names []string) map[string]bool {
	results := make(map[string]bool, len(names))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			ok := false
			if err := e.sem.Acquire(ctx, 1); err == nil {
				defer e.sem.Release(1)
				if err := e.session.Connect(ctx, name); err == nil {
					if _, err := e.session.ListTools(ctx, name); err == nil {
						ok = true
					}
				}
			}
			mu.Lock()
			results[name] = ok
			mu.Unlock()
		}(name)
	}
	wg.Wait()
	return results
}

// ProvidersFor returns the registered providers advertising the capability.
func (e *Engine) ProvidersFor(c capability.Category) []registry.Profile {
	return e.registry.ProvidersFor(c)
}

func (e *Engine) discoverConnected(ctx context.Context) error {
	names, err := e.session.ListConnected(ctx)
	if err != nil {
		return fmt.Errorf("failed to list connected providers: %w", err)
	}

	var wg sync.WaitGroup
	for _, name := range names {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return err
		}
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			defer e.sem.Release(1)
			if err := e.probeProvider(ctx, name); err != nil {
				e.recordFailure()
				logging.Warn(subsystem, "failed to discover provider %s: %v", name, err)
			}
		}(name)
	}
	wg.Wait()
	return nil
}

// probeProvider lists tools and resources concurrently, derives the
// capability set and writes the profile.
func (e *Engine) probeProvider(ctx context.Context, name string) error {
	start := time.Now()

	var tools, resources []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tools, err = e.session.ListTools(gctx, name)
		return err
	})
	g.Go(func() error {
		var err error
		resources, err = e.session.ListResources(gctx, name)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	caps := e.analyzeCapabilities(name, tools, resources)
	latency := time.Since(start).Milliseconds()

	profile := registry.Profile{
		Name:                   name,
		Description:            descriptionFor(name, e.wellKnown),
		Capabilities:           caps,
		Tools:                  tools,
		Resources:              resources,
		Status:                 registry.StatusConnected,
		InstallCommand:         installCommandFor(name, e.wellKnown),
		PriorityScore:          1.0,
		LastDiscoveryLatencyMS: latency,
	}
	e.registry.Upsert(profile)
	logging.Debug(subsystem, "discovered %s: %d tools, %d resources, %d capabilities (%dms)",
		name, len(tools), len(resources), len(caps), latency)
	return nil
}

// discoverWellKnown inserts catalog entries not already present as
// available-but-unconnected providers.
func (e *Engine) discoverWellKnown(ctx context.Context) error {
	for _, entry := range e.wellKnown {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if e.registry.Has(entry.Name) {
			continue
		}
		e.registry.Upsert(registry.Profile{
			Name:           entry.Name,
			Description:    entry.Description,
			Capabilities:   capability.NewSet(entry.Capabilities...),
			Status:         registry.StatusAvailable,
			InstallCommand: entry.InstallCommand,
			PriorityScore:  0.5,
		})
	}
	return nil
}

// analyzeCapabilities maps tool and resource names onto the taxonomy,
// memoized per (provider, tool-set hash) and deduplicated with
// singleflight so concurrent rounds analyze each tool set once.
func (e *Engine) analyzeCapabilities(name string, tools, resources []string) capability.Set {
	key := name + "|" + toolSetHash(tools, resources)
	if cached, found := e.capCache.Get(key); found {
		return cached
	}

	result, _, _ := e.group.Do(key, func() (interface{}, error) {
		caps := capability.CategorizeAll(append(append([]string{}, tools...), resources...))
		e.capCache.Set(key, caps)
		return caps, nil
	})
	return result.(capability.Set)
}

func (e *Engine) recordFailure() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failureCount++
}

func toolSetHash(tools, resources []string) string {
	names := make([]string, 0, len(tools)+len(resources))
	names = append(names, tools...)
	names = append(names, resources...)
	sort.Strings(names)

	h := fnv.New64a()
	for _, n := range names {
		h.Write([]byte(n))
		h.Write([]byte{0})
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

func descriptionFor(name string, wellKnown []WellKnownProvider) string {
	for _, entry := range wellKnown {
		if entry.Name == name {
			return entry.Description
		}
	}
	return ""
}

func installCommandFor(name string, wellKnown []WellKnownProvider) string {
	for _, entry := range wellKnown {
		if entry.Name == name {
			return entry.InstallCommand
		}
	}
	return ""
}
