package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conductor/internal/capability"
	"conductor/internal/registry"
)

// stubSession is an in-memory Session that records concurrency and can be
// told to fail per provider.
type stubSession struct {
	mu        sync.Mutex
	connected []string
	tools     map[string][]string
	resources map[string][]string

	listErr    error
	toolErr    map[string]error
	connectErr map[string]error

	toolDelay   time.Duration
	inFlight    int
	maxInFlight int
}

func (s *stubSession) ListConnected(ctx context.Context) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]string(nil), s.connected...), nil
}

func (s *stubSession) ListTools(ctx context.Context, name string) ([]string, error) {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > s.maxInFlight {
		s.maxInFlight = s.inFlight
	}
	s.mu.Unlock()

	if s.toolDelay > 0 {
		time.Sleep(s.toolDelay)
	}

	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()

	if err := s.toolErr[name]; err != nil {
		return nil, err
	}
	return append([]string(nil), s.tools[name]...), nil
}

func (s *stubSession) ListResources(ctx context.Context, name string) ([]string, error) {
	return append([]string(nil), s.resources[name]...), nil
}

func (s *stubSession) Connect(ctx context.Context, name string) error {
	if err := s.connectErr[name]; err != nil {
		return err
	}
	return nil
}

func TestDiscoverMergesConnectedAndWellKnown(t *testing.T) {
	sess := &stubSession{
		connected: []string{"filesystem"},
		tools:     map[string][]string{"filesystem": {"read_file", "write_file"}},
	}
	reg := registry.New()
	engine := New(reg, sess, DefaultWellKnown(), 0)

	err := engine.Discover(context.Background())
	require.NoError(t, err)

	// One connected provider plus the rest of the catalog.
	assert.Equal(t, len(DefaultWellKnown()), reg.Len())

	fs, ok := reg.Get("filesystem")
	require.True(t, ok)
	assert.Equal(t, registry.StatusConnected, fs.Status)
	assert.Equal(t, 1.0, fs.PriorityScore)
	assert.True(t, fs.Capabilities.Contains(capability.CategoryFile))
	assert.Len(t, fs.Tools, 2)

	fetch, ok := reg.Get("fetch")
	require.True(t, ok)
	assert.Equal(t, registry.StatusAvailable, fetch.Status)
	assert.Equal(t, 0.5, fetch.PriorityScore)
	assert.NotEmpty(t, fetch.InstallCommand)
}

func TestDiscoverAbsorbsProviderFailure(t *testing.T) {
	sess := &stubSession{
		connected: []string{"good", "bad"},
		tools:     map[string][]string{"good": {"search_web"}},
		toolErr:   map[string]error{"bad": errors.New("tools call failed")},
	}
	reg := registry.New()
	engine := New(reg, sess, nil, 0)

	err := engine.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), engine.FailureCount())

	good, ok := reg.Get("good")
	require.True(t, ok)
	assert.True(t, good.Capabilities.Contains(capability.CategorySearch))
	assert.True(t, good.Capabilities.Contains(capability.CategoryWeb))

	_, ok = reg.Get("bad")
	assert.False(t, ok)
}

func TestDiscoverListConnectedError(t *testing.T) {
	sess := &stubSession{listErr: errors.New("session down")}
	engine := New(registry.New(), sess, nil, 0)

	err := engine.Discover(context.Background())
	require.Error(t, err)

	var dErr *Error
	assert.True(t, errors.As(err, &dErr))
}

func TestDiscoverRespectsConcurrencyBound(t *testing.T) {
	const bound = 3

	names := make([]string, 20)
	tools := make(map[string][]string, len(names))
	for i := range names {
		names[i] = "provider-" + string(rune('a'+i))
		tools[names[i]] = []string{"read_file"}
	}
	sess := &stubSession{
		connected: names,
		tools:     tools,
		toolDelay: 5 * time.Millisecond,
	}
	engine := New(registry.New(), sess, nil, bound)

	err := engine.Discover(context.Background())
	require.NoError(t, err)
	assert.LessOrEqual(t, sess.maxInFlight, bound)
}

func TestDiscoverProviderRefreshesSingle(t *testing.T) {
	sess := &stubSession{
		tools: map[string][]string{"sqlite": {"execute_sql", "list_tables"}},
	}
	reg := registry.New()
	engine := New(reg, sess, DefaultWellKnown(), 0)

	err := engine.DiscoverProvider(context.Background(), "sqlite")
	require.NoError(t, err)

	p, ok := reg.Get("sqlite")
	require.True(t, ok)
	assert.Equal(t, registry.StatusConnected, p.Status)
	assert.True(t, p.Capabilities.Contains(capability.CategoryDatabase))
	// Description carries over from the catalog entry.
	assert.NotEmpty(t, p.Description)
}

func TestValidateConnectivity(t *testing.T) {
	sess := &stubSession{
		tools:      map[string][]string{"a": {"read_file"}},
		toolErr:    map[string]error{"c": errors.New("no tools")},
		connectErr: map[string]error{"b": errors.New("refused")},
	}
	engine := New(registry.New(), sess, nil, 0)

	results := engine.ValidateConnectivity(context.Background(), []string{"a", "b", "c"})
	assert.Equal(t, map[string]bool{"a": true, "b": false, "c": false}, results)
}

func TestCapabilityAnalysisMemoized(t *testing.T) {
	sess := &stubSession{
		connected: []string{"filesystem"},
		tools:     map[string][]string{"filesystem": {"read_file"}},
	}
	engine := New(registry.New(), sess, nil, 0)

	require.NoError(t, engine.Discover(context.Background()))
	require.NoError(t, engine.Discover(context.Background()))

	stats := engine.CapabilityCacheStats()
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestBestForTask(t *testing.T) {
	reg := registry.New()
	reg.Upsert(registry.Profile{
		Name:          "brave-search",
		Description:   "Web and local search via the Brave Search API",
		Tools:         []string{"brave_web_search"},
		Status:        registry.StatusAvailable,
		PriorityScore: 0.5,
	})
	reg.Upsert(registry.Profile{
		Name:          "filesystem",
		Description:   "Read, write and organize local files and directories",
		Tools:         []string{"read_file"},
		Status:        registry.StatusConnected,
		PriorityScore: 1.0,
	})
	reg.Upsert(registry.Profile{
		Name:          "slack",
		Description:   "Send messages and read channels in Slack",
		Tools:         []string{"post_message"},
		Status:        registry.StatusAvailable,
		PriorityScore: 0.5,
	})
	engine := New(reg, &stubSession{}, nil, 0)

	t.Run("zero score excluded", func(t *testing.T) {
		got := engine.BestForTask("search the web for news", 5)
		require.Len(t, got, 1)
		assert.Equal(t, "brave-search", got[0].Name)
	})

	t.Run("ranked and truncated", func(t *testing.T) {
		got := engine.BestForTask("read a file", 5)
		require.Len(t, got, 2)
		assert.Equal(t, "filesystem", got[0].Name)
		assert.Equal(t, "slack", got[1].Name)

		got = engine.BestForTask("read a file", 1)
		require.Len(t, got, 1)
		assert.Equal(t, "filesystem", got[0].Name)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, engine.BestForTask("", 3))
		assert.Nil(t, engine.BestForTask("read a file", 0))
	})
}
