package strategy

import (
	"testing"

	"conductor/internal/analyzer"
	"conductor/internal/capability"
	"conductor/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHistory struct {
	rates map[Pattern]float64
}

func (s *stubHistory) SuccessRate(p Pattern) (float64, bool) {
	rate, ok := s.rates[p]
	return rate, ok
}

func newRegistry(profiles ...registry.Profile) *registry.Registry {
	r := registry.New()
	for _, p := range profiles {
		r.Upsert(p)
	}
	return r
}

func filesystemProfile() registry.Profile {
	return registry.Profile{
		Name:          "filesystem",
		Capabilities:  capability.NewSet(capability.CategoryFile),
		Status:        registry.StatusConnected,
		PriorityScore: 1.0,
	}
}

func searchProfile() registry.Profile {
	return registry.Profile{
		Name:          "brave-search",
		Capabilities:  capability.NewSet(capability.CategorySearch, capability.CategoryWeb),
		Status:        registry.StatusConnected,
		PriorityScore: 1.0,
	}
}

func analyze(text string) analyzer.TaskAnalysis {
	return analyzer.New(0).Analyze(text)
}

func TestSelectDirectForSimpleFileRead(t *testing.T) {
	s := New(nil, DefaultCacheSize)
	reg := newRegistry(filesystemProfile())

	rec := s.Select(analyze("read the file notes.txt"), reg)

	assert.Equal(t, PatternDirect, rec.Pattern)
	assert.GreaterOrEqual(t, rec.Confidence, 0.6)
	assert.Contains(t, rec.RequiredProviders, "filesystem")
	assert.NotContains(t, rec.Fallbacks, PatternDirect)
}

func TestSelectEvaluatorOptimizerForIterativeTask(t *testing.T) {
	s := New(nil, DefaultCacheSize)
	reg := newRegistry(filesystemProfile())

	rec := s.Select(analyze(
		"write a polished, high-quality blog post about autonomous agents; iterate until good"), reg)

	assert.Equal(t, PatternEvaluatorOptimizer, rec.Pattern)
	assert.Contains(t, rec.Fallbacks, PatternDirect)
}

func TestSelectParallelForParallelizableTask(t *testing.T) {
	s := New(nil, DefaultCacheSize)
	reg := newRegistry(filesystemProfile(), searchProfile())

	rec := s.Select(analyze(
		"simultaneously search the web and check our database for Q3 sales anomalies and summarize"), reg)

	assert.Equal(t, PatternParallel, rec.Pattern)
}

func TestSelectOrchestratorForMultiStepTask(t *testing.T) {
	s := New(nil, DefaultCacheSize)
	reg := newRegistry(filesystemProfile(), searchProfile())

	rec := s.Select(analyze(
		"first search github for mcp servers, then clone the top 3, analyze their code, and produce a comparison report with charts"), reg)

	assert.Equal(t, PatternOrchestrator, rec.Pattern)
}

func TestSelectorTotality(t *testing.T) {
	s := New(nil, DefaultCacheSize)
	empty := registry.New()

	inputs := []string{
		"",
		"read the file notes.txt",
		"do something with stuff",
		"negotiate a contract with the vendor and interview three candidates",
	}
	for _, input := range inputs {
		rec := s.Select(analyze(input), empty)
		assert.True(t, rec.Pattern.Valid(), "input %q", input)
		assert.GreaterOrEqual(t, rec.Confidence, 0.0)
		assert.LessOrEqual(t, rec.Confidence, 1.0)
		assert.LessOrEqual(t, len(rec.Fallbacks), 2)
		for _, fb := range rec.Fallbacks {
			assert.NotEqual(t, rec.Pattern, fb)
		}
	}
}

func TestReasoningIsReproducible(t *testing.T) {
	reg := newRegistry(filesystemProfile())
	a := analyze("read the file notes.txt")

	first := New(nil, 0).Select(a, reg)
	second := New(nil, 0).Select(a, reg)

	assert.Equal(t, first.Reasoning, second.Reasoning)
	assert.NotEmpty(t, first.Reasoning)
	assert.Contains(t, first.Reasoning, "simple task (1 steps)")
}

func TestRequiredProvidersDeduplicated(t *testing.T) {
	s := New(nil, DefaultCacheSize)
	reg := newRegistry(searchProfile())

	// search and web both resolve to brave-search; it must appear once.
	rec := s.Select(analyze("search the web for 'mcp specification'"), reg)

	assert.Equal(t, []string{"brave-search"}, rec.RequiredProviders)
}

func TestHistoryBreaksTies(t *testing.T) {
	history := &stubHistory{rates: map[Pattern]float64{
		PatternRouter: 0.9,
		PatternDirect: 0.1,
	}}
	s := New(history, 0)
	reg := registry.New()

	// Scores shift slightly with history; selection still returns a valid
	// pattern and remains deterministic for the same inputs.
	a := analyze("search the web for 'mcp specification'")
	first := s.Select(a, reg)
	second := s.Select(a, reg)
	assert.Equal(t, first.Pattern, second.Pattern)
}

func TestEstimatedSecondsScalesWithComplexity(t *testing.T) {
	s := New(nil, 0)
	reg := registry.New()

	simple := s.Select(analyze("read the file notes.txt"), reg)
	complexTask := s.Select(analyze(
		"first search github for mcp servers, then clone the top 3, analyze their code, and produce a comparison report with charts"), reg)

	assert.Greater(t, complexTask.EstimatedSeconds, simple.EstimatedSeconds)
	assert.Positive(t, simple.EstimatedSeconds)
}

func TestRecommendationCachedPerProviderSignature(t *testing.T) {
	s := New(nil, DefaultCacheSize)
	reg := newRegistry(filesystemProfile())
	a := analyze("read the file notes.txt")

	first := s.Select(a, reg)
	_ = s.Select(a, reg)
	stats := s.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)

	// Adding a provider changes the signature: next select is a miss.
	reg.Upsert(searchProfile())
	second := s.Select(a, reg)
	assert.Equal(t, int64(1), s.CacheStats().Hits)
	require.Equal(t, first.Pattern, second.Pattern)
}

func TestCachedRecommendationIsNotAliased(t *testing.T) {
	s := New(nil, DefaultCacheSize)
	reg := newRegistry(filesystemProfile())
	a := analyze("read the file notes.txt")

	first := s.Select(a, reg)
	require.NotEmpty(t, first.RequiredProviders)
	first.RequiredProviders[0] = "mutated"

	second := s.Select(a, reg)
	assert.Equal(t, "filesystem", second.RequiredProviders[0])
}
