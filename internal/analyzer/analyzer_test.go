package analyzer

import (
	"testing"

	"conductor/internal/capability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercase and trailing punctuation",
			input:    "Read The File notes.txt!",
			expected: "read file notes.txt",
		},
		{
			name:     "whitespace collapse",
			input:    "  search   the   web  ",
			expected: "search web",
		},
		{
			name:     "function words kept when fewer than two tokens remain",
			input:    "the the a",
			expected: "the the a",
		},
		{
			name:     "conjunctions survive",
			input:    "search the web and then summarize",
			expected: "search web and then summarize",
		},
		{
			name:     "empty",
			input:    "   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestAnalyzeSimpleFileRead(t *testing.T) {
	a := New(DefaultCacheSize)
	analysis := a.Analyze("read the file notes.txt")

	assert.Equal(t, TaskFileOps, analysis.TaskType)
	assert.Equal(t, ComplexitySimple, analysis.Complexity)
	assert.True(t, analysis.RequiredCapabilities.Contains(capability.CategoryFile))
	assert.Equal(t, 1, analysis.EstimatedSteps)
	assert.False(t, analysis.Parallelizable)
	assert.False(t, analysis.RequiresIteration)
	assert.False(t, analysis.RequiresHumanInput)
	assert.GreaterOrEqual(t, analysis.Confidence, 0.6)
}

func TestAnalyzeIterativeContentCreation(t *testing.T) {
	a := New(DefaultCacheSize)
	analysis := a.Analyze(
		"write a polished, high-quality blog post about autonomous agents; iterate until good")

	assert.Equal(t, TaskContentCreation, analysis.TaskType)
	assert.True(t, analysis.RequiresIteration)
	assert.GreaterOrEqual(t, analysis.Complexity.Level(), ComplexityModerate.Level())
}

func TestAnalyzeParallelResearch(t *testing.T) {
	a := New(DefaultCacheSize)
	analysis := a.Analyze(
		"simultaneously search the web and check our database for Q3 sales anomalies and summarize")

	assert.True(t, analysis.Parallelizable)
	assert.True(t, analysis.RequiredCapabilities.Contains(capability.CategorySearch))
	assert.True(t, analysis.RequiredCapabilities.Contains(capability.CategoryDatabase))
	assert.True(t, analysis.RequiredCapabilities.Contains(capability.CategoryAnalysis))
	assert.GreaterOrEqual(t, analysis.Complexity.Level(), ComplexityModerate.Level())
}

func TestAnalyzeOrchestratedMultiStep(t *testing.T) {
	a := New(DefaultCacheSize)
	analysis := a.Analyze(
		"first search github for mcp servers, then clone the top 3, analyze their code, and produce a comparison report with charts")

	assert.GreaterOrEqual(t, analysis.Complexity.Level(), ComplexityComplex.Level())
	assert.GreaterOrEqual(t, analysis.EstimatedSteps, 5)
	assert.False(t, analysis.RequiresIteration)
	assert.False(t, analysis.Parallelizable)
}

func TestAnalyzeHumanInput(t *testing.T) {
	a := New(DefaultCacheSize)
	analysis := a.Analyze("draft the announcement and confirm with me before sending")

	assert.True(t, analysis.RequiresHumanInput)
}

func TestAnalyzeEmptyInput(t *testing.T) {
	a := New(DefaultCacheSize)
	analysis := a.Analyze("")

	assert.Equal(t, TaskInformationRetrieval, analysis.TaskType)
	assert.Equal(t, ComplexitySimple, analysis.Complexity)
	assert.Equal(t, 1, analysis.EstimatedSteps)
	assert.Empty(t, analysis.RequiredCapabilities)
	assert.Equal(t, 0.0, analysis.Confidence)
}

func TestAnalyzeDeterminism(t *testing.T) {
	a := New(DefaultCacheSize)
	first := a.Analyze("research recent advances in battery storage")
	second := a.Analyze("research recent advances in battery storage")

	require.True(t, second.CacheHit)
	require.False(t, first.CacheHit)

	// Equal in everything except the observational fields.
	first.CacheHit = false
	first.AnalysisTimeMS = 0
	second.CacheHit = false
	second.AnalysisTimeMS = 0
	assert.Equal(t, first, second)
}

func TestAnalyzeNormalizationEquivalence(t *testing.T) {
	a := New(DefaultCacheSize)
	first := a.Analyze("Search the web for MCP servers")
	second := a.Analyze("search  web for mcp servers!")

	assert.True(t, second.CacheHit)
	assert.Equal(t, first.TaskType, second.TaskType)
	assert.Equal(t, first.Complexity, second.Complexity)
	assert.Equal(t, first.EstimatedSteps, second.EstimatedSteps)
	assert.Equal(t, first.RequiredCapabilities, second.RequiredCapabilities)
}

func TestCacheHitDoesNotAliasState(t *testing.T) {
	a := New(DefaultCacheSize)
	first := a.Analyze("read the file notes.txt")
	first.RequiredCapabilities.Add(capability.CategoryDatabase)

	second := a.Analyze("read the file notes.txt")
	assert.False(t, second.RequiredCapabilities.Contains(capability.CategoryDatabase))
}

func TestCacheDisabled(t *testing.T) {
	a := New(0)
	first := a.Analyze("read the file notes.txt")
	second := a.Analyze("read the file notes.txt")

	assert.False(t, first.CacheHit)
	assert.False(t, second.CacheHit)
	assert.Equal(t, first.TaskType, second.TaskType)
}

func TestCacheStats(t *testing.T) {
	a := New(DefaultCacheSize)
	_ = a.Analyze("read the file notes.txt")
	_ = a.Analyze("read the file notes.txt")

	stats := a.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)

	a.ClearCache()
	third := a.Analyze("read the file notes.txt")
	assert.False(t, third.CacheHit)
}

func TestComplexityLevelOrdering(t *testing.T) {
	assert.Less(t, ComplexitySimple.Level(), ComplexityModerate.Level())
	assert.Less(t, ComplexityModerate.Level(), ComplexityComplex.Level())
	assert.Less(t, ComplexityComplex.Level(), ComplexityAdvanced.Level())
	assert.Less(t, ComplexityAdvanced.Level(), ComplexityExpert.Level())
}

func TestVagueRequestLowersConfidence(t *testing.T) {
	a := New(DefaultCacheSize)
	precise := a.Analyze("read the file notes.txt")
	vague := a.Analyze("do something with stuff")

	assert.Greater(t, precise.Confidence, vague.Confidence)
}
