package analyzer

import (
	"strings"
	"time"

	"conductor/internal/cache"
	"conductor/internal/capability"
	"conductor/pkg/logging"
)

const subsystem = "Analyzer"

// DefaultCacheSize is the default capacity of the analysis LRU cache.
const DefaultCacheSize = 128

// Analyzer converts free-form request text into a TaskAnalysis. Analysis is
// a pure function of the normalized text; results are memoized in an LRU
// cache keyed by the normalized form.
type Analyzer struct {
	cache *cache.LRU[TaskAnalysis]
}

// New creates an analyzer with the given cache capacity. A capacity of zero
// disables caching.
func New(cacheSize int) *Analyzer {
	return &Analyzer{cache: cache.NewLRU[TaskAnalysis](cacheSize)}
}

// Analyze classifies the request text. Two calls with texts that normalize
// identically return structurally equal analyses; only CacheHit and
// AnalysisTimeMS vary between a hit and a miss.
func (a *Analyzer) Analyze(text string) TaskAnalysis {
	start := time.Now()
	normalized := Normalize(text)

	if cached, found := a.cache.Get(normalized); found {
		elapsed := time.Since(start)
		a.cache.RecordHitTime(elapsed)
		out := cached.clone()
		out.CacheHit = true
		out.AnalysisTimeMS = elapsed.Milliseconds()
		return out
	}

	analysis := classify(text, normalized)
	elapsed := time.Since(start)
	a.cache.RecordMissTime(elapsed)
	a.cache.Set(normalized, analysis.clone())

	analysis.AnalysisTimeMS = elapsed.Milliseconds()
	logging.Debug(subsystem, "classified %q as %s/%s (%d steps)",
		normalized, analysis.TaskType, analysis.Complexity, analysis.EstimatedSteps)
	return analysis
}

// CacheStats exposes the analysis cache statistics.
func (a *Analyzer) CacheStats() cache.Stats {
	return a.cache.Stats()
}

// ClearCache drops all memoized analyses.
func (a *Analyzer) ClearCache() {
	a.cache.Clear()
}

// classify performs the full keyword-driven classification. It never fails:
// empty input yields the minimal analysis.
func classify(original, normalized string) TaskAnalysis {
	if normalized == "" {
		return TaskAnalysis{
			Description:          original,
			TaskType:             TaskInformationRetrieval,
			Complexity:           ComplexitySimple,
			RequiredCapabilities: make(capability.Set),
			EstimatedSteps:       1,
		}
	}

	taskType := classifyType(normalized)
	complexity := classifyComplexity(normalized)

	caps := capability.MatchText(normalized)
	for _, c := range baseCapabilities[taskType] {
		caps.Add(c)
	}

	steps := complexity.baseSteps() + conjunctionCount(normalized) + strings.Count(normalized, ",")

	return TaskAnalysis{
		Description:          original,
		TaskType:             taskType,
		Complexity:           complexity,
		RequiredCapabilities: caps,
		EstimatedSteps:       steps,
		Parallelizable:       countMatches(normalized, parallelKeywords) > countMatches(normalized, sequentialKeywords),
		RequiresIteration:    countMatches(normalized, iterationKeywords) > 0,
		RequiresHumanInput:   countMatches(normalized, humanInputKeywords) > 0,
		Confidence:           scoreConfidence(normalized),
	}
}

// classifyType picks the task type with the highest keyword score,
// defaulting to information retrieval when nothing matches.
func classifyType(normalized string) TaskType {
	best := TaskInformationRetrieval
	bestScore := 0
	for _, tt := range AllTaskTypes() {
		score := countMatches(normalized, typeKeywords[tt])
		if score > bestScore {
			best = tt
			bestScore = score
		}
	}
	return best
}

// classifyComplexity starts at simple, raises the bucket to the highest
// matching keyword bucket, then bumps one level for conjunctions, for long
// requests and for enumerated action words.
func classifyComplexity(normalized string) Complexity {
	level := ComplexitySimple.Level()
	for _, bucket := range []Complexity{
		ComplexityModerate, ComplexityComplex, ComplexityAdvanced, ComplexityExpert,
	} {
		if countMatches(normalized, complexityKeywords[bucket]) > 0 && bucket.Level() > level {
			level = bucket.Level()
		}
	}

	if conjunctionCount(normalized) > 0 {
		level++
	}
	if len(strings.Fields(normalized)) > 25 {
		level++
	}
	if countMatches(normalized, actionWords) >= 2 {
		level++
	}
	if level > ComplexityExpert.Level() {
		level = ComplexityExpert.Level()
	}
	return complexityFromLevel(level)
}

// scoreConfidence starts from a fixed prior and adjusts for request length,
// concrete action verbs and vague wording.
func scoreConfidence(normalized string) float64 {
	confidence := 0.6
	if len(strings.Fields(normalized)) >= 8 {
		confidence += 0.1
	}
	if countMatches(normalized, actionWords) > 0 {
		confidence += 0.1
	}
	if countMatches(normalized, vagueWords) > 0 {
		confidence -= 0.2
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

// HasSequenceIndicators reports whether the text orders its steps
// explicitly (first/then/finally wording). The strategy selector uses this
// to detect dependency planning.
func HasSequenceIndicators(text string) bool {
	return countMatches(Normalize(text), sequentialKeywords) > 0
}

// HasConversationalIndicators reports whether the text suggests multi-turn
// agent handoffs (discussion, negotiation, interviews).
func HasConversationalIndicators(text string) bool {
	return countMatches(Normalize(text), conversationalKeywords) > 0
}

// HasQualityIndicators reports whether the text uses quality-critical
// language, which favors the evaluator-optimizer pattern.
func HasQualityIndicators(text string) bool {
	return countMatches(Normalize(text), qualityKeywords) > 0
}

func conjunctionCount(normalized string) int {
	return strings.Count(normalized, " and ") + strings.Count(normalized, " then ")
}

func countMatches(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			count++
		}
	}
	return count
}
