package strategy

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"conductor/internal/analyzer"
	"conductor/internal/cache"
	"conductor/internal/registry"
	"conductor/pkg/logging"
)

const subsystem = "Strategy"

// DefaultCacheSize is the default capacity of the recommendation cache.
const DefaultCacheSize = 64

// fallbackScoreFloor is the minimum total score a pattern needs to appear as
// a fallback.
const fallbackScoreFloor = 0.3

// Recommendation is the immutable outcome of strategy selection.
type Recommendation struct {
	Pattern           Pattern   `json:"pattern"`
	Reasoning         string    `json:"reasoning"`
	RequiredProviders []string  `json:"required_providers"`
	EstimatedSeconds  int       `json:"estimated_execution_time_s"`
	Confidence        float64   `json:"confidence"`
	Fallbacks         []Pattern `json:"fallback_patterns"`
}

func (r Recommendation) clone() Recommendation {
	out := r
	out.RequiredProviders = append([]string(nil), r.RequiredProviders...)
	out.Fallbacks = append([]Pattern(nil), r.Fallbacks...)
	return out
}

// HistoryProvider exposes the coordinator's rolling per-pattern success
// rates. The second return value is false when the pattern has no history.
type HistoryProvider interface {
	SuccessRate(p Pattern) (float64, bool)
}

// Selector scores every execution pattern against a task analysis and the
// current provider registry and picks the winner. Selection never fails:
// with nothing to go on it returns direct with low confidence.
type Selector struct {
	history HistoryProvider
	cache   *cache.LRU[Recommendation]
}

// New creates a selector. history may be nil when no execution history is
// available.
func New(history HistoryProvider, cacheSize int) *Selector {
	return &Selector{
		history: history,
		cache:   cache.NewLRU[Recommendation](cacheSize),
	}
}

// Select returns the best pattern for the analysis given current registry
// coverage. Results are cached on (normalized text, provider signature), so
// the cache invalidates implicitly whenever the provider set changes.
func (s *Selector) Select(analysis analyzer.TaskAnalysis, reg *registry.Registry) Recommendation {
	start := time.Now()
	key := analyzer.Normalize(analysis.Description) + "|" + reg.Signature()

	if cached, found := s.cache.Get(key); found {
		s.cache.RecordHitTime(time.Since(start))
		return cached.clone()
	}

	rec := s.selectUncached(analysis, reg)
	s.cache.RecordMissTime(time.Since(start))
	s.cache.Set(key, rec.clone())
	return rec
}

// CacheStats exposes the recommendation cache statistics.
func (s *Selector) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// ClearCache drops all cached recommendations.
func (s *Selector) ClearCache() {
	s.cache.Clear()
}

type scoredPattern struct {
	pattern Pattern
	total   float64
	matched []string
}

func (s *Selector) selectUncached(analysis analyzer.TaskAnalysis, reg *registry.Registry) Recommendation {
	coverage := capabilityCoverage(analysis, reg)

	scored := make([]scoredPattern, 0, len(AllPatterns()))
	for _, p := range AllPatterns() {
		base, matched := scorePattern(p, analysis)
		total := base
		if rate, ok := s.successRate(p); ok {
			total += 0.1 * rate
		}
		total += 0.1 * coverage
		if total > 1 {
			total = 1
		}
		scored = append(scored, scoredPattern{pattern: p, total: total, matched: matched})
	}

	winner := s.pickWinner(scored)
	if winner.total <= 0 {
		winner = scoredPattern{
			pattern: PatternDirect,
			total:   0.1,
			matched: []string{"no pattern criteria matched"},
		}
	}

	rec := Recommendation{
		Pattern:           winner.pattern,
		Reasoning:         buildReasoning(analysis, winner),
		RequiredProviders: requiredProviders(analysis, reg),
		EstimatedSeconds:  estimateSeconds(winner.pattern, analysis),
		Confidence:        winner.total,
		Fallbacks:         fallbacks(scored, winner.pattern),
	}

	logging.Debug(subsystem, "selected %s (confidence %.2f) for %s/%s",
		rec.Pattern, rec.Confidence, analysis.TaskType, analysis.Complexity)
	return rec
}

func (s *Selector) successRate(p Pattern) (float64, bool) {
	if s.history == nil {
		return 0, false
	}
	return s.history.SuccessRate(p)
}

// pickWinner returns the highest-scoring pattern; ties break on historical
// success rate, then on canonical pattern order.
func (s *Selector) pickWinner(scored []scoredPattern) scoredPattern {
	const epsilon = 1e-9
	best := scored[0]
	for _, candidate := range scored[1:] {
		switch {
		case candidate.total > best.total+epsilon:
			best = candidate
		case candidate.total > best.total-epsilon:
			bestRate, _ := s.successRate(best.pattern)
			candRate, _ := s.successRate(candidate.pattern)
			if candRate > bestRate {
				best = candidate
			}
			// Equal rates keep the earlier pattern: canonical order wins.
		}
	}
	return best
}

// criterion is one scoring rule for a pattern. A match contributes +1, a
// mismatch subtracts the penalty.
type criterion struct {
	label   string
	matched bool
	penalty float64
}

// scorePattern computes the normalized base score in [0,1] and the list of
// matched criterion labels.
func scorePattern(p Pattern, a analyzer.TaskAnalysis) (float64, []string) {
	capCount := len(a.RequiredCapabilities)
	level := a.Complexity.Level()

	var criteria []criterion
	switch p {
	case PatternDirect:
		criteria = []criterion{
			{"complexity at most moderate", level <= 2, 0.3},
			{"three steps or fewer", a.EstimatedSteps <= 3, 0.3},
			{"single capability", capCount <= 1, 0.3},
			{"not parallelizable", !a.Parallelizable, 0.3},
		}
	case PatternParallel:
		criteria = []criterion{
			{"complexity at least moderate", level >= 2, 0.3},
			{"multiple capabilities", capCount >= 2, 0.4},
			{"parallelizable", a.Parallelizable, 0.5},
			{"no step dependencies", !analyzer.HasSequenceIndicators(a.Description), 0.4},
		}
	case PatternRouter:
		criteria = []criterion{
			{"at least two capability categories", capCount >= 2, 0.3},
			{"single specialist sufficient", a.EstimatedSteps <= 3 && !a.Parallelizable, 0.4},
		}
	case PatternSwarm:
		criteria = []criterion{
			{"complexity at least advanced", level >= 4, 0.4},
			{"more than two capability categories", capCount > 2, 0.3},
			{"conversational handoffs natural", analyzer.HasConversationalIndicators(a.Description), 0.5},
		}
	case PatternOrchestrator:
		criteria = []criterion{
			{"complexity at least complex", level >= 3, 0.4},
			{"at least five steps", a.EstimatedSteps >= 5, 0.4},
			{"dependency planning required", analyzer.HasSequenceIndicators(a.Description), 0.3},
		}
	case PatternEvaluatorOptimizer:
		criteria = []criterion{
			{"iteration or quality-critical language", a.RequiresIteration || analyzer.HasQualityIndicators(a.Description), 0.5},
			{"complexity at least moderate", level >= 2, 0.3},
		}
	}

	sum := 0.0
	var matched []string
	for _, c := range criteria {
		if c.matched {
			sum += 1.0
			matched = append(matched, c.label)
		} else {
			sum -= c.penalty
		}
	}

	score := sum / float64(len(criteria))
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, matched
}

// buildReasoning emits a deterministic human-readable explanation composed
// of the task shape and the matched criteria.
func buildReasoning(a analyzer.TaskAnalysis, winner scoredPattern) string {
	parts := []string{
		fmt.Sprintf("%s task (%d steps)", a.Complexity, a.EstimatedSteps),
	}
	parts = append(parts, winner.matched...)
	if !a.RequiresIteration {
		parts = append(parts, "no iteration required")
	}
	return strings.Join(parts, "; ")
}

// requiredProviders resolves each required capability to the first provider
// in the reverse index not already chosen, preserving canonical capability
// order.
func requiredProviders(a analyzer.TaskAnalysis, reg *registry.Registry) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, c := range a.RequiredCapabilities.Sorted() {
		for _, name := range reg.NamesFor(c) {
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				out = append(out, name)
				break
			}
		}
	}
	return out
}

func capabilityCoverage(a analyzer.TaskAnalysis, reg *registry.Registry) float64 {
	if len(a.RequiredCapabilities) == 0 {
		return 0
	}
	covered, _ := reg.Covered(a.RequiredCapabilities)
	return float64(len(covered)) / float64(len(a.RequiredCapabilities))
}

func estimateSeconds(p Pattern, a analyzer.TaskAnalysis) int {
	stepFactor := a.EstimatedSteps / 3
	if stepFactor < 1 {
		stepFactor = 1
	}
	return p.baseSeconds() * a.Complexity.Level() * stepFactor
}

// fallbacks returns the top two non-winning patterns scoring at or above
// the fallback floor, ordered by score descending.
func fallbacks(scored []scoredPattern, winner Pattern) []Pattern {
	candidates := make([]scoredPattern, 0, len(scored))
	for _, sp := range scored {
		if sp.pattern != winner && sp.total >= fallbackScoreFloor {
			candidates = append(candidates, sp)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].total > candidates[j].total
	})
	if len(candidates) > 2 {
		candidates = candidates[:2]
	}
	out := make([]Pattern, 0, len(candidates))
	for _, sp := range candidates {
		out = append(out, sp.pattern)
	}
	return out
}
