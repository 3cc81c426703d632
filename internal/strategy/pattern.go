package strategy

// Pattern identifies how worker roles are wired together for a request.
type Pattern string

const (
	PatternDirect             Pattern = "direct"
	PatternParallel           Pattern = "parallel"
	PatternRouter             Pattern = "router"
	PatternSwarm              Pattern = "swarm"
	PatternOrchestrator       Pattern = "orchestrator"
	PatternEvaluatorOptimizer Pattern = "evaluator-optimizer"
)

// AllPatterns returns every pattern in canonical order. The order doubles as
// the final tie-breaker during selection.
func AllPatterns() []Pattern {
	return []Pattern{
		PatternDirect,
		PatternParallel,
		PatternRouter,
		PatternSwarm,
		PatternOrchestrator,
		PatternEvaluatorOptimizer,
	}
}

// Valid reports whether p is a member of the closed pattern set.
func (p Pattern) Valid() bool {
	for _, known := range AllPatterns() {
		if p == known {
			return true
		}
	}
	return false
}

func (p Pattern) String() string {
	return string(p)
}

// baseSeconds is the per-pattern execution time basis used for the overall
// estimate: base x complexity level x max(1, steps/3).
func (p Pattern) baseSeconds() int {
	switch p {
	case PatternDirect:
		return 10
	case PatternParallel:
		return 15
	case PatternRouter:
		return 12
	case PatternSwarm:
		return 30
	case PatternOrchestrator:
		return 25
	case PatternEvaluatorOptimizer:
		return 20
	default:
		return 10
	}
}
