// Package strategy decides which execution pattern to run for an analyzed
// task.
//
// Every pattern in the closed catalog (direct, parallel, router, swarm,
// orchestrator, evaluator-optimizer) is scored against the task analysis:
// matched criteria add a bonus, missed hard-range criteria subtract a
// penalty, and small adjustments reward historical success and current
// registry coverage. The winner ships with a reproducible reasoning string,
// the providers resolved from the capability reverse index, a time estimate
// and up to two ranked fallback patterns.
//
// Selection is total: it always returns a pattern, falling back to direct
// with low confidence when nothing matches. Recommendations are cached per
// (normalized text, provider-set signature) so a registry change invalidates
// the cache implicitly.
package strategy
