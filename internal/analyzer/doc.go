// Package analyzer classifies free-form request text into a TaskAnalysis:
// task type, complexity bucket, required capabilities, estimated step count
// and execution traits (parallelizable, iterative, needs human input).
//
// Classification is deterministic and purely keyword-driven, so it is cheap
// enough to run inline on every request. Results are memoized in an LRU
// cache keyed by the normalized text; Normalize is the single similarity
// heuristic and must stay identical wherever it is used as a cache key.
package analyzer
