package orchestrator

import (
	"sync"
	"time"

	"conductor/internal/cache"
	"conductor/internal/capability"
	"conductor/internal/pool"
	"conductor/internal/strategy"
)

// emaAlpha smooths per-pattern success and time series.
const emaAlpha = 0.1

// PatternStats is the rolling account of one pattern's executions.
type PatternStats struct {
	Total          int64   `json:"total"`
	Successes      int64   `json:"successes"`
	SuccessRateEMA float64 `json:"success_rate_ema"`
	TimeEMAMS      float64 `json:"time_ema_ms"`
}

// MetricsSnapshot is a consistent copy of every counter.
type MetricsSnapshot struct {
	TotalRequests      int64                             `json:"total_requests"`
	SuccessfulRequests int64                             `json:"successful_requests"`
	FailedRequests     int64                             `json:"failed_requests"`
	AvgExecutionMS     float64                           `json:"avg_execution_ms"`
	Patterns           map[strategy.Pattern]PatternStats `json:"patterns"`
	ProviderUsage      map[string]int64                  `json:"provider_usage"`
	CapabilityUsage    map[capability.Category]int64     `json:"capability_usage"`

	AnalysisCache cache.Stats `json:"analysis_cache"`
	StrategyCache cache.Stats `json:"strategy_cache"`
	Pool          pool.Stats  `json:"pool"`
}

// Metrics accumulates request outcomes. It implements the selector's
// HistoryProvider so pattern scores absorb execution history.
type Metrics struct {
	mu sync.Mutex

	totalRequests      int64
	successfulRequests int64
	sumTimeMS          float64

	patterns        map[strategy.Pattern]*PatternStats
	providerUsage   map[string]int64
	capabilityUsage map[capability.Category]int64
}

// NewMetrics creates an empty metrics accumulator.
func NewMetrics() *Metrics {
	return &Metrics{
		patterns:        make(map[strategy.Pattern]*PatternStats),
		providerUsage:   make(map[string]int64),
		capabilityUsage: make(map[capability.Category]int64),
	}
}

// RecordRequest folds one finished request into the counters.
func (m *Metrics) RecordRequest(p strategy.Pattern, success bool, elapsed time.Duration, providers []string, caps capability.Set) {
	elapsedMS := float64(elapsed.Milliseconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalRequests++
	if success {
		m.successfulRequests++
	}
	m.sumTimeMS += elapsedMS

	if p != "" {
		stats, ok := m.patterns[p]
		if !ok {
			stats = &PatternStats{}
			m.patterns[p] = stats
		}
		outcome := 0.0
		if success {
			outcome = 1.0
			stats.Successes++
		}
		if stats.Total == 0 {
			stats.SuccessRateEMA = outcome
			stats.TimeEMAMS = elapsedMS
		} else {
			stats.SuccessRateEMA = stats.SuccessRateEMA*(1-emaAlpha) + outcome*emaAlpha
			stats.TimeEMAMS = stats.TimeEMAMS*(1-emaAlpha) + elapsedMS*emaAlpha
		}
		stats.Total++
	}

	for _, name := range providers {
		m.providerUsage[name]++
	}
	for c := range caps {
		m.capabilityUsage[c]++
	}
}

// SuccessRate implements strategy.HistoryProvider.
func (m *Metrics) SuccessRate(p strategy.Pattern) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats, ok := m.patterns[p]
	if !ok || stats.Total == 0 {
		return 0, false
	}
	return stats.SuccessRateEMA, true
}

// Snapshot copies every counter. The caller owns the result.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MetricsSnapshot{
		TotalRequests:      m.totalRequests,
		SuccessfulRequests: m.successfulRequests,
		FailedRequests:     m.totalRequests - m.successfulRequests,
		Patterns:           make(map[strategy.Pattern]PatternStats, len(m.patterns)),
		ProviderUsage:      make(map[string]int64, len(m.providerUsage)),
		CapabilityUsage:    make(map[capability.Category]int64, len(m.capabilityUsage)),
	}
	if m.totalRequests > 0 {
		snap.AvgExecutionMS = m.sumTimeMS / float64(m.totalRequests)
	}
	for p, stats := range m.patterns {
		snap.Patterns[p] = *stats
	}
	for name, n := range m.providerUsage {
		snap.ProviderUsage[name] = n
	}
	for c, n := range m.capabilityUsage {
		snap.CapabilityUsage[c] = n
	}
	return snap
}
