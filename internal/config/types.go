package config

import "conductor/internal/discovery"

// Config is the top-level configuration structure for conductor.
type Config struct {
	// RequestConcurrency sizes the global request semaphore.
	RequestConcurrency int `yaml:"requestConcurrency,omitempty"`

	// DiscoveryConcurrency bounds parallel per-provider discovery work.
	DiscoveryConcurrency int `yaml:"discoveryConcurrency,omitempty"`

	// InstallConcurrency bounds parallel installs in a batch.
	InstallConcurrency int `yaml:"installConcurrency,omitempty"`

	// PoolSize caps the inactive role pool. Zero means twice the request
	// concurrency.
	PoolSize int `yaml:"poolSize,omitempty"`

	// RequestDeadlineS is the per-request deadline in seconds.
	RequestDeadlineS int `yaml:"requestDeadlineS,omitempty"`

	// MemoryCleanupThresholdMiB triggers resource cleanup when process
	// memory exceeds it.
	MemoryCleanupThresholdMiB int `yaml:"memoryCleanupThresholdMiB,omitempty"`

	// CleanupIntervalS is how often cleanup runs regardless of memory.
	CleanupIntervalS int `yaml:"cleanupIntervalS,omitempty"`

	// AnalysisCacheSize and StrategyCacheSize size the component caches.
	AnalysisCacheSize int `yaml:"analysisCacheSize,omitempty"`
	StrategyCacheSize int `yaml:"strategyCacheSize,omitempty"`

	// EnableInstaller controls whether missing capabilities trigger
	// installation.
	EnableInstaller *bool `yaml:"enableInstaller,omitempty"`

	// QualityFloor is the evaluator-optimizer stop verdict (poor, fair,
	// good, excellent).
	QualityFloor string `yaml:"qualityFloor,omitempty"`

	// HistorySize bounds the execution record history.
	HistorySize int `yaml:"historySize,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel,omitempty"`

	// Providers maps provider names to how to reach them.
	Providers map[string]discovery.ServerSpec `yaml:"providers,omitempty"`
}

// InstallerEnabled resolves the EnableInstaller tristate.
func (c Config) InstallerEnabled() bool {
	if c.EnableInstaller == nil {
		return true
	}
	return *c.EnableInstaller
}
