package config

// Default values for every tunable. Zero or missing fields fall back to
// these during validation.
const (
	DefaultRequestConcurrency        = 5
	DefaultDiscoveryConcurrency      = 10
	DefaultInstallConcurrency        = 3
	DefaultRequestDeadlineS          = 300
	DefaultMemoryCleanupThresholdMiB = 1024
	DefaultCleanupIntervalS          = 60
	DefaultAnalysisCacheSize         = 128
	DefaultStrategyCacheSize         = 64
	DefaultQualityFloor              = "good"
	DefaultHistorySize               = 1000
	DefaultLogLevel                  = "info"
)

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() Config {
	return Config{
		RequestConcurrency:        DefaultRequestConcurrency,
		DiscoveryConcurrency:      DefaultDiscoveryConcurrency,
		InstallConcurrency:        DefaultInstallConcurrency,
		PoolSize:                  2 * DefaultRequestConcurrency,
		RequestDeadlineS:          DefaultRequestDeadlineS,
		MemoryCleanupThresholdMiB: DefaultMemoryCleanupThresholdMiB,
		CleanupIntervalS:          DefaultCleanupIntervalS,
		AnalysisCacheSize:         DefaultAnalysisCacheSize,
		StrategyCacheSize:         DefaultStrategyCacheSize,
		QualityFloor:              DefaultQualityFloor,
		HistorySize:               DefaultHistorySize,
		LogLevel:                  DefaultLogLevel,
	}
}
