package config

import (
	"fmt"

	"conductor/internal/discovery"
)

var validQualityFloors = map[string]struct{}{
	"poor": {}, "fair": {}, "good": {}, "excellent": {},
}

var validLogLevels = map[string]struct{}{
	"debug": {}, "info": {}, "warn": {}, "error": {},
}

// Validate normalizes the configuration in place: zero values fall back to
// defaults, negatives and unknown enum values are rejected.
func Validate(c *Config) error {
	if err := applyDefault(&c.RequestConcurrency, DefaultRequestConcurrency, "requestConcurrency"); err != nil {
		return err
	}
	if err := applyDefault(&c.DiscoveryConcurrency, DefaultDiscoveryConcurrency, "discoveryConcurrency"); err != nil {
		return err
	}
	if err := applyDefault(&c.InstallConcurrency, DefaultInstallConcurrency, "installConcurrency"); err != nil {
		return err
	}
	if err := applyDefault(&c.PoolSize, 2*c.RequestConcurrency, "poolSize"); err != nil {
		return err
	}
	if err := applyDefault(&c.RequestDeadlineS, DefaultRequestDeadlineS, "requestDeadlineS"); err != nil {
		return err
	}
	if err := applyDefault(&c.MemoryCleanupThresholdMiB, DefaultMemoryCleanupThresholdMiB, "memoryCleanupThresholdMiB"); err != nil {
		return err
	}
	if err := applyDefault(&c.CleanupIntervalS, DefaultCleanupIntervalS, "cleanupIntervalS"); err != nil {
		return err
	}
	if err := applyDefault(&c.HistorySize, DefaultHistorySize, "historySize"); err != nil {
		return err
	}

	// Cache sizes may legitimately be zero (caching disabled); only reject
	// negatives.
	if c.AnalysisCacheSize < 0 {
		return fmt.Errorf("analysisCacheSize must not be negative, got %d", c.AnalysisCacheSize)
	}
	if c.StrategyCacheSize < 0 {
		return fmt.Errorf("strategyCacheSize must not be negative, got %d", c.StrategyCacheSize)
	}

	if c.QualityFloor == "" {
		c.QualityFloor = DefaultQualityFloor
	}
	if _, ok := validQualityFloors[c.QualityFloor]; !ok {
		return fmt.Errorf("unknown qualityFloor %q", c.QualityFloor)
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if _, ok := validLogLevels[c.LogLevel]; !ok {
		return fmt.Errorf("unknown logLevel %q", c.LogLevel)
	}

	for name, spec := range c.Providers {
		if err := validateProvider(name, spec); err != nil {
			return err
		}
	}
	return nil
}

func applyDefault(field *int, fallback int, name string) error {
	if *field < 0 {
		return fmt.Errorf("%s must not be negative, got %d", name, *field)
	}
	if *field == 0 {
		*field = fallback
	}
	return nil
}

func validateProvider(name string, spec discovery.ServerSpec) error {
	switch spec.Transport {
	case discovery.TransportStdio, "":
		if spec.Command == "" {
			return fmt.Errorf("provider %s: stdio transport requires a command", name)
		}
	case discovery.TransportStreamableHTTP:
		if spec.URL == "" {
			return fmt.Errorf("provider %s: streamable-http transport requires a url", name)
		}
	default:
		return fmt.Errorf("provider %s: unsupported transport %q", name, spec.Transport)
	}
	return nil
}
