// Package config loads the engine's typed, YAML-backed configuration.
// There are no package-level singletons: callers load a config and pass
// it explicitly to the components that need it.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EngineConfig is the orchestrator and ingest-side configuration, the
// generalized counterpart of the teacher's ProvidersConfig.
type EngineConfig struct {
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Cache        CacheConfig        `yaml:"cache"`
	Ingest       IngestConfig       `yaml:"ingest"`
}

// OrchestratorConfig governs job scheduling, per spec.md §4.7/§5.
type OrchestratorConfig struct {
	MaxConcurrentJobs int `yaml:"max_concurrent_jobs"` // default 3
	QueueCapacity     int `yaml:"queue_capacity"`      // default 256
	JobTimeoutMinutes int `yaml:"job_timeout_minutes"` // default 30
	MaxRetriesPerStage int `yaml:"max_retries_per_stage"` // default 2
}

// CacheConfig governs the result cache keyed by (symbol, analysis_types,
// source, periods).
type CacheConfig struct {
	TTLHours int    `yaml:"ttl_hours"` // default 24
	Backend  string `yaml:"backend"`   // "memory" or "redis"
	RedisAddr string `yaml:"redis_addr"`
}

// IngestConfig governs the circuit breaker and rate limiter wrapping the
// ingest contract.
type IngestConfig struct {
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	Backoff           BackoffConfig `yaml:"backoff"`
	Circuit           CircuitConfig `yaml:"circuit"`
}

// BackoffConfig mirrors the teacher's exponential retry backoff shape.
type BackoffConfig struct {
	BaseSeconds int `yaml:"base_seconds"` // default 2
	MaxRetries  int `yaml:"max_retries"`  // default 2
}

// CircuitConfig mirrors the teacher's circuit breaker shape, sized for
// gobreaker.Settings.
type CircuitConfig struct {
	FailureThreshold uint32 `yaml:"failure_threshold"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
}

// DefaultEngineConfig returns the spec's documented defaults, used when
// no config file is supplied.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Orchestrator: OrchestratorConfig{
			MaxConcurrentJobs:  3,
			QueueCapacity:      256,
			JobTimeoutMinutes:  30,
			MaxRetriesPerStage: 2,
		},
		Cache: CacheConfig{
			TTLHours: 24,
			Backend:  "memory",
		},
		Ingest: IngestConfig{
			RequestsPerSecond: 5,
			Burst:             10,
			Backoff:           BackoffConfig{BaseSeconds: 2, MaxRetries: 2},
			Circuit:           CircuitConfig{FailureThreshold: 5, TimeoutSeconds: 60},
		},
	}
}

// LoadEngineConfig loads configuration from a YAML file, falling back to
// documented defaults for any zero-valued field left unset.
func LoadEngineConfig(path string) (EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("read engine config %s: %w", path, err)
	}
	cfg := DefaultEngineConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("parse engine config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, fmt.Errorf("invalid engine config: %w", err)
	}
	return cfg, nil
}

// Validate ensures the loaded configuration is internally consistent.
func (c EngineConfig) Validate() error {
	if c.Orchestrator.MaxConcurrentJobs <= 0 {
		return fmt.Errorf("orchestrator.max_concurrent_jobs must be positive, got %d", c.Orchestrator.MaxConcurrentJobs)
	}
	if c.Orchestrator.QueueCapacity <= 0 {
		return fmt.Errorf("orchestrator.queue_capacity must be positive, got %d", c.Orchestrator.QueueCapacity)
	}
	if c.Orchestrator.JobTimeoutMinutes <= 0 {
		return fmt.Errorf("orchestrator.job_timeout_minutes must be positive, got %d", c.Orchestrator.JobTimeoutMinutes)
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required when cache.backend is 'redis'")
	}
	return nil
}
