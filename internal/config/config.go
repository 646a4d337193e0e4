// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Engine backend names accepted by the Engine field.
const (
	EngineONNX      = "onnx"
	EngineSimulated = "simulated"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Model names the quality estimation checkpoint to serve.
	Model string `koanf:"model"`

	// Preload forces model construction at startup instead of on
	// first request.
	Preload bool `koanf:"preload"`

	// Host configures the HTTP bind host.
	Host string `koanf:"host"`

	// Port configures the HTTP listen port. 0 picks a free port; the
	// chosen port is announced on stdout.
	Port int `koanf:"port"`

	// Engine selects the scoring backend: onnx or simulated.
	Engine string `koanf:"engine"`

	// ModelDir is where resolved model artifacts are cached on disk.
	ModelDir string `koanf:"model_dir"`

	// BatchSize is the default chunk size for batch scoring.
	BatchSize int `koanf:"batch_size"`

	// MaxSessions bounds concurrent inference sessions.
	MaxSessions int `koanf:"max_sessions"`

	// CacheSize bounds the evaluation result cache. Zero disables it.
	CacheSize int `koanf:"cache_size"`

	// LatencyMinMS and LatencyMaxMS bound the simulated engine's
	// artificial inference latency.
	LatencyMinMS int `koanf:"latency_min_ms"`
	LatencyMaxMS int `koanf:"latency_max_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	c := &Config{
		LogLevel:     "info",
		Model:        "Unbabel/XCOMET-XL",
		Preload:      false,
		Host:         "127.0.0.1",
		Port:         0,
		Engine:       EngineSimulated,
		ModelDir:     defaultModelDir(),
		BatchSize:    8,
		MaxSessions:  runtime.NumCPU(),
		CacheSize:    1024,
		LatencyMinMS: 80,
		LatencyMaxMS: 150,
	}
	return c
}

// defaultModelDir places model artifacts under the user cache directory,
// falling back to the working directory when it cannot be determined.
func defaultModelDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "models"
	}
	return filepath.Join(dir, "xcomet", "models")
}
