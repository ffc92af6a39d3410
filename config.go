package sphere

import (
	"os"

	"github.com/rs/zerolog"
)

const defaultConeSteps = 16

// defaultTolerance is the angular tolerance in radians used by boundary
// and vertex comparisons.
var defaultTolerance = 1e-10

type Config struct {
	Tolerance float64
	ConeSteps int
	Log       bool
}

type Option func(cfg *Config)

func WithTolerance(tol float64) Option {
	return func(cfg *Config) {
		cfg.Tolerance = tol
	}
}

func WithConeSteps(steps int) Option {
	return func(cfg *Config) {
		cfg.ConeSteps = steps
	}
}

// WithLog enables debug tracing of the boolean-operation phases.
func WithLog() Option {
	return func(cfg *Config) {
		cfg.Log = true
	}
}

func newConfig(opts []Option) *Config {
	cfg := &Config{
		Tolerance: defaultTolerance,
		ConeSteps: defaultConeSteps,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.ConeSteps < 3 {
		cfg.ConeSteps = defaultConeSteps
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = defaultTolerance
	}

	return cfg
}

func (cfg *Config) logger() zerolog.Logger {
	if !cfg.Log {
		return zerolog.Nop()
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Timestamp().
		Logger().
		Level(zerolog.DebugLevel)
}
