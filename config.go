package agglo

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// fileConfig is the TOML shape of a Config:
//
//	linkage  = "average"   # see ParseLinkage
//	beta     = -0.25       # flexible-beta only
//	strategy = "nnchain"   # see ParseStrategy
//	metric   = "minkowski" # see ParseMetric
//	p        = 3           # minkowski only
//	squared_input = false
//	workers  = 4
type fileConfig struct {
	Linkage      string   `toml:"linkage"`
	Beta         *float64 `toml:"beta"`
	Strategy     string   `toml:"strategy"`
	Metric       string   `toml:"metric"`
	P            float64  `toml:"p"`
	SquaredInput bool     `toml:"squared_input"`
	Workers      int      `toml:"workers"`
}

// DecodeConfig reads a TOML configuration. Keys that are absent keep their
// DefaultConfig values; unknown keys are an error.
func DecodeConfig(r io.Reader) (Config, error) {
	var fc fileConfig
	md, err := toml.NewDecoder(r).Decode(&fc)
	if err != nil {
		return Config{}, fmt.Errorf("agglo: decoding config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("agglo: unknown config keys %s: %w", strings.Join(keys, ", "), ErrInvalidConfig)
	}

	cfg := DefaultConfig()
	if fc.Linkage != "" {
		if cfg.Linkage, err = ParseLinkage(fc.Linkage); err != nil {
			return Config{}, err
		}
	}
	if fc.Beta != nil {
		if _, ok := cfg.Linkage.(FlexibleBetaLinkage); !ok {
			return Config{}, fmt.Errorf("agglo: beta is only valid for flexible-beta linkage, got %s: %w", cfg.Linkage, ErrInvalidConfig)
		}
		cfg.Linkage = FlexibleBetaLinkage{Beta: *fc.Beta}
	}
	if cfg.Strategy, err = ParseStrategy(fc.Strategy); err != nil {
		return Config{}, err
	}
	if fc.Metric != "" {
		if cfg.Metric, err = ParseMetric(fc.Metric, fc.P); err != nil {
			return Config{}, err
		}
	}
	cfg.SquaredInput = fc.SquaredInput
	cfg.Workers = fc.Workers

	if err := validateConfig(&cfg); err != nil {
		return Config{}, err
	}
	if _, err := selectStrategy(cfg.Strategy, cfg.Linkage); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a TOML configuration file. See DecodeConfig.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("agglo: %w", err)
	}
	defer f.Close()
	return DecodeConfig(f)
}
