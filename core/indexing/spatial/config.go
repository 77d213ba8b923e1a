package spatial

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// defaultMaxNodeEntries is used when MaxNodeEntries is clamped
// individually (an invalid or missing value inside an otherwise non-empty
// Config); a clamped MinNodeEntries becomes MaxNodeEntries/2 instead.
// minPossibleNodeEntries is the smallest legal MaxNodeEntries.
const (
	defaultMaxNodeEntries = 10
	minPossibleNodeEntries = 2
)

// noConfigMaxNodeEntries and noConfigMinNodeEntries are the convenience
// defaults applied when the caller supplies the zero-value Config
// entirely -- i.e. did not configure the tree at all.
const (
	noConfigMaxNodeEntries = 50
	noConfigMinNodeEntries = 20
)

// Config holds the tunable capacities of an RTree's nodes. Zero values
// mean "unset" and are resolved by NewRTree.
type Config struct {
	MaxNodeEntries int `yaml:"max_node_entries"`
	MinNodeEntries int `yaml:"min_node_entries"`
}

// LoadConfig reads a yaml-encoded Config, e.g. from an os.File or an
// embedded []byte wrapped in bytes.NewReader.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, err
	}
	return cfg, nil
}

// resolve fills in defaults and clamps out-of-range values, logging a
// single warning if any field was clamped. Invalid configuration is never
// fatal.
func (cfg Config) resolve(log *zap.Logger) Config {
	if cfg.MaxNodeEntries == 0 && cfg.MinNodeEntries == 0 {
		return Config{MaxNodeEntries: noConfigMaxNodeEntries, MinNodeEntries: noConfigMinNodeEntries}
	}

	resolved := cfg
	var problems []error
	if err := validateMaxNodeEntries(resolved.MaxNodeEntries); errors.Is(err, ErrInvalidConfig) {
		problems = append(problems, err)
		resolved.MaxNodeEntries = defaultMaxNodeEntries
	}

	maxMin := resolved.MaxNodeEntries / 2
	if err := validateMinNodeEntries(resolved.MinNodeEntries, maxMin); errors.Is(err, ErrInvalidConfig) {
		problems = append(problems, err)
		resolved.MinNodeEntries = maxMin
	}

	if len(problems) > 0 {
		log.Warn("rtree: node capacities out of range, using defaults",
			zap.Int("maxNodeEntries", resolved.MaxNodeEntries), zap.Int("minNodeEntries", resolved.MinNodeEntries),
			zap.Errors("problems", problems))
	}
	return resolved
}

// validateMaxNodeEntries reports ErrInvalidConfig if v cannot serve as a
// node's entry capacity.
func validateMaxNodeEntries(v int) error {
	if v < minPossibleNodeEntries {
		return fmt.Errorf("%w: max node entries %d below minimum %d", ErrInvalidConfig, v, minPossibleNodeEntries)
	}
	return nil
}

// validateMinNodeEntries reports ErrInvalidConfig if v falls outside
// [1, max], where max is half of the (already-resolved) MaxNodeEntries.
func validateMinNodeEntries(v, max int) error {
	if v < 1 || v > max {
		return fmt.Errorf("%w: min node entries %d outside [1, %d]", ErrInvalidConfig, v, max)
	}
	return nil
}
