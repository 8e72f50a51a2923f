package sieve

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sieve4/r4sieve/internal/artifact"
	"github.com/sieve4/r4sieve/internal/coreerr"
)

// CtHtCacheMode selects how a CoreContext's CtHt cache is populated:
// eagerly in one pass before the sieve run starts, or lazily on first
// use of each r4 (spec §4.D names both as valid strategies).
type CtHtCacheMode int

const (
	CacheModeLazy CtHtCacheMode = iota
	CacheModeEager
)

// String returns the cache mode's manifest spelling.
func (m CtHtCacheMode) String() string {
	switch m {
	case CacheModeLazy:
		return "lazy"
	case CacheModeEager:
		return "eager"
	default:
		return "invalid"
	}
}

// UnmarshalYAML reads a YAML scalar into the receiver mode, mirroring
// ring.Type's string-enum UnmarshalJSON.
func (m *CtHtCacheMode) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "lazy":
		*m = CacheModeLazy
	case "eager":
		*m = CacheModeEager
	default:
		return fmt.Errorf("invalid cache_mode: %s", s)
	}
	return nil
}

// MarshalYAML marshals the receiver mode into its string spelling.
func (m CtHtCacheMode) MarshalYAML() (any, error) {
	return m.String(), nil
}

// ArtifactConfig names the on-disk artifact paths of spec §6. It
// carries both JSON and YAML struct tags; within this module it is
// read only as the artifacts section of the YAML run manifest below.
type ArtifactConfig struct {
	H             string `json:"h_bin" yaml:"h_bin"`
	Gt            string `json:"gt_bin" yaml:"gt_bin"`
	ZS            string `json:"zs_bin" yaml:"zs_bin"`
	ClockPatterns string `json:"clock_patterns_bin" yaml:"clock_patterns_bin"`
	Ciphertext    string `json:"ciphertext_bin" yaml:"ciphertext_bin"`
	S             string `json:"s_bin" yaml:"s_bin"`
}

// Paths converts the config's string fields into artifact.Paths.
func (c ArtifactConfig) Paths() artifact.Paths {
	return artifact.Paths{
		H:             c.H,
		Gt:            c.Gt,
		ZS:            c.ZS,
		ClockPatterns: c.ClockPatterns,
		Ciphertext:    c.Ciphertext,
		S:             c.S,
	}
}

// RunManifest is the sieve-run manifest consumed by cmd/sieve4: which
// artifacts to load, how many workers to use, and whether to warm the
// CtHt cache eagerly before sieving.
type RunManifest struct {
	Artifacts ArtifactConfig `yaml:"artifacts"`
	Workers   int            `yaml:"workers"`
	CacheMode CtHtCacheMode  `yaml:"cache_mode"`
	UseMmap   bool           `yaml:"use_mmap"`
}

// LoadRunManifest reads and parses a YAML run manifest from path.
func LoadRunManifest(path string) (*RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, coreerr.IO("LoadRunManifest", err)
	}
	var m RunManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, coreerr.Invalid("LoadRunManifest", "parse %s: %v", path, err)
	}
	return &m, nil
}
