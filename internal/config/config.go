// Package config loads the YAML configuration the CLI surface (spec §6)
// takes as its first positional argument: the set of runtime profiles to
// differentially test, and the generation/policy controls spec §4.C and
// §6 name without fixing a file format for.
//
// Grounded on open-policy-agent/opa's own direct `gopkg.in/yaml.v3`
// dependency and its internal/config package's "just unmarshal the
// document, validate after" style, rather than a schema-validating config
// library — nothing in the pack reaches for one for a config this small.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RuntimeProfile names one runtime under test and how to reach it.
type RuntimeProfile struct {
	// Name identifies the backend in logs and divergence records, e.g.
	// "wazero", "wasmtime", "wasmer". A profile whose Engine is "wazero"
	// is reported as "wazero" whatever its Name.
	Name string `yaml:"name"`
	// Engine selects the backend implementation. "wazero" runs in-process;
	// any other value is passed as cmd/wasit-runtime's -engine flag and
	// run as a subprocess.
	Engine string `yaml:"engine"`
	// Module is the path to the compiled wasit-executor guest binary
	// (GOOS=wasip1 GOARCH=wasm) this profile instantiates.
	Module string `yaml:"module"`
	// RuntimeBin is the path to the cmd/wasit-runtime binary. Required
	// when Engine != "wazero", ignored otherwise.
	RuntimeBin string `yaml:"runtime_bin,omitempty"`
}

// GenerationConfig controls internal/gen's value synthesis (spec §4.C).
type GenerationConfig struct {
	// MaxDepth bounds recursive structural generation (Array/Record/
	// Pointer nesting).
	MaxDepth int `yaml:"max_depth"`
	// GenerateFlags, when false, makes Bitflags generation always
	// produce the all-clear value instead of drawing randomly.
	GenerateFlags bool `yaml:"generate_flags"`
	// GenerateNumericals, when false, makes Builtin generation always
	// produce zero instead of drawing randomly.
	GenerateNumericals bool `yaml:"generate_numericals"`
	// Seed seeds the deterministic *rand.Rand threaded through
	// internal/gen and internal/synth (spec's testable property 5).
	Seed int64 `yaml:"seed"`
}

// PolicyConfig mirrors the CLI flags of spec §6 so a config file can set
// defaults the command line then overrides. TimeLimit is a duration
// string (e.g. "30s") rather than time.Duration directly, since yaml.v3
// has no built-in Duration codec; cmd/wasit parses it with
// time.ParseDuration the same way it parses the --time-limit flag.
type PolicyConfig struct {
	Strategy    string `yaml:"strategy"` // "stateful" | "stateless"
	TimeLimit   string `yaml:"time_limit,omitempty"`
	Concurrency int    `yaml:"concurrency,omitempty"`
	Silent      bool   `yaml:"silent,omitempty"`
}

// ParsedTimeLimit parses TimeLimit, returning zero if unset.
func (p PolicyConfig) ParsedTimeLimit() (time.Duration, error) {
	if p.TimeLimit == "" {
		return 0, nil
	}
	return time.ParseDuration(p.TimeLimit)
}

// Config is the top-level document unmarshaled from config.yaml.
type Config struct {
	Runtimes   []RuntimeProfile `yaml:"runtimes"`
	Generation GenerationConfig `yaml:"generation"`
	Policy     PolicyConfig     `yaml:"policy"`
}

// Load reads and parses path, then validates the result.
func Load(path string) (*Config, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(bs, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &c, nil
}

// Validate checks the invariants the orchestrator relies on: at least two
// runtimes (differential testing needs something to disagree against),
// every runtime named and pointed at a module, and every non-wazero
// runtime also pointed at a runtime_bin.
func (c *Config) Validate() error {
	if len(c.Runtimes) < 2 {
		return fmt.Errorf("at least two runtimes are required, got %d", len(c.Runtimes))
	}
	seen := make(map[string]bool, len(c.Runtimes))
	for i, r := range c.Runtimes {
		if r.Name == "" {
			return fmt.Errorf("runtimes[%d]: name is required", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("runtimes[%d]: duplicate name %q", i, r.Name)
		}
		seen[r.Name] = true
		if r.Module == "" {
			return fmt.Errorf("runtimes[%d] (%s): module is required", i, r.Name)
		}
		if r.Engine != "wazero" && r.RuntimeBin == "" {
			return fmt.Errorf("runtimes[%d] (%s): runtime_bin is required for engine %q", i, r.Name, r.Engine)
		}
	}
	if c.Generation.MaxDepth <= 0 {
		return fmt.Errorf("generation.max_depth must be positive, got %d", c.Generation.MaxDepth)
	}
	switch c.Policy.Strategy {
	case "", "stateful", "stateless":
	default:
		return fmt.Errorf("policy.strategy must be %q or %q, got %q", "stateful", "stateless", c.Policy.Strategy)
	}
	if _, err := c.Policy.ParsedTimeLimit(); err != nil {
		return fmt.Errorf("policy.time_limit: %w", err)
	}
	return nil
}
