package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sondalab/sonda/internal/sat"
)

// Scenario defines a probing conformance scenario: a formula, the
// probing configuration and the expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Vars is the number of variables in the formula.
	Vars int `yaml:"vars"`

	// Clauses lists the formula in DIMACS literal notation. May be
	// empty; budget scenarios probe unconstrained variables.
	Clauses [][]int `yaml:"clauses"`

	// Options overlays the default probing configuration. Absent
	// fields keep their defaults.
	Options *OptionsClause `yaml:"options,omitempty"`

	// Passes is the number of forced probing passes to run. Zero means
	// one.
	Passes int `yaml:"passes,omitempty"`

	// Expect is checked against the run's outcome. Absent fields are
	// not checked.
	Expect ExpectClause `yaml:"expect"`
}

// OptionsClause is the YAML form of the probing configuration. Pointer
// fields distinguish absent from zero.
type OptionsClause struct {
	Seed         *int64  `yaml:"seed,omitempty"`
	Limit        *int    `yaml:"limit,omitempty"`
	Cache        *bool   `yaml:"cache,omitempty"`
	CacheLimit   *uint64 `yaml:"cache_limit,omitempty"`
	Binary       *bool   `yaml:"binary,omitempty"`
	Equivalences *bool   `yaml:"equivalences,omitempty"`
}

// apply overlays the clause's set fields onto opts. A nil clause
// leaves the defaults untouched.
func (c *OptionsClause) apply(opts *sat.Options) {
	if c == nil {
		return
	}
	if c.Seed != nil {
		opts.Seed = *c.Seed
	}
	if c.Limit != nil {
		opts.Probing.Limit = *c.Limit
	}
	if c.Cache != nil {
		opts.Probing.Cache = *c.Cache
	}
	if c.CacheLimit != nil {
		opts.Probing.CacheLimit = *c.CacheLimit
	}
	if c.Binary != nil {
		opts.Probing.Binary = *c.Binary
	}
	if c.Equivalences != nil {
		opts.Probing.Equivalences = *c.Equivalences
	}
}

// ExpectClause specifies the expected outcome of a scenario. The pass
// fields refer to the final executed pass.
type ExpectClause struct {
	// Consistent is the expected consistency after all passes.
	Consistent *bool `yaml:"consistent,omitempty"`

	// Completed is the expected completion flag of the final pass.
	Completed *bool `yaml:"completed,omitempty"`

	// StoppedAt is the expected resume cursor after the final pass.
	StoppedAt *int `yaml:"stopped_at,omitempty"`

	// Credit is the expected budget credit after the final pass.
	Credit *int `yaml:"credit,omitempty"`

	// Assigned is the expected count of permanently asserted literals.
	Assigned *int `yaml:"assigned,omitempty"`

	// Trail is the expected root trail in assertion order.
	Trail []int `yaml:"trail,omitempty"`

	// Proof is the expected derivation log, line for line.
	Proof []string `yaml:"proof,omitempty"`

	// Equivalences lists the expected literal pairs, each [a, b].
	Equivalences [][2]int `yaml:"equivalences,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected so typos surface instead of silently passing.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and the
// formula is well formed.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Vars < 1 {
		return fmt.Errorf("vars must be at least 1")
	}
	if s.Passes < 0 {
		return fmt.Errorf("passes must be non-negative")
	}
	for i, cl := range s.Clauses {
		if len(cl) == 0 {
			return fmt.Errorf("clauses[%d]: empty clause", i)
		}
		for _, n := range cl {
			if n == 0 {
				return fmt.Errorf("clauses[%d]: literal 0 is reserved", i)
			}
			if n > s.Vars || -n > s.Vars {
				return fmt.Errorf("clauses[%d]: literal %d out of range for %d variables", i, n, s.Vars)
			}
		}
	}
	if s.Options != nil && s.Options.Limit != nil && *s.Options.Limit < 0 {
		return fmt.Errorf("options.limit must be non-negative")
	}
	return nil
}
