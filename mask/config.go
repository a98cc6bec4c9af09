package mask

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/syncode-go/dfamask/automaton/dfa"
)

// Config controls mask-store construction: lookahead depth, per-terminal
// determinization limits, and an optional resource budget.
type Config struct {
	// Alpha is the accept-sequence lookahead length (typically 1 or 2).
	Alpha int `yaml:"alpha"`

	// DFA carries the per-terminal determinization limits passed through to
	// automaton/dfa.CompileWithConfig for every compiled terminal.
	DFA dfa.Config `yaml:"-"`

	// MaskBudgetBits bounds the estimated total store size
	// (states * terminals^alpha * vocabulary) in bits. Zero means
	// unbounded; EstimateSize is still logged but never rejected.
	MaskBudgetBits uint64 `yaml:"maskBudgetBits"`

	// Strict enables strict mode for dmatch's case 2: reject a token whose
	// maximal match leaves a non-empty suffix when the accept sequence is
	// empty, instead of overapproximating. Defaults to false
	// (overapproximation).
	Strict bool `yaml:"strict"`
}

// DefaultConfig returns the default mask-store construction configuration:
// alpha=1, the automaton package's default per-terminal DFA limits, no
// budget cap, and overapproximating dmatch.
func DefaultConfig() Config {
	return Config{
		Alpha:          1,
		DFA:            dfa.DefaultConfig(),
		MaskBudgetBits: 0,
		Strict:         false,
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.Alpha <= 0 {
		return &Error{Kind: ErrBudgetExceeded, Message: "Alpha must be > 0"}
	}
	if err := c.DFA.Validate(); err != nil {
		return errors.Wrap(err, "invalid DFA config")
	}
	return nil
}

// WithAlpha returns a copy of c with Alpha set.
func (c Config) WithAlpha(alpha int) Config {
	c.Alpha = alpha
	return c
}

// WithMaskBudgetBits returns a copy of c with MaskBudgetBits set.
func (c Config) WithMaskBudgetBits(bits uint64) Config {
	c.MaskBudgetBits = bits
	return c
}

// WithStrict returns a copy of c with Strict set.
func (c Config) WithStrict(strict bool) Config {
	c.Strict = strict
	return c
}

// WithDFAConfig returns a copy of c with the per-terminal DFA config set.
func (c Config) WithDFAConfig(dfaConfig dfa.Config) Config {
	c.DFA = dfaConfig
	return c
}

// yamlConfig is the on-disk shape: only the fields a host would reasonably
// want to pin in a checked-in file. DFA limits stay construction-time only.
type yamlConfig struct {
	Alpha          int    `yaml:"alpha"`
	MaskBudgetBits uint64 `yaml:"maskBudgetBits"`
	Strict         bool   `yaml:"strict"`
}

// LoadConfig reads a YAML config from path and merges it over DefaultConfig.
// If path does not exist, it returns DefaultConfig() unchanged rather than
// failing — there is no CLI in this module to create a default file on disk,
// so a missing config is simply "use defaults," not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading mask config from %q", path)
	}

	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return Config{}, errors.Wrapf(err, "parsing mask config from %q", path)
	}

	if y.Alpha != 0 {
		cfg.Alpha = y.Alpha
	}
	cfg.MaskBudgetBits = y.MaskBudgetBits
	cfg.Strict = y.Strict

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "validating mask config from %q", path)
	}

	return cfg, nil
}
