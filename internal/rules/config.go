package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/motionforge/motionstore/internal/expr"
	"github.com/motionforge/motionstore/internal/frame"
)

//go:embed schema.cue
var schemaCUE string

// Config is the full ingestion configuration: the ordered provider rule
// table plus the canonical schema. Construct it once at startup and pass
// it into every component; nothing in this package holds global state.
type Config struct {
	Providers []ProviderRule  `yaml:"providers"`
	Canonical CanonicalSchema `yaml:"canonical"`
}

// ProviderRule describes how to recognize one capture provider's frames
// and reshape them into canonical form.
type ProviderRule struct {
	// Name identifies the provider in reports and logs.
	Name string `yaml:"name"`

	// DetectAnyHeader lists header names whose presence (any of them)
	// identifies this provider.
	DetectAnyHeader []string `yaml:"detect_any_header"`

	// Reshape, when present, melts the frame from wide to long form
	// before any other step.
	Reshape *ReshapeSpec `yaml:"reshape,omitempty"`

	// Feature, when present, extracts named capture groups from the
	// reshaped variable column into new columns.
	Feature *FeatureSpec `yaml:"feature,omitempty"`

	// Rename maps source column names to canonical ones. Unmapped
	// columns pass through unchanged.
	Rename map[string]string `yaml:"rename,omitempty"`

	// Set overwrites or creates columns with constant values.
	Set map[string]any `yaml:"set,omitempty"`

	// Derived maps new column names to arithmetic formulas over existing
	// columns. Formulas are compiled at load time.
	Derived map[string]string `yaml:"derived,omitempty"`

	setCells  map[string]string
	derived   []derivedColumn
	featureRe *regexp.Regexp
}

// ReshapeSpec configures the wide→long melt.
type ReshapeSpec struct {
	IDColumns   []string `yaml:"id_columns"`
	VarColumn   string   `yaml:"var_column"`
	ValueColumn string   `yaml:"value_column"`
}

// FeatureSpec configures capture-group extraction on the variable column.
type FeatureSpec struct {
	// Pattern is a Go regular expression; each (?P<name>...) group
	// becomes a column.
	Pattern string `yaml:"pattern"`

	// Set assigns constants alongside the extracted groups.
	Set map[string]any `yaml:"set,omitempty"`

	setCells map[string]string
}

// CanonicalSchema fixes the shape every stored record must satisfy.
type CanonicalSchema struct {
	// Required lists columns that must exist after normalization, in the
	// order failures are reported.
	Required []string `yaml:"required"`

	// Defaults fills absent columns with constants before the required
	// check runs.
	Defaults map[string]any `yaml:"defaults,omitempty"`

	defaultCells map[string]string
}

type derivedColumn struct {
	name    string
	formula *expr.Expr
}

// Load reads, validates, and compiles a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data, path)
}

// Parse validates raw YAML against the embedded CUE schema, decodes it,
// and compiles patterns and formulas. Any formula token outside the
// arithmetic grammar is rejected here, before ingestion starts.
func Parse(data []byte, filename string) (*Config, error) {
	if err := validateAgainstSchema(data, filename); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.compile(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validateAgainstSchema unifies the YAML document with #Config from
// schema.cue and reports structural violations (unknown fields, wrong
// types, missing required lists) with file positions.
func validateAgainstSchema(data []byte, filename string) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("internal schema error: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("internal schema error: %w", err)
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	val := ctx.BuildFile(file)
	if err := val.Err(); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	if err := def.Unify(val).Validate(cue.Final(), cue.Concrete(true)); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}
	return nil
}

func (c *Config) compile() error {
	names := make(map[string]bool, len(c.Providers))
	for i := range c.Providers {
		p := &c.Providers[i]
		if names[p.Name] {
			return fmt.Errorf("provider %q declared twice", p.Name)
		}
		names[p.Name] = true
		if err := p.compile(); err != nil {
			return fmt.Errorf("provider %q: %w", p.Name, err)
		}
	}
	c.Canonical.defaultCells = cellMap(c.Canonical.Defaults)
	return nil
}

func (p *ProviderRule) compile() error {
	p.setCells = cellMap(p.Set)

	if p.Feature != nil {
		re, err := regexp.Compile(p.Feature.Pattern)
		if err != nil {
			return fmt.Errorf("feature pattern: %w", err)
		}
		if countNamedGroups(re) == 0 {
			return fmt.Errorf("feature pattern %q has no named capture groups", p.Feature.Pattern)
		}
		p.featureRe = re
		p.Feature.setCells = cellMap(p.Feature.Set)
	}

	// Derived columns apply in name order so evaluation is deterministic
	// even when one derived column reads another.
	names := make([]string, 0, len(p.Derived))
	for name := range p.Derived {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		compiled, err := expr.Parse(p.Derived[name])
		if err != nil {
			return fmt.Errorf("derived column %q: %w", name, err)
		}
		p.derived = append(p.derived, derivedColumn{name: name, formula: compiled})
	}
	return nil
}

func countNamedGroups(re *regexp.Regexp) int {
	n := 0
	for _, name := range re.SubexpNames() {
		if name != "" {
			n++
		}
	}
	return n
}

func cellMap(in map[string]any) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = frame.CellString(v)
	}
	return out
}

// DefaultCells returns the canonical defaults as cell values.
func (s *CanonicalSchema) DefaultCells() map[string]string {
	return s.defaultCells
}
