package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
providers:
  - name: vendor_wide
    detect_any_header: [time, left_knee_angle_rad]
    reshape:
      id_columns: [time]
      var_column: variable
      value_column: value
    feature:
      pattern: "(?P<joint>[a-z_]+)_(?P<metric>angle)_(?P<unit>rad|deg)"
    rename:
      time: timestamp
  - name: vendor_long
    detect_any_header: [ts, joint_name]
    rename:
      ts: timestamp
      joint_name: joint
      reading: value
    set:
      metric: angle
canonical:
  required: [timestamp, joint, metric, value, unit]
  defaults:
    unit: deg
`

func TestParseValidConfig(t *testing.T) {
	cfg, err := Parse([]byte(validConfig), "ingest.yaml")
	require.NoError(t, err)

	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "vendor_wide", cfg.Providers[0].Name)
	assert.Equal(t, "vendor_long", cfg.Providers[1].Name)
	assert.NotNil(t, cfg.Providers[0].Reshape)
	assert.Equal(t, []string{"time"}, cfg.Providers[0].Reshape.IDColumns)
	assert.Equal(t, []string{"timestamp", "joint", "metric", "value", "unit"}, cfg.Canonical.Required)
	assert.Equal(t, map[string]string{"unit": "deg"}, cfg.Canonical.DefaultCells())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Providers, 2)
}

func TestParseRejectsUnknownField(t *testing.T) {
	bad := `
providers:
  - name: p
    detect_any_header: [a]
    renmae:
      a: b
canonical:
  required: [value]
`
	_, err := Parse([]byte(bad), "ingest.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config schema")
}

func TestParseRejectsMissingDetection(t *testing.T) {
	bad := `
providers:
  - name: p
    detect_any_header: []
canonical:
  required: [value]
`
	_, err := Parse([]byte(bad), "ingest.yaml")
	assert.Error(t, err)
}

func TestParseRejectsMissingCanonical(t *testing.T) {
	bad := `
providers:
  - name: p
    detect_any_header: [a]
`
	_, err := Parse([]byte(bad), "ingest.yaml")
	assert.Error(t, err)
}

func TestParseRejectsDuplicateProvider(t *testing.T) {
	bad := `
providers:
  - name: p
    detect_any_header: [a]
  - name: p
    detect_any_header: [b]
canonical:
  required: [value]
`
	_, err := Parse([]byte(bad), "ingest.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared twice")
}

func TestParseRejectsForeignFormulaToken(t *testing.T) {
	bad := `
providers:
  - name: p
    detect_any_header: [a]
    derived:
      evil: "__import__('os').system('true')"
canonical:
  required: [value]
`
	_, err := Parse([]byte(bad), "ingest.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `derived column "evil"`)
}

func TestParseRejectsPatternWithoutGroups(t *testing.T) {
	bad := `
providers:
  - name: p
    detect_any_header: [a]
    reshape:
      id_columns: [a]
      var_column: variable
      value_column: value
    feature:
      pattern: "[a-z]+"
canonical:
  required: [value]
`
	_, err := Parse([]byte(bad), "ingest.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no named capture groups")
}

func TestParseCompilesDerivedInNameOrder(t *testing.T) {
	src := `
providers:
  - name: p
    detect_any_header: [a]
    derived:
      z_total: "a + 1"
      a_half: "a / 2"
canonical:
  required: [value]
`
	cfg, err := Parse([]byte(src), "ingest.yaml")
	require.NoError(t, err)
	p := cfg.Providers[0]
	require.Len(t, p.derived, 2)
	assert.Equal(t, "a_half", p.derived[0].name)
	assert.Equal(t, "z_total", p.derived[1].name)
}
