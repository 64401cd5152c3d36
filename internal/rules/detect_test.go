package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detectConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Parse([]byte(`
providers:
  - name: first
    detect_any_header: [shared, only_first]
  - name: second
    detect_any_header: [shared, only_second]
canonical:
  required: [value]
`), "ingest.yaml")
	require.NoError(t, err)
	return cfg
}

func TestDetectByDistinctHeader(t *testing.T) {
	cfg := detectConfig(t)

	rule, ok := cfg.Detect([]string{"x", "only_second", "y"})
	require.True(t, ok)
	assert.Equal(t, "second", rule.Name)
}

func TestDetectAmbiguousHeadersResolveToFirstDeclared(t *testing.T) {
	cfg := detectConfig(t)

	// "shared" matches both providers; declaration order breaks the tie,
	// every time.
	for i := 0; i < 50; i++ {
		rule, ok := cfg.Detect([]string{"shared"})
		require.True(t, ok)
		require.Equal(t, "first", rule.Name)
	}
}

func TestDetectNoMatch(t *testing.T) {
	cfg := detectConfig(t)

	_, ok := cfg.Detect([]string{"unrelated", "headers"})
	assert.False(t, ok)
}

func TestDetectIsCaseSensitive(t *testing.T) {
	cfg := detectConfig(t)

	_, ok := cfg.Detect([]string{"Only_First"})
	assert.False(t, ok)
}
