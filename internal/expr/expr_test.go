package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(vars map[string]float64) Lookup {
	return func(col string) (float64, bool) {
		v, ok := vars[col]
		return v, ok
	}
}

func TestParseAndEval(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		vars     map[string]float64
		expected float64
	}{
		{"literal", "42", nil, 42},
		{"decimal literal", "0.5", nil, 0.5},
		{"column reference", "force", map[string]float64{"force": 9.8}, 9.8},
		{"addition", "a + b", map[string]float64{"a": 1, "b": 2}, 3},
		{"precedence", "1 + 2 * 3", nil, 7},
		{"parentheses", "(1 + 2) * 3", nil, 9},
		{"division", "torque / arm", map[string]float64{"torque": 10, "arm": 4}, 2.5},
		{"unary minus", "-x", map[string]float64{"x": 3}, -3},
		{"nested unary", "--x", map[string]float64{"x": 3}, 3},
		{"rad to deg", "angle * 180 / 3.141592653589793", map[string]float64{"angle": 3.141592653589793}, 180},
		{"underscored names", "left_knee_x * 2", map[string]float64{"left_knee_x": 1.5}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(tt.src)
			require.NoError(t, err)
			got, err := e.Eval(lookupFrom(tt.vars))
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}
}

func TestParseRejectsForeignTokens(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"function call", "sin(x)"},
		{"comparison", "a == b"},
		{"less than", "a < b"},
		{"attribute access", "row.value"},
		{"indexing", "row[0]"},
		{"string literal", `"deg"`},
		{"power operator", "a ** 2"},
		{"modulo", "a % 2"},
		{"trailing operator", "a +"},
		{"unbalanced paren", "(a + b"},
		{"adjacent operands", "a b"},
		{"semicolon", "a; b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			assert.Error(t, err)
		})
	}
}

func TestColumnsSortedAndDeduplicated(t *testing.T) {
	e, err := Parse("z + a * z - m")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "m", "z"}, e.Columns())
}

func TestEvalAbsentColumn(t *testing.T) {
	e, err := Parse("a + missing")
	require.NoError(t, err)
	_, err = e.Eval(lookupFrom(map[string]float64{"a": 1}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestEvalNonFiniteResult(t *testing.T) {
	e, err := Parse("1 / zero")
	require.NoError(t, err)
	_, err = e.Eval(lookupFrom(map[string]float64{"zero": 0}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-finite")
}

func TestStringReturnsSource(t *testing.T) {
	e, err := Parse("a + 1")
	require.NoError(t, err)
	assert.Equal(t, "a + 1", e.String())
}
