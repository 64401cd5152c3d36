package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motionforge/motionstore/internal/frame"
)

func angleRow(value, unit string) frame.Row {
	return frame.Row{"metric": "angle", "value": value, "unit": unit}
}

func TestNormalizeRadToDeg(t *testing.T) {
	rows := []frame.Row{angleRow("1.5707963268", "rad")}

	changed, err := Normalize(rows)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, "deg", rows[0]["unit"])

	got, err := frame.ParseNumber(rows[0]["value"])
	require.NoError(t, err)
	assert.InEpsilon(t, 90.0, got, 1e-9)
}

func TestNormalizeUnitLaw(t *testing.T) {
	inputs := []string{"0.1", "1", "3.141592653589793", "-0.5", "100"}
	rows := make([]frame.Row, len(inputs))
	for i, v := range inputs {
		rows[i] = angleRow(v, "rad")
	}

	changed, err := Normalize(rows)
	require.NoError(t, err)
	require.Equal(t, len(inputs), changed)

	for i, v := range inputs {
		orig, _ := frame.ParseNumber(v)
		got, err := frame.ParseNumber(rows[i]["value"])
		require.NoError(t, err)
		assert.InEpsilon(t, orig*180/math.Pi, got, 1e-9)
		assert.Equal(t, "deg", rows[i]["unit"])
	}
}

func TestNormalizeCaseInsensitivePredicate(t *testing.T) {
	rows := []frame.Row{
		{"metric": "Angle", "value": "1", "unit": "RAD"},
	}
	changed, err := Normalize(rows)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, "deg", rows[0]["unit"])
}

func TestNormalizeLeavesOtherRowsAlone(t *testing.T) {
	rows := []frame.Row{
		angleRow("45", "deg"),
		{"metric": "velocity", "value": "2", "unit": "rad"},
		{"metric": "angle", "value": "1", "unit": "rad_s"},
	}
	changed, err := Normalize(rows)
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
	assert.Equal(t, "45", rows[0]["value"])
	assert.Equal(t, "2", rows[1]["value"])
	assert.Equal(t, "rad", rows[1]["unit"])
}

func TestNormalizeIdempotent(t *testing.T) {
	rows := []frame.Row{angleRow("1.25", "rad"), angleRow("0.5", "rad")}

	changed, err := Normalize(rows)
	require.NoError(t, err)
	require.Equal(t, 2, changed)
	afterFirst := []string{rows[0]["value"], rows[1]["value"]}

	changed, err = Normalize(rows)
	require.NoError(t, err)
	assert.Equal(t, 0, changed, "second pass converts nothing")
	assert.Equal(t, afterFirst, []string{rows[0]["value"], rows[1]["value"]})
}

func TestNormalizeNonNumericAngle(t *testing.T) {
	rows := []frame.Row{angleRow("fast", "rad")}
	_, err := Normalize(rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a number")
}
