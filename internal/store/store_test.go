package store

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motionforge/motionstore/internal/frame"
)

var canonicalColumns = []string{"timestamp", "joint", "metric", "value", "unit", "source_hash", "source_file"}

func measurement(ts, joint, value, hash string) frame.Row {
	return frame.Row{
		"timestamp":   ts,
		"joint":       joint,
		"metric":      "angle",
		"value":       value,
		"unit":        "deg",
		"source_hash": hash,
		"source_file": "f.csv",
	}
}

func TestMergeIntoEmptyStore(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	total, err := s.Merge([]frame.Row{
		measurement("0.0", "hips", "10", "h1"),
		measurement("0.1", "hips", "11", "h1"),
	}, canonicalColumns)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	rows, columns, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, canonicalColumns, columns)
	require.Len(t, rows, 2)
	assert.Equal(t, "10", rows[0]["value"])
}

func TestMergeExactDuplicateLeavesCountUnchanged(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = s.Merge([]frame.Row{measurement("0.0", "hips", "10", "h1")}, canonicalColumns)
	require.NoError(t, err)

	total, err := s.Merge([]frame.Row{measurement("0.0", "hips", "10", "h1")}, canonicalColumns)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestMergeDifferentSourceHashKept(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = s.Merge([]frame.Row{measurement("0.0", "hips", "10", "h1")}, canonicalColumns)
	require.NoError(t, err)

	// Same observation from a different source file is a distinct record.
	total, err := s.Merge([]frame.Row{measurement("0.0", "hips", "10", "h2")}, canonicalColumns)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestMergeLastOccurrenceWins(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	first := measurement("0.0", "hips", "10", "h1")
	first["source_file"] = "old.csv"
	_, err = s.Merge([]frame.Row{first}, canonicalColumns)
	require.NoError(t, err)

	second := measurement("0.0", "hips", "10", "h1")
	second["source_file"] = "renamed.csv"
	total, err := s.Merge([]frame.Row{second}, canonicalColumns)
	require.NoError(t, err)
	require.Equal(t, 1, total)

	rows, _, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, "renamed.csv", rows[0]["source_file"],
		"source_file is outside the dedup key; the newer row replaces the older")
}

func TestMergeUnionsNewColumns(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = s.Merge([]frame.Row{measurement("0.0", "hips", "10", "h1")}, canonicalColumns)
	require.NoError(t, err)

	withSession := measurement("0.1", "hips", "11", "h2")
	withSession["session_id"] = "s1"
	_, err = s.Merge([]frame.Row{withSession}, append(canonicalColumns, "session_id"))
	require.NoError(t, err)

	rows, columns, err := s.Read()
	require.NoError(t, err)
	assert.Contains(t, columns, "session_id")
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[0]["session_id"], "old rows read the new column as empty")
	assert.Equal(t, "s1", rows[1]["session_id"])
}

func TestReadMissingStoreIsEmpty(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	rows, columns, err := s.Read()
	require.NoError(t, err)
	assert.Nil(t, rows)
	assert.Nil(t, columns)
	assert.False(t, s.Exists())
}

func TestWriteAllProducesMirror(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	err = s.WriteAll([]frame.Row{measurement("0.0", "hips", "10", "h1")}, canonicalColumns)
	require.NoError(t, err)

	info, err := os.Stat(s.ParquetPath())
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRefreshMirrorFromExistingCSV(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	err = s.WriteAll([]frame.Row{measurement("0.0", "hips", "10", "h1")}, canonicalColumns)
	require.NoError(t, err)
	require.NoError(t, os.Remove(s.ParquetPath()))

	require.NoError(t, s.RefreshMirror())
	_, err = os.Stat(s.ParquetPath())
	assert.NoError(t, err)
}

func TestDedupeKeepsLastAtItsPosition(t *testing.T) {
	rows := []frame.Row{
		measurement("0.0", "hips", "1", "h1"),
		measurement("0.1", "hips", "2", "h1"),
		measurement("0.0", "hips", "1", "h1"), // duplicate of row 0
	}
	out := dedupe(rows, canonicalColumns)
	require.Len(t, out, 2)
	assert.Equal(t, "2", out[0]["value"], "surviving duplicate sits at its last position")
	assert.Equal(t, "1", out[1]["value"])
}

func TestSecondaryWriteErrorClassification(t *testing.T) {
	err := &SecondaryWriteError{Err: os.ErrPermission}
	assert.True(t, IsSecondaryWriteFailure(err))
	assert.False(t, IsSecondaryWriteFailure(os.ErrPermission))
}
