package reader

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	data := []byte("time, hip_angle_rad \n0.0,1.5\n0.1,1.6\n")
	frames, err := Read("walk.csv", data)
	require.NoError(t, err)
	require.Len(t, frames, 1)

	f := frames[0]
	assert.Equal(t, "walk", f.Name)
	assert.Equal(t, []string{"time", "hip_angle_rad"}, f.Columns, "headers are trimmed")
	require.Len(t, f.Rows, 2)
	assert.Equal(t, "1.5", f.Rows[0]["hip_angle_rad"])
}

func TestReadTSV(t *testing.T) {
	data := []byte("time\tjoint\tvalue\n0.0\thips\t1.5\n")
	frames, err := Read("export.tsv", data)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, []string{"time", "joint", "value"}, frames[0].Columns)
	assert.Equal(t, "hips", frames[0].Rows[0]["joint"])
}

func TestReadCSVShortRowPadsEmpty(t *testing.T) {
	data := []byte("a,b,c\n1,2\n")
	frames, err := Read("short.csv", data)
	require.NoError(t, err)
	require.Len(t, frames[0].Rows, 1)
	assert.Equal(t, "", frames[0].Rows[0]["c"])
}

func TestReadCSVEmptyFile(t *testing.T) {
	_, err := Read("empty.csv", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty document")
}

func TestReadWorkbook(t *testing.T) {
	wb := excelize.NewFile()
	require.NoError(t, wb.SetSheetName("Sheet1", "session_a"))
	require.NoError(t, wb.SetSheetRow("session_a", "A1", &[]any{"time", "value"}))
	require.NoError(t, wb.SetSheetRow("session_a", "A2", &[]any{"0.0", "1.5"}))
	_, err := wb.NewSheet("session_b")
	require.NoError(t, err)
	require.NoError(t, wb.SetSheetRow("session_b", "A1", &[]any{"time", "value"}))
	require.NoError(t, wb.SetSheetRow("session_b", "A2", &[]any{"0.0", "2.5"}))

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))

	frames, err := Read("sessions.xlsx", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, "session_a", frames[0].Name)
	assert.Equal(t, "session_b", frames[1].Name)
	assert.Equal(t, "1.5", frames[0].Rows[0]["value"])
	assert.Equal(t, "2.5", frames[1].Rows[0]["value"])
}

func TestReadWorkbookSkipsEmptySheets(t *testing.T) {
	wb := excelize.NewFile()
	require.NoError(t, wb.SetSheetRow("Sheet1", "A1", &[]any{"time", "value"}))
	require.NoError(t, wb.SetSheetRow("Sheet1", "A2", &[]any{"0.0", "1.5"}))
	_, err := wb.NewSheet("blank")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))

	frames, err := Read("one.xlsx", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, "Sheet1", frames[0].Name)
}

func TestReadJSONList(t *testing.T) {
	data := []byte(`[{"time":0.1,"joint":"hips","value":1.5},{"time":0.2,"joint":"hips","value":1.6}]`)
	frames, err := Read("rec.json", data)
	require.NoError(t, err)
	require.Len(t, frames, 1)

	f := frames[0]
	require.Len(t, f.Rows, 2)
	assert.Equal(t, "0.1", f.Rows[0]["time"], "numbers keep their literal text")
	assert.Equal(t, "hips", f.Rows[0]["joint"])
}

func TestReadJSONDataEnvelope(t *testing.T) {
	data := []byte(`{"version":2,"data":[{"time":"0.0","value":"1.5"}]}`)
	frames, err := Read("rec.json", data)
	require.NoError(t, err)
	require.Len(t, frames[0].Rows, 1)
	assert.Equal(t, "1.5", frames[0].Rows[0]["value"])
}

func TestReadJSONSingleObjectFlattens(t *testing.T) {
	data := []byte(`{"meta":{"session":"s1"},"time":"0.0"}`)
	frames, err := Read("rec.json", data)
	require.NoError(t, err)

	f := frames[0]
	require.Len(t, f.Rows, 1)
	assert.ElementsMatch(t, []string{"meta.session", "time"}, f.Columns)
	assert.Equal(t, "s1", f.Rows[0]["meta.session"])
}

func TestReadJSONLaterColumnsSortedTail(t *testing.T) {
	data := []byte(`[{"b":"1","a":"2"},{"z":"3","c":"4"}]`)
	frames, err := Read("rec.json", data)
	require.NoError(t, err)

	cols := frames[0].Columns
	require.Len(t, cols, 4)
	assert.ElementsMatch(t, []string{"a", "b"}, cols[:2])
	assert.Equal(t, []string{"c", "z"}, cols[2:], "keys first seen later append in sorted order")
}

func TestReadJSONRecordNotObject(t *testing.T) {
	_, err := Read("rec.json", []byte(`[1,2,3]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an object")
}

func TestReadUnsupportedExtension(t *testing.T) {
	_, err := Read("legacy.xls", []byte("x"))
	require.Error(t, err)
	assert.True(t, IsUnsupportedFormat(err))
	assert.Contains(t, err.Error(), ".xls")
}

func TestCleanHeader(t *testing.T) {
	assert.Equal(t, "hip_angle", cleanHeader("  hip_angle\t"))
	// NFC folds a combining acute into the precomposed form.
	assert.Equal(t, "señal", cleanHeader("señal"))
}
