package reader

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/motionforge/motionstore/internal/frame"
)

// readWorkbook parses an Office Open XML workbook into one frame per sheet,
// in workbook sheet order. Sheets without a header row are skipped.
func readWorkbook(data []byte) ([]frame.Frame, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer wb.Close()

	var frames []frame.Frame
	for _, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		frames = append(frames, buildFrame(sheet, rows[0], rows[1:]))
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("workbook has no non-empty sheets")
	}
	return frames, nil
}
