package ingest

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// readXLSX extracts codes from the first sheet of a workbook. If a recognized
// code heading is present, that column is read and the header row skipped;
// otherwise the first column is taken as-is.
func readXLSX(data []byte) ([]string, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("ingest: workbook has no sheets")
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	col := 0
	start := 0
	for i, cell := range sheet.Rows[0].Cells {
		if isCodeHeader(cell.String()) {
			col = i
			start = 1
			break
		}
	}

	var codes []string
	for _, row := range sheet.Rows[start:] {
		if col >= len(row.Cells) {
			continue
		}
		codes = append(codes, row.Cells[col].String())
	}
	return codes, nil
}
