package ingest

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// codeRow maps the recognized code column headings onto one struct so a
// single decode pass works for any of them.
type codeRow struct {
	MaterialCode string `csv:"material_code"`
	Code         string `csv:"code"`
	Material     string `csv:"material"`
	PartNumber   string `csv:"part_number"`
	StockCode    string `csv:"stock_code"`
}

func (r codeRow) value() string {
	for _, v := range []string{r.MaterialCode, r.Code, r.Material, r.PartNumber, r.StockCode} {
		if v != "" {
			return v
		}
	}
	return ""
}

// readCSV extracts codes from CSV data. Files with a recognized header row
// are decoded by column name; headerless files are read as bare code lists,
// taking the first field of each row.
func readCSV(data []byte) ([]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read csv")
	}

	if hasCodeHeader(first) {
		return decodeWithHeader(data)
	}

	codes := []string{first[0]}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "ingest: read csv row")
		}
		if len(record) > 0 {
			codes = append(codes, record[0])
		}
	}
	return codes, nil
}

func hasCodeHeader(record []string) bool {
	for _, cell := range record {
		if isCodeHeader(cell) {
			return true
		}
	}
	return false
}

// decodeWithHeader re-reads the file through csvutil so the code column is
// picked by heading, wherever it sits in the row. The header is normalized
// before handing it to the decoder so "Material Code" and "material_code"
// both match.
func decodeWithHeader(data []byte) ([]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read csv header")
	}
	for i, cell := range header {
		header[i] = normalizeHeader(cell)
	}

	dec, err := csvutil.NewDecoder(reader, header...)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: decode csv header")
	}

	var codes []string
	for {
		var row codeRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "ingest: decode csv row")
		}
		if v := row.value(); v != "" {
			codes = append(codes, v)
		}
	}
	return codes, nil
}
