// Package ingest extracts material codes from uploaded spreadsheets and
// code lists for bulk profiling.
package ingest

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/kimberlite-group/matprofile/internal/model"
)

// headerNames are the column headings recognized as the material code column.
var headerNames = []string{"material_code", "code", "material", "part_number", "stock_code"}

// ReadCodes parses an uploaded file into an ordered, deduplicated list of
// material codes. The format is chosen by file extension: .xlsx goes through
// the spreadsheet reader, everything else is treated as CSV (which also
// covers plain one-code-per-line lists). maxCodes of 0 means no cap.
func ReadCodes(data []byte, filename string, maxCodes int) ([]string, error) {
	var (
		codes []string
		err   error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		codes, err = readXLSX(data)
	default:
		codes, err = readCSV(data)
	}
	if err != nil {
		return nil, err
	}

	codes = dedupe(codes)
	if len(codes) == 0 {
		return nil, eris.Errorf("ingest: no material codes found in %s", filename)
	}
	if maxCodes > 0 && len(codes) > maxCodes {
		return nil, eris.Errorf("ingest: %d codes exceeds the limit of %d", len(codes), maxCodes)
	}
	return codes, nil
}

// isCodeHeader reports whether a cell looks like a material code column
// heading rather than a code.
func isCodeHeader(cell string) bool {
	cell = normalizeHeader(cell)
	for _, name := range headerNames {
		if cell == name {
			return true
		}
	}
	return false
}

// normalizeHeader folds a column heading to the canonical snake_case form
// used in headerNames.
func normalizeHeader(cell string) string {
	cell = strings.ToLower(strings.TrimSpace(cell))
	cell = strings.ReplaceAll(cell, " ", "_")
	return strings.ReplaceAll(cell, "-", "_")
}

// dedupe removes repeated codes while preserving first-seen order. Codes are
// compared in normalized form so "brg 6205" and "BRG-6205" collapse to one
// entry; codes that cannot be normalized pass through so the batch can record
// them as failed.
func dedupe(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}

		key, err := model.NormalizeCode(r)
		if err != nil {
			key = strings.ToUpper(r)
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
