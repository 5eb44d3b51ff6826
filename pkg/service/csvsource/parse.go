package csvsource

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
)

// Parse reads comma-delimited text with a header row into raw rows. Headers
// and cells are trimmed, numeric cells are inferred, and empty
// lines are skipped. Rows whose width differs from the header, and malformed
// lines, are counted as warnings rather than failing the document.
func Parse(data []byte) ([]model.RawRow, int, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, goerr.Wrap(model.ErrParse, "CSV document has no header row")
	}
	if err != nil {
		return nil, 0, goerr.Wrap(errors.Join(model.ErrParse, err), "failed to read CSV header")
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []model.RawRow
	warnings := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				warnings++
				continue
			}
			return nil, 0, goerr.Wrap(errors.Join(model.ErrParse, err), "failed to read CSV record")
		}

		if isBlank(record) {
			continue
		}
		if len(record) != len(header) {
			warnings++
		}

		row := make(model.RawRow, len(header))
		for i, name := range header {
			if name == "" || i >= len(record) {
				continue
			}
			row[name] = inferValue(strings.TrimSpace(record[i]))
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, warnings, goerr.Wrap(model.ErrParse, "CSV document has no data rows")
	}
	return rows, warnings, nil
}

func isBlank(record []string) bool {
	return len(record) == 1 && strings.TrimSpace(record[0]) == ""
}

var numberPattern = regexp.MustCompile(`^-?(\d+\.?|\.\d+|\d+\.\d+)([eE][-+]?\d+)?$`)

// inferValue converts numeric cells to int64 or float64. Everything else,
// including boolean-looking text, keeps its original spelling.
func inferValue(cell string) any {
	if cell == "" || !numberPattern.MatchString(cell) {
		return cell
	}
	if !strings.ContainsAny(cell, ".eE") {
		if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
			return n
		}
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	return cell
}
