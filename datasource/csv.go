package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kbukum/flowkit/catalog"
	"github.com/kbukum/flowkit/table"
	"github.com/kbukum/flowkit/util"
)

func loadCSV(entry *catalog.CSVDataset) (*table.Table, error) {
	file, err := os.Open(entry.Path)
	if err != nil {
		return nil, fmt.Errorf("datasource: opening %s: %w", entry.Path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = []rune(entry.Separator)[0]
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	for i := 0; i < entry.SkipRows; i++ {
		if _, err := reader.Read(); err == io.EOF {
			return nil, fmt.Errorf("datasource: %s: skip_rows %d exceeds file length", entry.Path, entry.SkipRows)
		} else if err != nil {
			return nil, fmt.Errorf("datasource: reading %s: %w", entry.Path, err)
		}
	}

	cols, pending, err := csvColumns(entry, reader)
	if err != nil {
		return nil, err
	}

	opts := cellOptions{
		naTokens:    entry.EffectiveNATokens(),
		trim:        entry.TrimWhitespace,
		columnTypes: entry.ColumnTypes,
	}

	t := table.New(cols...)
	rows := 0
	appendRecord := func(record []string) error {
		row, err := buildRow(cols, record, opts)
		if err != nil {
			return fmt.Errorf("datasource: %s row %d: %w", entry.Path, rows+1, err)
		}
		return t.Append(row)
	}

	if pending != nil {
		if err := appendRecord(pending); err != nil {
			return nil, err
		}
		rows++
	}

	for entry.MaxRows == 0 || rows < entry.MaxRows {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("datasource: reading %s: %w", entry.Path, err)
		}
		if err := appendRecord(record); err != nil {
			return nil, err
		}
		rows++
	}

	return projectColumns(t, entry.Columns)
}

// csvColumns determines the column names. When the descriptor disables the
// header row, the first data record is consumed to size the table and
// returned for appending.
func csvColumns(entry *catalog.CSVDataset, reader *csv.Reader) (cols []string, pending []string, err error) {
	names := entry.ColumnNames
	if names != nil && len(names.Names) > 0 {
		return names.Names, nil, nil
	}
	if names != nil && !names.Header {
		record, err := reader.Read()
		if err == io.EOF {
			return nil, nil, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("datasource: reading %s: %w", entry.Path, err)
		}
		cols = make([]string, len(record))
		for i := range record {
			cols[i] = fmt.Sprintf("column_%d", i+1)
		}
		return cols, record, nil
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("datasource: %s is empty", entry.Path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("datasource: reading %s header: %w", entry.Path, err)
	}
	cols = make([]string, len(header))
	for i, h := range header {
		cols[i] = cleanHeader(h)
	}
	return cols, nil, nil
}

// cleanHeader trims surrounding whitespace and stray quotes from a header cell.
func cleanHeader(h string) string {
	h = strings.TrimSpace(h)
	return strings.ReplaceAll(h, `"`, "")
}

type cellOptions struct {
	naTokens    []string
	trim        bool
	columnTypes map[string]string
}

// buildRow converts one raw record into typed cells, padding or truncating
// ragged records to the column count.
func buildRow(cols []string, record []string, opts cellOptions) ([]any, error) {
	row := make([]any, len(cols))
	for i := range cols {
		if i >= len(record) {
			row[i] = nil
			continue
		}
		cell, err := convertCell(cols[i], record[i], opts)
		if err != nil {
			return nil, err
		}
		row[i] = cell
	}
	return row, nil
}

func convertCell(col, raw string, opts cellOptions) (any, error) {
	if opts.trim {
		raw = strings.TrimSpace(raw)
	}
	if util.Contains(opts.naTokens, raw) {
		return nil, nil
	}
	if typ, ok := opts.columnTypes[col]; ok {
		return table.ConvertValue(raw, typ)
	}
	return table.ParseValue(raw), nil
}

func projectColumns(t *table.Table, cols []string) (*table.Table, error) {
	if len(cols) == 0 {
		return t, nil
	}
	return t.Select(cols)
}
