package datasource

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kbukum/flowkit/catalog"
	"github.com/kbukum/flowkit/table"
)

func loadExcel(entry *catalog.EXCELDataset) (*table.Table, error) {
	file, err := excelize.OpenFile(entry.Path)
	if err != nil {
		return nil, fmt.Errorf("datasource: opening %s: %w", entry.Path, err)
	}
	defer file.Close()

	rows, err := file.GetRows(entry.Sheet)
	if err != nil {
		return nil, fmt.Errorf("datasource: reading sheet %q of %s: %w", entry.Sheet, entry.Path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("datasource: sheet %q of %s is empty", entry.Sheet, entry.Path)
	}

	cols := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		cols[i] = cleanHeader(h)
	}

	t := table.New(cols...)
	for _, record := range rows[1:] {
		row := make([]any, len(cols))
		for i := range cols {
			if i >= len(record) || record[i] == "" {
				row[i] = nil
				continue
			}
			row[i] = table.ParseValue(record[i])
		}
		if err := t.Append(row); err != nil {
			return nil, fmt.Errorf("datasource: %s: %w", entry.Path, err)
		}
	}
	return t, nil
}
