package datasource

import (
	"context"
	"fmt"

	"github.com/kbukum/flowkit/catalog"
	"github.com/kbukum/flowkit/table"
)

// Load reads the data a catalog entry describes into a table.
// credentialsPath is only consulted for SQL entries.
func Load(ctx context.Context, entry catalog.Entry, credentialsPath string) (*table.Table, error) {
	switch e := entry.(type) {
	case *catalog.CSVDataset:
		return loadCSV(e)
	case *catalog.EXCELDataset:
		return loadExcel(e)
	case *catalog.SQLDataSet:
		return loadSQL(ctx, e, credentialsPath)
	default:
		return nil, fmt.Errorf("datasource: no loader for entry type %q", entry.DatasetType())
	}
}
