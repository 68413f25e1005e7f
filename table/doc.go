// Package table provides the uniform tabular value exchanged between
// pipeline nodes and produced by data-source loaders.
//
// A Table has an ordered column list and row-major cells. The text
// loaders (CSV, Excel) fill cells with plain Go scalars (string, int64,
// float64, bool) or nil for missing data; the SQL loader stores values as
// the database driver returns them, with byte slices turned into strings.
package table
