package catalog

import (
	"fmt"

	"go.yaml.in/yaml/v3"
)

// Type discriminator strings recognized in catalog documents.
const (
	TypeCSV   = "CSVDataset"
	TypeExcel = "EXCELDataset"
	TypeSQL   = "SQLDataSet"
)

// Entry is a typed dataset descriptor.
type Entry interface {
	// DatasetType returns the entry's type discriminator.
	DatasetType() string
}

// CSVDataset describes a delimited text file.
type CSVDataset struct {
	Path string `yaml:"path"`
	// Separator is the field delimiter, a single character.
	Separator string `yaml:"separator"`
	// Quote is the quote character. Only the double quote is supported.
	Quote string `yaml:"quote"`
	// ColumnNames controls the header: absent or true reads a header row,
	// false synthesizes column_1..column_n, a list supplies names directly.
	ColumnNames *ColumnNames `yaml:"column_names"`
	// ColumnTypes converts named columns to string, int, float or bool.
	// Untyped columns are inferred per cell.
	ColumnTypes map[string]string `yaml:"column_types"`
	// SkipRows skips that many rows before the header.
	SkipRows int `yaml:"skip_rows"`
	// MaxRows caps the number of data rows read. Zero means unlimited.
	MaxRows int `yaml:"max_rows"`
	// NATokens are cell values treated as missing data.
	NATokens *[]string `yaml:"na_tokens"`
	// TrimWhitespace trims each cell before NA matching and conversion.
	TrimWhitespace bool `yaml:"trim_whitespace"`
	// Columns projects the loaded table to a subset, in the given order.
	Columns []string `yaml:"columns"`
}

// DatasetType implements Entry.
func (d *CSVDataset) DatasetType() string { return TypeCSV }

// EffectiveNATokens returns the configured NA tokens or the defaults.
func (d *CSVDataset) EffectiveNATokens() []string {
	if d.NATokens == nil {
		return []string{"", "NA"}
	}
	return *d.NATokens
}

func (d *CSVDataset) applyDefaults() {
	if d.Separator == "" {
		d.Separator = ","
	}
	if d.Quote == "" {
		d.Quote = `"`
	}
}

func (d *CSVDataset) validate(name string) error {
	if d.Path == "" {
		return fmt.Errorf("dataset %q: path is required", name)
	}
	if len([]rune(d.Separator)) != 1 {
		return fmt.Errorf("dataset %q: separator must be a single character", name)
	}
	if d.Quote != `"` {
		return fmt.Errorf("dataset %q: only the double quote character is supported", name)
	}
	if d.SkipRows < 0 || d.MaxRows < 0 {
		return fmt.Errorf("dataset %q: skip_rows and max_rows must not be negative", name)
	}
	return nil
}

// ColumnNames is the bool-or-list surface form of the column_names field.
type ColumnNames struct {
	// Header reports whether a header row is present. Meaningful only
	// when Names is empty.
	Header bool
	// Names are explicit column names replacing any header.
	Names []string
}

// UnmarshalYAML decodes either a boolean or a sequence of strings.
func (c *ColumnNames) UnmarshalYAML(value *yaml.Node) error {
	var header bool
	if err := value.Decode(&header); err == nil {
		c.Header = header
		c.Names = nil
		return nil
	}
	var names []string
	if err := value.Decode(&names); err == nil {
		c.Header = false
		c.Names = names
		return nil
	}
	return fmt.Errorf("column_names must be a boolean or a list of strings")
}

// MarshalYAML re-serializes the surface form that was read.
func (c ColumnNames) MarshalYAML() (any, error) {
	if c.Names != nil {
		return c.Names, nil
	}
	return c.Header, nil
}

// EXCELDataset describes one sheet of a spreadsheet file.
type EXCELDataset struct {
	Path  string `yaml:"path"`
	Sheet string `yaml:"sheet"`
}

// DatasetType implements Entry.
func (d *EXCELDataset) DatasetType() string { return TypeExcel }

func (d *EXCELDataset) validate(name string) error {
	if d.Path == "" {
		return fmt.Errorf("dataset %q: path is required", name)
	}
	if d.Sheet == "" {
		return fmt.Errorf("dataset %q: sheet is required", name)
	}
	return nil
}

// SQLDataSet describes a query against a relational database.
type SQLDataSet struct {
	// Database is the database kind: snowflake, sqlite or postgres.
	Database string `yaml:"database"`
	// SQLPath is the filesystem path of the query text.
	SQLPath string `yaml:"sql_path"`
	// CredentialsKey indexes the credentials document.
	CredentialsKey string `yaml:"credentials"`
}

// DatasetType implements Entry.
func (d *SQLDataSet) DatasetType() string { return TypeSQL }

func (d *SQLDataSet) validate(name string) error {
	if d.Database == "" {
		return fmt.Errorf("dataset %q: database is required", name)
	}
	if d.SQLPath == "" {
		return fmt.Errorf("dataset %q: sql_path is required", name)
	}
	if d.CredentialsKey == "" {
		return fmt.Errorf("dataset %q: credentials is required", name)
	}
	return nil
}
