package catalog

import (
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/flowkit/errors"
	"github.com/kbukum/flowkit/util"
)

// Catalog is a loaded mapping from dataset name to typed entry.
type Catalog struct {
	path    string
	entries map[string]Entry
}

// Load reads and type-checks a catalog document from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigMissing(path)
		}
		return nil, errors.ConfigParse(path, err)
	}

	raw := make(map[string]yaml.Node)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.ConfigParse(path, err)
	}

	c := &Catalog{path: path, entries: make(map[string]Entry, len(raw))}
	for name, node := range raw {
		entry, err := decodeEntry(path, name, node)
		if err != nil {
			return nil, err
		}
		c.entries[name] = entry
	}
	return c, nil
}

// decodeEntry inspects the type discriminator and decodes the matching variant.
func decodeEntry(path, name string, node yaml.Node) (Entry, error) {
	var probe struct {
		Type string `yaml:"type"`
	}
	if err := node.Decode(&probe); err != nil {
		return nil, errors.ConfigParse(path, err)
	}

	switch probe.Type {
	case TypeCSV:
		var d CSVDataset
		if err := node.Decode(&d); err != nil {
			return nil, errors.ConfigParse(path, err)
		}
		d.applyDefaults()
		if err := d.validate(name); err != nil {
			return nil, errors.ConfigParse(path, err)
		}
		return &d, nil
	case TypeExcel:
		var d EXCELDataset
		if err := node.Decode(&d); err != nil {
			return nil, errors.ConfigParse(path, err)
		}
		if err := d.validate(name); err != nil {
			return nil, errors.ConfigParse(path, err)
		}
		return &d, nil
	case TypeSQL:
		var d SQLDataSet
		if err := node.Decode(&d); err != nil {
			return nil, errors.ConfigParse(path, err)
		}
		if err := d.validate(name); err != nil {
			return nil, errors.ConfigParse(path, err)
		}
		return &d, nil
	default:
		return nil, errors.UnsupportedType(name, probe.Type)
	}
}

// Path returns the path the catalog was loaded from.
func (c *Catalog) Path() string { return c.path }

// Has reports whether name is defined in the catalog.
func (c *Catalog) Has(name string) bool {
	_, ok := c.entries[name]
	return ok
}

// Get returns the typed entry for a dataset name.
func (c *Catalog) Get(name string) (Entry, error) {
	entry, ok := c.entries[name]
	if !ok {
		return nil, errors.UnknownDataset(name, c.path)
	}
	return entry, nil
}

// Names returns the sorted dataset names.
func (c *Catalog) Names() []string {
	return util.SortedKeys(c.entries)
}

// Lookup loads the catalog at catalogPath and returns the entry for name.
func Lookup(name, catalogPath string) (Entry, error) {
	c, err := Load(catalogPath)
	if err != nil {
		return nil, err
	}
	return c.Get(name)
}
