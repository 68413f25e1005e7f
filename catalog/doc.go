// Package catalog maps symbolic dataset names to typed loader descriptors.
//
// A catalog is a YAML document of dataset-name to entry mappings. Each
// entry carries a "type" discriminator selecting the descriptor variant
// (CSVDataset, EXCELDataset, SQLDataSet). Credentials live in a separate
// document keyed by credentials name.
package catalog
