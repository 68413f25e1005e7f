package catalog

import (
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/flowkit/errors"
)

// Credential holds connection settings for one credentials key.
type Credential struct {
	Server    string `yaml:"Server"`
	Database  string `yaml:"Database"`
	Schema    string `yaml:"Schema"`
	User      string `yaml:"User"`
	Password  string `yaml:"Password"`
	Warehouse string `yaml:"Warehouse"`
	Account   string `yaml:"Account"`
	Role      string `yaml:"Role"`
	Port      int    `yaml:"Port"`
}

// Credentials maps a credentials key to its settings.
type Credentials struct {
	path    string
	entries map[string]Credential
}

// LoadCredentials reads a credentials document from path.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigMissing(path)
		}
		return nil, errors.ConfigParse(path, err)
	}

	entries := make(map[string]Credential)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, errors.ConfigParse(path, err)
	}
	return &Credentials{path: path, entries: entries}, nil
}

// Get returns the credential for key.
func (c *Credentials) Get(key string) (Credential, error) {
	cred, ok := c.entries[key]
	if !ok {
		return Credential{}, errors.UnknownCredentials(key, c.path)
	}
	return cred, nil
}
