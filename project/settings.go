package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/flowkit/logger"
	"github.com/kbukum/flowkit/runner"
)

// SettingsFile is the optional per-project settings document.
const SettingsFile = "flowkit.yml"

// Settings holds a project's configuration paths and logging setup.
// Relative paths are resolved against the project directory.
type Settings struct {
	CatalogPath     string        `mapstructure:"catalog_path"`
	CredentialsPath string        `mapstructure:"credentials_path"`
	ParametersPath  string        `mapstructure:"parameters_path"`
	Logging         logger.Config `mapstructure:"logging"`
}

// ApplyDefaults fills unset paths with the conventional conf/ layout.
func (s *Settings) ApplyDefaults() {
	if s.CatalogPath == "" {
		s.CatalogPath = runner.DefaultCatalogPath
	}
	if s.CredentialsPath == "" {
		s.CredentialsPath = runner.DefaultCredentialsPath
	}
	if s.ParametersPath == "" {
		s.ParametersPath = runner.DefaultParametersPath
	}
	s.Logging.ApplyDefaults()
}

// resolveAgainst turns relative paths into paths under dir.
func (s *Settings) resolveAgainst(dir string) {
	for _, p := range []*string{&s.CatalogPath, &s.CredentialsPath, &s.ParametersPath} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// LoadSettings reads the project settings from projectPath.
//
// An optional flowkit.yml provides the base values, a .env file in the
// project directory is loaded into the process environment, and
// FLOWKIT_-prefixed environment variables override file values.
func LoadSettings(projectPath string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("FLOWKIT")
	v.AutomaticEnv()

	settingsFile := filepath.Join(projectPath, SettingsFile)
	if _, err := os.Stat(settingsFile); err == nil {
		v.SetConfigFile(settingsFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("project: reading %s: %w", settingsFile, err)
		}
	}

	envFile := filepath.Join(projectPath, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			logger.Warn("failed to load .env file", logger.ErrorFields("load_env", err))
		}
	}

	for _, key := range []string{"catalog_path", "credentials_path", "parameters_path"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("project: binding %s: %w", key, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("project: unmarshalling settings: %w", err)
	}
	s.ApplyDefaults()
	s.resolveAgainst(projectPath)
	return &s, nil
}
