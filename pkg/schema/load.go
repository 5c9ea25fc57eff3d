// schema/load.go
package schema

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// LoadConfig reads and validates the declarative schema table from a TOML
// file. Callers normally feed the result straight into Build.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the schema file and builds the registry in one step. LoadConfig
// already validated, so the build skips the second pass.
func Load(path string) (*Registry, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return build(cfg)
}
