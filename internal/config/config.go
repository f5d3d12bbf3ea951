package config

import (
	"fmt"
	"os"
	"strings"

	dserrors "github.com/systmms/globalsecrets/internal/errors"
	"github.com/systmms/globalsecrets/internal/logging"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the generator configuration file looked up by default
const DefaultPath = "globalsecrets.yaml"

// Config holds the runtime configuration of the CLI
type Config struct {
	Path       string
	Logger     *logging.Logger
	Definition *Definition
}

// Definition represents the globalsecrets.yaml structure
type Definition struct {
	Version int            `yaml:"version"`
	Bundles []BundleConfig `yaml:"bundles"`
}

// BundleConfig describes one struct to generate a secret bundle for
type BundleConfig struct {
	// Type is the struct name in the package directory
	Type string `yaml:"type"`
	// Dir is the package directory, relative to the config file
	Dir string `yaml:"dir,omitempty"`
	// SecretName overrides the remote lookup key (defaults to Type)
	SecretName string `yaml:"secretName,omitempty"`
	// Output overrides the generated file name
	Output string `yaml:"output,omitempty"`
	// Strict rejects payload keys that have no matching field
	Strict bool `yaml:"strict,omitempty"`
}

// Exists reports whether the configuration file is present
func (c *Config) Exists() bool {
	_, err := os.Stat(c.Path)
	return err == nil
}

// Load reads and parses the globalsecrets.yaml file
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return dserrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Pass --type to generate a single bundle, or create " + DefaultPath,
			}
		}
		return dserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return dserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	if def.Version != 0 {
		return dserrors.ConfigError{
			Field:      "version",
			Value:      def.Version,
			Message:    "unsupported configuration version",
			Suggestion: "Set 'version: 0' at the top of your " + DefaultPath + " file",
		}
	}

	if err := def.validate(); err != nil {
		return err
	}

	c.Definition = &def
	return nil
}

func (d *Definition) validate() error {
	seen := make(map[string]int, len(d.Bundles))
	for i, b := range d.Bundles {
		field := fmt.Sprintf("bundles[%d].type", i)
		if strings.TrimSpace(b.Type) == "" {
			return dserrors.ConfigError{
				Field:      field,
				Message:    "type name is required",
				Suggestion: "Set 'type' to the name of the struct to generate a bundle for",
			}
		}
		key := b.Dir + "\x00" + b.Type
		if prev, dup := seen[key]; dup {
			return dserrors.ConfigError{
				Field:      field,
				Value:      b.Type,
				Message:    fmt.Sprintf("duplicate bundle (already declared at bundles[%d])", prev),
				Suggestion: "Declare each struct once",
			}
		}
		seen[key] = i
	}
	return nil
}

// GetBundle returns the bundle configured for typeName, if any
func (c *Config) GetBundle(typeName string) (BundleConfig, bool) {
	if c.Definition == nil {
		return BundleConfig{}, false
	}
	for _, b := range c.Definition.Bundles {
		if b.Type == typeName {
			return b, true
		}
	}
	return BundleConfig{}, false
}
