package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	dserrors "github.com/systmms/globalsecrets/internal/errors"
)

// EnvPrefix is the prefix of every run-time environment variable
const EnvPrefix = "GLOBALSECRETS"

// Runtime holds the settings used when a generated bundle is first loaded.
// Standard AWS variables (AWS_REGION, AWS_PROFILE, ...) are still honored by
// the SDK's default chain; these only override it.
type Runtime struct {
	Region          string        `envconfig:"REGION"`
	Endpoint        string        `envconfig:"ENDPOINT"`
	AccessKeyID     string        `envconfig:"ACCESS_KEY_ID"`
	SecretAccessKey string        `envconfig:"SECRET_ACCESS_KEY"`
	Timeout         time.Duration `envconfig:"TIMEOUT" default:"30s"`
	Debug           bool          `envconfig:"DEBUG" default:"false"`
}

// LoadRuntime loads a .env file (if present) into the process environment
// and then reads GLOBALSECRETS_* variables. Variables already set in the
// environment win over the .env file.
func LoadRuntime() (Runtime, error) {
	path := os.Getenv(EnvPrefix + "_DOTENV")
	if path == "" {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Runtime{}, dserrors.ConfigError{
			Field:      EnvPrefix + "_DOTENV",
			Value:      path,
			Message:    "failed to parse dotenv file: " + err.Error(),
			Suggestion: "Use KEY=value lines in the .env file",
		}
	}

	var r Runtime
	if err := envconfig.Process(EnvPrefix, &r); err != nil {
		return Runtime{}, dserrors.ConfigError{
			Message:    err.Error(),
			Suggestion: "Check the " + EnvPrefix + "_* environment variables",
		}
	}

	if r.Timeout <= 0 {
		return Runtime{}, dserrors.ConfigError{
			Field:   EnvPrefix + "_TIMEOUT",
			Value:   r.Timeout,
			Message: "timeout must be positive",
		}
	}

	return r, nil
}
