package commands

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/systmms/globalsecrets/internal/config"
)

// bundleFlags are the per-bundle flags shared by generate, inspect and doctor
type bundleFlags struct {
	typeName   string
	dir        string
	secretName string
	strict     bool
}

// packageDir returns the directory holding the struct: the --dir flag, else
// the directory of $GOFILE under go generate, else the working directory
func packageDir(dir string) string {
	if dir != "" {
		return dir
	}
	if gofile := os.Getenv("GOFILE"); gofile != "" {
		return filepath.Dir(gofile)
	}
	return "."
}

// resolveBundle merges command-line flags over the matching entry in the
// config file, if the file exists and declares the type
func resolveBundle(cfg *config.Config, flags bundleFlags) (config.BundleConfig, error) {
	bc := config.BundleConfig{Type: flags.typeName}

	if cfg.Path != "" && cfg.Exists() {
		if cfg.Definition == nil {
			if err := cfg.Load(); err != nil {
				return bc, err
			}
		}
		if found, ok := cfg.GetBundle(flags.typeName); ok {
			bc = found
			if bc.Dir != "" && !filepath.IsAbs(bc.Dir) {
				bc.Dir = filepath.Join(filepath.Dir(cfg.Path), bc.Dir)
			}
		}
	}

	if flags.dir != "" || bc.Dir == "" {
		bc.Dir = packageDir(flags.dir)
	}
	if flags.secretName != "" {
		bc.SecretName = flags.secretName
	}
	if flags.strict {
		bc.Strict = true
	}
	return bc, nil
}

// NormalizeArgs rewrites Go-style single-dash long flags (-type, -strict) to
// the double-dash form cobra expects, so go:generate directives can use
// either. Single-letter shorthands and anything after "--" are untouched.
func NormalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		if arg == "--" {
			copy(out[i:], args[i:])
			break
		}
		name, _, _ := strings.Cut(arg, "=")
		if strings.HasPrefix(arg, "-") && !strings.HasPrefix(arg, "--") && len(name) > 2 {
			arg = "-" + arg
		}
		out[i] = arg
	}
	return out
}
