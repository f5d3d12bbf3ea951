package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/systmms/globalsecrets/internal/config"
	"github.com/systmms/globalsecrets/internal/generate"
	"github.com/systmms/globalsecrets/internal/introspect"
)

func NewGenerateCommand(cfg *config.Config) *cobra.Command {
	var (
		flags  bundleFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the accessor file for a secret bundle struct",
		Long: `Generate reads a struct declaration and writes a file declaring a
lazily loaded secret bundle plus Load<Type> and Must<Type> accessors.

With --type, one struct is generated (usually from a //go:generate
directive). Without it, every bundle listed in the config file is generated.

Each struct field is filled from the payload key named by its secret tag,
else its json tag, else the field name. Fields tagged secret:"-" or json:"-"
are skipped and keep their zero value. A secret tag wins over the json tag,
so secret:"k" json:"-" still loads key k.

Two types whose names differ only in case (FooBar and fooBar) are rejected,
since both would generate fooBarBundle in foobar_globalsecret.go.`,
		Example: `  //go:generate globalsecrets generate -type AppSecrets
  globalsecrets generate --type AppSecrets --secret-name prod/app --strict
  globalsecrets generate --config globalsecrets.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.typeName != "" {
				bc, err := resolveBundle(cfg, flags)
				if err != nil {
					return err
				}
				if output != "" {
					bc.Output = output
				}
				path, err := generateBundle(bc)
				if err != nil {
					return err
				}
				cfg.Logger.Info("Generated %s for %s", path, bc.Type)
				return nil
			}

			if err := cfg.Load(); err != nil {
				return err
			}
			if len(cfg.Definition.Bundles) == 0 {
				cfg.Logger.Warn("No bundles declared in %s", cfg.Path)
				return nil
			}

			base := filepath.Dir(cfg.Path)
			for _, bc := range cfg.Definition.Bundles {
				if !filepath.IsAbs(bc.Dir) {
					bc.Dir = filepath.Join(base, bc.Dir)
				}
				path, err := generateBundle(bc)
				if err != nil {
					return fmt.Errorf("bundle %s: %w", bc.Type, err)
				}
				cfg.Logger.Info("Generated %s for %s", path, bc.Type)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.typeName, "type", "t", "", "Struct type to generate a secret bundle for")
	cmd.Flags().StringVar(&flags.dir, "dir", "", "Package directory (default: directory of $GOFILE, else .)")
	cmd.Flags().StringVar(&flags.secretName, "secret-name", "", "Secret name in the store (default: the type name)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: <type>_globalsecret.go)")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "Reject payload keys that no field maps")

	return cmd
}

func generateBundle(bc config.BundleConfig) (string, error) {
	desc, err := introspect.Inspect(introspect.Options{
		Dir:        bc.Dir,
		TypeName:   bc.Type,
		SecretName: bc.SecretName,
		Strict:     bc.Strict,
	})
	if err != nil {
		return "", err
	}

	return generate.Write(desc, generate.Options{
		Dir:        bc.Dir,
		Output:     bc.Output,
		Invocation: invocation(bc),
	})
}

// invocation is the command line recorded in the generated header
func invocation(bc config.BundleConfig) string {
	parts := []string{"globalsecrets generate -type", bc.Type}
	if bc.SecretName != "" {
		parts = append(parts, "-secret-name", bc.SecretName)
	}
	if bc.Strict {
		parts = append(parts, "-strict")
	}
	return strings.Join(parts, " ")
}
