package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/systmms/globalsecrets/internal/config"
	"github.com/systmms/globalsecrets/internal/introspect"
	"github.com/systmms/globalsecrets/pkg/globalsecret"
	"gopkg.in/yaml.v3"
)

func NewInspectCommand(cfg *config.Config) *cobra.Command {
	var (
		flags  bundleFlags
		format string
		schema bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show how a struct maps to secret payload keys",
		Long: `Inspect prints the descriptor that generate would use for a struct:
its secret name and the payload key, Go type and kind of each field.

With --schema, prints the JSON Schema a payload must satisfy instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.typeName == "" {
				return fmt.Errorf("--type is required")
			}

			bc, err := resolveBundle(cfg, flags)
			if err != nil {
				return err
			}

			desc, err := introspect.Inspect(introspect.Options{
				Dir:        bc.Dir,
				TypeName:   bc.Type,
				SecretName: bc.SecretName,
				Strict:     bc.Strict,
			})
			if err != nil {
				return err
			}

			var v interface{} = desc
			if schema {
				v = globalsecret.Schema(desc.Runtime())
			}
			return writeFormatted(cmd.OutOrStdout(), format, v)
		},
	}

	cmd.Flags().StringVarP(&flags.typeName, "type", "t", "", "Struct type to inspect")
	cmd.Flags().StringVar(&flags.dir, "dir", "", "Package directory (default: directory of $GOFILE, else .)")
	cmd.Flags().StringVar(&flags.secretName, "secret-name", "", "Secret name in the store (default: the type name)")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "Reject payload keys that no field maps")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or json")
	cmd.Flags().BoolVar(&schema, "schema", false, "Print the payload JSON Schema")

	return cmd
}

func writeFormatted(w io.Writer, format string, v interface{}) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return fmt.Errorf("unsupported format %q (use yaml or json)", format)
	}
}
