package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/globalsecrets/cmd/globalsecrets/commands"
	"github.com/systmms/globalsecrets/internal/config"
	dserrors "github.com/systmms/globalsecrets/internal/errors"
	"github.com/systmms/globalsecrets/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", dserrors.SimplifyError(err))
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		configFile string
		noColor    bool
		debug      bool
	)

	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "globalsecrets",
		Short: "Generate lazily loaded secret bundles backed by AWS Secrets Manager",
		Long: `globalsecrets reads a struct declaration and generates a package-level
accessor that fetches the matching secret from AWS Secrets Manager on first
use, decodes its JSON keys into the struct fields, and caches the result for
the life of the process.

Annotate a struct with:

    //go:generate globalsecrets generate -type MySecrets`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.Path = configFile
			cfg.Logger = logging.New(debug, noColor)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath, "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		commands.NewGenerateCommand(cfg),
		commands.NewInspectCommand(cfg),
		commands.NewDoctorCommand(cfg),
	)

	rootCmd.SetArgs(commands.NormalizeArgs(os.Args[1:]))
	return rootCmd.Execute()
}
