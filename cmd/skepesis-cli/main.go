// Command skepesis-cli is the operator companion to the Skepesis server:
// config validation, trivia imports, backend health probes, and store
// statistics without going through the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	skepesis "github.com/skepesis/skepesis"
	"github.com/skepesis/skepesis/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:     "skepesis-cli",
		Short:   "Operator tooling for the Skepesis learning platform",
		Version: version.Full(),
	}

	root.AddCommand(
		newValidateCmd(),
		newImportCmd(),
		newHealthCmd(),
		newStatsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves configuration the same way the server does: file,
// then environment overrides, then validation.
func loadConfig(path string) (skepesis.Config, error) {
	cfg := skepesis.DefaultConfig()
	if path != "" {
		loaded, err := skepesis.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}
	skepesis.ApplyEnvOverrides(&cfg)
	if err := skepesis.ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
