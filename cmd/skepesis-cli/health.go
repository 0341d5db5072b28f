package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	skepesis "github.com/skepesis/skepesis"
	"github.com/skepesis/skepesis/backends"
)

func newHealthCmd() *cobra.Command {
	var (
		configPath string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Probe the inference backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			backend := buildBackend(cfg.Backend)
			defer backend.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			start := time.Now()
			if !backend.Health(ctx) {
				return fmt.Errorf("backend %s (%s) is unreachable", backend.Name(), cfg.Backend.BaseURL)
			}
			fmt.Printf("Backend %s is healthy (model %s, %s)\n",
				backend.Name(), backend.Model(), time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (yaml or json)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "probe timeout")
	return cmd
}

func buildBackend(cfg skepesis.BackendConfig) backends.Generator {
	if cfg.Provider == skepesis.ProviderOpenAI {
		return backends.NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model)
	}
	return backends.NewOllama(cfg.BaseURL, cfg.Model)
}
