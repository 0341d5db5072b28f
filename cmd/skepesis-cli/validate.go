package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("configuration invalid: %w", err)
			}

			fmt.Println("Configuration OK")
			fmt.Printf("  listen address:  %s\n", cfg.Server.Addr)
			fmt.Printf("  database:        %s\n", cfg.Database.Driver)
			fmt.Printf("  backend:         %s (%s)\n", cfg.Backend.Provider, cfg.Backend.Model)
			if cfg.Auth.TokenSecret == "" {
				fmt.Println("  warning: auth.token_secret is not set; the server will refuse to start")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (yaml or json)")
	return cmd
}
