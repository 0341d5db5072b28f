package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show question bank statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			db, err := openStore(cfg.Database)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer db.Close()

			total, err := db.CountQuestions(cmd.Context())
			if err != nil {
				return err
			}
			if total == 0 {
				fmt.Println("Question bank is empty. Run `skepesis-cli import` to seed it.")
				return nil
			}

			breakdown, err := db.QuestionBreakdown(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Question bank: %d questions\n\n", total)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tDIFFICULTY\tCOUNT")
			for _, row := range breakdown {
				category := row.Category
				if category == "" {
					category = "(uncategorized)"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\n", category, row.Difficulty, row.Count)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (yaml or json)")
	return cmd
}
