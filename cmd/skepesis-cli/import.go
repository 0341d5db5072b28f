package main

import (
	"fmt"

	"github.com/spf13/cobra"

	skepesis "github.com/skepesis/skepesis"
	"github.com/skepesis/skepesis/internal/store"
	"github.com/skepesis/skepesis/trivia"
)

func newImportCmd() *cobra.Command {
	var (
		configPath string
		amount     int
		categoryID int
		difficulty string
		qType      string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Fetch questions from the Open Trivia Database into the question bank",
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

			client := trivia.NewClient(cfg.Trivia.BaseURL)
			questions, err := client.FetchQuestions(cmd.Context(), trivia.FetchOptions{
				Amount:     amount,
				CategoryID: categoryID,
				Difficulty: difficulty,
				Type:       qType,
			})
			if err != nil {
				return fmt.Errorf("fetch questions: %w", err)
			}

			imported := 0
			for _, q := range questions {
				if _, err := db.CreateQuestion(cmd.Context(), q); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipping question: %v\n", err)
					continue
				}
				imported++
			}

			fmt.Printf("Imported %d of %d questions\n", imported, len(questions))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (yaml or json)")
	cmd.Flags().IntVarP(&amount, "amount", "n", 10, "number of questions to fetch (max 50)")
	cmd.Flags().IntVar(&categoryID, "category", 0, "OpenTDB category ID (0 for any)")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "easy, medium, or hard (empty for any)")
	cmd.Flags().StringVar(&qType, "type", "", "multiple or boolean (empty for any)")
	return cmd
}

func openStore(cfg skepesis.DatabaseConfig) (*store.Store, error) {
	if cfg.Driver == skepesis.DriverPostgres {
		return store.NewPostgres(cfg.DSN)
	}
	return store.NewSQLite(cfg.DSN)
}
