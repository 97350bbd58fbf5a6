package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gokatarajesh/trivia-api/internal/db/repository"
	"github.com/gokatarajesh/trivia-api/internal/db/seed"
)

const defaultSeedFile = "data/trivia.yaml"

// SeedCommand loads a YAML dataset of categories and questions.
func SeedCommand(db *DB, logger zerolog.Logger) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories and questions from a YAML file",
		Long: `Load categories and questions from a YAML file.

Categories are upserted by id. Questions are always inserted as new rows,
so running the same file twice duplicates its questions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := seed.Load(file)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := db.Pool(ctx)
			if err != nil {
				return err
			}
			res, err := seed.Apply(ctx, repository.NewQuestionRepository(pool), ds)
			if err != nil {
				return err
			}
			logger.Info().
				Str("file", file).
				Int("categories", res.Categories).
				Int("questions", res.Questions).
				Msg("seed data loaded")
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", defaultSeedFile, "YAML dataset to load")
	return cmd
}
