package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gokatarajesh/trivia-api/internal/db/repository"
	"github.com/gokatarajesh/trivia-api/internal/importer"
)

// ImportCommand pulls questions from the Open Trivia DB.
func ImportCommand(db *DB, logger zerolog.Logger) *cobra.Command {
	var (
		baseURL string
		opts    importer.FetchOptions
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import questions from the Open Trivia DB",
		Long: `Import questions from the Open Trivia DB.

OpenTDB categories are matched to local categories by their leading word
("Science: Computers" goes to Science). Rows with no matching category are
skipped and reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rows, err := importer.NewOpenTDBClient(baseURL, nil).Fetch(ctx, opts)
			if err != nil {
				return err
			}

			pool, err := db.Pool(ctx)
			if err != nil {
				return err
			}
			repo := repository.NewQuestionRepository(pool)
			categories, err := repo.ListCategories(ctx)
			if err != nil {
				return err
			}

			rep, err := importer.Import(ctx, repo, rows, importer.ResolveByPrefix(categories))
			if err != nil {
				return err
			}
			for _, reason := range rep.Skipped {
				logger.Warn().Str("reason", reason).Msg("question skipped")
			}
			logger.Info().
				Int("fetched", len(rows)).
				Int("imported", rep.Imported).
				Int("skipped", len(rep.Skipped)).
				Msg("import finished")
			if rep.Imported == 0 && len(rows) > 0 {
				return fmt.Errorf("none of the %d fetched questions matched a local category", len(rows))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "", "OpenTDB base URL (default https://opentdb.com)")
	cmd.Flags().IntVarP(&opts.Amount, "amount", "n", 10, "number of questions to fetch (1-50)")
	cmd.Flags().IntVar(&opts.Category, "category", 0, "OpenTDB category id (0 for any)")
	cmd.Flags().StringVar(&opts.Difficulty, "difficulty", "", "easy, medium or hard")
	return cmd
}
