// Command triviactl runs schema migrations and loads seed or imported
// questions into the trivia database.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gokatarajesh/trivia-api/cmd/triviactl/commands"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load("configs/.env")
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	db := &commands.DB{}

	rootCmd := &cobra.Command{
		Use:           "triviactl",
		Short:         "Trivia API administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.MigrateCommands(db, logger))
	rootCmd.AddCommand(commands.SeedCommand(db, logger))
	rootCmd.AddCommand(commands.ImportCommand(db, logger))

	err := rootCmd.Execute()
	db.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
