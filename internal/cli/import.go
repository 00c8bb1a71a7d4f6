package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"quizdeck/internal/app"
	"quizdeck/internal/config"
	"quizdeck/internal/opentdb"
)

// NewImportCmd pulls questions from OpenTriviaDB into the configured store,
// either as a new quiz or appended to an existing one.
func NewImportCmd(configPath *string) *cobra.Command {
	var (
		amount     int
		category   string
		difficulty string
		title      string
		quizID     string
		createdBy  string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import questions from OpenTriviaDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			store, closeStore, err := buildStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			if cfg.Store.Backend == "postgres" {
				if err := runMigrationsWithConfig(cmd.Context(), cfg); err != nil {
					return err
				}
			}

			importer := opentdb.NewImporter(app.NewQuizService(store), opentdb.NewClient(nil))
			opts := opentdb.ImportOptions{
				Amount:     amount,
				Category:   category,
				Difficulty: difficulty,
				Title:      title,
			}

			if quizID != "" {
				added, err := importer.ImportInto(cmd.Context(), quizID, opts)
				if err != nil {
					return err
				}
				log.Printf("added %d questions to quiz %s", added, quizID)
				return nil
			}

			quiz, err := importer.ImportNew(cmd.Context(), createdBy, opts)
			if err != nil {
				return err
			}
			fmt.Printf("created quiz %s (%s)\n", quiz.ID, quiz.Title)
			return nil
		},
	}

	cmd.Flags().IntVar(&amount, "amount", 10, "number of questions to fetch")
	cmd.Flags().StringVar(&category, "category", "", "OpenTriviaDB category id")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "easy, medium, or hard")
	cmd.Flags().StringVar(&title, "title", "", "title for the new quiz")
	cmd.Flags().StringVar(&quizID, "quiz", "", "append to this existing quiz instead of creating one")
	cmd.Flags().StringVar(&createdBy, "created-by", "", "user id recorded as the quiz creator")
	return cmd
}
