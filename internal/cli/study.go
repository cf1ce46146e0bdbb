package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nebulalearn/nebula/internal/service"
	"github.com/nebulalearn/nebula/internal/service/srs"
	"github.com/nebulalearn/nebula/pkg/utils"
)

func newStudyCmd(svc *service.Service) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "study",
		Short: "List flashcards due for review, most overdue first",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := utils.NowUTC()
			due, err := svc.DueFlashcards(cmd.Context(), now)
			if err != nil {
				return err
			}

			if len(due) == 0 {
				fmt.Println("Nothing due. Come back later.")
				return nil
			}

			if limit > 0 && len(due) > limit {
				due = due[:limit]
			}

			for _, flashcard := range due {
				overdue := int(now.Sub(flashcard.NextReviewDate).Hours() / 24)
				fmt.Printf("%s  box %d  %s  due %dd ago\n", flashcard.ID, flashcard.LeitnerBox, flashcard.StudyState, overdue)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of cards to list (0 = all)")

	return cmd
}

func newReviewCmd(svc *service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "review <flashcard-id> <quality>",
		Short: "Rate one review: 0=again 1=hard 2=good 3=easy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quality, err := parseQuality(args[1])
			if err != nil {
				return err
			}

			flashcard, err := svc.ReviewFlashcard(cmd.Context(), args[0], quality, utils.NowUTC())
			if err != nil {
				return err
			}

			fmt.Printf("%s: next review in %dd (ease %.2f, box %d, %s)\n",
				flashcard.ID, flashcard.IntervalDays, flashcard.EaseFactor, flashcard.LeitnerBox, flashcard.StudyState)
			return nil
		},
	}
}

func parseQuality(arg string) (srs.Quality, error) {
	switch arg {
	case "again":
		return srs.QualityAgain, nil
	case "hard":
		return srs.QualityHard, nil
	case "good":
		return srs.QualityGood, nil
	case "easy":
		return srs.QualityEasy, nil
	}

	value, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("parse quality %q: %w", arg, err)
	}
	return srs.Quality(value), nil
}
