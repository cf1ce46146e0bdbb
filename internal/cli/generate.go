package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nebulalearn/nebula/internal/service"
	"github.com/nebulalearn/nebula/pkg/utils"
)

func newGenerateCmd(svc *service.Service) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "generate <topic-id>",
		Short: "Generate new flashcards for a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flashcards, err := svc.GenerateFlashcards(cmd.Context(), args[0], count, utils.NowUTC())
			if err != nil {
				return err
			}

			fmt.Printf("generated %d flashcards for %s\n", len(flashcards), args[0])
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "c", 3, "Number of flashcards to request")

	return cmd
}

func newSkipCmd(svc *service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "skip <flashcard-id>",
		Short: "Exclude a flashcard from scheduling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return svc.SkipFlashcard(cmd.Context(), args[0])
		},
	}
}

func newRestoreCmd(svc *service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <flashcard-id>",
		Short: "Bring a skipped flashcard back into scheduling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return svc.RestoreFlashcard(cmd.Context(), args[0])
		},
	}
}
