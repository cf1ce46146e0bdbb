package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nebulalearn/nebula/internal/models"
	"github.com/nebulalearn/nebula/internal/service"
	"github.com/nebulalearn/nebula/pkg/utils"
)

func newImportCmd(svc *service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "import <topics.json>",
		Short: "Load the topic reference dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contents, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read topics file (path: %s): %w", args[0], err)
			}

			var topics []models.Topic
			if err := json.Unmarshal(contents, &topics); err != nil {
				return fmt.Errorf("parse topics file (path: %s): %w", args[0], err)
			}

			imported, err := svc.ImportTopics(cmd.Context(), topics)
			if err != nil {
				return err
			}

			fmt.Printf("imported %d topics\n", imported)
			return nil
		},
	}
}

func newStatsCmd(svc *service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show topic state counts and the due queue size",
		RunE: func(cmd *cobra.Command, args []string) error {
			overview, err := svc.GetOverview(cmd.Context(), utils.NowUTC())
			if err != nil {
				return err
			}

			states := []models.TopicState{
				models.StateUndiscovered,
				models.StateDiscovered,
				models.StateLearning,
				models.StateStudied,
				models.StateMastered,
				models.StateFading,
			}
			for _, state := range states {
				fmt.Printf("%-14s %d\n", state, overview.StateCounts[state])
			}
			fmt.Printf("\n%d flashcards due\n", overview.DueCount)
			return nil
		},
	}
}
