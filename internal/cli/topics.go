package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nebulalearn/nebula/internal/service"
	"github.com/nebulalearn/nebula/pkg/utils"
)

func newTopicsCmd(svc *service.Service) *cobra.Command {
	var stateFilter string

	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List topics with their derived knowledge state",
		RunE: func(cmd *cobra.Command, args []string) error {
			overview, err := svc.GetOverview(cmd.Context(), utils.NowUTC())
			if err != nil {
				return err
			}

			for _, entry := range overview.Topics {
				if stateFilter != "" && string(entry.State) != stateFilter {
					continue
				}
				fmt.Printf("%-14s %-30s %s\n", entry.State, entry.Topic.Name, entry.Topic.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&stateFilter, "state", "s", "", "Only show topics in this state")

	return cmd
}

func newTopicCmd(svc *service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "topic <topic-id>",
		Short: "Show one topic's state, retention and due cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := svc.GetTopicDetail(cmd.Context(), args[0], utils.NowUTC())
			if err != nil {
				return err
			}

			fmt.Printf("%s (%s)\n", detail.Topic.Name, detail.Topic.Cluster)
			fmt.Printf("state:      %s\n", detail.State)
			fmt.Printf("retention:  %.0f%%\n", detail.RetentionScore*100)
			fmt.Printf("flashcards: %d (%d due)\n", detail.FlashcardCount, detail.DueCount)
			return nil
		},
	}
}

func newVisitCmd(svc *service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "visit <topic-id>",
		Short: "Record that a topic was opened",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return svc.VisitTopic(cmd.Context(), args[0], utils.NowUTC())
		},
	}
}

func newRevealCmd(svc *service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "reveal <topic-id>",
		Short: "Mark a topic as revealed without opening it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return svc.MarkExplored(cmd.Context(), args[0])
		},
	}
}

func newCaptureCmd(svc *service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "capture <topic-id> <card-id>",
		Short: "Claim a content fragment for a topic",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return svc.CaptureFragment(cmd.Context(), args[0], args[1])
		},
	}
}
