// Package cli implements the nebula command surface. Commands are thin
// glue over the service; no scheduling or classification logic lives here.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/nebulalearn/nebula/internal/service"
)

func NewRootCmd(svc *service.Service) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "nebula",
		Short:         "Personal learning app: topics, flashcards, spaced repetition",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newStudyCmd(svc),
		newReviewCmd(svc),
		newTopicsCmd(svc),
		newTopicCmd(svc),
		newVisitCmd(svc),
		newRevealCmd(svc),
		newCaptureCmd(svc),
		newGenerateCmd(svc),
		newSkipCmd(svc),
		newRestoreCmd(svc),
		newImportCmd(svc),
		newStatsCmd(svc),
	)

	return rootCmd
}
