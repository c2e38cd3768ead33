package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/turtacn/Graphyte-Intelligence/internal/application/screening"
)

func newTrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Fit a new risk model from the training corpus and persist it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, false, func(ctx context.Context, svc screening.Service) error {
				summary, err := svc.Retrain(ctx, screening.TriggerManual)
				if err != nil {
					return err
				}
				return PrintResult(cmd, (*summaryView)(summary))
			})
		},
	}
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Evaluate the active model against the training corpus",
		Long: "Print per-class precision, recall and F1, the macro averages, accuracy and\n" +
			"the confusion matrix of the persisted model (trained first if none exists).",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, true, func(ctx context.Context, svc screening.Service) error {
				report, err := svc.QualityReport(ctx)
				if err != nil {
					return err
				}
				return PrintResult(cmd, (*qualityView)(report))
			})
		},
	}
}

//Personal.AI order the ending
