package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/Graphyte-Intelligence/internal/application/screening"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		live          bool
		limit         int
		minConfidence float64
		typologies    []string
	)

	cmd := &cobra.Command{
		Use:   "analyze <entity>",
		Short: "Screen an entity for adverse media",
		Long: "Resolve the entity against the local corpus (or the live retriever with --live),\n" +
			"classify every article and print the risk score with the supporting evidence.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &screening.AnalyzeRequest{
				Entity:     strings.Join(args, " "),
				Mode:       string(screening.ModeLocal),
				Limit:      limit,
				Typologies: typologies,
			}
			if live {
				req.Mode = string(screening.ModeLive)
			}
			if cmd.Flags().Changed("min-confidence") {
				req.MinConfidence = &minConfidence
			}

			return withService(cmd, true, func(ctx context.Context, svc screening.Service) error {
				sc, err := svc.Analyze(ctx, req)
				if err != nil {
					return err
				}
				return PrintResult(cmd, (*screeningView)(sc))
			})
		},
	}

	cmd.Flags().BoolVar(&live, "live", false, "retrieve articles from the live source instead of the local corpus")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of live articles (default from config)")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0.5, "hide evidence below this confidence")
	cmd.Flags().StringSliceVar(&typologies, "typology", nil, "only show evidence of these typologies (repeatable)")
	return cmd
}

func newExplainCmd() *cobra.Command {
	var typology string

	cmd := &cobra.Command{
		Use:   "explain <snippet>",
		Short: "Show which words push a snippet towards a typology",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, true, func(ctx context.Context, svc screening.Service) error {
				exp, err := svc.Explain(ctx, &screening.ExplainRequest{
					Snippet:  strings.Join(args, " "),
					Typology: typology,
				})
				if err != nil {
					return err
				}
				return PrintResult(cmd, (*explanationView)(exp))
			})
		},
	}

	cmd.Flags().StringVar(&typology, "typology", "", "typology to explain [REQUIRED]")
	_ = cmd.MarkFlagRequired("typology")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <entity>",
		Short: "List past screenings of a resolved entity",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, false, func(ctx context.Context, svc screening.Service) error {
				records, err := svc.ListScreenings(ctx, strings.Join(args, " "), limit)
				if err != nil {
					return err
				}
				return PrintResult(cmd, historyList(records))
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of records")
	return cmd
}

func newEntitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List the entities known to the local corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, false, func(ctx context.Context, svc screening.Service) error {
				names, err := svc.Entities(ctx)
				if err != nil {
					return err
				}
				return PrintResult(cmd, entityList(names))
			})
		},
	}
}

func newTypologiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "typologies",
		Short: "List the risk typologies and their severity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, false, func(ctx context.Context, svc screening.Service) error {
				return PrintResult(cmd, typologyList(svc.Typologies()))
			})
		},
	}
}

//Personal.AI order the ending
