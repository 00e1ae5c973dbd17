package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/sports-meet/models"
	"github.com/Dosada05/sports-meet/repositories"
	"github.com/Dosada05/sports-meet/services"
	"github.com/Dosada05/sports-meet/storage"
	"github.com/spf13/cobra"
)

func mergeCmd() *cobra.Command {
	var input services.MergeInput
	cmd := &cobra.Command{
		Use:   "merge",
		Args:  cobra.NoArgs,
		Short: "Rebuild the aggregate document from the schedule and roster fragments",
		Long: `merge reads every schedule fragment, roster fragment and the class mapping from
the configured store and writes the aggregate document, backing up the previous one.
With --dry-run the document is printed to stdout instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			ctx := cmd.Context()

			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to open document store: %w", err)
			}
			defer store.Close()

			docs := services.NewDocumentService(
				repositories.NewAggregateRepository(store, cfg.Keys),
				repositories.NewFragmentRepository(store, cfg.Keys),
				repositories.NewBackupRepository(store, cfg.Keys),
				storage.NewLocker(),
				nil,
				services.DocumentServiceConfig{Layout: cfg.Layout, MaxBackups: cfg.MaxBackups},
				logger,
			)

			res, err := docs.RunMerge(ctx, input)
			if err != nil {
				if errors.Is(err, services.ErrDuplicateRosterName) && res != nil {
					for _, d := range res.Report.Duplicates {
						logger.Error("duplicate roster name", slog.String("name", d.Name), slog.Any("keys", d.Keys))
					}
				}
				return err
			}

			if input.DryRun {
				out, err := models.EncodeDocument(res.Document)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s: %d days, %d rosters, %d classes backfilled, %d skipped\n",
				res.Write.Key, res.Report.Days, res.Report.Rosters, res.Report.Backfilled, len(res.Report.Skipped))
			return nil
		},
	}
	cmd.Flags().BoolVar(&input.Strict, "strict", false, "fail when two roster fragments share a name")
	cmd.Flags().BoolVar(&input.DryRun, "dry-run", false, "print the merged document instead of writing it")
	return cmd
}
