package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"hearth/internal/config"
	"hearth/internal/histories"
	"hearth/internal/importer"
	"hearth/internal/logging"
	"hearth/internal/notifications"
	"hearth/internal/services"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var filePath string
	var serviceName string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import credit card statement CSVs into the histories database",
		Long: "Import walks <inbox>/<service>/*.csv for every configured service and\n" +
			"loads each statement into the credit_histories table. Files already\n" +
			"imported are skipped, and a broken file never stops the rest of the\n" +
			"batch. Use --file with --service to import one explicit statement.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			filePath = strings.TrimSpace(filePath)
			serviceName = strings.ToLower(strings.TrimSpace(serviceName))
			if filePath != "" && serviceName == "" {
				return services.Wrap(services.ErrValidation, "import", "", "--service is required with --file", nil)
			}
			if filePath == "" && serviceName != "" {
				return services.Wrap(services.ErrValidation, "import", "", "--service only applies with --file", nil)
			}

			detail := cfg.Import.InboxDir
			if filePath != "" {
				detail = serviceName + "/" + filepath.Base(filePath)
			}

			return ctx.runJournaled(cmd, "import", detail, func(runCtx context.Context, cfg *config.Config, logger *slog.Logger) (string, error) {
				summary, err := runImport(runCtx, cfg, logger, serviceName, filePath)
				if err != nil {
					return "", err
				}

				out := cmd.OutOrStdout()
				for _, report := range summary.Reports {
					switch report.Status {
					case importer.StatusImported:
						if report.SkippedRows > 0 {
							fmt.Fprintf(out, "Imported %s/%s: %d rows (%d rows skipped)\n", report.Service, report.File, report.Rows, report.SkippedRows)
						} else {
							fmt.Fprintf(out, "Imported %s/%s: %d rows\n", report.Service, report.File, report.Rows)
						}
					case importer.StatusDuplicate:
						fmt.Fprintf(out, "Skipped %s/%s: already imported\n", report.Service, report.File)
					case importer.StatusFailed:
						fmt.Fprintf(out, "Failed %s/%s: %v\n", report.Service, report.File, report.Err)
					}
				}

				if len(summary.Reports) == 0 {
					fmt.Fprintln(out, "No statement files found")
					return "no statement files found", nil
				}

				outcome := fmt.Sprintf("%d imported, %d already imported, %d failed, %d rows",
					summary.Imported(), summary.Duplicates(), summary.Failed(), summary.Rows())
				fmt.Fprintln(out, outcome)

				if summary.Imported() > 0 {
					notifier := notifications.NewService(cfg)
					if err := notifier.NotifyImportCompleted(runCtx, summary.Imported(), summary.Rows()); err != nil {
						logger.Warn("discord notification failed", logging.Error(err))
					}
				}

				// Batch mode reports failed files without failing the
				// command; an explicitly requested file does fail it.
				if filePath != "" {
					return outcome, summary.Err()
				}
				return outcome, nil
			})
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "Import a single statement file instead of walking the inbox")
	cmd.Flags().StringVar(&serviceName, "service", "", "Service tag for --file (e.g. vpass or enavi)")
	return cmd
}

func runImport(ctx context.Context, cfg *config.Config, logger *slog.Logger, serviceName, filePath string) (importer.Summary, error) {
	store, err := histories.Open(ctx, cfg)
	if err != nil {
		return importer.Summary{}, err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return importer.Summary{}, services.Wrap(services.ErrTransient, "import", "ensure schema", "", err)
	}

	imp := importer.New(store, logger)
	if filePath != "" {
		resolved, err := config.ExpandPath(filePath)
		if err != nil {
			return importer.Summary{}, err
		}
		report := imp.ImportFile(ctx, serviceName, resolved)
		return importer.Summary{Reports: []importer.FileReport{report}}, nil
	}
	return imp.ImportDir(ctx, cfg.Import.InboxDir, cfg.Import.Services)
}
