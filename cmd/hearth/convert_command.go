package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"hearth/internal/config"
	"hearth/internal/convert"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "convert",
		Short: "Repack zip comic archives into cbz files",
		Long: "Convert turns every zip archive in the source directory into a cbz\n" +
			"in the output directory, renumbering pages as 001, 002, and so on.\n" +
			"Archives whose output already exists are skipped, and one broken\n" +
			"archive never stops the rest.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			return ctx.runJournaled(cmd, "convert", cfg.Convert.SourceDir, func(runCtx context.Context, cfg *config.Config, logger *slog.Logger) (string, error) {
				results, err := convert.New(cfg, logger).ConvertDir(runCtx)
				if err != nil {
					return "", err
				}

				out := cmd.OutOrStdout()
				converted, skipped, failed := 0, 0, 0
				for _, result := range results {
					switch result.Status {
					case convert.StatusConverted:
						converted++
						fmt.Fprintf(out, "Converted %s -> %s (%d pages)\n",
							filepath.Base(result.Source), filepath.Base(result.Output), result.Pages)
					case convert.StatusSkipped:
						skipped++
						fmt.Fprintf(out, "Skipped %s: output already exists\n", filepath.Base(result.Source))
					case convert.StatusFailed:
						failed++
						fmt.Fprintf(out, "Failed %s: %v\n", filepath.Base(result.Source), result.Err)
					}
				}

				if len(results) == 0 {
					fmt.Fprintln(out, "No zip archives found")
					return "no zip archives found", nil
				}

				outcome := fmt.Sprintf("%d converted, %d skipped, %d failed", converted, skipped, failed)
				fmt.Fprintln(out, outcome)
				return outcome, nil
			})
		},
	}
}
