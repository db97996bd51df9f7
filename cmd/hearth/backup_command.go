package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"hearth/internal/backup"
	"hearth/internal/config"
	"hearth/internal/logging"
	"hearth/internal/notifications"
)

func newBackupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Dump the histories database and upload it to S3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			return ctx.runJournaled(cmd, "backup", cfg.MySQL.Database, func(runCtx context.Context, cfg *config.Config, logger *slog.Logger) (string, error) {
				service, err := backup.NewService(cfg, logger)
				if err != nil {
					return "", err
				}

				notifier := notifications.NewService(cfg)
				result, err := service.Run(runCtx)
				if err != nil {
					if notifyErr := notifier.NotifyError(runCtx, err, "backup"); notifyErr != nil {
						logger.Warn("discord notification failed", logging.Error(notifyErr))
					}
					return "", err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Backup uploaded to %s (%d bytes in %s)\n",
					result.Location(), result.Bytes, result.Duration.Round(time.Millisecond))

				if err := notifier.NotifyBackupCompleted(runCtx, result.Location(), result.Bytes, result.Duration); err != nil {
					logger.Warn("discord notification failed", logging.Error(err))
				}
				return result.Location(), nil
			})
		},
	}
}
