package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"hearth/internal/config"
	"hearth/internal/logging"
	"hearth/internal/notifications"
	"hearth/internal/services"
	"hearth/internal/speech"
)

func newSayCommand(ctx *commandContext) *cobra.Command {
	var (
		force    bool
		discord  bool
		language string
	)

	cmd := &cobra.Command{
		Use:   "say <text>...",
		Short: "Announce a text on the cast speaker",
		Long: "Say synthesizes the text and plays it on the configured cast device.\n" +
			"Announcements inside the quiet window are skipped unless --force is\n" +
			"given. With --discord the text is also posted to the webhook, quiet\n" +
			"hours or not.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return services.Wrap(services.ErrValidation, "say", "", "nothing to say", nil)
			}

			return ctx.runJournaled(cmd, "say", text, func(runCtx context.Context, cfg *config.Config, logger *slog.Logger) (string, error) {
				if language != "" {
					cfg.Speech.Language = language
				}
				if discord {
					if err := cfg.RequireWebhook(); err != nil {
						return "", err
					}
				}

				announcer, err := speech.NewAnnouncer(cfg, logger)
				if err != nil {
					return "", err
				}

				// The webhook gets the text even when quiet hours would
				// suppress the spoken announcement.
				if discord {
					if err := notifications.NewService(cfg).Say(runCtx, text); err != nil {
						logger.Warn("discord notification failed", logging.Error(err))
					}
				}

				result, err := announcer.Announce(runCtx, text, force)
				if err != nil {
					return "", err
				}

				out := cmd.OutOrStdout()
				if result.Suppressed {
					fmt.Fprintf(out, "Quiet hours (%s), announcement suppressed\n", announcer.QuietWindow())
					return fmt.Sprintf("suppressed by quiet hours (%s)", announcer.QuietWindow()), nil
				}

				fmt.Fprintf(out, "Announced on %s: %s\n", cfg.Speech.DeviceAddr, result.Text)
				return "announced", nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "announce even during quiet hours")
	cmd.Flags().BoolVar(&discord, "discord", false, "also post the text to the Discord webhook")
	cmd.Flags().StringVar(&language, "lang", "", "speech language (default from config)")
	return cmd
}
