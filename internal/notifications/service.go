package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hearth/internal/config"
)

const userAgent = "Hearth/0.1.0"

// Service defines the notification surface exposed to hearth commands.
type Service interface {
	NotifyImportCompleted(ctx context.Context, files, rows int) error
	NotifyBackupCompleted(ctx context.Context, location string, size int64, duration time.Duration) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	Say(ctx context.Context, text string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by a Discord webhook when
// configured. When no webhook is configured, a noop implementation is
// returned.
func NewService(cfg *config.Config) Service {
	webhook := strings.TrimSpace(cfg.Notifications.WebhookURL)
	if webhook == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &discordService{
		webhook: webhook,
		client:  &http.Client{Timeout: timeout},
	}
}

type discordService struct {
	webhook string
	client  *http.Client
}

func (d *discordService) NotifyImportCompleted(ctx context.Context, files, rows int) error {
	return d.send(ctx, fmt.Sprintf("Statement import complete: %d files, %d rows", files, rows))
}

func (d *discordService) NotifyBackupCompleted(ctx context.Context, location string, size int64, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration <= 0 {
		duration = time.Second
	}
	return d.send(ctx, fmt.Sprintf("Database backup complete: %s (%s in %s)", location, formatBytes(size), duration))
}

func (d *discordService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return d.send(ctx, builder.String())
}

func (d *discordService) Say(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return d.send(ctx, text)
}

func (d *discordService) TestNotification(ctx context.Context) error {
	return d.send(ctx, "Hearth notification test")
}

func (d *discordService) send(ctx context.Context, content string) error {
	if d == nil || d.client == nil {
		return nil
	}

	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return fmt.Errorf("encode discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhook, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build discord request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send discord notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

type noopService struct{}

func (noopService) NotifyImportCompleted(context.Context, int, int) error                     { return nil }
func (noopService) NotifyBackupCompleted(context.Context, string, int64, time.Duration) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                          { return nil }
func (noopService) Say(context.Context, string) error                                         { return nil }
func (noopService) TestNotification(context.Context) error                                    { return nil }
