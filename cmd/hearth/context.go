package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"hearth/internal/config"
	"hearth/internal/journal"
	"hearth/internal/logging"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

// configPath returns the --config flag value, or empty for the default
// search path.
func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := c.applyLogLevel(cfg); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) applyLogLevel(cfg *config.Config) error {
	if c.logLevelFlag == nil {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
	if level == "" {
		return nil
	}
	switch level {
	case "debug", "info", "warn", "error":
		cfg.Logging.Level = level
		return nil
	default:
		return fmt.Errorf("unknown log level %q (expected debug, info, warn, or error)", level)
	}
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// runJournaled wraps a command body with run journal bookkeeping. The body
// returns an outcome summary that replaces the initial detail on the journal
// row. Journal problems are logged and swallowed; they never change the
// command's result.
func (c *commandContext) runJournaled(cmd *cobra.Command, name, detail string, body func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (string, error)) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	store, err := journal.Open(cfg)
	if err != nil {
		logger.Warn("run journal unavailable", logging.Error(err))
		store = nil
	} else {
		defer store.Close()
	}

	var run *journal.Run
	if store != nil {
		run, err = store.Begin(ctx, name, detail)
		if err != nil {
			logger.Warn("record run start", logging.Error(err))
			run = nil
		}
	}

	outcome, bodyErr := body(ctx, cfg, logger)

	if store != nil && run != nil {
		if outcome != "" {
			run.Detail = outcome
		}
		if err := store.Finish(ctx, run, bodyErr); err != nil {
			logger.Warn("record run outcome", logging.Error(err))
		}
	}
	return bodyErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
