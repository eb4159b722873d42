package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/xaenox/assistant-bot/internal/assistant"
	"github.com/xaenox/assistant-bot/internal/bot"
	"github.com/xaenox/assistant-bot/internal/catalog"
	"github.com/xaenox/assistant-bot/internal/metrics"
	"github.com/xaenox/assistant-bot/internal/storage"
	"github.com/xaenox/assistant-bot/internal/telegram"
	"github.com/xaenox/assistant-bot/pkg/config"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newRootCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
	)

	cmd := &cobra.Command{
		Use:           "assistant-bot",
		Short:         "Telegram menu bot with an OpenAI assistant behind it",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", envFile, err)
				return err
			}

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
				return err
			}

			logger, err := newLogger(cfg.Log)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := run(ctx, cfg, logger); err != nil {
				logger.Error("Bot stopped with error", zap.Error(err))
				return err
			}
			logger.Info("Bot was stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (optional)")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before reading the environment")
	return cmd
}

// loadEnvFile loads path into the environment; a missing file is fine.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	replies, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewBotMetrics(reg)

	a, err := newAssistant(cfg, m, logger)
	if err != nil {
		return err
	}

	transport, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.PollTimeout, cfg.Telegram.Debug, logger)
	if err != nil {
		return err
	}

	b := bot.New(transport, replies, a, cfg.Dispatcher.MaxConcurrency, m, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The metrics server has nothing to serve once the bot stops.
		defer cancel()
		return b.Start(ctx)
	})
	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return metrics.Serve(ctx, cfg.Metrics.Addr, reg, logger)
		})
	}
	return g.Wait()
}

// newAssistant returns nil when AI handling is disabled.
func newAssistant(cfg *config.Config, m *metrics.BotMetrics, logger *zap.Logger) (assistant.Assistant, error) {
	mode, warnings, err := cfg.ResolveMode()
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Warn(w)
	}

	switch mode {
	case assistant.ModeStateful:
		logger.Info("Assistant mode enabled",
			zap.String("mode", string(mode)),
			zap.String("assistant_id", maskID(cfg.OpenAI.AssistantID)))
		client := assistant.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
		return assistant.NewThreadAssistant(
			client,
			cfg.OpenAI.AssistantID,
			storage.NewMemoryStorage(),
			assistant.PollConfig{
				Interval: cfg.OpenAI.PollInterval,
				Timeout:  cfg.OpenAI.RunTimeout,
			},
			m,
			logger,
		), nil
	case assistant.ModeStateless:
		logger.Info("Assistant mode enabled",
			zap.String("mode", string(mode)),
			zap.String("model", cfg.OpenAI.Model))
		client := assistant.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
		return assistant.NewChatAssistant(
			client,
			cfg.OpenAI.Model,
			cfg.OpenAI.SystemPrompt,
			cfg.OpenAI.MaxTokens,
			cfg.OpenAI.Temperature,
			cfg.OpenAI.RunTimeout,
			logger,
		), nil
	default:
		logger.Warn("Assistant is disabled; only menu buttons will be answered")
		return nil, nil
	}
}

func maskID(id string) string {
	if len(id) <= 4 {
		return id
	}
	return id[:4] + "..."
}
