package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"menu-planner/internal/api"
	"menu-planner/internal/app"
	"menu-planner/internal/telegram"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the Telegram webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, serve)
		},
	}
}

func serve(ctx context.Context, a *app.App) error {
	var (
		bot     *telegram.Bot
		webhook http.Handler
	)
	if a.Config.TelegramEnabled() {
		var err error
		bot, err = telegram.NewBot(a, logger.Named("telegram"))
		if err != nil {
			return fmt.Errorf("failed to initialize telegram bot: %w", err)
		}
		webhook = bot
	} else {
		logger.Info("TELEGRAM_BOT_TOKEN not set, bot disabled")
	}

	srv := &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           api.NewRouter(a, webhook),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srvErr := srv.Shutdown(shutdownCtx)
		// Webhook updates keep running after their request returned; the
		// app must stay open until they finish.
		if bot != nil {
			if err := bot.Shutdown(shutdownCtx); err != nil {
				logger.Warn("telegram updates cut short", zap.Error(err))
			}
		}
		if srvErr != nil {
			return fmt.Errorf("server forced to shutdown: %w", srvErr)
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return err
	}
	logger.Info("server exiting")
	return nil
}
