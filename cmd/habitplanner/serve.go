package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"habit-planner/internal/bizday"
	"habit-planner/internal/bot"
	"habit-planner/internal/service"
	"habit-planner/internal/web"
)

const (
	jobTimeout      = time.Minute
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the scheduler and the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.serve(cmd.Context())
	},
}

func (a *app) serve(ctx context.Context) error {
	if created, err := a.routines.ExpandBusinessDate(ctx); err != nil {
		a.logger.Error("initial routine expansion failed", "err", err)
	} else {
		a.logger.Info("initial routine expansion", "created", created)
	}

	var telegramBot *bot.Bot
	if a.cfg.BotEnabled() {
		b, err := bot.New(a.cfg.TelegramToken, a.cfg.TelegramChatID, bot.Services{
			Backlog: a.backlog,
			Daily:   a.daily,
			Sprints: a.sprints,
			Digest:  a.digest,
		}, a.clock, a.logger)
		if err != nil {
			return err
		}
		telegramBot = b
	}

	scheduler := service.NewSchedulerService(bizday.Location, a.logger)
	if _, err := scheduler.ScheduleDailyJob("generate", a.cfg.GenerateTime, jobTimeout, func(ctx context.Context) error {
		_, err := a.routines.ExpandBusinessDate(ctx)
		return err
	}); err != nil {
		return err
	}
	if telegramBot != nil {
		if _, err := scheduler.ScheduleDailyJob("digest", a.cfg.DigestTime, jobTimeout, telegramBot.SendDigest); err != nil {
			return err
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr: a.cfg.HTTPAddr,
		Handler: web.NewServer(web.Services{
			Backlog:  a.backlog,
			Daily:    a.daily,
			Routines: a.routines,
			Sprints:  a.sprints,
		}, a.logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		a.logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if telegramBot != nil {
		p.Go(func(ctx context.Context) error {
			return telegramBot.Start(ctx)
		})
	}

	err := p.Wait()
	a.logger.Info("shutdown complete")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
