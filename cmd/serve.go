package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"domaincheck/internal/api"
	"domaincheck/internal/api/handler/v1handler"
	"domaincheck/internal/checker"
	"domaincheck/internal/config"
	"domaincheck/internal/measurer"
	"domaincheck/internal/project"
	"domaincheck/internal/settings"
	"domaincheck/internal/tldsync"
	"domaincheck/internal/worker"
	"domaincheck/pkg/linkmetrics/moz"
	"domaincheck/pkg/lock"
	"domaincheck/pkg/logger"
	"domaincheck/pkg/mailer"
	"domaincheck/pkg/registrar/namecheap"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config, deps v1handler.Deps) func(ctx context.Context) {
	server, err := api.NewServer(api.Deps{Deps: deps}, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...")
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server and background workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			redisClient, closeRedis := getRedis(ctx, cfg)
			defer closeRedis()

			locker := lock.New(redisClient, lock.Options{TTL: cfg.Redis.LockTTL})
			loader := settings.NewLoader(strg)
			smtpMailer := mailer.NewSMTP(mailer.SMTPOptions{
				Host:     cfg.SMTP.Host,
				Port:     cfg.SMTP.Port,
				Username: cfg.SMTP.Username,
				Password: cfg.SMTP.Password,
				StartTLS: cfg.SMTP.UseTLS,
			})

			httpClient := &http.Client{Timeout: time.Minute}
			registrarClient := namecheap.New(httpClient, namecheap.Options{})
			metricsClient := moz.New(httpClient)

			projects := project.New(strg, loader, smtpMailer, project.Options{From: cfg.SMTP.From})
			chk := checker.New(strg, loader, registrarClient, locker, projects)
			msr := measurer.New(strg, loader, metricsClient, locker, projects)
			syncer := tldsync.New(strg, loader, registrarClient, smtpMailer, tldsync.Options{From: cfg.SMTP.From})

			riverClient, err := worker.Start(ctx, strg.Pool, strg, chk, msr, syncer, worker.Options{
				MaxWorkers:             cfg.Worker.MaxWorkers,
				ReconcileInterval:      cfg.Worker.ReconcileInterval,
				MetricsSweepInterval:   cfg.Worker.MetricsSweepInterval,
				LastUpdatePollInterval: cfg.Worker.LastUpdatePollInterval,
			})
			if err != nil {
				logger.Fatal(ctx, "could not start workers", zap.Error(err))
			}

			stopWebserver := setupServer(ctx, cfg, v1handler.Deps{
				Projects: projects,
				Measurer: msr,
				Storage:  strg,
			})

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)

			logger.Info(shutdownCtx, "stopping workers...")
			if err := riverClient.Stop(shutdownCtx); err != nil {
				logger.Error(shutdownCtx, "could not stop workers", zap.Error(err))
			}
		},
	}

	return cmd
}
