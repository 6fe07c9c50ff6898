package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dashboard/internal/api"
	"dashboard/internal/config"
	"dashboard/internal/engine"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	// 2. Server starts with no data and answers 503 until the load finishes
	h := api.NewHandler(cfg, nil)
	e := api.NewServer(cfg, h)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	// 3. Load the dataset in the background
	g.Go(func() error {
		t0 := time.Now()
		logrus.WithField("path", cfg.DataPath).Info("loading dataset")
		table, err := engine.Load(cfg.DataPath)
		if err != nil {
			return err
		}
		h.SetData(table)
		logrus.WithFields(logrus.Fields{
			"rows":    table.Len(),
			"elapsed": time.Since(t0),
		}).Info("dataset ready")
		return nil
	})

	// 4. Serve until interrupted or the load fails
	g.Go(func() error {
		logrus.WithField("addr", cfg.Addr).Info("server listening")
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Fatal("dashboard stopped")
	}
	logrus.Info("dashboard stopped")
}
