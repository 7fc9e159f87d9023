package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/amankumarsingh77/slideshow-encoder/internal/config"
	"github.com/amankumarsingh77/slideshow-encoder/internal/models"
	"github.com/amankumarsingh77/slideshow-encoder/internal/server"
	"github.com/amankumarsingh77/slideshow-encoder/pkg/logger"
	"golang.org/x/sync/errgroup"
)

type App struct {
	di *dependencyInjector
}

func New(cfg *config.Config, log logger.Logger) *App {
	return &App{di: newDI(cfg, log)}
}

func (a *App) Close() error {
	return a.di.Close()
}

// Serve runs the HTTP API until ctx ends. In-flight jobs see the same
// cancellation and Serve waits for them to record their final status.
func (a *App) Serve(ctx context.Context) error {
	if err := os.MkdirAll(a.di.cfg.Staging.Dir, 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	uc, err := a.di.Usecase(ctx)
	if err != nil {
		return err
	}
	pipeline, err := a.di.Pipeline(ctx)
	if err != nil {
		return err
	}

	srv := server.NewServer(a.di.cfg, uc, a.di.logger)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := a.di.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		waitCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := pipeline.Wait(waitCtx); err != nil {
			a.di.logger.Warnf("jobs still running at shutdown: %v", err)
		}
		return nil
	})
	return g.Wait()
}

// RenderOnce submits one job through the regular pipeline and blocks until it
// reaches a terminal state.
func (a *App) RenderOnce(ctx context.Context, input *models.CreateVideoInput) (string, models.StatusResponse, error) {
	if err := os.MkdirAll(a.di.cfg.Staging.Dir, 0o755); err != nil {
		return "", models.StatusResponse{}, fmt.Errorf("create staging dir: %w", err)
	}
	uc, err := a.di.Usecase(ctx)
	if err != nil {
		return "", models.StatusResponse{}, err
	}
	pipeline, err := a.di.Pipeline(ctx)
	if err != nil {
		return "", models.StatusResponse{}, err
	}

	id, err := uc.CreateVideo(ctx, input)
	if err != nil {
		return "", models.StatusResponse{}, err
	}
	if err := pipeline.Wait(context.WithoutCancel(ctx)); err != nil {
		return id, models.StatusResponse{}, err
	}

	status := uc.GetStatus(ctx, id)
	if status.Status == models.JobStatusFailed {
		return id, status, errors.New(status.Error)
	}
	return id, status, nil
}
