package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/amankumarsingh77/slideshow-encoder/internal/config"
	"github.com/amankumarsingh77/slideshow-encoder/internal/slideshow"
	"github.com/amankumarsingh77/slideshow-encoder/pkg/logger"
	"github.com/labstack/echo/v4"
)

const (
	maxHeaderBytes = 1 << 20
	ctxTimeout     = 5 * time.Second
)

type Server struct {
	echo        *echo.Echo
	cfg         *config.Config
	slideshowUC slideshow.UseCase
	logger      logger.Logger
}

func NewServer(cfg *config.Config, slideshowUC slideshow.UseCase, logger logger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return &Server{
		echo:        e,
		cfg:         cfg,
		slideshowUC: slideshowUC,
		logger:      logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.MapHandlers(s.echo); err != nil {
		return err
	}

	server := s.echo.Server
	server.Addr = s.cfg.Server.Port
	server.ReadTimeout = s.cfg.Server.ReadTimeout
	server.WriteTimeout = s.cfg.Server.WriteTimeout
	server.IdleTimeout = s.cfg.Server.IdleTimeout
	server.MaxHeaderBytes = maxHeaderBytes

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Server is listening on PORT: %s", s.cfg.Server.Port)
		if err := s.echo.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = ctxTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.logger.Infof("shutting down server")
	return s.echo.Shutdown(shutdownCtx)
}
