package server

import (
	"net/http"

	"github.com/amankumarsingh77/slideshow-encoder/internal/middleware"
	slideshowHttp "github.com/amankumarsingh77/slideshow-encoder/internal/slideshow/delivery/http"
	"github.com/amankumarsingh77/slideshow-encoder/pkg/utils"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

func (s *Server) MapHandlers(e *echo.Echo) error {
	origins := []string{s.cfg.Server.AllowedOrigin}
	if s.cfg.Server.AllowedOrigin == "" {
		origins = []string{"*"}
	}
	mw := middleware.NewMiddlewareManager(s.cfg, origins, s.logger)

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		StackSize:         1 << 10,
		DisablePrintStack: true,
		DisableStackAll:   true,
	}))
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(mw.RequestLoggerMiddleware)
	e.Use(mw.CORS())
	e.Use(mw.BodyLimit())

	slideshowHandlers := slideshowHttp.NewSlideshowHandler(s.slideshowUC, s.logger)
	slideshowHttp.MapSlideshowRoutes(e, slideshowHandlers)

	e.GET("/health", func(c echo.Context) error {
		s.logger.Infof("Health check RequestID: %s", utils.GetRequestID(c))
		return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	})
	return nil
}
