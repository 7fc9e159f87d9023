package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// CORS allows the configured origins to call the public API.
func (mw *MiddlewareManager) CORS() echo.MiddlewareFunc {
	return echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: mw.origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderXRequestID},
		MaxAge:       300,
	})
}

func (mw *MiddlewareManager) BodyLimit() echo.MiddlewareFunc {
	limit := mw.cfg.Server.BodyLimit
	if limit == "" {
		limit = "2M"
	}
	return echomw.BodyLimit(limit)
}
