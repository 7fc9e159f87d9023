package http

import (
	"github.com/amankumarsingh77/slideshow-encoder/internal/slideshow"
	"github.com/labstack/echo/v4"
)

func MapSlideshowRoutes(e *echo.Echo, h slideshow.Handler) {
	e.POST("/video", h.CreateVideo())
	e.GET("/video/:id", h.GetVideo())
	e.GET("/status/:id", h.GetStatus())
}
