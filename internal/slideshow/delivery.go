package slideshow

import "github.com/labstack/echo/v4"

type Handler interface {
	CreateVideo() echo.HandlerFunc
	GetStatus() echo.HandlerFunc
	GetVideo() echo.HandlerFunc
}
