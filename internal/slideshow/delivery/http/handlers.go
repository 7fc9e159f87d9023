package http

import (
	"errors"
	"net/http"

	"github.com/amankumarsingh77/slideshow-encoder/internal/models"
	"github.com/amankumarsingh77/slideshow-encoder/internal/slideshow"
	"github.com/amankumarsingh77/slideshow-encoder/pkg/logger"
	"github.com/amankumarsingh77/slideshow-encoder/pkg/utils"
	"github.com/labstack/echo/v4"
)

type slideshowHandler struct {
	slideshowUC slideshow.UseCase
	logger      logger.Logger
}

func NewSlideshowHandler(slideshowUC slideshow.UseCase, logger logger.Logger) slideshow.Handler {
	return &slideshowHandler{
		slideshowUC: slideshowUC,
		logger:      logger,
	}
}

func (h *slideshowHandler) CreateVideo() echo.HandlerFunc {
	return func(c echo.Context) error {
		input := &models.CreateVideoInput{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		id, err := h.slideshowUC.CreateVideo(c.Request().Context(), input)
		if err != nil {
			if errors.Is(err, models.ErrInvalidInput) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			if errors.Is(err, models.ErrJobActive) {
				return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
			}
			h.logger.Errorf("CreateVideo RequestID: %s, ERROR: %v", utils.GetRequestID(c), err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		}
		return c.JSON(http.StatusCreated, models.CreateVideoResponse{ID: id})
	}
}

func (h *slideshowHandler) GetStatus() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, h.slideshowUC.GetStatus(c.Request().Context(), c.Param("id")))
	}
}

// GetVideo redirects to the artifact of a READY job.
func (h *slideshowHandler) GetVideo() echo.HandlerFunc {
	return func(c echo.Context) error {
		status := h.slideshowUC.GetStatus(c.Request().Context(), c.Param("id"))
		if status.Status != models.JobStatusReady {
			return c.JSON(http.StatusNotFound, status)
		}
		return c.Redirect(http.StatusFound, status.URL)
	}
}
