package sync

import (
	"errors"
	"io"
	"net/http"
	"time"

	"go-punchsync/internal/shared/apperror"
	"go-punchsync/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// Trigger kicks off a sync run. Per-source outcomes (including connectivity
// failures) ride inside the 200 envelope; only a bad request is rejected.
func (h *Handler) Trigger(c *gin.Context) {
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		// an empty body means "sync everything"
		mapped := apperror.MapValidationError(err)
		writeServiceError(c, mapped)
		return
	}

	opts := SyncOptions{Full: req.Full}
	if req.Since != "" {
		since, err := time.ParseInLocation("2006-01-02", req.Since, time.Local)
		if err != nil {
			writeServiceError(c, apperror.InvalidField("Since"))
			return
		}
		opts.Since = &since
	}

	runs, err := h.service.Run(c.Request.Context(), req.Source, opts)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, SyncResponse{Runs: runs})
}

func (h *Handler) Watermarks(c *gin.Context) {
	rows, err := h.service.Watermarks(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}
