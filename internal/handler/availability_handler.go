package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetwise/availability-api/internal/dto"
	"github.com/meetwise/availability-api/internal/models"
	"github.com/meetwise/availability-api/internal/service"
	appErrors "github.com/meetwise/availability-api/pkg/errors"
	"github.com/meetwise/availability-api/pkg/response"
)

type availabilityResolver interface {
	Resolve(ctx context.Context, req dto.ResolveAvailabilityRequest) (dto.ResolveAvailabilityResponse, error)
}

type resultRenderer interface {
	Render(result dto.ResolveAvailabilityResponse, format string) (*service.ExportArtifact, error)
}

// AvailabilityHandler exposes the resolution endpoints.
type AvailabilityHandler struct {
	resolver availabilityResolver
	exports  resultRenderer
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(resolver availabilityResolver, exports resultRenderer) *AvailabilityHandler {
	return &AvailabilityHandler{resolver: resolver, exports: exports}
}

// Resolve godoc
// @Summary Resolve common free slots for a participant set
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.ResolveAvailabilityRequest true "Resolution request"
// @Success 200 {object} response.Envelope
// @Router /availability/resolve [post]
func (h *AvailabilityHandler) Resolve(c *gin.Context) {
	var req dto.ResolveAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}

	if err := checkDateRange(req.DateRange); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.resolver.Resolve(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Export common free slots as CSV or PDF
// @Tags Availability
// @Accept json
// @Produce octet-stream
// @Param format query string false "Export format (csv or pdf)"
// @Param payload body dto.ResolveAvailabilityRequest true "Resolution request"
// @Success 200 {file} binary
// @Router /availability/export [post]
func (h *AvailabilityHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}

	var req dto.ResolveAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}

	if err := checkDateRange(req.DateRange); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.resolver.Resolve(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	format := c.DefaultQuery("format", service.FormatCSV)
	artifact, err := h.exports.Render(result, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Content)
}

// checkDateRange enforces the request contract at the HTTP boundary: both
// dates well formed and start strictly before end. The resolver itself
// tolerates degenerate ranges for direct callers.
func checkDateRange(r dto.DateRangeRequest) error {
	start, err := models.ParseDate(r.Start)
	if err != nil {
		return err
	}
	end, err := models.ParseDate(r.End)
	if err != nil {
		return err
	}
	if !end.After(start) {
		return appErrors.Clone(appErrors.ErrEmptyInput, "date range start must fall strictly before end")
	}
	return nil
}
