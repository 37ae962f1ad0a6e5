package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/meetwise/availability-api/internal/dto"
	"github.com/meetwise/availability-api/internal/models"
	appErrors "github.com/meetwise/availability-api/pkg/errors"
	"github.com/meetwise/availability-api/pkg/response"
)

type participantService interface {
	List(ctx context.Context, filter models.ParticipantFilter) ([]models.Participant, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*models.Participant, error)
	Create(ctx context.Context, req dto.CreateParticipantRequest) (*models.Participant, error)
	Update(ctx context.Context, id int64, req dto.UpdateParticipantRequest) (*models.Participant, error)
	Delete(ctx context.Context, id int64) error
	GetWeeklyAvailability(ctx context.Context, id int64) ([]models.WeeklyWindow, error)
	ReplaceWeeklyAvailability(ctx context.Context, id int64, req dto.ReplaceWeeklyAvailabilityRequest) ([]models.WeeklyWindow, error)
	GetBusyIntervals(ctx context.Context, id int64) ([]models.BusyInterval, error)
	ReplaceBusyIntervals(ctx context.Context, id int64, req dto.ReplaceBusyIntervalsRequest) ([]models.BusyInterval, error)
}

// ParticipantHandler exposes participant administration endpoints.
type ParticipantHandler struct {
	service participantService
}

// NewParticipantHandler constructs the handler.
func NewParticipantHandler(service participantService) *ParticipantHandler {
	return &ParticipantHandler{service: service}
}

// List godoc
// @Summary List participants
// @Tags Participants
// @Produce json
// @Param search query string false "Name search"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /participants [get]
func (h *ParticipantHandler) List(c *gin.Context) {
	filter := models.ParticipantFilter{
		Search:    c.Query("search"),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.PageSize = limit
	}

	participants, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, participants, pagination)
}

// Get godoc
// @Summary Get a participant
// @Tags Participants
// @Produce json
// @Param id path int true "Participant ID"
// @Success 200 {object} response.Envelope
// @Router /participants/{id} [get]
func (h *ParticipantHandler) Get(c *gin.Context) {
	id, ok := participantID(c)
	if !ok {
		return
	}
	participant, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, participant, nil)
}

// Create godoc
// @Summary Create a participant
// @Tags Participants
// @Accept json
// @Produce json
// @Param payload body dto.CreateParticipantRequest true "Participant"
// @Success 201 {object} response.Envelope
// @Router /participants [post]
func (h *ParticipantHandler) Create(c *gin.Context) {
	var req dto.CreateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	participant, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, participant)
}

// Update godoc
// @Summary Update a participant
// @Tags Participants
// @Accept json
// @Produce json
// @Param id path int true "Participant ID"
// @Param payload body dto.UpdateParticipantRequest true "Participant"
// @Success 200 {object} response.Envelope
// @Router /participants/{id} [put]
func (h *ParticipantHandler) Update(c *gin.Context) {
	id, ok := participantID(c)
	if !ok {
		return
	}
	var req dto.UpdateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	participant, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, participant, nil)
}

// Delete godoc
// @Summary Delete a participant
// @Tags Participants
// @Param id path int true "Participant ID"
// @Success 204
// @Router /participants/{id} [delete]
func (h *ParticipantHandler) Delete(c *gin.Context) {
	id, ok := participantID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GetWeeklyAvailability godoc
// @Summary Get a participant's recurring weekly availability
// @Tags Availability
// @Produce json
// @Param id path int true "Participant ID"
// @Success 200 {object} response.Envelope
// @Router /participants/{id}/availability [get]
func (h *ParticipantHandler) GetWeeklyAvailability(c *gin.Context) {
	id, ok := participantID(c)
	if !ok {
		return
	}
	windows, err := h.service.GetWeeklyAvailability(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, windows, nil)
}

// ReplaceWeeklyAvailability godoc
// @Summary Replace a participant's recurring weekly availability
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path int true "Participant ID"
// @Param payload body dto.ReplaceWeeklyAvailabilityRequest true "Weekly windows"
// @Success 200 {object} response.Envelope
// @Router /participants/{id}/availability [put]
func (h *ParticipantHandler) ReplaceWeeklyAvailability(c *gin.Context) {
	id, ok := participantID(c)
	if !ok {
		return
	}
	var req dto.ReplaceWeeklyAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	windows, err := h.service.ReplaceWeeklyAvailability(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, windows, nil)
}

// GetBusyIntervals godoc
// @Summary Get a participant's date-specific commitments
// @Tags Availability
// @Produce json
// @Param id path int true "Participant ID"
// @Success 200 {object} response.Envelope
// @Router /participants/{id}/schedule [get]
func (h *ParticipantHandler) GetBusyIntervals(c *gin.Context) {
	id, ok := participantID(c)
	if !ok {
		return
	}
	intervals, err := h.service.GetBusyIntervals(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intervals, nil)
}

// ReplaceBusyIntervals godoc
// @Summary Replace a participant's commitments for one date
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path int true "Participant ID"
// @Param payload body dto.ReplaceBusyIntervalsRequest true "Busy intervals"
// @Success 200 {object} response.Envelope
// @Router /participants/{id}/schedule [put]
func (h *ParticipantHandler) ReplaceBusyIntervals(c *gin.Context) {
	id, ok := participantID(c)
	if !ok {
		return
	}
	var req dto.ReplaceBusyIntervalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	intervals, err := h.service.ReplaceBusyIntervals(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intervals, nil)
}

func participantID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid participant id"))
		return 0, false
	}
	return id, true
}
