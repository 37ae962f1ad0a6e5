package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetwise/availability-api/internal/dto"
	"github.com/meetwise/availability-api/internal/models"
	appErrors "github.com/meetwise/availability-api/pkg/errors"
)

type participantServiceMock struct {
	participant *models.Participant
	windows     []models.WeeklyWindow
	intervals   []models.BusyInterval
	err         error
}

func (m *participantServiceMock) List(ctx context.Context, filter models.ParticipantFilter) ([]models.Participant, *models.Pagination, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return []models.Participant{*m.participant}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (m *participantServiceMock) Get(ctx context.Context, id int64) (*models.Participant, error) {
	return m.participant, m.err
}

func (m *participantServiceMock) Create(ctx context.Context, req dto.CreateParticipantRequest) (*models.Participant, error) {
	return m.participant, m.err
}

func (m *participantServiceMock) Update(ctx context.Context, id int64, req dto.UpdateParticipantRequest) (*models.Participant, error) {
	return m.participant, m.err
}

func (m *participantServiceMock) Delete(ctx context.Context, id int64) error {
	return m.err
}

func (m *participantServiceMock) GetWeeklyAvailability(ctx context.Context, id int64) ([]models.WeeklyWindow, error) {
	return m.windows, m.err
}

func (m *participantServiceMock) ReplaceWeeklyAvailability(ctx context.Context, id int64, req dto.ReplaceWeeklyAvailabilityRequest) ([]models.WeeklyWindow, error) {
	return m.windows, m.err
}

func (m *participantServiceMock) GetBusyIntervals(ctx context.Context, id int64) ([]models.BusyInterval, error) {
	return m.intervals, m.err
}

func (m *participantServiceMock) ReplaceBusyIntervals(ctx context.Context, id int64, req dto.ReplaceBusyIntervalsRequest) ([]models.BusyInterval, error) {
	return m.intervals, m.err
}

func participantFixtureMock() *participantServiceMock {
	return &participantServiceMock{
		participant: &models.Participant{ID: 1, Name: "Adam", Threshold: 4},
		windows: []models.WeeklyWindow{
			{ID: "w1", ParticipantID: 1, DayOfWeek: "Monday", StartTime: "09:00", EndTime: "11:00"},
		},
		intervals: []models.BusyInterval{},
	}
}

func newParticipantContext(t *testing.T, method, target string, body *bytes.Buffer, id string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Buffer
	if body == nil {
		reader = bytes.NewBuffer(nil)
	} else {
		reader = body
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if id != "" {
		c.Params = gin.Params{{Key: "id", Value: id}}
	}
	return c, w
}

func TestParticipantHandlerList(t *testing.T) {
	handler := NewParticipantHandler(participantFixtureMock())

	c, w := newParticipantContext(t, http.MethodGet, "/participants?page=1&limit=20", nil, "")
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data       []models.Participant `json:"data"`
		Pagination *models.Pagination   `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 1, envelope.Pagination.TotalCount)
}

func TestParticipantHandlerGet(t *testing.T) {
	handler := NewParticipantHandler(participantFixtureMock())

	c, w := newParticipantContext(t, http.MethodGet, "/participants/1", nil, "1")
	handler.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestParticipantHandlerGetInvalidID(t *testing.T) {
	handler := NewParticipantHandler(participantFixtureMock())

	c, w := newParticipantContext(t, http.MethodGet, "/participants/abc", nil, "abc")
	handler.Get(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParticipantHandlerGetNotFound(t *testing.T) {
	mock := participantFixtureMock()
	mock.err = appErrors.Clone(appErrors.ErrNotFound, "participant not found")
	handler := NewParticipantHandler(mock)

	c, w := newParticipantContext(t, http.MethodGet, "/participants/42", nil, "42")
	handler.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestParticipantHandlerCreate(t *testing.T) {
	handler := NewParticipantHandler(participantFixtureMock())

	body := bytes.NewBufferString(`{"name":"Adam","threshold":4}`)
	c, w := newParticipantContext(t, http.MethodPost, "/participants", body, "")
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
}

func TestParticipantHandlerCreateMalformedJSON(t *testing.T) {
	handler := NewParticipantHandler(participantFixtureMock())

	body := bytes.NewBufferString(`{"name":`)
	c, w := newParticipantContext(t, http.MethodPost, "/participants", body, "")
	handler.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParticipantHandlerDelete(t *testing.T) {
	handler := NewParticipantHandler(participantFixtureMock())

	c, w := newParticipantContext(t, http.MethodDelete, "/participants/1", nil, "1")
	handler.Delete(c)
	// Status-only responses are not flushed until the writer commits.
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestParticipantHandlerReplaceWeeklyAvailability(t *testing.T) {
	handler := NewParticipantHandler(participantFixtureMock())

	body := bytes.NewBufferString(`{"windows":{"Monday":[{"start":"09:00","end":"11:00"}]}}`)
	c, w := newParticipantContext(t, http.MethodPut, "/participants/1/availability", body, "1")
	handler.ReplaceWeeklyAvailability(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestParticipantHandlerReplaceBusyIntervals(t *testing.T) {
	handler := NewParticipantHandler(participantFixtureMock())

	body := bytes.NewBufferString(`{"date":"28/10/2024","intervals":[{"start":"09:30","end":"10:30"}]}`)
	c, w := newParticipantContext(t, http.MethodPut, "/participants/1/schedule", body, "1")
	handler.ReplaceBusyIntervals(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestParticipantHandlerGetWeeklyAvailability(t *testing.T) {
	handler := NewParticipantHandler(participantFixtureMock())

	c, w := newParticipantContext(t, http.MethodGet, "/participants/1/availability", nil, "1")
	handler.GetWeeklyAvailability(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data []models.WeeklyWindow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Monday", envelope.Data[0].DayOfWeek)
}
