package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/meetwise/availability-api/internal/dto"
	"github.com/meetwise/availability-api/internal/models"
	appErrors "github.com/meetwise/availability-api/pkg/errors"
)

type participantRepository interface {
	List(ctx context.Context, filter models.ParticipantFilter) ([]models.Participant, int, error)
	FindByID(ctx context.Context, id int64) (*models.Participant, error)
	FindByName(ctx context.Context, name string) (*models.Participant, error)
	Create(ctx context.Context, participant *models.Participant) error
	Update(ctx context.Context, participant *models.Participant) error
	Delete(ctx context.Context, id int64) error
}

type availabilityRepository interface {
	ReplaceWeekly(ctx context.Context, participantID int64, windows []models.WeeklyWindow) error
	ListWeeklyByParticipant(ctx context.Context, participantID int64) ([]models.WeeklyWindow, error)
	ReplaceBusy(ctx context.Context, participantID int64, date time.Time, intervals []models.BusyInterval) error
	ListBusyByParticipant(ctx context.Context, participantID int64) ([]models.BusyInterval, error)
}

type snapshotInvalidator interface {
	Invalidate(ctx context.Context) error
	ScheduleRebuild()
}

// ParticipantService manages participant reference data and their
// availability inputs. Every mutation invalidates the resolution snapshot
// and schedules a rebuild.
type ParticipantService struct {
	repo         participantRepository
	availability availabilityRepository
	snapshot     snapshotInvalidator
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewParticipantService constructs the service.
func NewParticipantService(repo participantRepository, availability availabilityRepository, snapshot snapshotInvalidator, validate *validator.Validate, logger *zap.Logger) *ParticipantService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParticipantService{
		repo:         repo,
		availability: availability,
		snapshot:     snapshot,
		validator:    validate,
		logger:       logger,
	}
}

// List returns participants with paging metadata.
func (s *ParticipantService) List(ctx context.Context, filter models.ParticipantFilter) ([]models.Participant, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	participants, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list participants")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return participants, pagination, nil
}

// Get returns a participant by ID.
func (s *ParticipantService) Get(ctx context.Context, id int64) (*models.Participant, error) {
	participant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "participant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get participant")
	}
	return participant, nil
}

// Create registers a new participant.
func (s *ParticipantService) Create(ctx context.Context, req dto.CreateParticipantRequest) (*models.Participant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := s.checkNameTaken(ctx, req.Name, 0); err != nil {
		return nil, err
	}
	participant := &models.Participant{Name: req.Name, Threshold: req.Threshold}
	if err := s.repo.Create(ctx, participant); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create participant")
	}
	s.refreshSnapshot(ctx)
	return participant, nil
}

// Update modifies a participant.
func (s *ParticipantService) Update(ctx context.Context, id int64, req dto.UpdateParticipantRequest) (*models.Participant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	participant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkNameTaken(ctx, req.Name, id); err != nil {
		return nil, err
	}
	participant.Name = req.Name
	participant.Threshold = req.Threshold
	if err := s.repo.Update(ctx, participant); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update participant")
	}
	s.refreshSnapshot(ctx)
	return participant, nil
}

// Delete removes a participant and all of its availability inputs.
func (s *ParticipantService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete participant")
	}
	s.refreshSnapshot(ctx)
	return nil
}

// GetWeeklyAvailability returns a participant's recurring weekly windows.
func (s *ParticipantService) GetWeeklyAvailability(ctx context.Context, id int64) ([]models.WeeklyWindow, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	windows, err := s.availability.ListWeeklyByParticipant(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list weekly availability")
	}
	return windows, nil
}

// ReplaceWeeklyAvailability swaps a participant's full weekly pattern.
func (s *ParticipantService) ReplaceWeeklyAvailability(ctx context.Context, id int64, req dto.ReplaceWeeklyAvailabilityRequest) ([]models.WeeklyWindow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	var windows []models.WeeklyWindow
	for weekday, payloads := range req.Windows {
		if !validWeekday(weekday) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown weekday %q", weekday))
		}
		for _, payload := range payloads {
			if err := checkWindow(payload); err != nil {
				return nil, err
			}
			windows = append(windows, models.WeeklyWindow{
				ParticipantID: id,
				DayOfWeek:     weekday,
				StartTime:     payload.Start,
				EndTime:       payload.End,
			})
		}
	}

	if err := s.availability.ReplaceWeekly(ctx, id, windows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace weekly availability")
	}
	s.refreshSnapshot(ctx)
	return windows, nil
}

// GetBusyIntervals returns a participant's date-specific commitments.
func (s *ParticipantService) GetBusyIntervals(ctx context.Context, id int64) ([]models.BusyInterval, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	intervals, err := s.availability.ListBusyByParticipant(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list busy intervals")
	}
	return intervals, nil
}

// ReplaceBusyIntervals swaps a participant's commitments for one date.
func (s *ParticipantService) ReplaceBusyIntervals(ctx context.Context, id int64, req dto.ReplaceBusyIntervalsRequest) ([]models.BusyInterval, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	busyDate := time.Date(date.Year, date.Month, date.Day, 0, 0, 0, 0, time.UTC)

	intervals := make([]models.BusyInterval, 0, len(req.Intervals))
	for _, payload := range req.Intervals {
		if err := checkWindow(payload); err != nil {
			return nil, err
		}
		intervals = append(intervals, models.BusyInterval{
			ParticipantID: id,
			BusyDate:      busyDate,
			StartTime:     payload.Start,
			EndTime:       payload.End,
		})
	}

	if err := s.availability.ReplaceBusy(ctx, id, busyDate, intervals); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace busy intervals")
	}
	s.refreshSnapshot(ctx)
	return intervals, nil
}

// checkNameTaken rejects a name already held by a different participant.
func (s *ParticipantService) checkNameTaken(ctx context.Context, name string, selfID int64) error {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check participant name")
	}
	if existing.ID != selfID {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("participant %q already exists", name))
	}
	return nil
}

func (s *ParticipantService) refreshSnapshot(ctx context.Context) {
	if s.snapshot == nil {
		return
	}
	if err := s.snapshot.Invalidate(ctx); err != nil {
		s.logger.Warn("snapshot invalidation failed", zap.Error(err))
	}
	s.snapshot.ScheduleRebuild()
}

func checkWindow(payload dto.TimeWindowPayload) error {
	start, err := models.ParseTimeOfDay(payload.Start)
	if err != nil {
		return err
	}
	end, err := models.ParseTimeOfDay(payload.End)
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("window start %s must be before end %s", payload.Start, payload.End))
	}
	return nil
}

func validWeekday(name string) bool {
	switch name {
	case "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday":
		return true
	default:
		return false
	}
}
