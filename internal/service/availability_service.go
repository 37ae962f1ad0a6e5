package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/meetwise/availability-api/internal/dto"
	"github.com/meetwise/availability-api/internal/models"
	appErrors "github.com/meetwise/availability-api/pkg/errors"
)

type availabilityStore interface {
	Participants(ctx context.Context) (map[int64]models.Participant, error)
	WeeklyAvailability(ctx context.Context) (map[int64]models.WeeklyAvailability, error)
	Schedules(ctx context.Context) (map[int64]models.Schedule, error)
}

// AvailabilityService resolves the common free slots of a participant set
// over a date range. Each participant's recurring weekly pattern is
// discretized into fixed-width slots, date-specific commitments are
// subtracted by exact label match, and the per-participant sets are
// intersected per date.
type AvailabilityService struct {
	store       availabilityStore
	granularity int // minutes per slot
	workers     int
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewAvailabilityService constructs the resolution service.
func NewAvailabilityService(store availabilityStore, granularity time.Duration, workers int, metrics *MetricsService, logger *zap.Logger) *AvailabilityService {
	minutes := int(granularity / time.Minute)
	if minutes <= 0 {
		minutes = 30
	}
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		store:       store,
		granularity: minutes,
		workers:     workers,
		metrics:     metrics,
		logger:      logger,
	}
}

// Resolve computes, for every date in the inclusive range, the slots during
// which all requested participants are simultaneously free. Dates without a
// common slot are omitted. An inverted range or an empty participant list
// yields an empty result rather than an error; malformed date strings fail
// the whole call with a format error.
func (s *AvailabilityService) Resolve(ctx context.Context, req dto.ResolveAvailabilityRequest) (dto.ResolveAvailabilityResponse, error) {
	started := time.Now()

	rangeStart, err := models.ParseDate(req.DateRange.Start)
	if err != nil {
		return nil, err
	}
	rangeEnd, err := models.ParseDate(req.DateRange.End)
	if err != nil {
		return nil, err
	}

	dates := datesBetween(rangeStart, rangeEnd)
	if len(dates) == 0 || len(req.ParticipantIDs) == 0 {
		s.metrics.ObserveResolution(time.Since(started), 0)
		return dto.ResolveAvailabilityResponse{}, nil
	}

	participants, err := s.store.Participants(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load participants")
	}
	weekly, err := s.store.WeeklyAvailability(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly availability")
	}
	schedules, err := s.store.Schedules(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedules")
	}

	for _, id := range req.ParticipantIDs {
		if _, ok := participants[id]; !ok {
			// Unknown participants resolve to empty availability, never an error.
			s.logger.Debug("unknown participant requested", zap.Int64("participant_id", id))
		}
	}

	resolveDate := func(date models.Date) ([]models.TimeSlot, error) {
		var common []models.TimeSlot
		for i, id := range req.ParticipantIDs {
			free, err := s.freeSlotsForDay(weekly[id], schedules[id], date)
			if err != nil {
				return nil, err
			}
			if i == 0 {
				common = free.ordered
				continue
			}
			common = intersectSlots(common, free.members)
			if len(common) == 0 {
				break
			}
		}
		return common, nil
	}

	perDate := make([][]models.TimeSlot, len(dates))
	errs := make([]error, len(dates))

	if s.workers > 1 && len(dates) > 1 {
		sem := make(chan struct{}, s.workers)
		var wg sync.WaitGroup
		for i, date := range dates {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, date models.Date) {
				defer wg.Done()
				defer func() { <-sem }()
				perDate[i], errs[i] = resolveDate(date)
			}(i, date)
		}
		wg.Wait()
	} else {
		for i, date := range dates {
			perDate[i], errs[i] = resolveDate(date)
		}
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	result := dto.ResolveAvailabilityResponse{}
	for i, date := range dates {
		if len(perDate[i]) == 0 {
			continue
		}
		labels := make([]string, len(perDate[i]))
		for j, slot := range perDate[i] {
			labels[j] = slot.Label()
		}
		result[date.String()] = labels
	}

	s.metrics.ObserveResolution(time.Since(started), len(dates))
	return result, nil
}

// slotSet keeps slots both in chronological order and as a membership set.
type slotSet struct {
	ordered []models.TimeSlot
	members map[models.TimeSlot]struct{}
}

// freeSlotsForDay discretizes the participant's weekly windows for the
// date's weekday, then removes slots covered by that date's commitments.
// Missing weekly data means no availability; missing schedule data means
// no conflicts.
func (s *AvailabilityService) freeSlotsForDay(pattern models.WeeklyAvailability, schedule models.Schedule, date models.Date) (slotSet, error) {
	free := slotSet{members: make(map[models.TimeSlot]struct{})}

	weekday := date.Weekday().String()
	for _, window := range pattern[weekday] {
		slots, err := s.slotsWithin(window)
		if err != nil {
			return slotSet{}, err
		}
		for _, slot := range slots {
			if _, seen := free.members[slot]; seen {
				continue
			}
			free.members[slot] = struct{}{}
			free.ordered = append(free.ordered, slot)
		}
	}
	sort.SliceStable(free.ordered, func(i, j int) bool {
		return free.ordered[i].Start.Before(free.ordered[j].Start)
	})

	for _, busy := range schedule[date.String()] {
		occupied, err := s.slotsWithin(busy)
		if err != nil {
			return slotSet{}, err
		}
		for _, slot := range occupied {
			delete(free.members, slot)
		}
	}

	remaining := make([]models.TimeSlot, 0, len(free.members))
	for _, slot := range free.ordered {
		if _, ok := free.members[slot]; ok {
			remaining = append(remaining, slot)
		}
	}
	free.ordered = remaining

	return free, nil
}

// slotsWithin walks a window in granularity steps and emits each full slot.
// A trailing remainder shorter than one slot is dropped, not rounded.
func (s *AvailabilityService) slotsWithin(window models.TimeWindow) ([]models.TimeSlot, error) {
	start, err := models.ParseTimeOfDay(window.Start)
	if err != nil {
		return nil, err
	}
	end, err := models.ParseTimeOfDay(window.End)
	if err != nil {
		return nil, err
	}

	var slots []models.TimeSlot
	for t := start.MinuteOfDay(); t+s.granularity <= end.MinuteOfDay(); t += s.granularity {
		slots = append(slots, models.TimeSlot{
			Start: models.TimeOfDayFromMinutes(t),
			End:   models.TimeOfDayFromMinutes(t + s.granularity),
		})
	}
	return slots, nil
}

// intersectSlots filters the ordered slots down to those present in the
// membership set, preserving the order of the first operand.
func intersectSlots(ordered []models.TimeSlot, members map[models.TimeSlot]struct{}) []models.TimeSlot {
	result := make([]models.TimeSlot, 0, len(ordered))
	for _, slot := range ordered {
		if _, ok := members[slot]; ok {
			result = append(result, slot)
		}
	}
	return result
}

// datesBetween enumerates calendar days from start through end inclusive.
// An inverted range yields no dates.
func datesBetween(start, end models.Date) []models.Date {
	var dates []models.Date
	for d := start; !d.After(end); d = d.Next() {
		dates = append(dates, d)
	}
	return dates
}
