package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetwise/availability-api/internal/models"
	"github.com/meetwise/availability-api/pkg/jobs"
)

// Redis keys of the availability read model.
const (
	KeyParticipants       = "participants"
	KeyWeeklyAvailability = "participant_availability"
	KeySchedules          = "schedules"
)

const jobTypeSnapshotRebuild = "snapshot_rebuild"

type participantSource interface {
	ListAll(ctx context.Context) ([]models.Participant, error)
}

type availabilitySource interface {
	ListAllWeekly(ctx context.Context) ([]models.WeeklyWindow, error)
	ListAllBusy(ctx context.Context) ([]models.BusyInterval, error)
}

// SnapshotService maintains the Redis read model the resolution engine
// consumes: three keyed lookups serialized from the Postgres source of
// truth. Reads fall back to a fresh build when the cache is cold.
type SnapshotService struct {
	participants participantSource
	availability availabilitySource
	cache        *CacheService
	metrics      *MetricsService
	queue        *jobs.Queue
	ttl          time.Duration
	logger       *zap.Logger
}

// NewSnapshotService constructs a snapshot service.
func NewSnapshotService(participants participantSource, availability availabilitySource, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{
		participants: participants,
		availability: availability,
		cache:        cache,
		metrics:      metrics,
		ttl:          ttl,
		logger:       logger,
	}
}

// UseQueue attaches the background queue used for asynchronous rebuilds.
func (s *SnapshotService) UseQueue(queue *jobs.Queue) {
	s.queue = queue
}

// ProcessJob handles queued rebuild jobs.
func (s *SnapshotService) ProcessJob(ctx context.Context, job jobs.Job) error {
	if job.Type != jobTypeSnapshotRebuild {
		return fmt.Errorf("unknown job type %q", job.Type)
	}
	return s.Rebuild(ctx)
}

// ScheduleRebuild requests an asynchronous snapshot rebuild. Without an
// attached queue the rebuild runs inline as a best effort.
func (s *SnapshotService) ScheduleRebuild() {
	if s.queue != nil {
		err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: jobTypeSnapshotRebuild})
		if err == nil {
			return
		}
		s.logger.Warn("failed to enqueue snapshot rebuild, running inline", zap.Error(err))
	}
	if err := s.Rebuild(context.Background()); err != nil {
		s.logger.Error("inline snapshot rebuild failed", zap.Error(err))
	}
}

type snapshot struct {
	participants map[int64]models.Participant
	weekly       map[int64]models.WeeklyAvailability
	schedules    map[int64]models.Schedule
}

// Rebuild serializes the Postgres state into the three read-model keys.
func (s *SnapshotService) Rebuild(ctx context.Context) error {
	snap, err := s.build(ctx)
	if err != nil {
		return err
	}
	if err := s.store(ctx, snap); err != nil {
		return err
	}
	s.metrics.RecordSnapshotRebuild()
	s.logger.Info("snapshot rebuilt",
		zap.Int("participants", len(snap.participants)),
		zap.Int("weekly_patterns", len(snap.weekly)),
		zap.Int("schedules", len(snap.schedules)),
	)
	return nil
}

// Invalidate drops the read-model keys so the next read rebuilds them.
func (s *SnapshotService) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx, KeyParticipants, KeyWeeklyAvailability, KeySchedules)
}

// Participants returns the participant lookup keyed by identifier.
func (s *SnapshotService) Participants(ctx context.Context) (map[int64]models.Participant, error) {
	var cached map[int64]models.Participant
	if hit, err := s.cache.Get(ctx, KeyParticipants, &cached); err == nil && hit {
		return cached, nil
	}
	snap, err := s.refresh(ctx)
	if err != nil {
		return nil, err
	}
	return snap.participants, nil
}

// WeeklyAvailability returns every participant's recurring weekly pattern.
func (s *SnapshotService) WeeklyAvailability(ctx context.Context) (map[int64]models.WeeklyAvailability, error) {
	var cached map[int64]models.WeeklyAvailability
	if hit, err := s.cache.Get(ctx, KeyWeeklyAvailability, &cached); err == nil && hit {
		return cached, nil
	}
	snap, err := s.refresh(ctx)
	if err != nil {
		return nil, err
	}
	return snap.weekly, nil
}

// Schedules returns every participant's date-specific commitments.
func (s *SnapshotService) Schedules(ctx context.Context) (map[int64]models.Schedule, error) {
	var cached map[int64]models.Schedule
	if hit, err := s.cache.Get(ctx, KeySchedules, &cached); err == nil && hit {
		return cached, nil
	}
	snap, err := s.refresh(ctx)
	if err != nil {
		return nil, err
	}
	return snap.schedules, nil
}

func (s *SnapshotService) refresh(ctx context.Context) (*snapshot, error) {
	snap, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store(ctx, snap); err != nil {
		s.logger.Warn("failed to repopulate snapshot cache", zap.Error(err))
	}
	return snap, nil
}

func (s *SnapshotService) build(ctx context.Context) (*snapshot, error) {
	participants, err := s.participants.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	windows, err := s.availability.ListAllWeekly(ctx)
	if err != nil {
		return nil, fmt.Errorf("load weekly windows: %w", err)
	}
	busy, err := s.availability.ListAllBusy(ctx)
	if err != nil {
		return nil, fmt.Errorf("load busy intervals: %w", err)
	}

	snap := &snapshot{
		participants: make(map[int64]models.Participant, len(participants)),
		weekly:       make(map[int64]models.WeeklyAvailability),
		schedules:    make(map[int64]models.Schedule),
	}
	for _, participant := range participants {
		snap.participants[participant.ID] = participant
	}
	for _, window := range windows {
		pattern, ok := snap.weekly[window.ParticipantID]
		if !ok {
			pattern = models.WeeklyAvailability{}
			snap.weekly[window.ParticipantID] = pattern
		}
		pattern[window.DayOfWeek] = append(pattern[window.DayOfWeek], models.TimeWindow{Start: window.StartTime, End: window.EndTime})
	}
	for _, interval := range busy {
		schedule, ok := snap.schedules[interval.ParticipantID]
		if !ok {
			schedule = models.Schedule{}
			snap.schedules[interval.ParticipantID] = schedule
		}
		date := interval.BusyDate.Format(models.DateLayout)
		schedule[date] = append(schedule[date], models.TimeWindow{Start: interval.StartTime, End: interval.EndTime})
	}

	return snap, nil
}

func (s *SnapshotService) store(ctx context.Context, snap *snapshot) error {
	if err := s.cache.Set(ctx, KeyParticipants, snap.participants, s.ttl); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, KeyWeeklyAvailability, snap.weekly, s.ttl); err != nil {
		return err
	}
	return s.cache.Set(ctx, KeySchedules, snap.schedules, s.ttl)
}
