package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/meetwise/availability-api/internal/models"
)

// AvailabilityRepository persists weekly windows and date-specific busy intervals.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs an AvailabilityRepository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ReplaceWeekly swaps the full weekly pattern of one participant.
func (r *AvailabilityRepository) ReplaceWeekly(ctx context.Context, participantID int64, windows []models.WeeklyWindow) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace weekly: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM weekly_windows WHERE participant_id = $1`, participantID); err != nil {
		return fmt.Errorf("clear weekly windows: %w", err)
	}

	const insert = `INSERT INTO weekly_windows (id, participant_id, day_of_week, start_time, end_time) VALUES ($1, $2, $3, $4, $5)`
	for _, window := range windows {
		id := window.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, insert, id, participantID, window.DayOfWeek, window.StartTime, window.EndTime); err != nil {
			return fmt.Errorf("insert weekly window: %w", err)
		}
	}

	return tx.Commit()
}

// ListWeeklyByParticipant returns one participant's recurring windows.
func (r *AvailabilityRepository) ListWeeklyByParticipant(ctx context.Context, participantID int64) ([]models.WeeklyWindow, error) {
	const query = `SELECT id, participant_id, day_of_week, start_time, end_time FROM weekly_windows WHERE participant_id = $1 ORDER BY day_of_week, start_time`
	var windows []models.WeeklyWindow
	if err := r.db.SelectContext(ctx, &windows, query, participantID); err != nil {
		return nil, fmt.Errorf("list weekly windows: %w", err)
	}
	return windows, nil
}

// ListAllWeekly returns every recurring window, used for snapshot builds.
func (r *AvailabilityRepository) ListAllWeekly(ctx context.Context) ([]models.WeeklyWindow, error) {
	const query = `SELECT id, participant_id, day_of_week, start_time, end_time FROM weekly_windows ORDER BY participant_id, day_of_week, start_time`
	var windows []models.WeeklyWindow
	if err := r.db.SelectContext(ctx, &windows, query); err != nil {
		return nil, fmt.Errorf("list all weekly windows: %w", err)
	}
	return windows, nil
}

// ReplaceBusy swaps one participant's commitments on a single date.
func (r *AvailabilityRepository) ReplaceBusy(ctx context.Context, participantID int64, date time.Time, intervals []models.BusyInterval) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace busy: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM busy_intervals WHERE participant_id = $1 AND busy_date = $2`, participantID, date); err != nil {
		return fmt.Errorf("clear busy intervals: %w", err)
	}

	const insert = `INSERT INTO busy_intervals (id, participant_id, busy_date, start_time, end_time) VALUES ($1, $2, $3, $4, $5)`
	for _, interval := range intervals {
		id := interval.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, insert, id, participantID, date, interval.StartTime, interval.EndTime); err != nil {
			return fmt.Errorf("insert busy interval: %w", err)
		}
	}

	return tx.Commit()
}

// ListBusyByParticipant returns one participant's commitments across all dates.
func (r *AvailabilityRepository) ListBusyByParticipant(ctx context.Context, participantID int64) ([]models.BusyInterval, error) {
	const query = `SELECT id, participant_id, busy_date, start_time, end_time FROM busy_intervals WHERE participant_id = $1 ORDER BY busy_date, start_time`
	var intervals []models.BusyInterval
	if err := r.db.SelectContext(ctx, &intervals, query, participantID); err != nil {
		return nil, fmt.Errorf("list busy intervals: %w", err)
	}
	return intervals, nil
}

// ListAllBusy returns every commitment, used for snapshot builds.
func (r *AvailabilityRepository) ListAllBusy(ctx context.Context) ([]models.BusyInterval, error) {
	const query = `SELECT id, participant_id, busy_date, start_time, end_time FROM busy_intervals ORDER BY participant_id, busy_date, start_time`
	var intervals []models.BusyInterval
	if err := r.db.SelectContext(ctx, &intervals, query); err != nil {
		return nil, fmt.Errorf("list all busy intervals: %w", err)
	}
	return intervals, nil
}
