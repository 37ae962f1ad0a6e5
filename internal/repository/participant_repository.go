package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/meetwise/availability-api/internal/models"
)

// ParticipantRepository manages persistence for participants.
type ParticipantRepository struct {
	db *sqlx.DB
}

// NewParticipantRepository constructs a ParticipantRepository.
func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// List returns participants matching filters along with total count.
func (r *ParticipantRepository) List(ctx context.Context, filter models.ParticipantFilter) ([]models.Participant, int, error) {
	base := "FROM participants WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "id"
	}
	allowedSorts := map[string]string{
		"id":         "id",
		"name":       "name",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "id"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, name, threshold, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, column, order, size, offset)
	var participants []models.Participant
	if err := r.db.SelectContext(ctx, &participants, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list participants: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count participants: %w", err)
	}

	return participants, total, nil
}

// ListAll returns every participant, used when building the resolution snapshot.
func (r *ParticipantRepository) ListAll(ctx context.Context) ([]models.Participant, error) {
	const query = `SELECT id, name, threshold, created_at, updated_at FROM participants ORDER BY id`
	var participants []models.Participant
	if err := r.db.SelectContext(ctx, &participants, query); err != nil {
		return nil, fmt.Errorf("list all participants: %w", err)
	}
	return participants, nil
}

// FindByID fetches a participant by ID.
func (r *ParticipantRepository) FindByID(ctx context.Context, id int64) (*models.Participant, error) {
	const query = `SELECT id, name, threshold, created_at, updated_at FROM participants WHERE id = $1`
	var participant models.Participant
	if err := r.db.GetContext(ctx, &participant, query, id); err != nil {
		return nil, err
	}
	return &participant, nil
}

// FindByName fetches a participant by exact name.
func (r *ParticipantRepository) FindByName(ctx context.Context, name string) (*models.Participant, error) {
	const query = `SELECT id, name, threshold, created_at, updated_at FROM participants WHERE name = $1`
	var participant models.Participant
	if err := r.db.GetContext(ctx, &participant, query, name); err != nil {
		return nil, err
	}
	return &participant, nil
}

// Create inserts a participant and assigns its generated ID.
func (r *ParticipantRepository) Create(ctx context.Context, participant *models.Participant) error {
	const query = `INSERT INTO participants (name, threshold, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`
	now := time.Now().UTC()
	participant.CreatedAt = now
	participant.UpdatedAt = now
	if err := r.db.QueryRowxContext(ctx, query, participant.Name, participant.Threshold, participant.CreatedAt, participant.UpdatedAt).Scan(&participant.ID); err != nil {
		return fmt.Errorf("create participant: %w", err)
	}
	return nil
}

// Update persists name and threshold changes.
func (r *ParticipantRepository) Update(ctx context.Context, participant *models.Participant) error {
	const query = `UPDATE participants SET name = $2, threshold = $3, updated_at = $4 WHERE id = $1`
	participant.UpdatedAt = time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, participant.ID, participant.Name, participant.Threshold, participant.UpdatedAt); err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	return nil
}

// Delete removes a participant together with its windows and intervals.
func (r *ParticipantRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete participant: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM weekly_windows WHERE participant_id = $1`, id); err != nil {
		return fmt.Errorf("delete weekly windows: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM busy_intervals WHERE participant_id = $1`, id); err != nil {
		return fmt.Errorf("delete busy intervals: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}

	return tx.Commit()
}
