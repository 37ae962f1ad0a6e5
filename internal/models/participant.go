package models

import "time"

// Participant is the reference record for a person whose availability can be resolved.
type Participant struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Threshold int       `db:"threshold" json:"threshold"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ParticipantFilter narrows participant listings.
type ParticipantFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination describes list paging metadata.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// WeeklyWindow is one recurring availability window persisted per participant and weekday.
type WeeklyWindow struct {
	ID            string `db:"id" json:"id"`
	ParticipantID int64  `db:"participant_id" json:"participant_id"`
	DayOfWeek     string `db:"day_of_week" json:"day_of_week"`
	StartTime     string `db:"start_time" json:"start_time"`
	EndTime       string `db:"end_time" json:"end_time"`
}

// BusyInterval is a date-specific commitment persisted per participant.
type BusyInterval struct {
	ID            string    `db:"id" json:"id"`
	ParticipantID int64     `db:"participant_id" json:"participant_id"`
	BusyDate      time.Time `db:"busy_date" json:"busy_date"`
	StartTime     string    `db:"start_time" json:"start_time"`
	EndTime       string    `db:"end_time" json:"end_time"`
}
