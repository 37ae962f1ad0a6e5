package dto

// CreateParticipantRequest registers a new participant.
type CreateParticipantRequest struct {
	Name      string `json:"name" validate:"required"`
	Threshold int    `json:"threshold" validate:"gte=0"`
}

// UpdateParticipantRequest modifies an existing participant.
type UpdateParticipantRequest struct {
	Name      string `json:"name" validate:"required"`
	Threshold int    `json:"threshold" validate:"gte=0"`
}

// TimeWindowPayload is a single {start, end} wall-clock interval.
type TimeWindowPayload struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// ReplaceWeeklyAvailabilityRequest swaps a participant's full weekly pattern.
// Keys are weekday names (Monday..Sunday); absent weekdays mean no availability.
type ReplaceWeeklyAvailabilityRequest struct {
	Windows map[string][]TimeWindowPayload `json:"windows" validate:"required"`
}

// ReplaceBusyIntervalsRequest swaps a participant's commitments on one date.
// An empty interval list clears the date.
type ReplaceBusyIntervalsRequest struct {
	Date      string              `json:"date" validate:"required"`
	Intervals []TimeWindowPayload `json:"intervals"`
}
