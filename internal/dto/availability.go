package dto

// DateRangeRequest bounds a resolution request, both ends inclusive.
type DateRangeRequest struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

// ResolveAvailabilityRequest asks for the common free slots of a participant set.
type ResolveAvailabilityRequest struct {
	ParticipantIDs []int64          `json:"participant_ids" binding:"required,min=1,dive,gt=0"`
	DateRange      DateRangeRequest `json:"date_range" binding:"required"`
}

// ResolveAvailabilityResponse maps each qualifying date to its ordered
// common slot labels. Dates with no common slot are omitted.
type ResolveAvailabilityResponse map[string][]string
