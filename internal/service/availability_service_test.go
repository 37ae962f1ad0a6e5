package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetwise/availability-api/internal/dto"
	"github.com/meetwise/availability-api/internal/models"
	appErrors "github.com/meetwise/availability-api/pkg/errors"
)

// 28/10/2024 is a Monday, 29/10/2024 a Tuesday.
const (
	testMonday  = "28/10/2024"
	testTuesday = "29/10/2024"
)

type availabilityStoreStub struct {
	participants map[int64]models.Participant
	weekly       map[int64]models.WeeklyAvailability
	schedules    map[int64]models.Schedule
	err          error
}

func (s availabilityStoreStub) Participants(ctx context.Context) (map[int64]models.Participant, error) {
	return s.participants, s.err
}

func (s availabilityStoreStub) WeeklyAvailability(ctx context.Context) (map[int64]models.WeeklyAvailability, error) {
	return s.weekly, s.err
}

func (s availabilityStoreStub) Schedules(ctx context.Context) (map[int64]models.Schedule, error) {
	return s.schedules, s.err
}

func newResolver(store availabilityStoreStub, workers int) *AvailabilityService {
	return NewAvailabilityService(store, 30*time.Minute, workers, nil, nil)
}

func twoParticipantStore() availabilityStoreStub {
	return availabilityStoreStub{
		participants: map[int64]models.Participant{
			1: {ID: 1, Name: "Adam", Threshold: 4},
			2: {ID: 2, Name: "Bosco", Threshold: 4},
		},
		weekly: map[int64]models.WeeklyAvailability{
			1: {"Monday": {{Start: "09:00", End: "11:00"}}},
			2: {"Monday": {{Start: "09:00", End: "18:00"}}},
		},
		schedules: map[int64]models.Schedule{},
	}
}

func resolveRequest(ids []int64, start, end string) dto.ResolveAvailabilityRequest {
	return dto.ResolveAvailabilityRequest{
		ParticipantIDs: ids,
		DateRange:      dto.DateRangeRequest{Start: start, End: end},
	}
}

func TestResolveSingleMonday(t *testing.T) {
	service := newResolver(twoParticipantStore(), 1)

	result, err := service.Resolve(context.Background(), resolveRequest([]int64{1, 2}, testMonday, testMonday))
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, []string{"09:00-09:30", "09:30-10:00", "10:00-10:30", "10:30-11:00"}, result[testMonday])
}

func TestResolveBusyIntervalSplitsDay(t *testing.T) {
	store := twoParticipantStore()
	store.schedules = map[int64]models.Schedule{
		1: {testMonday: {{Start: "09:30", End: "10:30"}}},
	}
	service := newResolver(store, 1)

	result, err := service.Resolve(context.Background(), resolveRequest([]int64{1, 2}, testMonday, testMonday))
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00-09:30", "10:30-11:00"}, result[testMonday])
}

func TestResolveBusyIdenticalToWindowExcludesDate(t *testing.T) {
	store := twoParticipantStore()
	store.schedules = map[int64]models.Schedule{
		1: {testMonday: {{Start: "09:00", End: "11:00"}}},
	}
	service := newResolver(store, 1)

	result, err := service.Resolve(context.Background(), resolveRequest([]int64{1, 2}, testMonday, testMonday))
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestResolveOverlappingWindowsDoNotDuplicateSlots(t *testing.T) {
	store := twoParticipantStore()
	store.weekly[1] = models.WeeklyAvailability{
		"Monday": {
			{Start: "09:30", End: "10:30"},
			{Start: "09:00", End: "10:00"},
		},
	}
	service := newResolver(store, 1)

	result, err := service.Resolve(context.Background(), resolveRequest([]int64{1}, testMonday, testMonday))
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00-09:30", "09:30-10:00", "10:00-10:30"}, result[testMonday])
}

func TestResolveIntersectionIsCommutative(t *testing.T) {
	service := newResolver(twoParticipantStore(), 1)

	forward, err := service.Resolve(context.Background(), resolveRequest([]int64{1, 2}, testMonday, testMonday))
	require.NoError(t, err)
	backward, err := service.Resolve(context.Background(), resolveRequest([]int64{2, 1}, testMonday, testMonday))
	require.NoError(t, err)
	assert.Equal(t, forward, backward)
}

func TestResolveUnknownParticipantHasNoAvailability(t *testing.T) {
	service := newResolver(twoParticipantStore(), 1)

	result, err := service.Resolve(context.Background(), resolveRequest([]int64{1, 2, 99}, testMonday, testMonday))
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestResolveMultiDateRange(t *testing.T) {
	store := twoParticipantStore()
	store.weekly[1]["Tuesday"] = []models.TimeWindow{{Start: "09:00", End: "10:00"}}
	store.weekly[2]["Tuesday"] = []models.TimeWindow{{Start: "09:00", End: "10:00"}}
	store.schedules = map[int64]models.Schedule{
		2: {testTuesday: {{Start: "09:00", End: "09:30"}}},
	}
	service := newResolver(store, 1)

	result, err := service.Resolve(context.Background(), resolveRequest([]int64{1, 2}, testMonday, testTuesday))
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Len(t, result[testMonday], 4)
	assert.Equal(t, []string{"09:30-10:00"}, result[testTuesday])
}

func TestResolveInvertedRangeYieldsEmptyResult(t *testing.T) {
	service := newResolver(twoParticipantStore(), 1)

	result, err := service.Resolve(context.Background(), resolveRequest([]int64{1, 2}, testTuesday, testMonday))
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestResolveSingleDayRange(t *testing.T) {
	service := newResolver(twoParticipantStore(), 1)

	result, err := service.Resolve(context.Background(), resolveRequest([]int64{1, 2}, testMonday, testMonday))
	require.NoError(t, err)
	require.Len(t, result, 1)
}

func TestResolveNoParticipantsYieldsEmptyResult(t *testing.T) {
	service := newResolver(twoParticipantStore(), 1)

	result, err := service.Resolve(context.Background(), resolveRequest(nil, testMonday, testTuesday))
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestResolveMalformedDateFails(t *testing.T) {
	service := newResolver(twoParticipantStore(), 1)

	_, err := service.Resolve(context.Background(), resolveRequest([]int64{1}, "2024-10-28", testMonday))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFormat.Code, appErrors.FromError(err).Code)
}

func TestResolveMalformedWindowTimeFails(t *testing.T) {
	store := twoParticipantStore()
	store.weekly[1] = models.WeeklyAvailability{
		"Monday": {{Start: "9am", End: "11:00"}},
	}
	service := newResolver(store, 1)

	_, err := service.Resolve(context.Background(), resolveRequest([]int64{1}, testMonday, testMonday))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFormat.Code, appErrors.FromError(err).Code)
}

func TestResolveParallelMatchesSerial(t *testing.T) {
	store := twoParticipantStore()
	store.weekly[1]["Tuesday"] = []models.TimeWindow{{Start: "09:00", End: "12:00"}}
	store.weekly[2]["Tuesday"] = []models.TimeWindow{{Start: "10:00", End: "13:00"}}
	store.schedules = map[int64]models.Schedule{
		1: {"04/11/2024": {{Start: "09:00", End: "10:00"}}},
	}

	req := resolveRequest([]int64{1, 2}, testMonday, "05/11/2024")

	serial, err := newResolver(store, 1).Resolve(context.Background(), req)
	require.NoError(t, err)
	parallel, err := newResolver(store, 8).Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, serial, parallel)
}

func TestSlotsWithinFullCoverage(t *testing.T) {
	service := newResolver(availabilityStoreStub{}, 1)

	slots, err := service.slotsWithin(models.TimeWindow{Start: "09:00", End: "11:00"})
	require.NoError(t, err)
	require.Len(t, slots, 4)
	assert.Equal(t, "09:00-09:30", slots[0].Label())
	assert.Equal(t, "10:30-11:00", slots[3].Label())
	for i := 1; i < len(slots); i++ {
		assert.Equal(t, slots[i-1].End, slots[i].Start)
	}
}

func TestSlotsWithinDropsTrailingPartial(t *testing.T) {
	service := newResolver(availabilityStoreStub{}, 1)

	slots, err := service.slotsWithin(models.TimeWindow{Start: "09:00", End: "09:50"})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "09:00-09:30", slots[0].Label())
}

func TestSlotsWithinZeroLengthWindow(t *testing.T) {
	service := newResolver(availabilityStoreStub{}, 1)

	slots, err := service.slotsWithin(models.TimeWindow{Start: "09:00", End: "09:00"})
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestSlotsWithinShorterThanGranularity(t *testing.T) {
	service := newResolver(availabilityStoreStub{}, 1)

	slots, err := service.slotsWithin(models.TimeWindow{Start: "09:00", End: "09:20"})
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestDatesBetweenInclusive(t *testing.T) {
	start, err := models.ParseDate(testMonday)
	require.NoError(t, err)
	end, err := models.ParseDate("01/11/2024")
	require.NoError(t, err)

	dates := datesBetween(start, end)
	require.Len(t, dates, 5)
	assert.Equal(t, testMonday, dates[0].String())
	assert.Equal(t, "01/11/2024", dates[4].String())
}

func TestDatesBetweenCrossesMonthBoundary(t *testing.T) {
	start, err := models.ParseDate("31/12/2024")
	require.NoError(t, err)

	dates := datesBetween(start, start.Next())
	require.Len(t, dates, 2)
	assert.Equal(t, "01/01/2025", dates[1].String())
}
