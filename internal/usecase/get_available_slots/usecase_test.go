package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salon-booking-bot/internal/config"
	"salon-booking-bot/internal/domain"
	"salon-booking-bot/pkg/types"
)

type fakeBookingRepo struct {
	booked []types.TimeString
	err    error

	gotDate  time.Time
	gotStaff *int64
}

func (f *fakeBookingRepo) ListBookedSlots(_ context.Context, date time.Time, staffID *int64) ([]types.TimeString, error) {
	f.gotDate = date
	f.gotStaff = staffID
	return f.booked, f.err
}

type fakeTimeProvider struct {
	now time.Time
}

func (f *fakeTimeProvider) Now() time.Time {
	return f.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func defaultSchedule() config.ScheduleConfig {
	return config.ScheduleConfig{
		WorkStartHour:       9,
		WorkEndHour:         21,
		SlotDurationMinutes: 60,
		DaysAhead:           14,
	}
}

func newTestUseCase(repo *fakeBookingRepo, now time.Time) *UseCase {
	uc := NewUseCase(repo, defaultSchedule(), nopLogger{})
	uc.timeProvider = &fakeTimeProvider{now: now}
	return uc
}

func TestExecute_FullGridForFutureDate(t *testing.T) {
	repo := &fakeBookingRepo{}
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	uc := newTestUseCase(repo, now)

	date := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	resp, err := uc.Execute(context.Background(), &Request{Date: date})

	require.NoError(t, err)
	require.Len(t, resp.Slots, 12)
	assert.Equal(t, types.TimeString("09:00"), resp.Slots[0].Time)
	assert.Equal(t, types.TimeString("20:00"), resp.Slots[11].Time)
	for _, slot := range resp.Slots {
		assert.False(t, slot.Busy)
	}
}

func TestExecute_BookedSlotsMarkedBusy(t *testing.T) {
	repo := &fakeBookingRepo{booked: []types.TimeString{"10:00", "15:00"}}
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	uc := newTestUseCase(repo, now)

	date := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	resp, err := uc.Execute(context.Background(), &Request{Date: date})

	require.NoError(t, err)
	require.Len(t, resp.Slots, 12)

	busy := make(map[types.TimeString]bool)
	for _, slot := range resp.Slots {
		busy[slot.Time] = slot.Busy
	}
	assert.True(t, busy["10:00"])
	assert.True(t, busy["15:00"])
	assert.False(t, busy["09:00"])
	assert.False(t, busy["20:00"])

	// Ни один занятый слот не попадает в свободные
	for _, free := range domain.FreeSlots(resp.Slots) {
		assert.NotEqual(t, types.TimeString("10:00"), free)
		assert.NotEqual(t, types.TimeString("15:00"), free)
	}
}

func TestExecute_TodayCutsPastHours(t *testing.T) {
	repo := &fakeBookingRepo{}
	// Сегодня 14:25 - слоты по 14:00 включительно отрезаются
	now := time.Date(2026, 9, 1, 14, 25, 0, 0, time.UTC)
	uc := newTestUseCase(repo, now)

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	resp, err := uc.Execute(context.Background(), &Request{Date: date})

	require.NoError(t, err)
	require.Len(t, resp.Slots, 6)
	assert.Equal(t, types.TimeString("15:00"), resp.Slots[0].Time)
	assert.Equal(t, types.TimeString("20:00"), resp.Slots[5].Time)
}

func TestExecute_TodayLateEveningEmptyGrid(t *testing.T) {
	repo := &fakeBookingRepo{}
	now := time.Date(2026, 9, 1, 20, 30, 0, 0, time.UTC)
	uc := newTestUseCase(repo, now)

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	resp, err := uc.Execute(context.Background(), &Request{Date: date})

	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_StaffFilterPassedToRepository(t *testing.T) {
	repo := &fakeBookingRepo{}
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	uc := newTestUseCase(repo, now)

	staffID := int64(7)
	date := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	_, err := uc.Execute(context.Background(), &Request{Date: date, StaffID: &staffID})

	require.NoError(t, err)
	require.NotNil(t, repo.gotStaff)
	assert.Equal(t, int64(7), *repo.gotStaff)
}

func TestExecute_RepositoryErrorWrapsErrStore(t *testing.T) {
	repo := &fakeBookingRepo{err: errors.New("connection refused")}
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	uc := newTestUseCase(repo, now)

	date := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	_, err := uc.Execute(context.Background(), &Request{Date: date})

	assert.ErrorIs(t, err, ErrStore)
}

func TestExecute_ZeroDateRejected(t *testing.T) {
	repo := &fakeBookingRepo{}
	uc := newTestUseCase(repo, time.Now())

	_, err := uc.Execute(context.Background(), &Request{})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildDayGrid_ThirtyMinuteSlots(t *testing.T) {
	schedule := config.ScheduleConfig{
		WorkStartHour:       10,
		WorkEndHour:         12,
		SlotDurationMinutes: 30,
	}

	grid, err := buildDayGrid(schedule)

	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"10:00", "10:30", "11:00", "11:30"}, grid)
}
