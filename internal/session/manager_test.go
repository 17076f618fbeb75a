package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salon-booking-bot/internal/config"
	"salon-booking-bot/internal/domain"
	createBooking "salon-booking-bot/internal/usecase/create_booking"
	"salon-booking-bot/pkg/types"
)

type fakeCatalog struct {
	services map[int64]*domain.Service
	staff    map[int64]*domain.Staff
}

func (f *fakeCatalog) GetService(_ context.Context, id int64) (*domain.Service, error) {
	svc, ok := f.services[id]
	if !ok {
		return nil, assert.AnError
	}
	return svc, nil
}

func (f *fakeCatalog) GetStaff(_ context.Context, id int64) (*domain.Staff, error) {
	st, ok := f.staff[id]
	if !ok {
		return nil, assert.AnError
	}
	return st, nil
}

type fakeSlots struct {
	slots []domain.Slot
	err   error
}

func (f *fakeSlots) AvailableSlots(_ context.Context, _ time.Time, _ *int64) ([]domain.Slot, error) {
	return f.slots, f.err
}

type fakeCommitter struct {
	err  error
	got  *createBooking.Request
	next int64
}

func (f *fakeCommitter) Execute(_ context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	f.next++
	return &createBooking.Response{
		Booking: &domain.Booking{
			ID:        f.next,
			UserID:    req.UserID,
			ServiceID: req.ServiceID,
			StaffID:   req.StaffID,
			Date:      req.Date,
			Time:      req.Time,
			Status:    domain.StatusPending,
		},
		Service: &domain.Service{ID: req.ServiceID, Name: "Стрижка", Price: 1500},
	}, nil
}

type fakeProfiles struct {
	phones map[int64]string
	err    error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{phones: make(map[int64]string)}
}

func (f *fakeProfiles) GetPhone(_ context.Context, userID int64) (*string, error) {
	if f.err != nil {
		return nil, f.err
	}
	phone, ok := f.phones[userID]
	if !ok {
		return nil, nil
	}
	return &phone, nil
}

func (f *fakeProfiles) SetPhone(_ context.Context, userID int64, phone string) error {
	if f.err != nil {
		return f.err
	}
	f.phones[userID] = phone
	return nil
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

const userID = int64(100)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

type managerFixture struct {
	manager   *Manager
	catalog   *fakeCatalog
	slots     *fakeSlots
	committer *fakeCommitter
	profiles  *fakeProfiles
}

func newFixture() *managerFixture {
	catalog := &fakeCatalog{
		services: map[int64]*domain.Service{
			10: {ID: 10, Name: "Стрижка", Price: 1500, DurationMinutes: 60, Active: true},
			11: {ID: 11, Name: "Окрашивание", Price: 3500, DurationMinutes: 120, Active: false},
		},
		staff: map[int64]*domain.Staff{
			1: {ID: 1, Name: "Анна", Active: true, ServiceIDs: map[int64]struct{}{10: {}}},
			2: {ID: 2, Name: "Мария", Active: true, ServiceIDs: map[int64]struct{}{11: {}}},
		},
	}
	slots := &fakeSlots{slots: []domain.Slot{
		{Time: "14:00", Busy: false},
		{Time: "15:00", Busy: true},
		{Time: "16:00", Busy: false},
	}}
	committer := &fakeCommitter{}
	profiles := newFakeProfiles()

	schedule := config.ScheduleConfig{
		WorkStartHour:       9,
		WorkEndHour:         21,
		SlotDurationMinutes: 60,
		DaysAhead:           14,
	}

	m := NewManager(catalog, slots, committer, profiles, schedule, nopLogger{})
	m.timeProvider = &fakeTimeProvider{now: testNow}

	return &managerFixture{
		manager:   m,
		catalog:   catalog,
		slots:     slots,
		committer: committer,
		profiles:  profiles,
	}
}

// walkToTime доводит сценарий до состояния после выбора времени
func walkToTime(t *testing.T, f *managerFixture) {
	t.Helper()
	ctx := context.Background()

	f.manager.Start(userID, "Иван")
	require.NoError(t, f.manager.ChooseService(ctx, userID, 10))
	require.NoError(t, f.manager.ChooseStaff(ctx, userID, 1))
	require.NoError(t, f.manager.ChooseDate(ctx, userID, testNow.AddDate(0, 0, 1)))
	require.NoError(t, f.manager.ChooseTime(ctx, userID, "14:00"))
}

func TestFullFlow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	walkToTime(t, f)

	s, ok := f.manager.Get(userID)
	require.True(t, ok)
	assert.Equal(t, StateEnteringPhone, s.State)

	// Невалидный телефон не двигает сценарий
	err := f.manager.SubmitPhone(ctx, userID, "12345", false)
	assert.ErrorIs(t, err, ErrInvalidPhone)
	assert.Equal(t, StateEnteringPhone, s.State)

	// Пробелы и дефисы вычищаются
	require.NoError(t, f.manager.SubmitPhone(ctx, userID, "+7 999 123-45-67", false))
	assert.Equal(t, StateConfirming, s.State)
	assert.Equal(t, "+79991234567", s.Phone)
	assert.Equal(t, "+79991234567", f.profiles.phones[userID])

	resp, err := f.manager.Confirm(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Booking.ID)

	// Сценарий завершен и снят с учета
	_, ok = f.manager.Get(userID)
	assert.False(t, ok)

	// Committer получил аккумулятор целиком
	require.NotNil(t, f.committer.got)
	assert.Equal(t, int64(10), f.committer.got.ServiceID)
	require.NotNil(t, f.committer.got.StaffID)
	assert.Equal(t, int64(1), *f.committer.got.StaffID)
	assert.Equal(t, types.TimeString("14:00"), f.committer.got.Time)
}

func TestChooseService_InactiveRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.manager.Start(userID, "Иван")
	err := f.manager.ChooseService(ctx, userID, 11)

	assert.ErrorIs(t, err, ErrInvalidSelection)

	s, _ := f.manager.Get(userID)
	assert.Equal(t, StateChoosingService, s.State)
}

func TestChooseStaff_AnySentinel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.manager.Start(userID, "Иван")
	require.NoError(t, f.manager.ChooseService(ctx, userID, 10))
	require.NoError(t, f.manager.ChooseStaff(ctx, userID, domain.AnyStaffID))

	s, _ := f.manager.Get(userID)
	assert.Nil(t, s.StaffID)
	assert.True(t, s.StaffChosen())
	assert.Equal(t, StateChoosingDate, s.State)
}

func TestChooseStaff_WrongServiceRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.manager.Start(userID, "Иван")
	require.NoError(t, f.manager.ChooseService(ctx, userID, 10))

	// Мария не выполняет услугу 10
	err := f.manager.ChooseStaff(ctx, userID, 2)

	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestChooseDate_OutsideWindow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.manager.Start(userID, "Иван")
	require.NoError(t, f.manager.ChooseService(ctx, userID, 10))
	require.NoError(t, f.manager.ChooseStaff(ctx, userID, 1))

	err := f.manager.ChooseDate(ctx, userID, testNow.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrInvalidSelection)

	err = f.manager.ChooseDate(ctx, userID, testNow.AddDate(0, 0, 14))
	assert.ErrorIs(t, err, ErrInvalidSelection)

	// Последний день окна еще доступен
	err = f.manager.ChooseDate(ctx, userID, testNow.AddDate(0, 0, 13))
	assert.NoError(t, err)
}

func TestChooseTime_BusySlotRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.manager.Start(userID, "Иван")
	require.NoError(t, f.manager.ChooseService(ctx, userID, 10))
	require.NoError(t, f.manager.ChooseStaff(ctx, userID, 1))
	require.NoError(t, f.manager.ChooseDate(ctx, userID, testNow.AddDate(0, 0, 1)))

	err := f.manager.ChooseTime(ctx, userID, "15:00")
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	err = f.manager.ChooseTime(ctx, userID, "23:00")
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Состояние не изменилось, выбор можно повторить
	s, _ := f.manager.Get(userID)
	assert.Equal(t, StateChoosingTime, s.State)
	require.NoError(t, f.manager.ChooseTime(ctx, userID, "16:00"))
}

func TestChooseTime_SkipsPhoneWhenOnFile(t *testing.T) {
	f := newFixture()

	f.profiles.phones[userID] = "+79990000000"

	walkToTime(t, f)

	s, _ := f.manager.Get(userID)
	assert.Equal(t, StateConfirming, s.State)
	assert.Equal(t, "+79990000000", s.Phone)
}

func TestSubmitPhone_ContactAlwaysAccepted(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	walkToTime(t, f)

	// Контакт из Telegram принимается без проверки формата
	require.NoError(t, f.manager.SubmitPhone(ctx, userID, "79991234567", true))

	s, _ := f.manager.Get(userID)
	assert.Equal(t, StateConfirming, s.State)
}

func TestConfirm_SlotRaceRollsBackToChoosingTime(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.profiles.phones[userID] = "+79990000000"
	walkToTime(t, f)

	f.committer.err = createBooking.ErrSlotUnavailable

	_, err := f.manager.Confirm(ctx, userID)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Сценарий жив: откат к выбору времени, очищено только время
	s, ok := f.manager.Get(userID)
	require.True(t, ok)
	assert.Equal(t, StateChoosingTime, s.State)
	assert.True(t, s.Time.IsZero())
	assert.False(t, s.Date.IsZero())
	assert.Equal(t, "+79990000000", s.Phone)

	// Повторный выбор времени и фиксация проходят
	f.committer.err = nil
	require.NoError(t, f.manager.ChooseTime(ctx, userID, "16:00"))
	_, err = f.manager.Confirm(ctx, userID)
	require.NoError(t, err)
}

func TestBack_Navigation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	walkToTime(t, f)

	// Back из EnteringPhone не предусмотрен
	_, err := f.manager.Back(userID)
	assert.ErrorIs(t, err, ErrWrongState)

	f2 := newFixture()
	f2.manager.Start(userID, "Иван")
	require.NoError(t, f2.manager.ChooseService(ctx, userID, 10))
	require.NoError(t, f2.manager.ChooseStaff(ctx, userID, 1))
	require.NoError(t, f2.manager.ChooseDate(ctx, userID, testNow.AddDate(0, 0, 1)))

	// Time -> Date
	state, err := f2.manager.Back(userID)
	require.NoError(t, err)
	assert.Equal(t, StateChoosingDate, state)

	s, _ := f2.manager.Get(userID)
	assert.True(t, s.Date.IsZero())
	assert.True(t, s.StaffChosen())

	// Date -> Staff
	state, err = f2.manager.Back(userID)
	require.NoError(t, err)
	assert.Equal(t, StateChoosingStaff, state)
	assert.False(t, s.StaffChosen())
	assert.Nil(t, s.StaffID)

	// Staff -> Service
	state, err = f2.manager.Back(userID)
	require.NoError(t, err)
	assert.Equal(t, StateChoosingService, state)
	assert.Equal(t, int64(0), s.ServiceID)
}

func TestCancel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	walkToTime(t, f)

	require.NoError(t, f.manager.Cancel(userID))

	_, ok := f.manager.Get(userID)
	assert.False(t, ok)

	err := f.manager.ChooseTime(ctx, userID, "16:00")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStart_AbandonsPriorSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	walkToTime(t, f)

	s := f.manager.Start(userID, "Иван")
	assert.Equal(t, StateChoosingService, s.State)
	assert.Equal(t, int64(0), s.ServiceID)

	err := f.manager.ChooseTime(ctx, userID, "16:00")
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestOperationsWithoutSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	assert.ErrorIs(t, f.manager.ChooseService(ctx, userID, 10), ErrNoSession)
	assert.ErrorIs(t, f.manager.Cancel(userID), ErrNoSession)

	_, err := f.manager.Confirm(ctx, userID)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestDatesWindow(t *testing.T) {
	f := newFixture()

	dates := f.manager.DatesWindow()

	require.Len(t, dates, 14)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC), dates[13])
}

// blockingCommitter держит фиксацию открытой, пока тест ее не отпустит
type blockingCommitter struct {
	entered chan struct{}
	release chan struct{}
	inner   fakeCommitter
}

func (c *blockingCommitter) Execute(ctx context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	close(c.entered)
	<-c.release
	return c.inner.Execute(ctx, req)
}

func TestConcurrentSessions_IndependentOfSlowCommit(t *testing.T) {
	f := newFixture()
	blocker := &blockingCommitter{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	f.manager.committer = blocker
	ctx := context.Background()

	walkToTime(t, f)
	require.NoError(t, f.manager.SubmitPhone(ctx, userID, "+79991234567", false))

	confirmDone := make(chan error, 1)
	go func() {
		_, err := f.manager.Confirm(ctx, userID)
		confirmDone <- err
	}()
	<-blocker.entered

	// Пока фиксация первого пользователя висит в хранилище,
	// сценарий второго пользователя проходит все шаги
	const otherID = int64(200)
	otherDone := make(chan struct{})
	go func() {
		defer close(otherDone)
		f.manager.Start(otherID, "Петр")
		assert.NoError(t, f.manager.ChooseService(ctx, otherID, 10))
		assert.NoError(t, f.manager.ChooseStaff(ctx, otherID, 1))
		assert.NoError(t, f.manager.ChooseDate(ctx, otherID, testNow.AddDate(0, 0, 2)))
		assert.NoError(t, f.manager.ChooseTime(ctx, otherID, "16:00"))
		assert.NoError(t, f.manager.SubmitPhone(ctx, otherID, "+79995554433", false))
	}()

	select {
	case <-otherDone:
	case <-time.After(2 * time.Second):
		t.Fatal("second user's flow is blocked by first user's commit")
	}

	close(blocker.release)
	require.NoError(t, <-confirmDone)

	// Первый сценарий завершен и удален, второй остался на подтверждении
	_, ok := f.manager.Get(userID)
	assert.False(t, ok)

	other, ok := f.manager.Get(otherID)
	require.True(t, ok)
	assert.Equal(t, StateConfirming, other.State)
}
