package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"salon-booking-bot/internal/config"
	"salon-booking-bot/internal/domain"
	createBooking "salon-booking-bot/internal/usecase/create_booking"
	"salon-booking-bot/pkg/ptr"
	"salon-booking-bot/pkg/types"
)

// minPhoneLength минимальная длина телефона после удаления пробелов и дефисов,
// включая ведущий "+"
const minPhoneLength = 11

// Manager управляет сценариями записи, по одному на пользователя
// Сценарии разных пользователей полностью независимы: mu защищает
// только карту, состояние каждого сценария закрыто его собственным
// мьютексом. Запуск нового сценария неявно сбрасывает незавершенный старый
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Session

	catalog      Catalog
	slots        SlotsProvider
	committer    Committer
	profiles     ProfileStore
	schedule     config.ScheduleConfig
	timeProvider TimeProvider
	logger       Logger
}

// NewManager создает новый менеджер сценариев записи
func NewManager(
	catalog Catalog,
	slots SlotsProvider,
	committer Committer,
	profiles ProfileStore,
	schedule config.ScheduleConfig,
	logger Logger,
) *Manager {
	return &Manager{
		sessions:     make(map[int64]*Session),
		catalog:      catalog,
		slots:        slots,
		committer:    committer,
		profiles:     profiles,
		schedule:     schedule,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Start начинает новый сценарий записи
// Существующий незавершенный сценарий пользователя сбрасывается
func (m *Manager) Start(userID int64, userName string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := newSession(userID, userName)
	m.sessions[userID] = s

	m.logger.Info("Session: started for user=%d", userID)
	return s
}

// Get возвращает активный сценарий пользователя
func (m *Manager) Get(userID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	return s, ok
}

// Cancel отменяет сценарий из любого нетерминального состояния
// Аккумулятор очищается, бронирование не создается
func (m *Manager) Cancel(userID int64) error {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()

	if !ok {
		return ErrNoSession
	}

	s.mu.Lock()
	s.State = StateCancelled
	s.mu.Unlock()

	m.logger.Info("Session: cancelled for user=%d", userID)
	return nil
}

// lookup находит сценарий пользователя, удерживая только блокировку карты
func (m *Manager) lookup(userID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

// removeIfCurrent удаляет сценарий из карты, если он все еще актуален
// для пользователя: новый Start мог уже заменить его
func (m *Manager) removeIfCurrent(userID int64, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sessions[userID] == s {
		delete(m.sessions, userID)
	}
}

// ChooseService обрабатывает выбор услуги
// Услуга должна существовать и быть активной, иначе ErrInvalidSelection
func (m *Manager) ChooseService(ctx context.Context, userID int64, serviceID int64) error {
	s, err := m.lookup(userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != StateChoosingService {
		return fmt.Errorf("%w: state=%s", ErrWrongState, s.State)
	}

	service, err := m.catalog.GetService(ctx, serviceID)
	if err != nil {
		m.logger.Warn("Session: user=%d selected unknown service id=%d: %v", userID, serviceID, err)
		return ErrInvalidSelection
	}
	if !service.Active {
		m.logger.Warn("Session: user=%d selected inactive service id=%d", userID, serviceID)
		return ErrInvalidSelection
	}

	s.ServiceID = service.ID
	s.ServiceName = service.Name
	s.ServicePrice = service.Price
	s.State = StateChoosingStaff

	m.logger.Info("Session: user=%d chose service id=%d", userID, serviceID)
	return nil
}

// ChooseStaff обрабатывает выбор мастера
// domain.AnyStaffID - сентинел "любой мастер"; конкретный мастер должен
// быть активен и выполнять выбранную услугу
func (m *Manager) ChooseStaff(ctx context.Context, userID int64, staffID int64) error {
	s, err := m.lookup(userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != StateChoosingStaff {
		return fmt.Errorf("%w: state=%s", ErrWrongState, s.State)
	}

	if staffID == domain.AnyStaffID {
		s.StaffID = nil
		s.StaffName = "Любой мастер"
	} else {
		staff, err := m.catalog.GetStaff(ctx, staffID)
		if err != nil {
			m.logger.Warn("Session: user=%d selected unknown staff id=%d: %v", userID, staffID, err)
			return ErrInvalidSelection
		}
		if !staff.Active || !staff.Performs(s.ServiceID) {
			m.logger.Warn("Session: user=%d selected unsuitable staff id=%d for service id=%d",
				userID, staffID, s.ServiceID)
			return ErrInvalidSelection
		}
		s.StaffID = ptr.Ptr(staffID)
		s.StaffName = staff.Name
	}

	s.staffChosen = true
	s.State = StateChoosingDate

	m.logger.Info("Session: user=%d chose staff=%s", userID, s.StaffName)
	return nil
}

// ChooseDate обрабатывает выбор даты
// Дата должна попадать в окно [сегодня, сегодня + days_ahead)
func (m *Manager) ChooseDate(_ context.Context, userID int64, date time.Time) error {
	s, err := m.lookup(userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != StateChoosingDate {
		return fmt.Errorf("%w: state=%s", ErrWrongState, s.State)
	}

	if !m.dateInWindow(date) {
		m.logger.Warn("Session: user=%d selected date %s outside booking window",
			userID, date.Format(domain.DateFormat))
		return ErrInvalidSelection
	}

	s.Date = truncateToDay(date)
	s.State = StateChoosingTime

	m.logger.Info("Session: user=%d chose date %s", userID, s.Date.Format(domain.DateFormat))
	return nil
}

// ChooseTime обрабатывает выбор слота времени
// Слот обязан присутствовать в текущей выдаче калькулятора доступности
// и быть свободным, иначе ErrSlotUnavailable и состояние не меняется.
// Если телефон пользователя уже сохранен, шаг ввода телефона пропускается
func (m *Manager) ChooseTime(ctx context.Context, userID int64, t types.TimeString) error {
	s, err := m.lookup(userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != StateChoosingTime {
		return fmt.Errorf("%w: state=%s", ErrWrongState, s.State)
	}

	slots, err := m.slots.AvailableSlots(ctx, s.Date, s.StaffID)
	if err != nil {
		m.logger.Error("Session: user=%d failed to load slots: %v", userID, err)
		return fmt.Errorf("%w: failed to load slots: %v", ErrStore, err)
	}

	if !slotIsFree(slots, t) {
		m.logger.Warn("Session: user=%d selected busy slot %s", userID, t)
		return ErrSlotUnavailable
	}

	s.Time = t

	phone, err := m.profiles.GetPhone(ctx, userID)
	if err != nil {
		m.logger.Error("Session: user=%d failed to load phone: %v", userID, err)
		return fmt.Errorf("%w: failed to load phone: %v", ErrStore, err)
	}

	if phone != nil && *phone != "" {
		s.Phone = *phone
		s.State = StateConfirming
	} else {
		s.State = StateEnteringPhone
	}

	m.logger.Info("Session: user=%d chose time %s, state=%s", userID, t, s.State)
	return nil
}

// SubmitPhone обрабатывает ввод телефона
// Контакт из Telegram принимается как есть; свободный текст должен
// начинаться с "+" и содержать не менее 11 символов после удаления
// пробелов и дефисов. Принятый телефон сохраняется в профиле
func (m *Manager) SubmitPhone(ctx context.Context, userID int64, raw string, fromContact bool) error {
	s, err := m.lookup(userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != StateEnteringPhone {
		return fmt.Errorf("%w: state=%s", ErrWrongState, s.State)
	}

	phone := normalizePhone(raw)
	if !fromContact && !phoneIsValid(phone) {
		m.logger.Warn("Session: user=%d submitted invalid phone", userID)
		return ErrInvalidPhone
	}

	if err := m.profiles.SetPhone(ctx, userID, phone); err != nil {
		m.logger.Error("Session: user=%d failed to persist phone: %v", userID, err)
		return fmt.Errorf("%w: failed to persist phone: %v", ErrStore, err)
	}

	s.Phone = phone
	s.State = StateConfirming

	m.logger.Info("Session: user=%d submitted phone, state=%s", userID, s.State)
	return nil
}

// Confirm фиксирует бронирование
// Доступность слота перевалидируется атомарно с вставкой внутри usecase;
// при проигранной гонке сценарий возвращается в ChoosingTime
// (выбор времени очищается), а не завершается молча
func (m *Manager) Confirm(ctx context.Context, userID int64) (*createBooking.Response, error) {
	s, err := m.lookup(userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != StateConfirming {
		return nil, fmt.Errorf("%w: state=%s", ErrWrongState, s.State)
	}

	resp, err := m.committer.Execute(ctx, &createBooking.Request{
		UserID:    s.UserID,
		UserName:  s.UserName,
		Phone:     s.Phone,
		ServiceID: s.ServiceID,
		StaffID:   s.StaffID,
		Date:      s.Date,
		Time:      s.Time,
	})

	if err != nil {
		if errors.Is(err, createBooking.ErrSlotUnavailable) {
			s.clearFromTime()
			s.State = StateChoosingTime
			m.logger.Warn("Session: user=%d lost slot race, back to choosing_time", userID)
			return nil, ErrSlotUnavailable
		}
		m.logger.Error("Session: user=%d commit failed: %v", userID, err)
		return nil, fmt.Errorf("%w: commit failed: %v", ErrStore, err)
	}

	s.State = StateCommitted
	m.removeIfCurrent(userID, s)

	m.logger.Info("Session: user=%d committed booking id=%d", userID, resp.Booking.ID)
	return resp, nil
}

// Back выполняет навигацию на шаг назад
// Доступна из ChoosingStaff, ChoosingDate и ChoosingTime;
// поля, заполненные после целевого шага, очищаются
func (m *Manager) Back(userID int64) (State, error) {
	s, err := m.lookup(userID)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.State {
	case StateChoosingStaff:
		s.ServiceID = 0
		s.ServiceName = ""
		s.ServicePrice = 0
		s.clearFromStaff()
		s.State = StateChoosingService
	case StateChoosingDate:
		s.clearFromStaff()
		s.State = StateChoosingStaff
	case StateChoosingTime:
		s.clearFromDate()
		s.State = StateChoosingDate
	default:
		return s.State, fmt.Errorf("%w: no backward transition from %s", ErrWrongState, s.State)
	}

	m.logger.Info("Session: user=%d went back to %s", userID, s.State)
	return s.State, nil
}

// DatesWindow возвращает даты, доступные для записи:
// сегодня и следующие days_ahead - 1 дней
func (m *Manager) DatesWindow() []time.Time {
	today := truncateToDay(m.timeProvider.Now())

	dates := make([]time.Time, 0, m.schedule.DaysAhead)
	for i := 0; i < m.schedule.DaysAhead; i++ {
		dates = append(dates, today.AddDate(0, 0, i))
	}
	return dates
}

func (m *Manager) dateInWindow(date time.Time) bool {
	today := truncateToDay(m.timeProvider.Now())
	limit := today.AddDate(0, 0, m.schedule.DaysAhead)

	day := truncateToDay(date)
	return !day.Before(today) && day.Before(limit)
}

func slotIsFree(slots []domain.Slot, t types.TimeString) bool {
	for _, slot := range slots {
		if slot.Time == t {
			return !slot.Busy
		}
	}
	return false
}

// normalizePhone убирает пробелы и дефисы
func normalizePhone(raw string) string {
	replacer := strings.NewReplacer(" ", "", "-", "")
	return replacer.Replace(strings.TrimSpace(raw))
}

// phoneIsValid проверяет свободно введенный телефон:
// ведущий "+" и минимум minPhoneLength символов
func phoneIsValid(phone string) bool {
	return strings.HasPrefix(phone, "+") && len(phone) >= minPhoneLength
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
