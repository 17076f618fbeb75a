package bot

import (
	"context"
	"time"

	"salon-booking-bot/internal/domain"
	"salon-booking-bot/internal/session"
	createBooking "salon-booking-bot/internal/usecase/create_booking"
	getAvailableSlots "salon-booking-bot/internal/usecase/get_available_slots"
	"salon-booking-bot/pkg/types"
)

// SessionManager интерфейс машины состояний сценария записи
type SessionManager interface {
	Start(userID int64, userName string) *session.Session
	Get(userID int64) (*session.Session, bool)
	Cancel(userID int64) error
	ChooseService(ctx context.Context, userID int64, serviceID int64) error
	ChooseStaff(ctx context.Context, userID int64, staffID int64) error
	ChooseDate(ctx context.Context, userID int64, date time.Time) error
	ChooseTime(ctx context.Context, userID int64, t types.TimeString) error
	SubmitPhone(ctx context.Context, userID int64, raw string, fromContact bool) error
	Confirm(ctx context.Context, userID int64) (*createBooking.Response, error)
	Back(userID int64) (session.State, error)
	DatesWindow() []time.Time
}

// CatalogService интерфейс каталога услуг и мастеров
type CatalogService interface {
	ListServices(ctx context.Context, activeOnly bool) ([]*domain.Service, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	StaffForService(ctx context.Context, serviceID int64) ([]*domain.Staff, error)
	GetStaff(ctx context.Context, id int64) (*domain.Staff, error)
	AddService(ctx context.Context, name string, price int64, durationMinutes int) (*domain.Service, error)
	ActivateService(ctx context.Context, id int64) error
	DeactivateService(ctx context.Context, id int64) error
}

// BookingsService интерфейс жизненного цикла бронирований
type BookingsService interface {
	IsAdmin(userID int64) bool
	AdminIDs() []int64
	Confirm(ctx context.Context, bookingID int64, actorID int64) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID int64, actorID int64) (*domain.Booking, error)
	Complete(ctx context.Context, bookingID int64, actorID int64) (*domain.Booking, error)
	CancelByRequester(ctx context.Context, bookingID int64, actorID int64) (*domain.Booking, error)
	ListForUser(ctx context.Context, userID int64) ([]*domain.Booking, error)
	ListAll(ctx context.Context, actorID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	ListForDate(ctx context.Context, actorID int64, date time.Time) ([]*domain.Booking, error)
}

// SlotsCalculator интерфейс расчета доступных слотов на день
type SlotsCalculator interface {
	Execute(ctx context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error)
}

// ProfileStore интерфейс хранилища профилей пользователей
type ProfileStore interface {
	Upsert(ctx context.Context, p *domain.UserProfile) error
}

// Logger интерфейс для логирования
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
