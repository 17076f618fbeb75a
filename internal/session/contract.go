package session

import (
	"context"
	"time"

	"salon-booking-bot/internal/domain"
	createBooking "salon-booking-bot/internal/usecase/create_booking"
)

// Catalog интерфейс каталога услуг и мастеров
type Catalog interface {
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	GetStaff(ctx context.Context, id int64) (*domain.Staff, error)
}

// SlotsProvider интерфейс калькулятора доступных слотов
type SlotsProvider interface {
	AvailableSlots(ctx context.Context, date time.Time, staffID *int64) ([]domain.Slot, error)
}

// Committer интерфейс атомарной фиксации бронирования
type Committer interface {
	Execute(ctx context.Context, req *createBooking.Request) (*createBooking.Response, error)
}

// ProfileStore интерфейс хранилища профилей пользователей
type ProfileStore interface {
	GetPhone(ctx context.Context, userID int64) (*string, error)
	SetPhone(ctx context.Context, userID int64, phone string) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
