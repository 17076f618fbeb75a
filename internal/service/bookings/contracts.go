package bookings

import (
	"context"

	"salon-booking-bot/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
}

// Notifier интерфейс отправки уведомлений контрагенту:
// клиенту при действии админа, админам при отмене клиентом
// Уведомления advisory: сбой логируется и не откатывает смену статуса
type Notifier interface {
	NotifyStatusChange(ctx context.Context, booking *domain.Booking, actorID int64) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
