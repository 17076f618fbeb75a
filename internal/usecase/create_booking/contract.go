package create_booking

import (
	"context"
	"time"

	"salon-booking-bot/internal/domain"
	"salon-booking-bot/pkg/types"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	// CountAtSlot считает неотмененные бронирования на слот
	// с точным сопоставлением мастера (nil соответствует только NULL)
	CountAtSlot(ctx context.Context, date time.Time, t types.TimeString, staffID *int64) (int, error)
}

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	GetStaff(ctx context.Context, id int64) (*domain.Staff, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
