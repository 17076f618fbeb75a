package get_available_slots

import (
	"context"
	"time"

	"salon-booking-bot/pkg/types"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// ListBookedSlots возвращает занятые времена на дату,
	// опционально отфильтрованные по мастеру, без отмененных бронирований
	ListBookedSlots(ctx context.Context, date time.Time, staffID *int64) ([]types.TimeString, error)
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
