package domain

import (
	"time"

	"salon-booking-bot/pkg/types"
)

// BookingStatus статус бронирования
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// Booking запись клиента на услугу
// ServiceID и StaffID после создания не изменяются, меняется только статус
type Booking struct {
	ID        int64
	UserID    int64
	UserName  string
	UserPhone string
	ServiceID int64
	StaffID   *int64 // nil = "любой мастер"
	Date      time.Time
	Time      types.TimeString
	Status    BookingStatus
	CreatedAt time.Time
}

// CanTransitionTo проверяет допустимость перехода статуса
// Частичный порядок: pending -> {confirmed, cancelled},
// confirmed -> {cancelled, completed}; cancelled и completed терминальны
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled || next == StatusCompleted
	default:
		return false
	}
}

// IsTerminal возвращает true для терминальных статусов
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// IsValid проверяет, что статус входит в известный набор
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsActive возвращает true, если бронирование занимает слот
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// CanBeCancelled возвращает true, если бронирование еще можно отменить
func (b *Booking) CanBeCancelled() bool {
	return b.Status.CanTransitionTo(StatusCancelled)
}

// BookingsFilter фильтр для выборки бронирований
type BookingsFilter struct {
	UserID          *int64         // Фильтр по клиенту (опционально)
	Date            *time.Time     // Фильтр по дате (опционально)
	StaffID         *int64         // Фильтр по мастеру (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли отмененные бронирования
}
