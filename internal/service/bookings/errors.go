package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("bookings: booking not found")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса
	// Терминальные статусы (cancelled, completed) переоткрыть нельзя
	ErrInvalidTransition = errors.New("bookings: invalid status transition")

	// ErrUnauthorized возвращается, когда действие выполняет
	// пользователь без прав (не администратор или не владелец записи)
	ErrUnauthorized = errors.New("bookings: unauthorized")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings: internal error")
)
