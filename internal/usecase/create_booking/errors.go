package create_booking

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена или деактивирована
	ErrServiceNotFound = errors.New("create_booking: service not found or inactive")

	// ErrStaffNotFound возвращается, когда мастер не найден или деактивирован
	ErrStaffNotFound = errors.New("create_booking: staff not found or inactive")

	// ErrStaffCannotPerform возвращается, когда мастер не выполняет выбранную услугу
	ErrStaffCannotPerform = errors.New("create_booking: staff does not perform this service")

	// ErrSlotUnavailable возвращается, когда слот занят на момент фиксации
	// (проигранная гонка или устаревший выбор)
	ErrSlotUnavailable = errors.New("create_booking: slot is not available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
