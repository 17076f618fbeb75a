package session

import "errors"

var (
	// ErrNoSession возвращается, когда у пользователя нет активного сценария записи
	ErrNoSession = errors.New("session: no active session")

	// ErrWrongState возвращается, когда операция не соответствует текущему состоянию
	ErrWrongState = errors.New("session: operation not allowed in current state")

	// ErrInvalidSelection возвращается при устаревшем или недопустимом выборе
	// (неактивная услуга, чужой мастер, дата вне окна записи)
	ErrInvalidSelection = errors.New("session: invalid selection")

	// ErrSlotUnavailable возвращается, когда выбранный слот занят -
	// при выборе времени или при проигранной гонке на фиксации
	ErrSlotUnavailable = errors.New("session: slot is not available")

	// ErrInvalidPhone возвращается при некорректном номере телефона
	ErrInvalidPhone = errors.New("session: invalid phone number")

	// ErrStore возвращается, когда хранилище недоступно
	ErrStore = errors.New("session: storage unavailable")
)
