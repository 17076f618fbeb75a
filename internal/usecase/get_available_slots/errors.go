package get_available_slots

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrStore возвращается, когда хранилище недоступно
	// Частичный или устаревший результат при этом не возвращается
	ErrStore = errors.New("get_available_slots: storage unavailable")
)
