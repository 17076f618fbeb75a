package get_available_slots

import "fmt"

// validateRequest валидирует входные данные запроса
// Прошедшие даты не отклоняются - фильтрация прошедшего
// выполняется на уровне слотов, не дат
func validateRequest(req *Request) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StaffID != nil && *req.StaffID <= 0 {
		return fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}

	return nil
}
