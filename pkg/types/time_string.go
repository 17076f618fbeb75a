package types

import (
	"errors"
	"fmt"
	"time"
)

// TimeString время суток в формате "HH:MM" (начало слота на сетке расписания)
type TimeString string

var (
	// ErrInvalidTimeString возвращается при некорректном формате времени
	ErrInvalidTimeString = errors.New("types: invalid time string format, expected HH:MM")
)

// NewTimeString создает TimeString из time.Time (отбрасывает секунды)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format("15:04"))
}

// NewTimeStringFromString парсит и валидирует строку "HH:MM"
// Принимается только каноническая форма с ведущими нулями:
// time.Parse сам по себе пропускает "9:00"
func NewTimeStringFromString(s string) (TimeString, error) {
	parsed, err := time.Parse("15:04", s)
	if err != nil || parsed.Format("15:04") != s {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	return TimeString(s), nil
}

// String возвращает строковое представление
func (t TimeString) String() string {
	return string(t)
}

// IsZero возвращает true, если значение не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

// Validate проверяет формат значения
func (t TimeString) Validate() error {
	_, err := NewTimeStringFromString(string(t))
	return err
}

// Hour возвращает час начала слота
func (t TimeString) Hour() (int, error) {
	parsed, err := time.Parse("15:04", string(t))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeString, t)
	}
	return parsed.Hour(), nil
}

// AddMinutes возвращает время, сдвинутое на minutes минут вперед
// Выход за границу суток считается ошибкой - слоты не пересекают полночь
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	parsed, err := time.Parse("15:04", string(t))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeString, t)
	}

	shifted := parsed.Add(time.Duration(minutes) * time.Minute)
	if shifted.Day() != parsed.Day() {
		return "", fmt.Errorf("%w: %q + %d minutes crosses midnight", ErrInvalidTimeString, t, minutes)
	}

	return TimeString(shifted.Format("15:04")), nil
}

// IsBefore возвращает true, если t строго раньше other
func (t TimeString) IsBefore(other TimeString) bool {
	return string(t) < string(other)
}

// IsAfter возвращает true, если t строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return string(t) > string(other)
}
