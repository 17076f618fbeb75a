package get_available_slots

import (
	"time"

	"salon-booking-bot/internal/domain"
)

// Request модель запроса на расчет слотов
type Request struct {
	Date    time.Time // Дата, на которую считаются слоты (без времени)
	StaffID *int64    // Фильтр по мастеру; nil = слоты без привязки к мастеру
}

// Response модель ответа со слотами рабочего дня
// Slots упорядочены по возрастанию времени; занятые помечены Busy,
// прошедшие на сегодня слоты исключены из сетки целиком
type Response struct {
	Date  time.Time
	Slots []domain.Slot
}
