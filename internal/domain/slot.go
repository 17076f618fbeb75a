package domain

import "salon-booking-bot/pkg/types"

// Slot слот на сетке рабочего дня
// Занятые слоты не скрываются из выдачи - presentation-слой показывает их недоступными
type Slot struct {
	Time types.TimeString
	Busy bool
}

// FreeSlots возвращает только свободные слоты, сохраняя порядок
func FreeSlots(slots []Slot) []types.TimeString {
	free := make([]types.TimeString, 0, len(slots))
	for _, s := range slots {
		if !s.Busy {
			free = append(free, s.Time)
		}
	}
	return free
}
