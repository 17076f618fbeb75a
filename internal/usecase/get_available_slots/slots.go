package get_available_slots

import (
	"fmt"
	"time"

	"salon-booking-bot/internal/config"
	"salon-booking-bot/internal/domain"
	"salon-booking-bot/pkg/types"
)

// buildDayGrid строит полную сетку слотов рабочего дня
// от work_start_hour включительно до work_end_hour исключительно
// с шагом slot_duration_minutes
func buildDayGrid(schedule config.ScheduleConfig) ([]types.TimeString, error) {
	start, err := types.NewTimeStringFromString(fmt.Sprintf("%02d:00", schedule.WorkStartHour))
	if err != nil {
		return nil, err
	}

	end, err := types.NewTimeStringFromString(fmt.Sprintf("%02d:00", schedule.WorkEndHour%24))
	if err != nil {
		return nil, err
	}
	// 24:00 не представимо как TimeString, конец дня кодируем как отсутствие верхней границы
	endOfDay := schedule.WorkEndHour >= 24

	grid := make([]types.TimeString, 0)
	current := start

	for endOfDay || current.IsBefore(end) {
		grid = append(grid, current)

		next, err := current.AddMinutes(schedule.SlotDurationMinutes)
		if err != nil {
			// Следующий слот пересек полночь - сетка закончилась
			break
		}
		current = next
	}

	return grid, nil
}

// markSlots помечает занятые слоты и отбрасывает прошедшие на сегодня
// Отсечка прошедшего времени грубая, по часу: для сегодняшней даты
// убираются все слоты, чей час не позже текущего
func markSlots(grid []types.TimeString, booked []types.TimeString, date time.Time, now time.Time) ([]domain.Slot, error) {
	bookedSet := make(map[types.TimeString]struct{}, len(booked))
	for _, t := range booked {
		bookedSet[t] = struct{}{}
	}

	today := isSameDay(date, now)

	slots := make([]domain.Slot, 0, len(grid))
	for _, t := range grid {
		if today {
			hour, err := t.Hour()
			if err != nil {
				return nil, err
			}
			if hour <= now.Hour() {
				continue
			}
		}

		_, busy := bookedSet[t]
		slots = append(slots, domain.Slot{Time: t, Busy: busy})
	}

	return slots, nil
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
