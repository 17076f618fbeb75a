package get_available_slots

import (
	"context"
	"fmt"

	"salon-booking-bot/internal/config"
	"salon-booking-bot/internal/domain"
)

// UseCase use case расчета доступных слотов на дату
// Детерминирован относительно состояния хранилища, без побочных эффектов
type UseCase struct {
	bookingRepo  BookingRepository
	schedule     config.ScheduleConfig
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(bookingRepo BookingRepository, schedule config.ScheduleConfig, logger Logger) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		schedule:     schedule,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет расчет слотов
//
// Алгоритм:
//  1. Строим полную сетку слотов от начала до конца рабочего дня
//     с фиксированным шагом (сетка не зависит от длительности услуги)
//  2. Получаем занятые времена на дату с учетом фильтра по мастеру
//  3. Если дата - сегодня, убираем слоты с часом не позже текущего
//     (грубая отсечка по часу, не по минутам)
//  4. Занятые слоты помечаем Busy, а не скрываем - презентация
//     показывает их недоступными
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	grid, err := buildDayGrid(uc.schedule)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to build day grid: %v", err)
		return nil, fmt.Errorf("%w: failed to build day grid: %v", ErrInvalidInput, err)
	}

	booked, err := uc.bookingRepo.ListBookedSlots(ctx, req.Date, req.StaffID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list booked slots: %v", err)
		return nil, fmt.Errorf("%w: failed to list booked slots: %v", ErrStore, err)
	}

	slots, err := markSlots(grid, booked, req.Date, now)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to mark slots: %v", err)
		return nil, fmt.Errorf("%w: failed to mark slots: %v", ErrInvalidInput, err)
	}

	uc.logger.Info("GetAvailableSlots: date=%s, staff=%s, slots=%d, booked=%d",
		req.Date.Format(domain.DateFormat), staffLabel(req.StaffID), len(slots), len(booked))

	return &Response{Date: req.Date, Slots: slots}, nil
}

func staffLabel(staffID *int64) string {
	if staffID == nil {
		return "any"
	}
	return fmt.Sprintf("%d", *staffID)
}
