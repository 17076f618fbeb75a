package create_booking

import (
	"context"
	"errors"
	"fmt"

	"salon-booking-bot/internal/domain"
	bookingRepo "salon-booking-bot/internal/infra/storage/booking"
	catalogRepo "salon-booking-bot/internal/infra/storage/catalog"
)

// UseCase use case фиксации бронирования
// Проверка "слот свободен" и вставка выполняются одной сериализуемой
// транзакцией - это единственная защита от двойной записи на слот
type UseCase struct {
	bookingRepo BookingRepository
	catalogRepo CatalogRepository
	txManager   TransactionManager
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	catalogRepo CatalogRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		catalogRepo: catalogRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// Execute выполняет use case создания бронирования
// При проигранной гонке за слот возвращает ErrSlotUnavailable;
// частично зафиксированных состояний не бывает
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, service=%d, staff=%s, date=%s, time=%s",
		req.UserID, req.ServiceID, staffLabel(req.StaffID),
		req.Date.Format(domain.DateFormat), req.Time)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Услуга должна существовать и быть активной
	service, err := uc.catalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.Active {
		uc.logger.Warn("CreateBooking: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	// 3. Конкретный мастер должен быть активен и выполнять услугу
	var staff *domain.Staff
	if req.StaffID != nil {
		staff, err = uc.catalogRepo.GetStaff(ctx, *req.StaffID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrStaffNotFound) {
				uc.logger.Warn("CreateBooking: staff id=%d not found", *req.StaffID)
				return nil, ErrStaffNotFound
			}
			uc.logger.Error("CreateBooking: failed to get staff id=%d: %v", *req.StaffID, err)
			return nil, fmt.Errorf("%w: failed to get staff: %v", ErrInternal, err)
		}
		if !staff.Active {
			uc.logger.Warn("CreateBooking: staff id=%d is inactive", *req.StaffID)
			return nil, ErrStaffNotFound
		}
		if !staff.Performs(req.ServiceID) {
			uc.logger.Warn("CreateBooking: staff id=%d does not perform service id=%d",
				*req.StaffID, req.ServiceID)
			return nil, ErrStaffCannotPerform
		}
	}

	var result *domain.Booking

	// 4. Проверка слота и вставка - одна атомарная единица
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		taken, err := uc.bookingRepo.CountAtSlot(txCtx, req.Date, req.Time, req.StaffID)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to count at slot: %v", err)
			return fmt.Errorf("%w: failed to count at slot: %w", ErrInternal, err)
		}

		if taken > 0 {
			uc.logger.Warn("CreateBooking: slot %s %s staff=%s already taken",
				req.Date.Format(domain.DateFormat), req.Time, staffLabel(req.StaffID))
			return ErrSlotUnavailable
		}

		booking := &domain.Booking{
			UserID:    req.UserID,
			UserName:  req.UserName,
			UserPhone: req.Phone,
			ServiceID: req.ServiceID,
			StaffID:   req.StaffID,
			Date:      req.Date,
			Time:      req.Time,
			Status:    domain.StatusPending,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			// Уникальный индекс - последняя линия защиты от гонки
			if errors.Is(err, bookingRepo.ErrSlotTaken) {
				uc.logger.Warn("CreateBooking: lost slot race on insert: date=%s, time=%s",
					req.Date.Format(domain.DateFormat), req.Time)
				return ErrSlotUnavailable
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d", result.ID)

	return &Response{
		Booking: result,
		Service: service,
		Staff:   staff,
	}, nil
}

func staffLabel(staffID *int64) string {
	if staffID == nil {
		return "any"
	}
	return fmt.Sprintf("%d", *staffID)
}
