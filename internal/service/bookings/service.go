package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salon-booking-bot/internal/domain"
	bookingRepo "salon-booking-bot/internal/infra/storage/booking"
)

// Service управляет жизненным циклом бронирований
// Переходы статусов подчиняются частичному порядку domain.BookingStatus;
// права: смена статуса - только администраторы из статического списка,
// отмена собственной записи - владелец
type Service struct {
	repo     BookingRepository
	notifier Notifier
	adminIDs map[int64]struct{}
	logger   Logger
}

// NewService создает новый экземпляр сервиса жизненного цикла
func NewService(repo BookingRepository, notifier Notifier, adminIDs []int64, logger Logger) *Service {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}

	return &Service{
		repo:     repo,
		notifier: notifier,
		adminIDs: admins,
		logger:   logger,
	}
}

// SetNotifier подключает отправку уведомлений
// Нужен, потому что телеграм-шлюз создается после сервиса и сам зависит от него
func (s *Service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// IsAdmin проверяет, входит ли пользователь в список администраторов
func (s *Service) IsAdmin(userID int64) bool {
	_, ok := s.adminIDs[userID]
	return ok
}

// AdminIDs возвращает список администраторов для рассылки уведомлений
func (s *Service) AdminIDs() []int64 {
	ids := make([]int64, 0, len(s.adminIDs))
	for id := range s.adminIDs {
		ids = append(ids, id)
	}
	return ids
}

// Confirm подтверждает бронирование (pending -> confirmed)
// Доступно только администраторам
func (s *Service) Confirm(ctx context.Context, bookingID int64, actorID int64) (*domain.Booking, error) {
	return s.adminTransition(ctx, "Confirm", bookingID, actorID, domain.StatusConfirmed)
}

// Cancel отменяет бронирование (pending|confirmed -> cancelled)
// Доступно только администраторам
func (s *Service) Cancel(ctx context.Context, bookingID int64, actorID int64) (*domain.Booking, error) {
	return s.adminTransition(ctx, "Cancel", bookingID, actorID, domain.StatusCancelled)
}

// Complete отмечает бронирование выполненным (confirmed -> completed)
// Доступно только администраторам
func (s *Service) Complete(ctx context.Context, bookingID int64, actorID int64) (*domain.Booking, error) {
	return s.adminTransition(ctx, "Complete", bookingID, actorID, domain.StatusCompleted)
}

// CancelByRequester отменяет бронирование по инициативе клиента
// Доступно только владельцу записи
func (s *Service) CancelByRequester(ctx context.Context, bookingID int64, actorID int64) (*domain.Booking, error) {
	booking, err := s.getBooking(ctx, "CancelByRequester", bookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserID != actorID {
		s.logger.Warn("CancelByRequester: user=%d is not the owner of booking id=%d", actorID, bookingID)
		return nil, ErrUnauthorized
	}

	return s.applyTransition(ctx, "CancelByRequester", booking, domain.StatusCancelled, actorID)
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	return s.getBooking(ctx, "GetByID", bookingID)
}

// ListForUser возвращает активные записи клиента
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*domain.Booking, error) {
	bookings, err := s.repo.List(ctx, domain.BookingsFilter{UserID: &userID})
	if err != nil {
		s.logger.Error("ListForUser: repository error for user=%d: %v", userID, err)
		return nil, fmt.Errorf("%w: ListForUser - repository error: %v", ErrInternal, err)
	}
	return bookings, nil
}

// ListAll возвращает все бронирования, опционально по статусу
// Доступно только администраторам
func (s *Service) ListAll(ctx context.Context, actorID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	if !s.IsAdmin(actorID) {
		s.logger.Warn("ListAll: user=%d is not an admin", actorID)
		return nil, ErrUnauthorized
	}

	bookings, err := s.repo.List(ctx, domain.BookingsFilter{Status: status, IncludeInactive: true})
	if err != nil {
		s.logger.Error("ListAll: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListAll - repository error: %v", ErrInternal, err)
	}
	return bookings, nil
}

// ListForDate возвращает активные записи на дату, отсортированные по времени
// Доступно только администраторам
func (s *Service) ListForDate(ctx context.Context, actorID int64, date time.Time) ([]*domain.Booking, error) {
	if !s.IsAdmin(actorID) {
		s.logger.Warn("ListForDate: user=%d is not an admin", actorID)
		return nil, ErrUnauthorized
	}

	bookings, err := s.repo.List(ctx, domain.BookingsFilter{Date: &date})
	if err != nil {
		s.logger.Error("ListForDate: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListForDate - repository error: %v", ErrInternal, err)
	}
	return bookings, nil
}

// adminTransition выполняет смену статуса от имени администратора
func (s *Service) adminTransition(ctx context.Context, op string, bookingID, actorID int64, next domain.BookingStatus) (*domain.Booking, error) {
	if !s.IsAdmin(actorID) {
		s.logger.Warn("%s: user=%d is not an admin", op, actorID)
		return nil, ErrUnauthorized
	}

	booking, err := s.getBooking(ctx, op, bookingID)
	if err != nil {
		return nil, err
	}

	return s.applyTransition(ctx, op, booking, next, actorID)
}

// applyTransition проверяет легальность перехода и записывает новый статус
// Недопустимый переход оставляет строку нетронутой и возвращает ErrInvalidTransition
// Уведомление контрагенту best-effort: сбой логируется и не откатывает запись
func (s *Service) applyTransition(ctx context.Context, op string, booking *domain.Booking, next domain.BookingStatus, actorID int64) (*domain.Booking, error) {
	if !booking.Status.CanTransitionTo(next) {
		s.logger.Warn("%s: illegal transition %s -> %s for booking id=%d",
			op, booking.Status, next, booking.ID)
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, booking.ID, next); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, booking.ID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	booking.Status = next
	s.logger.Info("%s: booking id=%d -> %s", op, booking.ID, next)

	if s.notifier != nil {
		if err := s.notifier.NotifyStatusChange(ctx, booking, actorID); err != nil {
			s.logger.Warn("%s: failed to notify about booking id=%d: %v", op, booking.ID, err)
		}
	}

	return booking, nil
}

func (s *Service) getBooking(ctx context.Context, op string, bookingID int64) (*domain.Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, bookingID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}
