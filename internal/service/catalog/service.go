package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"salon-booking-bot/internal/domain"
	catalogRepo "salon-booking-bot/internal/infra/storage/catalog"
)

// Service сервис управления каталогом услуг и мастеров
// Удаление всегда мягкое: бронирования должны резолвить услугу
// и мастера для отображения истории
type Service struct {
	repo   CatalogRepository
	logger Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(repo CatalogRepository, logger Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// AddService создает новую услугу
// Цена и длительность должны быть положительными
func (s *Service) AddService(ctx context.Context, name string, price int64, durationMinutes int) (*domain.Service, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > domain.MaxServiceNameLength {
		return nil, fmt.Errorf("%w: service name must be 1..%d characters",
			ErrInvalidInput, domain.MaxServiceNameLength)
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if durationMinutes < domain.MinServiceDurationMinutes {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}

	created, err := s.repo.CreateService(ctx, &domain.Service{
		Name:            name,
		Price:           price,
		DurationMinutes: durationMinutes,
	})
	if err != nil {
		s.logger.Error("AddService: repository error: %v", err)
		return nil, fmt.Errorf("%w: AddService - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("AddService: created service id=%d, name=%q, price=%d, duration=%d",
		created.ID, created.Name, created.Price, created.DurationMinutes)
	return created, nil
}

// DeactivateService мягко удаляет услугу
// Повторная деактивация - no-op без ошибки
func (s *Service) DeactivateService(ctx context.Context, id int64) error {
	return s.setServiceActive(ctx, id, false)
}

// ActivateService возвращает услугу в каталог
func (s *Service) ActivateService(ctx context.Context, id int64) error {
	return s.setServiceActive(ctx, id, true)
}

func (s *Service) setServiceActive(ctx context.Context, id int64, active bool) error {
	if err := s.repo.SetServiceActive(ctx, id, active); err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			s.logger.Warn("SetServiceActive: service id=%d not found", id)
			return ErrServiceNotFound
		}
		s.logger.Error("SetServiceActive: repository error for service id=%d: %v", id, err)
		return fmt.Errorf("%w: SetServiceActive - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("SetServiceActive: service id=%d active=%t", id, active)
	return nil
}

// ListServices возвращает услуги каталога
func (s *Service) ListServices(ctx context.Context, activeOnly bool) ([]*domain.Service, error) {
	services, err := s.repo.ListServices(ctx, activeOnly)
	if err != nil {
		s.logger.Error("ListServices: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListServices - repository error: %v", ErrInternal, err)
	}
	return services, nil
}

// GetService получает услугу по ID, включая деактивированные
func (s *Service) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	service, err := s.repo.GetService(ctx, id)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		s.logger.Error("GetService: repository error for id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetService - repository error: %v", ErrInternal, err)
	}
	return service, nil
}

// StaffForService возвращает активных мастеров, выполняющих услугу
// Сентинел "любой мастер" добавляет presentation-слой
func (s *Service) StaffForService(ctx context.Context, serviceID int64) ([]*domain.Staff, error) {
	staff, err := s.repo.ListStaffForService(ctx, serviceID)
	if err != nil {
		s.logger.Error("StaffForService: repository error for service id=%d: %v", serviceID, err)
		return nil, fmt.Errorf("%w: StaffForService - repository error: %v", ErrInternal, err)
	}
	return staff, nil
}

// GetStaff получает мастера по ID, включая деактивированных
func (s *Service) GetStaff(ctx context.Context, id int64) (*domain.Staff, error) {
	staff, err := s.repo.GetStaff(ctx, id)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrStaffNotFound) {
			return nil, ErrStaffNotFound
		}
		s.logger.Error("GetStaff: repository error for id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetStaff - repository error: %v", ErrInternal, err)
	}
	return staff, nil
}

// ListStaff возвращает мастеров салона
func (s *Service) ListStaff(ctx context.Context, activeOnly bool) ([]*domain.Staff, error) {
	staff, err := s.repo.ListStaff(ctx, activeOnly)
	if err != nil {
		s.logger.Error("ListStaff: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListStaff - repository error: %v", ErrInternal, err)
	}
	return staff, nil
}

// AddStaff создает мастера с множеством его услуг
func (s *Service) AddStaff(ctx context.Context, name string, serviceIDs []int64) (*domain.Staff, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: staff name is required", ErrInvalidInput)
	}

	capabilities := make(map[int64]struct{}, len(serviceIDs))
	for _, id := range serviceIDs {
		if id <= 0 {
			return nil, fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
		}
		if _, err := s.repo.GetService(ctx, id); err != nil {
			if errors.Is(err, catalogRepo.ErrServiceNotFound) {
				return nil, fmt.Errorf("%w: service id=%d", ErrServiceNotFound, id)
			}
			s.logger.Error("AddStaff: failed to resolve service id=%d: %v", id, err)
			return nil, fmt.Errorf("%w: AddStaff - repository error: %v", ErrInternal, err)
		}
		capabilities[id] = struct{}{}
	}

	created, err := s.repo.CreateStaff(ctx, &domain.Staff{
		Name:       name,
		ServiceIDs: capabilities,
	})
	if err != nil {
		s.logger.Error("AddStaff: repository error: %v", err)
		return nil, fmt.Errorf("%w: AddStaff - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("AddStaff: created staff id=%d, name=%q, services=%d",
		created.ID, created.Name, len(created.ServiceIDs))
	return created, nil
}

// SetStaffActive переключает флаг активности мастера
func (s *Service) SetStaffActive(ctx context.Context, id int64, active bool) error {
	if err := s.repo.SetStaffActive(ctx, id, active); err != nil {
		if errors.Is(err, catalogRepo.ErrStaffNotFound) {
			s.logger.Warn("SetStaffActive: staff id=%d not found", id)
			return ErrStaffNotFound
		}
		s.logger.Error("SetStaffActive: repository error for staff id=%d: %v", id, err)
		return fmt.Errorf("%w: SetStaffActive - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("SetStaffActive: staff id=%d active=%t", id, active)
	return nil
}
