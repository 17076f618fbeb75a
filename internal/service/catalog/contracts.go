package catalog

import (
	"context"

	"salon-booking-bot/internal/domain"
)

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	ListServices(ctx context.Context, activeOnly bool) ([]*domain.Service, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	CreateService(ctx context.Context, s *domain.Service) (*domain.Service, error)
	SetServiceActive(ctx context.Context, id int64, active bool) error
	ListStaff(ctx context.Context, activeOnly bool) ([]*domain.Staff, error)
	GetStaff(ctx context.Context, id int64) (*domain.Staff, error)
	ListStaffForService(ctx context.Context, serviceID int64) ([]*domain.Staff, error)
	CreateStaff(ctx context.Context, s *domain.Staff) (*domain.Staff, error)
	SetStaffActive(ctx context.Context, id int64, active bool) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
