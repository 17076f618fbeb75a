package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"salon-booking-bot/internal/domain"
	"salon-booking-bot/pkg/psqlbuilder"
	"salon-booking-bot/pkg/txmanager"
)

// Repository репозиторий каталога: услуги и мастера
// Связь мастер-услуга хранится в join-таблице staff_services
type Repository struct {
	db txmanager.DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db txmanager.DBExecutor) *Repository {
	return &Repository{db: db}
}

// ==================== УСЛУГИ ====================

// ListServices возвращает услуги, по умолчанию только активные
func (r *Repository) ListServices(ctx context.Context, activeOnly bool) ([]*domain.Service, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "name", "price", "duration_minutes", "active").
		From("services").
		OrderBy("id ASC")

	if activeOnly {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListServices - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListServices - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]*domain.Service, 0)
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Price, &s.DurationMinutes, &s.Active); err != nil {
			return nil, fmt.Errorf("%w: ListServices - scan row: %v", ErrScanRow, err)
		}
		services = append(services, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListServices - rows error: %v", ErrScanRow, err)
	}

	return services, nil
}

// GetService получает услугу по ID, включая деактивированные
// Деактивированные услуги должны резолвиться для отображения истории бронирований
func (r *Repository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "price", "duration_minutes", "active").
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.Service
	err = executor.QueryRowContext(ctx, query, args...).
		Scan(&s.ID, &s.Name, &s.Price, &s.DurationMinutes, &s.Active)

	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %v", ErrScanRow, err)
	}

	return &s, nil
}

// CreateService создает новую услугу и возвращает её с присвоенным ID
func (r *Repository) CreateService(ctx context.Context, s *domain.Service) (*domain.Service, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("services").
		Columns("name", "price", "duration_minutes", "active").
		Values(s.Name, s.Price, s.DurationMinutes, true).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateService - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&s.ID); err != nil {
		return nil, fmt.Errorf("%w: CreateService - execute insert: %v", ErrExecQuery, err)
	}

	s.Active = true
	return s, nil
}

// SetServiceActive переключает флаг активности услуги (мягкое удаление)
// Повторная установка того же значения не является ошибкой
func (r *Repository) SetServiceActive(ctx context.Context, id int64, active bool) error {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("services").
		Set("active", active).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetServiceActive - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetServiceActive - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetServiceActive - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrServiceNotFound
	}

	return nil
}

// ==================== МАСТЕРА ====================

// ListStaff возвращает мастеров вместе с множеством их услуг
func (r *Repository) ListStaff(ctx context.Context, activeOnly bool) ([]*domain.Staff, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "name", "active").
		From("staff").
		OrderBy("id ASC")

	if activeOnly {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListStaff - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListStaff - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	staff := make([]*domain.Staff, 0)
	byID := make(map[int64]*domain.Staff)
	for rows.Next() {
		var s domain.Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Active); err != nil {
			return nil, fmt.Errorf("%w: ListStaff - scan row: %v", ErrScanRow, err)
		}
		s.ServiceIDs = make(map[int64]struct{})
		staff = append(staff, &s)
		byID[s.ID] = &s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListStaff - rows error: %v", ErrScanRow, err)
	}

	if err := r.loadCapabilities(ctx, byID); err != nil {
		return nil, err
	}

	return staff, nil
}

// GetStaff получает мастера по ID вместе с множеством его услуг
func (r *Repository) GetStaff(ctx context.Context, id int64) (*domain.Staff, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "active").
		From("staff").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetStaff - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.Staff
	err = executor.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.Name, &s.Active)

	if err == sql.ErrNoRows {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaff - scan staff: %v", ErrScanRow, err)
	}

	s.ServiceIDs = make(map[int64]struct{})
	if err := r.loadCapabilities(ctx, map[int64]*domain.Staff{s.ID: &s}); err != nil {
		return nil, err
	}

	return &s, nil
}

// ListStaffForService возвращает активных мастеров, выполняющих услугу
func (r *Repository) ListStaffForService(ctx context.Context, serviceID int64) ([]*domain.Staff, error) {
	staff, err := r.ListStaff(ctx, true)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Staff, 0, len(staff))
	for _, s := range staff {
		if s.Performs(serviceID) {
			result = append(result, s)
		}
	}
	return result, nil
}

// CreateStaff создает мастера и записи его услуг в staff_services
func (r *Repository) CreateStaff(ctx context.Context, s *domain.Staff) (*domain.Staff, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("staff").
		Columns("name", "active").
		Values(s.Name, true).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateStaff - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&s.ID); err != nil {
		return nil, fmt.Errorf("%w: CreateStaff - execute insert: %v", ErrExecQuery, err)
	}
	s.Active = true

	if len(s.ServiceIDs) == 0 {
		return s, nil
	}

	insertBuilder := psqlbuilder.Insert("staff_services").Columns("staff_id", "service_id")
	for serviceID := range s.ServiceIDs {
		insertBuilder = insertBuilder.Values(s.ID, serviceID)
	}

	query, args, err = insertBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateStaff - build capabilities insert: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: CreateStaff - insert capabilities: %v", ErrExecQuery, err)
	}

	return s, nil
}

// SetStaffActive переключает флаг активности мастера (мягкое удаление)
func (r *Repository) SetStaffActive(ctx context.Context, id int64, active bool) error {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("staff").
		Set("active", active).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetStaffActive - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetStaffActive - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetStaffActive - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrStaffNotFound
	}

	return nil
}

// loadCapabilities загружает множества услуг для переданных мастеров
func (r *Repository) loadCapabilities(ctx context.Context, byID map[int64]*domain.Staff) error {
	if len(byID) == 0 {
		return nil
	}

	executor := txmanager.GetExecutor(ctx, r.db)

	ids := make([]int64, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	query, args, err := psqlbuilder.Select("staff_id", "service_id").
		From("staff_services").
		Where(squirrel.Eq{"staff_id": ids}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: loadCapabilities - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadCapabilities - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var staffID, serviceID int64
		if err := rows.Scan(&staffID, &serviceID); err != nil {
			return fmt.Errorf("%w: loadCapabilities - scan row: %v", ErrScanRow, err)
		}
		if s, ok := byID[staffID]; ok {
			s.ServiceIDs[serviceID] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadCapabilities - rows error: %v", ErrScanRow, err)
	}

	return nil
}
