package userprofile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"salon-booking-bot/internal/domain"
	"salon-booking-bot/pkg/psqlbuilder"
	"salon-booking-bot/pkg/txmanager"
)

// Repository репозиторий профилей пользователей
type Repository struct {
	db txmanager.DBExecutor
}

// NewRepository создает новый экземпляр репозитория профилей
func NewRepository(db txmanager.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert создает или обновляет профиль пользователя
// Вызывается при каждом взаимодействии; сохраненный телефон не затирается
func (r *Repository) Upsert(ctx context.Context, p *domain.UserProfile) error {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("user_profiles").
		Columns("user_id", "username", "full_name", "phone").
		Values(p.UserID, p.Username, p.FullName, p.Phone).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET " +
			"username = EXCLUDED.username, " +
			"full_name = EXCLUDED.full_name, " +
			"phone = COALESCE(EXCLUDED.phone, user_profiles.phone)").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Upsert - execute upsert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetPhone возвращает сохраненный телефон пользователя
// Возвращает nil без ошибки, если профиля нет или телефон не сохранен
func (r *Repository) GetPhone(ctx context.Context, userID int64) (*string, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("phone").
		From("user_profiles").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetPhone - build select query: %v", ErrBuildQuery, err)
	}

	var phone *string
	err = executor.QueryRowContext(ctx, query, args...).Scan(&phone)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetPhone - scan phone: %v", ErrScanRow, err)
	}

	return phone, nil
}

// SetPhone сохраняет телефон пользователя для повторного использования
func (r *Repository) SetPhone(ctx context.Context, userID int64, phone string) error {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("user_profiles").
		Set("phone", phone).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetPhone - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetPhone - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetPhone - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrProfileNotFound
	}

	return nil
}
