package domain

import "time"

// UserProfile профиль пользователя Telegram
// Обновляется при каждом взаимодействии; телефон кэшируется,
// чтобы не запрашивать его при повторных записях
type UserProfile struct {
	UserID    int64
	Username  string
	FullName  string
	Phone     *string
	CreatedAt time.Time
}

// HasPhone возвращает true, если телефон уже сохранен
func (u *UserProfile) HasPhone() bool {
	return u.Phone != nil && *u.Phone != ""
}
