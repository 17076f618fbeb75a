package create_booking

import (
	"time"

	"salon-booking-bot/internal/domain"
	"salon-booking-bot/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID    int64            // Telegram ID клиента
	UserName  string           // Отображаемое имя клиента
	Phone     string           // Телефон клиента
	ServiceID int64            // ID услуги
	StaffID   *int64           // ID мастера; nil = "любой мастер"
	Date      time.Time        // Дата записи (без времени)
	Time      types.TimeString // Время начала слота (например, "14:00")
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking *domain.Booking
	Service *domain.Service // Денормализованные данные для отображения
	Staff   *domain.Staff   // nil при записи к любому мастеру
}
