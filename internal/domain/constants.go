package domain

// Дефолтные параметры рабочей сетки
const (
	DefaultWorkStartHour       = 9
	DefaultWorkEndHour         = 21
	DefaultSlotDurationMinutes = 60
	DefaultDaysAhead           = 14
)

// Границы бизнес-валидации
const (
	MinSlotDurationMinutes    = 5
	MaxSlotDurationMinutes    = 480
	MaxServiceNameLength      = 100
	MinServiceDurationMinutes = 1
)

// Форматы времени и даты
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// DisplayDateFormat формат даты для сообщений пользователю
const DisplayDateFormat = "02.01.2006"

// AnyStaffID сентинел "любой мастер" в callback-данных и меню
// В хранилище соответствует staff_id = NULL
const AnyStaffID int64 = 0
