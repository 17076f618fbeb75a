package session

// State состояние сценария записи
type State int

const (
	// StateChoosingService выбор услуги
	StateChoosingService State = iota
	// StateChoosingStaff выбор мастера (или "любой мастер")
	StateChoosingStaff
	// StateChoosingDate выбор даты в окне [сегодня, сегодня + days_ahead)
	StateChoosingDate
	// StateChoosingTime выбор слота времени
	StateChoosingTime
	// StateEnteringPhone ввод телефона; пропускается, если телефон уже сохранен
	StateEnteringPhone
	// StateConfirming подтверждение собранной записи
	StateConfirming
	// StateCommitted терминальное состояние: бронирование создано
	StateCommitted
	// StateCancelled терминальное состояние: сценарий отменен, запись не создана
	StateCancelled
)

// String возвращает имя состояния для логов
func (s State) String() string {
	switch s {
	case StateChoosingService:
		return "choosing_service"
	case StateChoosingStaff:
		return "choosing_staff"
	case StateChoosingDate:
		return "choosing_date"
	case StateChoosingTime:
		return "choosing_time"
	case StateEnteringPhone:
		return "entering_phone"
	case StateConfirming:
		return "confirming"
	case StateCommitted:
		return "committed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsTerminal возвращает true для терминальных состояний
func (s State) IsTerminal() bool {
	return s == StateCommitted || s == StateCancelled
}
