package session

import (
	"sync"
	"time"

	"salon-booking-bot/pkg/types"
)

// Session сценарий записи одного пользователя
// Аккумулятор: поле, однажды заполненное, не перезаписывается -
// кроме явной навигации назад, которая очищает поля,
// заполненные после целевого шага
type Session struct {
	// mu защищает состояние одного сценария; менеджер удерживает его
	// на время обращений к хранилищу, не блокируя других пользователей
	mu sync.Mutex

	UserID   int64
	UserName string
	State    State

	ServiceID    int64
	ServiceName  string
	ServicePrice int64

	StaffID   *int64 // nil = "любой мастер" (после выбора сентинела)
	StaffName string
	// staffChosen отличает "мастер еще не выбран" от "выбран любой мастер"
	staffChosen bool

	Date  time.Time
	Time  types.TimeString
	Phone string
}

// newSession создает сценарий в начальном состоянии
func newSession(userID int64, userName string) *Session {
	return &Session{
		UserID:   userID,
		UserName: userName,
		State:    StateChoosingService,
	}
}

// StaffChosen возвращает true, если шаг выбора мастера пройден
func (s *Session) StaffChosen() bool {
	return s.staffChosen
}

// clearFromStaff очищает выбор мастера и все, что после него
func (s *Session) clearFromStaff() {
	s.StaffID = nil
	s.StaffName = ""
	s.staffChosen = false
	s.clearFromDate()
}

// clearFromDate очищает выбор даты и все, что после нее
func (s *Session) clearFromDate() {
	s.Date = time.Time{}
	s.clearFromTime()
}

// clearFromTime очищает выбор времени
// Телефон не очищается: он принадлежит профилю, а не конкретному слоту
func (s *Session) clearFromTime() {
	s.Time = ""
}
