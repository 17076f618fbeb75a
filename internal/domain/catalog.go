package domain

// Service услуга салона
// Цена хранится в минорных единицах валюты (рубли без копеек в текущей конфигурации)
type Service struct {
	ID              int64
	Name            string
	Price           int64
	DurationMinutes int
	Active          bool
}

// Staff мастер салона
// ServiceIDs - множество услуг, которые мастер выполняет (проверка на вхождение)
type Staff struct {
	ID         int64
	Name       string
	ServiceIDs map[int64]struct{}
	Active     bool
}

// Performs проверяет, что мастер выполняет услугу
func (s *Staff) Performs(serviceID int64) bool {
	_, ok := s.ServiceIDs[serviceID]
	return ok
}
