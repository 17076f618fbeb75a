package booking

import "salon-booking-bot/pkg/txmanager"

// DBExecutor переиспользуем интерфейс из txmanager для работы с БД
// Поддерживает *sql.DB и *sql.Tx
type DBExecutor = txmanager.DBExecutor
