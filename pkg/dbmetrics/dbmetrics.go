package dbmetrics

import (
	"context"
	"database/sql"
	"time"

	"salon-booking-bot/pkg/metrics"
)

// DB обертка над *sql.DB, записывающая длительность запросов в метрики
// Реализует txmanager.DBExecutor, поэтому подставляется в репозитории
// вместо голого *sql.DB
type DB struct {
	db *sql.DB
	m  *metrics.Metrics
}

// Wrap оборачивает соединение сбором метрик
func Wrap(db *sql.DB, m *metrics.Metrics) *DB {
	return &DB{db: db, m: m}
}

func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := d.db.ExecContext(ctx, query, args...)
	d.observe(start, err)
	return res, err
}

func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query, args...)
	d.observe(start, err)
	return rows, err
}

func (d *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := d.db.QueryRowContext(ctx, query, args...)
	d.observe(start, nil)
	return row
}

func (d *DB) observe(start time.Time, err error) {
	d.m.StoreQueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		d.m.StoreErrorsTotal.Inc()
	}
}
