package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Config конфигурация сервиса, загружается из config.toml
type Config struct {
	Telegram TelegramConfig `toml:"telegram" validate:"required"`
	Schedule ScheduleConfig `toml:"schedule" validate:"required"`
	Database DatabaseConfig `toml:"database" validate:"required"`
	Server   ServerConfig   `toml:"server"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// TelegramConfig настройки Telegram-бота
type TelegramConfig struct {
	Token         string  `toml:"token" validate:"required"`
	AdminIDs      []int64 `toml:"admin_ids" validate:"required,min=1"`
	UpdateTimeout int     `toml:"update_timeout"`
	ContactsText  string  `toml:"contacts_text"`
}

// ScheduleConfig настройки рабочей сетки слотов
type ScheduleConfig struct {
	WorkStartHour       int `toml:"work_start_hour" validate:"min=0,max=23"`
	WorkEndHour         int `toml:"work_end_hour" validate:"min=1,max=24,gtfield=WorkStartHour"`
	SlotDurationMinutes int `toml:"slot_duration_minutes" validate:"min=5,max=480"`
	DaysAhead           int `toml:"days_ahead" validate:"min=1,max=365"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host" validate:"required"`
	Port            int    `toml:"port" validate:"required"`
	User            string `toml:"user" validate:"required"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname" validate:"required"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	QueryTimeout    int    `toml:"query_timeout"`     // секунды, таймаут на вызов хранилища
}

// ServerConfig настройки служебного HTTP-сервера (метрики, health)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// DSN возвращает строку подключения к PostgreSQL
func (d *DatabaseConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, sslMode)
}

// Load читает и валидирует конфигурацию из TOML-файла
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// defaultConfig возвращает конфигурацию с дефолтными значениями,
// которые TOML-файл может переопределить
func defaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			UpdateTimeout: 60,
		},
		Schedule: ScheduleConfig{
			WorkStartHour:       9,
			WorkEndHour:         21,
			SlotDurationMinutes: 60,
			DaysAhead:           14,
		},
		Database: DatabaseConfig{
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			QueryTimeout:    5,
		},
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			ShutdownTimeout: 10,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "salon-booking-bot",
		},
	}
}
