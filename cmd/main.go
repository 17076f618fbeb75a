package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salon-booking-bot/internal/bot"
	"salon-booking-bot/internal/config"
	"salon-booking-bot/internal/domain"
	bookingRepo "salon-booking-bot/internal/infra/storage/booking"
	catalogRepo "salon-booking-bot/internal/infra/storage/catalog"
	userprofileRepo "salon-booking-bot/internal/infra/storage/userprofile"
	bookingsService "salon-booking-bot/internal/service/bookings"
	catalogService "salon-booking-bot/internal/service/catalog"
	"salon-booking-bot/internal/session"
	createBookingUC "salon-booking-bot/internal/usecase/create_booking"
	getAvailableSlotsUC "salon-booking-bot/internal/usecase/get_available_slots"
	"salon-booking-bot/pkg/dbmetrics"
	"salon-booking-bot/pkg/logger"
	"salon-booking-bot/pkg/metrics"
	"salon-booking-bot/pkg/txmanager"
)

// slotsAdapter адаптирует use case расчета слотов
// к интерфейсу SlotsProvider машины состояний
type slotsAdapter struct {
	uc *getAvailableSlotsUC.UseCase
}

func (a *slotsAdapter) AvailableSlots(ctx context.Context, date time.Time, staffID *int64) ([]domain.Slot, error) {
	resp, err := a.uc.Execute(ctx, &getAvailableSlotsUC.Request{Date: date, StaffID: staffID})
	if err != nil {
		return nil, err
	}
	return resp.Slots, nil
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting salon-booking-bot...")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем репозитории (с метриками или без)
	var executor txmanager.DBExecutor = db
	if cfg.Metrics.Enabled {
		executor = dbmetrics.Wrap(db, metricsCollector)
		log.Info("Database metrics collection enabled")
	}

	bookingRepository := bookingRepo.NewRepository(executor)
	catalogRepository := catalogRepo.NewRepository(executor)
	profileRepository := userprofileRepo.NewRepository(executor)
	txMgr := txmanager.NewManager(db)

	// Инициализируем сервисы
	catalogSvc := catalogService.NewService(catalogRepository, log)
	bookingsSvc := bookingsService.NewService(bookingRepository, nil, cfg.Telegram.AdminIDs, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		catalogRepository,
		txMgr,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		cfg.Schedule,
		log,
	)

	// Машина состояний сценария записи
	sessionManager := session.NewManager(
		catalogSvc,
		&slotsAdapter{uc: getAvailableSlotsUseCase},
		createBookingUseCase,
		profileRepository,
		cfg.Schedule,
		log,
	)

	// Телеграм-шлюз
	tgBot, err := bot.New(
		cfg.Telegram,
		cfg.Database,
		sessionManager,
		catalogSvc,
		bookingsSvc,
		getAvailableSlotsUseCase,
		profileRepository,
		metricsCollector,
		log,
	)
	if err != nil {
		log.Fatal("Failed to initialize Telegram bot: %v", err)
	}

	// Шлюз рассылает уведомления о смене статусов
	bookingsSvc.SetNotifier(tgBot)

	// Служебный HTTP-сервер: health и prometheus-метрики
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting ops server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Ops server failed to start: %v", err)
		}
	}()

	// Запускаем цикл обработки обновлений
	botCtx, botCancel := context.WithCancel(context.Background())
	botDone := make(chan struct{})
	go func() {
		defer close(botDone)
		if err := tgBot.Run(botCtx); err != nil {
			log.Error("Bot stopped with error: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	botCancel()
	<-botDone

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Ops server shutdown error: %v", err)
	}

	log.Info("Server stopped")
}
