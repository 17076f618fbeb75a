package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"salon-booking-bot/internal/config"
	"salon-booking-bot/internal/domain"
	"salon-booking-bot/pkg/metrics"
)

// Bot телеграм-шлюз сервиса записи
// Все пользовательские тексты на русском, разметка HTML
type Bot struct {
	api      *tgbotapi.BotAPI
	sessions SessionManager
	catalog  CatalogService
	bookings BookingsService
	slots    SlotsCalculator
	profiles ProfileStore

	cfg          config.TelegramConfig
	queryTimeout time.Duration
	metrics      *metrics.Metrics
	logger       Logger

	// adminDialogs состояния диалога добавления услуги, по админу
	adminDialogs map[int64]*adminDialog
	dialogsMu    sync.Mutex
}

// New создает бота и проверяет токен обращением к Telegram API
func New(
	cfg config.TelegramConfig,
	dbCfg config.DatabaseConfig,
	sessions SessionManager,
	catalog CatalogService,
	bookings BookingsService,
	slots SlotsCalculator,
	profiles ProfileStore,
	m *metrics.Metrics,
	logger Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("bot: failed to create Telegram API client: %w", err)
	}

	queryTimeout := time.Duration(dbCfg.QueryTimeout) * time.Second
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}

	return &Bot{
		api:          api,
		sessions:     sessions,
		catalog:      catalog,
		bookings:     bookings,
		slots:        slots,
		profiles:     profiles,
		cfg:          cfg,
		queryTimeout: queryTimeout,
		metrics:      m,
		logger:       logger,
		adminDialogs: make(map[int64]*adminDialog),
	}, nil
}

// Run запускает цикл long-poll и обрабатывает обновления до отмены контекста
// Обновления обрабатываются последовательно, в одной горутине
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Bot: authorized as @%s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("Bot: update loop stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.countUpdate("message")
		b.upsertProfile(ctx, update.Message.From)
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.countUpdate("callback")
		b.upsertProfile(ctx, update.CallbackQuery.From)
		b.handleCallback(ctx, update.CallbackQuery)
	default:
		b.countUpdate("other")
	}
}

// upsertProfile сохраняет профиль пользователя при каждом обращении
// Телефон здесь не трогается: Upsert не затирает сохраненный номер
func (b *Bot) upsertProfile(ctx context.Context, from *tgbotapi.User) {
	if from == nil {
		return
	}

	storeCtx, cancel := context.WithTimeout(ctx, b.queryTimeout)
	defer cancel()

	err := b.profiles.Upsert(storeCtx, &domain.UserProfile{
		UserID:   from.ID,
		Username: from.UserName,
		FullName: displayName(from),
	})
	if err != nil {
		b.logger.Warn("Bot: failed to upsert profile for user=%d: %v", from.ID, err)
	}
}

func (b *Bot) countUpdate(updateType string) {
	if b.metrics != nil {
		b.metrics.UpdatesTotal.WithLabelValues(updateType).Inc()
	}
}

func (b *Bot) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.queryTimeout)
}

// sendText отправляет простое текстовое сообщение
func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	b.send(msg)
}

// sendWithKeyboard отправляет сообщение с клавиатурой
func (b *Bot) sendWithKeyboard(chatID int64, text string, keyboard interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard
	b.send(msg)
}

func (b *Bot) send(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Bot: failed to send message to chat=%d: %v", msg.ChatID, err)
	}
}

// answerCallback закрывает "часики" на кнопке; alert показывает всплывающее окно
func (b *Bot) answerCallback(queryID, text string, alert bool) {
	callback := tgbotapi.NewCallback(queryID, text)
	callback.ShowAlert = alert
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Warn("Bot: failed to answer callback: %v", err)
	}
}

func displayName(from *tgbotapi.User) string {
	name := from.FirstName
	if from.LastName != "" {
		name += " " + from.LastName
	}
	if name == "" {
		name = from.UserName
	}
	return name
}
