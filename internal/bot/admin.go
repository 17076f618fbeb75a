package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"salon-booking-bot/internal/domain"
	"salon-booking-bot/internal/service/bookings"
	"salon-booking-bot/internal/service/catalog"
)

// Шаги диалога добавления услуги
const (
	dialogAwaitingName = iota
	dialogAwaitingPrice
	dialogAwaitingDuration
)

// adminDialog состояние диалога добавления услуги
type adminDialog struct {
	step  int
	name  string
	price int64
}

func (b *Bot) showAdminPanel(ctx context.Context, chatID, userID int64) {
	if !b.bookings.IsAdmin(userID) {
		b.sendText(chatID, "Эта команда доступна только администраторам.")
		return
	}

	b.sendWithKeyboard(chatID, "🛠 <b>Панель администратора</b>", adminPanelKeyboard())
}

func (b *Bot) handleAdminCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	userID := query.From.ID
	data := query.Data

	if !b.bookings.IsAdmin(userID) {
		b.answerCallback(query.ID, "Недостаточно прав", true)
		return
	}
	b.answerCallback(query.ID, "", false)

	switch {
	case data == cbAdminPanel:
		b.sendWithKeyboard(chatID, "🛠 <b>Панель администратора</b>", adminPanelKeyboard())
	case data == cbAdminAll:
		b.showAllBookings(ctx, chatID, userID)
	case data == cbAdminToday:
		b.showTodayBookings(ctx, chatID, userID)
	case data == cbAdminAddSvc:
		b.startAddServiceDialog(chatID, userID)
	case data == cbAdminManage:
		b.showManageServices(ctx, chatID)
	case strings.HasPrefix(data, cbSvcOn):
		b.toggleService(ctx, chatID, strings.TrimPrefix(data, cbSvcOn), true)
	case strings.HasPrefix(data, cbSvcOff):
		b.toggleService(ctx, chatID, strings.TrimPrefix(data, cbSvcOff), false)
	case strings.HasPrefix(data, cbAdminConfirm):
		b.adminStatusChange(ctx, chatID, userID, strings.TrimPrefix(data, cbAdminConfirm), b.bookings.Confirm)
	case strings.HasPrefix(data, cbAdminCancel):
		b.adminStatusChange(ctx, chatID, userID, strings.TrimPrefix(data, cbAdminCancel), b.bookings.Cancel)
	case strings.HasPrefix(data, cbAdminComplete):
		b.adminStatusChange(ctx, chatID, userID, strings.TrimPrefix(data, cbAdminComplete), b.bookings.Complete)
	default:
		b.logger.Warn("Bot: unknown callback %q from user=%d", data, userID)
	}
}

// showAllBookings список всех записей, включая отмененные и выполненные
func (b *Bot) showAllBookings(ctx context.Context, chatID, userID int64) {
	storeCtx, cancel := b.storeCtx(ctx)
	defer cancel()

	list, err := b.bookings.ListAll(storeCtx, userID, nil)
	if err != nil {
		b.logger.Error("Bot: failed to list all bookings: %v", err)
		b.sendText(chatID, msgSystemError)
		return
	}
	b.renderAdminBookings(storeCtx, chatID, "📒 <b>Все записи:</b>", list)
}

// showTodayBookings записи на сегодняшнюю дату
func (b *Bot) showTodayBookings(ctx context.Context, chatID, userID int64) {
	storeCtx, cancel := b.storeCtx(ctx)
	defer cancel()

	list, err := b.bookings.ListForDate(storeCtx, userID, time.Now())
	if err != nil {
		b.logger.Error("Bot: failed to list today bookings: %v", err)
		b.sendText(chatID, msgSystemError)
		return
	}
	b.renderAdminBookings(storeCtx, chatID, "📅 <b>Записи на сегодня:</b>", list)
}

func (b *Bot) renderAdminBookings(ctx context.Context, chatID int64, title string, list []*domain.Booking) {
	if len(list) == 0 {
		b.sendText(chatID, title+"\n\nЗаписей нет.")
		return
	}

	var sb strings.Builder
	sb.WriteString(title + "\n\n")
	for _, bk := range list {
		sb.WriteString(fmt.Sprintf("#%d 👩 %s 📞 %s\n", bk.ID, bk.UserName, bk.UserPhone))
		sb.WriteString(b.renderBookingLine(ctx, bk))
		sb.WriteString("\n")
	}
	b.sendText(chatID, sb.String())
}

type statusChangeFn func(ctx context.Context, bookingID int64, actorID int64) (*domain.Booking, error)

// adminStatusChange общий обработчик кнопок подтвердить/отменить/завершить
func (b *Bot) adminStatusChange(ctx context.Context, chatID, userID int64, raw string, change statusChangeFn) {
	bookingID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		b.logger.Warn("Bot: bad admin status callback %q: %v", raw, err)
		return
	}

	storeCtx, cancel := b.storeCtx(ctx)
	defer cancel()

	booking, err := change(storeCtx, bookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidTransition):
			b.sendText(chatID, fmt.Sprintf("❌ Запись #%d уже нельзя перевести в этот статус.", bookingID))
		case errors.Is(err, bookings.ErrBookingNotFound):
			b.sendText(chatID, fmt.Sprintf("❌ Запись #%d не найдена.", bookingID))
		default:
			b.logger.Error("Bot: admin status change failed for booking=%d: %v", bookingID, err)
			b.sendText(chatID, msgSystemError)
		}
		return
	}

	b.countStatusChange(booking.Status)
	b.sendText(chatID, fmt.Sprintf("Запись #%d: %s", booking.ID, statusLabel(booking.Status)))
}

// startAddServiceDialog начинает диалог добавления услуги: имя → цена → длительность
func (b *Bot) startAddServiceDialog(chatID, userID int64) {
	b.dialogsMu.Lock()
	b.adminDialogs[userID] = &adminDialog{step: dialogAwaitingName}
	b.dialogsMu.Unlock()

	b.sendText(chatID, "Введите название новой услуги:")
}

func (b *Bot) inAdminDialog(userID int64) bool {
	b.dialogsMu.Lock()
	defer b.dialogsMu.Unlock()

	_, ok := b.adminDialogs[userID]
	return ok
}

func (b *Bot) handleAdminDialogInput(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	if text == "/cancel" {
		b.dropAdminDialog(userID)
		b.sendText(chatID, "Добавление услуги отменено.")
		return
	}

	b.dialogsMu.Lock()
	dialog := b.adminDialogs[userID]
	b.dialogsMu.Unlock()
	if dialog == nil {
		return
	}

	switch dialog.step {
	case dialogAwaitingName:
		if text == "" {
			b.sendText(chatID, "❌ Название не может быть пустым. Введите название услуги:")
			return
		}
		dialog.name = text
		dialog.step = dialogAwaitingPrice
		b.sendText(chatID, "Введите цену в рублях (целое число):")

	case dialogAwaitingPrice:
		price, err := strconv.ParseInt(text, 10, 64)
		if err != nil || price <= 0 {
			b.sendText(chatID, "❌ Цена должна быть положительным целым числом. Введите цену:")
			return
		}
		dialog.price = price
		dialog.step = dialogAwaitingDuration
		b.sendText(chatID, "Введите длительность в минутах:")

	case dialogAwaitingDuration:
		duration, err := strconv.Atoi(text)
		if err != nil || duration <= 0 {
			b.sendText(chatID, "❌ Длительность должна быть положительным числом минут. Введите длительность:")
			return
		}
		b.finishAddServiceDialog(ctx, chatID, userID, dialog, duration)
	}
}

func (b *Bot) finishAddServiceDialog(ctx context.Context, chatID, userID int64, dialog *adminDialog, duration int) {
	storeCtx, cancel := b.storeCtx(ctx)
	defer cancel()

	svc, err := b.catalog.AddService(storeCtx, dialog.name, dialog.price, duration)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidInput) {
			b.sendText(chatID, "❌ Не удалось добавить услугу: некорректные данные. Начните заново: ➕ Добавить услугу")
		} else {
			b.logger.Error("Bot: failed to add service: %v", err)
			b.sendText(chatID, msgSystemError)
		}
		b.dropAdminDialog(userID)
		return
	}

	b.dropAdminDialog(userID)
	b.sendText(chatID, fmt.Sprintf("✅ Услуга добавлена: %s — %d ₽ (%d мин)",
		svc.Name, svc.Price, svc.DurationMinutes))
}

func (b *Bot) dropAdminDialog(userID int64) {
	b.dialogsMu.Lock()
	delete(b.adminDialogs, userID)
	b.dialogsMu.Unlock()
}

// showManageServices список всех услуг с переключателями видимости
func (b *Bot) showManageServices(ctx context.Context, chatID int64) {
	storeCtx, cancel := b.storeCtx(ctx)
	defer cancel()

	services, err := b.catalog.ListServices(storeCtx, false)
	if err != nil {
		b.logger.Error("Bot: failed to list services: %v", err)
		b.sendText(chatID, msgSystemError)
		return
	}
	if len(services) == 0 {
		b.sendText(chatID, "Услуг пока нет. Добавьте первую: ➕ Добавить услугу")
		return
	}

	b.sendWithKeyboard(chatID, "🛠 <b>Услуги:</b>", manageServicesKeyboard(services))
}

// toggleService включает или скрывает услугу; операция идемпотентна
func (b *Bot) toggleService(ctx context.Context, chatID int64, raw string, active bool) {
	serviceID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		b.logger.Warn("Bot: bad service toggle callback %q: %v", raw, err)
		return
	}

	storeCtx, cancel := b.storeCtx(ctx)
	defer cancel()

	if active {
		err = b.catalog.ActivateService(storeCtx, serviceID)
	} else {
		err = b.catalog.DeactivateService(storeCtx, serviceID)
	}
	if err != nil {
		b.logger.Error("Bot: failed to toggle service=%d: %v", serviceID, err)
		b.sendText(chatID, msgSystemError)
		return
	}

	b.showManageServices(ctx, chatID)
}
