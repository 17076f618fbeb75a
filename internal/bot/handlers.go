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
	"salon-booking-bot/internal/session"
	getAvailableSlots "salon-booking-bot/internal/usecase/get_available_slots"
	"salon-booking-bot/pkg/types"
)

const (
	msgSystemError  = "⚠️ Что-то пошло не так. Попробуйте позже."
	msgSlotTaken    = "❌ Это время уже занято! Выберите другое."
	msgInvalidPhone = "❌ Неверный формат номера.\nВведите номер в формате +79991234567 или отправьте контакт кнопкой."
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	// Контакт и свободный текст сначала пробуем как шаг ввода телефона
	if s, ok := b.sessions.Get(userID); ok && s.State == session.StateEnteringPhone {
		b.handlePhoneInput(ctx, msg)
		return
	}

	// Затем как шаг диалога добавления услуги
	if b.inAdminDialog(userID) {
		b.handleAdminDialogInput(ctx, msg)
		return
	}

	switch msg.Text {
	case "/start", "/menu":
		b.sendWelcome(chatID)
	case btnBook, "/book":
		b.startBookingFlow(ctx, chatID, msg.From)
	case btnMy, "/mybookings":
		b.showMyBookings(ctx, chatID, userID)
	case btnServices, "/services":
		b.showServicesList(ctx, chatID)
	case btnContacts, "/contacts":
		b.showContacts(chatID)
	case "/admin":
		b.showAdminPanel(ctx, chatID, userID)
	default:
		b.sendText(chatID, "Я не понимаю эту команду. Используйте кнопки меню.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Для сообщений старше 48 часов Telegram присылает callback без Message
	if query.Message == nil {
		b.answerCallback(query.ID, "Сообщение устарело, откройте меню заново: /menu", true)
		return
	}

	chatID := query.Message.Chat.ID
	userID := query.From.ID
	data := query.Data

	switch {
	case data == cbSlotBusy:
		b.answerCallback(query.ID, "Это время уже занято", true)
		return
	case strings.HasPrefix(data, cbService):
		b.answerCallback(query.ID, "", false)
		b.handleServiceSelection(ctx, chatID, userID, strings.TrimPrefix(data, cbService))
	case strings.HasPrefix(data, cbStaff):
		b.answerCallback(query.ID, "", false)
		b.handleStaffSelection(ctx, chatID, userID, strings.TrimPrefix(data, cbStaff))
	case strings.HasPrefix(data, cbDate):
		b.answerCallback(query.ID, "", false)
		b.handleDateSelection(ctx, chatID, userID, strings.TrimPrefix(data, cbDate))
	case strings.HasPrefix(data, cbTime):
		b.handleTimeSelection(ctx, query, strings.TrimPrefix(data, cbTime))
	case data == cbConfirm:
		b.answerCallback(query.ID, "", false)
		b.handleConfirm(ctx, chatID, userID)
	case data == cbCancelFlow:
		b.answerCallback(query.ID, "", false)
		b.handleFlowCancel(chatID, userID)
	case data == cbBackService, data == cbBackStaff, data == cbBackDate:
		b.answerCallback(query.ID, "", false)
		b.handleBack(ctx, chatID, userID)
	case strings.HasPrefix(data, cbCancelBooking):
		b.answerCallback(query.ID, "", false)
		b.handleUserCancellation(ctx, chatID, userID, strings.TrimPrefix(data, cbCancelBooking))
	case data == cbMainMenu:
		b.sendWelcome(chatID)
		b.answerCallback(query.ID, "", false)
	default:
		b.handleAdminCallback(ctx, query)
	}
}

func (b *Bot) sendWelcome(chatID int64) {
	text := "💇 <b>Добро пожаловать в салон красоты!</b>\n\nВыберите действие:"
	b.sendWithKeyboard(chatID, text, mainMenuKeyboard())
}

// startBookingFlow начинает сценарий записи: показывает список активных услуг
// Незавершенный сценарий пользователя при этом сбрасывается
func (b *Bot) startBookingFlow(ctx context.Context, chatID int64, from *tgbotapi.User) {
	storeCtx, cancel := b.storeCtx(ctx)
	defer cancel()

	services, err := b.catalog.ListServices(storeCtx, true)
	if err != nil {
		b.logger.Error("Bot: failed to list services: %v", err)
		b.sendText(chatID, msgSystemError)
		return
	}
	if len(services) == 0 {
		b.sendText(chatID, "Пока нет доступных услуг. Загляните позже!")
		return
	}

	b.sessions.Start(from.ID, displayName(from))
	b.sendWithKeyboard(chatID, "Выберите услугу:", servicesKeyboard(services))
}

func (b *Bot) handleServiceSelection(ctx context.Context, chatID, userID int64, raw string) {
	serviceID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		b.logger.Warn("Bot: bad service callback %q: %v", raw, err)
		return
	}

	storeCtx, cancel := b.storeCtx(ctx)
	defer cancel()

	if err := b.sessions.ChooseService(storeCtx, userID, serviceID); err != nil {
		b.reportFlowError(chatID, userID, err, "Эта услуга больше недоступна. Начните запись заново.")
		return
	}

	b.showStaffSelection(ctx, chatID, userID, serviceID)
}

func (b *Bot) showStaffSelection(ctx context.Context, chatID, userID int64, serviceID int64) {
	storeCtx, cancel := b.storeCtx(ctx)
	defer cancel()

	staff, err := b.catalog.StaffForService(storeCtx, serviceID)
	if err != nil {
		b.logger.Error("Bot: failed to list staff for service=%d: %v", serviceID, err)
		b.sendText(chatID, msgSystemError)
		return
	}

	b.sendWithKeyboard(chatID, "Выберите мастера:", staffKeyboard(staff))
}

func (b *Bot) handleStaffSelection(ctx context.Context, chatID, userID int64, raw string) {
	staffID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		b.logger.Warn("Bot: bad staff callback %q: %v", raw, err)
		return
	}

	storeCtx, cancel := b.storeCtx(ctx)
	defer cancel()

	if err := b.sessions.ChooseStaff(storeCtx, userID, staffID); err != nil {
		b.reportFlowError(chatID, userID, err, "Этот мастер недоступен. Выберите другого.")
		return
	}

	b.showDateSelection(chatID)
}

func (b *Bot) showDateSelection(chatID int64) {
	b.sendWithKeyboard(chatID, "Выберите дату:", datesKeyboard(b.sessions.DatesWindow()))
}

func (b *Bot) handleDateSelection(ctx context.Context, chatID, userID int64, raw string) {
	date, err := time.Parse(domain.DateFormat, raw)
	if err != nil {
		b.logger.Warn("Bot: bad date callback %q: %v", raw, err)
		return
	}

	if err := b.sessions.ChooseDate(ctx, userID, date); err != nil {
		b.reportFlowError(chatID, userID, err, "На эту дату записаться нельзя. Выберите другую.")
		return
	}

	b.showTimeSelection(ctx, chatID, userID)
}

// showTimeSelection показывает сетку слотов на выбранную дату
// Занятые слоты видны, но нажимаются только свободные
func (b *Bot) showTimeSelection(ctx context.Context, chatID, userID int64) {
	s, ok := b.sessions.Get(userID)
	if !ok {
		b.sendText(chatID, "Сессия записи истекла. Начните заново: 📝 Записаться")
		return
	}

	storeCtx, cancel := b.storeCtx(ctx)
	defer cancel()

	resp, err := b.slots.Execute(storeCtx, &getAvailableSlots.Request{
		Date:    s.Date,
		StaffID: s.StaffID,
	})
	if err != nil {
		b.logger.Error("Bot: failed to calculate slots: %v", err)
		b.countStoreError()
		b.sendText(chatID, msgSystemError)
		return
	}

	free := domain.FreeSlots(resp.Slots)
	if len(free) == 0 {
		b.sendWithKeyboard(chatID,
			fmt.Sprintf("На %s свободных слотов нет. Выберите другую дату:",
				s.Date.Format(domain.DisplayDateFormat)),
			datesKeyboard(b.sessions.DatesWindow()))
		return
	}

	text := fmt.Sprintf("Выберите время на %s:", s.Date.Format(domain.DisplayDateFormat))
	b.sendWithKeyboard(chatID, text, timesKeyboard(resp.Slots))
}

func (b *Bot) handleTimeSelection(ctx context.Context, query *tgbotapi.CallbackQuery, raw string) {
	chatID := query.Message.Chat.ID
	userID := query.From.ID

	t, err := types.NewTimeStringFromString(raw)
	if err != nil {
		b.logger.Warn("Bot: bad time callback %q: %v", raw, err)
		b.answerCallback(query.ID, "", false)
		return
	}

	storeCtx, cancel := b.storeCtx(ctx)
	defer cancel()

	if err := b.sessions.ChooseTime(storeCtx, userID, t); err != nil {
		if errors.Is(err, session.ErrSlotUnavailable) {
			b.answerCallback(query.ID, "Это время уже занято", true)
			b.showTimeSelection(ctx, chatID, userID)
			return
		}
		b.answerCallback(query.ID, "", false)
		b.reportFlowError(chatID, userID, err, msgSystemError)
		return
	}
	b.answerCallback(query.ID, "", false)

	s, ok := b.sessions.Get(userID)
	if !ok {
		return
	}

	if s.State == session.StateEnteringPhone {
		b.sendWithKeyboard(chatID,
			"Отправьте ваш номер телефона кнопкой ниже или введите вручную в формате +79991234567:",
			phoneKeyboard())
		return
	}

	b.showConfirmation(chatID, s)
}

// handlePhoneInput обрабатывает телефон: контакт из Telegram или свободный текст
func (b *Bot) handlePhoneInput(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	var raw string
	fromContact := msg.Contact != nil
	if fromContact {
		raw = msg.Contact.PhoneNumber
		if !strings.HasPrefix(raw, "+") {
			raw = "+" + raw
		}
	} else {
		raw = msg.Text
	}

	storeCtx, cancel := b.storeCtx(ctx)
	defer cancel()

	if err := b.sessions.SubmitPhone(storeCtx, userID, raw, fromContact); err != nil {
		if errors.Is(err, session.ErrInvalidPhone) {
			b.sendWithKeyboard(chatID, msgInvalidPhone, phoneKeyboard())
			return
		}
		b.reportFlowError(chatID, userID, err, msgSystemError)
		return
	}

	s, ok := b.sessions.Get(userID)
	if !ok {
		return
	}
	b.showConfirmation(chatID, s)
}

// showConfirmation показывает сводку записи перед фиксацией
func (b *Bot) showConfirmation(chatID int64, s *session.Session) {
	text := fmt.Sprintf(`<b>Проверьте данные записи:</b>

💇 Услуга: %s
💰 Цена: %d ₽
👤 Мастер: %s
📅 Дата: %s
🕒 Время: %s
📞 Телефон: %s`,
		s.ServiceName,
		s.ServicePrice,
		s.StaffName,
		s.Date.Format(domain.DisplayDateFormat),
		s.Time,
		s.Phone)

	b.sendWithKeyboard(chatID, text, confirmKeyboard())
}

// handleConfirm фиксирует бронирование
// Проигранная гонка за слот возвращает пользователя к выбору времени
func (b *Bot) handleConfirm(ctx context.Context, chatID, userID int64) {
	storeCtx, cancel := b.storeCtx(ctx)
	defer cancel()

	resp, err := b.sessions.Confirm(storeCtx, userID)
	if err != nil {
		if errors.Is(err, session.ErrSlotUnavailable) {
			if b.metrics != nil {
				b.metrics.SlotConflictsTotal.Inc()
			}
			b.sendText(chatID, msgSlotTaken)
			b.showTimeSelection(ctx, chatID, userID)
			return
		}
		b.reportFlowError(chatID, userID, err, msgSystemError)
		return
	}

	if b.metrics != nil {
		b.metrics.BookingsCreatedTotal.Inc()
	}

	b.sendWithKeyboard(chatID, renderConfirmationCard(resp), mainMenuKeyboard())
	b.notifyAdminsNewBooking(resp)
}

func (b *Bot) handleFlowCancel(chatID, userID int64) {
	if err := b.sessions.Cancel(userID); err != nil {
		b.sendWelcome(chatID)
		return
	}
	b.sendWithKeyboard(chatID, "Запись отменена. Возвращаемся в главное меню.", mainMenuKeyboard())
}

func (b *Bot) handleBack(ctx context.Context, chatID, userID int64) {
	state, err := b.sessions.Back(userID)
	if err != nil {
		b.reportFlowError(chatID, userID, err, msgSystemError)
		return
	}

	switch state {
	case session.StateChoosingService:
		b.resumeServiceSelection(ctx, chatID)
	case session.StateChoosingStaff:
		s, ok := b.sessions.Get(userID)
		if !ok {
			return
		}
		b.showStaffSelection(ctx, chatID, userID, s.ServiceID)
	case session.StateChoosingDate:
		b.showDateSelection(chatID)
	}
}

func (b *Bot) resumeServiceSelection(ctx context.Context, chatID int64) {
	storeCtx, cancel := b.storeCtx(ctx)
	defer cancel()

	services, err := b.catalog.ListServices(storeCtx, true)
	if err != nil {
		b.logger.Error("Bot: failed to list services: %v", err)
		b.sendText(chatID, msgSystemError)
		return
	}
	b.sendWithKeyboard(chatID, "Выберите услугу:", servicesKeyboard(services))
}

// showMyBookings показывает записи пользователя с кнопками отмены
func (b *Bot) showMyBookings(ctx context.Context, chatID, userID int64) {
	storeCtx, cancel := b.storeCtx(ctx)
	defer cancel()

	bookings, err := b.bookings.ListForUser(storeCtx, userID)
	if err != nil {
		b.logger.Error("Bot: failed to list bookings for user=%d: %v", userID, err)
		b.sendText(chatID, msgSystemError)
		return
	}
	if len(bookings) == 0 {
		b.sendText(chatID, "У вас нет активных записей.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 <b>Ваши записи:</b>\n\n")
	for _, bk := range bookings {
		sb.WriteString(b.renderBookingLine(storeCtx, bk))
		sb.WriteString("\n")
	}

	b.sendWithKeyboard(chatID, sb.String(), myBookingsKeyboard(bookings))
}

func (b *Bot) handleUserCancellation(ctx context.Context, chatID, userID int64, raw string) {
	bookingID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		b.logger.Warn("Bot: bad cancel callback %q: %v", raw, err)
		return
	}

	storeCtx, cancel := b.storeCtx(ctx)
	defer cancel()

	booking, err := b.bookings.CancelByRequester(storeCtx, bookingID, userID)
	if err != nil {
		b.logger.Warn("Bot: user=%d failed to cancel booking=%d: %v", userID, bookingID, err)
		b.sendText(chatID, "❌ Не удалось отменить запись.")
		return
	}

	b.countStatusChange(booking.Status)
	b.sendText(chatID, fmt.Sprintf("✅ Запись на %s в %s отменена.",
		booking.Date.Format(domain.DisplayDateFormat), booking.Time))
}

// showServicesList прайс-лист: активные услуги с ценой и длительностью
func (b *Bot) showServicesList(ctx context.Context, chatID int64) {
	storeCtx, cancel := b.storeCtx(ctx)
	defer cancel()

	services, err := b.catalog.ListServices(storeCtx, true)
	if err != nil {
		b.logger.Error("Bot: failed to list services: %v", err)
		b.sendText(chatID, msgSystemError)
		return
	}
	if len(services) == 0 {
		b.sendText(chatID, "Пока нет доступных услуг.")
		return
	}

	var sb strings.Builder
	sb.WriteString("💇 <b>Наши услуги:</b>\n\n")
	for _, svc := range services {
		sb.WriteString(fmt.Sprintf("• %s — %d ₽ (%d мин)\n", svc.Name, svc.Price, svc.DurationMinutes))
	}
	b.sendText(chatID, sb.String())
}

func (b *Bot) showContacts(chatID int64) {
	text := b.cfg.ContactsText
	if text == "" {
		text = "📞 Свяжитесь с нами через администратора."
	}
	b.sendText(chatID, text)
}

// reportFlowError переводит ошибки машины состояний в ответ пользователю
func (b *Bot) reportFlowError(chatID, userID int64, err error, invalidSelectionText string) {
	switch {
	case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrWrongState):
		b.sendText(chatID, "Сессия записи истекла. Начните заново: 📝 Записаться")
	case errors.Is(err, session.ErrInvalidSelection):
		b.sendText(chatID, invalidSelectionText)
	default:
		b.logger.Error("Bot: flow error for user=%d: %v", userID, err)
		b.countStoreError()
		b.sendText(chatID, msgSystemError)
	}
}

// renderBookingLine строка записи для списков; имена услуги и мастера
// подгружаются из каталога, ошибки деградируют до пропуска имени
func (b *Bot) renderBookingLine(ctx context.Context, bk *domain.Booking) string {
	serviceName := ""
	if svc, err := b.catalog.GetService(ctx, bk.ServiceID); err == nil {
		serviceName = svc.Name
	}

	staffName := "любой мастер"
	if bk.StaffID != nil {
		if st, err := b.catalog.GetStaff(ctx, *bk.StaffID); err == nil {
			staffName = st.Name
		}
	}

	return fmt.Sprintf("📅 %s 🕒 %s\n💇 %s, 👤 %s\n%s\n",
		bk.Date.Format(domain.DisplayDateFormat),
		bk.Time,
		serviceName,
		staffName,
		statusLabel(bk.Status))
}

func (b *Bot) countStoreError() {
	if b.metrics != nil {
		b.metrics.StoreErrorsTotal.Inc()
	}
}

func (b *Bot) countStatusChange(status domain.BookingStatus) {
	if b.metrics != nil {
		b.metrics.StatusChangesTotal.WithLabelValues(string(status)).Inc()
	}
}

func statusLabel(status domain.BookingStatus) string {
	switch status {
	case domain.StatusPending:
		return "⏳ Ожидает подтверждения"
	case domain.StatusConfirmed:
		return "✅ Подтверждена"
	case domain.StatusCancelled:
		return "❌ Отменена"
	case domain.StatusCompleted:
		return "🏁 Выполнена"
	default:
		return string(status)
	}
}
