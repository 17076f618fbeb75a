package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"salon-booking-bot/internal/domain"
	createBooking "salon-booking-bot/internal/usecase/create_booking"
)

// NotifyStatusChange уведомляет контрагента о смене статуса бронирования:
// клиента, если статус поменял админ, и всех админов,
// если запись отменил сам клиент
// Реализует интерфейс Notifier сервиса жизненного цикла
func (b *Bot) NotifyStatusChange(_ context.Context, booking *domain.Booking, actorID int64) error {
	if actorID == booking.UserID {
		text := fmt.Sprintf("❌ Клиент %s отменил запись на %s в %s",
			booking.UserName,
			booking.Date.Format(domain.DisplayDateFormat),
			booking.Time)

		var lastErr error
		for _, adminID := range b.bookings.AdminIDs() {
			msg := tgbotapi.NewMessage(adminID, text)
			if _, err := b.api.Send(msg); err != nil {
				lastErr = fmt.Errorf("bot: failed to notify admin=%d: %w", adminID, err)
			}
		}
		return lastErr
	}

	text := fmt.Sprintf("Статус вашей записи на %s в %s изменился:\n%s",
		booking.Date.Format(domain.DisplayDateFormat),
		booking.Time,
		statusLabel(booking.Status))

	msg := tgbotapi.NewMessage(booking.UserID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("bot: failed to notify user=%d: %w", booking.UserID, err)
	}
	return nil
}

// notifyAdminsNewBooking отправляет каждому админу карточку новой записи
// с кнопками подтверждения и отмены
func (b *Bot) notifyAdminsNewBooking(resp *createBooking.Response) {
	staffName := "любой мастер"
	if resp.Staff != nil {
		staffName = resp.Staff.Name
	}

	text := fmt.Sprintf(`🆕 <b>Новая запись #%d</b>

👩 Клиент: %s
📞 Телефон: %s
💇 Услуга: %s
👤 Мастер: %s
📅 Дата: %s
🕒 Время: %s`,
		resp.Booking.ID,
		resp.Booking.UserName,
		resp.Booking.UserPhone,
		resp.Service.Name,
		staffName,
		resp.Booking.Date.Format(domain.DisplayDateFormat),
		resp.Booking.Time)

	keyboard := adminBookingKeyboard(resp.Booking.ID, resp.Booking.Status)

	for _, adminID := range b.bookings.AdminIDs() {
		msg := tgbotapi.NewMessage(adminID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.ReplyMarkup = keyboard
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Warn("Bot: failed to notify admin=%d about new booking: %v", adminID, err)
		}
	}
}

// renderConfirmationCard карточка подтвержденной записи для клиента
func renderConfirmationCard(resp *createBooking.Response) string {
	staffName := "любой мастер"
	if resp.Staff != nil {
		staffName = resp.Staff.Name
	}

	return fmt.Sprintf(`✅ <b>Вы записаны!</b>

💇 Услуга: %s
💰 Цена: %d ₽
👤 Мастер: %s
📅 Дата: %s
🕒 Время: %s

Мы свяжемся с вами для подтверждения.`,
		resp.Service.Name,
		resp.Service.Price,
		staffName,
		resp.Booking.Date.Format(domain.DisplayDateFormat),
		resp.Booking.Time)
}
