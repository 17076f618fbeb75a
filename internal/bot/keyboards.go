package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"salon-booking-bot/internal/domain"
)

// Кнопки главного меню
const (
	btnBook     = "📝 Записаться"
	btnMy       = "📋 Мои записи"
	btnServices = "💇 Услуги и цены"
	btnContacts = "📞 Контакты"
)

// Префиксы callback-данных пользовательского сценария
const (
	cbService       = "service_"
	cbStaff         = "staff_"
	cbDate          = "date_"
	cbTime          = "time_"
	cbSlotBusy      = "slot_busy"
	cbConfirm       = "confirm_booking"
	cbCancelFlow    = "cancel_flow"
	cbBackService   = "back_service"
	cbBackStaff     = "back_staff"
	cbBackDate      = "back_date"
	cbCancelBooking = "cancel_booking_"
	cbMainMenu      = "main_menu"
	cbAdminPanel    = "admin_panel"
	cbAdminAll      = "admin_all"
	cbAdminToday    = "admin_today"
	cbAdminAddSvc   = "admin_add_service"
	cbAdminManage   = "admin_manage_services"
	cbSvcOn         = "svc_on_"
	cbSvcOff        = "svc_off_"
	cbAdminConfirm  = "admin_confirm_"
	cbAdminCancel   = "admin_cancel_"
	cbAdminComplete = "admin_complete_"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBook),
			tgbotapi.NewKeyboardButton(btnMy),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnServices),
			tgbotapi.NewKeyboardButton(btnContacts),
		),
	)
}

func servicesKeyboard(services []*domain.Service) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, svc := range services {
		text := fmt.Sprintf("%s — %d ₽", svc.Name, svc.Price)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(text, fmt.Sprintf("%s%d", cbService, svc.ID)),
		))
	}
	rows = append(rows, cancelRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// staffKeyboard клавиатура выбора мастера
// Первой строкой идет "Любой мастер" с сентинелом domain.AnyStaffID
func staffKeyboard(staff []*domain.Staff) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 Любой мастер", fmt.Sprintf("%s%d", cbStaff, domain.AnyStaffID)),
		),
	}
	for _, st := range staff {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(st.Name, fmt.Sprintf("%s%d", cbStaff, st.ID)),
		))
	}
	rows = append(rows, backRow(cbBackService))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// datesKeyboard сетка дат, по две кнопки в ряд
func datesKeyboard(dates []time.Time) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, d := range dates {
		btn := tgbotapi.NewInlineKeyboardButtonData(
			formatDateButton(d),
			cbDate+d.Format(domain.DateFormat),
		)
		row = append(row, btn)
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, backRow(cbBackStaff))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// timesKeyboard сетка слотов, по три кнопки в ряд
// Занятые слоты показываются с ❌ и отвечают алертом вместо перехода
func timesKeyboard(slots []domain.Slot) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, slot := range slots {
		var btn tgbotapi.InlineKeyboardButton
		if slot.Busy {
			btn = tgbotapi.NewInlineKeyboardButtonData("❌ "+slot.Time.String(), cbSlotBusy)
		} else {
			btn = tgbotapi.NewInlineKeyboardButtonData(slot.Time.String(), cbTime+slot.Time.String())
		}
		row = append(row, btn)
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, backRow(cbBackDate))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// phoneKeyboard reply-клавиатура с кнопкой отправки контакта
func phoneKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact("📱 Отправить мой номер"),
		),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", cbConfirm),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", cbCancelFlow),
		),
	)
}

func myBookingsKeyboard(bookings []*domain.Booking) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, bk := range bookings {
		if !bk.CanBeCancelled() {
			continue
		}
		text := fmt.Sprintf("❌ Отменить %s %s",
			bk.Date.Format(domain.DisplayDateFormat), bk.Time)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(text, fmt.Sprintf("%s%d", cbCancelBooking, bk.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func adminPanelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📒 Все записи", cbAdminAll),
			tgbotapi.NewInlineKeyboardButtonData("📅 Записи на сегодня", cbAdminToday),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Добавить услугу", cbAdminAddSvc),
			tgbotapi.NewInlineKeyboardButtonData("🛠 Управление услугами", cbAdminManage),
		),
	)
}

// manageServicesKeyboard список услуг с переключателями активности
func manageServicesKeyboard(services []*domain.Service) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, svc := range services {
		var btn tgbotapi.InlineKeyboardButton
		if svc.Active {
			btn = tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🟢 %s — скрыть", svc.Name),
				fmt.Sprintf("%s%d", cbSvcOff, svc.ID))
		} else {
			btn = tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🔴 %s — вернуть", svc.Name),
				fmt.Sprintf("%s%d", cbSvcOn, svc.ID))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 В панель", cbAdminPanel),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// adminBookingKeyboard кнопки смены статуса под уведомлением о записи
func adminBookingKeyboard(bookingID int64, status domain.BookingStatus) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton

	if status == domain.StatusPending {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			"✅ Подтвердить", fmt.Sprintf("%s%d", cbAdminConfirm, bookingID)))
	}
	if status == domain.StatusConfirmed {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			"🏁 Завершить", fmt.Sprintf("%s%d", cbAdminComplete, bookingID)))
	}
	if status == domain.StatusPending || status == domain.StatusConfirmed {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			"❌ Отменить", fmt.Sprintf("%s%d", cbAdminCancel, bookingID)))
	}

	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}

func backRow(target string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", target),
		tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", cbCancelFlow),
	)
}

func cancelRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", cbCancelFlow),
	)
}

// formatDateButton подпись кнопки даты: "Пн 02.09"
func formatDateButton(d time.Time) string {
	return fmt.Sprintf("%s %s", shortDayName(d.Weekday()), d.Format("02.01"))
}

func shortDayName(day time.Weekday) string {
	names := map[time.Weekday]string{
		time.Monday:    "Пн",
		time.Tuesday:   "Вт",
		time.Wednesday: "Ср",
		time.Thursday:  "Чт",
		time.Friday:    "Пт",
		time.Saturday:  "Сб",
		time.Sunday:    "Вс",
	}
	return names[day]
}
