package menu

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/lms-bot/internal/models"
)

const (
	BtnDashboard   = "🏠 Главная"
	BtnCourses     = "📚 Курсы"
	BtnAssignments = "📝 Задания"
	BtnSubmissions = "📤 Сдачи"
	BtnGrades      = "🎓 Оценки"
	BtnProfile     = "👤 Профиль"
	BtnNewCourse   = "➕ Новый курс"
	BtnAdmin       = "📊 Статистика"
	BtnLogout      = "🚪 Выйти"
	BtnLogin       = "🔑 Войти"
	BtnRegister    = "📝 Регистрация"
)

// paths — куда ведут кнопки и команды меню.
var paths = map[string]string{
	BtnDashboard:   "/dashboard",
	BtnCourses:     "/courses",
	BtnAssignments: "/assignments",
	BtnSubmissions: "/submissions",
	BtnGrades:      "/grades",
	BtnProfile:     "/profile",
	BtnNewCourse:   "/courses/new",
	BtnAdmin:       "/admin",
	BtnLogin:       "/login",
	BtnRegister:    "/register",

	"/dashboard":   "/dashboard",
	"/courses":     "/courses",
	"/assignments": "/assignments",
	"/submissions": "/submissions",
	"/grades":      "/grades",
	"/profile":     "/profile",
	"/new_course":  "/courses/new",
	"/admin":       "/admin",
	"/login":       "/login",
	"/register":    "/register",
}

// Path — путь экрана для текста кнопки или команды.
func Path(text string) (string, bool) {
	p, ok := paths[text]
	return p, ok
}

// ForCapabilities возвращает меню по набору прав.
func ForCapabilities(caps models.Capabilities) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnDashboard),
			tgbotapi.NewKeyboardButton(BtnCourses),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnAssignments),
			tgbotapi.NewKeyboardButton(BtnSubmissions),
		),
	}
	if caps.CanEditCourses {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnNewCourse),
		))
	} else {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnGrades),
		))
	}
	last := tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnProfile))
	if caps.CanViewAdminStats {
		last = append(last, tgbotapi.NewKeyboardButton(BtnAdmin))
	}
	last = append(last, tgbotapi.NewKeyboardButton(BtnLogout))
	rows = append(rows, last)
	return tgbotapi.NewReplyKeyboard(rows...)
}

// Guest — меню для неаутентифицированного чата.
func Guest() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnLogin),
			tgbotapi.NewKeyboardButton(BtnRegister),
		),
	)
}
