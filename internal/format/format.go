package format

import (
	"fmt"
	"time"
)

var monthsGenitive = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// Date: "7 января 2026, 10:11" в зоне loc (nil — зона самого t). Нулевое время → "".
func Date(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%d %s %d, %02d:%02d", t.Day(), monthsGenitive[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// DateOr — Date или заглушка для пустой даты.
func DateOr(t time.Time, loc *time.Location, empty string) string {
	if t.IsZero() {
		return empty
	}
	return Date(t, loc)
}

// Relative: "только что" (<1 ч, в т.ч. будущее), "N ч назад" (<24 ч),
// "N д назад" (<7 д), дальше — Date.
func Relative(t, now time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	hours := int(now.Sub(t) / time.Hour)
	switch {
	case hours < 1:
		return "только что"
	case hours < 24:
		return fmt.Sprintf("%d ч назад", hours)
	case hours < 24*7:
		return fmt.Sprintf("%d д назад", hours/24)
	default:
		return Date(t, loc)
	}
}

// Points: 85 → "85", 72.5 → "72.5".
func Points(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

// Text — значение или "—" для пустого.
func Text(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
