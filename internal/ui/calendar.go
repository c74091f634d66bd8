package ui

import (
	"fmt"
	"time"

	tele "gopkg.in/telebot.v4"

	"postbot/pkg/tgui"
)

const ignoreData = "ui:ignore"

// Calendar renders a month grid for date selection. It is a pure function of
// its arguments: navigation and day selection re-render with new parameters,
// nothing else changes until the Confirm button fires a CalConfirm intent.
//
// Layout: nav row, Mo–Su header, one row per calendar week (blank padding
// cells outside the month), and a control row. Confirm is present only when
// selectedDay names a day of this month. Days before today (by calendar
// date in today's zone) are rendered but inert.
func Calendar(year int, month time.Month, selectedDay int, today time.Time) *tgui.Inline {
	kb := tgui.NewInline()

	// Navigation, wrapping across year boundaries.
	prevY, prevM := year, month-1
	if month == time.January {
		prevY, prevM = year-1, time.December
	}
	nextY, nextM := year, month+1
	if month == time.December {
		nextY, nextM = year+1, time.January
	}
	kb.Row(
		tgui.Btn("◀️", Encode(CalNavigate{Year: prevY, Month: int(prevM)})),
		tgui.Btn(fmt.Sprintf("%s %d", month.String(), year), ignoreData),
		tgui.Btn("▶️", Encode(CalNavigate{Year: nextY, Month: int(nextM)})),
	)

	// Weekday header, Monday first.
	kb.Row(
		tgui.Btn("Mo", ignoreData), tgui.Btn("Tu", ignoreData), tgui.Btn("We", ignoreData),
		tgui.Btn("Th", ignoreData), tgui.Btn("Fr", ignoreData), tgui.Btn("Sa", ignoreData),
		tgui.Btn("Su", ignoreData),
	)

	tYear, tMonth, tDay := today.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := daysIn(year, month)
	lead := (int(first.Weekday()) + 6) % 7 // Monday-based column of day 1

	row := make([]tele.Btn, 0, 7)
	for i := 0; i < lead; i++ {
		row = append(row, tgui.Btn(" ", ignoreData))
	}
	for day := 1; day <= days; day++ {
		var btn tele.Btn
		switch {
		case beforeDate(year, month, day, tYear, tMonth, tDay):
			btn = tgui.Btn(fmt.Sprintf("◽%d", day), ignoreData)
		case day == selectedDay:
			btn = tgui.Btn(fmt.Sprintf("🔹%d", day), Encode(CalSelect{Year: year, Month: int(month), Day: day}))
		default:
			btn = tgui.Btn(fmt.Sprintf("%d", day), Encode(CalSelect{Year: year, Month: int(month), Day: day}))
		}
		row = append(row, btn)
		if len(row) == 7 {
			kb.Row(row...)
			row = make([]tele.Btn, 0, 7)
		}
	}
	if len(row) > 0 {
		for len(row) < 7 {
			row = append(row, tgui.Btn(" ", ignoreData))
		}
		kb.Row(row...)
	}

	control := make([]tele.Btn, 0, 2)
	if selectedDay >= 1 && selectedDay <= days {
		control = append(control, tgui.Btn("✅ Confirm Date", Encode(CalConfirm{Year: year, Month: int(month), Day: selectedDay})))
	}
	control = append(control, tgui.Btn("❌ Cancel", Encode(CalCancel{})))
	kb.Row(control...)

	return kb
}

// WeeksIn returns the number of week rows the calendar shows for a month.
func WeeksIn(year int, month time.Month) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lead := (int(first.Weekday()) + 6) % 7
	return (lead + daysIn(year, month) + 6) / 7
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func beforeDate(y1 int, m1 time.Month, d1 int, y2 int, m2 time.Month, d2 int) bool {
	if y1 != y2 {
		return y1 < y2
	}
	if m1 != m2 {
		return m1 < m2
	}
	return d1 < d2
}
