package ui

import (
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func keyboard(t *testing.T, rows [][]tele.InlineButton) [][]tele.InlineButton {
	t.Helper()
	if len(rows) == 0 {
		t.Fatal("empty keyboard")
	}
	return rows
}

func findButton(rows [][]tele.InlineButton, text string) (tele.InlineButton, bool) {
	for _, row := range rows {
		for _, btn := range row {
			if btn.Text == text {
				return btn, true
			}
		}
	}
	return tele.InlineButton{}, false
}

func TestCalendarLayout(t *testing.T) {
	t.Parallel()
	today := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	kb := Calendar(2025, time.June, 0, today)
	rows := keyboard(t, kb.Markup().InlineKeyboard)

	// Nav row, header row, one row per week, control row.
	want := WeeksIn(2025, time.June) + 3
	if len(rows) != want {
		t.Fatalf("row count = %d, want %d", len(rows), want)
	}
	if rows[0][1].Text != "June 2025" {
		t.Fatalf("month label = %q", rows[0][1].Text)
	}
	if rows[1][0].Text != "Mo" || rows[1][6].Text != "Su" {
		t.Fatalf("header row = %v", rows[1])
	}
	for _, row := range rows[2 : len(rows)-1] {
		if len(row) != 7 {
			t.Fatalf("week row has %d cells", len(row))
		}
	}
}

func TestCalendarPastDaysInert(t *testing.T) {
	t.Parallel()
	today := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	kb := Calendar(2025, time.June, 0, today)
	rows := kb.Markup().InlineKeyboard

	past, ok := findButton(rows, "◽9")
	if !ok {
		t.Fatal("day 9 not rendered as past")
	}
	if _, isNone := Decode(past.Data).(IntentNone); !isNone {
		t.Fatalf("past day decodes to %T, want IntentNone", Decode(past.Data))
	}

	today10, ok := findButton(rows, "10")
	if !ok {
		t.Fatal("today cell missing")
	}
	sel, isSel := Decode(today10.Data).(CalSelect)
	if !isSel || sel.Day != 10 {
		t.Fatalf("today decodes to %#v", Decode(today10.Data))
	}
}

func TestCalendarSelection(t *testing.T) {
	t.Parallel()
	today := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)

	noSel := Calendar(2025, time.June, 0, today).Markup().InlineKeyboard
	if _, ok := findButton(noSel, "✅ Confirm Date"); ok {
		t.Fatal("confirm shown without a selection")
	}
	if _, ok := findButton(noSel, "❌ Cancel"); !ok {
		t.Fatal("cancel missing")
	}

	withSel := Calendar(2025, time.June, 15, today).Markup().InlineKeyboard
	marked, ok := findButton(withSel, "🔹15")
	if !ok {
		t.Fatal("selected day not marked")
	}
	if sel, isSel := Decode(marked.Data).(CalSelect); !isSel || sel.Day != 15 {
		t.Fatalf("selected cell decodes to %#v", Decode(marked.Data))
	}
	confirm, ok := findButton(withSel, "✅ Confirm Date")
	if !ok {
		t.Fatal("confirm missing with a selection")
	}
	c, isConfirm := Decode(confirm.Data).(CalConfirm)
	if !isConfirm || c.Year != 2025 || c.Month != int(time.June) || c.Day != 15 {
		t.Fatalf("confirm decodes to %#v", Decode(confirm.Data))
	}
}

func TestCalendarNavigationWrapsYears(t *testing.T) {
	t.Parallel()
	today := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)

	jan := Calendar(2026, time.January, 0, today).Markup().InlineKeyboard
	prev := Decode(jan[0][0].Data).(CalNavigate)
	if prev.Year != 2025 || prev.Month != int(time.December) {
		t.Fatalf("prev from January = %+v", prev)
	}

	dec := Calendar(2026, time.December, 0, today).Markup().InlineKeyboard
	next := Decode(dec[0][2].Data).(CalNavigate)
	if next.Year != 2027 || next.Month != int(time.January) {
		t.Fatalf("next from December = %+v", next)
	}
}

func TestWeeksIn(t *testing.T) {
	t.Parallel()
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.June, 6},      // starts Sunday, 30 days
		{2025, time.September, 5}, // starts Monday, 30 days
		{2026, time.February, 5},  // starts Sunday, 28 days
	}
	for _, tt := range tests {
		if got := WeeksIn(tt.year, tt.month); got != tt.want {
			t.Fatalf("WeeksIn(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}
