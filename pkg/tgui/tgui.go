package tgui

import (
	tele "gopkg.in/telebot.v4"
)

// Inline is a small builder for inline keyboards (ReplyMarkup).
// It stores rows as tele.Row ([]tele.Btn) and applies them via ReplyMarkup.Inline().
type Inline struct {
	rm   *tele.ReplyMarkup
	rows []tele.Row
}

func NewInline() *Inline {
	return &Inline{rm: &tele.ReplyMarkup{}}
}

// Row appends a new row (buttons) to the inline keyboard.
func (i *Inline) Row(btn ...tele.Btn) *Inline {
	i.rows = append(i.rows, i.rm.Row(btn...))
	i.rm.Inline(i.rows...)
	return i
}

// Rows appends multiple pre-built rows.
func (i *Inline) Rows(rows ...[]tele.Btn) *Inline {
	for _, r := range rows {
		i.Row(r...)
	}
	return i
}

// NumRows reports how many rows were added so far.
func (i *Inline) NumRows() int { return len(i.rows) }

// Markup returns underlying reply markup.
func (i *Inline) Markup() *tele.ReplyMarkup { return i.rm }

// Btn creates a callback button with raw callback_data (we do NOT encode it).
// Use pkg/tgui/callback.go helpers to build "ns:action:payload" safely.
func Btn(text, data string) tele.Btn {
	return tele.Btn{Text: text, Data: data}
}

// Grid splits buttons into cols columns (row-major) and returns the rows.
func Grid(cols int, buttons []tele.Btn) [][]tele.Btn {
	if cols <= 0 {
		cols = 2
	}
	rows := make([][]tele.Btn, 0, (len(buttons)+cols-1)/cols)
	for start := 0; start < len(buttons); start += cols {
		end := start + cols
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[start:end])
	}
	return rows
}
