package ui

import (
	"fmt"
	"time"

	tele "gopkg.in/telebot.v4"

	"postbot/pkg/tgui"
)

// quickSlots is the fixed bank of one-tap times, in display order.
var quickSlots = [][2]int{
	{8, 0}, {8, 30}, {9, 0}, {9, 30},
	{10, 0}, {10, 30}, {11, 0}, {11, 30},
	{12, 0}, {12, 30}, {14, 0}, {14, 30},
	{16, 0}, {16, 30}, {18, 0}, {18, 30},
	{20, 0}, {20, 30}, {21, 0}, {21, 30},
	{22, 0}, {22, 30},
}

// IsQuickSlot reports whether (hour, minute) is one of the quick-pick times.
func IsQuickSlot(hour, minute int) bool {
	for _, s := range quickSlots {
		if s[0] == hour && s[1] == minute {
			return true
		}
	}
	return false
}

// TimePicker renders the time selection keyboard: the current selection in
// the header, the quick-pick bank plus "Now", a fine-adjust row (only when
// the current selection is not itself a quick slot) and Confirm/Cancel.
// Tapping a quick slot is an implicit confirm for that slot.
func TimePicker(hour, minute int) *tgui.Inline {
	kb := tgui.NewInline()

	kb.Row(tgui.Btn(fmt.Sprintf("🕐 Selected: %02d:%02d", hour, minute), ignoreData))

	slots := make([]tele.Btn, 0, len(quickSlots)+1)
	for _, s := range quickSlots {
		slots = append(slots, tgui.Btn(
			fmt.Sprintf("%02d:%02d", s[0], s[1]),
			Encode(TimeQuick{Hour: s[0], Minute: s[1]}),
		))
	}
	slots = append(slots, tgui.Btn("Now", Encode(TimeNow{})))
	kb.Rows(tgui.Grid(4, slots)...)

	if !IsQuickSlot(hour, minute) {
		// Targets are pre-wrapped here so the decode side does no arithmetic.
		// Note ±30 minutes land on the same value modulo 60; both buttons stay
		// for symmetry with the hour pair.
		kb.Row(
			tgui.Btn("Hour −", Encode(TimeAdjust{Hour: (hour + 23) % 24, Minute: minute})),
			tgui.Btn("Hour +", Encode(TimeAdjust{Hour: (hour + 1) % 24, Minute: minute})),
			tgui.Btn("Min −", Encode(TimeAdjust{Hour: hour, Minute: (minute + 30) % 60})),
			tgui.Btn("Min +", Encode(TimeAdjust{Hour: hour, Minute: (minute + 30) % 60})),
		)
	}

	kb.Row(
		tgui.Btn("✅ Confirm Time", Encode(TimeConfirm{Hour: hour, Minute: minute})),
		tgui.Btn("❌ Cancel", Encode(TimeCancel{})),
	)

	return kb
}

// TimeAnchor returns the initial picker position: one hour from now on the
// full hour, wrapping to noon once the current hour is 23.
func TimeAnchor(now time.Time) (hour, minute int) {
	h := now.Hour() + 1
	if h > 23 {
		h = 12
	}
	return h, 0
}
