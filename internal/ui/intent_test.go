package ui

import (
	"testing"

	"postbot/pkg/tgui"
)

func TestIntentRoundTrip(t *testing.T) {
	t.Parallel()
	intents := []Intent{
		CalNavigate{Year: 2025, Month: 12},
		CalSelect{Year: 2025, Month: 6, Day: 15},
		CalConfirm{Year: 2026, Month: 1, Day: 1},
		CalCancel{},
		TimeAdjust{Hour: 23, Minute: 45},
		TimeQuick{Hour: 8, Minute: 30},
		TimeNow{},
		TimeConfirm{Hour: 13, Minute: 15},
		TimeCancel{},
		SkipContent{},
		SkipPhoto{},
		RecurringChoice{Recurring: true},
		RecurringChoice{Recurring: false},
		AddNew{},
		DeleteAsk{PostID: 42},
		DeleteConfirm{PostID: 42},
		DeleteCancel{},
		EditMenu{PostID: 7},
		EditText{PostID: 7},
		EditPhoto{PostID: 7},
		EditSchedule{PostID: 7},
		ToggleRecurring{PostID: 7},
		BackToList{},
	}

	for _, in := range intents {
		data := Encode(in)
		if got := Decode(data); got != in {
			t.Fatalf("round trip %T: encoded %q, decoded %#v", in, data, got)
		}
	}
}

func TestEncodeFitsCallbackLimit(t *testing.T) {
	t.Parallel()
	worst := []Intent{
		CalConfirm{Year: 9999, Month: 12, Day: 31},
		TimeConfirm{Hour: 23, Minute: 59},
		DeleteConfirm{PostID: 1<<62 - 1},
		ToggleRecurring{PostID: 1<<62 - 1},
	}
	for _, in := range worst {
		if n := len(Encode(in)); n > tgui.MaxCallbackDataLen {
			t.Fatalf("%T encodes to %d bytes, limit %d", in, n, tgui.MaxCallbackDataLen)
		}
	}
}

func TestDecodeUnknownIsNone(t *testing.T) {
	t.Parallel()
	for _, data := range []string{
		"",
		"ui:ignore",
		"cal:bogus",
		"cal:nav:!!not-base64!!",
		"plainrubbish",
		"legacy|callback|v1", // pre-rewrite keyboards
	} {
		if it := Decode(data); it != (IntentNone{}) {
			t.Fatalf("Decode(%q) = %#v, want IntentNone", data, it)
		}
	}
}
