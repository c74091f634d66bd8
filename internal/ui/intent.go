package ui

import (
	"postbot/pkg/tgui"
)

// Intent is the closed set of inline-button interactions the bot understands.
// Callback data is decoded into an Intent exactly once, at the event
// boundary; handlers then switch over the concrete types. Unknown or stale
// data decodes to IntentNone instead of an error so old keyboards degrade
// into no-ops.
type Intent interface{ isIntent() }

// IntentNone is the inert intent: blank calendar cells, header labels,
// unknown callback data.
type IntentNone struct{}

// Calendar widget interactions.
type (
	CalNavigate struct {
		Year  int `json:"y"`
		Month int `json:"m"`
	}
	CalSelect struct {
		Year  int `json:"y"`
		Month int `json:"m"`
		Day   int `json:"d"`
	}
	CalConfirm struct {
		Year  int `json:"y"`
		Month int `json:"m"`
		Day   int `json:"d"`
	}
	CalCancel struct{}
)

// Time picker interactions. Adjust carries the already-wrapped target time,
// so the decode side does no arithmetic.
type (
	TimeAdjust struct {
		Hour   int `json:"h"`
		Minute int `json:"m"`
	}
	TimeQuick struct {
		Hour   int `json:"h"`
		Minute int `json:"m"`
	}
	TimeNow     struct{}
	TimeConfirm struct {
		Hour   int `json:"h"`
		Minute int `json:"m"`
	}
	TimeCancel struct{}
)

// Wizard step controls.
type (
	SkipContent     struct{}
	SkipPhoto       struct{}
	RecurringChoice struct {
		Recurring bool `json:"r"`
	}
)

// Post management.
type (
	AddNew    struct{}
	DeleteAsk struct {
		PostID int64 `json:"id"`
	}
	DeleteConfirm struct {
		PostID int64 `json:"id"`
	}
	DeleteCancel struct{}
	EditMenu     struct {
		PostID int64 `json:"id"`
	}
	EditText struct {
		PostID int64 `json:"id"`
	}
	EditPhoto struct {
		PostID int64 `json:"id"`
	}
	EditSchedule struct {
		PostID int64 `json:"id"`
	}
	ToggleRecurring struct {
		PostID int64 `json:"id"`
	}
	BackToList struct{}
)

func (IntentNone) isIntent()      {}
func (CalNavigate) isIntent()     {}
func (CalSelect) isIntent()       {}
func (CalConfirm) isIntent()      {}
func (CalCancel) isIntent()       {}
func (TimeAdjust) isIntent()      {}
func (TimeQuick) isIntent()       {}
func (TimeNow) isIntent()         {}
func (TimeConfirm) isIntent()     {}
func (TimeCancel) isIntent()      {}
func (SkipContent) isIntent()     {}
func (SkipPhoto) isIntent()       {}
func (RecurringChoice) isIntent() {}
func (AddNew) isIntent()          {}
func (DeleteAsk) isIntent()       {}
func (DeleteConfirm) isIntent()   {}
func (DeleteCancel) isIntent()    {}
func (EditMenu) isIntent()        {}
func (EditText) isIntent()        {}
func (EditPhoto) isIntent()       {}
func (EditSchedule) isIntent()    {}
func (ToggleRecurring) isIntent() {}
func (BackToList) isIntent()      {}

// Encode renders an intent as callback data ("ns:action:payload").
// The result always fits Telegram's 64-byte callback_data limit: the largest
// payload is a calendar triple, well under the budget.
func Encode(it Intent) string {
	switch v := it.(type) {
	case CalNavigate:
		return tgui.Data("cal", "nav", tgui.MustPackJSON(v))
	case CalSelect:
		return tgui.Data("cal", "day", tgui.MustPackJSON(v))
	case CalConfirm:
		return tgui.Data("cal", "ok", tgui.MustPackJSON(v))
	case CalCancel:
		return tgui.Data("cal", "cancel", "")
	case TimeAdjust:
		return tgui.Data("time", "adj", tgui.MustPackJSON(v))
	case TimeQuick:
		return tgui.Data("time", "quick", tgui.MustPackJSON(v))
	case TimeNow:
		return tgui.Data("time", "now", "")
	case TimeConfirm:
		return tgui.Data("time", "ok", tgui.MustPackJSON(v))
	case TimeCancel:
		return tgui.Data("time", "cancel", "")
	case SkipContent:
		return tgui.Data("wiz", "skiptext", "")
	case SkipPhoto:
		return tgui.Data("wiz", "skipphoto", "")
	case RecurringChoice:
		return tgui.Data("wiz", "recurring", tgui.MustPackJSON(v))
	case AddNew:
		return tgui.Data("post", "add", "")
	case DeleteAsk:
		return tgui.Data("post", "del", tgui.MustPackJSON(v))
	case DeleteConfirm:
		return tgui.Data("post", "delok", tgui.MustPackJSON(v))
	case DeleteCancel:
		return tgui.Data("post", "delno", "")
	case EditMenu:
		return tgui.Data("post", "edit", tgui.MustPackJSON(v))
	case EditText:
		return tgui.Data("post", "etext", tgui.MustPackJSON(v))
	case EditPhoto:
		return tgui.Data("post", "ephoto", tgui.MustPackJSON(v))
	case EditSchedule:
		return tgui.Data("post", "etime", tgui.MustPackJSON(v))
	case ToggleRecurring:
		return tgui.Data("post", "erec", tgui.MustPackJSON(v))
	case BackToList:
		return tgui.Data("post", "back", "")
	default:
		return tgui.Data("ui", "ignore", "")
	}
}

// Decode parses callback data into an Intent. It never fails.
func Decode(data string) Intent {
	ns, action, payload := tgui.Split(data)

	unpack := func(v any) bool {
		return tgui.UnpackJSON(payload, v) == nil
	}

	switch ns {
	case "cal":
		switch action {
		case "nav":
			var v CalNavigate
			if unpack(&v) {
				return v
			}
		case "day":
			var v CalSelect
			if unpack(&v) {
				return v
			}
		case "ok":
			var v CalConfirm
			if unpack(&v) {
				return v
			}
		case "cancel":
			return CalCancel{}
		}
	case "time":
		switch action {
		case "adj":
			var v TimeAdjust
			if unpack(&v) {
				return v
			}
		case "quick":
			var v TimeQuick
			if unpack(&v) {
				return v
			}
		case "now":
			return TimeNow{}
		case "ok":
			var v TimeConfirm
			if unpack(&v) {
				return v
			}
		case "cancel":
			return TimeCancel{}
		}
	case "wiz":
		switch action {
		case "skiptext":
			return SkipContent{}
		case "skipphoto":
			return SkipPhoto{}
		case "recurring":
			var v RecurringChoice
			if unpack(&v) {
				return v
			}
		}
	case "post":
		switch action {
		case "add":
			return AddNew{}
		case "del":
			var v DeleteAsk
			if unpack(&v) {
				return v
			}
		case "delok":
			var v DeleteConfirm
			if unpack(&v) {
				return v
			}
		case "delno":
			return DeleteCancel{}
		case "edit":
			var v EditMenu
			if unpack(&v) {
				return v
			}
		case "etext":
			var v EditText
			if unpack(&v) {
				return v
			}
		case "ephoto":
			var v EditPhoto
			if unpack(&v) {
				return v
			}
		case "etime":
			var v EditSchedule
			if unpack(&v) {
				return v
			}
		case "erec":
			var v ToggleRecurring
			if unpack(&v) {
				return v
			}
		case "back":
			return BackToList{}
		}
	}
	return IntentNone{}
}
