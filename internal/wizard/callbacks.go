package wizard

import (
	"context"
	"fmt"
	"time"

	"postbot/internal/post"
	"postbot/internal/transport"
	"postbot/internal/ui"
	"postbot/pkg/logx"
)

// HandleCallback processes one inline-button press. Callback data is decoded
// into a typed intent exactly once here; everything below switches on the
// concrete type. The callback is always answered first so the client stops
// its spinner even when the press turns out to be a no-op.
func (b *Bot) HandleCallback(ctx context.Context, cb *transport.Callback) {
	if err := b.ad.AnswerCallback(ctx, cb.ID, ""); err != nil {
		b.log.Debug("answer callback failed", logx.Err(err))
	}
	if cb.IsGroup {
		return
	}

	it := ui.Decode(cb.Data)
	if _, ok := it.(ui.IntentNone); ok {
		return
	}

	chat := transport.ChatTarget{ChatID: cb.ChatID}
	ref := transport.MessageRef{ChatID: cb.ChatID, MessageID: cb.MessageID}
	sess := b.sessions.Get(cb.FromID)

	// Management intents can arrive from old keyboards with no session
	// behind them, so they carry their own authorization check. Widget
	// intents only act through a session, which required authorization to
	// start.
	switch it.(type) {
	case ui.AddNew, ui.DeleteAsk, ui.DeleteConfirm, ui.DeleteCancel,
		ui.EditMenu, ui.EditText, ui.EditPhoto, ui.EditSchedule,
		ui.ToggleRecurring, ui.BackToList:
		ok, err := b.gate.IsAuthorized(ctx, cb.FromID)
		if err != nil {
			b.log.Error("authorization check failed", logx.Err(err), logx.Int64("user", cb.FromID))
			return
		}
		if !ok {
			b.sessions.Start(&Session{UserID: cb.FromID, ChatID: cb.ChatID, Step: StepPassword})
			b.send(ctx, chat, accessRequiredMsg(cb.FromName))
			return
		}
	}

	switch v := it.(type) {
	case ui.SkipContent:
		if sess == nil || sess.Step != StepContent {
			return
		}
		sess.Draft.Content = ""
		sess.Step = StepPhoto
		b.edit(ctx, ref, stepPhotoMsg(""))

	case ui.SkipPhoto:
		if sess == nil || sess.Step != StepPhoto {
			return
		}
		sess.Step = StepDate
		b.edit(ctx, ref, b.calendarAt("ℹ️ No photo will be added.", b.now().Year(), b.now().Month(), 0))

	case ui.CalNavigate:
		b.handleCalRender(ctx, ref, sess, v.Year, time.Month(v.Month), 0)

	case ui.CalSelect:
		// Stale keyboards can still offer days that have since passed.
		if b.isPastDate(v.Year, time.Month(v.Month), v.Day) {
			return
		}
		b.handleCalRender(ctx, ref, sess, v.Year, time.Month(v.Month), v.Day)

	case ui.CalConfirm:
		b.handleCalConfirm(ctx, ref, sess, v)

	case ui.CalCancel:
		if sess == nil {
			return
		}
		editing := sess.Step.editing()
		b.sessions.End(sess.UserID)
		if editing {
			b.edit(ctx, ref, backToListMsg())
			b.scheduleListRefresh(chat)
			return
		}
		b.edit(ctx, ref, cancelledMsg())

	case ui.TimeAdjust:
		b.handleTimeRender(ctx, ref, sess, v.Hour, v.Minute)

	case ui.TimeQuick:
		b.handleTimeConfirm(ctx, chat, ref, sess, v.Hour, v.Minute, false)

	case ui.TimeNow:
		// "Now" schedules for the current instant; the post becomes due on
		// the next scheduler pass, so the strictly-future rule does not
		// apply here.
		b.handleTimeConfirm(ctx, chat, ref, sess, 0, 0, true)

	case ui.TimeConfirm:
		b.handleTimeConfirm(ctx, chat, ref, sess, v.Hour, v.Minute, false)

	case ui.TimeCancel:
		if sess == nil {
			return
		}
		if sess.Step == StepTime {
			// Back to the calendar keeping the month of the prior pick.
			sess.Step = StepDate
			y, m := b.monthOf(sess.Draft.SelectedDate)
			sess.Draft.SelectedDate = ""
			b.edit(ctx, ref, b.calendarAt("", y, m, 0))
			return
		}
		if sess.Step == StepEditSchedule {
			b.sessions.End(sess.UserID)
			b.edit(ctx, ref, backToListMsg())
			b.scheduleListRefresh(chat)
		}

	case ui.RecurringChoice:
		if sess == nil || sess.Step != StepRecurring {
			return
		}
		b.finishAdd(ctx, chat, sess, v.Recurring, &ref)

	case ui.AddNew:
		b.startWizard(ctx, chat, cb.FromID)

	case ui.DeleteAsk:
		p, err := b.store.Get(ctx, v.PostID)
		if err != nil {
			b.replyPostErr(ctx, ref, err, v.PostID)
			return
		}
		b.edit(ctx, ref, deleteAskMsg(&p, b.loc))

	case ui.DeleteConfirm:
		if err := b.store.Delete(ctx, v.PostID); err != nil {
			b.replyPostErr(ctx, ref, err, v.PostID)
			return
		}
		b.edit(ctx, ref, deletedMsg(v.PostID))
		b.scheduleListRefresh(chat)

	case ui.DeleteCancel:
		b.edit(ctx, ref, backToListMsg())
		b.scheduleListRefresh(chat)

	case ui.EditMenu:
		p, err := b.store.Get(ctx, v.PostID)
		if err != nil {
			b.replyPostErr(ctx, ref, err, v.PostID)
			return
		}
		b.edit(ctx, ref, editMenuMsg(&p, b.loc))

	case ui.EditText:
		p, err := b.store.Get(ctx, v.PostID)
		if err != nil {
			b.replyPostErr(ctx, ref, err, v.PostID)
			return
		}
		b.sessions.Start(&Session{
			UserID: cb.FromID, ChatID: cb.ChatID,
			Step: StepEditText, TargetPost: p.ID, Origin: ref,
		})
		b.edit(ctx, ref, editTextPromptMsg(&p))

	case ui.EditPhoto:
		p, err := b.store.Get(ctx, v.PostID)
		if err != nil {
			b.replyPostErr(ctx, ref, err, v.PostID)
			return
		}
		b.sessions.Start(&Session{
			UserID: cb.FromID, ChatID: cb.ChatID,
			Step: StepEditPhoto, TargetPost: p.ID, Origin: ref,
		})
		b.edit(ctx, ref, editPhotoPromptMsg(&p))

	case ui.EditSchedule:
		p, err := b.store.Get(ctx, v.PostID)
		if err != nil {
			b.replyPostErr(ctx, ref, err, v.PostID)
			return
		}
		b.sessions.Start(&Session{
			UserID: cb.FromID, ChatID: cb.ChatID,
			Step: StepEditSchedule, TargetPost: p.ID, Origin: ref,
		})
		now := b.now()
		b.edit(ctx, ref, b.editCalendarAt(now.Year(), now.Month(), 0))

	case ui.ToggleRecurring:
		p, err := b.store.Get(ctx, v.PostID)
		if err != nil {
			b.replyPostErr(ctx, ref, err, v.PostID)
			return
		}
		next := !p.Recurring
		if err := b.store.Update(ctx, p.ID, post.Fields{Recurring: &next}); err != nil {
			b.replyPostErr(ctx, ref, err, v.PostID)
			return
		}
		p.Recurring = next
		b.edit(ctx, ref, editMenuMsg(&p, b.loc))

	case ui.BackToList:
		b.sessions.End(cb.FromID)
		b.edit(ctx, ref, backToListMsg())
		b.scheduleListRefresh(chat)
	}
}

// handleCalRender redraws the calendar message for the given parameters.
// Works for both the wizard date step and the reschedule flow.
func (b *Bot) handleCalRender(ctx context.Context, ref transport.MessageRef, sess *Session, year int, month time.Month, selDay int) {
	if sess == nil {
		return
	}
	switch sess.Step {
	case StepDate:
		b.edit(ctx, ref, b.calendarAt("", year, month, selDay))
	case StepEditSchedule:
		b.edit(ctx, ref, b.editCalendarAt(year, month, selDay))
	}
}

func (b *Bot) handleCalConfirm(ctx context.Context, ref transport.MessageRef, sess *Session, v ui.CalConfirm) {
	if sess == nil {
		return
	}
	if b.isPastDate(v.Year, time.Month(v.Month), v.Day) {
		return
	}
	date := fmt.Sprintf("%04d-%02d-%02d", v.Year, v.Month, v.Day)

	switch sess.Step {
	case StepDate:
		sess.Draft.SelectedDate = date
		sess.Step = StepTime
		h, m := ui.TimeAnchor(b.now())
		b.edit(ctx, ref, timeMsg("New Post (step 4/4): Pick the time", date, h, m))

	case StepEditSchedule:
		sess.Draft.SelectedDate = date
		// Anchor the picker at the post's current time of day when we can.
		h, m := ui.TimeAnchor(b.now())
		if p, err := b.store.Get(ctx, sess.TargetPost); err == nil {
			if t, perr := p.ScheduledTime(b.loc); perr == nil {
				h, m = t.Hour(), t.Minute()
			}
		}
		b.edit(ctx, ref, timeMsg("Reschedule: Pick the time", date, h, m))
	}
}

// handleTimeRender redraws the picker without changing session state.
func (b *Bot) handleTimeRender(ctx context.Context, ref transport.MessageRef, sess *Session, hour, minute int) {
	if sess == nil || (sess.Step != StepTime && sess.Step != StepEditSchedule) {
		return
	}
	title := "New Post (step 4/4): Pick the time"
	if sess.Step == StepEditSchedule {
		title = "Reschedule: Pick the time"
	}
	b.edit(ctx, ref, timeMsg(title, sess.Draft.SelectedDate, hour, minute))
}

// handleTimeConfirm finalizes the schedule. asNow bypasses the
// strictly-in-the-future rule and uses the current instant.
func (b *Bot) handleTimeConfirm(ctx context.Context, chat transport.ChatTarget, ref transport.MessageRef, sess *Session, hour, minute int, asNow bool) {
	if sess == nil || (sess.Step != StepTime && sess.Step != StepEditSchedule) {
		return
	}

	var when time.Time
	if asNow {
		when = b.now()
	} else {
		var err error
		when, err = b.combine(sess.Draft.SelectedDate, hour, minute)
		if err != nil {
			b.log.Warn("bad draft date", logx.Err(err), logx.String("date", sess.Draft.SelectedDate))
			return
		}
		if !when.After(b.now()) {
			title := "New Post (step 4/4): Pick the time"
			if sess.Step == StepEditSchedule {
				title = "Reschedule: Pick the time"
			}
			b.edit(ctx, ref, timeRejectedMsg(title, sess.Draft.SelectedDate, hour, minute))
			return
		}
	}

	stored := post.FormatSchedule(when)

	if sess.Step == StepTime {
		sess.Draft.ScheduledAt = stored
		sess.Step = StepRecurring
		b.edit(ctx, ref, recurringMsg(when.Format(displayLayout)))
		return
	}

	// Reschedule flow: one write, then back to the list.
	if err := b.store.Update(ctx, sess.TargetPost, post.Fields{ScheduledAt: &stored}); err != nil {
		b.replyPostErr(ctx, ref, err, sess.TargetPost)
		return
	}
	id := sess.TargetPost
	b.sessions.End(sess.UserID)
	b.edit(ctx, ref, rescheduledMsg(id, when))
	b.scheduleListRefresh(chat)
}

func (b *Bot) isPastDate(year int, month time.Month, day int) bool {
	ty, tm, td := b.now().Date()
	if year != ty {
		return year < ty
	}
	if month != tm {
		return month < tm
	}
	return day < td
}

// monthOf extracts the calendar month from a draft date, falling back to the
// current month.
func (b *Bot) monthOf(selectedDate string) (int, time.Month) {
	if t, err := time.ParseInLocation("2006-01-02", selectedDate, b.loc); err == nil {
		return t.Year(), t.Month()
	}
	now := b.now()
	return now.Year(), now.Month()
}

func (b *Bot) replyPostErr(ctx context.Context, ref transport.MessageRef, err error, id int64) {
	if errIsNotFound(err) {
		b.edit(ctx, ref, notFoundMsg())
		return
	}
	b.log.Error("post operation failed", logx.Err(err), logx.Int64("post", id))
}
