package wizard

import (
	"context"
	"fmt"
	"time"

	"postbot/internal/post"
	"postbot/internal/transport"
	"postbot/internal/ui"
	"postbot/pkg/logx"
	"postbot/pkg/tgui"
)

const displayLayout = "January 02, 2006 at 15:04"

func (b *Bot) send(ctx context.Context, chat transport.ChatTarget, msg tgui.Message) {
	if _, err := msg.Send(ctx, b.ad, chat); err != nil {
		b.log.Warn("send failed", logx.Err(err), logx.Int64("chat", chat.ChatID))
	}
}

func (b *Bot) edit(ctx context.Context, ref transport.MessageRef, msg tgui.Message) {
	if err := msg.Edit(ctx, b.ad, ref); err != nil {
		b.log.Warn("edit failed", logx.Err(err), logx.Int64("chat", ref.ChatID))
	}
}

func (b *Bot) sendText(ctx context.Context, chat transport.ChatTarget, text string) {
	b.send(ctx, chat, tgui.New().Line(text).Build())
}

func welcomeMsg() tgui.Message {
	return tgui.New().
		Title("🤖", "Auto-Posting Bot").
		Blank().
		Line("I publish scheduled posts to your channel, with optional daily repeats on weekdays.").
		Blank().
		Line("Type /help to see what I can do.").
		Build()
}

func helpMsg() tgui.Message {
	return tgui.New().
		Title("📖", "Commands").
		Blank().
		Bullets(
			"/add – schedule a new post",
			"/list – show pending posts",
			"/cancel – abort the current flow",
			"/repair – normalize broken schedules",
			"/help – this message",
		).
		Blank().
		Line("Posts with 'repeat daily' are re-scheduled to the next weekday after publishing.").
		Build()
}

func accessRequiredMsg(name string) tgui.Message {
	bld := tgui.New().Title("🔐", "Access Required")
	if name != "" {
		bld.Blank().Line("Hello, " + name + "!")
	}
	return bld.
		Blank().
		Line("Please enter the access password to use this bot.").
		Build()
}

func wrongPasswordMsg() tgui.Message {
	return tgui.New().Line("❌ Wrong password. Please try again.").Build()
}

func accessGrantedMsg() tgui.Message {
	return tgui.New().
		Line("✅ Access granted! Welcome.").
		Blank().
		Line("Type /help to see available commands.").
		Build()
}

func stepContentMsg() tgui.Message {
	return tgui.New().
		Title("📝", "New Post (step 1/4)").
		Blank().
		Line("Send me the text of the post.").
		Line("You can skip this step and attach only a photo.").
		Inline(tgui.NewInline().Row(tgui.Btn("Skip text", ui.Encode(ui.SkipContent{})))).
		Build()
}

func stepPhotoMsg(content string) tgui.Message {
	bld := tgui.New().Title("📷", "New Post (step 2/4)")
	if content != "" {
		bld.Blank().Line("Text saved:").Line(tgui.TruncRunes(content, 200))
	} else {
		bld.Blank().Line("ℹ️ The post will have no text.")
	}
	return bld.
		Blank().
		Line("Now send a photo, or skip this step.").
		Inline(tgui.NewInline().Row(tgui.Btn("Skip photo", ui.Encode(ui.SkipPhoto{})))).
		Build()
}

// calendarMsg renders the date step anchored at the given month with no day
// selected yet.
func (b *Bot) calendarMsg(_ *Session, status string, anchor time.Time) tgui.Message {
	return b.calendarAt(status, anchor.Year(), anchor.Month(), 0)
}

// calendarAt renders the date step for an explicit month and selection. The
// text is deterministic for given parameters so navigation edits in place.
func (b *Bot) calendarAt(status string, year int, month time.Month, selDay int) tgui.Message {
	bld := tgui.New().Title("📅", "New Post (step 3/4)")
	if status != "" {
		bld.Blank().Line(status)
	}
	return bld.
		Blank().
		Line("Pick the date to publish on:").
		Inline(ui.Calendar(year, month, selDay, b.now())).
		Build()
}

// editCalendarAt is the calendar rendered for the reschedule flow.
func (b *Bot) editCalendarAt(year int, month time.Month, selDay int) tgui.Message {
	return tgui.New().
		Title("📅", "Reschedule Post").
		Blank().
		Line("Pick the new date:").
		Inline(ui.Calendar(year, month, selDay, b.now())).
		Build()
}

func timeMsg(title, dateLabel string, hour, minute int) tgui.Message {
	return tgui.New().
		Title("🕐", title).
		Blank().
		Line("Date: " + dateLabel).
		Line("Pick the time, or fine-tune and confirm:").
		Inline(ui.TimePicker(hour, minute)).
		Build()
}

func timeRejectedMsg(title, dateLabel string, hour, minute int) tgui.Message {
	return tgui.New().
		Title("🕐", title).
		Blank().
		Line("⚠️ That time is already in the past. Pick a later one.").
		Blank().
		Line("Date: " + dateLabel).
		Inline(ui.TimePicker(hour, minute)).
		Build()
}

func recurringMsg(display string) tgui.Message {
	return tgui.New().
		Title("🔁", "New Post (step 4/4)").
		Blank().
		Line("Scheduled for " + display + ".").
		Blank().
		Line("Repeat this post daily on weekdays?").
		Inline(tgui.NewInline().Row(
			tgui.Btn("🔁 Repeat daily", ui.Encode(ui.RecurringChoice{Recurring: true})),
			tgui.Btn("1️⃣ Post once", ui.Encode(ui.RecurringChoice{Recurring: false})),
		)).
		Build()
}

func emptyPostMsg() tgui.Message {
	return tgui.New().
		Line("⚠️ A post needs text or a photo. Let's start with the text again.").
		Blank().
		Line("Send me the text of the post.").
		Inline(tgui.NewInline().Row(tgui.Btn("Skip text", ui.Encode(ui.SkipContent{})))).
		Build()
}

func createdMsg(id int64, p *post.Post, loc *time.Location) tgui.Message {
	bld := tgui.New().
		Title("✅", "Post Scheduled").
		Blank().
		KV("ID", fmt.Sprintf("%d", id)).
		KV("When", scheduleDisplay(p, loc))
	if p.Recurring {
		bld.KV("Repeats", "daily on weekdays")
	} else {
		bld.KV("Repeats", "no")
	}
	if p.HasPhoto() {
		bld.KV("Photo", "yes")
	}
	return bld.Build()
}

func listHeaderMsg(n int) tgui.Message {
	return tgui.New().
		Title("📋", fmt.Sprintf("Scheduled Posts (%d)", n)).
		Build()
}

// postInfoLine is the metadata footer shown under each listed post.
func postInfoLine(p *post.Post, loc *time.Location) string {
	line := fmt.Sprintf("📅 %s | ID %d", scheduleDisplay(p, loc), p.ID)
	if p.Recurring {
		line += " | 🔁 daily"
	}
	return line
}

func scheduleDisplay(p *post.Post, loc *time.Location) string {
	t, err := p.ScheduledTime(loc)
	if err != nil {
		return p.ScheduledAt + " (broken, run /repair)"
	}
	return t.Format(displayLayout)
}

func manageButtons(id int64) *tgui.Inline {
	return tgui.NewInline().Row(
		tgui.Btn("✏️ Edit", ui.Encode(ui.EditMenu{PostID: id})),
		tgui.Btn("🗑 Delete", ui.Encode(ui.DeleteAsk{PostID: id})),
	)
}

// manageMsg is the buttons-only companion message for photo posts, whose
// preview is sent as an actual photo and cannot carry the keyboard itself.
func manageMsg(id int64) tgui.Message {
	return tgui.New().
		Line(fmt.Sprintf("Manage post %d:", id)).
		Inline(manageButtons(id)).
		Build()
}

func textPostMsg(p *post.Post, info string) tgui.Message {
	bld := tgui.New()
	if p.Content != "" {
		bld.Line(tgui.TruncRunes(p.Content, 500)).Blank()
	}
	return bld.
		Line(info).
		Inline(manageButtons(p.ID)).
		Build()
}

func addNewMsg() tgui.Message {
	return tgui.New().
		Line("➕ Schedule another post?").
		Inline(tgui.NewInline().Row(tgui.Btn("➕ Add New Post", ui.Encode(ui.AddNew{})))).
		Build()
}

func deleteAskMsg(p *post.Post, loc *time.Location) tgui.Message {
	return tgui.New().
		Title("🗑", "Delete Post").
		Blank().
		Line(fmt.Sprintf("Delete post %d scheduled for %s?", p.ID, scheduleDisplay(p, loc))).
		Inline(tgui.ConfirmInline(
			tgui.Btn("Yes, delete", ui.Encode(ui.DeleteConfirm{PostID: p.ID})),
			tgui.Btn("No, keep it", ui.Encode(ui.DeleteCancel{})),
		)).
		Build()
}

func editMenuMsg(p *post.Post, loc *time.Location) tgui.Message {
	bld := tgui.New().
		Title("✏️", fmt.Sprintf("Edit Post %d", p.ID)).
		Blank().
		KV("When", scheduleDisplay(p, loc))
	if p.Content != "" {
		bld.KV("Text", tgui.TruncRunes(p.Content, 100))
	} else {
		bld.KV("Text", "(none)")
	}
	if p.HasPhoto() {
		bld.KV("Photo", "yes")
	} else {
		bld.KV("Photo", "no")
	}
	if p.Recurring {
		bld.KV("Repeats", "daily on weekdays")
	} else {
		bld.KV("Repeats", "no")
	}
	recurLabel := "🔁 Repeat: off → on"
	if p.Recurring {
		recurLabel = "🔁 Repeat: on → off"
	}
	return bld.
		Inline(tgui.NewInline().
			Row(
				tgui.Btn("📝 Text", ui.Encode(ui.EditText{PostID: p.ID})),
				tgui.Btn("📷 Photo", ui.Encode(ui.EditPhoto{PostID: p.ID})),
			).
			Row(
				tgui.Btn("📅 Reschedule", ui.Encode(ui.EditSchedule{PostID: p.ID})),
				tgui.Btn(recurLabel, ui.Encode(ui.ToggleRecurring{PostID: p.ID})),
			).
			Row(tgui.Btn("⬅️ Back to list", ui.Encode(ui.BackToList{})))).
		Build()
}

func editTextPromptMsg(p *post.Post) tgui.Message {
	bld := tgui.New().Title("📝", fmt.Sprintf("Edit Text of Post %d", p.ID))
	if p.Content != "" {
		bld.Blank().Line("Current text:").Line(tgui.TruncRunes(p.Content, 500))
	}
	return bld.
		Blank().
		Line("Send the new text, or type 'delete' to remove the text.").
		Build()
}

func editPhotoPromptMsg(p *post.Post) tgui.Message {
	bld := tgui.New().Title("📷", fmt.Sprintf("Edit Photo of Post %d", p.ID))
	if p.HasPhoto() {
		bld.Blank().Line("The post currently has a photo.")
	} else {
		bld.Blank().Line("The post currently has no photo.")
	}
	return bld.
		Blank().
		Line("Send the new photo, or type 'delete' to remove it.").
		Build()
}

func cancelledMsg() tgui.Message {
	return tgui.New().Line("❌ Post creation cancelled.").Build()
}

func backToListMsg() tgui.Message {
	return tgui.New().Line("⬅️ Back to the list...").Build()
}

func deletedMsg(id int64) tgui.Message {
	return tgui.New().Line(fmt.Sprintf("🗑 Post %d deleted.", id)).Build()
}

func rescheduledMsg(id int64, when time.Time) tgui.Message {
	return tgui.New().
		Line(fmt.Sprintf("📅 Post %d rescheduled for %s.", id, when.Format(displayLayout))).
		Build()
}

func notFoundMsg() tgui.Message {
	return tgui.New().Line("❌ That post no longer exists.").Build()
}
