// Package wizard drives the per-user conversation: the multi-step post
// creation flow, single-field edit flows, the post list and the access gate
// prompt. All handlers run on the app's single event-intake loop, so session
// state never needs locking.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"postbot/internal/auth"
	"postbot/internal/post"
	"postbot/internal/transport"
	"postbot/pkg/logx"
)

// affirmative are the free-text tokens accepted as "yes" at the recurrence
// step; anything else means one-time.
var affirmative = map[string]bool{"yes": true, "y": true, "daily": true, "repeat": true}

const listLimit = 10

// Bot is the conversation state machine.
type Bot struct {
	store    *post.Store
	gate     *auth.Gate
	ad       transport.Adapter
	sessions *Sessions
	loc      *time.Location
	log      logx.Logger

	// now is injectable for tests; defaults to the configured zone's clock.
	now func() time.Time

	// enqueue schedules a follow-up on the same serialized event loop that
	// delivers updates, preserving the single-writer-per-session guarantee.
	enqueue func(delay time.Duration, fn func(context.Context))
}

func New(store *post.Store, gate *auth.Gate, ad transport.Adapter, loc *time.Location,
	enqueue func(time.Duration, func(context.Context)), log logx.Logger) *Bot {
	if loc == nil {
		loc = time.UTC
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if enqueue == nil {
		enqueue = func(time.Duration, func(context.Context)) {}
	}
	return &Bot{
		store:    store,
		gate:     gate,
		ad:       ad,
		sessions: NewSessions(),
		loc:      loc,
		log:      log,
		now:      func() time.Time { return time.Now().In(loc) },
		enqueue:  enqueue,
	}
}

// SetNow overrides the clock. Test hook.
func (b *Bot) SetNow(now func() time.Time) { b.now = now }

// Sessions exposes the session table (read-only use outside the package).
func (b *Bot) Sessions() *Sessions { return b.sessions }

// HandleMessage processes one inbound message. The bot manages posts in
// private chats only and stays completely silent in groups; its only group
// activity is publishing scheduled posts.
func (b *Bot) HandleMessage(ctx context.Context, m *transport.Message) {
	if m.IsGroup {
		return
	}
	chat := transport.ChatTarget{ChatID: m.ChatID}
	sess := b.sessions.Get(m.FromID)

	if sess != nil && sess.Step == StepPassword {
		b.handlePassword(ctx, chat, m)
		return
	}

	// Commands win over any in-progress flow; /cancel must always work.
	if strings.HasPrefix(m.Text, "/") {
		b.handleCommand(ctx, chat, m)
		return
	}

	if sess != nil && sess.Step.editing() {
		b.handleEditMessage(ctx, chat, sess, m)
		return
	}

	if sess == nil {
		if !b.requireAuth(ctx, chat, m) {
			return
		}
		b.sendText(ctx, chat, "Please use /help to see available commands.")
		return
	}

	switch sess.Step {
	case StepContent:
		if strings.EqualFold(strings.TrimSpace(m.Text), "skip") {
			sess.Draft.Content = ""
		} else {
			sess.Draft.Content = m.Text
		}
		sess.Step = StepPhoto
		b.send(ctx, chat, stepPhotoMsg(sess.Draft.Content))

	case StepPhoto:
		switch {
		case m.Photo != nil:
			sess.Draft.Photo = m.Photo.Data
			sess.Draft.PhotoFilename = m.Photo.Filename
			sess.Step = StepDate
			b.send(ctx, chat, b.calendarMsg(sess, "✅ Photo added!", b.anchorMonth()))
		case strings.EqualFold(strings.TrimSpace(m.Text), "skip"):
			sess.Step = StepDate
			b.send(ctx, chat, b.calendarMsg(sess, "ℹ️ No photo will be added.", b.anchorMonth()))
		default:
			b.sendText(ctx, chat, "Please send a photo or type 'skip' to continue without one.")
		}

	case StepDate:
		// Only calendar interactions are valid here.
		b.sendText(ctx, chat, "Please use the calendar buttons above to select a date.")

	case StepTime:
		b.sendText(ctx, chat, "Please use the time buttons above to choose a time.")

	case StepRecurring:
		b.finishAdd(ctx, chat, sess, affirmative[strings.ToLower(strings.TrimSpace(m.Text))], nil)
	}
}

func (b *Bot) handleCommand(ctx context.Context, chat transport.ChatTarget, m *transport.Message) {
	cmd := strings.ToLower(strings.Fields(m.Text)[0])
	// Strip an @botname suffix.
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}

	if !b.requireAuth(ctx, chat, m) {
		return
	}

	switch cmd {
	case "/start":
		b.send(ctx, chat, welcomeMsg())
	case "/help":
		b.send(ctx, chat, helpMsg())
	case "/add":
		b.startWizard(ctx, chat, m.FromID)
	case "/list":
		b.ShowPostsList(ctx, chat)
	case "/cancel":
		if b.sessions.Get(m.FromID) != nil {
			b.sessions.End(m.FromID)
			b.sendText(ctx, chat, "❌ Cancelled.")
		} else {
			b.sendText(ctx, chat, "Nothing to cancel.")
		}
	case "/repair":
		n, err := b.store.Repair(ctx, b.now())
		if err != nil {
			b.log.Error("repair failed", logx.Err(err))
			b.sendText(ctx, chat, "🔧 Repair failed, see logs.")
			return
		}
		b.sendText(ctx, chat, fmt.Sprintf("🔧 Repair completed: %d post(s) fixed.", n))
	default:
		b.sendText(ctx, chat, "Unknown command. Type /help for available commands.")
	}
}

// requireAuth reports whether the user may proceed. Unauthorized users are
// switched into the password prompt.
func (b *Bot) requireAuth(ctx context.Context, chat transport.ChatTarget, m *transport.Message) bool {
	ok, err := b.gate.IsAuthorized(ctx, m.FromID)
	if err != nil {
		b.log.Error("authorization check failed", logx.Err(err), logx.Int64("user", m.FromID))
		return false
	}
	if ok {
		return true
	}
	b.sessions.Start(&Session{UserID: m.FromID, ChatID: m.ChatID, Step: StepPassword})
	b.send(ctx, chat, accessRequiredMsg(m.FromName))
	return false
}

func (b *Bot) handlePassword(ctx context.Context, chat transport.ChatTarget, m *transport.Message) {
	if !b.gate.CheckPassword(m.Text) {
		b.send(ctx, chat, wrongPasswordMsg())
		return
	}
	u := auth.User{ID: m.FromID, Username: m.FromUsername, FirstName: m.FromName}
	if err := b.gate.Authorize(ctx, u); err != nil {
		b.log.Error("authorize failed", logx.Err(err), logx.Int64("user", m.FromID))
		return
	}
	b.sessions.End(m.FromID)
	b.send(ctx, chat, accessGrantedMsg())
}

// startWizard begins the new-post flow, replacing any prior session.
func (b *Bot) startWizard(ctx context.Context, chat transport.ChatTarget, userID int64) {
	b.sessions.Start(&Session{UserID: userID, ChatID: chat.ChatID, Step: StepContent})
	b.send(ctx, chat, stepContentMsg())
}

// finishAdd attempts the final commit. On the empty-post violation the
// session is reset to the content step (rather than stranding the user at
// the recurrence choice); the selected schedule is kept on the draft.
func (b *Bot) finishAdd(ctx context.Context, chat transport.ChatTarget, sess *Session, recurring bool, origin *transport.MessageRef) {
	p := &post.Post{
		Content:       sess.Draft.Content,
		Photo:         sess.Draft.Photo,
		PhotoFilename: sess.Draft.PhotoFilename,
		ScheduledAt:   sess.Draft.ScheduledAt,
		Recurring:     recurring,
	}
	if err := p.Validate(); err != nil {
		sess.Step = StepContent
		b.send(ctx, chat, emptyPostMsg())
		return
	}

	id, err := b.store.Create(ctx, p)
	if err != nil {
		b.log.Error("post create failed", logx.Err(err))
		b.sendText(ctx, chat, "❌ Error saving post: "+err.Error())
		return
	}
	b.sessions.End(sess.UserID)

	msg := createdMsg(id, p, b.loc)
	if origin != nil {
		if err := msg.Edit(ctx, b.ad, *origin); err == nil {
			return
		}
	}
	b.send(ctx, chat, msg)
}

func (b *Bot) anchorMonth() time.Time { return b.now() }

// combine builds the candidate instant from the draft date and picked time.
func (b *Bot) combine(selectedDate string, hour, minute int) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", selectedDate, b.loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, b.loc), nil
}

// scheduleListRefresh re-renders the post list shortly after a completed
// management action. The closure runs on the serialized event loop.
func (b *Bot) scheduleListRefresh(chat transport.ChatTarget) {
	b.enqueue(2*time.Second, func(ctx context.Context) {
		b.ShowPostsList(ctx, chat)
	})
}

// ShowPostsList sends the pending posts, each rendered as it will appear,
// followed by its management buttons.
func (b *Bot) ShowPostsList(ctx context.Context, chat transport.ChatTarget) {
	posts, err := b.store.List(ctx, false)
	if err != nil {
		b.log.Error("list posts failed", logx.Err(err))
		b.sendText(ctx, chat, "❌ Could not load posts, see logs.")
		return
	}
	if len(posts) == 0 {
		b.sendText(ctx, chat, "📭 No scheduled posts found.\n\nUse /add to create your first post!")
		return
	}

	b.send(ctx, chat, listHeaderMsg(len(posts)))

	shown := posts
	if len(shown) > listLimit {
		shown = shown[:listLimit]
	}
	for i := range shown {
		p := &shown[i]
		info := postInfoLine(p, b.loc)
		if p.HasPhoto() {
			caption := info
			if p.Content != "" {
				caption = p.Content + "\n\n" + info
			}
			photo := transport.Photo{Data: p.Photo, Filename: p.PhotoFilename}
			if _, err := b.ad.SendPhoto(ctx, chat, photo, caption, nil); err != nil {
				b.log.Warn("list photo send failed", logx.Err(err), logx.Int64("post", p.ID))
				continue
			}
			b.send(ctx, chat, manageMsg(p.ID))
			continue
		}
		b.send(ctx, chat, textPostMsg(p, info))
	}

	if len(posts) > listLimit {
		b.sendText(ctx, chat, fmt.Sprintf("... and %d more posts (showing first %d only)", len(posts)-listLimit, listLimit))
	}
	b.send(ctx, chat, addNewMsg())
}

func errIsNotFound(err error) bool { return errors.Is(err, post.ErrNotFound) }
