package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"postbot/internal/post"
	"postbot/internal/transport"
	"postbot/pkg/logx"
)

// handleEditMessage consumes the one free-form message an edit flow waits
// for. Each branch performs a single field write and ends the session; a
// delayed list refresh follows so the user sees the updated state.
func (b *Bot) handleEditMessage(ctx context.Context, chat transport.ChatTarget, sess *Session, m *transport.Message) {
	switch sess.Step {
	case StepEditText:
		text := m.Text
		if strings.EqualFold(strings.TrimSpace(text), "delete") {
			text = ""
		}
		if err := b.applyEdit(ctx, sess.TargetPost, post.Fields{Content: &text}); err != nil {
			b.editErrReply(ctx, chat, err)
			b.sessions.End(sess.UserID)
			return
		}
		b.sessions.End(sess.UserID)
		if text == "" {
			b.sendText(ctx, chat, fmt.Sprintf("📝 Text removed from post %d.", sess.TargetPost))
		} else {
			b.sendText(ctx, chat, fmt.Sprintf("📝 Text of post %d updated.", sess.TargetPost))
		}
		b.scheduleListRefresh(chat)

	case StepEditPhoto:
		var f post.Fields
		switch {
		case m.Photo != nil:
			f.Photo = &m.Photo.Data
			name := m.Photo.Filename
			f.PhotoFilename = &name
		case strings.EqualFold(strings.TrimSpace(m.Text), "delete"):
			var none []byte
			empty := ""
			f.Photo = &none
			f.PhotoFilename = &empty
		default:
			b.sendText(ctx, chat, "Please send a photo, or type 'delete' to remove the current one.")
			return
		}
		if err := b.applyEdit(ctx, sess.TargetPost, f); err != nil {
			b.editErrReply(ctx, chat, err)
			b.sessions.End(sess.UserID)
			return
		}
		b.sessions.End(sess.UserID)
		if m.Photo != nil {
			b.sendText(ctx, chat, fmt.Sprintf("📷 Photo of post %d updated.", sess.TargetPost))
		} else {
			b.sendText(ctx, chat, fmt.Sprintf("📷 Photo removed from post %d.", sess.TargetPost))
		}
		b.scheduleListRefresh(chat)

	case StepEditSchedule:
		// Reschedule runs entirely on the calendar and time picker.
		b.sendText(ctx, chat, "Please use the calendar buttons above to pick the new date.")
	}
}

// applyEdit writes the fields, mapping the empty-post invariant by checking
// the post state first for destructive edits.
func (b *Bot) applyEdit(ctx context.Context, id int64, f post.Fields) error {
	clearsText := f.Content != nil && *f.Content == ""
	clearsPhoto := f.Photo != nil && len(*f.Photo) == 0
	if clearsText || clearsPhoto {
		p, err := b.store.Get(ctx, id)
		if err != nil {
			return err
		}
		if clearsText {
			p.Content = ""
		}
		if clearsPhoto {
			p.Photo = nil
		}
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return b.store.Update(ctx, id, f)
}

func (b *Bot) editErrReply(ctx context.Context, chat transport.ChatTarget, err error) {
	switch {
	case errIsNotFound(err):
		b.sendText(ctx, chat, "❌ That post no longer exists.")
	case errors.Is(err, post.ErrEmptyPost):
		b.sendText(ctx, chat, "⚠️ A post needs text or a photo; removing this would leave it empty.")
	default:
		b.log.Error("post update failed", logx.Err(err))
		b.sendText(ctx, chat, "❌ Update failed, see logs.")
	}
}
