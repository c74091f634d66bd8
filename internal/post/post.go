package post

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a post id does not exist (anymore).
	ErrNotFound = errors.New("post not found")

	// ErrEmptyPost is returned when a post has neither text nor photo.
	ErrEmptyPost = errors.New("post must have text content or a photo")
)

// CorruptScheduleError marks a stored scheduled-at value that does not parse.
// The scheduler skips such records without touching them; Store.Repair can
// normalize them.
type CorruptScheduleError struct {
	Raw string
}

func (e *CorruptScheduleError) Error() string {
	return fmt.Sprintf("unparsable scheduled time %q", e.Raw)
}

// ScheduleLayout is the canonical on-disk timestamp encoding.
const ScheduleLayout = time.RFC3339

// Post is a scheduled (or already published) post.
//
// ScheduledAt is kept as the stored text form; use ScheduledTime to get the
// parsed instant. Writes through the store only ever produce canonical
// RFC3339 values, but reads must tolerate legacy rows (see ParseSchedule).
type Post struct {
	ID            int64
	Content       string
	Photo         []byte
	PhotoFilename string
	ScheduledAt   string
	Recurring     bool
	Posted        bool
	CreatedAt     time.Time
}

// Validate enforces the creation invariant: text or photo, never neither.
func (p *Post) Validate() error {
	if p.Content == "" && len(p.Photo) == 0 {
		return ErrEmptyPost
	}
	return nil
}

// HasPhoto reports whether the post carries a photo payload.
func (p *Post) HasPhoto() bool { return len(p.Photo) > 0 }

// ScheduledTime parses the stored scheduled instant in loc.
func (p *Post) ScheduledTime(loc *time.Location) (time.Time, error) {
	return ParseSchedule(p.ScheduledAt, loc)
}

// FormatSchedule encodes an instant into the canonical stored form.
func FormatSchedule(t time.Time) string {
	return t.Format(ScheduleLayout)
}

// legacy layouts accepted on read; zone-less values are interpreted in loc.
var legacyLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseSchedule parses a stored scheduled-at value. It accepts the canonical
// RFC3339 form plus a few legacy zone-less layouts. Anything else yields a
// *CorruptScheduleError.
func ParseSchedule(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(ScheduleLayout, raw); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range legacyLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &CorruptScheduleError{Raw: raw}
}

// NextWeekday returns the next Monday–Friday occurrence after t, preserving
// t's time-of-day exactly: one day forward, then keep stepping over Saturday
// and Sunday.
func NextWeekday(t time.Time) time.Time {
	next := t.AddDate(0, 0, 1)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
