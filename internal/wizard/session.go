package wizard

import (
	"postbot/internal/transport"
)

// Step enumerates the conversation states. The Await* steps form the
// new-post wizard in strict order; the Edit* steps are entered directly for
// single-field edits and always return to idle after one write.
type Step int

const (
	// StepPassword gates an unauthorized private-chat user until they send
	// the access password.
	StepPassword Step = iota + 1

	StepContent
	StepPhoto
	StepDate
	StepTime
	StepRecurring

	StepEditText
	StepEditPhoto
	StepEditSchedule
)

func (s Step) editing() bool {
	return s == StepEditText || s == StepEditPhoto || s == StepEditSchedule
}

// Draft accumulates the post under construction.
type Draft struct {
	Content       string
	Photo         []byte
	PhotoFilename string

	// SelectedDate is the calendar pick ("2006-01-02"), set only at calendar
	// confirmation.
	SelectedDate string

	// ScheduledAt is the canonical combined instant, set at time confirmation.
	ScheduledAt string
}

// Session is one user's in-progress conversation. Sessions are transient by
// design: they live in memory only and are lost on restart.
type Session struct {
	UserID int64
	ChatID int64
	Step   Step
	Draft  Draft

	// TargetPost and Origin are used by edit flows: the post being edited and
	// the UI message the flow was started from.
	TargetPost int64
	Origin     transport.MessageRef
}

// Sessions is the session table, keyed by user id. At most one session per
// user exists; starting a new wizard replaces any prior session.
//
// All access happens on the single event-intake loop, which serializes every
// transition for a given user, so no locking is needed here.
type Sessions struct {
	m map[int64]*Session
}

func NewSessions() *Sessions {
	return &Sessions{m: make(map[int64]*Session)}
}

func (s *Sessions) Get(userID int64) *Session {
	return s.m[userID]
}

// Start replaces any existing session for the user.
func (s *Sessions) Start(sess *Session) *Session {
	s.m[sess.UserID] = sess
	return sess
}

func (s *Sessions) End(userID int64) {
	delete(s.m, userID)
}

func (s *Sessions) Len() int { return len(s.m) }
