// Package scheduler runs the background publish loop: it polls the store
// for due posts, publishes them to the target chat and advances or retires
// each record afterwards.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"postbot/internal/post"
	"postbot/internal/transport"
	"postbot/pkg/logx"
)

type Config struct {
	// TargetChatID is the chat every post is published to.
	TargetChatID int64

	// PollInterval is the pause between passes; ErrorBackoff replaces it
	// after a pass that failed to even read the store.
	PollInterval time.Duration
	ErrorBackoff time.Duration
}

// Scheduler publishes due posts. Publishing is sequential within a pass so
// posts appear in schedule order.
type Scheduler struct {
	cfg   Config
	store *post.Store
	ad    transport.Adapter
	loc   *time.Location
	log   logx.Logger

	now func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func New(cfg Config, store *post.Store, ad transport.Adapter, loc *time.Location, log logx.Logger) *Scheduler {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = time.Minute
	}
	if loc == nil {
		loc = time.UTC
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Scheduler{
		cfg:   cfg,
		store: store,
		ad:    ad,
		loc:   loc,
		log:   log,
		now:   func() time.Time { return time.Now().In(loc) },
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// SetNow overrides the clock. Test hook.
func (s *Scheduler) SetNow(now func() time.Time) { s.now = now }

// Start launches the poll loop. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop signals the loop and waits for it to drain, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)
	s.log.Info("scheduler started",
		logx.Duration("poll", s.cfg.PollInterval),
		logx.Int64("target_chat", s.cfg.TargetChatID))

	for {
		wait := s.cfg.PollInterval
		if err := s.Tick(ctx); err != nil {
			s.log.Error("scheduler pass failed", logx.Err(err))
			wait = s.cfg.ErrorBackoff
		}

		select {
		case <-s.stop:
			s.log.Info("scheduler stopped")
			return
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-time.After(wait):
		}
	}
}

// Tick runs one publish pass. A failure to read the store fails the whole
// pass; everything per-record is contained so one bad or unsendable post
// never blocks the rest.
func (s *Scheduler) Tick(ctx context.Context) error {
	posts, err := s.store.List(ctx, false)
	if err != nil {
		return fmt.Errorf("list pending: %w", err)
	}

	now := s.now()
	for i := range posts {
		p := &posts[i]
		sched, err := p.ScheduledTime(s.loc)
		if err != nil {
			var corrupt *post.CorruptScheduleError
			if errors.As(err, &corrupt) {
				// Left untouched: /repair or the nightly job normalizes it.
				s.log.Warn("skipping post with unparsable schedule",
					logx.Int64("post", p.ID), logx.String("raw", corrupt.Raw))
				continue
			}
			s.log.Error("schedule parse failed", logx.Err(err), logx.Int64("post", p.ID))
			continue
		}
		if sched.After(now) {
			continue
		}
		s.publish(ctx, p, sched)
	}
	return nil
}

// publish sends one due post and advances its record. Send failures leave
// the record untouched so the next pass retries. sched is the instant the
// post was due at, which may lag the wall clock by up to a poll interval.
func (s *Scheduler) publish(ctx context.Context, p *post.Post, sched time.Time) {
	to := transport.ChatTarget{ChatID: s.cfg.TargetChatID}

	var err error
	if p.HasPhoto() {
		_, err = s.ad.SendPhoto(ctx, to, transport.Photo{Data: p.Photo, Filename: p.PhotoFilename}, p.Content, nil)
	} else {
		_, err = s.ad.SendText(ctx, to, p.Content, nil)
	}
	if err != nil {
		s.log.Error("publish failed", logx.Err(err), logx.Int64("post", p.ID))
		return
	}
	s.log.Info("post published", logx.Int64("post", p.ID), logx.Bool("recurring", p.Recurring))

	if !p.Recurring {
		if err := s.store.MarkPosted(ctx, p.ID); err != nil {
			s.log.Error("mark posted failed", logx.Err(err), logx.Int64("post", p.ID))
		}
		return
	}

	// Recurring: move to the next weekday, computed from the elapsed
	// scheduled instant so the time of day never drifts with publish
	// latency, and keep the record pending.
	next := post.FormatSchedule(post.NextWeekday(sched))
	pending := false
	if err := s.store.Update(ctx, p.ID, post.Fields{ScheduledAt: &next, Posted: &pending}); err != nil {
		s.log.Error("reschedule failed, retiring post", logx.Err(err), logx.Int64("post", p.ID))
		// Retire rather than risk re-publishing the same post every pass.
		if err := s.store.MarkPosted(ctx, p.ID); err != nil {
			s.log.Error("mark posted fallback failed", logx.Err(err), logx.Int64("post", p.ID))
		}
		return
	}
	s.log.Info("post rescheduled", logx.Int64("post", p.ID), logx.String("next", next))
}
