// Package app wires the process together: config, logging, storage, the
// Telegram adapter, the conversation bot and the publish scheduler.
//
// All inbound updates and all delayed UI follow-ups are consumed by one
// intake goroutine, so conversation state transitions are fully serialized
// per process.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/robfig/cron/v3"

	"postbot/internal/adapters/telegram"
	"postbot/internal/auth"
	"postbot/internal/config"
	"postbot/internal/post"
	"postbot/internal/scheduler"
	"postbot/internal/storage"
	kit "postbot/internal/transport"
	"postbot/internal/wizard"
	"postbot/pkg/logx"
)

const updateBuffer = 64

type App struct {
	cfg *config.Config
	log logx.Logger

	logCloser io.Closer
	dbCloser  io.Closer

	adapter kit.Adapter
	bot     *wizard.Bot
	sched   *scheduler.Scheduler
	cron    *cron.Cron

	updates   chan kit.Update
	followups chan func(context.Context)

	loopDone chan struct{}
}

func NewApp(cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	log, logCloser, err := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.ConsoleLogging(),
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(storage.Config{
		Path:        cfg.StoragePath(),
		BusyTimeout: cfg.BusyTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	store := post.NewStore(db, loc, log.With(logx.String("comp", "store")))
	gate := auth.NewGate(db, cfg.Auth.AccessPassword, log.With(logx.String("comp", "auth")))

	ad, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: cfg.PollTimeout(),
		SendPerSec:  cfg.Telegram.SendPerSec,
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}

	a := &App{
		cfg:       cfg,
		log:       log,
		logCloser: logCloser,
		dbCloser:  db,
		adapter:   ad,
		updates:   make(chan kit.Update, updateBuffer),
		followups: make(chan func(context.Context), updateBuffer),
		loopDone:  make(chan struct{}),
	}

	a.bot = wizard.New(store, gate, ad, loc, a.enqueue, log.With(logx.String("comp", "wizard")))
	a.sched = scheduler.New(scheduler.Config{
		TargetChatID: cfg.Telegram.TargetChatID,
		PollInterval: cfg.SchedulerPollInterval(),
		ErrorBackoff: cfg.SchedulerErrorBackoff(),
	}, store, ad, loc, log.With(logx.String("comp", "scheduler")))

	// Nightly schedule repair, same normalization as /repair.
	a.cron = cron.New()
	_, err = a.cron.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := store.Repair(ctx, time.Now().In(loc))
		if err != nil {
			log.Error("nightly repair failed", logx.Err(err))
			return
		}
		if n > 0 {
			log.Info("nightly repair fixed posts", logx.Int("fixed", n))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("cron: %w", err)
	}

	return a, nil
}

// enqueue hands a delayed closure to the intake loop. Closures run on the
// same goroutine as update handling, never concurrently with it.
func (a *App) enqueue(delay time.Duration, fn func(context.Context)) {
	time.AfterFunc(delay, func() {
		select {
		case a.followups <- fn:
		default:
			a.log.Warn("followup queue full, dropping")
		}
	})
}

func (a *App) Start(ctx context.Context) error {
	if err := a.adapter.Start(ctx, a.updates); err != nil {
		return fmt.Errorf("adapter start: %w", err)
	}
	go a.intake(ctx)
	a.sched.Start(ctx)
	a.cron.Start()
	a.log.Info("app started")
	return nil
}

// intake is the single consumer of updates and follow-ups.
func (a *App) intake(ctx context.Context) {
	defer close(a.loopDone)
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-a.updates:
			if !ok {
				return
			}
			a.dispatch(ctx, u)
		case fn := <-a.followups:
			fn(ctx)
		}
	}
}

func (a *App) dispatch(ctx context.Context, u kit.Update) {
	switch u.Kind {
	case kit.UpdateMessage:
		if u.Message != nil {
			a.bot.HandleMessage(ctx, u.Message)
		}
	case kit.UpdateCallback:
		if u.Callback != nil {
			a.bot.HandleCallback(ctx, u.Callback)
		}
	}
}

func (a *App) Stop(ctx context.Context) error {
	var firstErr error

	cronCtx := a.cron.Stop()
	select {
	case <-cronCtx.Done():
	case <-ctx.Done():
		firstErr = fmt.Errorf("cron stop: %w", ctx.Err())
	}

	if err := a.sched.Stop(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.adapter.Stop(ctx); err != nil && firstErr == nil {
		firstErr = err
	}

	select {
	case <-a.loopDone:
	case <-ctx.Done():
		if firstErr == nil {
			firstErr = fmt.Errorf("intake stop: %w", ctx.Err())
		}
	case <-time.After(2 * time.Second):
	}

	if a.dbCloser != nil {
		if err := a.dbCloser.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("storage close: %w", err)
		}
	}
	a.log.Info("app stopped")
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
	return firstErr
}
