package post

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"postbot/internal/storage"
	"postbot/pkg/logx"
)

func testStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	db, err := storage.Open(storage.Config{Path: filepath.Join(t.TempDir(), "posts.db")})
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db, time.UTC, logx.Nop()), db
}

func TestStoreCreateAndGet(t *testing.T) {
	t.Parallel()
	s, _ := testStore(t)
	ctx := context.Background()

	in := &Post{
		Content:       "hello world",
		Photo:         []byte{0xFF, 0xD8},
		PhotoFilename: "pic.jpg",
		ScheduledAt:   "2025-06-05T09:30:00Z",
		Recurring:     true,
	}
	id, err := s.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == 0 {
		t.Fatal("Create returned zero id")
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Content != in.Content || got.PhotoFilename != in.PhotoFilename {
		t.Fatalf("Get = %+v", got)
	}
	if len(got.Photo) != len(in.Photo) {
		t.Fatalf("photo length = %d, want %d", len(got.Photo), len(in.Photo))
	}
	if !got.Recurring || got.Posted {
		t.Fatalf("flags: recurring=%v posted=%v", got.Recurring, got.Posted)
	}
}

func TestStoreCreateRejectsInvalid(t *testing.T) {
	t.Parallel()
	s, _ := testStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, &Post{ScheduledAt: "2025-06-05T09:30:00Z"}); !errors.Is(err, ErrEmptyPost) {
		t.Fatalf("empty post: expected ErrEmptyPost, got %v", err)
	}

	var corrupt *CorruptScheduleError
	if _, err := s.Create(ctx, &Post{Content: "x", ScheduledAt: "soon"}); !errors.As(err, &corrupt) {
		t.Fatalf("bad schedule: expected CorruptScheduleError, got %v", err)
	}
}

func TestStoreListOrderAndPendingFilter(t *testing.T) {
	t.Parallel()
	s, _ := testStore(t)
	ctx := context.Background()

	later, err := s.Create(ctx, &Post{Content: "later", ScheduledAt: "2025-06-07T10:00:00Z"})
	if err != nil {
		t.Fatal(err)
	}
	earlier, err := s.Create(ctx, &Post{Content: "earlier", ScheduledAt: "2025-06-05T10:00:00Z"})
	if err != nil {
		t.Fatal(err)
	}
	done, err := s.Create(ctx, &Post{Content: "done", ScheduledAt: "2025-06-01T10:00:00Z"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.MarkPosted(ctx, done); err != nil {
		t.Fatalf("MarkPosted: %v", err)
	}

	pending, err := s.List(ctx, false)
	if err != nil {
		t.Fatalf("List pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending count = %d, want 2", len(pending))
	}
	if pending[0].ID != earlier || pending[1].ID != later {
		t.Fatalf("order = [%d %d], want [%d %d]", pending[0].ID, pending[1].ID, earlier, later)
	}

	all, err := s.List(ctx, true)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all count = %d, want 3", len(all))
	}
}

func TestStoreUpdate(t *testing.T) {
	t.Parallel()
	s, _ := testStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, &Post{Content: "before", ScheduledAt: "2025-06-05T10:00:00Z"})
	if err != nil {
		t.Fatal(err)
	}

	content := "after"
	at := "2025-06-06T11:00:00Z"
	rec := true
	if err := s.Update(ctx, id, Fields{Content: &content, ScheduledAt: &at, Recurring: &rec}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "after" || got.ScheduledAt != at || !got.Recurring {
		t.Fatalf("after update: %+v", got)
	}

	bad := "nope"
	var corrupt *CorruptScheduleError
	if err := s.Update(ctx, id, Fields{ScheduledAt: &bad}); !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptScheduleError, got %v", err)
	}

	if err := s.Update(ctx, 9999, Fields{Content: &content}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreUpdateClearsPhoto(t *testing.T) {
	t.Parallel()
	s, _ := testStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, &Post{
		Content: "keep me", Photo: []byte{1, 2, 3}, PhotoFilename: "a.jpg",
		ScheduledAt: "2025-06-05T10:00:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}

	var none []byte
	empty := ""
	if err := s.Update(ctx, id, Fields{Photo: &none, PhotoFilename: &empty}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.HasPhoto() || got.PhotoFilename != "" {
		t.Fatalf("photo not cleared: %+v", got)
	}
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()
	s, _ := testStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, &Post{Content: "x", ScheduledAt: "2025-06-05T10:00:00Z"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestStoreRepair(t *testing.T) {
	t.Parallel()
	s, db := testStore(t)
	ctx := context.Background()

	// Rows written behind the store's back, as an older deployment might
	// have left them.
	mustExec(t, db, `INSERT INTO posts(content, scheduled_at) VALUES('date only', '2025-06-05')`)
	mustExec(t, db, `INSERT INTO posts(content, scheduled_at) VALUES('garbage', 'whenever')`)
	okID, err := s.Create(ctx, &Post{Content: "fine", ScheduledAt: "2025-06-05T10:00:00Z"})
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	n, err := s.Repair(ctx, now)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if n != 2 {
		t.Fatalf("repaired = %d, want 2", n)
	}

	posts, err := s.List(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range posts {
		at, err := p.ScheduledTime(time.UTC)
		if err != nil {
			t.Fatalf("post %d still unparsable: %v", p.ID, err)
		}
		switch p.Content {
		case "date only":
			want := time.Date(2025, time.June, 5, 12, 0, 0, 0, time.UTC)
			if !at.Equal(want) {
				t.Fatalf("date-only repaired to %v, want %v", at, want)
			}
		case "garbage":
			if !at.Equal(now.Add(time.Hour)) {
				t.Fatalf("garbage repaired to %v, want %v", at, now.Add(time.Hour))
			}
		}
	}

	// Idempotent: nothing left to fix, the sound row is untouched.
	n, err = s.Repair(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("second repair fixed %d rows, want 0", n)
	}
	ok, err := s.Get(ctx, okID)
	if err != nil {
		t.Fatal(err)
	}
	if ok.ScheduledAt != "2025-06-05T10:00:00Z" {
		t.Fatalf("sound row rewritten: %q", ok.ScheduledAt)
	}
}

func mustExec(t *testing.T, db *sql.DB, q string, args ...any) {
	t.Helper()
	if _, err := db.Exec(q, args...); err != nil {
		t.Fatalf("exec %q: %v", q, err)
	}
}
