package auth

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"postbot/internal/storage"
	"postbot/pkg/logx"
)

func testGate(t *testing.T, password string) (*Gate, *sql.DB) {
	t.Helper()
	db, err := storage.Open(storage.Config{Path: filepath.Join(t.TempDir(), "auth.db")})
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewGate(db, password, logx.Nop()), db
}

func TestCheckPassword(t *testing.T) {
	t.Parallel()
	g, _ := testGate(t, "hunter2")

	tests := []struct {
		name    string
		attempt string
		want    bool
	}{
		{name: "exact", attempt: "hunter2", want: true},
		{name: "surrounding space", attempt: "  hunter2  ", want: true},
		{name: "wrong", attempt: "hunter3", want: false},
		{name: "empty", attempt: "", want: false},
		{name: "case matters", attempt: "Hunter2", want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := g.CheckPassword(tt.attempt); got != tt.want {
				t.Fatalf("CheckPassword(%q) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestAuthorizePersists(t *testing.T) {
	t.Parallel()
	g, _ := testGate(t, "pw")
	ctx := context.Background()

	ok, err := g.IsAuthorized(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("unknown user reported authorized")
	}

	u := User{ID: 42, Username: "someone", FirstName: "Some"}
	if err := g.Authorize(ctx, u); err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	ok, err = g.IsAuthorized(ctx, 42)
	if err != nil || !ok {
		t.Fatalf("IsAuthorized after grant = %v, %v", ok, err)
	}

	// Re-authorizing the same user upserts instead of failing.
	u.FirstName = "Renamed"
	if err := g.Authorize(ctx, u); err != nil {
		t.Fatalf("re-Authorize: %v", err)
	}

	users, err := g.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].FirstName != "Renamed" {
		t.Fatalf("users = %+v", users)
	}
}

func TestRevoke(t *testing.T) {
	t.Parallel()
	g, _ := testGate(t, "pw")
	ctx := context.Background()

	if err := g.Authorize(ctx, User{ID: 7}); err != nil {
		t.Fatal(err)
	}
	removed, err := g.Revoke(ctx, 7)
	if err != nil || !removed {
		t.Fatalf("Revoke = %v, %v", removed, err)
	}
	ok, err := g.IsAuthorized(ctx, 7)
	if err != nil || ok {
		t.Fatalf("still authorized after revoke: %v, %v", ok, err)
	}
	removed, err = g.Revoke(ctx, 7)
	if err != nil || removed {
		t.Fatalf("double revoke = %v, %v", removed, err)
	}
}
