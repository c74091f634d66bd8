package post

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"postbot/pkg/logx"
)

// Store is the durable post repository. Each method is a single SQL
// statement, so individual operations are atomic with respect to concurrent
// callers; no atomicity is promised across a sequence of calls.
type Store struct {
	db  *sql.DB
	loc *time.Location
	log logx.Logger
}

func NewStore(db *sql.DB, loc *time.Location, log logx.Logger) *Store {
	if loc == nil {
		loc = time.UTC
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Store{db: db, loc: loc, log: log}
}

// Location returns the zone the store parses schedules in.
func (s *Store) Location() *time.Location { return s.loc }

// Create inserts a new post and returns its id. The empty-post invariant and
// a parseable scheduled instant are both enforced here, at the write boundary.
func (s *Store) Create(ctx context.Context, p *Post) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if _, err := ParseSchedule(p.ScheduledAt, s.loc); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO posts(content, photo_data, photo_filename, scheduled_at, recurring, posted)
		 VALUES(?,?,?,?,?,0)`,
		p.Content, nullBytes(p.Photo), nullStr(p.PhotoFilename), p.ScheduledAt, boolInt(p.Recurring),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	s.log.Info("post created", logx.Int64("id", id), logx.String("scheduled_at", p.ScheduledAt), logx.Bool("recurring", p.Recurring))
	return id, nil
}

// List returns posts ordered by scheduled instant ascending. With
// includePosted=false only pending posts are returned.
func (s *Store) List(ctx context.Context, includePosted bool) ([]Post, error) {
	q := `SELECT id, content, photo_data, photo_filename, scheduled_at, recurring, posted, created_at
	      FROM posts WHERE posted = 0 ORDER BY scheduled_at ASC`
	if includePosted {
		q = `SELECT id, content, photo_data, photo_filename, scheduled_at, recurring, posted, created_at
		     FROM posts ORDER BY scheduled_at ASC`
	}
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows, s.loc)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Get fetches one post by id.
func (s *Store) Get(ctx context.Context, id int64) (Post, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, content, photo_data, photo_filename, scheduled_at, recurring, posted, created_at
		 FROM posts WHERE id = ?`, id)
	p, err := scanPost(row, s.loc)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	return p, err
}

// Fields describes a partial update. Nil pointers leave the column untouched.
// Photo: a non-nil pointer to a nil/empty slice clears the photo (and its
// filename should be cleared alongside by the caller).
type Fields struct {
	Content       *string
	Photo         *[]byte
	PhotoFilename *string
	ScheduledAt   *string
	Recurring     *bool
	Posted        *bool
}

// Update applies a partial update. Returns ErrNotFound when the id is gone
// and rejects an unparsable scheduled instant.
func (s *Store) Update(ctx context.Context, id int64, f Fields) error {
	var (
		sets []string
		args []any
	)
	if f.Content != nil {
		sets, args = append(sets, "content = ?"), append(args, *f.Content)
	}
	if f.Photo != nil {
		sets, args = append(sets, "photo_data = ?"), append(args, nullBytes(*f.Photo))
	}
	if f.PhotoFilename != nil {
		sets, args = append(sets, "photo_filename = ?"), append(args, nullStr(*f.PhotoFilename))
	}
	if f.ScheduledAt != nil {
		if _, err := ParseSchedule(*f.ScheduledAt, s.loc); err != nil {
			return err
		}
		sets, args = append(sets, "scheduled_at = ?"), append(args, *f.ScheduledAt)
	}
	if f.Recurring != nil {
		sets, args = append(sets, "recurring = ?"), append(args, boolInt(*f.Recurring))
	}
	if f.Posted != nil {
		sets, args = append(sets, "posted = ?"), append(args, boolInt(*f.Posted))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, "UPDATE posts SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a post. Posts are only ever deleted explicitly.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	s.log.Info("post deleted", logx.Int64("id", id))
	return nil
}

// MarkPosted flags a post as published (terminal for one-shot posts).
func (s *Store) MarkPosted(ctx context.Context, id int64) error {
	posted := true
	return s.Update(ctx, id, Fields{Posted: &posted})
}

// Repair normalizes rows whose scheduled_at does not parse: date-only rows
// get 12:00, everything else falls back to now+1h. Returns the number of
// rows rewritten. Safe to run repeatedly.
func (s *Store) Repair(ctx context.Context, now time.Time) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, scheduled_at FROM posts`)
	if err != nil {
		return 0, err
	}
	type bad struct {
		id  int64
		raw string
	}
	var broken []bad
	for rows.Next() {
		var b bad
		if err := rows.Scan(&b.id, &b.raw); err != nil {
			rows.Close()
			return 0, err
		}
		if _, err := ParseSchedule(b.raw, s.loc); err != nil {
			broken = append(broken, b)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	repaired := 0
	for _, b := range broken {
		fixed := now.Add(time.Hour)
		if d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(b.raw), s.loc); err == nil {
			fixed = time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, s.loc)
		}
		at := FormatSchedule(fixed)
		if err := s.Update(ctx, b.id, Fields{ScheduledAt: &at}); err != nil {
			s.log.Warn("repair failed", logx.Int64("id", b.id), logx.Err(err))
			continue
		}
		s.log.Info("repaired scheduled time", logx.Int64("id", b.id), logx.String("was", b.raw), logx.String("now", at))
		repaired++
	}
	return repaired, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(r rowScanner, loc *time.Location) (Post, error) {
	var (
		p         Post
		photo     []byte
		filename  sql.NullString
		recurring int
		posted    int
		createdAt string
	)
	if err := r.Scan(&p.ID, &p.Content, &photo, &filename, &p.ScheduledAt, &recurring, &posted, &createdAt); err != nil {
		return Post{}, err
	}
	p.Photo = photo
	p.PhotoFilename = filename.String
	p.Recurring = recurring != 0
	p.Posted = posted != 0
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		p.CreatedAt = t.In(loc)
	}
	return p, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func nullBytes(v []byte) any {
	if len(v) == 0 {
		return nil
	}
	return v
}
