package post

import (
	"errors"
	"testing"
	"time"
)

func TestNextWeekday(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{
			name: "wednesday to thursday",
			from: time.Date(2025, time.June, 4, 9, 30, 0, 0, time.UTC),
			want: time.Date(2025, time.June, 5, 9, 30, 0, 0, time.UTC),
		},
		{
			name: "friday skips to monday",
			from: time.Date(2025, time.June, 6, 9, 30, 0, 0, time.UTC),
			want: time.Date(2025, time.June, 9, 9, 30, 0, 0, time.UTC),
		},
		{
			name: "saturday skips to monday",
			from: time.Date(2025, time.June, 7, 18, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.June, 9, 18, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday lands on monday",
			from: time.Date(2025, time.June, 8, 18, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.June, 9, 18, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := NextWeekday(tt.from)
			if !got.Equal(tt.want) {
				t.Fatalf("NextWeekday(%v) = %v, want %v", tt.from, got, tt.want)
			}
			if wd := got.Weekday(); wd == time.Saturday || wd == time.Sunday {
				t.Fatalf("NextWeekday landed on %v", wd)
			}
		})
	}
}

func TestNextWeekdayPreservesClock(t *testing.T) {
	t.Parallel()
	from := time.Date(2025, time.June, 6, 14, 45, 12, 0, time.UTC)
	got := NextWeekday(from)
	if got.Hour() != 14 || got.Minute() != 45 || got.Second() != 12 {
		t.Fatalf("clock not preserved: %v", got)
	}
}

func TestParseScheduleVariants(t *testing.T) {
	t.Parallel()
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{
			name: "rfc3339",
			raw:  "2025-06-05T09:30:00+02:00",
			want: time.Date(2025, time.June, 5, 9, 30, 0, 0, loc),
		},
		{
			name: "zoneless with seconds",
			raw:  "2025-06-05T09:30:00",
			want: time.Date(2025, time.June, 5, 9, 30, 0, 0, loc),
		},
		{
			name: "space separated",
			raw:  "2025-06-05 09:30:00",
			want: time.Date(2025, time.June, 5, 9, 30, 0, 0, loc),
		},
		{
			name: "minute precision",
			raw:  "2025-06-05 09:30",
			want: time.Date(2025, time.June, 5, 9, 30, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSchedule(tt.raw, loc)
			if err != nil {
				t.Fatalf("ParseSchedule(%q) error: %v", tt.raw, err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("ParseSchedule(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseScheduleCorrupt(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "2025-06-05", "not a time", "05/06/2025 09:30"} {
		_, err := ParseSchedule(raw, time.UTC)
		var corrupt *CorruptScheduleError
		if !errors.As(err, &corrupt) {
			t.Fatalf("ParseSchedule(%q): expected CorruptScheduleError, got %v", raw, err)
		}
		if corrupt.Raw != raw {
			t.Fatalf("Raw = %q, want %q", corrupt.Raw, raw)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		post    Post
		wantErr bool
	}{
		{name: "text only", post: Post{Content: "hello"}},
		{name: "photo only", post: Post{Photo: []byte{1, 2}}},
		{name: "both", post: Post{Content: "hello", Photo: []byte{1}}},
		{name: "neither", post: Post{}, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := tt.post.Validate()
			if tt.wantErr && !errors.Is(err, ErrEmptyPost) {
				t.Fatalf("expected ErrEmptyPost, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFormatScheduleRoundTrip(t *testing.T) {
	t.Parallel()
	in := time.Date(2025, time.June, 5, 9, 30, 0, 0, time.UTC)
	got, err := ParseSchedule(FormatSchedule(in), time.UTC)
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if !got.Equal(in) {
		t.Fatalf("round trip = %v, want %v", got, in)
	}
}
