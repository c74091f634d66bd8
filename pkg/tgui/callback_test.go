package tgui

import "testing"

func TestDataSplitRoundTrip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		ns, action, payload string
	}{
		{"cal", "nav", "eyJ5IjoyMDI1fQ"},
		{"cal", "cancel", ""},
		{"post", "del", "payload:with:colons"},
	}
	for _, tt := range tests {
		data := Data(tt.ns, tt.action, tt.payload)
		ns, action, payload := Split(data)
		if ns != tt.ns || action != tt.action || payload != tt.payload {
			t.Fatalf("Split(%q) = %q/%q/%q", data, ns, action, payload)
		}
	}
}

func TestSplitPartial(t *testing.T) {
	t.Parallel()
	if ns, action, payload := Split("only"); ns != "only" || action != "" || payload != "" {
		t.Fatalf("Split = %q/%q/%q", ns, action, payload)
	}
	if ns, action, payload := Split(""); ns != "" || action != "" || payload != "" {
		t.Fatalf("Split = %q/%q/%q", ns, action, payload)
	}
}

func TestPackUnpackJSON(t *testing.T) {
	t.Parallel()
	type payload struct {
		Y int `json:"y"`
		M int `json:"m"`
	}
	in := payload{Y: 2025, M: 12}
	packed, err := PackJSON(in)
	if err != nil {
		t.Fatalf("PackJSON: %v", err)
	}
	var out payload
	if err := UnpackJSON(packed, &out); err != nil {
		t.Fatalf("UnpackJSON: %v", err)
	}
	if out != in {
		t.Fatalf("round trip = %+v, want %+v", out, in)
	}

	if err := UnpackJSON("!!", &out); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestTruncRunes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 4, "hell…"},
		{"héllo", 3, "hél…"},
		{"x", 0, ""},
	}
	for _, tt := range tests {
		if got := TruncRunes(tt.in, tt.n); got != tt.want {
			t.Fatalf("TruncRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
