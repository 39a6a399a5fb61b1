package pagination

import (
	"encoding/base64"
	"testing"
	"time"
)

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{-1: DefaultLimit, 0: DefaultLimit, 5: 5, MaxLimit + 1: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
	if got := LimitWithBuffer(5); got != 6 {
		t.Fatalf("LimitWithBuffer(5) = %d, want 6", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 30, 0, 123, time.UTC)
	encoded := EncodeCursor(Cursor{CreatedAt: created, ID: "NGO-1740821400000-04211"})

	decoded, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !decoded.CreatedAt.Equal(created) || decoded.ID != "NGO-1740821400000-04211" {
		t.Fatalf("unexpected cursor %+v", decoded)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if c, err := ParseCursor("  "); err != nil || c != nil {
		t.Fatalf("blank cursor should be nil, got %+v err=%v", c, err)
	}
	raw := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	for _, value := range []string{"%%%", raw("no-separator"), raw("yesterday|NGO-1"), raw(time.Now().Format(time.RFC3339Nano)+"| ")} {
		if _, err := ParseCursor(value); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
}
