package state

import (
	"testing"

	"github.com/google/uuid"
)

func TestParseFilter(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantLen int
		wantErr bool
	}{
		{name: "blank", raw: "", wantLen: 0},
		{name: "whitespace", raw: "   ", wantLen: 0},
		{name: "single", raw: "11111111-1111-1111-1111-111111111111", wantLen: 1},
		{name: "list with spaces", raw: "11111111-1111-1111-1111-111111111111, 22222222-2222-2222-2222-222222222222", wantLen: 2},
		{name: "trailing comma", raw: "11111111-1111-1111-1111-111111111111,", wantLen: 1},
		{name: "duplicate ids collapse", raw: "11111111-1111-1111-1111-111111111111,11111111-1111-1111-1111-111111111111", wantLen: 1},
		{name: "garbage", raw: "not-a-uuid", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := ParseFilter(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(f) != tc.wantLen {
				t.Fatalf("got %d ids, want %d", len(f), tc.wantLen)
			}
		})
	}
}

func TestFilterMatch(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	other := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	var nilFilter Filter
	if !nilFilter.Match(id) {
		t.Fatalf("nil filter must match everything")
	}
	if !(Filter{}).Match(id) {
		t.Fatalf("empty filter must match everything")
	}

	f := NewFilter(id)
	if !f.Match(id) {
		t.Fatalf("member id must match")
	}
	if f.Match(other) {
		t.Fatalf("non-member id must not match")
	}
}
