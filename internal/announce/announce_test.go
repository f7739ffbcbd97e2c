package announce

import (
	"errors"
	"testing"
)

func TestCompile(t *testing.T) {
	cases := []struct {
		number string
		want   []Segment
	}{
		{"A000", []Segment{"antrian", "a", "0", "counter"}},
		{"A001", []Segment{"antrian", "a", "1", "counter"}},
		{"A017", []Segment{"antrian", "a", "17", "counter"}},
		{"A019", []Segment{"antrian", "a", "19", "counter"}},
		{"A020", []Segment{"antrian", "a", "20", "counter"}},
		{"A042", []Segment{"antrian", "a", "40", "2", "counter"}},
		{"B100", []Segment{"antrian", "b", "1", "ratus", "counter"}},
		{"B105", []Segment{"antrian", "b", "1", "ratus", "5", "counter"}},
		{"A120", []Segment{"antrian", "a", "1", "ratus", "20", "counter"}},
		{"C345", []Segment{"antrian", "c", "3", "ratus", "40", "5", "counter"}},
		{"Z215", []Segment{"antrian", "z", "2", "ratus", "15", "counter"}},
	}

	for _, tc := range cases {
		got, err := Compile(tc.number)
		if err != nil {
			t.Fatalf("Compile(%q) error: %v", tc.number, err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("Compile(%q) = %v, want %v", tc.number, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("Compile(%q) = %v, want %v", tc.number, got, tc.want)
			}
		}
	}
}

func TestCompileInvalid(t *testing.T) {
	cases := []string{"", "A", "1234", "a012", "A0x2", "AB12", "A-12", "007"}
	for _, number := range cases {
		if _, err := Compile(number); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("Compile(%q) error = %v, want ErrInvalidFormat", number, err)
		}
	}
}

func TestNotification(t *testing.T) {
	segments := Notification()
	if len(segments) != 1 || segments[0] != SegmentChime {
		t.Fatalf("unexpected notification segments: %v", segments)
	}
}
