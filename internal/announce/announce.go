// Package announce turns a ticket number into the ordered list of spoken
// segments a playback device needs. Segments are abstract identifiers;
// resolving them to audio is the player's concern.
package announce

import (
	"errors"
	"strconv"
	"strings"
)

// Segment names one unit of a spoken announcement, e.g. "antrian",
// "b", "12", "ratus".
type Segment string

const (
	SegmentLeadIn  Segment = "antrian"
	SegmentHundred Segment = "ratus"
	SegmentCounter Segment = "counter"
	SegmentChime   Segment = "simple_notification"
)

var ErrInvalidFormat = errors.New("invalid ticket number format")

// Compile decomposes a ticket number such as "A012" into announcement
// segments following Indonesian numeral rules: values below 20 are
// atomic segments, larger values split into tens and ones, hundreds
// are spoken as "<n> ratus".
func Compile(number string) ([]Segment, error) {
	if len(number) < 2 {
		return nil, ErrInvalidFormat
	}
	letter := number[0]
	if letter < 'A' || letter > 'Z' {
		return nil, ErrInvalidFormat
	}
	suffix := number[1:]
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return nil, ErrInvalidFormat
		}
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return nil, ErrInvalidFormat
	}

	segments := []Segment{SegmentLeadIn, Segment(strings.ToLower(string(letter)))}

	if n == 0 {
		segments = append(segments, digit(0))
	} else {
		hundreds := n / 100
		if hundreds > 0 {
			segments = append(segments, digit(hundreds), SegmentHundred)
		}
		remainder := n % 100
		if remainder > 0 {
			if remainder < 20 {
				segments = append(segments, digit(remainder))
			} else {
				tens := (remainder / 10) * 10
				segments = append(segments, digit(tens))
				if ones := remainder % 10; ones > 0 {
					segments = append(segments, digit(ones))
				}
			}
		}
	}

	return append(segments, SegmentCounter), nil
}

// Notification is the short chime played when a ticket is taken.
func Notification() []Segment {
	return []Segment{SegmentChime}
}

func digit(n int) Segment {
	return Segment(strconv.Itoa(n))
}
