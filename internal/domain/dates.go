package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"time"
)

// DateKind tells which representation a DateInput carries
type DateKind int

const (
	DateAbsent DateKind = iota
	DateNull
	DateText
	DateInstant
	DateMillis
	DateUnsupported
)

// DateInput is a date as it arrived from a client or an extractor, before normalization.
// The zero value is an absent date.
type DateInput struct {
	kind   DateKind
	text   string
	at     time.Time
	millis float64
}

// DateFromString wraps a textual date. Blank text counts as null.
func DateFromString(s string) DateInput {
	if strings.TrimSpace(s) == "" {
		return NullDate()
	}
	return DateInput{kind: DateText, text: s}
}

// DateFromTime wraps an already resolved instant
func DateFromTime(t time.Time) DateInput {
	return DateInput{kind: DateInstant, at: t}
}

// DateFromMillis wraps a Unix timestamp in milliseconds
func DateFromMillis(ms float64) DateInput {
	return DateInput{kind: DateMillis, millis: ms}
}

// NullDate is an explicit null, which clears an optional date on update
func NullDate() DateInput {
	return DateInput{kind: DateNull}
}

// Kind returns the representation carried by d
func (d DateInput) Kind() DateKind {
	return d.kind
}

// Provided reports whether the field appeared in the payload at all, null included.
func (d DateInput) Provided() bool {
	return d.kind != DateAbsent
}

// HasValue reports whether the field carries something other than absent or null.
func (d DateInput) HasValue() bool {
	return d.kind != DateAbsent && d.kind != DateNull
}

// String returns the raw representation for error messages
func (d DateInput) String() string {
	switch d.kind {
	case DateText:
		return d.text
	case DateInstant:
		return d.at.Format(time.RFC3339)
	case DateNull:
		return "null"
	case DateAbsent:
		return ""
	default:
		return "unsupported date value"
	}
}

// UnmarshalJSON accepts strings, numbers and null. Any other JSON value is kept as
// an unsupported date so the caller can report it as a field error instead of
// failing the whole decode.
func (d *DateInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*d = NullDate()
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*d = DateInput{kind: DateUnsupported}
			return nil
		}
		*d = DateFromString(s)
	default:
		var n float64
		if err := json.Unmarshal(b, &n); err != nil {
			*d = DateInput{kind: DateUnsupported}
			return nil
		}
		*d = DateFromMillis(n)
	}
	return nil
}

// MarshalJSON renders the normalized instant, or null when it cannot be resolved
func (d DateInput) MarshalJSON() ([]byte, error) {
	t := NormalizeDate(d)
	if t == nil {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

var (
	isoDatePattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dayFirstDatePattern = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)
)

// fallbackLayouts are tried in order for anything that is not a bare calendar date.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2006/01/02",
	"2006.01.02",
}

// NormalizeDate resolves a date input into a UTC instant. It never fails:
// anything that cannot be resolved yields nil.
func NormalizeDate(d DateInput) *time.Time {
	switch d.kind {
	case DateText:
		return ParseDateString(d.text)
	case DateInstant:
		if d.at.IsZero() {
			return nil
		}
		t := d.at.UTC()
		return &t
	case DateMillis:
		if math.IsNaN(d.millis) || math.IsInf(d.millis, 0) {
			return nil
		}
		t := time.UnixMilli(int64(d.millis)).UTC()
		return &t
	default:
		return nil
	}
}

// ParseDateString parses YYYY-MM-DD and DD-MM-YYYY as midnight UTC and falls back
// to a set of common layouts for everything else.
func ParseDateString(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if isoDatePattern.MatchString(s) {
		return parseLayout("2006-01-02", s)
	}

	if m := dayFirstDatePattern.FindStringSubmatch(s); m != nil {
		return parseLayout("2006-01-02", m[3]+"-"+m[2]+"-"+m[1])
	}

	for _, layout := range fallbackLayouts {
		if t := parseLayout(layout, s); t != nil {
			return t
		}
	}
	return nil
}

func parseLayout(layout, value string) *time.Time {
	t, err := time.Parse(layout, value)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
