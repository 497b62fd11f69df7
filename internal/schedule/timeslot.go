// Package schedule normalizes heterogeneous course meeting-time
// encodings into one canonical form and detects pairwise conflicts.
// All downstream code consumes only the canonical TimeSlot.
package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Day is a day of week, Monday first.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayLetters = map[byte]Day{
	'M': Monday,
	'T': Tuesday,
	'W': Wednesday,
	'R': Thursday,
	'F': Friday,
	'S': Saturday,
	'U': Sunday,
}

var letterByDay = [...]byte{'M', 'T', 'W', 'R', 'F', 'S', 'U'}

// TimeSlot is the canonical meeting pattern: a day set plus a start
// and end expressed in minutes since midnight. StartMin < EndMin.
type TimeSlot struct {
	Days     uint8 // bitmask, bit 0 = Monday
	StartMin int
	EndMin   int
}

// HasDay reports whether the slot meets on the given day.
func (t *TimeSlot) HasDay(d Day) bool {
	return t != nil && t.Days&(1<<uint(d)) != 0
}

// Compact renders the slot back into the compact string form,
// e.g. "MWF 10:00-11:15". Parsing the result yields an equal slot.
func (t *TimeSlot) Compact() string {
	if t == nil {
		return ""
	}
	var days strings.Builder
	for d := Monday; d <= Sunday; d++ {
		if t.HasDay(d) {
			days.WriteByte(letterByDay[d])
		}
	}
	return fmt.Sprintf("%s %02d:%02d-%02d:%02d",
		days.String(),
		t.StartMin/60, t.StartMin%60,
		t.EndMin/60, t.EndMin%60)
}

// rawSlot is the canonical object encoding {days, time}.
type rawSlot struct {
	Days string `json:"days"`
	Time string `json:"time"`
}

// Parse normalizes one raw time-slot encoding. Accepted forms:
//
//   - a map with "days" and "time" keys ({"days":"MWF","time":"10:00-11:15"})
//   - a JSON-encoded string of the same object
//   - the compact string "MWF 10:00-11:15" (day letters M,T,W,R,F,S,U)
//
// Anything else yields nil. Parse never errors: an unparseable slot
// means "no declared conflict potential", not a rejected course.
func Parse(v interface{}) *TimeSlot {
	switch val := v.(type) {
	case map[string]interface{}:
		days, _ := val["days"].(string)
		timeRange, _ := val["time"].(string)
		return fromParts(days, timeRange)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		if strings.HasPrefix(s, "{") {
			var raw rawSlot
			if err := json.Unmarshal([]byte(s), &raw); err != nil {
				return nil
			}
			return fromParts(raw.Days, raw.Time)
		}
		fields := strings.Fields(s)
		if len(fields) != 2 {
			return nil
		}
		return fromParts(fields[0], fields[1])
	default:
		return nil
	}
}

// ParseRaw normalizes a course's stored schedule JSON, which may be a
// single encoding or an array of encodings. Unparseable entries are
// dropped; a fully unparseable value yields an empty slice.
func ParseRaw(raw []byte) []*TimeSlot {
	if len(raw) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		// Not JSON at all; treat the bytes as a compact string.
		if slot := Parse(string(raw)); slot != nil {
			return []*TimeSlot{slot}
		}
		return nil
	}
	if arr, ok := v.([]interface{}); ok {
		var out []*TimeSlot
		for _, item := range arr {
			if slot := Parse(item); slot != nil {
				out = append(out, slot)
			}
		}
		return out
	}
	if slot := Parse(v); slot != nil {
		return []*TimeSlot{slot}
	}
	return nil
}

func fromParts(days, timeRange string) *TimeSlot {
	var mask uint8
	for i := 0; i < len(days); i++ {
		d, ok := dayLetters[days[i]]
		if !ok {
			return nil
		}
		mask |= 1 << uint(d)
	}
	if mask == 0 {
		return nil
	}
	start, end, ok := parseTimeRange(timeRange)
	if !ok || start >= end {
		return nil
	}
	return &TimeSlot{Days: mask, StartMin: start, EndMin: end}
}

func parseTimeRange(s string) (start, end int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, ok = parseClock(parts[0])
	if !ok {
		return 0, 0, false
	}
	end, ok = parseClock(parts[1])
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

func parseClock(s string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	var h, m int
	if _, err := fmt.Sscanf(parts[0], "%d", &h); err != nil {
		return 0, false
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
