package schedule

import "testing"

func TestParseForms(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want string // Compact form; "" means nil expected
	}{
		{
			name: "object_form",
			in:   map[string]interface{}{"days": "MWF", "time": "10:00-11:15"},
			want: "MWF 10:00-11:15",
		},
		{
			name: "json_string_form",
			in:   `{"days":"TR","time":"13:00-14:30"}`,
			want: "TR 13:00-14:30",
		},
		{
			name: "compact_form",
			in:   "MW 09:05-09:55",
			want: "MW 09:05-09:55",
		},
		{
			name: "weekend_letters",
			in:   "SU 10:00-12:00",
			want: "SU 10:00-12:00",
		},
		{
			name: "start_equals_end",
			in:   "M 10:00-10:00",
			want: "",
		},
		{
			name: "start_after_end",
			in:   "M 11:00-10:00",
			want: "",
		},
		{
			name: "unknown_day_letter",
			in:   "XZ 10:00-11:00",
			want: "",
		},
		{
			name: "garbage_string",
			in:   "see registrar",
			want: "",
		},
		{
			name: "malformed_json",
			in:   `{"days":"MWF"`,
			want: "",
		},
		{
			name: "nil_input",
			in:   nil,
			want: "",
		},
		{
			name: "numeric_input",
			in:   42,
			want: "",
		},
		{
			name: "hour_out_of_range",
			in:   "M 25:00-26:00",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.in)
			if tc.want == "" {
				if got != nil {
					t.Fatalf("Parse(%v)=%v, want nil", tc.in, got.Compact())
				}
				return
			}
			if got == nil {
				t.Fatalf("Parse(%v)=nil, want %q", tc.in, tc.want)
			}
			if got.Compact() != tc.want {
				t.Fatalf("Parse(%v)=%q, want %q", tc.in, got.Compact(), tc.want)
			}
		})
	}
}

func TestParseIdempotentOnCompact(t *testing.T) {
	slot := Parse("MWF 10:00-11:15")
	if slot == nil {
		t.Fatal("parse failed")
	}
	again := Parse(slot.Compact())
	if again == nil || *again != *slot {
		t.Fatalf("re-parse of %q gave %+v, want %+v", slot.Compact(), again, slot)
	}
}

func TestParseRaw(t *testing.T) {
	cases := []struct {
		name      string
		raw       string
		wantCount int
	}{
		{name: "single_object", raw: `{"days":"MWF","time":"10:00-11:15"}`, wantCount: 1},
		{name: "array_of_objects", raw: `[{"days":"M","time":"10:00-11:00"},{"days":"W","time":"14:00-15:00"}]`, wantCount: 2},
		{name: "array_mixed_forms", raw: `["T 09:00-10:00",{"days":"R","time":"09:00-10:00"}]`, wantCount: 2},
		{name: "quoted_compact_string", raw: `"MWF 10:00-11:15"`, wantCount: 1},
		{name: "array_with_garbage", raw: `["not a slot","F 08:00-09:00"]`, wantCount: 1},
		{name: "unparseable", raw: `12345`, wantCount: 0},
		{name: "empty", raw: ``, wantCount: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseRaw([]byte(tc.raw))
			if len(got) != tc.wantCount {
				t.Fatalf("ParseRaw(%q) gave %d slots, want %d", tc.raw, len(got), tc.wantCount)
			}
		})
	}
}

func TestConflicts(t *testing.T) {
	a := Parse("MWF 10:00-11:15")
	b := Parse("MR 10:30-11:30")
	c := Parse("TR 13:00-14:00")

	cases := []struct {
		name string
		x, y *TimeSlot
		want bool
	}{
		{name: "monday_overlap", x: a, y: b, want: true},
		{name: "disjoint_days", x: a, y: c, want: false},
		{name: "shared_day_disjoint_times", x: b, y: c, want: false},
		{name: "nil_left", x: nil, y: a, want: false},
		{name: "nil_right", x: a, y: nil, want: false},
		{name: "both_nil", x: nil, y: nil, want: false},
		{name: "touching_intervals_half_open", x: Parse("M 09:00-10:00"), y: Parse("M 10:00-11:00"), want: false},
		{name: "contained_interval", x: Parse("M 09:00-12:00"), y: Parse("M 10:00-10:30"), want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Conflicts(tc.x, tc.y); got != tc.want {
				t.Fatalf("Conflicts=%v, want %v", got, tc.want)
			}
			if got := Conflicts(tc.y, tc.x); got != tc.want {
				t.Fatalf("Conflicts not symmetric: reversed=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestConflictsAny(t *testing.T) {
	lectureAndLab := ParseRaw([]byte(`["M 10:00-11:00","W 14:00-16:00"]`))
	seminar := ParseRaw([]byte(`"W 15:00-17:00"`))
	evening := ParseRaw([]byte(`"W 18:00-20:00"`))

	if !ConflictsAny(lectureAndLab, seminar) {
		t.Fatal("expected lab/seminar conflict on Wednesday")
	}
	if ConflictsAny(lectureAndLab, evening) {
		t.Fatal("expected no conflict with evening section")
	}
	if ConflictsAny(nil, seminar) {
		t.Fatal("nil slot list must never conflict")
	}
}
