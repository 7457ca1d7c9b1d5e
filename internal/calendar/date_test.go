package calendar

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParse_AcceptsKeyAndTimestamp(t *testing.T) {
	d, err := Parse("2024-03-05")
	if err != nil {
		t.Fatalf("Parse key: %v", err)
	}
	if d.Key() != "2024-03-05" {
		t.Fatalf("Key() = %q, want 2024-03-05", d.Key())
	}

	ts, err := Parse("2024-03-05T23:30:00.000Z")
	if err != nil {
		t.Fatalf("Parse timestamp: %v", err)
	}
	if !ts.Equal(d) {
		t.Fatalf("timestamp date = %s, want %s", ts, d)
	}

	if _, err := Parse("2024-3-5"); err == nil {
		t.Fatal("Parse accepted a non-padded key")
	}
}

func TestIsKey(t *testing.T) {
	cases := map[string]bool{
		"2024-01-09": true,
		"2024-1-9":   false,
		"2024-02-30": false,
		"":           false,
		"garbage!!!": false,
	}
	for in, want := range cases {
		if got := IsKey(in); got != want {
			t.Fatalf("IsKey(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestAddMonths_ClampsToMonthEnd(t *testing.T) {
	start := MustParse("2024-01-31")
	want := []string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30", "2024-05-31"}
	for i, w := range want {
		if got := start.AddMonths(i).Key(); got != w {
			t.Fatalf("AddMonths(%d) = %s, want %s", i, got, w)
		}
	}

	if got := start.AddMonths(1).Key(); got == "2024-03-02" {
		t.Fatalf("AddMonths(1) rolled over into March: %s", got)
	}

	if got := MustParse("2023-01-31").AddMonths(1).Key(); got != "2023-02-28" {
		t.Fatalf("non-leap clamp = %s, want 2023-02-28", got)
	}
	if got := MustParse("2024-03-31").AddMonths(-1).Key(); got != "2024-02-29" {
		t.Fatalf("backwards clamp = %s, want 2024-02-29", got)
	}
	if got := MustParse("2024-11-15").AddMonths(3).Key(); got != "2025-02-15" {
		t.Fatalf("year rollover = %s, want 2025-02-15", got)
	}
}

func TestAddYears_LeapDay(t *testing.T) {
	if got := MustParse("2024-02-29").AddYears(1).Key(); got != "2025-02-28" {
		t.Fatalf("AddYears(1) = %s, want 2025-02-28", got)
	}
	if got := MustParse("2024-02-29").AddYears(4).Key(); got != "2028-02-29" {
		t.Fatalf("AddYears(4) = %s, want 2028-02-29", got)
	}
}

func TestKeyOrderMatchesDateOrder(t *testing.T) {
	d := MustParse("2023-12-25")
	for i := 0; i < 400; i++ {
		next := d.AddDays(1)
		if !(d.Key() < next.Key()) {
			t.Fatalf("key order broken between %s and %s", d.Key(), next.Key())
		}
		d = next
	}
}

func TestFromTime_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	instant := time.Date(2024, 6, 1, 2, 0, 0, 0, time.UTC)
	if got := FromTime(instant, loc).Key(); got != "2024-05-31" {
		t.Fatalf("FromTime = %s, want 2024-05-31", got)
	}
	if got := Today(FixedClock{T: instant}, time.UTC).Key(); got != "2024-06-01" {
		t.Fatalf("Today = %s, want 2024-06-01", got)
	}
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		Start Date  `json:"start"`
		End   *Date `json:"end,omitempty"`
	}
	in := wrapper{Start: MustParse("2024-02-01")}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `{"start":"2024-02-01"}` {
		t.Fatalf("json = %s", b)
	}

	var out wrapper
	if err := json.Unmarshal([]byte(`{"start":"2024-02-01T00:00:00.000Z","end":"2024-05-01"}`), &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Start.Key() != "2024-02-01" || out.End == nil || out.End.Key() != "2024-05-01" {
		t.Fatalf("decoded = %+v", out)
	}
}

func TestRange(t *testing.T) {
	r := NewRange(MustParse("2024-01-01"), MustParse("2024-01-31"))
	if r.Days() != 31 {
		t.Fatalf("Days() = %d, want 31", r.Days())
	}
	if !r.Contains(MustParse("2024-01-31")) || r.Contains(MustParse("2024-02-01")) {
		t.Fatal("Contains is not inclusive of exactly [From, To]")
	}
	if !r.ContainsKey("2024-01-15") || r.ContainsKey("2023-12-31") {
		t.Fatal("ContainsKey mismatch")
	}
	empty := NewRange(MustParse("2024-02-01"), MustParse("2024-01-01"))
	if !empty.Empty() || empty.Days() != 0 {
		t.Fatal("reversed range should be empty")
	}
}

func TestDaysUntil_LongSpans(t *testing.T) {
	// 400 Gregorian years, well past the range of time.Duration.
	if got := New(1600, 1, 1).DaysUntil(New(2000, 1, 1)); got != 146097 {
		t.Fatalf("DaysUntil = %d, want 146097", got)
	}
	if got := New(2000, 1, 1).DaysUntil(New(1600, 1, 1)); got != -146097 {
		t.Fatalf("DaysUntil backwards = %d, want -146097", got)
	}
	if got := MustParse("2024-02-28").DaysUntil(MustParse("2024-03-01")); got != 2 {
		t.Fatalf("DaysUntil across leap day = %d, want 2", got)
	}
}
