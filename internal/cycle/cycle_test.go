package cycle

import (
	"errors"
	"testing"

	"github.com/theirongolddev/paycycle/internal/calendar"
	"github.com/theirongolddev/paycycle/internal/recurrence"
)

func mustDate(t *testing.T, s string) calendar.Date {
	t.Helper()
	d, err := calendar.Parse(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestLocate_Monthly(t *testing.T) {
	anchor := mustDate(t, "2024-01-31")
	p, ok, err := Locate(anchor, recurrence.Monthly, mustDate(t, "2024-03-15"))
	if err != nil || !ok {
		t.Fatalf("Locate: ok=%v err=%v", ok, err)
	}
	if p.Start.Key() != "2024-02-29" || p.End.Key() != "2024-03-30" {
		t.Fatalf("period = %s, want 2024-02-29..2024-03-30", p)
	}
	if p.Index != 1 {
		t.Fatalf("Index = %d, want 1", p.Index)
	}
}

func TestLocate_WeeklyBoundaries(t *testing.T) {
	anchor := mustDate(t, "2024-01-01")

	p, ok, err := Locate(anchor, recurrence.Weekly, mustDate(t, "2024-01-08"))
	if err != nil || !ok {
		t.Fatalf("Locate: ok=%v err=%v", ok, err)
	}
	if p.Start.Key() != "2024-01-08" || p.End.Key() != "2024-01-14" {
		t.Fatalf("period = %s, want 2024-01-08..2024-01-14", p)
	}

	p, _, _ = Locate(anchor, recurrence.Weekly, mustDate(t, "2024-01-07"))
	if p.Start.Key() != "2024-01-01" || p.End.Key() != "2024-01-07" {
		t.Fatalf("period = %s, want 2024-01-01..2024-01-07", p)
	}
}

func TestLocate_AnchorAfterRef(t *testing.T) {
	_, ok, err := Locate(mustDate(t, "2024-06-01"), recurrence.Monthly, mustDate(t, "2024-05-31"))
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if ok {
		t.Fatal("Locate reported a cycle before the anchor")
	}
}

func TestLocate_RejectsOnce(t *testing.T) {
	_, _, err := Locate(mustDate(t, "2024-01-01"), recurrence.Once, mustDate(t, "2024-02-01"))
	if !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("err = %v, want ErrInvalidFrequency", err)
	}
}

func TestLocate_CoverageAndContiguity(t *testing.T) {
	anchors := []string{"2023-01-31", "2023-02-28", "2023-03-15", "2024-02-29"}
	freqs := []recurrence.Frequency{recurrence.Weekly, recurrence.Biweekly, recurrence.Monthly, recurrence.Yearly}

	for _, a := range anchors {
		anchor := mustDate(t, a)
		for _, f := range freqs {
			var prev Period
			ref := anchor
			for i := 0; i < 900; i++ {
				p, ok, err := Locate(anchor, f, ref)
				if err != nil || !ok {
					t.Fatalf("%s %s at %s: ok=%v err=%v", a, f, ref, ok, err)
				}
				if !p.Contains(ref) {
					t.Fatalf("%s %s: %s does not contain %s", a, f, p, ref)
				}
				if !prev.Start.IsZero() && !p.Start.Equal(prev.Start) {
					if !p.Start.Equal(prev.End.AddDays(1)) {
						t.Fatalf("%s %s: gap or overlap between %s and %s", a, f, prev, p)
					}
					if p.Index != prev.Index+1 {
						t.Fatalf("%s %s: index jumped from %d to %d", a, f, prev.Index, p.Index)
					}
				}
				prev = p
				ref = ref.AddDays(1)
			}
		}
	}
}

func TestLocate_LongHistory(t *testing.T) {
	anchor := mustDate(t, "1990-05-31")
	p, ok, err := Locate(anchor, recurrence.Monthly, mustDate(t, "2024-06-10"))
	if err != nil || !ok {
		t.Fatalf("Locate: ok=%v err=%v", ok, err)
	}
	if p.Start.Key() != "2024-05-31" || p.End.Key() != "2024-06-29" {
		t.Fatalf("period = %s, want 2024-05-31..2024-06-29", p)
	}
}

func TestNextPrev(t *testing.T) {
	anchor := mustDate(t, "2024-01-15")
	p, err := Nth(anchor, recurrence.Monthly, 2)
	if err != nil {
		t.Fatalf("Nth: %v", err)
	}
	if p.Start.Key() != "2024-03-15" {
		t.Fatalf("Nth(2) = %s", p)
	}
	if next := p.Next(anchor, recurrence.Monthly); next.Start.Key() != "2024-04-15" {
		t.Fatalf("Next = %s", next)
	}
	first, _ := Nth(anchor, recurrence.Monthly, 0)
	if _, ok := first.Prev(anchor, recurrence.Monthly); ok {
		t.Fatal("first period has a predecessor")
	}
}

func TestLastCompleted(t *testing.T) {
	anchor := mustDate(t, "2024-01-01")

	// Mid-cycle: the previous cycle is the last completed one.
	p, ok, err := LastCompleted(anchor, recurrence.Monthly, mustDate(t, "2024-03-10"))
	if err != nil || !ok {
		t.Fatalf("LastCompleted: ok=%v err=%v", ok, err)
	}
	if p.Start.Key() != "2024-02-01" || p.End.Key() != "2024-02-29" {
		t.Fatalf("period = %s, want February", p)
	}

	// Last day of a cycle counts as completed.
	p, ok, _ = LastCompleted(anchor, recurrence.Monthly, mustDate(t, "2024-03-31"))
	if !ok || p.Start.Key() != "2024-03-01" {
		t.Fatalf("period = %s ok=%v, want March", p, ok)
	}

	// Inside the first cycle there is nothing completed yet.
	if _, ok, _ := LastCompleted(anchor, recurrence.Monthly, mustDate(t, "2024-01-20")); ok {
		t.Fatal("LastCompleted reported a cycle inside the first period")
	}
}

func TestRemaining(t *testing.T) {
	p, _ := Nth(mustDate(t, "2024-01-01"), recurrence.Weekly, 0)
	if got := p.Remaining(mustDate(t, "2024-01-05")); got != 2 {
		t.Fatalf("Remaining = %d, want 2", got)
	}
	if got := p.Remaining(mustDate(t, "2024-02-01")); got != 0 {
		t.Fatalf("Remaining after end = %d, want 0", got)
	}
}

func TestLocate_AncientAnchor(t *testing.T) {
	anchor := mustDate(t, "1700-01-04")
	ref := mustDate(t, "2026-10-17")
	for _, freq := range []recurrence.Frequency{recurrence.Weekly, recurrence.Biweekly} {
		p, ok, err := Locate(anchor, freq, ref)
		if err != nil || !ok {
			t.Fatalf("%s: Locate: ok=%v err=%v", freq, ok, err)
		}
		if !p.Contains(ref) {
			t.Fatalf("%s: period %s does not contain %s", freq, p, ref)
		}
		if got := recurrence.Step(anchor, freq, p.Index); !got.Equal(p.Start) {
			t.Fatalf("%s: Step(anchor, %d) = %s, want %s", freq, p.Index, got, p.Start)
		}
	}
}
