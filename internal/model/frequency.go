package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/paycycle/internal/recurrence"
)

// ErrInvalidFrequency is returned when a frequency name is not recognized.
var ErrInvalidFrequency = errors.New("invalid frequency")

// CycleFrequency is how often a pay cycle repeats.
type CycleFrequency string

const (
	CycleWeekly   CycleFrequency = "weekly"
	CycleBiweekly CycleFrequency = "biweekly"
	CycleMonthly  CycleFrequency = "monthly"
	CycleYearly   CycleFrequency = "yearly"
)

// CycleFrequencies lists the cycle frequencies in display order.
var CycleFrequencies = []CycleFrequency{CycleWeekly, CycleBiweekly, CycleMonthly, CycleYearly}

// ExpenseFrequency is how often a planned expense repeats.
type ExpenseFrequency string

const (
	ExpenseOnce     ExpenseFrequency = "once"
	ExpenseWeekly   ExpenseFrequency = "weekly"
	ExpenseBiweekly ExpenseFrequency = "biweekly"
	ExpenseMonthly  ExpenseFrequency = "monthly"
	ExpenseYearly   ExpenseFrequency = "yearly"
)

// ExpenseFrequencies lists the planned-expense frequencies in display order.
var ExpenseFrequencies = []ExpenseFrequency{ExpenseOnce, ExpenseWeekly, ExpenseBiweekly, ExpenseMonthly, ExpenseYearly}

// frequencyAliases maps the names written by older data files.
var frequencyAliases = map[string]string{
	"semanal":     "weekly",
	"quincenal":   "biweekly",
	"mensual":     "monthly",
	"anual":       "yearly",
	"una-vez":     "once",
	"fortnightly": "biweekly",
	"annual":      "yearly",
}

func normalizeFrequency(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if alias, ok := frequencyAliases[s]; ok {
		return alias
	}
	return s
}

// ParseCycleFrequency parses a cycle frequency case-insensitively.
func ParseCycleFrequency(s string) (CycleFrequency, error) {
	f := CycleFrequency(normalizeFrequency(s))
	for _, known := range CycleFrequencies {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: cycle frequency %q", ErrInvalidFrequency, s)
}

// ParseExpenseFrequency parses a planned-expense frequency case-insensitively.
func ParseExpenseFrequency(s string) (ExpenseFrequency, error) {
	f := ExpenseFrequency(normalizeFrequency(s))
	for _, known := range ExpenseFrequencies {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: expense frequency %q", ErrInvalidFrequency, s)
}

// Recurrence maps f onto the stepping unit.
func (f CycleFrequency) Recurrence() recurrence.Frequency {
	return recurrence.Frequency(f)
}

// Recurrence maps f onto the stepping unit.
func (f ExpenseFrequency) Recurrence() recurrence.Frequency {
	return recurrence.Frequency(f)
}

// UnmarshalText accepts legacy and mixed-case names. Empty input leaves the
// zero value.
func (f *CycleFrequency) UnmarshalText(b []byte) error {
	if strings.TrimSpace(string(b)) == "" {
		*f = ""
		return nil
	}
	parsed, err := ParseCycleFrequency(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// UnmarshalText accepts legacy and mixed-case names.
func (f *ExpenseFrequency) UnmarshalText(b []byte) error {
	parsed, err := ParseExpenseFrequency(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
