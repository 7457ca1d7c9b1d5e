package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/theirongolddev/paycycle/internal/model"
)

var (
	ErrInvalidExpense       = errors.New("invalid expense")
	ErrInvalidConfig        = errors.New("invalid cycle config")
	ErrUnknownCategory      = errors.New("unknown category")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrNoActiveProfile      = errors.New("no active profile")
	ErrProfileNotConfigured = errors.New("profile has no pay cycle configured")
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrBudgetNotFound       = errors.New("budget not found")
	ErrBudgetExists         = errors.New("budget already exists")
	ErrNoCycle              = errors.New("cycle has not started")
)

// maxSuggestDistance bounds how different a suggestion may be from the input.
const maxSuggestDistance = 3

// suggest returns the schema category id closest to input, comparing against
// ids and names. ok is false when nothing is close enough.
func suggest(schema model.CategorySchema, input string) (string, bool) {
	in := strings.ToLower(strings.TrimSpace(input))
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range schema.Spendable() {
		for _, candidate := range []string{c.ID, strings.ToLower(c.Name)} {
			if d := levenshtein.ComputeDistance(in, candidate); d < bestDist {
				best, bestDist = c.ID, d
			}
		}
	}
	return best, best != ""
}

// resolveCategory validates a category id for a new expense. Savings is
// derived and never takes expenses. A case-insensitive id or exact name
// match is accepted.
func resolveCategory(schema model.CategorySchema, input string) (string, error) {
	in := strings.TrimSpace(input)
	for _, c := range schema.Spendable() {
		if strings.EqualFold(c.ID, in) || strings.EqualFold(c.Name, in) {
			return c.ID, nil
		}
	}
	if strings.EqualFold(in, schema.SavingsID) {
		return "", fmt.Errorf("%w: %q is derived from income and cannot hold expenses", ErrUnknownCategory, in)
	}
	if s, ok := suggest(schema, in); ok {
		return "", fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownCategory, in, s)
	}
	return "", fmt.Errorf("%w: %q (known: %s)", ErrUnknownCategory, in, strings.Join(spendableIDs(schema), ", "))
}

func spendableIDs(schema model.CategorySchema) []string {
	var ids []string
	for _, c := range schema.Spendable() {
		ids = append(ids, c.ID)
	}
	return ids
}
