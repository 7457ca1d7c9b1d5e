// Package model defines the domain types for pay cycles, expenses and budgets.
package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidSchema is returned by CategorySchema.Validate.
var ErrInvalidSchema = errors.New("invalid category schema")

// Category is one budget bucket.
type Category struct {
	ID    string `json:"id" toml:"id" mapstructure:"id"`
	Name  string `json:"name" toml:"name" mapstructure:"name"`
	Color string `json:"color,omitempty" toml:"color,omitempty" mapstructure:"color"`
	Icon  string `json:"icon,omitempty" toml:"icon,omitempty" mapstructure:"icon"`
}

// CategorySchema is the ordered set of categories a budget is split into.
// The category named by SavingsID never has expenses of its own; its amount
// is whatever income is left over.
type CategorySchema struct {
	Categories []Category
	SavingsID  string
}

// DefaultSavingsID is the savings category of the default schema.
const DefaultSavingsID = "savings"

// DefaultSchema returns the built-in category schema.
func DefaultSchema() CategorySchema {
	return CategorySchema{
		Categories: []Category{
			{ID: "housing", Name: "Housing & Utilities", Color: "#3b82f6", Icon: "house"},
			{ID: "transport", Name: "Transport", Color: "#8b5cf6", Icon: "car"},
			{ID: "food", Name: "Food", Color: "#10b981", Icon: "utensils"},
			{ID: "needs", Name: "Personal Needs", Color: "#f97316", Icon: "heart-pulse"},
			{ID: "wants", Name: "Leisure & Wants", Color: "#ec4899", Icon: "gift"},
			{ID: DefaultSavingsID, Name: "Savings & Investment", Color: "#f59e0b", Icon: "piggy-bank"},
		},
		SavingsID: DefaultSavingsID,
	}
}

// Validate checks that ids are present and unique and that the savings
// category exists.
func (s CategorySchema) Validate() error {
	if len(s.Categories) == 0 {
		return fmt.Errorf("%w: no categories", ErrInvalidSchema)
	}
	seen := make(map[string]bool, len(s.Categories))
	for i, c := range s.Categories {
		if c.ID == "" {
			return fmt.Errorf("%w: category %d has an empty id", ErrInvalidSchema, i)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate category id %q", ErrInvalidSchema, c.ID)
		}
		seen[c.ID] = true
	}
	if !seen[s.SavingsID] {
		return fmt.Errorf("%w: savings category %q is not one of %s", ErrInvalidSchema, s.SavingsID, strings.Join(s.IDs(), ", "))
	}
	return nil
}

// Lookup returns the category with the given id.
func (s CategorySchema) Lookup(id string) (Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Known reports whether id is a category of the schema.
func (s CategorySchema) Known(id string) bool {
	_, ok := s.Lookup(id)
	return ok
}

// Spendable returns every category except savings, in schema order.
func (s CategorySchema) Spendable() []Category {
	out := make([]Category, 0, len(s.Categories))
	for _, c := range s.Categories {
		if c.ID != s.SavingsID {
			out = append(out, c)
		}
	}
	return out
}

// IDs returns the category ids in schema order.
func (s CategorySchema) IDs() []string {
	out := make([]string, len(s.Categories))
	for i, c := range s.Categories {
		out[i] = c.ID
	}
	return out
}

// NewID returns a fresh random identifier.
func NewID() string {
	return uuid.NewString()
}
