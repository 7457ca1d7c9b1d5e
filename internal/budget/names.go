package budget

import (
	"fmt"

	"github.com/theirongolddev/paycycle/internal/calendar"
)

// CycleTag identifies the pay cycle of profileID starting on start.
func CycleTag(profileID string, start calendar.Date) string {
	return profileID + "@" + start.Key()
}

// AutomaticName is the name given to records created when a cycle ends.
func AutomaticName(profileName string, start calendar.Date) string {
	return fmt.Sprintf("Automatic %s (%s)", profileName, start.Key())
}

// PartialName is the name given to records force-saved from a running cycle.
func PartialName(profileName string, start calendar.Date) string {
	return fmt.Sprintf("Partial %s (%s)", profileName, start.Key())
}

// LiveName is the name of the unsaved budget of the running cycle.
func LiveName(profileName string, start calendar.Date) string {
	return fmt.Sprintf("Current cycle %s (%s)", profileName, start.Key())
}
