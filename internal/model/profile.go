package model

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paycycle/internal/calendar"
)

// DefaultProfileID is the profile that legacy single-cycle data and first-run
// setups land in.
const DefaultProfileID = "default-cycle"

// DefaultProfileName is the display name of DefaultProfileID.
const DefaultProfileName = "My Calendar"

// CycleConfig describes a recurring pay cycle.
type CycleConfig struct {
	Frequency CycleFrequency  `json:"frequency"`
	StartDate calendar.Date   `json:"startDate"`
	Income    decimal.Decimal `json:"income"`
}

// CycleProfile is a named pay-cycle calendar. A nil Config means the profile
// has not been set up yet.
type CycleProfile struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Color  string       `json:"color,omitempty"`
	Config *CycleConfig `json:"config"`
}

// Configured reports whether the profile has a usable cycle config.
func (p CycleProfile) Configured() bool {
	return p.Config != nil && !p.Config.StartDate.IsZero() && p.Config.Frequency != ""
}

// DefaultProfile returns an unconfigured default profile.
func DefaultProfile() CycleProfile {
	return CycleProfile{ID: DefaultProfileID, Name: DefaultProfileName, Color: "#3b82f6"}
}

// ProfileColors is the palette new profiles cycle through.
var ProfileColors = []string{"#3b82f6", "#10b981", "#f97316", "#8b5cf6", "#ec4899", "#f59e0b"}
