package budget

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paycycle/internal/calendar"
	"github.com/theirongolddev/paycycle/internal/recurrence"
)

var (
	// ErrNoContribution is returned when a goal cannot be reached because the
	// periodic contribution is not positive.
	ErrNoContribution = errors.New("contribution must be positive")
	// ErrGoalTooFar is returned when reaching a goal takes more contributions
	// than a schedule can be expanded to.
	ErrGoalTooFar = errors.New("goal needs too many contributions")
)

// GoalPlan is how a savings goal is reached by regular contributions.
type GoalPlan struct {
	Remaining     decimal.Decimal
	Contributions int
	// Date is the day of the last contribution. Zero when already reached.
	Date    calendar.Date
	Reached bool
}

// TimeToGoal plans reaching goal from current by adding contribution every
// freq, starting from today. The n-th contribution falls on
// recurrence.Step(today, freq, n).
func TimeToGoal(goal, current, contribution decimal.Decimal, freq recurrence.Frequency, today calendar.Date) (GoalPlan, error) {
	if !goal.GreaterThan(current) {
		return GoalPlan{Reached: true}, nil
	}
	if freq == recurrence.Once || !freq.Valid() {
		return GoalPlan{}, fmt.Errorf("%w: %q", recurrence.ErrUnknownFrequency, freq)
	}
	if !contribution.IsPositive() {
		return GoalPlan{}, ErrNoContribution
	}

	remaining := goal.Sub(current)
	steps := remaining.Div(contribution).Ceil()
	if steps.GreaterThan(decimal.NewFromInt(recurrence.MaxSteps)) {
		return GoalPlan{}, fmt.Errorf("%w: %s", ErrGoalTooFar, steps)
	}
	n := int(steps.IntPart())
	return GoalPlan{
		Remaining:     remaining,
		Contributions: n,
		Date:          recurrence.Step(today, freq, n),
	}, nil
}
