package forecast

import (
	"fmt"
	"math"
	"time"
)

// Plan maps a horizon onto the model's index space and onto calendar days.
// The two are derived independently: indexes continue from the training window,
// dates continue from the last observed day.
type Plan struct {
	StartIndex int
	EndIndex   int
	Dates      []time.Time
}

// NewPlan builds the plan for horizonDays future days.
func NewPlan(horizonDays, trainedLength int, lastObserved time.Time) (Plan, error) {
	if horizonDays < 1 {
		return Plan{}, fmt.Errorf("%w: days must be >= 1, got %d", ErrInvalidRequest, horizonDays)
	}
	if trainedLength < 1 {
		return Plan{}, fmt.Errorf("%w: trained length %d", ErrModelLoad, trainedLength)
	}
	if horizonDays > HorizonCeiling {
		return Plan{}, fmt.Errorf("%w: days must be <= %d, got %d", ErrInvalidRequest, HorizonCeiling, horizonDays)
	}
	if horizonDays > math.MaxInt-trainedLength+1 {
		return Plan{}, fmt.Errorf("%w: days %d overflows the model index range", ErrInvalidRequest, horizonDays)
	}

	y, m, d := lastObserved.Date()
	base := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	dates := make([]time.Time, horizonDays)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i+1)
	}

	return Plan{
		StartIndex: trainedLength,
		EndIndex:   trainedLength + horizonDays - 1,
		Dates:      dates,
	}, nil
}

// Len is the number of forecast steps in the plan.
func (p Plan) Len() int {
	return p.EndIndex - p.StartIndex + 1
}
