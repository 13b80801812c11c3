package slots

import (
	"fmt"
	"time"
)

// CalendarSpec describes a block of slot days to generate.
type CalendarSpec struct {
	StartDate   time.Time // first day, midnight in the event timezone
	EndDate     time.Time // last day inclusive, midnight in the event timezone
	StartHour   int       // first slot begins at this hour of day
	EndHour     int       // no slot begins at or after this hour
	Duration    time.Duration
	MaxCapacity int
}

// BuildCalendar expands a spec into the full slot grid. It is pure: the
// repository decides which grid positions already exist and skips them.
func BuildCalendar(spec CalendarSpec) ([]Slot, error) {
	if spec.EndDate.Before(spec.StartDate) {
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidWindow)
	}
	if spec.StartHour < 0 || spec.EndHour > 24 || spec.StartHour >= spec.EndHour {
		return nil, fmt.Errorf("%w: hours must satisfy 0 <= start < end <= 24", ErrInvalidWindow)
	}
	if spec.Duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidWindow)
	}
	if spec.MaxCapacity <= 0 {
		return nil, fmt.Errorf("max capacity must be positive")
	}

	var grid []Slot
	for day := spec.StartDate; !day.After(spec.EndDate); day = day.AddDate(0, 0, 1) {
		dayOpen := day.Add(time.Duration(spec.StartHour) * time.Hour)
		dayClose := day.Add(time.Duration(spec.EndHour) * time.Hour)

		for start := dayOpen; start.Add(spec.Duration).Compare(dayClose) <= 0; start = start.Add(spec.Duration) {
			grid = append(grid, Slot{
				StartTime:   start,
				EndTime:     start.Add(spec.Duration),
				MaxCapacity: spec.MaxCapacity,
			})
		}
	}

	return grid, nil
}
