package planner

import (
	"context"
	"fmt"

	"shiftplan/internal/core"
)

// monthsAhead is how far past the current month the history view extends.
const monthsAhead = 12

// MonthList builds the working-hours history view: one row per month from
// the earliest configured month (or the current month when nothing was
// ever configured) through twelve months ahead, ascending. Months with a
// recorded setting are manual; the rest inherit the nearest earlier value.
func (c *Calculator) MonthList(ctx context.Context) ([]core.MonthWorkingHours, error) {
	settings, err := c.store.AllWorkingHours(ctx)
	if err != nil {
		return nil, fmt.Errorf("all working hours: %w", err)
	}

	byMonth := make(map[string]core.WorkingHoursSetting, len(settings))
	for _, s := range settings {
		byMonth[s.YearMonth] = s
	}

	current := core.DateOf(c.now()).YearMonth()
	start := current
	if len(settings) > 0 {
		// AllWorkingHours is ordered ascending, so the first entry is the
		// earliest ever configured.
		first, err := core.ParseYearMonth(settings[0].YearMonth)
		if err != nil {
			return nil, fmt.Errorf("stored month %q: %w", settings[0].YearMonth, err)
		}
		start = first
	}
	end := current
	for i := 0; i < monthsAhead; i++ {
		end = end.Next()
	}

	var months []core.MonthWorkingHours
	var inherited *float64
	for m := start; m.Compare(end) <= 0; m = m.Next() {
		key := m.String()
		if setting, ok := byMonth[key]; ok {
			hours := setting.WeeklyHours
			inherited = &hours
			months = append(months, core.MonthWorkingHours{YearMonth: key, Hours: &hours, IsManual: true})
			continue
		}
		months = append(months, core.MonthWorkingHours{YearMonth: key, Hours: inherited, IsManual: false})
	}
	return months, nil
}
