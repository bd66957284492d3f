package regz

// =============================================================================
// PERIOD COUNTER - Appendix J (b)(5) unit-period counting
// =============================================================================

// Unit-period lengths in days, per Appendix J. A month is always 30 days, a
// quarter 90 and a half-year 180, whatever the calendar says.
const (
	daysPerMonth      = 30
	daysPerQuarter    = 90
	daysPerHalfYear   = 180
	daysPerHalfMonth  = 15
	daysPerWeek       = 7
	daysPerWeeklyYear = 365
	weeksPerYear      = 52
)

// CountPeriods returns the full unit-periods and odd fraction between from
// and to, counted backward from to.
//
// Monthly, quarterly and semiannual odd fractions that come out at exactly 1
// are folded into Full, so Jan 1 to Jan 31 is one month with no odd days.
func CountPeriods(from, to Date, freq Frequency) (PeriodOffset, error) {
	if from.IsZero() {
		return PeriodOffset{}, invalid("from", "date is required")
	}
	if to.IsZero() {
		return PeriodOffset{}, invalid("to", "date is required")
	}

	d := Delta(from, to)

	switch freq {
	case Monthly:
		return boundary(PeriodOffset{
			Full: d.TotalMonths(),
			Odd:  float64(d.Days) / daysPerMonth,
		}), nil

	case Quarterly:
		return boundary(PeriodOffset{
			Full: floorDiv(d.Months, 3) + d.Years*4,
			Odd:  float64(floorMod(d.Months, 3)*daysPerMonth+d.Days) / daysPerQuarter,
		}), nil

	case Semiannual:
		return boundary(PeriodOffset{
			Full: floorDiv(d.Months, 6) + d.Years*2,
			Odd:  float64(floorMod(d.Months, 6)*daysPerMonth+d.Days) / daysPerHalfYear,
		}), nil

	case Semimonthly:
		// Whole half-months are already taken out of the days by the
		// division, so the odd fraction can never reach 1 here.
		return PeriodOffset{
			Full: d.Months*2 + d.Years*24 + floorDiv(d.Days, daysPerHalfMonth),
			Odd:  float64(floorMod(d.Days, daysPerHalfMonth)) / daysPerHalfMonth,
		}, nil

	case Weekly:
		return countWeeks(from, to, d), nil

	default:
		return PeriodOffset{}, &FrequencyError{Frequency: freq}
	}
}

// countWeeks works on the raw day count. Spans of whole years are 52 weeks a
// year exactly; longer spans treat each year as 365 days and 52 weeks, so the
// 365th day (and any leap day) falls into the final partial week.
func countWeeks(from, to Date, d CalendarDelta) PeriodOffset {
	days := DaysBetween(from, to)

	switch {
	case d.Years == 0:
		return PeriodOffset{
			Full: floorDiv(days, daysPerWeek),
			Odd:  float64(floorMod(days, daysPerWeek)) / daysPerWeek,
		}
	case d.Months == 0 && d.Days == 0:
		return PeriodOffset{Full: weeksPerYear * d.Years}
	default:
		rest := days - daysPerWeeklyYear*d.Years
		return PeriodOffset{
			Full: floorDiv(rest, daysPerWeek) + weeksPerYear*d.Years,
			Odd:  float64(floorMod(rest, daysPerWeek)) / daysPerWeek,
		}
	}
}

func boundary(p PeriodOffset) PeriodOffset {
	if p.Odd == 1 {
		return PeriodOffset{Full: p.Full + 1}
	}
	return p
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
