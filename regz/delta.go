package regz

// CalendarDelta is a span expressed as years, months and days.
type CalendarDelta struct {
	Years  int
	Months int
	Days   int
}

// TotalMonths folds Years into Months.
func (d CalendarDelta) TotalMonths() int {
	return d.Years*12 + d.Months
}

// Delta measures from `from` to `to` counting BACKWARD from `to`: whole months
// are stepped back from the later date first and the leftover is Days.
//
//	Delta(2015-02-27, 2015-04-01) = 1 month 2 days  (Apr 1 -> Mar 1 -> Feb 27)
//
// Counting forward would give 1 month 5 days (Feb 27 -> Mar 27 -> Apr 1),
// which is not what Appendix J prescribes. Month steps clip to the last day
// of the target month. If from is after to, every component is <= 0.
func Delta(from, to Date) CalendarDelta {
	months := (from.Year()-to.Year())*12 + int(from.Month()) - int(to.Month())
	anchor := to.AddMonths(months)

	if from.Before(to) {
		for from.After(anchor) {
			months++
			anchor = to.AddMonths(months)
		}
	} else {
		for from.Before(anchor) {
			months--
			anchor = to.AddMonths(months)
		}
	}

	// months and the day gap are measured from `to`; flip them so a
	// forward span is positive.
	months = -months
	days := DaysBetween(from, anchor)

	return CalendarDelta{
		Years:  months / 12,
		Months: months % 12,
		Days:   days,
	}
}
