package regz

// MaxDueDateLead is how many days the first payment may fall due before the
// earliest advance. Beyond it the secant iteration can run for a very long
// time, so the loan is rejected up front.
const MaxDueDateLead = 60

// CheckFeasible rejects loans whose first payment is due implausibly long
// before the money goes out. A due date after the advance is always fine.
// Time of day is dropped from every date before comparing.
func CheckFeasible(advanceDates []Date, firstPaymentDue Date) error {
	if len(advanceDates) == 0 {
		return invalid("advances", "at least one advance is required")
	}
	if firstPaymentDue.IsZero() {
		return invalid("first_payment_due", "date is required")
	}

	earliest := DateOf(advanceDates[0].Time)
	for _, d := range advanceDates[1:] {
		if day := DateOf(d.Time); day.Before(earliest) {
			earliest = day
		}
	}
	due := DateOf(firstPaymentDue.Time)

	if gap := DaysBetween(due, earliest); gap > MaxDueDateLead {
		return &LoopBoundError{
			EarliestAdvance: earliest,
			FirstPaymentDue: due,
			GapDays:         gap,
		}
	}
	return nil
}
