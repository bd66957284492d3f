/*
Package regz computes the Annual Percentage Rate of installment loans with the
actuarial method of Regulation Z (Truth in Lending), Appendix J.

PURPOSE:
  Given the advances that fund a loan, a level payment schedule and the first
  payment due date, find the periodic rate at which the discounted payments
  equal the amount advanced, and annualize it.

KEY CONCEPTS IN THIS FILE (types.go):
  - Advance: one disbursement of principal (a loan may have several)
  - PaymentSchedule: level payment amount, count and frequency
  - PeriodOffset: whole unit-periods plus the odd fraction before a date
  - Loan / Result: the input and output of Calculate

PIPELINE:
  Aggregate advances -> count periods -> guard -> secant solve

  Each stage is exported and usable on its own:
    Aggregate       aggregate.go
    Delta           delta.go
    CountPeriods    period.go
    CheckFeasible   guard.go
    PresentValueGap equation.go
    Calculate       solver.go

PRECISION:
  Amounts are decimal.Decimal at the edges. The iteration runs on float64;
  Result.Rounded gives the two-place figure for disclosure.

CONCURRENCY:
  Every function here is pure. Nothing is shared between calls.

USAGE:
  apr, err := regz.ComputeAPR(
      []regz.Advance{regz.NewAdvance(1000, regz.NewDate(2015, time.June, 1))},
      decimal.RequireFromString("90.26"), 12, regz.Monthly,
      regz.NewDate(2015, time.July, 1), regz.DefaultGuess,
  )
*/
package regz

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// FREQUENCY - Unit-periods per year
// =============================================================================

type Frequency int

const (
	Semiannual  Frequency = 2
	Quarterly   Frequency = 4
	Monthly     Frequency = 12
	Semimonthly Frequency = 24
	Weekly      Frequency = 52
)

// Valid reports whether Appendix J counting is implemented for f.
func (f Frequency) Valid() bool {
	switch f {
	case Semiannual, Quarterly, Monthly, Semimonthly, Weekly:
		return true
	}
	return false
}

func (f Frequency) String() string {
	switch f {
	case Semiannual:
		return "semiannual"
	case Quarterly:
		return "quarterly"
	case Monthly:
		return "monthly"
	case Semimonthly:
		return "semimonthly"
	case Weekly:
		return "weekly"
	default:
		return "unsupported"
	}
}

// =============================================================================
// ADVANCES
// =============================================================================

// Advance is a single disbursement of principal.
type Advance struct {
	Amount decimal.Decimal
	Date   Date
}

func NewAdvance(amount float64, date Date) Advance {
	return Advance{Amount: decimal.NewFromFloat(amount), Date: date}
}

// AggregatedAdvance is the total advanced on one date.
type AggregatedAdvance struct {
	Amount decimal.Decimal
	Date   Date
}

// =============================================================================
// SCHEDULE AND OFFSETS
// =============================================================================

// PaymentSchedule is a run of equal payments at a fixed frequency.
type PaymentSchedule struct {
	Payment   decimal.Decimal
	Count     int
	Frequency Frequency
}

// PeriodOffset is the distance between two dates in unit-periods: Full whole
// periods plus an Odd fraction of a period, counted back from the later date.
type PeriodOffset struct {
	Full int
	Odd  float64
}

// =============================================================================
// LOAN / RESULT
// =============================================================================

// DefaultGuess is the starting APR, in percent, for the secant iteration.
const DefaultGuess = 5.0

// Loan is everything Calculate needs.
type Loan struct {
	Advances        []Advance
	Schedule        PaymentSchedule
	FirstPaymentDue Date
	// Guess is the starting APR in percent. Zero means DefaultGuess.
	Guess float64
}

// Result is a solved APR plus the details behind it.
type Result struct {
	// APR is annualized percent: 14.73 means 14.73%.
	APR float64
	// Offset is the first advance's distance to the first payment.
	Offset     PeriodOffset
	Iterations int
	// Restarted is set when the first run went negative and was redone
	// from a guess a hundred times smaller.
	Restarted bool
}

// Rounded returns the APR rounded to two decimal places for disclosure.
func (r Result) Rounded() decimal.Decimal {
	return decimal.NewFromFloat(r.APR).Round(2)
}
