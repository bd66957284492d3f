package regz

import (
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SECANT SOLVER
// =============================================================================

const (
	// Tolerance is the largest change in the APR guess, in percentage
	// points, that still counts as converged.
	Tolerance = 0.00001

	// guessStep is the distance between the two probe APRs, in percent.
	guessStep = 0.1

	// restartDivisor shrinks the guess for the one restart after a
	// negative result.
	restartDivisor = 100

	// maxIterations bounds a single run. The guard keeps real loans far
	// below it.
	maxIterations = 1000
)

// secant drives the two-guess iteration over a present-value function.
type secant struct {
	principal float64
	// perYear converts an APR in percent to a periodic rate: 100 * ppy.
	perYear float64
	pv      func(rate float64) float64
}

// run iterates from guess until two successive guesses agree within
// Tolerance. It returns 0 immediately if both probes land on the same
// present value, which happens on a flat curve (typically around 0% APR).
func (s secant) run(guess float64) (apr float64, iterations int, err error) {
	result, next := guess, guess+guessStep

	for math.Abs(result-next) > Tolerance {
		if iterations == maxIterations {
			return result, iterations, ErrNoConvergence
		}
		iterations++

		result = next
		a1 := s.pv(next / s.perYear)
		a2 := s.pv((next + guessStep) / s.perYear)
		if a2 == a1 {
			return 0, iterations, nil
		}
		next += guessStep * (s.principal - a1) / (a2 - a1)
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return result, iterations, ErrNoConvergence
		}
	}
	return result, iterations, nil
}

// solve runs from guess and, if that ends negative, once more from
// guess/100. A guess several times above the true APR can push the second
// probe negative, after which the guesses run away to ever larger negative
// values instead of converging. A negative result is always treated as that
// artifact; loans with a genuinely negative APR are not supported.
func (s secant) solve(guess float64) (Result, error) {
	apr, iterations, err := s.run(guess)
	if err != nil {
		return Result{APR: apr, Iterations: iterations}, err
	}
	if apr >= 0 {
		return Result{APR: apr, Iterations: iterations}, nil
	}

	apr, more, err := s.run(guess / restartDivisor)
	return Result{APR: apr, Iterations: iterations + more, Restarted: true}, err
}

// =============================================================================
// ENTRY POINTS
// =============================================================================

// Calculate solves the APR of a loan.
//
// Advances on the same date are merged. The first (earliest) advance is the
// principal the payments are discounted against; later advances are
// discounted from the first advance date and subtracted from the payments.
func Calculate(loan Loan) (Result, error) {
	if err := Validate(loan); err != nil {
		return Result{}, err
	}

	advances := Aggregate(loan.Advances)

	freq := loan.Schedule.Frequency
	first := advances[0]
	primary, err := CountPeriods(first.Date, loan.FirstPaymentDue, freq)
	if err != nil {
		return Result{}, err
	}

	others := make([]PeriodOffset, 0, len(advances)-1)
	for _, a := range advances[1:] {
		off, err := CountPeriods(first.Date, a.Date, freq)
		if err != nil {
			return Result{}, err
		}
		others = append(others, off)
	}

	eq := newEquation(loan.Schedule, primary, others, advances)
	s := secant{
		principal: first.Amount.InexactFloat64(),
		perYear:   float64(100 * int(freq)),
		pv:        eq.gap,
	}

	guess := loan.Guess
	if guess == 0 {
		guess = DefaultGuess
	}

	res, err := s.solve(guess)
	res.Offset = primary
	return res, err
}

// ComputeAPR is Calculate for callers that only want the annualized percent.
func ComputeAPR(advances []Advance, payment decimal.Decimal, numPayments int, freq Frequency, firstPaymentDue Date, guess float64) (float64, error) {
	res, err := Calculate(Loan{
		Advances: advances,
		Schedule: PaymentSchedule{
			Payment:   payment,
			Count:     numPayments,
			Frequency: freq,
		},
		FirstPaymentDue: firstPaymentDue,
		Guess:           guess,
	})
	if err != nil {
		return 0, err
	}
	return res.APR, nil
}

// Validate reports whether Calculate would accept loan: field checks, then
// the due-date guard. It never runs the solver.
func Validate(loan Loan) error {
	if err := validate(loan); err != nil {
		return err
	}

	dates := make([]Date, len(loan.Advances))
	for i, a := range loan.Advances {
		dates[i] = a.Date
	}
	return CheckFeasible(dates, loan.FirstPaymentDue)
}

func validate(loan Loan) error {
	if len(loan.Advances) == 0 {
		return invalid("advances", "at least one advance is required")
	}
	for i, a := range loan.Advances {
		if a.Date.IsZero() {
			return invalid("advances", "advance %d has no date", i)
		}
		if !a.Amount.IsPositive() {
			return invalid("advances", "advance %d amount %s must be positive", i, a.Amount)
		}
	}
	if loan.FirstPaymentDue.IsZero() {
		return invalid("first_payment_due", "date is required")
	}
	if !loan.Schedule.Payment.IsPositive() {
		return invalid("payment", "amount %s must be positive", loan.Schedule.Payment)
	}
	if loan.Schedule.Count <= 0 {
		return invalid("num_payments", "%d must be positive", loan.Schedule.Count)
	}
	if !loan.Schedule.Frequency.Valid() {
		return &FrequencyError{Frequency: loan.Schedule.Frequency}
	}
	if math.IsNaN(loan.Guess) || math.IsInf(loan.Guess, 0) {
		return invalid("apr_guess", "must be a finite number")
	}
	return nil
}
