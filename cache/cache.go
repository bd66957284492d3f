// Package cache memoizes APR results. regz.Calculate is a pure function of
// the loan, so a result keyed by a fingerprint of the loan never goes stale.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/warp/apr-engine/regz"
)

// Cache stores serialized results by key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
}

// Key fingerprints everything Calculate reads. Advances are aggregated first,
// so listing the same disbursements in another order gives the same key.
func Key(loan regz.Loan) string {
	var b strings.Builder
	for _, a := range regz.Aggregate(loan.Advances) {
		fmt.Fprintf(&b, "%s=%s;", a.Date, a.Amount.String())
	}
	guess := loan.Guess
	if guess == 0 {
		guess = regz.DefaultGuess
	}
	fmt.Fprintf(&b, "p=%s;n=%d;f=%d;due=%s;g=%v",
		loan.Schedule.Payment.String(), loan.Schedule.Count, int(loan.Schedule.Frequency),
		loan.FirstPaymentDue, guess)

	return fmt.Sprintf("apr:%016x", xxhash.Sum64String(b.String()))
}

type entry struct {
	APR        float64 `json:"apr"`
	Full       int     `json:"full"`
	Odd        float64 `json:"odd"`
	Iterations int     `json:"iterations"`
	Restarted  bool    `json:"restarted"`
}

// GetResult looks a loan up. A miss is (Result{}, false, nil).
func GetResult(ctx context.Context, c Cache, loan regz.Loan) (regz.Result, bool, error) {
	raw, ok, err := c.Get(ctx, Key(loan))
	if err != nil || !ok {
		return regz.Result{}, false, err
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return regz.Result{}, false, fmt.Errorf("corrupt cache entry: %w", err)
	}
	return regz.Result{
		APR:        e.APR,
		Offset:     regz.PeriodOffset{Full: e.Full, Odd: e.Odd},
		Iterations: e.Iterations,
		Restarted:  e.Restarted,
	}, true, nil
}

// PutResult stores a loan's result.
func PutResult(ctx context.Context, c Cache, loan regz.Loan, res regz.Result) error {
	b, err := json.Marshal(entry{
		APR:        res.APR,
		Full:       res.Offset.Full,
		Odd:        res.Offset.Odd,
		Iterations: res.Iterations,
		Restarted:  res.Restarted,
	})
	if err != nil {
		return err
	}
	return c.Set(ctx, Key(loan), string(b))
}
