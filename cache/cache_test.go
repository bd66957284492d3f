package cache_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/apr-engine/cache"
	"github.com/warp/apr-engine/regz"
)

func testLoan() regz.Loan {
	return regz.Loan{
		Advances: []regz.Advance{
			{Amount: decimal.RequireFromString("1000.00"), Date: regz.MustParseDate("2015-06-01")},
			{Amount: decimal.RequireFromString("500"), Date: regz.MustParseDate("2015-06-15")},
		},
		Schedule: regz.PaymentSchedule{
			Payment:   decimal.RequireFromString("140.00"),
			Count:     12,
			Frequency: regz.Monthly,
		},
		FirstPaymentDue: regz.MustParseDate("2015-07-01"),
	}
}

func TestKey_IgnoresAdvanceOrderAndDefaultGuess(t *testing.T) {
	a := testLoan()
	b := testLoan()
	b.Advances[0], b.Advances[1] = b.Advances[1], b.Advances[0]
	b.Guess = regz.DefaultGuess

	assert.Equal(t, cache.Key(a), cache.Key(b))
}

func TestKey_ChangesWithLoanTerms(t *testing.T) {
	base := testLoan()

	payment := testLoan()
	payment.Schedule.Payment = decimal.RequireFromString("140.01")
	due := testLoan()
	due.FirstPaymentDue = regz.MustParseDate("2015-07-02")
	freq := testLoan()
	freq.Schedule.Frequency = regz.Semimonthly

	for _, other := range []regz.Loan{payment, due, freq} {
		assert.NotEqual(t, cache.Key(base), cache.Key(other))
	}
}

func TestResult_RoundTripThroughMemory(t *testing.T) {
	// GIVEN: A solved loan stored in the memory cache
	// WHEN: Looking the same loan up
	// THEN: The stored result comes back

	ctx := context.Background()
	c := cache.NewMemory()
	loan := testLoan()
	res, err := regz.Calculate(loan)
	require.NoError(t, err)

	_, hit, err := cache.GetResult(ctx, c, loan)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.PutResult(ctx, c, loan, res))
	got, hit, err := cache.GetResult(ctx, c, loan)

	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, res, got)
	assert.Equal(t, 1, c.Len())
}

func TestGetResult_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()
	loan := testLoan()
	require.NoError(t, c.Set(ctx, cache.Key(loan), "not json"))

	_, hit, err := cache.GetResult(ctx, c, loan)

	assert.Error(t, err)
	assert.False(t, hit)
}
