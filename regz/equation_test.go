package regz_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/apr-engine/regz"
)

func monthly(payment string, count int) regz.PaymentSchedule {
	return regz.PaymentSchedule{
		Payment:   decimal.RequireFromString(payment),
		Count:     count,
		Frequency: regz.Monthly,
	}
}

func TestPresentValueGap_ZeroRateIsPlainSum(t *testing.T) {
	// GIVEN: 12 payments of 100, odd days, no later advances
	// WHEN: Discounting at 0%
	// THEN: Nothing is discounted

	got := regz.PresentValueGap(0, monthly("100", 12), regz.PeriodOffset{Full: 1, Odd: 0.5}, nil, nil)

	assert.InDelta(t, 1200, got, 1e-9)
}

func TestPresentValueGap_SingleAdvance(t *testing.T) {
	rate := 0.01
	var want float64
	for k := 0; k < 12; k++ {
		want += 100 / math.Pow(1+rate, float64(k+1))
	}

	got := regz.PresentValueGap(rate, monthly("100", 12), regz.PeriodOffset{Full: 1}, nil, nil)

	assert.InDelta(t, want, got, 1e-9)
}

func TestPresentValueGap_OddFractionAppliesSimpleInterest(t *testing.T) {
	rate := 0.01
	whole := regz.PresentValueGap(rate, monthly("100", 12), regz.PeriodOffset{Full: 1}, nil, nil)

	got := regz.PresentValueGap(rate, monthly("100", 12), regz.PeriodOffset{Full: 1, Odd: 0.5}, nil, nil)

	assert.InDelta(t, whole/1.005, got, 1e-9)
}

func TestPresentValueGap_SubtractsLaterAdvances(t *testing.T) {
	// GIVEN: A second advance of 2000 two months and 9 days after the first
	// THEN: Its discounted value comes off the payment stream

	rate := 0.015
	advances := []regz.AggregatedAdvance{
		{Amount: decimal.NewFromInt(3000), Date: date("2015-06-01")},
		{Amount: decimal.NewFromInt(2000), Date: date("2015-08-10")},
	}
	later := regz.PeriodOffset{Full: 2, Odd: 0.3}
	primary := regz.PeriodOffset{Full: 1}

	payments := regz.PresentValueGap(rate, monthly("250", 24), primary, nil, nil)
	got := regz.PresentValueGap(rate, monthly("250", 24), primary, []regz.PeriodOffset{later}, advances)

	discounted := 2000 / ((1 + 0.3*rate) * math.Pow(1+rate, 2))
	assert.InDelta(t, payments-discounted, got, 1e-9)
}
