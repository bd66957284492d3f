package regz

import "math"

// PresentValueGap evaluates the Appendix J general equation at a periodic
// rate:
//
//	  n-1         P                           A_j
//	  Σ   -------------------------  -  Σ  -------------------------
//	  k=0 (1 + f·i) (1 + i)^(k + t)    j≥1 (1 + f_j·i) (1 + i)^(t_j)
//
// where t, f is the primary offset (first advance to first payment) and
// t_j, f_j are the offsets of each later advance from the first one. The
// solver looks for the rate at which this equals the first advance.
//
// others[j] belongs to advances[j+1]; advances[0] is the first advance and
// is not part of the sum. With a single advance the second sum is empty.
func PresentValueGap(rate float64, schedule PaymentSchedule, primary PeriodOffset, others []PeriodOffset, advances []AggregatedAdvance) float64 {
	return newEquation(schedule, primary, others, advances).gap(rate)
}

// equation holds the float form of one loan so the solver doesn't convert
// decimals on every evaluation.
type equation struct {
	payment float64
	count   int
	primary PeriodOffset
	others  []PeriodOffset
	amounts []float64
}

func newEquation(schedule PaymentSchedule, primary PeriodOffset, others []PeriodOffset, advances []AggregatedAdvance) equation {
	eq := equation{
		payment: schedule.Payment.InexactFloat64(),
		count:   schedule.Count,
		primary: primary,
		others:  others,
	}
	for j := range others {
		if j+1 < len(advances) {
			eq.amounts = append(eq.amounts, advances[j+1].Amount.InexactFloat64())
		}
	}
	return eq
}

func (eq equation) gap(rate float64) float64 {
	var later float64
	for j, amount := range eq.amounts {
		off := eq.others[j]
		later += amount / ((1 + off.Odd*rate) * math.Pow(1+rate, float64(off.Full)))
	}

	var payments float64
	odd := 1 + eq.primary.Odd*rate
	for k := 0; k < eq.count; k++ {
		payments += eq.payment / (odd * math.Pow(1+rate, float64(k+eq.primary.Full)))
	}

	return payments - later
}
