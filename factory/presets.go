package factory

import "encoding/json"

// =============================================================================
// PRESET LOAN DOCUMENTS
// =============================================================================

// SingleAdvanceJSON returns JSON for a loan funded in one advance.
func SingleAdvanceJSON(name, amount, fundedOn, payment string, numPayments, periodsPerYear int, firstDue string) string {
	return render(LoanJSON{
		Name:            name,
		Advances:        []AdvanceJSON{{Amount: amount, Date: fundedOn}},
		Payment:         payment,
		NumPayments:     numPayments,
		PeriodsPerYear:  periodsPerYear,
		FirstPaymentDue: firstDue,
	})
}

// MultipleAdvanceJSON returns JSON for a loan disbursed over several dates.
func MultipleAdvanceJSON(name string, advances []AdvanceJSON, payment string, numPayments, periodsPerYear int, firstDue string) string {
	return render(LoanJSON{
		Name:            name,
		Advances:        advances,
		Payment:         payment,
		NumPayments:     numPayments,
		PeriodsPerYear:  periodsPerYear,
		FirstPaymentDue: firstDue,
	})
}

func render(lj LoanJSON) string {
	b, _ := json.MarshalIndent(lj, "", "  ")
	return string(b)
}
