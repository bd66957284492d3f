/*
Package factory converts loan documents (JSON or YAML) into regz.Loan values.

PURPOSE:
  Callers of the APR engine rarely hold Go structs. The API receives JSON, the
  CLI reads files, the store keeps JSON text. The factory is the single place
  that turns those documents into validated calendar dates and decimal
  amounts, and back again.

DOCUMENT SCHEMA:
  {
    "name": "Auto loan",
    "advances": [
      {"amount": "1000.00", "date": "2015-06-01"},
      {"amount": "500.00",  "date": "2015-06-15"}
    ],
    "payment": "90.26",
    "num_payments": 12,
    "periods_per_year": 12,
    "first_payment_due": "2015-07-01",
    "apr_guess": 5
  }

  Amounts are decimal strings so cents are never rounded through float64.
  Dates are strict YYYY-MM-DD; 2015-02-30 is rejected, not normalized.
  apr_guess is optional (regz.DefaultGuess).

YAML:
  The same field names work as YAML keys (see ParseLoanYAML).

SEE ALSO:
  - regz/types.go: Loan, Advance, PaymentSchedule
  - factory/presets.go: Ready-made loan documents
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/apr-engine/regz"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// LoanJSON is the document representation of a loan.
type LoanJSON struct {
	Name            string        `json:"name,omitempty" yaml:"name,omitempty"`
	Advances        []AdvanceJSON `json:"advances" yaml:"advances"`
	Payment         string        `json:"payment" yaml:"payment"`
	NumPayments     int           `json:"num_payments" yaml:"num_payments"`
	PeriodsPerYear  int           `json:"periods_per_year" yaml:"periods_per_year"`
	FirstPaymentDue string        `json:"first_payment_due" yaml:"first_payment_due"`
	APRGuess        float64       `json:"apr_guess,omitempty" yaml:"apr_guess,omitempty"`
}

// AdvanceJSON is one disbursement.
type AdvanceJSON struct {
	Amount string `json:"amount" yaml:"amount"`
	Date   string `json:"date" yaml:"date"`
}

// =============================================================================
// LOAN FACTORY
// =============================================================================

// LoanFactory converts loan documents to regz.Loan.
type LoanFactory struct{}

// NewLoanFactory creates a new loan factory.
func NewLoanFactory() *LoanFactory {
	return &LoanFactory{}
}

// ParseLoan parses a JSON document.
func (f *LoanFactory) ParseLoan(jsonStr string) (regz.Loan, error) {
	var lj LoanJSON
	if err := json.Unmarshal([]byte(jsonStr), &lj); err != nil {
		return regz.Loan{}, fmt.Errorf("failed to parse loan JSON: %w", err)
	}
	return f.FromJSON(lj)
}

// ParseLoanYAML parses a YAML document with the same keys as the JSON form.
func (f *LoanFactory) ParseLoanYAML(data []byte) (regz.Loan, error) {
	var lj LoanJSON
	if err := yaml.Unmarshal(data, &lj); err != nil {
		return regz.Loan{}, fmt.Errorf("failed to parse loan YAML: %w", err)
	}
	return f.FromJSON(lj)
}

// FromJSON converts a LoanJSON to a regz.Loan. Only the document's syntax is
// checked here (dates, decimals); loan-level rules are left to regz.Calculate.
func (f *LoanFactory) FromJSON(lj LoanJSON) (regz.Loan, error) {
	loan := regz.Loan{
		Schedule: regz.PaymentSchedule{
			Count:     lj.NumPayments,
			Frequency: regz.Frequency(lj.PeriodsPerYear),
		},
		Guess: lj.APRGuess,
	}

	for i, aj := range lj.Advances {
		amount, err := parseAmount(fmt.Sprintf("advances[%d].amount", i), aj.Amount)
		if err != nil {
			return regz.Loan{}, err
		}
		date, err := parseDate(fmt.Sprintf("advances[%d].date", i), aj.Date)
		if err != nil {
			return regz.Loan{}, err
		}
		loan.Advances = append(loan.Advances, regz.Advance{Amount: amount, Date: date})
	}

	payment, err := parseAmount("payment", lj.Payment)
	if err != nil {
		return regz.Loan{}, err
	}
	loan.Schedule.Payment = payment

	due, err := parseDate("first_payment_due", lj.FirstPaymentDue)
	if err != nil {
		return regz.Loan{}, err
	}
	loan.FirstPaymentDue = due

	return loan, nil
}

// ToJSON converts a loan back to its document form.
func (f *LoanFactory) ToJSON(name string, loan regz.Loan) LoanJSON {
	lj := LoanJSON{
		Name:            name,
		Payment:         amountString(loan.Schedule.Payment),
		NumPayments:     loan.Schedule.Count,
		PeriodsPerYear:  int(loan.Schedule.Frequency),
		FirstPaymentDue: loan.FirstPaymentDue.String(),
		APRGuess:        loan.Guess,
	}
	for _, a := range loan.Advances {
		lj.Advances = append(lj.Advances, AdvanceJSON{
			Amount: amountString(a.Amount),
			Date:   a.Date.String(),
		})
	}
	return lj
}

// Marshal renders a loan as a compact JSON document.
func (f *LoanFactory) Marshal(name string, loan regz.Loan) (string, error) {
	b, err := json.Marshal(f.ToJSON(name, loan))
	if err != nil {
		return "", fmt.Errorf("failed to marshal loan: %w", err)
	}
	return string(b), nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseAmount(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, &regz.InputError{Field: field, Reason: "amount is required"}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &regz.InputError{Field: field, Reason: fmt.Sprintf("%q is not a decimal amount", s)}
	}
	return d, nil
}

// amountString keeps trailing zeros, so "90.10" is written back as "90.10".
func amountString(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

func parseDate(field, s string) (regz.Date, error) {
	if s == "" {
		return regz.Date{}, &regz.InputError{Field: field, Reason: "date is required"}
	}
	d, err := regz.ParseDate(s)
	if err != nil {
		return regz.Date{}, &regz.InputError{Field: field, Reason: fmt.Sprintf("%q is not a YYYY-MM-DD calendar date", s)}
	}
	return d, nil
}
