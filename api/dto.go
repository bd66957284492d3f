/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Loan documents travel
  as factory.LoanJSON unchanged; results and history records get their own
  response shapes so the store's columns never leak into the API.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  APR:          APRResultDTO
  Loans:        LoanDTO, CreateLoanRequest
  History:      CalculationDTO
  Scenarios:    ScenarioDTO, LoadScenarioRequest
  Errors:       ErrorResponse

SEE ALSO:
  - handlers.go: Uses these types
  - factory/loan.go: LoanJSON type
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/warp/apr-engine/factory"
	"github.com/warp/apr-engine/regz"
	"github.com/warp/apr-engine/store/sqlite"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// APRResultDTO is a solved APR.
type APRResultDTO struct {
	APR         float64 `json:"apr"`
	APRRounded  string  `json:"apr_rounded"`
	FullPeriods int     `json:"full_periods"`
	OddFraction float64 `json:"odd_fraction"`
	Iterations  int     `json:"iterations"`
	Restarted   bool    `json:"restarted"`
	Cached      bool    `json:"cached"`
}

// LoanDTO represents a saved loan in API responses.
type LoanDTO struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	PeriodsPerYear int              `json:"periods_per_year"`
	Config         factory.LoanJSON `json:"config"`
	Version        int              `json:"version"`
	CreatedAt      string           `json:"created_at,omitempty"`
	UpdatedAt      string           `json:"updated_at,omitempty"`
}

// CreateLoanRequest saves a loan. An empty ID creates a new loan; an existing
// ID replaces that loan's document and bumps its version.
type CreateLoanRequest struct {
	ID     string           `json:"id,omitempty"`
	Config factory.LoanJSON `json:"config"`
}

// CalculationDTO is one entry of a loan's calculation history.
type CalculationDTO struct {
	ID            string  `json:"id"`
	LoanID        string  `json:"loan_id"`
	APR           float64 `json:"apr"`
	APRRounded    string  `json:"apr_rounded"`
	FullPeriods   int     `json:"full_periods"`
	OddFraction   float64 `json:"odd_fraction"`
	Iterations    int     `json:"iterations"`
	Restarted     bool    `json:"restarted"`
	ConfigVersion int     `json:"config_version"`
	ComputedAt    string  `json:"computed_at"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"` // "single-advance" or "multiple-advance"
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toAPRResultDTO(res regz.Result, cached bool) APRResultDTO {
	return APRResultDTO{
		APR:         res.APR,
		APRRounded:  res.Rounded().StringFixed(2),
		FullPeriods: res.Offset.Full,
		OddFraction: res.Offset.Odd,
		Iterations:  res.Iterations,
		Restarted:   res.Restarted,
		Cached:      cached,
	}
}

func toLoanDTO(r sqlite.LoanRecord) LoanDTO {
	var config factory.LoanJSON
	json.Unmarshal([]byte(r.ConfigJSON), &config)

	return LoanDTO{
		ID:             r.ID,
		Name:           r.Name,
		PeriodsPerYear: r.PeriodsPerYear,
		Config:         config,
		Version:        r.Version,
		CreatedAt:      formatTime(r.CreatedAt),
		UpdatedAt:      formatTime(r.UpdatedAt),
	}
}

func toCalculationDTO(c sqlite.CalculationRecord) CalculationDTO {
	return CalculationDTO{
		ID:            c.ID,
		LoanID:        c.LoanID,
		APR:           c.APR,
		APRRounded:    c.Rounded.StringFixed(2),
		FullPeriods:   c.FullPeriods,
		OddFraction:   c.OddFraction,
		Iterations:    c.Iterations,
		Restarted:     c.Restarted,
		ConfigVersion: c.ConfigVersion,
		ComputedAt:    c.ComputedAt.UTC().Format(time.RFC3339),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
