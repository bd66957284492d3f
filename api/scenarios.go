/*
scenarios.go - Demo loans for testing and demonstrations

PURPOSE:

	Provides pre-built loan sets that populate the database with realistic
	documents. Each scenario exercises a different corner of the
	Appendix J calculation.

AVAILABLE SCENARIOS:

	car-loan:           One advance, 12 monthly payments, no odd days
	odd-days:           Monthly loan whose first period carries 17 odd days
	construction-draws: Three draws on two dates, merged before solving
	payment-frequencies: Quarterly, semiannual, semimonthly and weekly loans

HOW SCENARIOS WORK:
 1. Reset database (clear all loans and history)
 2. Build loan documents via factory presets
 3. Save each loan
 4. Calculate each loan once so the history is not empty

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "construction-draws"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Loan handlers
  - factory/presets.go: Preset loan documents
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/apr-engine/factory"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "car-loan",
		Name:        "Car Loan",
		Description: "1,000.00 advanced, 12 monthly payments of 90.26, one full period to first payment",
		Category:    "single-advance",
	},
	{
		ID:          "odd-days",
		Name:        "Odd Days",
		Description: "5,000.00 advanced mid-January, first payment March 1 (1 period + 17 odd days)",
		Category:    "single-advance",
	},
	{
		ID:          "construction-draws",
		Name:        "Construction Draws",
		Description: "Three draws on two dates; same-day draws are merged before solving",
		Category:    "multiple-advance",
	},
	{
		ID:          "payment-frequencies",
		Name:        "Payment Frequencies",
		Description: "Quarterly, semiannual, semimonthly and weekly schedules side by side",
		Category:    "single-advance",
	},
}

// scenarioLoans returns the documents for a scenario, or false if unknown.
func scenarioLoans(id string) ([]string, bool) {
	switch id {
	case "car-loan":
		return []string{
			factory.SingleAdvanceJSON("Car Loan", "1000.00", "2015-06-01", "90.26", 12, 12, "2015-07-01"),
		}, true
	case "odd-days":
		return []string{
			factory.SingleAdvanceJSON("Odd Days", "5000.00", "2015-01-15", "230.00", 24, 12, "2015-03-01"),
		}, true
	case "construction-draws":
		return []string{
			factory.MultipleAdvanceJSON("Construction Draws", []factory.AdvanceJSON{
				{Amount: "1000.00", Date: "2015-06-01"},
				{Amount: "2000.00", Date: "2015-06-15"},
				{Amount: "1500.00", Date: "2015-06-01"},
			}, "400.00", 12, 12, "2015-07-01"),
		}, true
	case "payment-frequencies":
		return []string{
			factory.SingleAdvanceJSON("Quarterly", "10000.00", "2015-01-10", "1400.00", 8, 4, "2015-06-01"),
			factory.SingleAdvanceJSON("Semiannual", "10000.00", "2015-01-01", "2700.00", 4, 2, "2015-07-01"),
			factory.SingleAdvanceJSON("Semimonthly", "2000.00", "2015-01-01", "90.00", 24, 24, "2015-01-20"),
			factory.SingleAdvanceJSON("Weekly", "1000.00", "2015-01-01", "21.00", 52, 52, "2015-01-20"),
		}, true
	}
	return nil, false
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads a scenario's loans.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	docs, ok := scenarioLoans(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	if err := h.loadLoans(ctx, req.ScenarioID, docs); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"loans":    len(docs),
	})
}

func (h *Handler) loadLoans(ctx context.Context, scenarioID string, docs []string) error {
	for i, doc := range docs {
		var config factory.LoanJSON
		if err := json.Unmarshal([]byte(doc), &config); err != nil {
			return err
		}
		if _, err := h.Factory.FromJSON(config); err != nil {
			return fmt.Errorf("%s: %w", config.Name, err)
		}

		record, err := h.saveLoan(ctx, fmt.Sprintf("%s-%d", scenarioID, i+1), config)
		if err != nil {
			return err
		}
		if _, err := h.calculateAndRecord(ctx, *record); err != nil {
			return fmt.Errorf("%s: %w", config.Name, err)
		}
	}
	return nil
}

// ResetDatabase clears all loans and history.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
