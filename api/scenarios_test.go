/*
scenarios_test.go - Unit tests for demo scenarios

PURPOSE:
	Tests that each scenario loads its loans and that every loan solves to
	the APR it was designed to show.
*/
package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/apr-engine/regz"
)

func TestScenarios_AllLoad(t *testing.T) {
	// GIVEN: Every listed scenario
	// WHEN: Loading each one
	// THEN: Each saved loan has exactly one calculation

	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			h := setupTestHandler(t)
			ctx := context.Background()

			docs, ok := scenarioLoans(s.ID)
			require.True(t, ok)
			require.NoError(t, h.loadLoans(ctx, s.ID, docs))

			loans, err := h.Store.ListLoans(ctx)
			require.NoError(t, err)
			require.Len(t, loans, len(docs))

			for _, l := range loans {
				history, err := h.Store.ListCalculations(ctx, l.ID)
				require.NoError(t, err)
				assert.Len(t, history, 1, l.Name)
			}
		})
	}
}

func TestScenario_PaymentFrequencies(t *testing.T) {
	h := setupTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "payment-frequencies"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	want := map[string]float64{
		"Quarterly":   9.130486953274868,
		"Semiannual":  6.302262723545864,
		"Semimonthly": 14.67933577325492,
		"Weekly":      16.453645111329042,
	}

	loans := decode[[]LoanDTO](t, do(t, h, http.MethodGet, "/api/loans", nil))
	require.Len(t, loans, 4)
	for _, l := range loans {
		history := decode[[]CalculationDTO](t, do(t, h, http.MethodGet, "/api/loans/"+l.ID+"/calculations", nil))
		require.Len(t, history, 1)
		assert.InDelta(t, want[l.Name], history[0].APR, regz.Tolerance, l.Name)
	}
}

func TestScenario_ConstructionDraws(t *testing.T) {
	h := setupTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "construction-draws"})
	require.Equal(t, http.StatusOK, rec.Code)

	history := decode[[]CalculationDTO](t, do(t, h, http.MethodGet, "/api/loans/construction-draws-1/calculations", nil))
	require.Len(t, history, 1)
	assert.Equal(t, "12.49", history[0].APRRounded)

	current := decode[ScenarioDTO](t, do(t, h, http.MethodGet, "/api/scenarios/current", nil))
	assert.Equal(t, "construction-draws", current.ID)
}

func TestScenario_LoadReplacesPrevious(t *testing.T) {
	h := setupTestHandler(t)

	do(t, h, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "payment-frequencies"})
	do(t, h, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "car-loan"})

	loans := decode[[]LoanDTO](t, do(t, h, http.MethodGet, "/api/loans", nil))
	require.Len(t, loans, 1)
	assert.Equal(t, "Car Loan", loans[0].Name)
}

func TestScenario_Unknown(t *testing.T) {
	rec := do(t, setupTestHandler(t), http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "balloon"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScenario_Reset(t *testing.T) {
	h := setupTestHandler(t)
	do(t, h, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "odd-days"})

	rec := do(t, h, http.MethodPost, "/api/scenarios/reset", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]LoanDTO](t, do(t, h, http.MethodGet, "/api/loans", nil)))
	assert.Equal(t, "null\n", do(t, h, http.MethodGet, "/api/scenarios/current", nil).Body.String())
}
