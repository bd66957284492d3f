/*
handlers.go - HTTP API handlers for the APR engine

PURPOSE:
  Exposes regz.Calculate via REST. Handles HTTP request/response, JSON
  decoding through the loan factory, result caching, and the calculation
  history kept in the store.

ENDPOINTS:
  APR:
    POST   /api/apr                        Compute from a loan document

  Loans:
    GET    /api/loans                      List saved loans
    POST   /api/loans                      Save a loan document
    GET    /api/loans/{id}                 Get a saved loan
    DELETE /api/loans/{id}                 Delete a loan and its history
    POST   /api/loans/{id}/calculate       Compute and record in history
    GET    /api/loans/{id}/calculations    Calculation history, newest first

  Scenarios:
    GET    /api/scenarios                  List demo loans
    POST   /api/scenarios/load             Load a demo loan set
    POST   /api/scenarios/reset            Clear all data

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Saved loans and history
  - Factory: Document to regz.Loan conversion
  - Cache: Optional result cache (nil disables caching)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Bad body, invalid loan, unsupported frequency, 60-day guard
  - 404: Loan not found
  - 422: Solver did not converge
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo loans
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/apr-engine/cache"
	"github.com/warp/apr-engine/factory"
	"github.com/warp/apr-engine/regz"
	"github.com/warp/apr-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Factory *factory.LoanFactory
	Cache   cache.Cache

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler. c may be nil.
func NewHandler(store *sqlite.Store, c cache.Cache) *Handler {
	return &Handler{
		Store:   store,
		Factory: factory.NewLoanFactory(),
		Cache:   c,
	}
}

// solve runs the engine, consulting the cache first. The loan is validated
// before the lookup, since the cache key merges same-day advances and would
// match a valid loan. Cache failures are logged and otherwise ignored.
func (h *Handler) solve(ctx context.Context, loan regz.Loan) (regz.Result, bool, error) {
	if err := regz.Validate(loan); err != nil {
		return regz.Result{}, false, err
	}

	if h.Cache != nil {
		res, hit, err := cache.GetResult(ctx, h.Cache, loan)
		if err != nil {
			log.Printf("[Cache] lookup failed: %v", err)
		} else if hit {
			return res, true, nil
		}
	}

	res, err := regz.Calculate(loan)
	if err != nil {
		return regz.Result{}, false, err
	}

	if h.Cache != nil {
		if err := cache.PutResult(ctx, h.Cache, loan, res); err != nil {
			log.Printf("[Cache] store failed: %v", err)
		}
	}
	return res, false, nil
}

// calculateAndRecord solves a saved loan and appends the result to its
// history.
func (h *Handler) calculateAndRecord(ctx context.Context, record sqlite.LoanRecord) (sqlite.CalculationRecord, error) {
	loan, err := h.Factory.ParseLoan(record.ConfigJSON)
	if err != nil {
		return sqlite.CalculationRecord{}, err
	}

	res, _, err := h.solve(ctx, loan)
	if err != nil {
		return sqlite.CalculationRecord{}, err
	}

	calc := sqlite.CalculationRecord{
		ID:            uuid.NewString(),
		LoanID:        record.ID,
		APR:           res.APR,
		Rounded:       res.Rounded(),
		FullPeriods:   res.Offset.Full,
		OddFraction:   res.Offset.Odd,
		Iterations:    res.Iterations,
		Restarted:     res.Restarted,
		ConfigVersion: record.Version,
		ComputedAt:    time.Now().UTC(),
	}
	if err := h.Store.SaveCalculation(ctx, calc); err != nil {
		return sqlite.CalculationRecord{}, err
	}
	return calc, nil
}

// =============================================================================
// APR HANDLERS
// =============================================================================

// ComputeAPR solves a loan document without saving it.
// POST /api/apr
func (h *Handler) ComputeAPR(w http.ResponseWriter, r *http.Request) {
	var req factory.LoanJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	loan, err := h.Factory.FromJSON(req)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	res, cached, err := h.solve(r.Context(), loan)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAPRResultDTO(res, cached))
}

// =============================================================================
// LOAN HANDLERS
// =============================================================================

// ListLoans returns all saved loans.
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListLoans(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list loans", err)
		return
	}

	dtos := make([]LoanDTO, len(records))
	for i, rec := range records {
		dtos[i] = toLoanDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLoan saves a loan document.
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	// Only loans the engine can solve are saved
	loan, err := h.Factory.FromJSON(req.Config)
	if err == nil {
		err = regz.Validate(loan)
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}

	record, err := h.saveLoan(r.Context(), req.ID, req.Config)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save loan", err)
		return
	}

	writeJSON(w, http.StatusCreated, toLoanDTO(*record))
}

// saveLoan stores a validated document and returns the stored record.
func (h *Handler) saveLoan(ctx context.Context, id string, config factory.LoanJSON) (*sqlite.LoanRecord, error) {
	if id == "" {
		id = uuid.NewString()
	}
	name := config.Name
	if name == "" {
		name = id
	}
	configJSON, err := json.Marshal(config)
	if err != nil {
		return nil, err
	}

	if err := h.Store.SaveLoan(ctx, sqlite.LoanRecord{
		ID:             id,
		Name:           name,
		PeriodsPerYear: config.PeriodsPerYear,
		ConfigJSON:     string(configJSON),
	}); err != nil {
		return nil, err
	}

	record, err := h.Store.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("loan %s vanished after save", id)
	}
	return record, nil
}

// GetLoan returns a single loan.
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.Store.GetLoan(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get loan", err)
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "Loan not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toLoanDTO(*record))
}

// DeleteLoan removes a loan and its history.
func (h *Handler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.Store.DeleteLoan(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete loan", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Loan not found", nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CalculateLoan solves a saved loan and records the result.
// POST /api/loans/{id}/calculate
func (h *Handler) CalculateLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	record, err := h.Store.GetLoan(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get loan", err)
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "Loan not found", nil)
		return
	}

	calc, err := h.calculateAndRecord(ctx, *record)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCalculationDTO(calc))
}

// ListCalculations returns a loan's calculation history.
// GET /api/loans/{id}/calculations
func (h *Handler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	record, err := h.Store.GetLoan(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get loan", err)
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "Loan not found", nil)
		return
	}

	history, err := h.Store.ListCalculations(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list calculations", err)
		return
	}

	dtos := make([]CalculationDTO, len(history))
	for i, c := range history {
		dtos[i] = toCalculationDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeEngineError maps factory and regz errors to a status and code.
func writeEngineError(w http.ResponseWriter, err error) {
	status, code, message := http.StatusInternalServerError, "", "Calculation failed"

	switch {
	case errors.Is(err, regz.ErrInvalidFrequency):
		status, code, message = http.StatusBadRequest, "invalid_frequency", "Unsupported payment frequency"
	case errors.Is(err, regz.ErrLoopBound):
		status, code, message = http.StatusBadRequest, "loop_bound", "Advance too far after first payment"
	case errors.Is(err, regz.ErrInvalidInput):
		status, code, message = http.StatusBadRequest, "invalid_input", "Invalid loan"
	case errors.Is(err, regz.ErrNoConvergence):
		status, code, message = http.StatusUnprocessableEntity, "no_convergence", "APR did not converge"
	}

	writeJSON(w, status, ErrorResponse{Error: message, Code: code, Details: err.Error()})
}
