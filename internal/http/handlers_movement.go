package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"talos/internal/core"
	"talos/internal/store"
)

// handleCreateMovement records a movement from the entry form, manual or
// capture-applied.
func (s *Server) handleCreateMovement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	amountStr := sanitizeInput(r.Form.Get("amount"))
	desc := sanitizeInput(r.Form.Get("description"))
	origin := sanitizeInput(r.Form.Get("origin"))

	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil {
		UnprocessableEntityError("Invalid amount").Write(w)
		return
	}

	// An amount accepted from the receipt scanner carries its provenance
	// through hidden form fields; everything else is a manual entry.
	if origin == string(core.OriginCapture) {
		confidence, err := strconv.Atoi(strings.TrimSpace(r.Form.Get("confidence")))
		if err != nil || confidence < 0 || confidence > 100 {
			UnprocessableEntityError("Invalid capture confidence").Write(w)
			return
		}
		if _, err := s.svc.AddCaptured(r.Context(), core.Money{Cents: cents}, desc, confidence); err != nil {
			slog.ErrorContext(r.Context(), "Movement create error", "error", err, "amount_cents", cents, "origin", origin)
			ErrorNotice(http.StatusInternalServerError, CodeStorage, "Could not save the movement").Write(w)
			return
		}
	} else if _, err := s.svc.AddManual(r.Context(), core.Money{Cents: cents}, desc); err != nil {
		slog.ErrorContext(r.Context(), "Movement create error", "error", err, "amount_cents", cents)
		ErrorNotice(http.StatusInternalServerError, CodeStorage, "Could not save the movement").Write(w)
		return
	}

	s.flushViews()
	periodKey := core.PeriodKeyFor(time.Now())
	NewHTMXResponse().
		TriggerMovementCreated(periodKey).
		TriggerFormReset().
		TriggerSuccessNotification("Movement recorded").
		BodyHTML(`<div class="success">Saved ` + formatEuros(cents) +
			` ` + template.HTMLEscapeString(desc) + `</div>`).
		Write(w)
}

// handleUpdateMovement replaces the amount and description of an existing
// movement. Creation time and provenance are immutable.
func (s *Server) handleUpdateMovement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	id, err := parseID(r.Form.Get("id"))
	if err != nil {
		BadRequestError("Invalid movement id").Write(w)
		return
	}

	cents, err := core.ParseDecimalToCents(sanitizeInput(r.Form.Get("amount")))
	if err != nil {
		UnprocessableEntityError("Invalid amount").Write(w)
		return
	}
	desc := sanitizeInput(r.Form.Get("description"))

	m := core.Movement{
		ID:          id,
		Amount:      core.Money{Cents: cents},
		Description: desc,
		PeriodKey:   parsePeriodParam(r),
	}
	if err := s.svc.UpdateMovement(r.Context(), m); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ErrorNotice(http.StatusNotFound, CodeStorage, "Movement no longer exists").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Movement update error", "error", err, "id", id)
		ErrorNotice(http.StatusInternalServerError, CodeStorage, "Could not update the movement").Write(w)
		return
	}

	s.flushViews()
	NewHTMXResponse().
		TriggerMovementUpdated(m.PeriodKey).
		TriggerSuccessNotification("Movement updated").
		BodyHTML(`<div class="success">Updated to ` + formatEuros(cents) + `</div>`).
		Write(w)
}

// handleDeleteMovement removes a movement. Deleting an id that is already
// gone still succeeds.
func (s *Server) handleDeleteMovement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	id, err := parseID(r.Form.Get("id"))
	if err != nil {
		BadRequestError("Invalid movement id").Write(w)
		return
	}

	if err := s.svc.DeleteMovement(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Movement delete error", "error", err, "id", id)
		ErrorNotice(http.StatusInternalServerError, CodeStorage, "Could not delete the movement").Write(w)
		return
	}

	s.flushViews()
	NewHTMXResponse().
		TriggerMovementDeleted().
		TriggerSuccessNotification("Movement deleted").
		BodyHTML(`<div class="success">Movement deleted</div>`).
		Write(w)
}
