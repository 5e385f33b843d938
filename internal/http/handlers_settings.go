package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"talos/internal/core"
)

// handleSettings shows the settings form on GET and overwrites the singleton
// configuration on POST.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderSettingsForm(w, r)
	case http.MethodPost:
		s.saveSettings(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) renderSettingsForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	cfg, err := s.svc.Settings(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Settings load error", "error", err)
		cfg = core.DefaultSettings()
	}

	data := struct {
		Budget    string
		Threshold int
	}{
		Budget:    strconv.FormatFloat(cfg.MonthlyBudget.Euros(), 'f', 2, 64),
		Threshold: cfg.CaptureThreshold,
	}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<div class="placeholder">No template</div>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "settings_form.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "settings_form.html")
		_, _ = w.Write([]byte(`<div class="error">Could not render the settings form</div>`))
	}
}

func (s *Server) saveSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	budgetCents, err := core.ParseDecimalToCents(sanitizeInput(r.Form.Get("budget")))
	if err != nil {
		UnprocessableEntityError("Invalid budget amount").Write(w)
		return
	}

	threshold, err := strconv.Atoi(strings.TrimSpace(r.Form.Get("threshold")))
	if err != nil || threshold < 0 || threshold > 100 {
		UnprocessableEntityError("Threshold must be between 0 and 100").Write(w)
		return
	}

	cfg := core.Settings{
		MonthlyBudget:    core.Money{Cents: budgetCents},
		CaptureThreshold: threshold,
	}
	if err := s.svc.SaveSettings(r.Context(), cfg); err != nil {
		slog.ErrorContext(r.Context(), "Settings save error", "error", err)
		ErrorNotice(http.StatusInternalServerError, CodeStorage, "Could not save the settings").Write(w)
		return
	}

	s.flushViews()
	NewHTMXResponse().
		TriggerSettingsSaved().
		TriggerSuccessNotification("Settings saved").
		BodyHTML(`<div class="success">Budget set to ` + formatEuros(budgetCents) +
			`, capture threshold ` + strconv.Itoa(threshold) + `%</div>`).
		Write(w)
}
