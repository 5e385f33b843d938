package http

import (
	"html/template"
	"log/slog"
	"net/http"
)

// overviewView is the pre-rendered data for the month overview partial.
type overviewView struct {
	Period           string
	Budget           string
	Spent            string
	Remaining        string
	Overspent        bool
	PercentRemaining int
	Items            []movementItem
}

type movementItem struct {
	ID          int64
	Date        string
	Description string
	Amount      string
	Origin      string
	Confidence  int
	HasConf     bool
}

func (s *Server) overview(r *http.Request, periodKey string) (overviewView, error) {
	if view, found := s.overviewCache.Get(periodKey); found {
		slog.DebugContext(r.Context(), "Overview cache hit", "period", periodKey)
		return view, nil
	}

	summary, movements, err := s.svc.MonthOverview(r.Context(), periodKey)
	if err != nil {
		return overviewView{}, err
	}

	view := overviewView{
		Period:           periodKey,
		Budget:           formatEuros(summary.Budget.Cents),
		Spent:            formatEuros(summary.Spent.Cents),
		Remaining:        formatEuros(summary.Remaining.Cents),
		Overspent:        summary.Remaining.Cents < 0,
		PercentRemaining: int(summary.PercentRemaining + 0.5),
	}
	for _, m := range movements {
		item := movementItem{
			ID:          m.ID,
			Date:        m.CreatedAt.UTC().Format("02 Jan"),
			Description: template.HTMLEscapeString(m.Description),
			Amount:      formatEuros(m.Amount.Cents),
			Origin:      string(m.Provenance.Origin()),
		}
		if c, ok := m.Provenance.Confidence(); ok {
			item.Confidence = c
			item.HasConf = true
		}
		view.Items = append(view.Items, item)
	}

	s.overviewCache.Set(periodKey, view)
	return view, nil
}

// handleMonthOverview renders the budget summary and movement list for one
// period.
func (s *Server) handleMonthOverview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	periodKey := parsePeriodParam(r)

	view, err := s.overview(r, periodKey)
	if err != nil {
		slog.ErrorContext(r.Context(), "Month overview error", "error", err, "period", periodKey)
		_, _ = w.Write([]byte(`<section id="month-overview" class="month-overview"><div class="error" data-code="` + CodeStorage + `">Could not load the overview</div></section>`))
		return
	}
	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="month-overview" class="month-overview"><div class="placeholder">Spent: ` + view.Spent + `</div></section>`))
		return
	}

	if err := s.templates.ExecuteTemplate(w, "month_overview.html", view); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "month_overview.html", "period", periodKey)
		_, _ = w.Write([]byte(`<section id="month-overview" class="month-overview"><div class="error">Could not render the overview</div></section>`))
	}
}

// handleHistory renders every month's movements, most recent month first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	periods, groups, err := s.svc.History(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "History error", "error", err)
		_, _ = w.Write([]byte(`<section id="history" class="history"><div class="error" data-code="` + CodeStorage + `">Could not load the history</div></section>`))
		return
	}

	type monthGroup struct {
		Period string
		Label  string
		Total  string
		Items  []movementItem
	}
	var data struct {
		Months []monthGroup
	}
	for _, p := range periods {
		group := monthGroup{Period: p, Label: formatPeriodLabel(p)}
		var total int64
		for _, m := range groups[p] {
			total += m.Amount.Cents
			item := movementItem{
				ID:          m.ID,
				Date:        m.CreatedAt.UTC().Format("02 Jan"),
				Description: template.HTMLEscapeString(m.Description),
				Amount:      formatEuros(m.Amount.Cents),
				Origin:      string(m.Provenance.Origin()),
			}
			if c, ok := m.Provenance.Confidence(); ok {
				item.Confidence = c
				item.HasConf = true
			}
			group.Items = append(group.Items, item)
		}
		group.Total = formatEuros(total)
		data.Months = append(data.Months, group)
	}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="history" class="history"><div class="placeholder">No template</div></section>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "history.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "history.html")
		_, _ = w.Write([]byte(`<section id="history" class="history"><div class="error">Could not render the history</div></section>`))
	}
}
