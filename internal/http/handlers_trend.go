package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/wcharczuk/go-chart/v2"

	"talos/internal/report"
)

// handleTrend renders the smoothed spending curve partial as inline SVG.
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	totals, err := s.svc.Trend(r.Context(), s.trendMonths)
	if err != nil {
		slog.ErrorContext(r.Context(), "Trend data error", "error", err)
		_, _ = w.Write([]byte(`<section id="trend" class="trend"><div class="error" data-code="` + CodeStorage + `">Could not load the trend</div></section>`))
		return
	}

	g := report.DefaultGeometry()
	path, err := report.TrendPath(totals, g)
	if errors.Is(err, report.ErrInsufficientData) {
		_, _ = w.Write([]byte(`<section id="trend" class="trend"><div class="placeholder">Not enough months for a trend yet</div></section>`))
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Trend path error", "error", err)
		_, _ = w.Write([]byte(`<section id="trend" class="trend"><div class="error">Could not render the trend</div></section>`))
		return
	}

	points, _ := report.TrendPoints(totals, g)

	type labeled struct {
		X, Y  string
		Label string
	}
	data := struct {
		Width, Height int
		Path          string
		Points        []labeled
	}{
		Width:  int(g.Width),
		Height: int(g.Height),
		Path:   path,
	}
	for _, p := range points {
		data.Points = append(data.Points, labeled{
			X:     fmt.Sprintf("%.1f", p.X),
			Y:     fmt.Sprintf("%.1f", p.Y),
			Label: p.PeriodKey,
		})
	}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="trend" class="trend"><div class="placeholder">No template</div></section>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "trend.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "trend.html")
		_, _ = w.Write([]byte(`<section id="trend" class="trend"><div class="error">Could not render the trend</div></section>`))
	}
}

// handleTrendPNG renders the same trend as a PNG for sharing outside the app.
func (s *Server) handleTrendPNG(w http.ResponseWriter, r *http.Request) {
	totals, err := s.svc.Trend(r.Context(), s.trendMonths)
	if err != nil {
		slog.ErrorContext(r.Context(), "Trend data error", "error", err)
		http.Error(w, "could not load trend data", http.StatusInternalServerError)
		return
	}
	if len(totals) < 2 {
		http.Error(w, "not enough months for a trend", http.StatusNotFound)
		return
	}

	xs := make([]float64, len(totals))
	ys := make([]float64, len(totals))
	ticks := make([]chart.Tick, len(totals))
	for i, t := range totals {
		xs[i] = float64(i)
		ys[i] = t.Total.Euros()
		ticks[i] = chart.Tick{Value: float64(i), Label: t.PeriodKey}
	}

	graph := chart.Chart{
		Title:  "Monthly spending",
		Width:  700,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{Ticks: ticks},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if vf, isFloat := v.(float64); isFloat {
					return fmt.Sprintf("%.2f", vf)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "spent",
				XValues: xs,
				YValues: ys,
			},
		},
	}

	w.Header().Set("Content-Type", "image/png")
	if err := graph.Render(chart.PNG, w); err != nil {
		slog.ErrorContext(r.Context(), "Trend chart render error", "error", err)
	}
}
