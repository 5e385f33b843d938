package report

import (
	"errors"
	"fmt"
	"strings"

	"talos/internal/core"
)

// ErrInsufficientData is returned when fewer than two periods have spend,
// which is not enough to draw a curve.
var ErrInsufficientData = errors.New("need at least 2 periods for a trend")

// Geometry describes the drawing area for the trend curve.
type Geometry struct {
	Width, Height                        float64
	PadTop, PadRight, PadBottom, PadLeft float64
}

// DefaultGeometry matches the 350x200 viewBox of the trend widget.
func DefaultGeometry() Geometry {
	return Geometry{
		Width: 350, Height: 200,
		PadTop: 20, PadRight: 20, PadBottom: 30, PadLeft: 40,
	}
}

// TrendPoint is a period total placed in drawing coordinates.
type TrendPoint struct {
	X, Y      float64
	PeriodKey string
	Total     core.Money
}

// TrendPoints spreads the totals evenly across the drawing area and scales
// them against the maximum total.
func TrendPoints(totals []PeriodTotal, g Geometry) ([]TrendPoint, error) {
	if len(totals) < 2 {
		return nil, ErrInsufficientData
	}

	var maxCents int64
	for _, t := range totals {
		if t.Total.Cents > maxCents {
			maxCents = t.Total.Cents
		}
	}
	if maxCents == 0 {
		return nil, ErrInsufficientData
	}

	chartW := g.Width - g.PadLeft - g.PadRight
	chartH := g.Height - g.PadTop - g.PadBottom

	points := make([]TrendPoint, len(totals))
	for i, t := range totals {
		frac := float64(i) / float64(len(totals)-1)
		scale := float64(t.Total.Cents) / float64(maxCents)
		points[i] = TrendPoint{
			X:         g.PadLeft + frac*chartW,
			Y:         g.PadTop + chartH - scale*chartH,
			PeriodKey: t.PeriodKey,
			Total:     t.Total,
		}
	}
	return points, nil
}

// TrendPath renders the totals as an SVG path, smoothing the polyline with
// Catmull-Rom derived cubic Bezier segments (tension 0.5). n points produce
// one "M" command followed by n-1 "C" segments.
func TrendPath(totals []PeriodTotal, g Geometry) (string, error) {
	points, err := TrendPoints(totals, g)
	if err != nil {
		return "", err
	}

	const tension = 0.5
	var b strings.Builder
	fmt.Fprintf(&b, "M %s,%s", coord(points[0].X), coord(points[0].Y))
	for i := 1; i < len(points); i++ {
		p0 := points[max(i-2, 0)]
		p1 := points[i-1]
		p2 := points[i]
		p3 := points[min(i+1, len(points)-1)]

		cp1x := p1.X + (p2.X-p0.X)/6*tension
		cp1y := p1.Y + (p2.Y-p0.Y)/6*tension
		cp2x := p2.X - (p3.X-p1.X)/6*tension
		cp2y := p2.Y - (p3.Y-p1.Y)/6*tension

		fmt.Fprintf(&b, " C %s,%s %s,%s %s,%s",
			coord(cp1x), coord(cp1y), coord(cp2x), coord(cp2y), coord(p2.X), coord(p2.Y))
	}
	return b.String(), nil
}

func coord(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
