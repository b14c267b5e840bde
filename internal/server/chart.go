package server

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/meltforce/liftlog/internal/progress"
)

const (
	chartWidth   = 720.0
	chartHeight  = 360.0
	chartPadLeft = 56.0
	chartPadTop  = 32.0
	chartPadSide = 24.0
	chartPadBase = 40.0
	chartYTicks  = 5
)

type chartTick struct {
	Pos   float64
	Label string
}

type chartPoint struct {
	X, Y  float64
	Label string
}

type chartData struct {
	Exercise      string
	Width, Height float64
	Left, Right   float64
	Top, Bottom   float64
	LabelX, DateY float64
	YTicks        []chartTick
	XTicks        []chartTick
	Points        []chartPoint
	Polyline      string
}

// buildChart lays out a weight-over-time line chart. The series must have
// at least one point.
func buildChart(series progress.Series) chartData {
	c := chartData{
		Exercise: series.Exercise,
		Width:    chartWidth,
		Height:   chartHeight,
		Left:     chartPadLeft,
		Right:    chartWidth - chartPadSide,
		Top:      chartPadTop,
		Bottom:   chartHeight - chartPadBase,
		LabelX:   chartPadLeft - 8,
		DateY:    chartHeight - chartPadBase + 20,
	}

	lo, hi := series.Points[0].Weight, series.Points[0].Weight
	for _, p := range series.Points {
		lo = min(lo, p.Weight)
		hi = max(hi, p.Weight)
	}
	if hi == lo {
		lo, hi = lo-5, hi+5
	}
	if lo < 0 {
		lo = 0
	}

	first := series.Points[0].Date
	last := series.Points[len(series.Points)-1].Date
	span := last.Sub(first.Time).Hours()

	xOf := func(i int) float64 {
		if span == 0 {
			if len(series.Points) == 1 {
				return (c.Left + c.Right) / 2
			}
			return c.Left + (c.Right-c.Left)*float64(i)/float64(len(series.Points)-1)
		}
		h := series.Points[i].Date.Sub(first.Time).Hours()
		return c.Left + (c.Right-c.Left)*h/span
	}
	yOf := func(w float64) float64 {
		return c.Bottom - (c.Bottom-c.Top)*(w-lo)/(hi-lo)
	}

	coords := make([]string, 0, len(series.Points))
	for i, p := range series.Points {
		pt := chartPoint{
			X:     xOf(i),
			Y:     yOf(p.Weight),
			Label: p.Date.String() + ": " + strconv.FormatFloat(p.Weight, 'f', -1, 64) + " kg",
		}
		c.Points = append(c.Points, pt)
		coords = append(coords, strconv.FormatFloat(pt.X, 'f', 1, 64)+","+strconv.FormatFloat(pt.Y, 'f', 1, 64))
	}
	c.Polyline = strings.Join(coords, " ")

	for i := 0; i < chartYTicks; i++ {
		w := lo + (hi-lo)*float64(i)/float64(chartYTicks-1)
		c.YTicks = append(c.YTicks, chartTick{Pos: yOf(w), Label: strconv.FormatFloat(w, 'f', 1, 64)})
	}

	c.XTicks = append(c.XTicks, chartTick{Pos: c.Points[0].X, Label: first.String()})
	if len(series.Points) > 1 {
		c.XTicks = append(c.XTicks, chartTick{Pos: c.Points[len(c.Points)-1].X, Label: last.String()})
	}
	return c
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	exercise := r.URL.Query().Get("exercise")
	if exercise == "" {
		http.Error(w, "exercise parameter required", http.StatusBadRequest)
		return
	}
	series := progress.SeriesFor(s.store.Records(), exercise)
	if series.Empty() {
		http.Error(w, "no numeric weight data for "+exercise, http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := s.pages.chart.Execute(&buf, buildChart(series)); err != nil {
		s.log.Error("chart render error", "exercise", exercise, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	buf.WriteTo(w)
}
