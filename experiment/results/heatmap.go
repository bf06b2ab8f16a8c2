package results

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/mat"

	"github.com/regfish7/anomaly/experiment"
)

// shades maps a score in [0,1] to a glyph so the map stays readable on
// terminals without colour.
var shades = []rune{' ', '░', '▒', '▓', '█'}

// ramp is a dark-to-bright ANSI 256 palette.
var ramp = []string{"17", "18", "19", "25", "31", "37", "43", "79", "115", "157", "193", "226"}

// HeatmapSink renders the score matrix of a sweep to W.
type HeatmapSink struct {
	W io.Writer
}

// Record implements experiment.ResultSink.
func (s HeatmapSink) Record(res *experiment.Result) error {
	r := lipgloss.NewRenderer(s.W)
	_, err := io.WriteString(s.W, RenderHeatmap(r, res.Label, res.Scores))
	return err
}

// RenderHeatmap draws scores with rows m=1..M from top to bottom and
// columns t=1..T from left to right. NaN cells render as '?'.
func RenderHeatmap(r *lipgloss.Renderer, label experiment.Label, scores mat.Matrix) string {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	title := r.NewStyle().Bold(true)
	axis := r.NewStyle().Foreground(lipgloss.Color("241"))

	rows, cols := scores.Dims()
	width := len(fmt.Sprint(rows))

	var b strings.Builder
	b.WriteString(title.Render(fmt.Sprintf("K=%d", label.K)))
	if label.Algorithm != "" {
		b.WriteString(axis.Render(fmt.Sprintf("  %s N=%d runs=%g tv=%t",
			label.Algorithm, label.N, label.Threshold, label.TimeVarying)))
	}
	b.WriteByte('\n')
	b.WriteString(axis.Render(fmt.Sprintf("%*s t→", width, "m")))
	b.WriteByte('\n')

	for i := range rows {
		b.WriteString(axis.Render(fmt.Sprintf("%*d ", width, i+1)))
		for j := range cols {
			b.WriteString(cell(r, scores.At(i, j)))
		}
		b.WriteByte('\n')
	}
	b.WriteString(axis.Render(fmt.Sprintf("%*s 0 '%c' … 1 '%c'", width, "", shades[0], shades[len(shades)-1])))
	b.WriteByte('\n')
	return b.String()
}

func cell(r *lipgloss.Renderer, v float64) string {
	if math.IsNaN(v) {
		return "?"
	}
	v = min(max(v, 0), 1)
	glyph := shades[int(math.Round(v*float64(len(shades)-1)))]
	color := ramp[int(math.Round(v*float64(len(ramp)-1)))]
	return r.NewStyle().Foreground(lipgloss.Color(color)).Render(string(glyph))
}
