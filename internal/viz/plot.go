package viz

import (
	"errors"
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/odesolve/internal/sampler"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Cyan, asciigraph.Magenta, asciigraph.Yellow,
	asciigraph.Green, asciigraph.Red, asciigraph.Blue,
}

type PlotOptions struct {
	Width  int
	Height int
	// Components to draw; nil draws every component.
	Components []int
	// Exact overlays the closed-form solution when known.
	Exact bool
}

// Plot charts state components of a trajectory against sample index.
func Plot(tr *sampler.Trajectory, opts PlotOptions) (string, error) {
	if len(tr.Samples) == 0 {
		return "", errors.New("trajectory has no samples")
	}
	dim := len(tr.Samples[0].X)

	comps := opts.Components
	if comps == nil {
		for i := 0; i < dim; i++ {
			comps = append(comps, i)
		}
	}

	var series [][]float64
	var legends []string
	for _, c := range comps {
		if c < 0 || c >= dim {
			return "", fmt.Errorf("component %d out of range [0, %d)", c, dim)
		}
		series = append(series, tr.Component(c))
		legends = append(legends, fmt.Sprintf("x%d", c))
	}
	if opts.Exact && tr.HasExact {
		for _, c := range comps {
			exact := make([]float64, len(tr.Samples))
			for i, s := range tr.Samples {
				exact[i] = s.Exact[c]
			}
			series = append(series, exact)
			legends = append(legends, fmt.Sprintf("exact%d", c))
		}
	}

	graphOpts := []asciigraph.Option{
		asciigraph.Height(max(opts.Height, 4)),
		asciigraph.Caption(fmt.Sprintf("%s (%s) t=[%g, %g]", tr.Problem, tr.Method, tr.Samples[0].T, tr.Samples[len(tr.Samples)-1].T)),
		asciigraph.SeriesColors(seriesColors[:min(len(series), len(seriesColors))]...),
		asciigraph.SeriesLegends(legends...),
	}
	if opts.Width > 0 {
		graphOpts = append(graphOpts, asciigraph.Width(opts.Width))
	}
	return asciigraph.PlotMany(series, graphOpts...), nil
}

// Portrait draws component j against component i on a braille canvas.
func Portrait(tr *sampler.Trajectory, i, j, width, height int) string {
	c := NewCanvas(width, height)
	c.DrawPath(tr.Component(i), tr.Component(j))
	return c.String()
}
