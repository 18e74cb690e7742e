package chart

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"expenses/internal/core"
)

// ImageRenderer saves the chart as an image. The format follows the file
// extension of the output path.
type ImageRenderer struct {
	path   string
	unit   string
	width  vg.Length
	height vg.Length
}

func NewImageRenderer(path, unit string) *ImageRenderer {
	return &ImageRenderer{
		path:   path,
		unit:   unit,
		width:  8 * vg.Inch,
		height: 5 * vg.Inch,
	}
}

// Path returns where the image is written.
func (r *ImageRenderer) Path() string {
	return r.path
}

func (r *ImageRenderer) Render(ctx context.Context, bars []core.CategoryAmount) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = Title
	p.X.Label.Text = XLabel
	p.Y.Label.Text = yLabel(r.unit)
	p.Y.Min = 0

	values := make(plotter.Values, len(bars))
	names := make([]string, len(bars))
	for i, b := range bars {
		values[i] = b.Amount.InexactFloat64()
		names[i] = string(b.Category)
	}

	if len(bars) > 0 {
		bc, err := plotter.NewBarChart(values, vg.Points(30))
		if err != nil {
			return fmt.Errorf("build bar chart: %w", err)
		}
		bc.LineStyle.Width = vg.Length(0)
		bc.Color = plotutil.Color(0)
		p.Add(bc)
		p.NominalX(names...)
		p.X.Tick.Label.Rotation = math.Pi / 4
	}

	if err := p.Save(r.width, r.height, r.path); err != nil {
		return fmt.Errorf("save chart %s: %w", r.path, err)
	}
	return nil
}
