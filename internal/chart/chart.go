// Package chart renders category totals as a bar chart, either as text in
// the terminal or as an image file.
package chart

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"expenses/internal/core"
)

const (
	Title  = "Total Expenses by Category"
	XLabel = "Categories"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatPNG  = "png"
	FormatSVG  = "svg"
)

// Renderer draws one bar per category. Bars arrive sorted by category label.
type Renderer interface {
	Render(ctx context.Context, bars []core.CategoryAmount) error
}

// Options selects and configures a renderer.
type Options struct {
	Format string
	// Output is the image path for png and svg.
	Output string
	// Unit labels the amount axis, for example "Rs.".
	Unit string
	// Width is the longest text bar in characters.
	Width int
}

// New returns the renderer for opts.Format. Text charts are written to w.
func New(opts Options, w io.Writer) (Renderer, error) {
	switch strings.ToLower(opts.Format) {
	case FormatText, "":
		return NewTextRenderer(w, opts.Unit, opts.Width), nil
	case FormatPNG, FormatSVG:
		if opts.Output == "" {
			return nil, fmt.Errorf("chart output path is required for %s charts", opts.Format)
		}
		return NewImageRenderer(opts.Output, opts.Unit), nil
	default:
		return nil, fmt.Errorf("unsupported chart format %q", opts.Format)
	}
}

// FormatForPath returns the image format implied by the file extension.
func FormatForPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func yLabel(unit string) string {
	if unit == "" {
		return "Total Expense"
	}
	return fmt.Sprintf("Total Expense (%s)", unit)
}
