package chart

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
)

const (
	DefaultWidth = 40
	barRune      = "█"
)

// TextRenderer draws horizontal bars scaled to the largest total.
type TextRenderer struct {
	w     io.Writer
	unit  string
	width int
}

func NewTextRenderer(w io.Writer, unit string, width int) *TextRenderer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &TextRenderer{w: w, unit: unit, width: width}
}

func (r *TextRenderer) Render(ctx context.Context, bars []core.CategoryAmount) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	labelWidth := utf8.RuneCountInString(XLabel)
	top := decimal.Zero
	for _, b := range bars {
		if n := utf8.RuneCountInString(string(b.Category)); n > labelWidth {
			labelWidth = n
		}
		if b.Amount.GreaterThan(top) {
			top = b.Amount
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s\n", Title)
	fmt.Fprintf(&sb, "%-*s | %s\n", labelWidth, XLabel, yLabel(r.unit))
	sb.WriteString(strings.Repeat("-", labelWidth+3+r.width) + "\n")
	for _, b := range bars {
		n := r.barLength(b.Amount, top)
		fmt.Fprintf(&sb, "%-*s | %s%s %s\n",
			labelWidth, b.Category,
			strings.Repeat(barRune, n),
			strings.Repeat(" ", r.width-n),
			core.FormatAmount(r.unit, b.Amount))
	}

	_, err := io.WriteString(r.w, sb.String())
	return err
}

// barLength scales amount to the chart width; any non-zero amount gets at
// least one block.
func (r *TextRenderer) barLength(amount, top decimal.Decimal) int {
	if top.IsZero() || amount.IsZero() {
		return 0
	}
	n := int(amount.Mul(decimal.NewFromInt(int64(r.width))).Div(top).Round(0).IntPart())
	if n < 1 {
		n = 1
	}
	if n > r.width {
		n = r.width
	}
	return n
}
