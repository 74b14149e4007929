// Package badge renders shields-style SVG coverage badges.
package badge

import (
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/felixgeelhaar/covergate/internal/domain"
)

type Style string

const (
	StyleFlat       Style = "flat"
	StyleFlatSquare Style = "flat-square"
)

const (
	colorPass = "#4c1"
	colorWarn = "#dfb317"
	colorFail = "#e05d44"
)

// Options describes one badge. When Passed is set the badge colour follows
// the gate verdict instead of the coverage tiers.
type Options struct {
	Label   string
	Percent float64
	Passed  *bool
	Style   Style
}

var badgeTemplate = template.Must(template.New("badge").Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="20" role="img" aria-label="{{.Label}}: {{.Value}}">
  <title>{{.Label}}: {{.Value}}</title>
  <linearGradient id="s" x2="0" y2="100%">
    <stop offset="0" stop-color="#bbb" stop-opacity=".1"/>
    <stop offset="1" stop-opacity=".1"/>
  </linearGradient>
  <clipPath id="r">
    <rect width="{{.Width}}" height="20" rx="{{.Rx}}" fill="#fff"/>
  </clipPath>
  <g clip-path="url(#r)">
    <rect width="{{.LabelWidth}}" height="20" fill="#555"/>
    <rect x="{{.LabelWidth}}" width="{{.ValueWidth}}" height="20" fill="{{.Color}}"/>
    <rect width="{{.Width}}" height="20" fill="url(#s)"/>
  </g>
  <g fill="#fff" text-anchor="middle" font-family="Verdana,Geneva,DejaVu Sans,sans-serif" font-size="11">
    <text x="{{.LabelX}}" y="14">{{.Label}}</text>
    <text x="{{.ValueX}}" y="14">{{.Value}}</text>
  </g>
</svg>
`))

type badgeData struct {
	Label      string
	Value      string
	Color      string
	Width      int
	LabelWidth int
	ValueWidth int
	LabelX     int
	ValueX     int
	Rx         int
}

// charWidth approximates Verdana 11px glyph width.
const charWidth = 7

func Generate(w io.Writer, opts Options) error {
	if opts.Label == "" {
		opts.Label = "coverage"
	}
	value := formatPercent(opts.Percent)
	labelWidth := len(opts.Label)*charWidth + 10
	valueWidth := len(value)*charWidth + 10

	rx := 3
	if opts.Style == StyleFlatSquare {
		rx = 0
	}

	return badgeTemplate.Execute(w, badgeData{
		Label:      opts.Label,
		Value:      value,
		Color:      colorFor(opts),
		Width:      labelWidth + valueWidth,
		LabelWidth: labelWidth,
		ValueWidth: valueWidth,
		LabelX:     labelWidth / 2,
		ValueX:     labelWidth + valueWidth/2,
		Rx:         rx,
	})
}

// WriteFile renders the badge to path.
func WriteFile(path string, opts Options) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Generate(file, opts); err != nil {
		_ = file.Close()
		return fmt.Errorf("render badge: %w", err)
	}
	return file.Close()
}

func formatPercent(p float64) string {
	if p == float64(int(p)) {
		return fmt.Sprintf("%.0f%%", p)
	}
	return fmt.Sprintf("%.1f%%", p)
}

func colorFor(opts Options) string {
	if opts.Passed != nil {
		if *opts.Passed {
			return colorPass
		}
		return colorFail
	}
	switch {
	case opts.Percent >= 90:
		return colorPass
	case opts.Percent >= 60:
		return colorWarn
	default:
		return colorFail
	}
}

// Writer renders gating results as badges coloured by verdict.
type Writer struct {
	Label string
	Style Style
}

func (w Writer) WriteBadge(path string, result domain.Result) error {
	passed := result.Passed
	return WriteFile(path, Options{
		Label:   w.Label,
		Percent: result.MeanPercent(),
		Passed:  &passed,
		Style:   w.Style,
	})
}
