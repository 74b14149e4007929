package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/felixgeelhaar/covergate/internal/application"
	"github.com/felixgeelhaar/covergate/internal/domain"
)

// Writer renders gating results. Now stamps HTML reports and defaults to time.Now.
type Writer struct {
	Now func() time.Time
}

func (wr Writer) Write(w io.Writer, result domain.Result, format application.OutputFormat) error {
	switch format {
	case application.OutputJSON:
		payload := struct {
			Units   []domain.UnitResult `json:"units"`
			Failing []string            `json:"failing"`
			Summary struct {
				Pass   bool    `json:"pass"`
				Target float64 `json:"target"`
				Mean   float64 `json:"mean"`
			} `json:"summary"`
			Warnings []string `json:"warnings,omitempty"`
		}{
			Units:    result.Units,
			Failing:  result.Failing,
			Warnings: result.Warnings,
		}
		if payload.Failing == nil {
			payload.Failing = []string{}
		}
		payload.Summary.Pass = result.Passed
		payload.Summary.Target = result.Target
		payload.Summary.Mean = result.MeanPercent()
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case application.OutputBrief:
		return writeBrief(w, result)
	case application.OutputHTML:
		now := time.Now()
		if wr.Now != nil {
			now = wr.Now()
		}
		return writeHTML(w, result, now)
	case application.OutputText, "":
		return writeText(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

type palette struct {
	enabled  bool
	pass     lipgloss.Style
	fail     lipgloss.Style
	override lipgloss.Style
	up       lipgloss.Style
	down     lipgloss.Style
}

func newPalette(w io.Writer) palette {
	return palette{
		enabled:  colorEnabled(w),
		pass:     lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")).Bold(true),
		fail:     lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true),
		override: lipgloss.NewStyle().Foreground(lipgloss.Color("#CA8A04")).Bold(true),
		up:       lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")),
		down:     lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")),
	}
}

func (p palette) status(s domain.Status) string {
	text := string(s)
	if !p.enabled {
		return text
	}
	switch s {
	case domain.StatusPass:
		return p.pass.Render(text)
	case domain.StatusFail:
		return p.fail.Render(text)
	default:
		return p.override.Render(text)
	}
}

func formatDelta(d *float64) string {
	if d == nil {
		return "-"
	}
	return fmt.Sprintf("%+.1f%%", *d)
}

func hasDeltas(result domain.Result) bool {
	for _, u := range result.Units {
		if u.Delta != nil {
			return true
		}
	}
	return false
}

// delta pads before styling so escape codes never count toward the width.
func (p palette) delta(d *float64, width int) string {
	text := fmt.Sprintf("%-*s", width, formatDelta(d))
	if d == nil || !p.enabled {
		return text
	}
	if *d > 0 {
		return p.up.Render(text)
	}
	if *d < 0 {
		return p.down.Render(text)
	}
	return text
}

// writeText prints the unit table. Coloured cells only ever appear in the
// trailing segment of a row, which tabwriter does not align.
func writeText(w io.Writer, result domain.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	withDeltas := hasDeltas(result)
	width := len("Delta")
	if withDeltas {
		for _, u := range result.Units {
			width = max(width, len(formatDelta(u.Delta)))
		}
		_, _ = fmt.Fprintf(tw, "Unit\tCoverage\tTarget\t%-*s  Status\n", width, "Delta")
	} else {
		_, _ = fmt.Fprintln(tw, "Unit\tCoverage\tTarget\tStatus")
	}

	colors := newPalette(w)
	for _, u := range result.Units {
		if withDeltas {
			_, _ = fmt.Fprintf(tw, "%s\t%.1f%%\t%.1f%%\t%s  %s\n", u.Name, u.Percent, u.Target, colors.delta(u.Delta, width), colors.status(u.Status))
		} else {
			_, _ = fmt.Fprintf(tw, "%s\t%.1f%%\t%.1f%%\t%s\n", u.Name, u.Percent, u.Target, colors.status(u.Status))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if gating := result.GatingUnits(); len(gating) > 0 {
		fmt.Fprintln(w, "\nGating units (below target):")
		for _, u := range gating {
			fmt.Fprintf(w, "  - %s (%.1f%% vs %.1f%%, %.1f short)\n", u.Name, u.Percent, u.Target, u.Shortfall())
		}
	}
	writeSection(w, "Overridden to fail:", result.OverriddenToFail())
	writeSection(w, "Overridden to pass:", result.OverriddenToPass())

	if result.HasWarnings() {
		fmt.Fprintln(w, "\nWarnings:")
		for _, warn := range result.Warnings {
			fmt.Fprintf(w, "  - %s\n", warn)
		}
	}

	fmt.Fprintf(w, "\n%s\n", result.Summary())
	return nil
}

func writeSection(w io.Writer, title string, units []domain.UnitResult) {
	if len(units) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	for _, u := range units {
		fmt.Fprintf(w, "  - %s (%.1f%% vs %.1f%%)\n", u.Name, u.Percent, u.Target)
	}
}

func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// writeBrief outputs a single-line summary.
// Format: STATUS | XX.X% mean | N/M units passing [| failing: a (XX.X%), b (XX.X%)] [| K warnings]
func writeBrief(w io.Writer, result domain.Result) error {
	status := "PASS"
	if !result.Passed {
		status = "FAIL"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s | %.1f%% mean | %d/%d units passing", status, result.MeanPercent(), result.PassingCount(), len(result.Units)))

	if len(result.Failing) > 0 {
		sb.WriteString(" | failing:")
		for i, name := range result.Failing {
			if i > 0 {
				sb.WriteString(",")
			}
			percent := 0.0
			if u := result.UnitByName(name); u != nil {
				percent = u.Percent
			}
			sb.WriteString(fmt.Sprintf(" %s (%.1f%%)", name, percent))
		}
	}

	if result.HasWarnings() {
		sb.WriteString(fmt.Sprintf(" | %d warnings", len(result.Warnings)))
	}

	sb.WriteString("\n")
	_, err := w.Write([]byte(sb.String()))
	return err
}
