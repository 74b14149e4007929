package wizard

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/covergate/internal/application"
	"github.com/felixgeelhaar/covergate/internal/domain"
)

type (
	wizardState int
	override    int

	initWizardModel struct {
		state      wizardState
		reportPath string
		target     float64
		units      []wizardUnit
		cursor     int
		confirmed  bool
		aborted    bool
	}

	wizardUnit struct {
		name     string
		percent  float64
		override override
	}
)

const (
	stateIntro wizardState = iota
	stateEdit
	stateConfirm
)

const (
	overrideNone override = iota
	overridePass
	overrideFail
)

// DefaultTarget seeds the wizard when neither flags nor an existing config name one.
const DefaultTarget = 80

func (o override) String() string {
	switch o {
	case overridePass:
		return "pass"
	case overrideFail:
		return "fail"
	default:
		return "none"
	}
}

// Run walks the user through choosing a target and per-unit overrides for the
// units in coverage. The returned bool is false when the user cancelled.
func Run(seed application.FileConfig, coverage domain.CoverageMap, stdout io.Writer, stdin io.Reader) (application.FileConfig, bool, error) {
	return runInitWizard(seed, coverage, stdout, stdin)
}

func runInitWizard(seed application.FileConfig, coverage domain.CoverageMap, stdout io.Writer, stdin io.Reader) (application.FileConfig, bool, error) {
	model := newInitWizardModel(seed, coverage)
	program := tea.NewProgram(model, tea.WithInput(stdin), tea.WithOutput(stdout))
	res, err := program.Run()
	if err != nil {
		return seed, false, err
	}
	finalModel, ok := res.(*initWizardModel)
	if !ok {
		return seed, false, fmt.Errorf("unexpected wizard state")
	}
	if finalModel.aborted || !finalModel.confirmed {
		return seed, false, nil
	}
	return finalModel.toFileConfig(), true, nil
}

// Seed returns the config the wizard would write without user input.
func Seed(seed application.FileConfig, coverage domain.CoverageMap) application.FileConfig {
	return newInitWizardModel(seed, coverage).toFileConfig()
}

func newInitWizardModel(seed application.FileConfig, coverage domain.CoverageMap) *initWizardModel {
	target := float64(DefaultTarget)
	if seed.CoverageTarget != nil {
		target = *seed.CoverageTarget
	}
	reportPath := ""
	if seed.CoverageReport != nil {
		reportPath = *seed.CoverageReport
	}

	pass := make(map[string]struct{}, len(seed.PassOverride))
	for _, name := range seed.PassOverride {
		pass[name] = struct{}{}
	}
	fail := make(map[string]struct{}, len(seed.FailOverride))
	for _, name := range seed.FailOverride {
		fail[name] = struct{}{}
	}

	names := coverage.Names()
	units := make([]wizardUnit, len(names))
	for i, name := range names {
		percent, _ := coverage.Percent(name)
		mode := overrideNone
		if _, ok := pass[name]; ok {
			mode = overridePass
		}
		if _, ok := fail[name]; ok {
			mode = overrideFail
		}
		units[i] = wizardUnit{name: name, percent: percent, override: mode}
	}

	return &initWizardModel{
		state:      stateIntro,
		reportPath: reportPath,
		target:     target,
		units:      units,
	}
}

func (m *initWizardModel) Init() tea.Cmd {
	return nil
}

func (m *initWizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			switch m.state {
			case stateIntro:
				m.state = stateEdit
			case stateEdit:
				m.state = stateConfirm
			case stateConfirm:
				m.confirmed = true
				return m, tea.Quit
			}
		case "esc":
			if m.state == stateConfirm {
				m.state = stateEdit
			}
		case "up", "k":
			if m.state == stateEdit {
				m.moveCursor(-1)
			}
		case "down", "j":
			if m.state == stateEdit {
				m.moveCursor(1)
			}
		case "left", "-":
			if m.state == stateEdit {
				m.adjustSelection(-1)
			}
		case "right", "+", " ":
			if m.state == stateEdit {
				m.adjustSelection(1)
			}
		}
	}
	return m, nil
}

func (m *initWizardModel) View() string {
	switch m.state {
	case stateIntro:
		return m.viewIntro()
	case stateEdit:
		return m.viewEdit()
	case stateConfirm:
		return m.viewConfirm()
	default:
		return ""
	}
}

func (m *initWizardModel) moveCursor(delta int) {
	max := len(m.units)
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor > max {
		m.cursor = max
	}
}

// adjustSelection moves the target by 5 points per step on row 0 and cycles
// the override of the selected unit otherwise.
func (m *initWizardModel) adjustSelection(step int) {
	if m.cursor == 0 {
		m.target = clamp(m.target+float64(step*5), 0, 100)
		return
	}
	m.cycleOverride(m.cursor-1, step)
}

func (m *initWizardModel) cycleOverride(index, step int) {
	if index < 0 || index >= len(m.units) {
		return
	}
	next := (int(m.units[index].override) + step) % 3
	if next < 0 {
		next += 3
	}
	m.units[index].override = override(next)
}

func (m *initWizardModel) preview() domain.Result {
	assemblies := make([]domain.Assembly, len(m.units))
	for i, u := range m.units {
		assemblies[i] = domain.Assembly{Name: u.name, CoveragePercent: u.percent}
	}
	cfg := m.toFileConfig()
	// Names come from a CoverageMap, so they are already unique.
	return domain.Evaluate(domain.CoverageMapOf(assemblies...), domain.Policy{
		Target:       m.target,
		PassOverride: cfg.PassOverride,
		FailOverride: cfg.FailOverride,
	})
}

func (m *initWizardModel) viewIntro() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\ncovergate init wizard\n\n")
	fmt.Fprintf(&b, "Found %d units in %s. The wizard helps you pick a target and overrides.\n\n", len(m.units), m.reportPath)
	fmt.Fprintf(&b, "Press Enter to continue, or Ctrl+C to cancel. Starting target is %.0f%%.\n", m.target)
	return b.String()
}

func (m *initWizardModel) viewEdit() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nReview target and overrides\n\n")
	fmt.Fprintf(&b, "Use ↑/↓ to move, ←/→ to change the target or cycle an override (space also cycles).\n")
	indicator := "  "
	if m.cursor == 0 {
		indicator = "> "
	}
	fmt.Fprintf(&b, "%sTarget: %.0f%%\n\n", indicator, m.target)
	fmt.Fprintf(&b, "Units:\n")
	result := m.preview()
	for idx, u := range m.units {
		prefix := "  "
		if m.cursor == idx+1 {
			prefix = "> "
		}
		status := ""
		if r := result.UnitByName(u.name); r != nil {
			status = string(r.Status)
		}
		fmt.Fprintf(&b, "%s%s: %.1f%% [override: %s] %s\n", prefix, u.name, u.percent, u.override, status)
	}
	fmt.Fprintf(&b, "\n%s\n", result.Summary())
	fmt.Fprintf(&b, "\nEnter to continue, q to cancel.\n")
	return b.String()
}

func (m *initWizardModel) viewConfirm() string {
	cfg := m.toFileConfig()
	var b strings.Builder
	fmt.Fprintf(&b, "\nReady to write configuration\n\n")
	fmt.Fprintf(&b, "Report: %s\n", m.reportPath)
	fmt.Fprintf(&b, "Target: %.0f%%\n", m.target)
	writeList(&b, "Pass overrides", cfg.PassOverride)
	writeList(&b, "Fail overrides", cfg.FailOverride)
	fmt.Fprintf(&b, "\nPress Enter to save, Esc to go back, q to cancel.\n")
	return b.String()
}

func writeList(b *strings.Builder, title string, names []string) {
	if len(names) == 0 {
		fmt.Fprintf(b, "%s: none\n", title)
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, name := range names {
		fmt.Fprintf(b, "  - %s\n", name)
	}
}

func (m *initWizardModel) toFileConfig() application.FileConfig {
	target := m.target
	report := m.reportPath
	cfg := application.FileConfig{
		CoverageReport: &report,
		CoverageTarget: &target,
	}
	for _, u := range m.units {
		switch u.override {
		case overridePass:
			cfg.PassOverride = append(cfg.PassOverride, u.name)
		case overrideFail:
			cfg.FailOverride = append(cfg.FailOverride, u.name)
		}
	}
	return cfg
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
