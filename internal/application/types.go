package application

import (
	"context"
	"io"

	"github.com/felixgeelhaar/covergate/internal/domain"
)

type OutputFormat string

const (
	OutputText  OutputFormat = "text"
	OutputJSON  OutputFormat = "json"
	OutputBrief OutputFormat = "brief"
	OutputHTML  OutputFormat = "html"
)

// Config is the resolved, immutable run configuration.
type Config struct {
	ReportPath   string
	Target       float64
	PassOverride []string // nil when unset
	FailOverride []string // nil when unset
}

// Policy returns the gating policy described by the configuration.
func (c Config) Policy() domain.Policy {
	return domain.Policy{
		Target:       c.Target,
		PassOverride: c.PassOverride,
		FailOverride: c.FailOverride,
	}
}

// FileConfig is the content of a configuration file.
// Nil fields were absent from the file.
type FileConfig struct {
	CoverageReport *string
	CoverageTarget *float64
	PassOverride   []string
	FailOverride   []string
}

// Inputs are the values supplied directly on the command line.
type Inputs struct {
	ReportPath string
	Target     *float64
	ConfigPath string
}

type ConfigLoader interface {
	Load(path string) (FileConfig, error)
}

type ReportLoader interface {
	Load(path string) (domain.CoverageReport, error)
}

type Reporter interface {
	Write(w io.Writer, result domain.Result, format OutputFormat) error
}

// HistoryStore persists gating runs.
type HistoryStore interface {
	Load() (domain.History, error)
	Append(entry domain.HistoryEntry) error
}

// BadgeWriter renders a coverage badge for a gating run.
type BadgeWriter interface {
	WriteBadge(path string, result domain.Result) error
}

// FileWatcher emits a value every time the watched report changes.
type FileWatcher interface {
	Events(ctx context.Context) <-chan struct{}
}

// WatchCallback is invoked after every gating run in watch mode.
type WatchCallback func(run int, result domain.Result, err error)

type GateOptions struct {
	Config       Config
	Output       OutputFormat
	HistoryStore HistoryStore // Optional; enables deltas and recording
	BadgePath    string       // Optional; requires Service.Badge
}
