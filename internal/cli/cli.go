package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/felixgeelhaar/covergate/internal/application"
	"github.com/felixgeelhaar/covergate/internal/domain"
	"github.com/felixgeelhaar/covergate/internal/infrastructure/badge"
	"github.com/felixgeelhaar/covergate/internal/infrastructure/config"
	"github.com/felixgeelhaar/covergate/internal/infrastructure/coveragereport"
	"github.com/felixgeelhaar/covergate/internal/infrastructure/history"
	"github.com/felixgeelhaar/covergate/internal/infrastructure/report"
)

type Service interface {
	Gate(ctx context.Context, opts application.GateOptions) error
	GateResult(ctx context.Context, opts application.GateOptions) (domain.Result, error)
	Watch(ctx context.Context, opts application.GateOptions, watcher application.FileWatcher, callback application.WatchCallback) error
	LoadCoverage(path string) (domain.CoverageMap, error)
}

// ServiceBuilder wires a Service once flags, and with them the logger, are known.
type ServiceBuilder func(out io.Writer, logger *zap.Logger) Service

const (
	exitPass     = 0
	exitFail     = 1
	exitArgument = 2
	exitRuntime  = 3
)

var configLoader application.ConfigLoader = config.Loader{}

type rootOptions struct {
	report  string
	target  float64
	config  string
	output  application.OutputFormat
	history string
	badge   string
	watch   bool
	verbose bool
}

// Run executes the command line and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer, build ServiceBuilder) int {
	if len(args) < 2 {
		fmt.Fprintln(stderr, &application.ArgumentError{Err: application.ErrNoArguments})
		usage(stderr)
		return exitArgument
	}

	var (
		logger = zap.NewNop()
		svc    Service
	)
	root := newRootCmd(stdout, stderr, func() Service { return svc }, func() *zap.Logger { return logger })
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger = newLogger(stderr, verbose)
		svc = build(stdout, logger)
		return nil
	}
	root.SetArgs(args[1:])

	err := root.ExecuteContext(context.Background())
	_ = logger.Sync()
	return exitCode(err, stderr)
}

// BuildService wires the production adapters.
func BuildService(out io.Writer, logger *zap.Logger) Service {
	return &application.Service{
		ReportLoader: coveragereport.Loader{},
		Reporter:     report.Writer{},
		Badge:        badge.Writer{},
		Logger:       logger,
		Out:          out,
	}
}

func newRootCmd(stdout, stderr io.Writer, service func() Service, logger func() *zap.Logger) *cobra.Command {
	opts := rootOptions{output: application.OutputText}

	cmd := &cobra.Command{
		Use:   "covergate [report] [target]",
		Short: "Gate a CI build on per-unit code coverage",
		Long: `covergate reads a JSON coverage report, compares every unit against a
minimum coverage target and exits non-zero when any unit falls below it.
Units can be forced to pass or fail through a JSON or YAML config file.`,
		Example: `  covergate -r coverageReport.json -t 90
  covergate -c covergate.json
  covergate coverageReport.json 90 --output brief`,
		Version:       versionString(),
		Args:          maxArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGate(cmd, args, &opts, service(), logger())
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetGlobalNormalizationFunc(caseInsensitive)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &application.ArgumentError{Err: err}
	})

	flags := cmd.Flags()
	flags.StringVarP(&opts.report, "Report", "r", "", "coverage report file")
	flags.Float64VarP(&opts.target, "Target", "t", 0, "minimum acceptable coverage percentage")
	flags.StringVarP(&opts.config, "Config", "c", "", "JSON or YAML configuration file")
	flags.VarP((*outputValue)(&opts.output), "output", "o", "output format: text|json|brief|html")
	flags.StringVar(&opts.history, "history", "", fmt.Sprintf("history file for deltas and recording (e.g. %s)", history.DefaultPath))
	flags.StringVar(&opts.badge, "badge", "", "write an SVG coverage badge to this path")
	flags.BoolVar(&opts.watch, "watch", false, "re-run the gate whenever the report changes")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr")
	cmd.InitDefaultHelpFlag()
	cmd.Flags().Lookup("help").Usage = "print help"

	cmd.AddCommand(newInitCmd(stdout, service), newMCPCmd(service))
	return cmd
}

func runGate(cmd *cobra.Command, args []string, opts *rootOptions, svc Service, logger *zap.Logger) error {
	in := application.Inputs{ReportPath: opts.report, ConfigPath: opts.config}
	if cmd.Flags().Changed("Target") {
		target := opts.target
		in.Target = &target
	}
	in, err := application.MergePositional(in, args)
	if err != nil {
		return err
	}
	cfg, err := application.Resolve(in, configLoader)
	if err != nil {
		return err
	}

	gateOpts := application.GateOptions{
		Config:    cfg,
		Output:    opts.output,
		BadgePath: opts.badge,
	}
	if opts.history != "" {
		gateOpts.HistoryStore = &history.FileStore{Path: opts.history}
	}
	if opts.watch {
		return runWatch(cmd, svc, gateOpts, logger)
	}
	return svc.Gate(cmd.Context(), gateOpts)
}

func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(n)(cmd, args); err != nil {
			return &application.ArgumentError{Err: err}
		}
		return nil
	}
}

// caseInsensitive lets --Report and --report name the same flag.
func caseInsensitive(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ToLower(name))
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), zapcore.AddSync(w), level)
	return zap.New(core).Named("covergate")
}

type outputValue application.OutputFormat

func (o *outputValue) String() string { return string(*o) }

func (o *outputValue) Type() string { return "format" }

func (o *outputValue) Set(value string) error {
	switch application.OutputFormat(value) {
	case application.OutputText, application.OutputJSON, application.OutputBrief, application.OutputHTML:
		*o = outputValue(value)
		return nil
	default:
		return fmt.Errorf("invalid output format: %s", value)
	}
}

// exitCode maps an error to the documented exit status. A failed gate has
// already been explained by the reporter, so only other errors are printed.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return exitPass
	}
	if errors.Is(err, application.ErrGateFailed) {
		return exitFail
	}
	fmt.Fprintln(stderr, err)
	var argErr *application.ArgumentError
	if errors.As(err, &argErr) {
		return exitArgument
	}
	return exitRuntime
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `usage: covergate [-r report] [-t target] [-c config] [report target]

Commands:
  init    Write a config file from a report, with an interactive wizard
  mcp     Serve the gate over the Model Context Protocol (stdio)

Run 'covergate --help' for all flags.`)
}

var _ Service = (*application.Service)(nil)
