package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/covergate/internal/application"
	"github.com/felixgeelhaar/covergate/internal/infrastructure/config"
	"github.com/felixgeelhaar/covergate/internal/infrastructure/wizard"
)

// DefaultConfigPath is where init writes when -c is not given.
const DefaultConfigPath = "covergate.json"

var initWizard = wizard.Run

type initOptions struct {
	report        string
	target        float64
	out           string
	force         bool
	noInteractive bool
}

func newInitCmd(stdout io.Writer, service func() Service) *cobra.Command {
	opts := initOptions{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file for a coverage report",
		Long: `init loads a coverage report, lets you pick the coverage target and
per-unit pass/fail overrides, and writes a covergate config file.`,
		Args: maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var target *float64
			if cmd.Flags().Changed("Target") {
				target = &opts.target
			}
			return runInit(cmd, opts, target, service())
		},
	}
	cmd.Flags().StringVarP(&opts.report, "Report", "r", "", "coverage report file")
	cmd.Flags().Float64VarP(&opts.target, "Target", "t", 0, "starting coverage target")
	cmd.Flags().StringVarP(&opts.out, "Config", "c", DefaultConfigPath, "config file to write (.json, .yaml or .yml)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite an existing config file")
	cmd.Flags().BoolVar(&opts.noInteractive, "no-interactive", false, "skip the interactive wizard")
	return cmd
}

func runInit(cmd *cobra.Command, opts initOptions, target *float64, svc Service) error {
	if opts.report == "" {
		return &application.ArgumentError{Err: application.ErrMissingReport}
	}
	if !opts.force {
		exists, err := config.Loader{}.Exists(opts.out)
		if err != nil {
			return err
		}
		if exists {
			return &application.ArgumentError{Err: fmt.Errorf("config %s already exists (use --force to overwrite)", opts.out)}
		}
	}

	coverage, err := svc.LoadCoverage(opts.report)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	seed := application.FileConfig{CoverageReport: &opts.report, CoverageTarget: target}
	cfg := wizard.Seed(seed, coverage)
	if !opts.noInteractive {
		var confirmed bool
		cfg, confirmed, err = initWizard(seed, coverage, stdout, cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("init wizard: %w", err)
		}
		if !confirmed {
			fmt.Fprintln(stdout, "Init cancelled; no configuration written.")
			return nil
		}
	}

	if err := writeConfigFile(opts.out, cfg); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Configuration written to %s\n", opts.out)
	return nil
}

func writeConfigFile(path string, cfg application.FileConfig) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := config.Write(file, cfg, config.FormatForPath(path)); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
