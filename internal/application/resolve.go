package application

import (
	"errors"
	"fmt"
	"strconv"
)

// Resolve builds the run configuration from direct inputs and, when
// in.ConfigPath is set, the configuration file. Every key the file defines
// overwrites the direct value; absent keys leave it untouched.
func Resolve(in Inputs, loader ConfigLoader) (Config, error) {
	cfg := Config{ReportPath: in.ReportPath}
	target := in.Target

	if in.ConfigPath != "" {
		if loader == nil {
			return Config{}, errors.New("config loader not configured")
		}
		file, err := loader.Load(in.ConfigPath)
		if err != nil {
			var parseErr *ParseError
			if errors.As(err, &parseErr) {
				return Config{}, err
			}
			return Config{}, &ParseError{Path: in.ConfigPath, Err: err}
		}
		if file.CoverageReport != nil {
			cfg.ReportPath = *file.CoverageReport
		}
		if file.CoverageTarget != nil {
			v := *file.CoverageTarget
			target = &v
		}
		if file.PassOverride != nil {
			cfg.PassOverride = file.PassOverride
		}
		if file.FailOverride != nil {
			cfg.FailOverride = file.FailOverride
		}
	}

	if cfg.ReportPath == "" {
		return Config{}, &ArgumentError{Err: ErrMissingReport}
	}
	// A zero target is a valid policy, only absence is an error.
	if target == nil {
		return Config{}, &ArgumentError{Err: ErrMissingTarget}
	}
	cfg.Target = *target
	return cfg, nil
}

// MergePositional fills report and target from legacy positional arguments
// for values not already given by flags.
func MergePositional(in Inputs, args []string) (Inputs, error) {
	for _, a := range args {
		if a == "" {
			return in, &ArgumentError{Err: ErrEmptyArgument}
		}
	}
	if len(args) > 0 && in.ReportPath == "" {
		in.ReportPath = args[0]
	}
	if len(args) > 1 && in.Target == nil {
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return in, &ArgumentError{Err: fmt.Errorf("invalid target %q: %w", args[1], err)}
		}
		in.Target = &v
	}
	return in, nil
}
