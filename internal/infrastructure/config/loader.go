package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/covergate/internal/application"
	"github.com/felixgeelhaar/covergate/internal/pathutil"
)

// Format is the encoding of a configuration file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

type Loader struct{}

type fileConfig struct {
	CoverageReport *string  `json:"CoverageReport,omitempty" yaml:"CoverageReport,omitempty"`
	CoverageTarget *float64 `json:"CoverageTarget,omitempty" yaml:"CoverageTarget,omitempty"`
	PassOverride   []string `json:"PassOverride,omitempty" yaml:"PassOverride,omitempty"`
	FailOverride   []string `json:"FailOverride,omitempty" yaml:"FailOverride,omitempty"`
}

func (l Loader) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (l Loader) Load(path string) (application.FileConfig, error) {
	resolved, err := pathutil.InputFile(path)
	if err != nil {
		return application.FileConfig{}, &application.ParseError{Path: path, Err: err}
	}
	// #nosec G304 -- path is supplied by the operator and checked above
	raw, err := os.ReadFile(resolved)
	if err != nil {
		return application.FileConfig{}, &application.ParseError{Path: path, Err: err}
	}

	var cfg fileConfig
	switch FormatForPath(path) {
	case FormatYAML:
		err = yaml.Unmarshal(raw, &cfg)
	default:
		err = json.Unmarshal(raw, &cfg)
	}
	if err != nil {
		return application.FileConfig{}, &application.ParseError{Path: path, Err: err}
	}

	return application.FileConfig{
		CoverageReport: cfg.CoverageReport,
		CoverageTarget: cfg.CoverageTarget,
		PassOverride:   cfg.PassOverride,
		FailOverride:   cfg.FailOverride,
	}, nil
}

func Write(w io.Writer, cfg application.FileConfig, format Format) error {
	out := fileConfig{
		CoverageReport: cfg.CoverageReport,
		CoverageTarget: cfg.CoverageTarget,
		PassOverride:   cfg.PassOverride,
		FailOverride:   cfg.FailOverride,
	}
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		return fmt.Errorf("unsupported config format: %s", format)
	}
}
