// Package coveragereport reads assembly coverage reports.
package coveragereport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/felixgeelhaar/covergate/internal/application"
	"github.com/felixgeelhaar/covergate/internal/domain"
	"github.com/felixgeelhaar/covergate/internal/pathutil"
)

const schemaURL = "https://covergate.local/schemas/coverage-report.schema.json"

const reportSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["Children"],
  "properties": {
    "Children": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["Name", "CoveragePercent"],
        "properties": {
          "Name": {"type": "string"},
          "CoveragePercent": {"type": "number"}
        }
      }
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, strings.NewReader(reportSchema)); err != nil {
			compileErr = fmt.Errorf("report schema load failed: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

type Loader struct{}

// Load reads, normalizes and decodes the coverage report at path.
func (Loader) Load(path string) (domain.CoverageReport, error) {
	resolved, err := pathutil.InputFile(path)
	if err != nil {
		return domain.CoverageReport{}, &application.ParseError{Path: path, Err: err}
	}
	// #nosec G304 -- path is supplied by the operator and checked above
	raw, err := os.ReadFile(resolved)
	if err != nil {
		return domain.CoverageReport{}, &application.ParseError{Path: path, Err: err}
	}
	report, err := Parse(string(raw))
	if err != nil {
		return domain.CoverageReport{}, &application.ParseError{Path: path, Err: err}
	}
	return report, nil
}

// Parse decodes report text after stripping any leading artifact.
func Parse(text string) (domain.CoverageReport, error) {
	body := []byte(StripPreamble(text))

	var generic any
	if err := json.Unmarshal(body, &generic); err != nil {
		return domain.CoverageReport{}, err
	}
	sch, err := schema()
	if err != nil {
		return domain.CoverageReport{}, err
	}
	if err := sch.Validate(generic); err != nil {
		return domain.CoverageReport{}, fmt.Errorf("invalid coverage report: %w", err)
	}

	var report domain.CoverageReport
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&report); err != nil {
		return domain.CoverageReport{}, err
	}
	return report, nil
}

// StripPreamble drops everything before the first '{'. Some coverage tools
// prefix their JSON with a byte-order-mark-like run of bytes. Text without a
// '{' is returned unchanged so decoding reports the problem.
func StripPreamble(text string) string {
	if i := strings.IndexByte(text, '{'); i > 0 {
		return text[i:]
	}
	return text
}
