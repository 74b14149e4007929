package domain

import (
	"fmt"
	"math"
)

// Policy is the gating policy applied to every unit of a report.
type Policy struct {
	Target       float64
	PassOverride []string // Units forced to pass when below Target
	FailOverride []string // Units forced to fail when at or above Target
}

type Status string

const (
	StatusPass         Status = "PASS"
	StatusFail         Status = "FAIL"
	StatusOverridePass Status = "OVERRIDE-PASS"
	StatusOverrideFail Status = "OVERRIDE-FAIL"
)

// IsFailing returns true for statuses that fail the build.
func (s Status) IsFailing() bool {
	return s == StatusFail || s == StatusOverrideFail
}

type UnitResult struct {
	Name    string   `json:"name"`
	Percent float64  `json:"percent"`
	Target  float64  `json:"target"`
	Status  Status   `json:"status"`
	Delta   *float64 `json:"delta,omitempty"` // Change from previous run
}

// IsFailing returns true if this unit fails the build.
func (u UnitResult) IsFailing() bool {
	return u.Status.IsFailing()
}

// Shortfall returns how many percentage points below the target this unit is.
// Returns 0 if the unit meets the target.
func (u UnitResult) Shortfall() float64 {
	if u.Percent >= u.Target {
		return 0
	}
	return Round1(u.Target - u.Percent)
}

type Result struct {
	Units    []UnitResult `json:"units"`
	Failing  []string     `json:"failing"`
	Target   float64      `json:"target"`
	Passed   bool         `json:"passed"`
	Warnings []string     `json:"warnings,omitempty"`
}

// GatingUnits returns units failing on their own coverage.
func (r Result) GatingUnits() []UnitResult {
	return r.withStatus(StatusFail)
}

// OverriddenToFail returns units meeting the target that were forced to fail.
func (r Result) OverriddenToFail() []UnitResult {
	return r.withStatus(StatusOverrideFail)
}

// OverriddenToPass returns units below the target that were forced to pass.
func (r Result) OverriddenToPass() []UnitResult {
	return r.withStatus(StatusOverridePass)
}

func (r Result) withStatus(status Status) []UnitResult {
	var out []UnitResult
	for _, u := range r.Units {
		if u.Status == status {
			out = append(out, u)
		}
	}
	return out
}

// PassingCount returns the number of units not in the failing set.
func (r Result) PassingCount() int {
	return len(r.Units) - len(r.Failing)
}

// MeanPercent returns the unweighted mean coverage across all units.
func (r Result) MeanPercent() float64 {
	if len(r.Units) == 0 {
		return 0
	}
	var sum float64
	for _, u := range r.Units {
		sum += u.Percent
	}
	return Round1(sum / float64(len(r.Units)))
}

// UnitByName returns the unit result with the given name, or nil if not found.
func (r Result) UnitByName(name string) *UnitResult {
	for i := range r.Units {
		if r.Units[i].Name == name {
			return &r.Units[i]
		}
	}
	return nil
}

// HasWarnings returns true if there are any warnings.
func (r Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Summary returns a brief summary of the result.
func (r Result) Summary() string {
	if r.Passed {
		return "All units meet the coverage target"
	}
	return fmt.Sprintf("%d unit(s) failed the coverage gate", len(r.Failing))
}

// Evaluate gates every unit of coverage against policy.
// A unit exactly at the target passes. Overrides only act on the side
// opposite the unit's computed outcome.
func Evaluate(coverage CoverageMap, policy Policy) Result {
	passOverride := toSet(policy.PassOverride)
	failOverride := toSet(policy.FailOverride)

	result := Result{
		Units:   make([]UnitResult, 0, coverage.Len()),
		Failing: []string{},
		Target:  policy.Target,
	}

	for _, name := range coverage.names {
		percent := coverage.percent[name]
		var status Status
		if percent < policy.Target {
			status = StatusFail
			if _, ok := passOverride[name]; ok {
				status = StatusOverridePass
			}
		} else {
			status = StatusPass
			if _, ok := failOverride[name]; ok {
				status = StatusOverrideFail
			}
		}
		if status.IsFailing() {
			result.Failing = append(result.Failing, name)
		}
		result.Units = append(result.Units, UnitResult{
			Name:    name,
			Percent: percent,
			Target:  policy.Target,
			Status:  status,
		})
	}

	result.Warnings = append(unknownOverrides(coverage, policy.PassOverride), unknownOverrides(coverage, policy.FailOverride)...)
	result.Passed = len(result.Failing) == 0
	return result
}

func unknownOverrides(coverage CoverageMap, names []string) []string {
	var warnings []string
	for _, name := range names {
		if !coverage.Contains(name) {
			warnings = append(warnings, fmt.Sprintf("override %q matches no unit in the report", name))
		}
	}
	return warnings
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Round1 rounds a float64 to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
