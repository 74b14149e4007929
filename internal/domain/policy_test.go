package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleCoverage() CoverageMap {
	return CoverageMapOf(
		Assembly{Name: "Test1", CoveragePercent: 100},
		Assembly{Name: "Test2", CoveragePercent: 50},
	)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name        string
		coverage    CoverageMap
		policy      Policy
		wantFailing []string
	}{
		{
			name:        "one unit below target",
			coverage:    sampleCoverage(),
			policy:      Policy{Target: 90},
			wantFailing: []string{"Test2"},
		},
		{
			name: "unit at target passes",
			coverage: CoverageMapOf(
				Assembly{Name: "Test1", CoveragePercent: 100},
				Assembly{Name: "Test2", CoveragePercent: 90},
			),
			policy:      Policy{Target: 90},
			wantFailing: []string{},
		},
		{
			name:        "fail override adds passing unit",
			coverage:    sampleCoverage(),
			policy:      Policy{Target: 90, FailOverride: []string{"Test1"}},
			wantFailing: []string{"Test1", "Test2"},
		},
		{
			name:        "pass override removes gating unit",
			coverage:    sampleCoverage(),
			policy:      Policy{Target: 90, PassOverride: []string{"Test2"}},
			wantFailing: []string{},
		},
		{
			name:        "zero target gates nothing",
			coverage:    sampleCoverage(),
			policy:      Policy{Target: 0},
			wantFailing: []string{},
		},
		{
			name:        "fail override ignored for gating unit",
			coverage:    sampleCoverage(),
			policy:      Policy{Target: 90, FailOverride: []string{"Test2"}},
			wantFailing: []string{"Test2"},
		},
		{
			name:        "pass override ignored for passing unit",
			coverage:    sampleCoverage(),
			policy:      Policy{Target: 90, PassOverride: []string{"Test1"}},
			wantFailing: []string{"Test2"},
		},
		{
			name:        "empty report passes",
			coverage:    CoverageMapOf(),
			policy:      Policy{Target: 90},
			wantFailing: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Evaluate(tt.coverage, tt.policy)
			if diff := cmp.Diff(tt.wantFailing, result.Failing); diff != "" {
				t.Fatalf("failing mismatch (-want +got):\n%s", diff)
			}
			if result.Passed != (len(tt.wantFailing) == 0) {
				t.Fatalf("expected passed=%v", len(tt.wantFailing) == 0)
			}
		})
	}
}

func TestEvaluateStatuses(t *testing.T) {
	coverage := CoverageMapOf(
		Assembly{Name: "low", CoveragePercent: 10},
		Assembly{Name: "lowForced", CoveragePercent: 20},
		Assembly{Name: "high", CoveragePercent: 95},
		Assembly{Name: "highForced", CoveragePercent: 99},
	)
	result := Evaluate(coverage, Policy{
		Target:       80,
		PassOverride: []string{"lowForced"},
		FailOverride: []string{"highForced"},
	})

	want := map[string]Status{
		"low":        StatusFail,
		"lowForced":  StatusOverridePass,
		"high":       StatusPass,
		"highForced": StatusOverrideFail,
	}
	for name, status := range want {
		u := result.UnitByName(name)
		if u == nil {
			t.Fatalf("missing unit %s", name)
		}
		if u.Status != status {
			t.Fatalf("%s: expected %s, got %s", name, status, u.Status)
		}
	}
	if got := len(result.GatingUnits()); got != 1 {
		t.Fatalf("expected 1 gating unit, got %d", got)
	}
	if got := len(result.OverriddenToFail()); got != 1 {
		t.Fatalf("expected 1 overridden-to-fail unit, got %d", got)
	}
	if got := len(result.OverriddenToPass()); got != 1 {
		t.Fatalf("expected 1 overridden-to-pass unit, got %d", got)
	}
	if diff := cmp.Diff([]string{"low", "highForced"}, result.Failing); diff != "" {
		t.Fatalf("failing order mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluatePreservesReportOrder(t *testing.T) {
	coverage := CoverageMapOf(
		Assembly{Name: "zeta", CoveragePercent: 1},
		Assembly{Name: "alpha", CoveragePercent: 2},
		Assembly{Name: "mid", CoveragePercent: 3},
	)
	result := Evaluate(coverage, Policy{Target: 50})
	var names []string
	for _, u := range result.Units {
		names = append(names, u.Name)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, names); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateWarnsOnUnknownOverrides(t *testing.T) {
	result := Evaluate(sampleCoverage(), Policy{
		Target:       90,
		PassOverride: []string{"Ghost"},
		FailOverride: []string{"Test1", "Phantom"},
	})
	if len(result.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", result.Warnings)
	}
	if diff := cmp.Diff([]string{"Test1", "Test2"}, result.Failing); diff != "" {
		t.Fatalf("unknown overrides must not change verdict (-want +got):\n%s", diff)
	}
}

func TestResultHelpers(t *testing.T) {
	result := Evaluate(sampleCoverage(), Policy{Target: 90})
	if got := result.MeanPercent(); got != 75 {
		t.Fatalf("expected mean 75, got %f", got)
	}
	if got := result.PassingCount(); got != 1 {
		t.Fatalf("expected 1 passing, got %d", got)
	}
	if got := result.UnitByName("Test2").Shortfall(); got != 40 {
		t.Fatalf("expected shortfall 40, got %f", got)
	}
	if got := result.UnitByName("Test1").Shortfall(); got != 0 {
		t.Fatalf("expected no shortfall, got %f", got)
	}
	if result.UnitByName("missing") != nil {
		t.Fatalf("expected nil for missing unit")
	}
	if result.Summary() == "" {
		t.Fatalf("expected summary")
	}
	if (Result{}).MeanPercent() != 0 {
		t.Fatalf("expected zero mean for empty result")
	}
}

func TestRound1(t *testing.T) {
	if got := Round1(33.333); got != 33.3 {
		t.Fatalf("expected 33.3, got %f", got)
	}
	if got := Round1(66.66); got != 66.7 {
		t.Fatalf("expected 66.7, got %f", got)
	}
}
