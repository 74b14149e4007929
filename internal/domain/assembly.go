package domain

import (
	"errors"
	"fmt"
)

// ErrDuplicateUnit is matched by every DuplicateUnitError.
var ErrDuplicateUnit = errors.New("duplicate unit name in coverage report")

// Assembly is one named unit whose coverage is measured and gated.
type Assembly struct {
	Name            string  `json:"Name"`
	CoveragePercent float64 `json:"CoveragePercent"`
}

// CoverageReport is the decoded coverage report document.
type CoverageReport struct {
	Children []Assembly `json:"Children"`
}

// ExtractAssemblies returns the report's assemblies in source order.
func ExtractAssemblies(report CoverageReport) []Assembly {
	return report.Children
}

// DuplicateUnitError reports a unit name that appears more than once in a report.
type DuplicateUnitError struct {
	Name string
}

func (e *DuplicateUnitError) Error() string {
	return fmt.Sprintf("%s: %q", ErrDuplicateUnit, e.Name)
}

func (e *DuplicateUnitError) Is(target error) bool {
	return target == ErrDuplicateUnit
}

// CoverageMap maps unit names to coverage percentages, keeping report order.
type CoverageMap struct {
	names   []string
	percent map[string]float64
}

// NewCoverageMap builds a CoverageMap from assemblies.
// A repeated name is fatal: no partial map is returned.
func NewCoverageMap(assemblies []Assembly) (CoverageMap, error) {
	m := CoverageMap{
		names:   make([]string, 0, len(assemblies)),
		percent: make(map[string]float64, len(assemblies)),
	}
	for _, a := range assemblies {
		if _, exists := m.percent[a.Name]; exists {
			return CoverageMap{}, &DuplicateUnitError{Name: a.Name}
		}
		m.names = append(m.names, a.Name)
		m.percent[a.Name] = a.CoveragePercent
	}
	return m, nil
}

// CoverageMapOf builds a CoverageMap from name/percent pairs.
// It panics on a duplicate name; use it only with literal data.
func CoverageMapOf(pairs ...Assembly) CoverageMap {
	m, err := NewCoverageMap(pairs)
	if err != nil {
		panic(err)
	}
	return m
}

// Names returns unit names in report order.
func (m CoverageMap) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Percent returns the coverage of the named unit.
func (m CoverageMap) Percent(name string) (float64, bool) {
	p, ok := m.percent[name]
	return p, ok
}

// Len returns the number of units.
func (m CoverageMap) Len() int {
	return len(m.names)
}

// Contains reports whether the named unit is present.
func (m CoverageMap) Contains(name string) bool {
	_, ok := m.percent[name]
	return ok
}
