package domain

import "time"

// HistoryEntry records the outcome of a single gating run.
type HistoryEntry struct {
	ID        string               `json:"id"`
	Timestamp time.Time            `json:"timestamp"`
	Target    float64              `json:"target"`
	Passed    bool                 `json:"passed"`
	Mean      float64              `json:"mean"`
	Units     map[string]UnitEntry `json:"units"`
	Failing   []string             `json:"failing,omitempty"`
}

// UnitEntry represents coverage for a single unit at a point in time.
type UnitEntry struct {
	Percent float64 `json:"percent"`
	Status  Status  `json:"status"`
}

// History contains all recorded gating runs.
type History struct {
	Entries []HistoryEntry `json:"entries"`
}

// LatestEntry returns the most recent history entry, or nil if empty.
func (h *History) LatestEntry() *HistoryEntry {
	if len(h.Entries) == 0 {
		return nil
	}
	latestIndex := 0
	latestTime := h.Entries[0].Timestamp
	for i := 1; i < len(h.Entries); i++ {
		if h.Entries[i].Timestamp.After(latestTime) {
			latestIndex = i
			latestTime = h.Entries[i].Timestamp
		}
	}
	return &h.Entries[latestIndex]
}

// NewHistoryEntry captures result as a history entry.
func NewHistoryEntry(id string, at time.Time, result Result) HistoryEntry {
	units := make(map[string]UnitEntry, len(result.Units))
	for _, u := range result.Units {
		units[u.Name] = UnitEntry{Percent: u.Percent, Status: u.Status}
	}
	return HistoryEntry{
		ID:        id,
		Timestamp: at,
		Target:    result.Target,
		Passed:    result.Passed,
		Mean:      result.MeanPercent(),
		Units:     units,
		Failing:   append([]string(nil), result.Failing...),
	}
}

// ApplyDeltas sets each unit's delta against the latest history entry.
// Units absent from that entry keep a nil delta.
func (r *Result) ApplyDeltas(history History) {
	latest := history.LatestEntry()
	if latest == nil {
		return
	}
	for i := range r.Units {
		if prev, ok := latest.Units[r.Units[i].Name]; ok {
			delta := Round1(r.Units[i].Percent - prev.Percent)
			r.Units[i].Delta = &delta
		}
	}
}

// WithDeltas returns a copy of the Result with deltas applied from history.
func (r Result) WithDeltas(history History) Result {
	result := r
	result.Units = make([]UnitResult, len(r.Units))
	copy(result.Units, r.Units)
	result.ApplyDeltas(history)
	return result
}
