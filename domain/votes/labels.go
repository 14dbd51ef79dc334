package votes

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// GroupLabel names a user-defined partition bucket. The empty label means
// "not assigned to any group" and is excluded from analysis.
type GroupLabel string

// NoGroup marks a participant outside every group. The empty string is
// reserved for it and is never a valid group name.
const NoGroup GroupLabel = ""

// UnpaintedLabel is the pseudo-group used when unpainted participants are included.
const UnpaintedLabel GroupLabel = "unpainted"

// UnpaintedIndex is the palette sentinel for unpainted/eraser selections.
const UnpaintedIndex = -1

// IsAssigned reports whether the label names a group
func (l GroupLabel) IsAssigned() bool {
	return l != NoGroup
}

// MarshalJSON renders NoGroup as null
func (l GroupLabel) MarshalJSON() ([]byte, error) {
	if l == NoGroup {
		return []byte("null"), nil
	}
	return json.Marshal(string(l))
}

// UnmarshalJSON accepts null, non-empty strings and palette numbers
func (l *GroupLabel) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = NoGroup
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			return fmt.Errorf("group label must not be empty; use null for unassigned")
		}
		*l = GroupLabel(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("group label must be a string, number or null: %w", err)
	}
	*l = GroupLabel(n.String())
	return nil
}

// LabelArrayWithOptionalUngrouped maps per-participant palette indices to
// group labels. nil entries are always NoGroup; UnpaintedIndex becomes the
// "unpainted" group when includeUnpainted is set and NoGroup otherwise.
func LabelArrayWithOptionalUngrouped(colorIndices []*int, includeUnpainted bool) []GroupLabel {
	labels := make([]GroupLabel, len(colorIndices))
	for i, idx := range colorIndices {
		switch {
		case idx != nil && *idx != UnpaintedIndex:
			labels[i] = GroupLabel(strconv.Itoa(*idx))
		case includeUnpainted && idx != nil:
			labels[i] = UnpaintedLabel
		default:
			labels[i] = NoGroup
		}
	}
	return labels
}

// DistinctGroups returns the assigned labels present in the array, sorted
func DistinctGroups(labels []GroupLabel) []GroupLabel {
	seen := make(map[GroupLabel]struct{})
	for _, l := range labels {
		if l.IsAssigned() {
			seen[l] = struct{}{}
		}
	}
	out := make([]GroupLabel, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	SortLabels(out)
	return out
}

// HasEnoughGroupsForAnalysis is true iff at least two distinct groups exist
func HasEnoughGroupsForAnalysis(labels []GroupLabel) bool {
	return len(DistinctGroups(labels)) >= 2
}

// AnalysisStatusMessage describes whether the painted groups can be analyzed
func AnalysisStatusMessage(labels []GroupLabel) string {
	switch n := len(DistinctGroups(labels)); n {
	case 0:
		return "No groups painted. Paint at least two groups to analyze representative statements."
	case 1:
		return "Only one group painted. Paint at least two groups to analyze representative statements."
	default:
		return fmt.Sprintf("%d groups available for analysis.", n)
	}
}

// SortLabels orders labels numerically where possible, then lexically
func SortLabels(labels []GroupLabel) {
	sort.Slice(labels, func(i, j int) bool {
		a, aerr := strconv.Atoi(string(labels[i]))
		b, berr := strconv.Atoi(string(labels[j]))
		switch {
		case aerr == nil && berr == nil:
			return a < b
		case aerr == nil:
			return true
		case berr == nil:
			return false
		default:
			return labels[i] < labels[j]
		}
	})
}
