package audit

import (
	"bytes"
	"encoding/json"
)

// FieldChange describes one changed field between two snapshots.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue any    `json:"old_value"`
	NewValue any    `json:"new_value"`
}

// ignoredFields are bookkeeping columns excluded from every diff.
var ignoredFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"created_by": true,
}

// DiffFields computes the changed fields between two snapshots. The key
// set is the union of both sides, so a field present on only one side
// still surfaces. Equality is structural, via canonical JSON encoding.
// Entry order follows map iteration and is not stable across runs.
func DiffFields(oldValues, newValues map[string]any) []FieldChange {
	keys := make(map[string]struct{}, len(oldValues)+len(newValues))
	for k := range oldValues {
		keys[k] = struct{}{}
	}
	for k := range newValues {
		keys[k] = struct{}{}
	}

	changes := make([]FieldChange, 0, len(keys))
	for k := range keys {
		if ignoredFields[k] {
			continue
		}
		ov, oldHas := oldValues[k]
		nv, newHas := newValues[k]
		if oldHas && newHas && jsonEqual(ov, nv) {
			continue
		}
		changes = append(changes, FieldChange{Field: k, OldValue: ov, NewValue: nv})
	}
	return changes
}

// jsonEqual compares two values by their canonical JSON encoding.
// Map keys are sorted by encoding/json, so structurally equal maps
// encode identically.
func jsonEqual(a, b any) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
