package sync

import (
	"sort"
	"strings"
)

// DiffFields drops every key in desired whose value already matches
// current, leaving only the fields that genuinely need to change
// (spec.md §4.H "Diffing"). Enum-like scalar fields compare
// case-insensitively and trimmed; everything else compares verbatim.
func DiffFields(current, desired map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range desired {
		cur, ok := current[k]
		if ok && fieldsEqual(k, cur, v) {
			continue
		}
		out[k] = v
	}
	return out
}

func fieldsEqual(field, a, b string) bool {
	switch field {
	case "status", "type", "priority":
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	default:
		return a == b
	}
}

// DiffLabels reports whether desired differs from current as a
// normalized set (case-insensitive, order-independent).
func DiffLabels(current, desired []string) (changed bool, next []string) {
	if normalizedSet(current).Equal(normalizedSet(desired)) {
		return false, current
	}
	return true, desired
}

type stringSet map[string]bool

func normalizedSet(values []string) stringSet {
	s := make(stringSet, len(values))
	for _, v := range values {
		s[strings.ToLower(strings.TrimSpace(v))] = true
	}
	return s
}

func (s stringSet) Equal(other stringSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other[k] {
			return false
		}
	}
	return true
}

// sortedKeys returns m's keys in sorted order, for deterministic
// iteration over a diff map (e.g. building a stable log line). Nothing
// in this package calls it.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
