package sync

import "strings"

// scalarFields lists the local Task fields mapping.Values translation
// and when_empty policy apply to directly (spec.md §4.H).
var scalarFields = []string{"title", "description", "status", "type", "priority", "assignee", "reporter"}

// localScalar extracts one scalar field's current value from a task
// field snapshot built by the caller (see engine.go's taskFields).
func localScalar(taskFields map[string]string, field string) string {
	return taskFields[field]
}

// BuildPushPayload computes the remote fields and labels a task should
// have, given its mapping. Scalar fields translate through Values (or
// pass through verbatim if no translation is declared); tags map to
// labels, with any label values already claimed by a scalar mapping
// removed first to avoid double-capture (spec.md §4.H).
func BuildPushPayload(taskFields map[string]string, tags []string, mapping []FieldMapping) (fields map[string]string, labels []string) {
	fields = map[string]string{}
	claimed := map[string]bool{}

	for _, m := range mapping {
		if !isScalarField(m.LocalField) {
			continue
		}
		value := localScalar(taskFields, m.LocalField)
		if m.Set != "" {
			value = m.Set
		}
		if value == "" {
			switch m.WhenEmpty {
			case WhenEmptyClear:
				fields[remoteFieldName(m)] = ""
			default: // skip
			}
			continue
		}
		remoteValue := translate(m.Values, value, value)
		fields[remoteFieldName(m)] = remoteValue
		if m.LocalField == "type" || m.LocalField == "priority" {
			claimed[strings.ToLower(remoteValue)] = true
		}
	}

	for _, tag := range tags {
		if claimed[strings.ToLower(tag)] {
			continue
		}
		labels = append(labels, tag)
	}
	for _, m := range mapping {
		if m.LocalField == "tags" {
			labels = append(labels, m.Add...)
		}
	}

	return fields, labels
}

// ApplyPullPayload computes the local field values a remote issue maps
// to, dropping labels already consumed by a scalar mapping (same
// double-capture rule as push, applied in reverse).
func ApplyPullPayload(issue *RemoteIssue, mapping []FieldMapping) (fields map[string]string, tags []string) {
	fields = map[string]string{}
	claimed := map[string]bool{}

	for _, m := range mapping {
		if !isScalarField(m.LocalField) {
			continue
		}
		remoteValue := issue.Fields[remoteFieldName(m)]
		if remoteValue == "" {
			if m.WhenEmpty == WhenEmptyClear {
				fields[m.LocalField] = ""
			} else if m.Default != "" {
				fields[m.LocalField] = m.Default
			}
			continue
		}
		localValue := translateInverse(m.Values, remoteValue, remoteValue)
		fields[m.LocalField] = localValue
		if m.LocalField == "type" || m.LocalField == "priority" {
			claimed[strings.ToLower(remoteValue)] = true
		}
	}

	for _, label := range issue.Labels {
		if claimed[strings.ToLower(label)] {
			continue
		}
		tags = append(tags, label)
	}

	return fields, tags
}

func isScalarField(field string) bool {
	for _, f := range scalarFields {
		if f == field {
			return true
		}
	}
	return false
}

func remoteFieldName(m FieldMapping) string {
	if m.RemoteField != "" {
		return m.RemoteField
	}
	return m.LocalField
}

func translate(values map[string]string, local, fallback string) string {
	if values == nil {
		return fallback
	}
	if v, ok := values[local]; ok {
		return v
	}
	return fallback
}

// translateInverse looks up the local value whose mapped remote value
// equals remote; when multiple local values map to the same remote
// value, the spec prefers whichever equals an already-set current
// value — callers wanting that preference should post-process the
// returned candidate against the existing task field.
func translateInverse(values map[string]string, remote, fallback string) string {
	if values == nil {
		return fallback
	}
	for local, mapped := range values {
		if strings.EqualFold(mapped, remote) {
			return local
		}
	}
	return fallback
}
