package storage

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Reference is a structured pointer from a task to a source-code
// location or an external issue. At most one of Code/Jira/GitHub is
// set (spec.md §3).
type Reference struct {
	Code       string `yaml:"code,omitempty"`
	Jira       string `yaml:"jira,omitempty"`
	GitHub     string `yaml:"github,omitempty"`
	Confidence string `yaml:"confidence,omitempty"` // supplemental, opaque pass-through
}

// Key returns the reference's identifying value regardless of which
// field is populated, used for dedupe/equality checks.
func (r Reference) Key() string {
	switch {
	case r.Code != "":
		return "code:" + r.Code
	case r.Jira != "":
		return "jira:" + r.Jira
	case r.GitHub != "":
		return "github:" + r.GitHub
	default:
		return ""
	}
}

// Comment is an append-only note on a task.
type Comment struct {
	Author string    `yaml:"author"`
	At     time.Time `yaml:"at"`
	Text   string    `yaml:"text"`
}

// HistoryEntry records a status transition.
type HistoryEntry struct {
	From  string    `yaml:"from"`
	To    string    `yaml:"to"`
	At    time.Time `yaml:"at"`
	Actor string    `yaml:"actor,omitempty"`
}

// CustomField is one entry of a task's ordered custom-field mapping.
type CustomField struct {
	Key   string
	Value any
}

// Task is the core unit of work (spec.md §3). Custom fields preserve
// declaration order; any top-level YAML keys this struct doesn't know
// about are preserved in Extra and re-emitted on write so hand-edited
// task files never lose data on a read-modify-write cycle.
type Task struct {
	ID           string
	Title        string
	Description  string `yaml:"description,omitempty"`
	Status       string
	Priority     string
	Type         string `yaml:"type"`
	Assignee     string `yaml:"assignee,omitempty"`
	Reporter     string `yaml:"reporter,omitempty"`
	DueDate      string `yaml:"due_date,omitempty"`
	Effort       string `yaml:"effort,omitempty"`
	Tags         []string
	Category     string `yaml:"category,omitempty"`
	CustomFields []CustomField
	References   []Reference
	Comments     []Comment
	History      []HistoryEntry
	Created      time.Time
	Modified     time.Time
	Sprints      any `yaml:"sprints,omitempty"`      // opaque pass-through (spec.md §9)
	SprintOrder  any `yaml:"sprint_order,omitempty"` // opaque pass-through (spec.md §9)

	Extra []yamlPair `yaml:"-"`
}

type yamlPair struct {
	Key   string
	Value yaml.Node
}

// canonicalOrder is the fixed field ordering from spec.md §6's task file
// example; fields absent from the task are simply skipped.
var canonicalOrder = []string{
	"id", "title", "description", "status", "priority", "type",
	"assignee", "reporter", "due_date", "effort", "tags", "category",
	"custom_fields", "references", "comments", "history", "created",
	"modified", "sprints", "sprint_order",
}

// MarshalYAML implements custom encoding to produce the canonical field
// ordering and round-trip unknown keys and custom-field ordering.
func (t Task) MarshalYAML() (any, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}

	add := func(key string, value any) error {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(value); err != nil {
			return err
		}
		doc.Content = append(doc.Content, keyNode, valueNode)
		return nil
	}

	fields := map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"status":      t.Status,
		"priority":    t.Priority,
		"type":        t.Type,
		"assignee":    t.Assignee,
		"reporter":    t.Reporter,
		"due_date":    t.DueDate,
		"effort":      t.Effort,
		"tags":        t.Tags,
		"category":    t.Category,
		"references":  t.References,
		"comments":    t.Comments,
		"history":     t.History,
		"created":     t.Created,
		"modified":    t.Modified,
		"sprints":     t.Sprints,
		"sprint_order": t.SprintOrder,
	}

	for _, key := range canonicalOrder {
		if key == "custom_fields" {
			if len(t.CustomFields) == 0 {
				continue
			}
			node, err := customFieldsNode(t.CustomFields)
			if err != nil {
				return nil, err
			}
			doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, node)
			continue
		}

		value, ok := fields[key]
		if !ok {
			continue
		}
		if isEmptyOmittable(key, value) {
			continue
		}
		if err := add(key, value); err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
	}

	for _, extra := range t.Extra {
		node := extra.Value
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: extra.Key}, &node)
	}

	return doc, nil
}

func isEmptyOmittable(key string, value any) bool {
	switch key {
	case "id", "title", "status", "priority", "type", "created", "modified":
		return false // always present
	}
	switch v := value.(type) {
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []Reference:
		return len(v) == 0
	case []Comment:
		return len(v) == 0
	case []HistoryEntry:
		return len(v) == 0
	case nil:
		return true
	}
	return false
}

func customFieldsNode(fields []CustomField) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range fields {
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(f.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key}, valueNode)
	}
	return node, nil
}

// UnmarshalYAML implements custom decoding that extracts known fields
// and preserves any remaining top-level keys verbatim in Extra.
func (t *Task) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("task document must be a mapping, got kind %d", value.Kind)
	}

	known := map[string]struct{}{}
	for _, k := range canonicalOrder {
		known[k] = struct{}{}
	}

	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]
		key := keyNode.Value

		var err error
		switch key {
		case "id":
			err = valNode.Decode(&t.ID)
		case "title":
			err = valNode.Decode(&t.Title)
		case "description":
			err = valNode.Decode(&t.Description)
		case "status":
			err = valNode.Decode(&t.Status)
		case "priority":
			err = valNode.Decode(&t.Priority)
		case "type":
			err = valNode.Decode(&t.Type)
		case "assignee":
			err = valNode.Decode(&t.Assignee)
		case "reporter":
			err = valNode.Decode(&t.Reporter)
		case "due_date":
			err = valNode.Decode(&t.DueDate)
		case "effort":
			err = valNode.Decode(&t.Effort)
		case "tags":
			err = valNode.Decode(&t.Tags)
		case "category":
			err = valNode.Decode(&t.Category)
		case "custom_fields":
			t.CustomFields, err = decodeCustomFields(valNode)
		case "references":
			err = valNode.Decode(&t.References)
		case "comments":
			err = valNode.Decode(&t.Comments)
		case "history":
			err = valNode.Decode(&t.History)
		case "created":
			err = valNode.Decode(&t.Created)
		case "modified":
			err = valNode.Decode(&t.Modified)
		case "sprints":
			err = valNode.Decode(&t.Sprints)
		case "sprint_order":
			err = valNode.Decode(&t.SprintOrder)
		default:
			t.Extra = append(t.Extra, yamlPair{Key: key, Value: *valNode})
		}
		if err != nil {
			return fmt.Errorf("decode field %q: %w", key, err)
		}
	}

	if t.ID == "" {
		return fmt.Errorf("task document missing required field \"id\"")
	}

	return nil
}

func decodeCustomFields(node *yaml.Node) ([]CustomField, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("custom_fields must be a mapping")
	}
	var fields []CustomField
	for i := 0; i+1 < len(node.Content); i += 2 {
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, CustomField{Key: node.Content[i].Value, Value: value})
	}
	return fields, nil
}

// GetCustomField returns the value for key and whether it was present.
func (t *Task) GetCustomField(key string) (any, bool) {
	for _, f := range t.CustomFields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// SetCustomField inserts or replaces a custom field, preserving the
// position of an existing key.
func (t *Task) SetCustomField(key string, value any) {
	for i, f := range t.CustomFields {
		if f.Key == key {
			t.CustomFields[i].Value = value
			return
		}
	}
	t.CustomFields = append(t.CustomFields, CustomField{Key: key, Value: value})
}

// AddReference inserts ref unless an entry with the same Key already
// exists (spec.md §3 invariant: a code reference is unique per task).
func (t *Task) AddReference(ref Reference) {
	key := ref.Key()
	for _, existing := range t.References {
		if existing.Key() == key {
			return
		}
	}
	t.References = append(t.References, ref)
}

// Clone returns a deep-enough copy for diffing purposes (shallow copy of
// slices is sufficient since callers only replace, never mutate in place).
func (t Task) Clone() Task {
	clone := t
	clone.Tags = append([]string(nil), t.Tags...)
	clone.CustomFields = append([]CustomField(nil), t.CustomFields...)
	clone.References = append([]Reference(nil), t.References...)
	clone.Comments = append([]Comment(nil), t.Comments...)
	clone.History = append([]HistoryEntry(nil), t.History...)
	clone.Extra = append([]yamlPair(nil), t.Extra...)
	return clone
}
