package storage

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestTaskRoundTripPreservesCustomFieldOrder(t *testing.T) {
	task := Task{ID: "SERV-1", Title: "X", Status: "Todo", Priority: "Medium", Type: "Feature"}
	task.SetCustomField("story_points", 3)
	task.SetCustomField("component", "api")
	task.SetCustomField("acceptance_criteria", "must paginate")

	data, err := yaml.Marshal(task)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	idxSP := strings.Index(string(data), "story_points")
	idxComp := strings.Index(string(data), "component")
	idxAC := strings.Index(string(data), "acceptance_criteria")
	if !(idxSP < idxComp && idxComp < idxAC) {
		t.Fatalf("custom field order not preserved: %s", data)
	}

	var decoded Task
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(decoded.CustomFields) != 3 || decoded.CustomFields[0].Key != "story_points" {
		t.Fatalf("unexpected custom fields after round trip: %+v", decoded.CustomFields)
	}
}

func TestTaskRoundTripPreservesUnknownKeys(t *testing.T) {
	raw := []byte("id: SERV-1\ntitle: X\nstatus: Todo\npriority: Medium\ntype: Feature\nlegacy_field: keep-me\n")

	var task Task
	if err := yaml.Unmarshal(raw, &task); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(task.Extra) != 1 || task.Extra[0].Key != "legacy_field" {
		t.Fatalf("expected legacy_field preserved in Extra, got %+v", task.Extra)
	}

	out, err := yaml.Marshal(task)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(out), "legacy_field") {
		t.Fatalf("expected legacy_field to survive round trip, got %s", out)
	}
}

func TestTaskUnmarshalRequiresID(t *testing.T) {
	var task Task
	err := yaml.Unmarshal([]byte("title: no id here\n"), &task)
	if err == nil {
		t.Fatal("expected error for task document missing id")
	}
}

func TestAddReferenceDeduplicatesByKey(t *testing.T) {
	task := Task{ID: "SERV-1"}
	task.AddReference(Reference{Code: "main.go:42"})
	task.AddReference(Reference{Code: "main.go:42"})
	task.AddReference(Reference{Jira: "PROJ-9"})

	if len(task.References) != 2 {
		t.Fatalf("got %d references, want 2 (duplicate code ref collapsed)", len(task.References))
	}
}

func TestGetSetCustomFieldPreservesPositionOnUpdate(t *testing.T) {
	task := Task{ID: "SERV-1"}
	task.SetCustomField("a", 1)
	task.SetCustomField("b", 2)
	task.SetCustomField("a", 99)

	if len(task.CustomFields) != 2 {
		t.Fatalf("expected update in place, got %d fields", len(task.CustomFields))
	}
	if task.CustomFields[0].Key != "a" || task.CustomFields[0].Value != 99 {
		t.Fatalf("unexpected field a: %+v", task.CustomFields[0])
	}

	v, ok := task.GetCustomField("b")
	if !ok || v != 2 {
		t.Fatalf("GetCustomField(b) = %v, %v; want 2, true", v, ok)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	task := Task{ID: "SERV-1", Tags: []string{"a"}}
	clone := task.Clone()
	clone.Tags[0] = "b"

	if task.Tags[0] != "a" {
		t.Fatalf("mutating clone affected original: %v", task.Tags)
	}
}
