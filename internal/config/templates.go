package config

// Template is a named, ready-to-apply starting Layer for `lotar config
// templates` (spec.md §6 [SUPPLEMENT]). Templates give new projects a
// sane issue_states/types/priorities set without hand-authoring YAML.
type Template struct {
	Name        string
	Description string
	Layer       Layer
}

func strPtr(s string) *string { return &s }

// Templates lists the built-in starting configurations.
func Templates() []Template {
	return []Template{
		{
			Name:        "kanban",
			Description: "Three-column board: Todo, InProgress, Done",
			Layer: Layer{
				IssueStates:     []string{"Todo", "InProgress", "Done"},
				IssueTypes:      []string{"Feature", "Bug", "Chore"},
				IssuePriorities: []string{"Low", "Medium", "High"},
				DefaultStatus:   strPtr("Todo"),
				DefaultPriority: strPtr("Medium"),
			},
		},
		{
			Name:        "scrum",
			Description: "Backlog-driven flow with a review gate",
			Layer: Layer{
				IssueStates:     []string{"Backlog", "Todo", "InProgress", "Review", "Done"},
				IssueTypes:      []string{"Story", "Bug", "Task", "Epic"},
				IssuePriorities: []string{"Low", "Medium", "High", "Critical"},
				DefaultStatus:   strPtr("Backlog"),
				DefaultPriority: strPtr("Medium"),
			},
		},
		{
			Name:        "support",
			Description: "Ticket triage flow for a support queue",
			Layer: Layer{
				IssueStates:     []string{"New", "Triaged", "InProgress", "WaitingOnCustomer", "Resolved"},
				IssueTypes:      []string{"Bug", "Question", "FeatureRequest"},
				IssuePriorities: []string{"Low", "Medium", "High", "Urgent"},
				DefaultStatus:   strPtr("New"),
				DefaultPriority: strPtr("Medium"),
			},
		},
	}
}

// TemplateByName looks up a built-in template, returning ok=false if
// name doesn't match any.
func TemplateByName(name string) (Template, bool) {
	for _, t := range Templates() {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}
