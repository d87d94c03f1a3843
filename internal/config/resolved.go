// Package config implements the layered Configuration Resolver of
// spec.md §4.D: a five-source ranked merge (env > home > project >
// global > default) producing a ResolvedConfig plus per-field
// provenance, project-scoped writeback with elision, and load-time
// validation. Its shape generalizes the teacher's flat
// `config.Config`/`config.NewDefault()` struct (`internal/config/config.go`,
// since trimmed from this tree) to ranked, provenanced layering, and
// its writeback step writes each layer file atomically (temp file plus
// rename, see writeback.go).
package config

// Source identifies which layer contributed a resolved field's value.
type Source string

const (
	SourceEnv     Source = "env"
	SourceHome    Source = "home"
	SourceGlobal  Source = "global"
	SourceProject Source = "project"
	SourceDefault Source = "default"
)

// Layer is one YAML document in the merge chain, parsed as a partial
// overlay: every field is a pointer/nil-able so "unset" is
// distinguishable from "set to the zero value".
type Layer struct {
	DefaultAssignee  *string           `yaml:"default_assignee,omitempty"`
	DefaultStatus    *string           `yaml:"default_status,omitempty"`
	DefaultPriority  *string           `yaml:"default_priority,omitempty"`
	DefaultProject   *string           `yaml:"default_project,omitempty"`
	ServerPort       *int              `yaml:"server_port,omitempty"`
	IssueStates      []string          `yaml:"issue_states,omitempty"`
	IssueTypes       []string          `yaml:"issue_types,omitempty"`
	IssuePriorities  []string          `yaml:"issue_priorities,omitempty"`
	AutoSetReporter  *bool             `yaml:"auto_set_reporter,omitempty"`
	AutoCodeowners   *bool             `yaml:"auto_codeowners_assign,omitempty"`
	AutoTagsFromPath *bool             `yaml:"auto_tags_from_path,omitempty"`
	AutoInferBranch  *bool             `yaml:"auto_infer_from_branch,omitempty"`
	AssignOnStatus   *bool             `yaml:"assign_on_status,omitempty"`
	ScanSignalWords  []string          `yaml:"scan_signal_words,omitempty"`
	ScanTicketPatterns []string        `yaml:"scan_ticket_patterns,omitempty"`
	ScanIncludeExt   []string          `yaml:"scan_include_ext,omitempty"`
	ScanExcludeExt   []string          `yaml:"scan_exclude_ext,omitempty"`
	ScanPaths        []string          `yaml:"scan_paths,omitempty"`
	ScanModifiedOnly *bool             `yaml:"scan_modified_only,omitempty"`
	BranchTypeAliases     map[string]string `yaml:"branch_type_aliases,omitempty"`
	BranchStatusAliases   map[string]string `yaml:"branch_status_aliases,omitempty"`
	BranchPriorityAliases map[string]string `yaml:"branch_priority_aliases,omitempty"`

	// ProjectName is project-scope only; tracked here so the global/home
	// layers never declare it and the prefix-collision map can be built.
	ProjectName *string `yaml:"project_name,omitempty"`
}

// ResolvedConfig is the effective, fully-populated configuration after
// merging every layer against the built-in defaults.
type ResolvedConfig struct {
	DefaultAssignee  string
	DefaultStatus    string
	DefaultPriority  string
	DefaultProject   string
	ServerPort       int
	IssueStates      []string
	IssueTypes       []string
	IssuePriorities  []string
	AutoSetReporter  bool
	AutoCodeowners   bool
	AutoTagsFromPath bool
	AutoInferBranch  bool
	// AssignOnStatus triggers assignee population from the current
	// identity when a task's status changes (spec.md §4.E update()).
	AssignOnStatus   bool
	ScanSignalWords    []string
	ScanTicketPatterns []string
	ScanIncludeExt     []string
	ScanExcludeExt     []string
	ScanPaths          []string
	ScanModifiedOnly   bool
	BranchTypeAliases     map[string]string
	BranchStatusAliases   map[string]string
	BranchPriorityAliases map[string]string
	ProjectName string

	// Sources maps each canonical field name to the label of the layer
	// that won for it.
	Sources map[string]Source
}

// Defaults returns the built-in, lowest-priority layer.
func Defaults() ResolvedConfig {
	return ResolvedConfig{
		DefaultStatus:    "Todo",
		DefaultPriority:  "Medium",
		ServerPort:       8080,
		IssueStates:      []string{"Todo", "InProgress", "Done"},
		IssueTypes:       []string{"Feature", "Bug", "Chore"},
		IssuePriorities:  []string{"Low", "Medium", "High"},
		AutoSetReporter:  true,
		AutoCodeowners:   false,
		AutoTagsFromPath: false,
		AutoInferBranch:  false,
		AssignOnStatus:   false,
		ScanSignalWords:    []string{"TODO", "FIXME"},
		ScanTicketPatterns: nil,
		ScanIncludeExt:     nil,
		ScanExcludeExt:     nil,
		ScanPaths:          []string{"."},
		ScanModifiedOnly:   false,
		BranchTypeAliases:     map[string]string{},
		BranchStatusAliases:   map[string]string{},
		BranchPriorityAliases: map[string]string{},
		Sources: map[string]Source{},
	}
}

// canonicalFieldNames lists every field the merge/provenance/writeback
// logic recognizes, used to drive iteration and for validation
// whitelists.
var canonicalFieldNames = []string{
	"default_assignee", "default_status", "default_priority", "default_project",
	"server_port", "issue_states", "issue_types", "issue_priorities",
	"auto_set_reporter", "auto_codeowners_assign", "auto_tags_from_path", "auto_infer_from_branch",
	"assign_on_status",
	"scan_signal_words", "scan_ticket_patterns", "scan_include_ext", "scan_exclude_ext",
	"scan_paths", "scan_modified_only",
	"branch_type_aliases", "branch_status_aliases", "branch_priority_aliases",
	"project_name",
}

// projectOnlyFields cannot be set at the home or global scope (spec.md
// §4.D writeback per-scope whitelist).
var projectOnlyFields = map[string]bool{
	"project_name": true,
}
