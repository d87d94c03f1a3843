package config

import (
	"os"
	"path/filepath"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	lotarerrors "github.com/lotar-dev/lotar/internal/errors"
)

var titleCaser = cases.Title(language.English)

// HomeConfigPath returns the user-global layer's path, ~/.lotar/config.yml.
func HomeConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lotar", "config.yml")
}

// GlobalConfigPath returns the tasks-root layer's path.
func GlobalConfigPath(tasksRoot string) string {
	return filepath.Join(tasksRoot, "config.yml")
}

// ProjectConfigPath returns a single project's override layer path.
func ProjectConfigPath(tasksRoot, prefix string) string {
	return filepath.Join(tasksRoot, prefix, "config.yml")
}

// loadLayer reads and parses a YAML layer file, treating a missing
// file as an empty layer rather than an error.
func loadLayer(path string) (Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Layer{}, nil
		}
		return Layer{}, lotarerrors.Wrap(lotarerrors.KindIO, "read config layer "+path, err)
	}

	var l Layer
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layer{}, lotarerrors.Wrap(lotarerrors.KindSerialization, "parse config layer "+path, err).WithField(path)
	}
	return l, nil
}

// Resolve merges the five ranked sources for a given tasks root and
// optional project prefix (project may be empty to resolve only the
// non-project-scoped view). Resolve does not itself validate; call
// Validate on the result.
func Resolve(tasksRoot, project string) (ResolvedConfig, error) {
	resolved := Defaults()
	resolved.Sources = defaultSources()

	global, err := loadLayer(GlobalConfigPath(tasksRoot))
	if err != nil {
		return ResolvedConfig{}, err
	}
	home, err := loadLayer(HomeConfigPath())
	if err != nil {
		return ResolvedConfig{}, err
	}

	var proj Layer
	if project != "" {
		proj, err = loadLayer(ProjectConfigPath(tasksRoot, project))
		if err != nil {
			return ResolvedConfig{}, err
		}
	}

	env := envLayer()

	applyLayer(&resolved, global, SourceGlobal)
	applyLayer(&resolved, proj, SourceProject)
	applyLayer(&resolved, home, SourceHome)
	applyLayer(&resolved, env, SourceEnv)

	canonicalizeEnumCasing(&resolved)

	return resolved, nil
}

// ResolveNonProject resolves the view a project would inherit if it
// declared nothing itself — used by writeback's elision check.
func ResolveNonProject(tasksRoot string) (ResolvedConfig, error) {
	return Resolve(tasksRoot, "")
}

func defaultSources() map[string]Source {
	m := make(map[string]Source, len(canonicalFieldNames))
	for _, f := range canonicalFieldNames {
		m[f] = SourceDefault
	}
	return m
}

// applyLayer overlays l onto resolved, recording src as the provenance
// for any field l declares. List-valued fields replace; alias maps
// merge by key with higher priority replacing (spec.md §4.D).
func applyLayer(resolved *ResolvedConfig, l Layer, src Source) {
	set := func(field string) { resolved.Sources[field] = src }

	if l.DefaultAssignee != nil {
		resolved.DefaultAssignee = *l.DefaultAssignee
		set("default_assignee")
	}
	if l.DefaultStatus != nil {
		resolved.DefaultStatus = *l.DefaultStatus
		set("default_status")
	}
	if l.DefaultPriority != nil {
		resolved.DefaultPriority = *l.DefaultPriority
		set("default_priority")
	}
	if l.DefaultProject != nil {
		resolved.DefaultProject = *l.DefaultProject
		set("default_project")
	}
	if l.ServerPort != nil {
		resolved.ServerPort = *l.ServerPort
		set("server_port")
	}
	if len(l.IssueStates) > 0 {
		resolved.IssueStates = l.IssueStates
		set("issue_states")
	}
	if len(l.IssueTypes) > 0 {
		resolved.IssueTypes = l.IssueTypes
		set("issue_types")
	}
	if len(l.IssuePriorities) > 0 {
		resolved.IssuePriorities = l.IssuePriorities
		set("issue_priorities")
	}
	if l.AutoSetReporter != nil {
		resolved.AutoSetReporter = *l.AutoSetReporter
		set("auto_set_reporter")
	}
	if l.AutoCodeowners != nil {
		resolved.AutoCodeowners = *l.AutoCodeowners
		set("auto_codeowners_assign")
	}
	if l.AutoTagsFromPath != nil {
		resolved.AutoTagsFromPath = *l.AutoTagsFromPath
		set("auto_tags_from_path")
	}
	if l.AutoInferBranch != nil {
		resolved.AutoInferBranch = *l.AutoInferBranch
		set("auto_infer_from_branch")
	}
	if l.AssignOnStatus != nil {
		resolved.AssignOnStatus = *l.AssignOnStatus
		set("assign_on_status")
	}
	if len(l.ScanSignalWords) > 0 {
		resolved.ScanSignalWords = l.ScanSignalWords
		set("scan_signal_words")
	}
	if len(l.ScanTicketPatterns) > 0 {
		resolved.ScanTicketPatterns = l.ScanTicketPatterns
		set("scan_ticket_patterns")
	}
	if len(l.ScanIncludeExt) > 0 {
		resolved.ScanIncludeExt = l.ScanIncludeExt
		set("scan_include_ext")
	}
	if len(l.ScanExcludeExt) > 0 {
		resolved.ScanExcludeExt = l.ScanExcludeExt
		set("scan_exclude_ext")
	}
	if len(l.ScanPaths) > 0 {
		resolved.ScanPaths = l.ScanPaths
		set("scan_paths")
	}
	if l.ScanModifiedOnly != nil {
		resolved.ScanModifiedOnly = *l.ScanModifiedOnly
		set("scan_modified_only")
	}
	if len(l.BranchTypeAliases) > 0 {
		resolved.BranchTypeAliases = mergeAliases(resolved.BranchTypeAliases, l.BranchTypeAliases)
		set("branch_type_aliases")
	}
	if len(l.BranchStatusAliases) > 0 {
		resolved.BranchStatusAliases = mergeAliases(resolved.BranchStatusAliases, l.BranchStatusAliases)
		set("branch_status_aliases")
	}
	if len(l.BranchPriorityAliases) > 0 {
		resolved.BranchPriorityAliases = mergeAliases(resolved.BranchPriorityAliases, l.BranchPriorityAliases)
		set("branch_priority_aliases")
	}
	if l.ProjectName != nil {
		resolved.ProjectName = *l.ProjectName
		set("project_name")
	}
}

func mergeAliases(base, overlay map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}

// canonicalizeEnumCasing normalizes status/priority/type labels to
// Title case so "todo"/"TODO"/"Todo" all resolve identically, grounded
// on x/text/cases per the domain-stack wiring for this component.
func canonicalizeEnumCasing(r *ResolvedConfig) {
	r.DefaultStatus = titleCaser.String(r.DefaultStatus)
	r.DefaultPriority = titleCaser.String(r.DefaultPriority)
	for i, s := range r.IssueStates {
		r.IssueStates[i] = titleCaser.String(s)
	}
	for i, t := range r.IssueTypes {
		r.IssueTypes[i] = titleCaser.String(t)
	}
	for i, p := range r.IssuePriorities {
		r.IssuePriorities[i] = titleCaser.String(p)
	}
}
