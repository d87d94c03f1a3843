package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	lotarerrors "github.com/lotar-dev/lotar/internal/errors"
	"github.com/lotar-dev/lotar/internal/events"
)

// Scope identifies which layer a Set call targets.
type Scope string

const (
	ScopeHome    Scope = "home"
	ScopeGlobal  Scope = "global"
	ScopeProject Scope = "project"
)

func layerPath(scope Scope, tasksRoot, project string) (string, error) {
	switch scope {
	case ScopeHome:
		return HomeConfigPath(), nil
	case ScopeGlobal:
		return GlobalConfigPath(tasksRoot), nil
	case ScopeProject:
		if project == "" {
			return "", lotarerrors.New(lotarerrors.KindValidation, "project scope requires a project prefix")
		}
		return ProjectConfigPath(tasksRoot, project), nil
	default:
		return "", lotarerrors.New(lotarerrors.KindValidation, "unknown config scope "+string(scope))
	}
}

// Set writes field=value into the named scope's layer. For project
// scope, if the new value equals what the project would inherit from
// the non-project view, the project's entry for that field is removed
// instead of being written, per spec.md §4.D's writeback elision rule.
func Set(bus *events.Bus, tasksRoot, project string, scope Scope, field, value string) error {
	if projectOnlyFields[field] && scope != ScopeProject {
		return lotarerrors.New(lotarerrors.KindValidation, field+" may only be set at project scope").WithField(field)
	}

	path, err := layerPath(scope, tasksRoot, project)
	if err != nil {
		return err
	}

	layer, err := loadLayer(path)
	if err != nil {
		return err
	}

	if err := setField(&layer, field, value); err != nil {
		return err
	}

	if scope == ScopeProject {
		inherited, err := ResolveNonProject(tasksRoot)
		if err != nil {
			return err
		}
		if fieldEqualsResolved(field, value, inherited) {
			clearField(&layer, field)
			if err := writeLayer(path, layer); err != nil {
				return err
			}
			publishConfigUpdated(bus, field, string(scope))
			return nil
		}
	}

	if err := writeLayer(path, layer); err != nil {
		return err
	}
	publishConfigUpdated(bus, field, string(scope))
	return nil
}

func publishConfigUpdated(bus *events.Bus, field, scope string) {
	if bus != nil {
		bus.Publish(events.ConfigUpdatedEvent{Field: field, Scope: scope})
	}
}

// WriteLayer serializes layer to path via the same atomic temp+rename
// write every layer file in this package uses. Exported for `lotar
// config init`, which writes a template's full Layer in one shot
// rather than field-by-field through Set.
func WriteLayer(path string, layer Layer) error {
	return writeLayer(path, layer)
}

func writeLayer(path string, layer Layer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return lotarerrors.Wrap(lotarerrors.KindIO, "create config directory", err)
	}

	data, err := yaml.Marshal(layer)
	if err != nil {
		return lotarerrors.Wrap(lotarerrors.KindSerialization, "encode config layer", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.yml")
	if err != nil {
		return lotarerrors.Wrap(lotarerrors.KindIO, "create temp config file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return lotarerrors.Wrap(lotarerrors.KindIO, "write temp config file", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return lotarerrors.Wrap(lotarerrors.KindIO, "sync temp config file", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return lotarerrors.Wrap(lotarerrors.KindIO, "close temp config file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return lotarerrors.Wrap(lotarerrors.KindIO, "rename config into place", err)
	}
	return nil
}

func setField(l *Layer, field, value string) error {
	switch field {
	case "default_assignee":
		l.DefaultAssignee = &value
	case "default_status":
		l.DefaultStatus = &value
	case "default_priority":
		l.DefaultPriority = &value
	case "default_project":
		l.DefaultProject = &value
	case "server_port":
		n, err := strconv.Atoi(value)
		if err != nil {
			return lotarerrors.New(lotarerrors.KindValidation, "server_port must be an integer").WithField(field)
		}
		l.ServerPort = &n
	case "issue_states":
		l.IssueStates = splitCSV(value)
	case "issue_types":
		l.IssueTypes = splitCSV(value)
	case "issue_priorities":
		l.IssuePriorities = splitCSV(value)
	case "auto_set_reporter":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return lotarerrors.New(lotarerrors.KindValidation, field+" must be a boolean").WithField(field)
		}
		l.AutoSetReporter = &b
	case "auto_codeowners_assign":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return lotarerrors.New(lotarerrors.KindValidation, field+" must be a boolean").WithField(field)
		}
		l.AutoCodeowners = &b
	case "auto_tags_from_path":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return lotarerrors.New(lotarerrors.KindValidation, field+" must be a boolean").WithField(field)
		}
		l.AutoTagsFromPath = &b
	case "auto_infer_from_branch":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return lotarerrors.New(lotarerrors.KindValidation, field+" must be a boolean").WithField(field)
		}
		l.AutoInferBranch = &b
	case "assign_on_status":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return lotarerrors.New(lotarerrors.KindValidation, field+" must be a boolean").WithField(field)
		}
		l.AssignOnStatus = &b
	case "scan_signal_words":
		l.ScanSignalWords = splitCSV(value)
	case "scan_ticket_patterns":
		l.ScanTicketPatterns = splitCSV(value)
	case "scan_include_ext":
		l.ScanIncludeExt = splitCSV(value)
	case "scan_exclude_ext":
		l.ScanExcludeExt = splitCSV(value)
	case "scan_paths":
		l.ScanPaths = splitCSV(value)
	case "scan_modified_only":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return lotarerrors.New(lotarerrors.KindValidation, field+" must be a boolean").WithField(field)
		}
		l.ScanModifiedOnly = &b
	case "branch_type_aliases":
		l.BranchTypeAliases = splitAliasCSV(value)
	case "branch_status_aliases":
		l.BranchStatusAliases = splitAliasCSV(value)
	case "branch_priority_aliases":
		l.BranchPriorityAliases = splitAliasCSV(value)
	case "project_name":
		l.ProjectName = &value
	default:
		return lotarerrors.New(lotarerrors.KindValidation, "unknown config field "+field).WithField(field)
	}
	return nil
}

func clearField(l *Layer, field string) {
	switch field {
	case "default_assignee":
		l.DefaultAssignee = nil
	case "default_status":
		l.DefaultStatus = nil
	case "default_priority":
		l.DefaultPriority = nil
	case "default_project":
		l.DefaultProject = nil
	case "server_port":
		l.ServerPort = nil
	case "issue_states":
		l.IssueStates = nil
	case "issue_types":
		l.IssueTypes = nil
	case "issue_priorities":
		l.IssuePriorities = nil
	case "auto_set_reporter":
		l.AutoSetReporter = nil
	case "auto_codeowners_assign":
		l.AutoCodeowners = nil
	case "auto_tags_from_path":
		l.AutoTagsFromPath = nil
	case "auto_infer_from_branch":
		l.AutoInferBranch = nil
	case "assign_on_status":
		l.AssignOnStatus = nil
	case "scan_signal_words":
		l.ScanSignalWords = nil
	case "scan_ticket_patterns":
		l.ScanTicketPatterns = nil
	case "scan_include_ext":
		l.ScanIncludeExt = nil
	case "scan_exclude_ext":
		l.ScanExcludeExt = nil
	case "scan_paths":
		l.ScanPaths = nil
	case "scan_modified_only":
		l.ScanModifiedOnly = nil
	case "branch_type_aliases":
		l.BranchTypeAliases = nil
	case "branch_status_aliases":
		l.BranchStatusAliases = nil
	case "branch_priority_aliases":
		l.BranchPriorityAliases = nil
	case "project_name":
		l.ProjectName = nil
	}
}

// fieldEqualsResolved reports whether value (as a string) matches what
// inherited already resolves to for field, so writeback can elide a
// redundant project override.
func fieldEqualsResolved(field, value string, inherited ResolvedConfig) bool {
	switch field {
	case "default_assignee":
		return value == inherited.DefaultAssignee
	case "default_status":
		return value == inherited.DefaultStatus
	case "default_priority":
		return value == inherited.DefaultPriority
	case "default_project":
		return value == inherited.DefaultProject
	case "server_port":
		return value == fmt.Sprintf("%d", inherited.ServerPort)
	case "issue_states":
		return csvEquals(value, inherited.IssueStates)
	case "issue_types":
		return csvEquals(value, inherited.IssueTypes)
	case "issue_priorities":
		return csvEquals(value, inherited.IssuePriorities)
	case "auto_set_reporter":
		return value == fmt.Sprintf("%t", inherited.AutoSetReporter)
	case "auto_codeowners_assign":
		return value == fmt.Sprintf("%t", inherited.AutoCodeowners)
	case "auto_tags_from_path":
		return value == fmt.Sprintf("%t", inherited.AutoTagsFromPath)
	case "auto_infer_from_branch":
		return value == fmt.Sprintf("%t", inherited.AutoInferBranch)
	case "assign_on_status":
		return value == fmt.Sprintf("%t", inherited.AssignOnStatus)
	case "scan_signal_words":
		return csvEquals(value, inherited.ScanSignalWords)
	case "scan_ticket_patterns":
		return csvEquals(value, inherited.ScanTicketPatterns)
	case "scan_include_ext":
		return csvEquals(value, inherited.ScanIncludeExt)
	case "scan_exclude_ext":
		return csvEquals(value, inherited.ScanExcludeExt)
	case "scan_paths":
		return csvEquals(value, inherited.ScanPaths)
	case "scan_modified_only":
		return value == fmt.Sprintf("%t", inherited.ScanModifiedOnly)
	default:
		return false
	}
}

func csvEquals(value string, list []string) bool {
	parsed := splitCSV(value)
	if len(parsed) != len(list) {
		return false
	}
	for i := range parsed {
		if parsed[i] != list[i] {
			return false
		}
	}
	return true
}
