package commands

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lotar-dev/lotar/internal/config"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "config",
	Short:   "Inspect and manage configuration",
}

var configProjectFlag string

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration and each field's source",
	RunE:  runConfigShow,
}

var (
	configSetGlobal bool
)

var configSetCmd = &cobra.Command{
	Use:   "set <field>=<value> [field=value...]",
	Short: "Write one or more fields into a config layer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConfigSet,
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init <template>",
	Short: "Create config.yml for a project from a built-in template",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigInit,
}

var configTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List built-in config templates",
	RunE:  runConfigTemplates,
}

var (
	validateStrict bool
	validateFormat string
)

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the resolved configuration",
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd, configInitCmd, configTemplatesCmd, configValidateCmd)

	configCmd.PersistentFlags().StringVar(&configProjectFlag, "project", "", "Project prefix (required for project-scoped operations)")

	configSetCmd.Flags().BoolVar(&configSetGlobal, "global", false, "Write to the tasks-root global layer instead of project scope")

	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing project config.yml")

	configValidateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat warnings as errors")
	configValidateCmd.Flags().StringVar(&validateFormat, "format", "text", "Output format: text, json")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	resolved, err := config.Resolve(app.TasksRoot, configProjectFlag)
	if err != nil {
		return err
	}

	fields := sortedSourceFields(resolved.Sources)
	for _, f := range fields {
		fmt.Printf("%-26s %-10s (%s)\n", f, resolved.Sources[f], fieldValue(resolved, f))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	scope := config.ScopeProject
	if configSetGlobal {
		scope = config.ScopeGlobal
	}
	if scope == config.ScopeProject && configProjectFlag == "" {
		return errors.New("project scope requires --project")
	}

	for _, pair := range args {
		field, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid field=value pair: %q", pair)
		}
		if err := config.Set(app.Bus, app.TasksRoot, configProjectFlag, scope, field, value); err != nil {
			return err
		}
		fmt.Printf("set %s = %s\n", field, value)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}
	if configProjectFlag == "" {
		return errors.New("config init requires --project")
	}

	tpl, ok := config.TemplateByName(args[0])
	if !ok {
		names := make([]string, 0, len(config.Templates()))
		for _, t := range config.Templates() {
			names = append(names, t.Name)
		}
		return fmt.Errorf("unknown template %q, choose one of %v", args[0], names)
	}

	path := config.ProjectConfigPath(app.TasksRoot, configProjectFlag)
	if !configInitForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
	}

	if err := config.WriteLayer(path, tpl.Layer); err != nil {
		return err
	}

	fmt.Printf("Wrote %s using template %q\n", path, tpl.Name)
	return nil
}

func runConfigTemplates(cmd *cobra.Command, args []string) error {
	for _, tpl := range config.Templates() {
		fmt.Printf("%-10s %s\n", tpl.Name, tpl.Description)
	}
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	resolved, err := config.Resolve(app.TasksRoot, configProjectFlag)
	if err != nil {
		return err
	}

	result := config.Validate(resolved, configProjectFlag)
	fmt.Print(result.Format(validateFormat))

	if !result.Valid {
		return errors.New("configuration is invalid")
	}
	if validateStrict && result.Warnings > 0 {
		return fmt.Errorf("configuration has %d warning(s) in strict mode", result.Warnings)
	}
	return nil
}

func sortedSourceFields(sources map[string]config.Source) []string {
	fields := make([]string, 0, len(sources))
	for f := range sources {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func fieldValue(r config.ResolvedConfig, field string) string {
	switch field {
	case "default_assignee":
		return r.DefaultAssignee
	case "default_status":
		return r.DefaultStatus
	case "default_priority":
		return r.DefaultPriority
	case "default_project":
		return r.DefaultProject
	case "server_port":
		return fmt.Sprintf("%d", r.ServerPort)
	case "issue_states":
		return strings.Join(r.IssueStates, ",")
	case "issue_types":
		return strings.Join(r.IssueTypes, ",")
	case "issue_priorities":
		return strings.Join(r.IssuePriorities, ",")
	case "auto_set_reporter":
		return fmt.Sprintf("%t", r.AutoSetReporter)
	case "auto_codeowners_assign":
		return fmt.Sprintf("%t", r.AutoCodeowners)
	case "auto_tags_from_path":
		return fmt.Sprintf("%t", r.AutoTagsFromPath)
	case "auto_infer_from_branch":
		return fmt.Sprintf("%t", r.AutoInferBranch)
	case "assign_on_status":
		return fmt.Sprintf("%t", r.AssignOnStatus)
	case "scan_modified_only":
		return fmt.Sprintf("%t", r.ScanModifiedOnly)
	case "project_name":
		return r.ProjectName
	default:
		return ""
	}
}
