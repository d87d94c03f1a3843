package config

import (
	"os"
	"strconv"
	"strings"
)

// envLayer builds a Layer from the fixed environment-variable
// enumeration in spec.md §4.D. Deliberately hand-written against
// os.Getenv rather than a struct-tag decoder: the dropped teacher
// dependency `go-envconfig` is an unresolvable internal module (see
// DESIGN.md), and the env surface here is small and exhaustively
// enumerated, which a decoder would not meaningfully simplify.
func envLayer() Layer {
	var l Layer

	if v := firstNonEmpty("LOTAR_PORT", "LOTAR_SERVER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			l.ServerPort = &n
		}
	}
	if v := firstNonEmpty("LOTAR_PROJECT", "LOTAR_DEFAULT_PROJECT"); v != "" {
		l.DefaultProject = &v
	}
	if v := os.Getenv("LOTAR_DEFAULT_ASSIGNEE"); v != "" {
		l.DefaultAssignee = &v
	}
	if v := os.Getenv("LOTAR_DEFAULT_PRIORITY"); v != "" {
		l.DefaultPriority = &v
	}
	if v := os.Getenv("LOTAR_DEFAULT_STATUS"); v != "" {
		l.DefaultStatus = &v
	}

	if v := os.Getenv("LOTAR_ISSUE_STATES"); v != "" {
		l.IssueStates = splitCSV(v)
	}
	if v := os.Getenv("LOTAR_ISSUE_TYPES"); v != "" {
		l.IssueTypes = splitCSV(v)
	}
	if v := os.Getenv("LOTAR_ISSUE_PRIORITIES"); v != "" {
		l.IssuePriorities = splitCSV(v)
	}

	if b, ok := envBool("LOTAR_AUTO_SET_REPORTER"); ok {
		l.AutoSetReporter = &b
	}
	if b, ok := envBool("LOTAR_AUTO_CODEOWNERS_ASSIGN"); ok {
		l.AutoCodeowners = &b
	}
	if b, ok := envBool("LOTAR_AUTO_TAGS_FROM_PATH"); ok {
		l.AutoTagsFromPath = &b
	}
	if b, ok := envBool("LOTAR_AUTO_INFER_FROM_BRANCH"); ok {
		l.AutoInferBranch = &b
	}
	if b, ok := envBool("LOTAR_ASSIGN_ON_STATUS"); ok {
		l.AssignOnStatus = &b
	}

	if v := os.Getenv("LOTAR_SCAN_SIGNAL_WORDS"); v != "" {
		l.ScanSignalWords = splitCSV(v)
	}
	if v := os.Getenv("LOTAR_SCAN_TICKET_PATTERNS"); v != "" {
		l.ScanTicketPatterns = splitCSV(v)
	}
	if v := os.Getenv("LOTAR_SCAN_INCLUDE_EXT"); v != "" {
		l.ScanIncludeExt = splitCSV(v)
	}
	if v := os.Getenv("LOTAR_SCAN_EXCLUDE_EXT"); v != "" {
		l.ScanExcludeExt = splitCSV(v)
	}
	if v := os.Getenv("LOTAR_SCAN_PATHS"); v != "" {
		l.ScanPaths = splitCSV(v)
	}
	if b, ok := envBool("LOTAR_SCAN_MODIFIED_ONLY"); ok {
		l.ScanModifiedOnly = &b
	}

	if v := os.Getenv("LOTAR_BRANCH_TYPE_ALIASES"); v != "" {
		l.BranchTypeAliases = splitAliasCSV(v)
	}
	if v := os.Getenv("LOTAR_BRANCH_STATUS_ALIASES"); v != "" {
		l.BranchStatusAliases = splitAliasCSV(v)
	}
	if v := os.Getenv("LOTAR_BRANCH_PRIORITY_ALIASES"); v != "" {
		l.BranchPriorityAliases = splitAliasCSV(v)
	}

	return l
}

func firstNonEmpty(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

func envBool(name string) (bool, bool) {
	v := os.Getenv(name)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitAliasCSV parses "branch-substring=value,..." pairs. A bare
// mapping-literal form (`{a: b}`) is left to the YAML layers; env vars
// only support the flat CSV form per spec.md §4.D.
func splitAliasCSV(v string) map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(v, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, val, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(val)
	}
	return out
}
