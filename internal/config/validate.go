package config

import (
	"fmt"
	"regexp"

	"github.com/lotar-dev/lotar/internal/identity"
	"github.com/lotar-dev/lotar/internal/slices"
	"github.com/lotar-dev/lotar/internal/validation"
)

const prefixWarnLength = 12
const prefixMaxLength = 20

// canaryStrings are fed to every scan_ticket_patterns regex to detect
// ambiguity (spec.md §4.D: "two patterns matching the same canary
// string produce warnings").
var canaryStrings = []string{"ABC-123", "PROJ-1", "TASK-42"}

// Validate checks a resolved configuration for a given project prefix
// (prefix may be empty when validating the non-project-scoped view)
// and returns a validation.Result per spec.md §4.D.
func Validate(r ResolvedConfig, prefix string) *validation.Result {
	result := validation.NewResult()

	if prefix != "" {
		if len(prefix) > prefixMaxLength {
			result.AddError("PREFIX_TOO_LONG", fmt.Sprintf("prefix %q exceeds %d characters", prefix, prefixMaxLength), "prefix", "")
		} else if len(prefix) > prefixWarnLength {
			result.AddWarning("PREFIX_LONG", fmt.Sprintf("prefix %q is longer than the recommended %d characters", prefix, prefixWarnLength), "prefix", "")
		}
		if !identity.ValidPrefixCharset(prefix) {
			result.AddError("PREFIX_CHARSET", "prefix must match [A-Za-z0-9_-]+", "prefix", "")
		}
	}

	if len(r.IssueStates) == 0 {
		result.AddError("EMPTY_ISSUE_STATES", "issue_states must not be empty", "issue_states", "")
	}
	if len(r.IssuePriorities) == 0 {
		result.AddError("EMPTY_ISSUE_PRIORITIES", "issue_priorities must not be empty", "issue_priorities", "")
	}
	if len(r.IssueTypes) == 0 {
		result.AddError("EMPTY_ISSUE_TYPES", "issue_types must not be empty", "issue_types", "")
	}

	if r.DefaultStatus != "" && slices.IndexOf(r.IssueStates, r.DefaultStatus) < 0 {
		result.AddErrorWithSuggestion("DEFAULT_STATUS_NOT_IN_ISSUE_STATES",
			fmt.Sprintf("default_status %q is not a member of issue_states %v", r.DefaultStatus, r.IssueStates),
			"default_status", "",
			"add it to issue_states or change default_status")
	}
	if r.DefaultPriority != "" && slices.IndexOf(r.IssuePriorities, r.DefaultPriority) < 0 {
		result.AddErrorWithSuggestion("DEFAULT_PRIORITY_NOT_IN_ISSUE_PRIORITIES",
			fmt.Sprintf("default_priority %q is not a member of issue_priorities %v", r.DefaultPriority, r.IssuePriorities),
			"default_priority", "",
			"add it to issue_priorities or change default_priority")
	}

	duplicatesIn(result, "issue_states", r.IssueStates)
	duplicatesIn(result, "issue_types", r.IssueTypes)
	duplicatesIn(result, "issue_priorities", r.IssuePriorities)

	compiled := make([]*regexp.Regexp, 0, len(r.ScanTicketPatterns))
	for _, pattern := range r.ScanTicketPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			result.AddError("SCAN_PATTERN_INVALID", fmt.Sprintf("scan_ticket_patterns entry %q does not compile: %v", pattern, err), "scan_ticket_patterns", "")
			continue
		}
		compiled = append(compiled, re)
	}
	warnAmbiguousPatterns(result, r.ScanTicketPatterns, compiled)

	return result
}

func duplicatesIn(result *validation.Result, field string, list []string) {
	seen := map[string]bool{}
	for _, v := range list {
		if seen[v] {
			result.AddWarning("DUPLICATE_LIST_ENTRY", fmt.Sprintf("%s contains a duplicate entry %q", field, v), field, "")
		}
		seen[v] = true
	}
}

func warnAmbiguousPatterns(result *validation.Result, patterns []string, compiled []*regexp.Regexp) {
	for i := 0; i < len(compiled); i++ {
		for j := i + 1; j < len(compiled); j++ {
			for _, canary := range canaryStrings {
				if compiled[i].MatchString(canary) && compiled[j].MatchString(canary) {
					result.AddWarning("AMBIGUOUS_SCAN_PATTERN",
						fmt.Sprintf("scan_ticket_patterns %q and %q both match %q", patterns[i], patterns[j], canary),
						"scan_ticket_patterns", "")
					break
				}
			}
		}
	}
}
