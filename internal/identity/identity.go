// Package identity implements the path & identity utilities of
// spec.md §4.B: project-prefix generation, the reserved custom-field
// set, and current-user resolution.
package identity

import (
	"os"
	"os/user"
	"regexp"
	"strings"

	lotarerrors "github.com/lotar-dev/lotar/internal/errors"
	"github.com/lotar-dev/lotar/internal/vcs"
)

// Reserved is the set of field names that cannot be used as custom-field
// keys (spec.md §4.B).
var Reserved = map[string]struct{}{
	"id": {}, "title": {}, "status": {}, "priority": {}, "type": {},
	"assignee": {}, "reporter": {}, "project": {}, "tags": {},
	"created": {}, "modified": {}, "due_date": {}, "effort": {},
	"description": {}, "category": {},
}

// IsReserved reports whether name is a reserved field.
func IsReserved(name string) bool {
	_, ok := Reserved[name]
	return ok
}

var prefixCharset = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidPrefixCharset reports whether prefix uses only the allowed
// characters (spec.md §4.D validation: `[A-Za-z0-9_-]`).
func ValidPrefixCharset(prefix string) bool {
	return prefix != "" && prefixCharset.MatchString(prefix)
}

// GeneratePrefix derives an uppercase, up-to-4-character project prefix
// from a human project name: initials of multi-word names, otherwise
// leading letters of a single word. existing is the set of prefixes
// already in use, keyed by prefix with the stored project name they
// belong to; a collision with a *different* project name triggers
// disambiguation by extending characters, then by numeric suffix.
func GeneratePrefix(projectName string, existing map[string]string) (string, error) {
	base := initialsOrLeading(projectName)
	if base == "" {
		return "", lotarerrors.New(lotarerrors.KindValidation, "project name yields no usable prefix").WithField("project_name")
	}

	if owner, ok := existing[base]; !ok || owner == projectName {
		return base, nil
	}

	// Extend with further alphanumeric characters from the name.
	letters := alphanumeric(projectName)
	for n := len(base) + 1; n <= 4 && n <= len(letters); n++ {
		candidate := strings.ToUpper(letters[:n])
		if owner, ok := existing[candidate]; !ok || owner == projectName {
			return candidate, nil
		}
	}

	// Last resort: numeric suffix on the base prefix.
	for i := 2; i < 1000; i++ {
		candidate := truncate(base, 4-digits(i)) + itoa(i)
		if owner, ok := existing[candidate]; !ok || owner == projectName {
			return candidate, nil
		}
	}

	return "", lotarerrors.New(lotarerrors.KindPrefixConflict, "could not derive a unique prefix for "+projectName)
}

// ValidateExplicitPrefix checks a caller-supplied prefix against the
// existing set, failing with PrefixConflict on any collision with a
// different project (spec.md §4.B).
func ValidateExplicitPrefix(prefix, projectName string, existing map[string]string) error {
	if !ValidPrefixCharset(prefix) {
		return lotarerrors.New(lotarerrors.KindValidation, "prefix must match [A-Za-z0-9_-]+").WithField("prefix")
	}
	if len(prefix) > 20 {
		return lotarerrors.New(lotarerrors.KindValidation, "prefix length must be <= 20").WithField("prefix")
	}
	if owner, ok := existing[prefix]; ok && owner != projectName {
		return lotarerrors.New(lotarerrors.KindPrefixConflict, "prefix "+prefix+" already used by project "+owner).WithField("prefix")
	}
	return nil
}

func initialsOrLeading(name string) string {
	words := strings.Fields(name)
	if len(words) > 1 {
		var sb strings.Builder
		for _, w := range words {
			letters := alphanumeric(w)
			if letters == "" {
				continue
			}
			sb.WriteByte(upper(letters[0]))
			if sb.Len() >= 4 {
				break
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}

	letters := alphanumeric(name)
	return strings.ToUpper(truncate(letters, 4))
}

func alphanumeric(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

func digits(n int) int {
	d := 0
	for n > 0 {
		d++
		n /= 10
	}
	if d == 0 {
		d = 1
	}
	return d
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var sb []byte
	for n > 0 {
		sb = append([]byte{byte('0' + n%10)}, sb...)
		n /= 10
	}
	return string(sb)
}

// CurrentUser resolves the acting identity in priority order:
// LOTAR_USER env var, git user.email, git user.name, OS username.
// Used for @me filters and auto-identity population.
func CurrentUser(repoPath string) string {
	if u := os.Getenv("LOTAR_USER"); u != "" {
		return u
	}

	if g, err := vcs.New(repoPath); err == nil {
		if email, err := g.GetConfig("user.email"); err == nil && email != "" {
			return email
		}
		if name, err := g.GetConfig("user.name"); err == nil && name != "" {
			return name
		}
	}

	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}

	return ""
}
