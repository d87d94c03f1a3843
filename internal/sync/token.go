package sync

import (
	"os"
	"strings"
)

// ResolveSecret resolves an auth-profile secret value per spec.md §4.H:
// if it looks like an UPPER_SNAKE environment variable name and that
// variable is set, use its value; otherwise fall back to the literal
// string. This function does not log; ResolveRemote logs the fallback
// warning for a profile's token. Grounded on the teacher's provider/token.ResolveToken priority
// chain, generalized from a fixed env-var list to the spec's
// looks-like-an-env-var-name heuristic.
func ResolveSecret(value string) (resolved string, usedEnv bool) {
	if value == "" {
		return "", false
	}
	if looksLikeEnvVarName(value) {
		if v := os.Getenv(value); v != "" {
			return v, true
		}
	}
	return value, false
}

func looksLikeEnvVarName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		upper := r >= 'A' && r <= 'Z'
		digit := r >= '0' && r <= '9'
		underscore := r == '_'
		if !upper && !digit && !underscore {
			return false
		}
	}
	return strings.ToUpper(s) == s
}
