package task

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// codeownersLocations lists the repo-relative paths git and GitHub
// both recognize for a CODEOWNERS file.
var codeownersLocations = []string{
	"CODEOWNERS",
	".github/CODEOWNERS",
	"docs/CODEOWNERS",
}

// ownerForPath returns the first owner declared for path in the
// repo's CODEOWNERS file, or "" if none matches. Patterns are matched
// as path prefixes against repo-relative slash paths, last match wins
// per CODEOWNERS' documented "last matching pattern" precedence.
func ownerForPath(repoRoot, path string) string {
	data := readCodeowners(repoRoot)
	if data == nil {
		return ""
	}

	rel := filepath.ToSlash(path)
	owner := ""
	for _, line := range data {
		pattern, owners := line.pattern, line.owners
		if matchesCodeownersPattern(pattern, rel) && len(owners) > 0 {
			owner = owners[0]
		}
	}
	return owner
}

type codeownersLine struct {
	pattern string
	owners  []string
}

func readCodeowners(repoRoot string) []codeownersLine {
	for _, loc := range codeownersLocations {
		f, err := os.Open(filepath.Join(repoRoot, loc))
		if err != nil {
			continue
		}
		defer f.Close()

		var lines []codeownersLine
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			text := strings.TrimSpace(scanner.Text())
			if text == "" || strings.HasPrefix(text, "#") {
				continue
			}
			fields := strings.Fields(text)
			if len(fields) < 2 {
				continue
			}
			lines = append(lines, codeownersLine{pattern: fields[0], owners: fields[1:]})
		}
		return lines
	}
	return nil
}

// matchesCodeownersPattern implements the subset of CODEOWNERS
// glob syntax this service needs: "*" matches everything, a leading
// "/" anchors to the repo root, otherwise the pattern matches any
// path component equal to it or any path under a directory it names.
func matchesCodeownersPattern(pattern, path string) bool {
	if pattern == "*" {
		return true
	}
	anchored := strings.HasPrefix(pattern, "/")
	pattern = strings.TrimPrefix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/")

	if anchored {
		return path == pattern || strings.HasPrefix(path, pattern+"/")
	}
	return path == pattern || strings.HasPrefix(path, pattern+"/") || strings.Contains(path, "/"+pattern+"/") || strings.HasSuffix(path, "/"+pattern)
}
