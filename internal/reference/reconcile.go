// Package reference implements Reference Reconciliation (spec.md
// §4.G): inserting and re-anchoring file+line code references on a
// task. Grounded on the teacher's attachment-dedupe logic in
// provider/github/attachments.go (keep-newest-per-key, drop stale
// entries for the same resource).
package reference

import "github.com/lotar-dev/lotar/internal/storage"

// ReconcileCode applies an incoming "file#line" code reference to
// task's References per spec.md §4.G:
//  1. An entry with the same code value already present: no change.
//  2. reanchor: drop every other entry, keep only the new one.
//  3. Otherwise: keep entries for other files, replace any entry
//     anchored to the same file with codeRef.
//
// Returns the updated reference list and whether it changed.
func ReconcileCode(refs []storage.Reference, codeRef string, reanchor bool) ([]storage.Reference, bool) {
	for _, r := range refs {
		if r.Code == codeRef {
			return refs, false
		}
	}

	if reanchor {
		return []storage.Reference{{Code: codeRef}}, true
	}

	file := fileComponent(codeRef)
	next := make([]storage.Reference, 0, len(refs)+1)
	for _, r := range refs {
		if r.Code != "" && fileComponent(r.Code) == file {
			continue // replaced by codeRef below
		}
		next = append(next, r)
	}
	next = append(next, storage.Reference{Code: codeRef})
	return next, true
}

func fileComponent(codeRef string) string {
	for i := len(codeRef) - 1; i >= 0; i-- {
		if codeRef[i] == '#' {
			return codeRef[:i]
		}
	}
	return codeRef
}
