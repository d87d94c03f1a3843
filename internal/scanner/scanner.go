// Package scanner implements the Source Scanner of spec.md §4.F: a
// parallel walk of source trees that extracts signal-word comments
// (TODO/FIXME and the like) as candidate tasks. Grounded on the
// teacher's worker-pool-shaped CPU-bound scans and its
// labelTypeMap/labelPriorityMap closed-map pattern
// (provider/github/github.go) for the comment-token dispatch table.
package scanner

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lotar-dev/lotar/internal/vcs"
)

// commentTokens is the closed dispatch table mapping a file extension
// to the single-line comment token used to recognize signal-word
// lines. Extensions not present here are unsupported and skipped.
var commentTokens = map[string]string{
	".go":     "//",
	".ts":     "//",
	".tsx":    "//",
	".js":     "//",
	".jsx":    "//",
	".java":   "//",
	".c":      "//",
	".h":      "//",
	".cpp":    "//",
	".hpp":    "//",
	".cs":     "//",
	".rs":     "//",
	".swift":  "//",
	".kt":     "//",
	".scala":  "//",
	".py":     "#",
	".rb":     "#",
	".sh":     "#",
	".bash":   "#",
	".yaml":   "#",
	".yml":    "#",
	".toml":   "#",
	".r":      "#",
	".pl":     "#",
	".lua":    "--",
	".sql":    "--",
	".hs":     "--",
	".asm":    ";",
	".s":      ";",
	".ini":    ";",
	".tex":    "%",
	".erlang": "%",
	".erl":    "%",
}

var hiddenDirRe = regexp.MustCompile(`^\.`)

// Options configures a scan.
type Options struct {
	Root           string
	IncludeExt     []string // empty means "all supported extensions"
	ExcludeExt     []string
	SignalWords    []string
	TicketPatterns []string // regexes identifying an existing ticket key
	ModifiedOnly   bool
}

// Entry is one extracted signal-word comment, spec.md §4.F's ScanEntry.
type Entry struct {
	File        string
	Line        int
	Title       string
	Annotation  map[string]string
	ExistingKey string
	RawLine     string
	Signal      string // the signal word as written in source, e.g. "TODO"
}

// Result is the full output of a scan plus any per-file failures.
type Result struct {
	Entries []Entry
	Failed  []FailedFile
}

// FailedFile records a file that could not be read during the scan;
// other files still complete per spec.md §4.F's guarantee.
type FailedFile struct {
	Path string
	Err  error
}

// Scan walks opts.Root in parallel (worker-per-CPU via errgroup) and
// returns every signal-word comment found, sorted by (path, line).
func Scan(ctx context.Context, opts Options) (Result, error) {
	files, err := candidateFiles(opts)
	if err != nil {
		return Result{}, err
	}

	ticketRes := make([]*regexp.Regexp, 0, len(opts.TicketPatterns))
	for _, p := range opts.TicketPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		ticketRes = append(ticketRes, re)
	}
	signalRes := signalWordPatterns(opts.SignalWords)

	var (
		mu      sync.Mutex
		entries []Entry
		failed  []FailedFile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, f := range files {
		f := f
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			fileEntries, err := scanFile(opts.Root, f, signalRes, ticketRes)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, FailedFile{Path: f, Err: err})
				return nil
			}
			entries = append(entries, fileEntries...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].File != entries[j].File {
			return entries[i].File < entries[j].File
		}
		return entries[i].Line < entries[j].Line
	})

	return Result{Entries: entries, Failed: failed}, nil
}

func candidateFiles(opts Options) ([]string, error) {
	var modified map[string]bool
	if opts.ModifiedOnly {
		g, err := vcs.New(opts.Root)
		if err == nil {
			statuses, err := g.Status()
			if err == nil {
				modified = make(map[string]bool, len(statuses))
				for _, s := range statuses {
					modified[filepath.ToSlash(s.Path)] = true
				}
			}
		}
	}

	include := extSet(opts.IncludeExt)
	exclude := extSet(opts.ExcludeExt)

	var files []string
	err := filepath.WalkDir(opts.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if name != "." && hiddenDirRe.MatchString(name) {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := commentTokens[ext]; !ok {
			return nil
		}
		if len(include) > 0 && !include[ext] {
			return nil
		}
		if exclude[ext] {
			return nil
		}

		rel, err := filepath.Rel(opts.Root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if modified != nil && !modified[rel] {
			return nil
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func extSet(exts []string) map[string]bool {
	if len(exts) == 0 {
		return nil
	}
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		m[e] = true
	}
	return m
}

func signalWordPatterns(words []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		res = append(res, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return res
}

func scanFile(root, rel string, signalRes, ticketRes []*regexp.Regexp) ([]Entry, error) {
	ext := strings.ToLower(filepath.Ext(rel))
	token := commentTokens[ext]

	f, err := os.Open(filepath.Join(root, rel))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	lineNo := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		idx := strings.Index(line, token)
		if idx < 0 {
			continue
		}
		comment := line[idx+len(token):]

		var matched *regexp.Regexp
		for _, re := range signalRes {
			if re.MatchString(comment) {
				matched = re
				break
			}
		}
		if matched == nil {
			continue
		}

		entries = append(entries, buildEntry(rel, lineNo, line, comment, matched, ticketRes))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

var attributesRe = regexp.MustCompile(`\[([^\[\]]*)\]\s*$`)

// builtinAnchorRe recognizes the canonical SIGNAL(PREFIX-N) anchor this
// package's own rewriter emits (see insertIDIntoLine), immediately
// after the matched signal word. Checked unconditionally, independent
// of any user-configured scan_ticket_patterns, so a second scan over an
// already-anchored line stays idempotent regardless of that config
// (spec.md §8 / scenario S4).
var builtinAnchorRe = regexp.MustCompile(`^\s?\(([A-Za-z0-9]+-\d+)\)\s*:?`)

// matchBuiltinAnchor matches builtinAnchorRe anchored at the start of
// s, returning the captured key and the length of text consumed.
func matchBuiltinAnchor(s string) (key string, consumed int, ok bool) {
	m := builtinAnchorRe.FindStringSubmatchIndex(s)
	if m == nil {
		return "", 0, false
	}
	return s[m[2]:m[3]], m[1], true
}

func buildEntry(file string, line int, rawLine, comment string, signal *regexp.Regexp, ticketRes []*regexp.Regexp) Entry {
	rest := comment
	existingKey := ""
	signalText := ""

	if sigLoc := signal.FindStringIndex(rest); sigLoc != nil {
		signalText = rest[sigLoc[0]:sigLoc[1]]
		if key, consumed, ok := matchBuiltinAnchor(rest[sigLoc[1]:]); ok {
			existingKey = key
			rest = rest[:sigLoc[1]] + rest[sigLoc[1]+consumed:]
		}
	}

	if existingKey == "" {
		for _, re := range ticketRes {
			if loc := re.FindStringIndex(rest); loc != nil {
				existingKey = rest[loc[0]:loc[1]]
				rest = rest[:loc[0]] + rest[loc[1]:]
				break
			}
		}
	}

	annotation := map[string]string{}
	if m := attributesRe.FindStringSubmatchIndex(rest); m != nil {
		attrBody := rest[m[2]:m[3]]
		rest = rest[:m[0]]
		for _, pair := range strings.Split(attrBody, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			kv := strings.SplitN(pair, "=", 2)
			if len(kv) != 2 {
				continue
			}
			annotation[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}

	loc := signal.FindStringIndex(rest)
	title := rest
	if loc != nil {
		title = rest[loc[1]:]
	}
	title = strings.TrimLeft(title, ":() ")
	title = strings.TrimSpace(title)

	return Entry{
		File:        file,
		Line:        line,
		Title:       title,
		Annotation:  annotation,
		ExistingKey: existingKey,
		RawLine:     rawLine,
		Signal:      signalText,
	}
}
