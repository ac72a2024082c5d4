// Package resolve maps friendly application and website names to
// launchable targets. Resolution is a pure lookup over static tables
// plus read-only filesystem probes; a miss is a value, not an error.
package resolve

import (
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Table maps a friendly key to an ordered list of candidates. A candidate
// is either an absolute path or a bare executable name.
type Table map[string][]string

type Resolver struct {
	apps  Table
	sites map[string]string

	searchDirs []string
	exts       []string
}

// Option mutates a Resolver under construction.
type Option func(*Resolver)

// WithApps merges extra app candidates over the defaults.
func WithApps(t Table) Option {
	return func(r *Resolver) {
		for k, v := range t {
			r.apps[strings.ToLower(k)] = v
		}
	}
}

// WithWebsites merges extra website URLs over the defaults.
func WithWebsites(m map[string]string) Option {
	return func(r *Resolver) {
		for k, v := range m {
			r.sites[strings.ToLower(k)] = v
		}
	}
}

// WithSearchDirs replaces the install directories probed by the
// recursive search tier.
func WithSearchDirs(dirs []string) Option {
	return func(r *Resolver) { r.searchDirs = dirs }
}

func New(opts ...Option) *Resolver {
	r := &Resolver{
		apps:       defaultApps(),
		sites:      defaultWebsites(),
		searchDirs: defaultSearchDirs(),
		exts:       executableExts(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ResolveWebsite is the exact-key URL lookup. The router consults it
// before app resolution, so websites shadow same-named local apps.
func (r *Resolver) ResolveWebsite(name string) (string, bool) {
	url, ok := r.sites[strings.ToLower(strings.TrimSpace(name))]
	return url, ok
}

// ResolveApp turns a spoken target into an executable path. Tiers, first
// hit wins:
//
//  1. exact table key
//  2. any table key contained in the target ("open my chrome browser")
//  3. any single word of the target that is a table key
//  4. the final word checked directly against PATH
//
// Returns ok=false when every tier misses.
func (r *Resolver) ResolveApp(target string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(target))
	if key == "" {
		return "", false
	}

	if cands, ok := r.apps[key]; ok {
		if p := r.firstCandidate(cands); p != "" {
			return p, true
		}
	}

	// Sorted keys: a target containing two table keys must resolve the
	// same way on every call.
	for _, name := range r.sortedAppKeys() {
		if strings.Contains(key, name) {
			if p := r.firstCandidate(r.apps[name]); p != "" {
				return p, true
			}
		}
	}

	words := strings.Fields(key)
	for _, w := range words {
		if cands, ok := r.apps[w]; ok {
			if p := r.firstCandidate(cands); p != "" {
				return p, true
			}
		}
	}

	if len(words) > 0 {
		if p, err := exec.LookPath(words[len(words)-1]); err == nil {
			return p, true
		}
	}

	return "", false
}

func (r *Resolver) sortedAppKeys() []string {
	keys := make([]string, 0, len(r.apps))
	for name := range r.apps {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}

func (r *Resolver) firstCandidate(cands []string) string {
	for _, c := range cands {
		if p := r.findCandidate(c); p != "" {
			return p
		}
	}
	return ""
}

// findCandidate probes one candidate: absolute path, PATH lookup, then a
// bounded recursive search under the configured install directories.
func (r *Resolver) findCandidate(cand string) string {
	if filepath.IsAbs(cand) {
		if _, err := os.Stat(cand); err == nil {
			return cand
		}
	}

	if p, err := exec.LookPath(cand); err == nil {
		return p
	}

	base := filepath.Base(cand)
	for _, dir := range r.searchDirs {
		if dir == "" {
			continue
		}
		direct := filepath.Join(dir, cand)
		if _, err := os.Stat(direct); err == nil {
			return direct
		}
		if p := r.walkFind(dir, base); p != "" {
			return p
		}
	}
	return ""
}

// Bounds for the recursive install-directory search. Deep vendor trees
// under Program Files can hold hundreds of thousands of entries.
const (
	walkMaxDepth   = 5
	walkMaxEntries = 50000
)

// walkFind searches root for a file named base, preferring matches with
// a platform-executable extension. The walk is depth- and size-bounded.
func (r *Resolver) walkFind(root, base string) string {
	var fallback string
	seen := 0
	baseLower := strings.ToLower(base)

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fs.SkipDir
		}
		seen++
		if seen > walkMaxEntries {
			return fs.SkipAll
		}
		if d.IsDir() {
			if depth(root, path) >= walkMaxDepth {
				return fs.SkipDir
			}
			return nil
		}
		if strings.ToLower(d.Name()) != baseLower {
			return nil
		}
		if r.hasExecutableExt(path) {
			fallback = path
			return fs.SkipAll
		}
		if fallback == "" {
			fallback = path
		}
		return nil
	})

	return fallback
}

func (r *Resolver) hasExecutableExt(path string) bool {
	if len(r.exts) == 0 {
		// Non-Windows: no extension convention, accept any regular file.
		return true
	}
	lower := strings.ToLower(path)
	for _, ext := range r.exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func executableExts() []string {
	if runtime.GOOS == "windows" {
		return []string{".exe", ".bat", ".cmd"}
	}
	return nil
}
