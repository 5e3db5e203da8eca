// Package discovery finds the source files to lint with glob include and
// ignore patterns.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob.
// rootGlob is the pattern with a leading "**/" removed, so "**/*.js" also
// matches files in the root.
type compiledPattern struct {
	pattern  string
	glob     glob.Glob
	rootGlob glob.Glob
}

func compile(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		cp := compiledPattern{pattern: pattern, glob: g}
		if simplified, ok := strings.CutPrefix(pattern, "**/"); ok {
			if rg, err := glob.Compile(simplified, '/'); err == nil {
				cp.rootGlob = rg
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

// Finder handles file discovery with glob patterns and ignore rules.
// Patterns match slash-separated paths relative to the root.
type Finder struct {
	rootDir        string
	includePattern []compiledPattern
	ignorePatterns []compiledPattern
}

// NewFinder creates a finder rooted at rootDir.
func NewFinder(rootDir string, include, ignore []string) (*Finder, error) {
	inc, err := compile(include)
	if err != nil {
		return nil, err
	}
	ign, err := compile(ignore)
	if err != nil {
		return nil, err
	}
	return &Finder{rootDir: rootDir, includePattern: inc, ignorePatterns: ign}, nil
}

// Root returns the directory patterns are relative to.
func (f *Finder) Root() string {
	return f.rootDir
}

// Find returns the files to lint under targets, sorted and without
// duplicates. A target naming a file is always linted; directories are
// walked and filtered by the patterns. No targets means the root.
func (f *Finder) Find(targets ...string) ([]string, error) {
	if len(targets) == 0 {
		targets = []string{f.rootDir}
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", target, err)
		}
		if !info.IsDir() {
			add(target)
			continue
		}
		err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, ok := f.rel(path)
			if !ok {
				rel = filepath.ToSlash(path)
			}
			if d.IsDir() {
				if rel != "." && f.IgnoredDir(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if f.Match(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// Match reports whether a file path is included and not ignored.
func (f *Finder) Match(path string) bool {
	rel, ok := f.rel(path)
	if !ok {
		return false
	}
	if f.shouldIgnore(rel) {
		return false
	}
	return matchesAnyPattern(rel, f.includePattern)
}

func (f *Finder) rel(path string) (string, bool) {
	rel, err := filepath.Rel(f.rootDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// IgnoredDir reports whether a whole directory (slash-separated, relative
// to the root) is ignored, e.g. "node_modules" by "node_modules/**".
func (f *Finder) IgnoredDir(rel string) bool {
	if rel == ".git" || strings.HasSuffix(rel, "/.git") {
		return true
	}
	return matchesAnyPattern(rel+"/**", f.ignorePatterns) || matchesAnyPattern(rel, f.ignorePatterns)
}

// shouldIgnore checks if a path matches any ignore pattern.
func (f *Finder) shouldIgnore(rel string) bool {
	if matchesAnyPattern(rel, f.ignorePatterns) {
		return true
	}
	// a file below an ignored directory
	for dir := pathDir(rel); dir != ""; dir = pathDir(dir) {
		if f.IgnoredDir(dir) {
			return true
		}
	}
	return false
}

func pathDir(rel string) string {
	i := strings.LastIndexByte(rel, '/')
	if i < 0 {
		return ""
	}
	return rel[:i]
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	rootLevel := !strings.Contains(path, "/")
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
		if rootLevel && cp.rootGlob != nil && cp.rootGlob.Match(path) {
			return true
		}
	}
	return false
}
