package analyzer

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery walks a source tree and selects files by glob patterns.
// Paths are matched and returned relative to the root with forward
// slashes, so pattern behavior does not depend on the host OS.
type Discovery struct {
	rootDir string
	include []compiledPattern
	exclude []compiledPattern
}

// NewDiscovery compiles the include and exclude patterns for rootDir.
func NewDiscovery(rootDir string, include, exclude []string) (*Discovery, error) {
	d := &Discovery{rootDir: rootDir}

	for _, pattern := range include {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		d.include = append(d.include, compiledPattern{pattern: pattern, glob: g})
	}

	for _, pattern := range exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		d.exclude = append(d.exclude, compiledPattern{pattern: pattern, glob: g})
	}

	return d, nil
}

// Discover walks the tree and returns the matching relative paths in
// lexical order. Lexical order keeps every downstream phase, including
// name resolution, deterministic across runs.
func (d *Discovery) Discover() ([]string, error) {
	var files []string

	err := filepath.WalkDir(d.rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if entry.IsDir() {
			if relPath != "." && d.shouldExclude(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.shouldExclude(relPath) {
			return nil
		}
		if matchesAnyPattern(relPath, d.include) {
			files = append(files, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", d.rootDir, err)
	}

	sort.Strings(files)
	return files, nil
}

// shouldExclude checks a path against the exclude patterns. Directories
// are also tried with a /** suffix so "node_modules" matches the pattern
// "**/node_modules/**" and the walk can skip the whole subtree.
func (d *Discovery) shouldExclude(relPath string) bool {
	if matchesAnyPattern(relPath, d.exclude) {
		return true
	}
	return matchesAnyPattern(relPath+"/**", d.exclude)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// A leading **/ demands a literal separator, so "**/*.py" misses
	// "main.py" and "**/venv/**" misses a root-level "venv". Retry with
	// the prefix stripped so patterns match at any depth, root included.
	for _, cp := range patterns {
		if strings.HasPrefix(cp.pattern, "**/") {
			simplified := strings.TrimPrefix(cp.pattern, "**/")
			if simplifiedGlob, err := glob.Compile(simplified, '/'); err == nil {
				if simplifiedGlob.Match(path) {
					return true
				}
			}
		}
	}

	return false
}
