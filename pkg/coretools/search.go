package coretools

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/clokai/clok/pkg/registry"
)

// Directories skipped by content search and directory walks.
var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"__pycache__":  true,
	".venv":        true,
	"vendor":       true,
}

// Extensions considered text for content search.
var textExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true, ".txt": true,
	".md": true, ".json": true, ".yml": true, ".yaml": true,
	".cfg": true, ".ini": true, ".toml": true, ".sh": true,
}

func findFilesTool(opts Options) registry.Definition {
	return registry.Definition{
		Name:        "find_files",
		Description: "Find files by name, glob, regex, or content.",
		Class:       registry.ClassSearch,
		Parameters: []registry.Parameter{
			{Name: "pattern", Type: "string", Description: "Search pattern", Required: true},
			{Name: "search_type", Type: "string", Description: "auto, name, glob, regex, or content", Required: false, Default: "auto"},
			{Name: "max_results", Type: "integer", Description: "Maximum number of results", Required: false, Default: 100},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			pattern := stringArg(args, "pattern")
			if pattern == "" {
				return nil, fmt.Errorf("pattern is required")
			}
			searchType := strings.TrimSpace(stringArg(args, "search_type"))
			if searchType == "" || searchType == "auto" {
				searchType = detectSearchType(pattern)
			}
			maxResults := intArg(args, "max_results", 100)

			matches, err := searchFiles(ctx, opts.WorkspaceRoot, pattern, searchType, maxResults)
			if err != nil {
				return nil, err
			}

			if len(matches) == 0 {
				return fmt.Sprintf("No files found matching pattern %q using %s search%s",
					pattern, searchType, searchSuggestions(pattern, searchType)), nil
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Found %d file(s) matching %q using %s search:\n", len(matches), pattern, searchType)
			for i, m := range matches {
				fmt.Fprintf(&b, "%d. %s\n", i+1, filepath.ToSlash(m))
			}
			if len(matches) == maxResults {
				fmt.Fprintf(&b, "\n(Limited to %d results. Use max_results to see more)", maxResults)
			}
			return strings.TrimSpace(b.String()), nil
		},
	}
}

func listDirectoryTool(opts Options) registry.Definition {
	return registry.Definition{
		Name:        "list_directory",
		Description: "List the entries of a workspace directory.",
		Class:       registry.ClassSearch,
		Parameters: []registry.Parameter{
			{Name: "path", Type: "string", Description: "Relative directory path", Required: false, Default: "."},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			pathValue := stringArg(args, "path", "directory")
			if pathValue == "" {
				pathValue = "."
			}
			target, err := resolveInWorkspace(opts.WorkspaceRoot, pathValue)
			if err != nil {
				return nil, err
			}

			entries, err := os.ReadDir(target)
			if err != nil {
				return nil, fmt.Errorf("directory %s not found", pathValue)
			}

			sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

			var b strings.Builder
			fmt.Fprintf(&b, "Contents of %s:\n", pathValue)
			for _, entry := range entries {
				if entry.IsDir() {
					fmt.Fprintf(&b, "[DIR]  %s/\n", entry.Name())
					continue
				}
				info, err := entry.Info()
				if err != nil {
					fmt.Fprintf(&b, "[FILE] %s\n", entry.Name())
					continue
				}
				fmt.Fprintf(&b, "[FILE] %s (%d bytes)\n", entry.Name(), info.Size())
			}
			return strings.TrimSpace(b.String()), nil
		},
	}
}

// detectSearchType picks the search mode for an "auto" request: glob for
// pure wildcard patterns, regex when regex metacharacters appear, plain
// name matching otherwise.
func detectSearchType(pattern string) string {
	hasRegexMeta := strings.ContainsAny(pattern, `.+^$[]()|\`)
	hasWildcard := strings.ContainsAny(pattern, "*?")

	switch {
	case hasWildcard && !hasRegexMeta:
		return "glob"
	case hasRegexMeta:
		return "regex"
	default:
		return "name"
	}
}

// searchSuggestions offers alternative search modes when nothing matched.
func searchSuggestions(pattern, searchType string) string {
	var s []string
	if searchType == "name" && strings.ContainsAny(pattern, `.*+?^$`) {
		s = append(s, fmt.Sprintf("\nTry: find_files(%q, \"regex\") for regex matching", pattern))
	}
	if searchType == "regex" && !strings.ContainsAny(pattern, `.*+?^$[]`) {
		s = append(s, fmt.Sprintf("\nTry: find_files(%q, \"name\") for simple text matching", pattern))
	}
	return strings.Join(s, "")
}

func searchFiles(ctx context.Context, root, pattern, searchType string, maxResults int) ([]string, error) {
	var matcher func(relPath, name string) (bool, error)

	switch searchType {
	case "name":
		lowered := strings.ToLower(pattern)
		matcher = func(_, name string) (bool, error) {
			return strings.Contains(strings.ToLower(name), lowered), nil
		}

	case "glob":
		matcher = func(relPath, name string) (bool, error) {
			if ok, err := filepath.Match(pattern, name); err != nil || ok {
				return ok, err
			}
			return filepath.Match(pattern, filepath.ToSlash(relPath))
		}

	case "regex":
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern: %w", err)
		}
		matcher = func(_, name string) (bool, error) {
			return re.MatchString(name), nil
		}

	case "content":
		lowered := strings.ToLower(pattern)
		matcher = func(relPath, name string) (bool, error) {
			if !textExtensions[filepath.Ext(name)] {
				return false, nil
			}
			data, err := os.ReadFile(filepath.Join(root, relPath))
			if err != nil {
				return false, nil
			}
			return strings.Contains(strings.ToLower(string(data)), lowered), nil
		}

	default:
		return nil, fmt.Errorf("invalid search_type: %s. Use: auto, name, glob, regex, or content", searchType)
	}

	var results []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		ok, merr := matcher(rel, d.Name())
		if merr != nil {
			return merr
		}
		if ok {
			results = append(results, rel)
			if len(results) >= maxResults {
				return fs.SkipAll
			}
		}
		return nil
	})
	if err != nil && err != fs.SkipAll {
		return nil, err
	}
	return results, nil
}
