package coretools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/clokai/clok/pkg/registry"
)

func readFileTool(opts Options) registry.Definition {
	return registry.Definition{
		Name:        "read_file",
		Description: "Read contents of a file in the workspace.",
		Class:       registry.ClassRead,
		Parameters: []registry.Parameter{
			{Name: "path", Type: "string", Description: "Relative file path", Required: true},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			pathValue := stringArg(args, "path", "file_path")
			target, err := resolveInWorkspace(opts.WorkspaceRoot, pathValue)
			if err != nil {
				return nil, err
			}

			info, err := os.Stat(target)
			if err != nil || info.IsDir() {
				return nil, fmt.Errorf("file %s not found", pathValue)
			}

			data, err := os.ReadFile(target)
			if err != nil {
				return nil, fmt.Errorf("error reading file %s: %w", pathValue, err)
			}
			return string(data), nil
		},
	}
}

func writeFileTool(opts Options) registry.Definition {
	return registry.Definition{
		Name:        "write_file",
		Description: "Write content to a file, creating it or overwriting it.",
		Class:       registry.ClassWrite,
		Parameters: []registry.Parameter{
			{Name: "path", Type: "string", Description: "Relative file path", Required: true},
			{Name: "content", Type: "string", Description: "Content to write", Required: true},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			pathValue := stringArg(args, "path", "file_path")
			target, err := resolveInWorkspace(opts.WorkspaceRoot, pathValue)
			if err != nil {
				return nil, err
			}
			content, _ := args["content"].(string)

			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return nil, err
			}

			_, statErr := os.Stat(target)
			existed := statErr == nil

			if err := os.WriteFile(target, []byte(content), 0644); err != nil {
				return nil, fmt.Errorf("error writing file %s: %w", pathValue, err)
			}

			if existed {
				return fmt.Sprintf("File %s updated successfully.", pathValue), nil
			}
			return fmt.Sprintf("File %s created successfully.", pathValue), nil
		},
	}
}

func editFileTool(opts Options) registry.Definition {
	return registry.Definition{
		Name:        "edit_file",
		Description: "Edit an existing file with a surgical line-based modification.",
		Class:       registry.ClassWrite,
		Parameters: []registry.Parameter{
			{Name: "path", Type: "string", Description: "Relative file path", Required: true},
			{Name: "action", Type: "string", Description: "insert_before, insert_after, replace_range, or append_to_end", Required: true},
			{Name: "content", Type: "string", Description: "Content to insert or replace", Required: true},
			{Name: "match_text", Type: "string", Description: "Text to locate the target line", Required: false},
			{Name: "start_line", Type: "integer", Description: "1-based start line", Required: false},
			{Name: "end_line", Type: "integer", Description: "1-based end line", Required: false},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			pathValue := stringArg(args, "path", "file_path")
			target, err := resolveInWorkspace(opts.WorkspaceRoot, pathValue)
			if err != nil {
				return nil, err
			}
			action := strings.TrimSpace(stringArg(args, "action"))
			content, _ := args["content"].(string)
			matchText := stringArg(args, "match_text")
			startLine := intArg(args, "start_line", 0)
			endLine := intArg(args, "end_line", 0)

			data, err := os.ReadFile(target)
			if err != nil {
				return nil, fmt.Errorf("file %s not found", pathValue)
			}
			lines := strings.Split(string(data), "\n")

			edited, err := applyEdit(lines, action, content, matchText, startLine, endLine)
			if err != nil {
				return nil, err
			}

			if err := os.WriteFile(target, []byte(strings.Join(edited, "\n")), 0644); err != nil {
				return nil, fmt.Errorf("error editing file %s: %w", pathValue, err)
			}
			return fmt.Sprintf("File %s edited successfully using %s operation.", pathValue, action), nil
		},
	}
}

// applyEdit performs the requested line edit. Line numbers are 1-based;
// match_text wins over line numbers for insert operations.
func applyEdit(lines []string, action, content, matchText string, startLine, endLine int) ([]string, error) {
	switch action {
	case "append_to_end":
		return append(lines, content), nil

	case "insert_before", "insert_after":
		target := -1
		switch {
		case matchText != "":
			for i, line := range lines {
				if strings.Contains(line, matchText) {
					target = i
					break
				}
			}
			if target < 0 {
				return nil, fmt.Errorf("match text %q not found in file", matchText)
			}
		case startLine > 0:
			if startLine > len(lines) {
				return nil, fmt.Errorf("line number %d is out of range", startLine)
			}
			target = startLine - 1
		default:
			return nil, fmt.Errorf("either match_text or start_line must be provided for %s", action)
		}

		if action == "insert_after" {
			target++
		}
		out := make([]string, 0, len(lines)+1)
		out = append(out, lines[:target]...)
		out = append(out, content)
		out = append(out, lines[target:]...)
		return out, nil

	case "replace_range":
		if startLine <= 0 || endLine <= 0 {
			// Without a range the whole file is replaced.
			return strings.Split(content, "\n"), nil
		}
		if startLine > endLine || endLine > len(lines) {
			return nil, fmt.Errorf("invalid line range: %d-%d", startLine, endLine)
		}
		replacement := strings.Split(content, "\n")
		out := make([]string, 0, len(lines))
		out = append(out, lines[:startLine-1]...)
		out = append(out, replacement...)
		out = append(out, lines[endLine:]...)
		return out, nil

	default:
		return nil, fmt.Errorf("invalid action: %s. Must be one of: insert_before, insert_after, replace_range, append_to_end", action)
	}
}
