// Package coretools registers the baseline tool collaborators: file
// read/write/edit, shell command execution, and file/directory search.
// Every tool scopes its paths to the workspace root; the engine core
// provides no sandboxing beyond that contract.
package coretools

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/clokai/clok/pkg/registry"
)

// Options configures core tool registration.
type Options struct {
	WorkspaceRoot string
}

// Register adds the core tools to the registry.
func Register(reg *registry.Registry, opts Options) error {
	if reg == nil {
		return errors.New("tool registry is required")
	}
	if strings.TrimSpace(opts.WorkspaceRoot) == "" {
		return errors.New("workspace root is required")
	}
	opts.WorkspaceRoot = filepath.Clean(opts.WorkspaceRoot)

	tools := []registry.Definition{
		readFileTool(opts),
		writeFileTool(opts),
		editFileTool(opts),
		runCommandTool(opts),
		findFilesTool(opts),
		listDirectoryTool(opts),
	}

	for _, tool := range tools {
		if err := reg.Register(tool); err != nil {
			return fmt.Errorf("failed to register tool %s: %w", tool.Name, err)
		}
	}
	return nil
}

// resolveInWorkspace joins a relative path onto the workspace root and
// rejects anything that escapes it.
func resolveInWorkspace(root, pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return "", fmt.Errorf("path is required")
	}
	if strings.Contains(pathValue, "://") {
		return "", fmt.Errorf("path must be a local file")
	}

	candidate := pathValue
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(root, candidate)
	}
	candidate = filepath.Clean(candidate)

	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside workspace root", pathValue)
	}
	return candidate, nil
}

func stringArg(args map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := args[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

func intArg(args map[string]interface{}, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		if v > 0 {
			return int(v)
		}
	case int:
		if v > 0 {
			return v
		}
	}
	return fallback
}

func durationSecondsArg(args map[string]interface{}, key string, fallback time.Duration) time.Duration {
	switch v := args[key].(type) {
	case float64:
		if v > 0 {
			return time.Duration(v * float64(time.Second))
		}
	case int:
		if v > 0 {
			return time.Duration(v) * time.Second
		}
	}
	return fallback
}
