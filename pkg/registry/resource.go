package registry

import (
	"path/filepath"
	"strings"

	"github.com/clokai/clok/pkg/call"
)

// ResourceKey derives the conflict key for a descriptor: a normalized
// path for read/write-class tools, empty for command and search tools,
// which are treated as conflict-free. Unknown tools get no key.
func (r *Registry) ResourceKey(d call.Descriptor) string {
	def := r.Get(d.Tool)
	if def == nil {
		return ""
	}
	switch def.Class {
	case ClassRead, ClassWrite:
	default:
		return ""
	}

	keys := []string{"path", "file_path"}
	if def.ResourceArg != "" {
		keys = []string{def.ResourceArg, "path", "file_path"}
	}
	raw := d.StringArg(keys...)
	if raw == "" {
		return ""
	}
	return NormalizePath(raw)
}

// NormalizePath canonicalizes a path argument so that spelling variants
// of the same file collide: cleaned, slash-normalized, and stripped of a
// leading "./".
func NormalizePath(p string) string {
	cleaned := filepath.ToSlash(filepath.Clean(strings.TrimSpace(p)))
	return strings.TrimPrefix(cleaned, "./")
}
