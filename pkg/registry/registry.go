// Package registry holds the typed contract between the engine and its
// tool collaborators: a registered mapping from tool name to handler,
// argument schema, tool class, timeout policy, and resource-key
// extraction. Registrations are resolved and validated once at startup.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"

	"github.com/clokai/clok/pkg/call"
)

// Class partitions tools by their conflict and timeout behavior.
type Class string

const (
	ClassRead    Class = "read"
	ClassWrite   Class = "write"
	ClassCommand Class = "command"
	ClassSearch  Class = "search"
)

// Handler is the function signature for tool execution. Implementations
// honor ctx cancellation and perform their own path-scoping checks.
type Handler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// Parameter describes one tool argument for schema generation.
type Parameter struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Required    bool        `json:"required"`
	Default     interface{} `json:"default,omitempty"`
}

// Definition defines a tool's metadata and handler.
type Definition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Class       Class       `json:"class"`
	Parameters  []Parameter `json:"parameters"`
	Handler     Handler     `json:"-"`
	// Timeout overrides the class default when positive.
	Timeout time.Duration `json:"timeout,omitempty"`
	// ResourceArg names the argument holding the conflict path for
	// read/write tools. Defaults to "path" with a "file_path" fallback.
	ResourceArg string `json:"resource_arg,omitempty"`
}

// Registry manages tool registrations.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]*Definition
	schemas map[string]*gojsonschema.Schema
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		tools:   make(map[string]*Definition),
		schemas: make(map[string]*gojsonschema.Schema),
	}
}

// Register validates and adds a tool definition. Duplicate names and
// malformed definitions are configuration errors.
func (r *Registry) Register(def Definition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}

	schema, err := generateSchema(def)
	if err != nil {
		return call.NewConfigurationError("tools."+def.Name, "schema generation failed: %v", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return call.NewConfigurationError("tools."+def.Name, "tool already registered")
	}

	r.tools[def.Name] = &def
	r.schemas[def.Name] = schema

	log.Info().Str("tool", def.Name).Str("class", string(def.Class)).Msg("Tool registered")
	return nil
}

// Get returns a tool definition by name, or nil.
func (r *Registry) Get(name string) *Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// ValidateArgs checks a descriptor's arguments against the tool's schema.
func (r *Registry) ValidateArgs(name string, args map[string]interface{}) error {
	r.mu.RLock()
	schema := r.schemas[name]
	r.mu.RUnlock()

	if schema == nil {
		return nil
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return err
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return fmt.Errorf("argument validation failed: %v", details)
	}
	return nil
}

func validateDefinition(def Definition) error {
	if def.Name == "" {
		return call.NewConfigurationError("tools", "tool name cannot be empty")
	}
	if def.Description == "" {
		return call.NewConfigurationError("tools."+def.Name, "description cannot be empty")
	}
	if def.Handler == nil {
		return call.NewConfigurationError("tools."+def.Name, "handler cannot be nil")
	}
	switch def.Class {
	case ClassRead, ClassWrite, ClassCommand, ClassSearch:
	default:
		return call.NewConfigurationError("tools."+def.Name, "invalid class %q", def.Class)
	}

	validTypes := map[string]bool{
		"string": true, "number": true, "boolean": true,
		"object": true, "array": true, "integer": true,
	}
	for _, p := range def.Parameters {
		if p.Name == "" {
			return call.NewConfigurationError("tools."+def.Name, "parameter name cannot be empty")
		}
		if !validTypes[p.Type] {
			return call.NewConfigurationError("tools."+def.Name, "invalid parameter type %q for %s", p.Type, p.Name)
		}
	}
	return nil
}

func generateSchema(def Definition) (*gojsonschema.Schema, error) {
	properties := make(map[string]interface{})
	var required []string

	for _, p := range def.Parameters {
		prop := map[string]interface{}{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schemaMap := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schemaMap["required"] = required
	}

	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
}
