package taskschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Common errors.
var (
	ErrDuplicateTask     = errors.New("task type already registered")
	ErrDuplicateMatcher  = errors.New("problem matcher already registered")
	ErrInvalidDefinition = errors.New("invalid task definition")
	ErrInvalidMatcher    = errors.New("invalid problem matcher")
)

// SchemaVersion is the tasks file format version the document describes.
const SchemaVersion = "2.0.0"

// Property describes one configuration property in JSON Schema terms.
type Property struct {
	Type        string               `json:"type,omitempty"`
	Description string               `json:"description,omitempty"`
	Enum        []any                `json:"enum,omitempty"`
	Default     any                  `json:"default,omitempty"`
	Items       *Property            `json:"items,omitempty"`
	Properties  map[string]*Property `json:"properties,omitempty"`
}

// TaskDefinition declares a task type and its type-specific properties.
type TaskDefinition struct {
	// Type is the task type identifier (e.g. "shell", "npm").
	Type string

	// Description documents the task type in the assembled schema.
	Description string

	// Required lists property names that must be present. Every name
	// must appear in Properties.
	Required []string

	// Properties are the type-specific configuration properties.
	Properties map[string]*Property
}

// MatcherPattern maps regexp capture groups to problem fields.
type MatcherPattern struct {
	Regexp   string `json:"regexp"`
	File     int    `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Severity int    `json:"severity,omitempty"`
	Code     int    `json:"code,omitempty"`
	Message  int    `json:"message,omitempty"`
}

// ProblemMatcher declares a named matcher tasks can reference as "$name".
type ProblemMatcher struct {
	// Name is the identifier tasks reference, without the "$" prefix.
	Name string

	// Owner is the problem owner (e.g. the language id).
	Owner string

	// Source labels where problems come from (e.g. "gcc").
	Source string

	// Severity is the default severity when a pattern captures none.
	Severity string

	// FileLocation is how captured file paths resolve
	// ("absolute" or "relative").
	FileLocation string

	// Pattern holds one or more line patterns applied in order.
	Pattern []MatcherPattern
}

// Builder collects task type and problem matcher registrations and
// assembles the schema document.
type Builder struct {
	mu       sync.Mutex
	defs     map[string]TaskDefinition
	matchers map[string]ProblemMatcher
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		defs:     make(map[string]TaskDefinition),
		matchers: make(map[string]ProblemMatcher),
	}
}

// RegisterTask adds a task type definition.
func (b *Builder) RegisterTask(def TaskDefinition) error {
	if def.Type == "" {
		return fmt.Errorf("%w: empty type", ErrInvalidDefinition)
	}
	for _, name := range def.Required {
		if _, ok := def.Properties[name]; !ok {
			return fmt.Errorf("%w: required property %q not declared", ErrInvalidDefinition, name)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.defs[def.Type]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, def.Type)
	}
	b.defs[def.Type] = def
	return nil
}

// RegisterMatcher adds a named problem matcher.
func (b *Builder) RegisterMatcher(m ProblemMatcher) error {
	if m.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidMatcher)
	}
	for _, p := range m.Pattern {
		if p.Regexp == "" {
			return fmt.Errorf("%w: %s: pattern without regexp", ErrInvalidMatcher, m.Name)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.matchers[m.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateMatcher, m.Name)
	}
	b.matchers[m.Name] = m
	return nil
}

// TaskTypes returns the registered task type names, sorted.
func (b *Builder) TaskTypes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return sortedKeys(b.defs)
}

// MatcherNames returns the registered matcher names, sorted.
func (b *Builder) MatcherNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return sortedKeys(b.matchers)
}

// Build assembles the complete JSON Schema document from the current
// registrations. Output is deterministic: registrations are folded in
// sorted type/name order.
func (b *Builder) Build() (map[string]any, error) {
	b.mu.Lock()
	defs := make(map[string]TaskDefinition, len(b.defs))
	for k, v := range b.defs {
		defs[k] = v
	}
	matchers := make(map[string]ProblemMatcher, len(b.matchers))
	for k, v := range b.matchers {
		matchers[k] = v
	}
	b.mu.Unlock()

	definitions := map[string]any{
		"baseTask":       baseTaskSchema(sortedKeys(defs)),
		"problemMatcher": matcherSchema(matchers),
	}

	var typeRefs []any
	for _, typ := range sortedKeys(defs) {
		def := defs[typ]
		key := "task." + typ
		definitions[key] = taskTypeSchema(def)
		typeRefs = append(typeRefs, map[string]any{"$ref": "#/definitions/" + key})
	}

	taskDescription := map[string]any{"$ref": "#/definitions/baseTask"}
	if len(typeRefs) > 0 {
		taskDescription = map[string]any{"oneOf": typeRefs}
	}
	definitions["taskDescription"] = taskDescription

	return map[string]any{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "object",
		"properties": map[string]any{
			"version": map[string]any{
				"type":        "string",
				"enum":        []any{SchemaVersion},
				"description": "The configuration's version number.",
			},
			"tasks": map[string]any{
				"type":  "array",
				"items": map[string]any{"$ref": "#/definitions/taskDescription"},
			},
		},
		"definitions": definitions,
	}, nil
}

// BuildJSON assembles the document and encodes it with indentation.
func (b *Builder) BuildJSON() ([]byte, error) {
	doc, err := b.Build()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// baseTaskSchema is the definition shared by every task type.
func baseTaskSchema(types []string) map[string]any {
	properties := map[string]any{
		"label": map[string]any{
			"type":        "string",
			"description": "The task's user-facing label.",
		},
		"problemMatcher": map[string]any{
			"$ref": "#/definitions/problemMatcher",
		},
		"isBackground": map[string]any{
			"type":        "boolean",
			"default":     false,
			"description": "Whether the task keeps running in the background.",
		},
		"group": map[string]any{
			"type": "string",
			"enum": []any{"build", "test", "none"},
		},
		"dependsOn": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	}

	if len(types) > 0 {
		enum := make([]any, len(types))
		for i, t := range types {
			enum[i] = t
		}
		properties["type"] = map[string]any{
			"type":        "string",
			"enum":        enum,
			"description": "The task type.",
		}
	} else {
		properties["type"] = map[string]any{
			"type":        "string",
			"description": "The task type.",
		}
	}

	return map[string]any{
		"type":       "object",
		"required":   []any{"label", "type"},
		"properties": properties,
	}
}

// matcherSchema builds the problemMatcher definition: a "$name" reference,
// an inline matcher object, or an array of either.
func matcherSchema(matchers map[string]ProblemMatcher) map[string]any {
	inline := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"owner":        map[string]any{"type": "string"},
			"source":       map[string]any{"type": "string"},
			"severity":     map[string]any{"type": "string", "enum": []any{"error", "warning", "info"}},
			"fileLocation": map[string]any{"type": "string", "enum": []any{"absolute", "relative"}},
			"pattern": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"required":   []any{"regexp"},
					"properties": patternProperties(),
				},
			},
		},
	}

	byName := map[string]any{"type": "string"}
	if len(matchers) > 0 {
		names := sortedKeys(matchers)
		enum := make([]any, len(names))
		for i, n := range names {
			enum[i] = "$" + n
		}
		byName["enum"] = enum
	}

	scalar := []any{byName, inline}
	return map[string]any{
		"anyOf": append(scalar, map[string]any{
			"type":  "array",
			"items": map[string]any{"anyOf": scalar},
		}),
	}
}

func patternProperties() map[string]any {
	props := map[string]any{
		"regexp": map[string]any{"type": "string"},
	}
	for _, group := range []string{"file", "line", "column", "severity", "code", "message"} {
		props[group] = map[string]any{"type": "integer"}
	}
	return props
}

// taskTypeSchema merges the base task with one type's specifics.
func taskTypeSchema(def TaskDefinition) map[string]any {
	specific := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"type": map[string]any{
				"type": "string",
				"enum": []any{def.Type},
			},
		},
	}
	if def.Description != "" {
		specific["description"] = def.Description
	}

	props := specific["properties"].(map[string]any)
	for _, name := range sortedKeys(def.Properties) {
		props[name] = def.Properties[name]
	}

	if len(def.Required) > 0 {
		required := make([]any, 0, len(def.Required)+1)
		sorted := append([]string(nil), def.Required...)
		sort.Strings(sorted)
		for _, name := range sorted {
			required = append(required, name)
		}
		specific["required"] = required
	}

	return map[string]any{
		"allOf": []any{
			map[string]any{"$ref": "#/definitions/baseTask"},
			specific,
		},
	}
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
