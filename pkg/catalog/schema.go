// pkg/catalog/schema.go
package catalog

import (
	"pipeline-compiler/internal/engine/option"
)

// Task is one runnable task: an identifier, an optional base override
// fragment, and the ordered top-level option references to resolve.
type Task struct {
	ID               string          `json:"id"`
	Option           []string        `json:"option,omitempty"`
	PipelineOverride option.Fragment `json:"pipeline_override,omitempty"`

	// Builtin marks tasks supplied by the built-in catalog rather than a
	// project file. Built-in overrides always go through the deep-merge
	// path so independently authored fragments accumulate nested fields.
	Builtin bool `json:"-"`
}

// Document is one catalog file: a version marker, an option registry
// fragment, and a task list. Project directories may contain several
// documents; later documents win on identifier conflicts.
type Document struct {
	Version string                        `json:"version"`
	Options map[string]*option.Definition `json:"options,omitempty"`
	Tasks   []*Task                       `json:"tasks,omitempty"`
}

// documentSchema is the load-time shape contract for catalog files.
// Structural option rules that a JSON schema cannot express (boolean
// case count, default-case references) are checked by Definition.Validate.
const documentSchema = `{
  "type": "object",
  "required": ["version"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "options": {
      "type": "object",
      "additionalProperties": {"$ref": "#/definitions/option"}
    },
    "tasks": {
      "type": "array",
      "items": {"$ref": "#/definitions/task"}
    }
  },
  "definitions": {
    "task": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "option": {"type": "array", "items": {"type": "string"}},
        "pipeline_override": {"type": "object"}
      }
    },
    "option": {
      "type": "object",
      "required": ["kind"],
      "properties": {
        "kind": {"enum": ["choice", "boolean", "freetext"]},
        "cases": {"type": "array", "items": {"$ref": "#/definitions/case"}},
        "default_case": {"type": "string"},
        "input": {"type": "array", "items": {"$ref": "#/definitions/slot"}},
        "pipeline_override": {"type": "object"}
      }
    },
    "case": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "pipeline_override": {"type": "object"},
        "option": {"type": "array", "items": {"type": "string"}}
      }
    },
    "slot": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "default": {"type": "string"},
        "type": {"enum": ["text", "integer", "boolean"]},
        "pattern": {"type": "string"}
      }
    }
  }
}`
