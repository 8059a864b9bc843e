// internal/engine/option/option.go

// Package option holds the data model shared by the resolver and the
// compiler: option definitions, selection values, and override fragments.
package option

import (
	"fmt"
)

// Kind tags an option definition variant.
type Kind string

const (
	KindChoice   Kind = "choice"
	KindBoolean  Kind = "boolean"
	KindFreeText Kind = "freetext"
)

// Fragment is a partial pipeline override document. It is opaque to the
// engine except for the deep-merge step, which only inspects whether a
// value is itself a non-array mapping.
type Fragment = map[string]interface{}

// Case is one selectable branch of a choice/boolean option.
type Case struct {
	Name             string   `json:"name"`
	PipelineOverride Fragment `json:"pipeline_override,omitempty"`
	Option           []string `json:"option,omitempty"`
}

// SlotType declares the JSON type a freetext slot value is coerced to.
type SlotType string

const (
	SlotText    SlotType = "text"
	SlotInteger SlotType = "integer"
	SlotBoolean SlotType = "boolean"
)

// Slot is one named input of a freetext option.
type Slot struct {
	Name    string   `json:"name"`
	Default string   `json:"default"`
	Type    SlotType `json:"type"`
	Pattern string   `json:"pattern,omitempty"`
}

// Definition is a single option definition, tagged by Kind. Choice and
// boolean options carry Cases; freetext options carry Input slots and a
// shared PipelineOverride template containing {slotName} placeholders.
type Definition struct {
	Kind             Kind     `json:"kind"`
	Cases            []Case   `json:"cases,omitempty"`
	DefaultCase      string   `json:"default_case,omitempty"`
	Input            []Slot   `json:"input,omitempty"`
	PipelineOverride Fragment `json:"pipeline_override,omitempty"`
}

// Registry is an immutable identifier-to-definition mapping. Lookups that
// miss are tolerated by the resolver (forward/backward compatible
// configuration), so Registry itself never errors.
type Registry map[string]*Definition

// Lookup returns the definition for id, if present.
func (r Registry) Lookup(id string) (*Definition, bool) {
	def, ok := r[id]
	return def, ok
}

// Boolean case-name vocabularies. Matching is exact against these
// spellings; anything else falls back to a case literally named Yes/No.
var (
	trueNames  = map[string]bool{"Yes": true, "yes": true, "Y": true, "y": true}
	falseNames = map[string]bool{"No": true, "no": true, "N": true, "n": true}
)

// IsTrueName reports whether name is an accepted "on" spelling.
func IsTrueName(name string) bool { return trueNames[name] }

// IsFalseName reports whether name is an accepted "off" spelling.
func IsFalseName(name string) bool { return falseNames[name] }

// CaseNamed returns the case with the given name, or nil.
func (d *Definition) CaseNamed(name string) *Case {
	for i := range d.Cases {
		if d.Cases[i].Name == name {
			return &d.Cases[i]
		}
	}
	return nil
}

// FallbackCase returns the declared default case, or the first case.
// Only meaningful for choice options.
func (d *Definition) FallbackCase() *Case {
	if d.DefaultCase != "" {
		if c := d.CaseNamed(d.DefaultCase); c != nil {
			return c
		}
	}
	if len(d.Cases) > 0 {
		return &d.Cases[0]
	}
	return nil
}

// BooleanCase maps a flag to the matching case. Vocabulary match takes
// precedence; if neither case name is in the vocabulary for the flag, a
// case literally named "Yes"/"No" is used. Returns nil when nothing
// matches.
func (d *Definition) BooleanCase(flag bool) *Case {
	vocab := falseNames
	literal := "No"
	if flag {
		vocab = trueNames
		literal = "Yes"
	}
	for i := range d.Cases {
		if vocab[d.Cases[i].Name] {
			return &d.Cases[i]
		}
	}
	return d.CaseNamed(literal)
}

// SlotNamed returns the slot with the given name, or nil.
func (d *Definition) SlotNamed(name string) *Slot {
	for i := range d.Input {
		if d.Input[i].Name == name {
			return &d.Input[i]
		}
	}
	return nil
}

// Validate checks the structural shape of a definition. Shape errors are
// caller-configuration errors rejected at registry-load time; they are
// never reached by the resolution engine.
func (d *Definition) Validate() error {
	switch d.Kind {
	case KindChoice:
		if len(d.Cases) == 0 {
			return fmt.Errorf("choice option must declare at least one case")
		}
		if len(d.Input) > 0 {
			return fmt.Errorf("choice option must not declare input slots")
		}
		if d.DefaultCase != "" && d.CaseNamed(d.DefaultCase) == nil {
			return fmt.Errorf("default_case %q is not a declared case", d.DefaultCase)
		}

	case KindBoolean:
		if len(d.Cases) != 2 {
			return fmt.Errorf("boolean option must declare exactly two cases, got %d", len(d.Cases))
		}
		if d.DefaultCase != "" && d.CaseNamed(d.DefaultCase) == nil {
			return fmt.Errorf("default_case %q is not a declared case", d.DefaultCase)
		}

	case KindFreeText:
		if len(d.Input) == 0 {
			return fmt.Errorf("freetext option must declare at least one input slot")
		}
		if len(d.Cases) > 0 {
			return fmt.Errorf("freetext option must not declare cases")
		}
		seen := map[string]bool{}
		for _, slot := range d.Input {
			if slot.Name == "" {
				return fmt.Errorf("freetext input slot must be named")
			}
			if seen[slot.Name] {
				return fmt.Errorf("duplicate input slot %q", slot.Name)
			}
			seen[slot.Name] = true
			switch slot.Type {
			case SlotText, SlotInteger, SlotBoolean:
			default:
				return fmt.Errorf("slot %q has unknown type %q", slot.Name, slot.Type)
			}
		}

	default:
		return fmt.Errorf("unknown option kind %q", d.Kind)
	}

	return nil
}
