// internal/engine/resolver/resolver.go

// Package resolver walks a task's option references and produces the
// ordered raw override fragments the compiler substitutes and merges.
package resolver

import (
	"pipeline-compiler/internal/common/logger"
	"pipeline-compiler/internal/common/metrics"
	"pipeline-compiler/internal/engine/option"
)

// Resolved is one resolver output entry. Choice/boolean cases produce a
// final Fragment. Freetext options produce the raw Template together with
// the slot definitions and user values; the compiler owns substitution.
type Resolved struct {
	// OptionID is the option that contributed this entry, for diagnostics.
	OptionID string

	// Fragment is set for choice/boolean case fragments, which contain no
	// placeholders and are final as-is.
	Fragment option.Fragment

	// Template, Slots, and Values are set for freetext options.
	Template option.Fragment
	Slots    []option.Slot
	Values   map[string]string
}

// FreeText reports whether this entry still needs placeholder substitution.
func (r Resolved) FreeText() bool {
	return r.Template != nil
}

// Resolver resolves option trees against an immutable registry. The
// registry is injected, not ambient, so concurrent calls with different
// inputs never interact.
type Resolver struct {
	registry option.Registry
	logger   logger.Logger
}

func New(registry option.Registry, log logger.Logger) *Resolver {
	return &Resolver{
		registry: registry,
		logger:   log.WithFields(map[string]interface{}{"component": "resolver"}),
	}
}

// Resolve walks optionIDs depth-first in declaration order and returns the
// contributed fragments. Unknown references, kind mismatches, and unknown
// case names contribute nothing and are logged at warning level only; the
// walk never fails.
func (r *Resolver) Resolve(optionIDs []string, store option.Store) []Resolved {
	out := make([]Resolved, 0, len(optionIDs))
	r.resolve(optionIDs, store, &out)
	return out
}

func (r *Resolver) resolve(optionIDs []string, store option.Store, out *[]Resolved) {
	for _, id := range optionIDs {
		def, ok := r.registry.Lookup(id)
		if !ok {
			// Compatibility contract: configuration files may reference
			// options this build does not know about.
			metrics.MissingOptionRefs.WithLabelValues(id).Inc()
			r.logger.Warn("option not found in registry, skipping", map[string]interface{}{
				"option": id,
			})
			continue
		}

		sel, found := r.lookupSelection(store, id)
		if !found {
			sel = option.DefaultSelection(def)
		}
		if sel.Kind != def.Kind {
			r.logger.Warn("selection kind does not match option kind, skipping", map[string]interface{}{
				"option":        id,
				"selectionKind": sel.Kind,
				"optionKind":    def.Kind,
			})
			continue
		}

		switch def.Kind {
		case option.KindChoice, option.KindBoolean:
			c := r.activeCase(id, def, sel)
			if c == nil {
				continue
			}
			if c.PipelineOverride != nil {
				*out = append(*out, Resolved{OptionID: id, Fragment: c.PipelineOverride})
			}
			if len(c.Option) > 0 {
				// Nested fragments follow the case's own fragment.
				r.resolve(c.Option, store, out)
			}

		case option.KindFreeText:
			if def.PipelineOverride == nil {
				r.logger.Debug("freetext option has no template, skipping", map[string]interface{}{
					"option": id,
				})
				continue
			}
			*out = append(*out, Resolved{
				OptionID: id,
				Template: def.PipelineOverride,
				Slots:    def.Input,
				Values:   sel.Input,
			})
		}
	}
}

func (r *Resolver) lookupSelection(store option.Store, id string) (option.Selection, bool) {
	if store == nil {
		return option.Selection{}, false
	}
	return store.Get(id)
}

// activeCase determines the active branch of a choice/boolean option, or
// nil when the selection names a case the option does not declare.
func (r *Resolver) activeCase(id string, def *option.Definition, sel option.Selection) *option.Case {
	if def.Kind == option.KindBoolean {
		c := def.BooleanCase(sel.Value)
		if c == nil {
			r.logger.Warn("no boolean case matches stored flag, skipping", map[string]interface{}{
				"option": id,
				"value":  sel.Value,
			})
		}
		return c
	}

	// Choice: stored case name, declared default, first case.
	if sel.Case != "" {
		if c := def.CaseNamed(sel.Case); c != nil {
			return c
		}
		r.logger.Warn("selected case not declared by option, skipping", map[string]interface{}{
			"option": id,
			"case":   sel.Case,
		})
		return nil
	}
	return def.FallbackCase()
}
