// internal/engine/option/selection.go
package option

// Selection is the user's current value for one option, tagged by Kind
// mirroring the option variants. Exactly one of Case, Value, or Input is
// meaningful for a given kind.
type Selection struct {
	Kind  Kind              `json:"kind"`
	Case  string            `json:"case,omitempty"`
	Value bool              `json:"value"`
	Input map[string]string `json:"input,omitempty"`
}

// Store gives the engine read-only access to per-instance selections.
// Entries are created and updated by the UI layer; the engine only reads.
type Store interface {
	Get(optionID string) (Selection, bool)
}

// MapStore is the in-memory Store used for one-shot compilation and tests.
type MapStore map[string]Selection

func (m MapStore) Get(optionID string) (Selection, bool) {
	sel, ok := m[optionID]
	return sel, ok
}

// DefaultSelection synthesizes the selection used when the store has no
// entry for an option: the default case, false (unless the declared
// default case spells "on"), or the per-slot defaults.
func DefaultSelection(def *Definition) Selection {
	switch def.Kind {
	case KindChoice:
		sel := Selection{Kind: KindChoice}
		if c := def.FallbackCase(); c != nil {
			sel.Case = c.Name
		}
		return sel

	case KindBoolean:
		return Selection{Kind: KindBoolean, Value: IsTrueName(def.DefaultCase)}

	case KindFreeText:
		input := make(map[string]string, len(def.Input))
		for _, slot := range def.Input {
			input[slot.Name] = slot.Default
		}
		return Selection{Kind: KindFreeText, Input: input}
	}

	return Selection{Kind: def.Kind}
}
