// internal/engine/compiler/substitute.go
package compiler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	commonerrors "pipeline-compiler/internal/common/errors"
	"pipeline-compiler/internal/engine/option"
)

// Accepted "true" spellings for boolean slot values, matched
// case-insensitively. Anything else coerces to false.
var booleanTrueValues = map[string]bool{
	"true": true, "1": true, "yes": true, "y": true,
}

// slotValue is a slot's user (or default) value in both forms needed
// during substitution: the typed node used when a string leaf is exactly
// "{name}", and the textual form used for partial in-string occurrences.
type slotValue struct {
	typed interface{}
	text  string
}

// coerceSlotValues resolves the effective value of every slot, applying
// defaults, pattern validation, and type coercion. A non-numeric value
// for an integer slot is a substitution failure: the whole fragment is
// dropped by the caller.
func coerceSlotValues(optionID string, slots []option.Slot, values map[string]string, warn func(msg string, fields map[string]interface{})) (map[string]slotValue, error) {
	out := make(map[string]slotValue, len(slots))
	for _, slot := range slots {
		raw, ok := values[slot.Name]
		if !ok || raw == "" {
			raw = slot.Default
		}

		if slot.Pattern != "" && raw != "" {
			matched, err := regexp.MatchString(slot.Pattern, raw)
			if err != nil || !matched {
				warn("slot value does not match pattern, using default", map[string]interface{}{
					"option":  optionID,
					"slot":    slot.Name,
					"pattern": slot.Pattern,
				})
				raw = slot.Default
			}
		}

		switch slot.Type {
		case option.SlotInteger:
			if raw == "" {
				raw = "0"
			}
			n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return nil, commonerrors.NewTemplateSubstitutionFailedError(
					optionID, slot.Name, fmt.Errorf("value %q is not an integer", raw))
			}
			out[slot.Name] = slotValue{typed: n, text: strconv.FormatInt(n, 10)}

		case option.SlotBoolean:
			b := booleanTrueValues[strings.ToLower(strings.TrimSpace(raw))]
			out[slot.Name] = slotValue{typed: b, text: strconv.FormatBool(b)}

		default: // text
			out[slot.Name] = slotValue{typed: raw, text: raw}
		}
	}
	return out, nil
}

// substituteTemplate applies typed placeholder substitution to a freetext
// template: a string leaf that is exactly "{name}" becomes the slot's
// typed value (stripping the surrounding quotes for integer/boolean
// slots), and partial occurrences inside longer strings are replaced
// textually. The template itself is never mutated; every visited mapping
// and array is rebuilt.
func substituteTemplate(template option.Fragment, resolved map[string]slotValue) option.Fragment {
	out := make(option.Fragment, len(template))
	for k, v := range template {
		out[k] = substituteValue(v, resolved)
	}
	return out
}

func substituteValue(v interface{}, resolved map[string]slotValue) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, child := range val {
			out[k] = substituteValue(child, resolved)
		}
		return out

	case []interface{}:
		out := make([]interface{}, len(val))
		for i, child := range val {
			out[i] = substituteValue(child, resolved)
		}
		return out

	case string:
		return substituteString(val, resolved)

	default:
		return v
	}
}

func substituteString(s string, resolved map[string]slotValue) interface{} {
	// Exact placeholder leaf: replace the whole string with the typed
	// value, so integer/boolean slots produce real JSON numbers/booleans.
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		if sv, ok := resolved[s[1:len(s)-1]]; ok {
			return sv.typed
		}
	}

	// Partial occurrences: textual substitution within this one leaf.
	// Slot values containing quotes or braces cannot corrupt sibling
	// structure here, unlike replace-then-reparse over the serialized
	// document.
	if !strings.Contains(s, "{") {
		return s
	}

	// Single left-to-right scan over the template string. Substituted text
	// is never re-scanned, so a slot value that itself contains another
	// slot's token lands verbatim, and the result does not depend on map
	// iteration order.
	var b strings.Builder
	for {
		i := strings.IndexByte(s, '{')
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		j := strings.IndexByte(s[i:], '}')
		if j < 0 {
			b.WriteString(s)
			return b.String()
		}
		if sv, ok := resolved[s[i+1:i+j]]; ok {
			b.WriteString(s[:i])
			b.WriteString(sv.text)
			s = s[i+j+1:]
		} else {
			// Unknown token: keep the brace and keep scanning right after
			// it, so authoring mistakes stay visible in the output.
			b.WriteString(s[:i+1])
			s = s[i+1:]
		}
	}
}
