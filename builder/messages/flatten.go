// Package intlmessages loads per-language translation files and flattens
// their nested key trees into dot-joined message bundles.
package intlmessages

import (
	"fmt"
	"maps"
	"slices"
)

// Flatten converts a nested translation tree into a flat bundle keyed by the
// dot-joined path of each string leaf.
//
//	Flatten(map[string]any{"nav": map[string]any{"home": "Home"}}, "")
//	→ map[string]string{"nav.home": "Home"}
//
// Keys are visited in sorted order, so when two paths flatten to the same key
// (a literal "a.b" next to a nested a → b) the later one in that order wins.
// Values that are neither strings nor mappings are dropped.
func Flatten(tree map[string]any, prefix string) map[string]string {
	out := make(map[string]string)
	flattenInto(out, tree, prefix)
	return out
}

func flattenInto(out map[string]string, tree map[string]any, prefix string) {
	for _, key := range slices.Sorted(maps.Keys(tree)) {
		prefixed := key
		if prefix != "" {
			prefixed = prefix + "." + key
		}
		switch v := tree[key].(type) {
		case string:
			out[prefixed] = v
		case map[string]any:
			flattenInto(out, v, prefixed)
		case map[any]any:
			flattenInto(out, stringKeys(v), prefixed)
		}
	}
}

// stringKeys converts the generic mappings some decoders produce for
// nested documents. Non-string keys are formatted with %v.
func stringKeys(m map[any]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if s, ok := k.(string); ok {
			out[s] = v
			continue
		}
		out[fmt.Sprint(k)] = v
	}
	return out
}
