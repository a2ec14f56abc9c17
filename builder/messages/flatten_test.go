package intlmessages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		name   string
		tree   map[string]any
		prefix string
		want   map[string]string
	}{
		{
			name: "flat tree unchanged",
			tree: map[string]any{"title": "Hello", "nav.home": "Home"},
			want: map[string]string{"title": "Hello", "nav.home": "Home"},
		},
		{
			name: "nested keys are dot joined",
			tree: map[string]any{
				"nav": map[string]any{
					"home":  "Home",
					"about": map[string]any{"title": "About us"},
				},
				"footer": "Bye",
			},
			want: map[string]string{
				"nav.home":        "Home",
				"nav.about.title": "About us",
				"footer":          "Bye",
			},
		},
		{
			name:   "prefix applied to every key",
			tree:   map[string]any{"a": "1", "b": map[string]any{"c": "2"}},
			prefix: "root",
			want:   map[string]string{"root.a": "1", "root.b.c": "2"},
		},
		{
			name: "non string leaves dropped",
			tree: map[string]any{"n": 42, "b": true, "nil": nil, "list": []any{"x"}, "s": "kept"},
			want: map[string]string{"s": "kept"},
		},
		{
			name: "generic maps flattened",
			tree: map[string]any{"m": map[any]any{"k": "v", 1: "one"}},
			want: map[string]string{"m.k": "v", "m.1": "one"},
		},
		{
			name: "later key in sorted order wins",
			tree: map[string]any{"a.b": "literal", "a": map[string]any{"b": "nested"}},
			want: map[string]string{"a.b": "literal"},
		},
		{
			name: "empty tree",
			tree: map[string]any{},
			want: map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Flatten(tt.tree, tt.prefix))
		})
	}
}

// TestFlatten_Idempotent verifies that flattening an already flat bundle
// returns the same bundle.
func TestFlatten_Idempotent(t *testing.T) {
	tree := map[string]any{"x": map[string]any{"y": "1", "z": map[string]any{"w": "2"}}}
	once := Flatten(tree, "")
	asTree := make(map[string]any, len(once))
	for k, v := range once {
		asTree[k] = v
	}
	assert.Equal(t, once, Flatten(asTree, ""))
}
