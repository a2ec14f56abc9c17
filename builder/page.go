package intlbuilder

import "maps"

// ContextKey is the page-context key holding the localization Context.
const ContextKey = "intl"

// Page is a routable document owned by the page registry. The expander
// never mutates the Page it is handed; it returns fresh copies.
type Page struct {
	Path      string         `json:"path"`
	MatchPath string         `json:"matchPath,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

// Context is the localization data attached to every expanded page under
// Page.Context["intl"].
type Context struct {
	Language        string            `json:"language"`
	Languages       []string          `json:"languages"`
	Messages        map[string]string `json:"messages"`
	Routed          bool              `json:"routed"`
	OriginalPath    string            `json:"originalPath"`
	Redirect        bool              `json:"redirect"`
	DefaultLanguage string            `json:"defaultLanguage"`
}

// Clone returns a copy of p with its own top-level context map.
func (p *Page) Clone() *Page {
	c := *p
	c.Context = maps.Clone(p.Context)
	if c.Context == nil {
		c.Context = make(map[string]any)
	}
	return &c
}

// Intl returns the localization context of an expanded page, or nil when
// the page has not been expanded or its context came from a decoded
// manifest in a form other than *Context.
func (p *Page) Intl() *Context {
	switch v := p.Context[ContextKey].(type) {
	case *Context:
		return v
	case Context:
		return &v
	}
	return nil
}

// processed reports whether the page already carries a structured intl
// value. Pages read back from a JSON manifest hold a map instead of a
// *Context, so both forms count.
func processed(p *Page) bool {
	switch v := p.Context[ContextKey].(type) {
	case *Context:
		return v != nil
	case Context:
		return true
	case map[string]any:
		return v != nil
	}
	return false
}
