// Package intlbuilder — locale helpers and bundler planning.
package intlbuilder

import (
	"encoding/json"
	"regexp"
	"strings"
)

// RedirectComponentDefine is the constant injected into the client bundle
// holding the JSON-encoded redirect component path, or null.
const RedirectComponentDefine = "GATSBY_INTL_REDIRECT_COMPONENT_PATH"

// LocaleDataResources match the locale-data directories of the plural-rules
// and relative-time-format packages whose contents are trimmed to the
// configured languages.
var LocaleDataResources = []*regexp.Regexp{
	regexp.MustCompile(`@formatjs[/\\]intl-relativetimeformat[/\\]dist[/\\]locale-data$`),
	regexp.MustCompile(`@formatjs[/\\]intl-pluralrules[/\\]dist[/\\]locale-data$`),
}

// BaseLanguage returns the part of a language code before its first hyphen.
//
//	BaseLanguage("en-US") → "en"
//	BaseLanguage("fr")    → "fr"
func BaseLanguage(code string) string {
	base, _, _ := strings.Cut(code, "-")
	return base
}

// LocaleFilter returns an unanchored pattern matching any base language of
// languages, in input order: ["en-US", "fr"] gives `en|fr`. Duplicates are
// kept so the pattern text is a pure function of the ordered input.
func LocaleFilter(languages []string) *regexp.Regexp {
	parts := make([]string, len(languages))
	for i, l := range languages {
		parts[i] = regexp.QuoteMeta(BaseLanguage(l))
	}
	return regexp.MustCompile(strings.Join(parts, "|"))
}

// Bundler is the build-tool configuration surface the planner drives.
type Bundler interface {
	// Define injects a constant literal into the built artifact.
	Define(name, literal string)
	// RestrictContext limits a resource directory to entries matching filter.
	RestrictContext(resource, filter *regexp.Regexp)
}

// ContextRestriction limits the files bundled from one resource directory.
type ContextRestriction struct {
	Resource *regexp.Regexp
	Filter   *regexp.Regexp
}

// BundlerConfig is the planned bundler configuration for a language set.
type BundlerConfig struct {
	Defines      map[string]string
	Restrictions []ContextRestriction
}

// PlanBundler derives the bundler configuration for opts. The language set is
// normalized first so the default language's locale data always ships.
func PlanBundler(opts Options) BundlerConfig {
	opts = opts.WithDefaults().Normalized()
	literal := "null"
	if opts.RedirectComponent != "" {
		b, _ := json.Marshal(opts.RedirectComponent)
		literal = string(b)
	}
	filter := LocaleFilter(opts.Languages)
	cfg := BundlerConfig{
		Defines: map[string]string{RedirectComponentDefine: literal},
	}
	for _, r := range LocaleDataResources {
		cfg.Restrictions = append(cfg.Restrictions, ContextRestriction{Resource: r, Filter: filter})
	}
	return cfg
}

// Apply hands the planned configuration to b.
func (c BundlerConfig) Apply(b Bundler) {
	for name, literal := range c.Defines {
		b.Define(name, literal)
	}
	for _, r := range c.Restrictions {
		b.RestrictContext(r.Resource, r.Filter)
	}
}

// MarshalJSON renders the configuration with its patterns as strings.
func (c BundlerConfig) MarshalJSON() ([]byte, error) {
	type restriction struct {
		Resource string `json:"resource"`
		Filter   string `json:"filter"`
	}
	out := struct {
		Defines      map[string]string `json:"defines"`
		Restrictions []restriction     `json:"contextRestrictions"`
	}{Defines: c.Defines}
	for _, r := range c.Restrictions {
		out.Restrictions = append(out.Restrictions, restriction{r.Resource.String(), r.Filter.String()})
	}
	return json.Marshal(out)
}

// LanguageFromPath returns the routed language prefix of a URL path when it
// is one of languages, or def otherwise.
//
//	LanguageFromPath("/fr/about/", []string{"fr"}, "en") → "fr"
//	LanguageFromPath("/about/", []string{"fr"}, "en")    → "en"
func LanguageFromPath(path string, languages []string, def string) string {
	seg, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	for _, l := range languages {
		if seg == l {
			return l
		}
	}
	return def
}
