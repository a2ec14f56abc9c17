// Package intlbuilder expands site pages into one page per configured
// language and plans the bundler settings that go with them.
package intlbuilder

import (
	"fmt"
	"io"
	"regexp"
	"slices"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"
)

// Mode selects how chatty the expander and loader are about expected
// failures. ModeTest suppresses the missing-bundle diagnostic.
type Mode int

const (
	ModeBuild Mode = iota
	ModeTest
)

// Options is the plugin configuration shared by every page expansion. It is
// read-only once handed to an Expander.
type Options struct {
	// Path is the directory holding one message file per language.
	Path string
	// Languages lists the routed languages in the order pages are created.
	Languages []string
	// DefaultLanguage is served at the unprefixed path.
	DefaultLanguage string
	// Redirect asks the site runtime to redirect browsers to their language.
	Redirect bool
	// Skip patterns are tested against each page path; any match leaves the
	// page untouched.
	Skip []*regexp.Regexp
	// RedirectComponent is the optional path to the redirect UI.
	RedirectComponent string
	Mode              Mode
}

// DefaultOptions returns the defaults used for every unset field.
func DefaultOptions() Options {
	return Options{
		Path:            ".",
		Languages:       []string{"en"},
		DefaultLanguage: "en",
	}
}

// WithDefaults returns a copy of o with zero-valued fields filled from
// DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.Path == "" {
		o.Path = d.Path
	}
	if len(o.Languages) == 0 {
		o.Languages = d.Languages
	}
	if o.DefaultLanguage == "" {
		o.DefaultLanguage = d.DefaultLanguage
	}
	return o
}

// Normalized returns a copy of o whose Languages include DefaultLanguage,
// appended once at the end when it was missing. The receiver's slice is
// never modified.
func (o Options) Normalized() Options {
	langs := slices.Clone(o.Languages)
	if !slices.Contains(langs, o.DefaultLanguage) {
		langs = append(langs, o.DefaultLanguage)
	}
	o.Languages = langs
	return o
}

// Validate reports configuration that would make expansion meaningless.
func (o Options) Validate() error {
	if o.DefaultLanguage == "" {
		return fmt.Errorf("Validate: default language is empty")
	}
	if _, err := language.Parse(o.DefaultLanguage); err != nil {
		return fmt.Errorf("Validate: default language %q: %w", o.DefaultLanguage, err)
	}
	if len(o.Languages) == 0 {
		return fmt.Errorf("Validate: no languages configured")
	}
	for i, l := range o.Languages {
		if l == "" {
			return fmt.Errorf("Validate: language %d is empty", i)
		}
		if _, err := language.Parse(l); err != nil {
			return fmt.Errorf("Validate: language %q: %w", l, err)
		}
	}
	for i, s := range o.Skip {
		if s == nil {
			return fmt.Errorf("Validate: skip pattern %d is nil", i)
		}
	}
	return nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
