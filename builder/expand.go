package intlbuilder

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/charmbracelet/log"
	intlmessages "github.com/go-i2p/intlgo/builder/messages"
)

// notFoundPath matches routed 404 pages, with or without trailing slash.
var notFoundPath = regexp.MustCompile(`/404/?$`)

// Registry is the page store the expander replaces pages in.
type Registry interface {
	DeletePage(p *Page) error
	CreatePage(p *Page) error
}

// MessageSource resolves the flat message bundle for a language.
// *intlmessages.Loader implements it.
type MessageSource interface {
	Load(basePath, language string) (map[string]string, error)
}

// Expander fans a page out into a default-language page plus one routed
// page per configured language. It holds no per-page state and may be used
// from several goroutines at once.
type Expander struct {
	Options  Options
	Messages MessageSource
	Logger   *log.Logger
}

// NewExpander returns an Expander using opts with defaults applied. A nil
// logger discards diagnostics.
func NewExpander(opts Options, logger *log.Logger) *Expander {
	if logger == nil {
		logger = discardLogger()
	}
	return &Expander{
		Options:  opts.WithDefaults(),
		Messages: intlmessages.NewLoader(logger, opts.Mode == ModeTest),
		Logger:   logger,
	}
}

// Expand replaces page in reg with its localized variants and returns them
// in creation order: the default-language page first, then one routed page
// per language in configured order.
//
// Pages that already carry an intl context, and pages matching a skip
// pattern, produce no output and leave reg untouched. A failure loading a
// bundle or writing to reg stops the expansion; pages created before the
// failure stay in reg.
func (e *Expander) Expand(page *Page, reg Registry) ([]*Page, error) {
	if processed(page) {
		return nil, nil
	}
	for _, s := range e.Options.Skip {
		if s.MatchString(page.Path) {
			e.log().Info("generating page completely skipped", "path", page.Path)
			return nil, nil
		}
	}

	def, err := e.localize(page, false, e.Options.DefaultLanguage)
	if err != nil {
		return nil, err
	}
	if err := reg.DeletePage(page); err != nil {
		return nil, fmt.Errorf("Expand: delete %s: %w", page.Path, err)
	}
	if err := reg.CreatePage(def); err != nil {
		return nil, fmt.Errorf("Expand: create %s: %w", def.Path, err)
	}
	out := []*Page{def}

	for _, lang := range e.Options.Languages {
		routed, err := e.localize(page, true, lang)
		if err != nil {
			return out, err
		}
		if notFoundPath.MatchString(routed.Path) {
			routed.MatchPath = "/" + lang + "/*"
		}
		if err := reg.CreatePage(routed); err != nil {
			return out, fmt.Errorf("Expand: create %s: %w", routed.Path, err)
		}
		e.log().Debug("intl page created", "path", routed.Path, "language", lang)
		out = append(out, routed)
	}
	return out, nil
}

// localize builds one output page from the unexpanded page. OriginalPath is
// taken from the rewritten path, so routed pages record their own prefixed
// path there.
func (e *Expander) localize(page *Page, routed bool, lang string) (*Page, error) {
	messages, err := e.Messages.Load(e.Options.Path, lang)
	if err != nil {
		return nil, fmt.Errorf("Expand: %s (%s): %w", page.Path, lang, err)
	}
	p := page.Clone()
	if routed {
		p.Path = "/" + lang + page.Path
	}
	p.Context["language"] = lang
	p.Context[ContextKey] = &Context{
		Language:        lang,
		Languages:       slices.Clone(e.Options.Languages),
		Messages:        messages,
		Routed:          routed,
		OriginalPath:    p.Path,
		Redirect:        e.Options.Redirect,
		DefaultLanguage: e.Options.DefaultLanguage,
	}
	return p, nil
}

func (e *Expander) log() *log.Logger {
	if e.Logger == nil {
		return discardLogger()
	}
	return e.Logger
}
