// Package intlrender writes expanded pages to a build directory, filling
// each page's HTML source with the messages of its language.
package intlrender

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anaskhan96/soup"
	"github.com/charmbracelet/log"
	intlbuilder "github.com/go-i2p/intlgo/builder"
	"github.com/yosssi/gohtml"
	"golang.org/x/net/html"
)

// MessageAttr marks an element whose text is replaced by the message with
// the attribute's value as key.
const MessageAttr = "data-intl"

// Renderer writes localized HTML for expanded pages under BuildDir.
type Renderer struct {
	BuildDir string
	Logger   *log.Logger
}

// OutputPath returns the file a page at route is written to.
//
//	"/fr/about/" → "{BuildDir}/fr/about/index.html"
//	"/fr/about"  → "{BuildDir}/fr/about/index.html"
func (r *Renderer) OutputPath(route string) string {
	route = strings.Trim(route, "/")
	return filepath.Join(r.BuildDir, filepath.FromSlash(route), "index.html")
}

// Render reads the page's source HTML, localizes it, and writes it to
// OutputPath. Pages without a source or intl context are rejected.
func (r *Renderer) Render(p *intlbuilder.Page) (string, error) {
	ic := p.Intl()
	if ic == nil {
		return "", fmt.Errorf("Render: %s: page has no intl context", p.Path)
	}
	src, _ := p.Context[intlbuilder.SourceKey].(string)
	if src == "" {
		return "", fmt.Errorf("Render: %s: page has no source file", p.Path)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("Render: %w", err)
	}
	out, err := r.Localize(data, ic)
	if err != nil {
		return "", fmt.Errorf("Render: %s: %w", src, err)
	}
	dest := r.OutputPath(p.Path)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("Render: %w", err)
	}
	if err := os.WriteFile(dest, out, 0o644); err != nil {
		return "", fmt.Errorf("Render: %w", err)
	}
	if r.Logger != nil {
		r.Logger.Info("rendered page", "path", p.Path, "title", pageTitle(out), "file", dest)
	}
	return dest, nil
}

// Copy writes the page's source HTML to OutputPath unchanged. Skipped pages,
// which carry no intl context, are published this way.
func (r *Renderer) Copy(p *intlbuilder.Page) (string, error) {
	src, _ := p.Context[intlbuilder.SourceKey].(string)
	if src == "" {
		return "", fmt.Errorf("Copy: %s: page has no source file", p.Path)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("Copy: %w", err)
	}
	dest := r.OutputPath(p.Path)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("Copy: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("Copy: %w", err)
	}
	return dest, nil
}

// Localize sets the document language and substitutes every MessageAttr
// element's text with its message. Keys missing from the bundle keep their
// source text.
func (r *Renderer) Localize(src []byte, ic *intlbuilder.Context) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "html" {
				setAttr(n, "lang", ic.Language)
			}
			if key, ok := attr(n, MessageAttr); ok {
				if msg, ok := ic.Messages[key]; ok {
					replaceText(n, msg)
				} else if r.Logger != nil {
					r.Logger.Warn("missing message", "key", key, "language", ic.Language)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, err
	}
	return gohtml.FormatBytes(buf.Bytes()), nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func replaceText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// pageTitle returns the <title> text of a rendered document, or "".
func pageTitle(doc []byte) string {
	title := soup.HTMLParse(string(doc)).Find("title")
	if title.Error != nil {
		return ""
	}
	return strings.TrimSpace(title.FullText())
}
