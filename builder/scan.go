package intlbuilder

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// SourceKey is the page-context key holding the HTML file a page renders.
const SourceKey = "source"

// RouteFromFile maps a page file, relative to the pages root, to its route.
//
//	"index.html"      → "/"
//	"about.html"      → "/about/"
//	"docs/index.html" → "/docs/"
//	"404.html"        → "/404/"
func RouteFromFile(rel string) string {
	rel = filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
	if rel == "index" {
		return "/"
	}
	rel = strings.TrimSuffix(rel, "/index")
	return "/" + rel + "/"
}

// ScanPages returns one page per .html file under dir, sorted by path. Each
// page's context records its source file under SourceKey.
func ScanPages(dir string) ([]*Page, error) {
	var pages []*Page
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".html" {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		pages = append(pages, &Page{
			Path:    RouteFromFile(rel),
			Context: map[string]any{SourceKey: path},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Path < pages[j].Path })
	return pages, nil
}
