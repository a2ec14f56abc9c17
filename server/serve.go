// Package intlserver provides an http.Handler that previews a localized
// build directory, honouring each page's wildcard match path and counting
// page views per language.
package intlserver

import (
	"crypto/sha256"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	intlbuilder "github.com/go-i2p/intlgo/builder"
	intlrender "github.com/go-i2p/intlgo/builder/render"
	stats "github.com/go-i2p/intlgo/server/stats"
	"gitlab.com/golang-commonmark/markdown"
)

// ManifestFile is the route manifest written next to the rendered pages.
const ManifestFile = "pages.json"

// statsGraphFilename is rendered on demand by Stats.Graph and never exists
// on disk.
const statsGraphFilename = "langstats.svg"

// notFoundRoute is the page served for misses outside every match path.
const notFoundRoute = "/404/"

type checksumEntry struct {
	modTime time.Time
	sum     string
}

// checksumCache stores SHA-256 digests keyed by path; an entry is fresh only
// while the file's modification time is unchanged.
type checksumCache struct {
	mu    sync.RWMutex
	items map[string]checksumEntry
}

func (c *checksumCache) get(path string, modTime time.Time) (string, bool) {
	c.mu.RLock()
	entry, ok := c.items[path]
	c.mu.RUnlock()
	if ok && entry.modTime.Equal(modTime) {
		return entry.sum, true
	}
	return "", false
}

func (c *checksumCache) set(path string, modTime time.Time, sum string) {
	c.mu.Lock()
	c.items[path] = checksumEntry{modTime: modTime, sum: sum}
	c.mu.Unlock()
}

var globalChecksumCache = &checksumCache{
	items: make(map[string]checksumEntry),
}

// Server is an http.Handler serving BuildDir.
type Server struct {
	BuildDir string
	Manifest *intlbuilder.Manifest
	Stats    *stats.PageStats
	Logger   *log.Logger
}

var _ http.Handler = &Server{}

// containsPath reports whether target is root or lies beneath it. Both paths
// must already be clean and absolute.
func containsPath(root, target string) bool {
	if target == root {
		return true
	}
	// Separator suffix keeps "/srv/site" from containing "/srv/site-old".
	return strings.HasPrefix(target, root+string(filepath.Separator))
}

// ServeHTTP resolves the request against BuildDir. Directories serve their
// index.html, or a listing when they have none. Misses are answered with
// the page whose match path covers the request, or the root 404 page, with
// status 404.
func (s *Server) ServeHTTP(rw http.ResponseWriter, rq *http.Request) {
	path := rq.URL.Path
	file := filepath.Join(s.BuildDir, path)
	if !containsPath(filepath.Clean(s.BuildDir), file) {
		s.logger().Warn("path traversal rejected", "path", rq.URL.Path)
		http.Error(rw, "Bad Request", http.StatusBadRequest)
		return
	}
	if filepath.Base(file) == statsGraphFilename {
		s.serveGraph(rw)
		return
	}

	fi, err := os.Stat(file)
	switch {
	case err == nil && fi.IsDir():
		index := filepath.Join(file, "index.html")
		if _, err := os.Stat(index); err == nil {
			s.countView(path)
			err = s.ServeFile(index, rq, rw)
			s.check(rw, err)
			return
		}
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
		s.check(rw, serveDirectory(file, rw))
	case err == nil:
		if filepath.Ext(file) == ".html" {
			s.countView(path)
		}
		s.check(rw, s.ServeFile(file, rq, rw))
	default:
		s.serveFallback(rw, path)
	}
}

func (s *Server) check(rw http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	s.logger().Error("ServeHTTP", "err", err)
	// Replace any content type set for the intended file.
	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	rw.WriteHeader(http.StatusNotFound)
}

func (s *Server) serveGraph(rw http.ResponseWriter) {
	rw.Header().Set("Content-Type", "image/svg+xml")
	if s.Stats == nil {
		rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
		rw.WriteHeader(http.StatusNotFound)
		return
	}
	if err := s.Stats.Graph(rw); err != nil {
		s.logger().Error("stats graph render failed", "err", err)
		rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
		rw.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintln(rw, "Internal Server Error")
	}
}

// FallbackRoute returns the route of the page answering a miss at path: the
// page with the longest match path prefix covering path, else the root 404
// page when it is in the manifest. It returns "" when nothing applies.
func (s *Server) FallbackRoute(path string) string {
	if s.Manifest == nil {
		return ""
	}
	best, bestLen := "", -1
	hasNotFound := false
	for _, p := range s.Manifest.Pages {
		if p.Path == notFoundRoute {
			hasNotFound = true
		}
		if p.MatchPath == "" {
			continue
		}
		prefix := strings.TrimSuffix(p.MatchPath, "*")
		if strings.HasPrefix(path, prefix) && len(prefix) > bestLen {
			best, bestLen = p.Path, len(prefix)
		}
	}
	if best == "" && hasNotFound {
		return notFoundRoute
	}
	return best
}

func (s *Server) serveFallback(rw http.ResponseWriter, path string) {
	route := s.FallbackRoute(path)
	if route == "" {
		s.logger().Info("not found", "path", path)
		rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
		rw.WriteHeader(http.StatusNotFound)
		return
	}
	r := &intlrender.Renderer{BuildDir: s.BuildDir}
	f, err := os.Open(r.OutputPath(route))
	if err != nil {
		s.logger().Error("fallback page unreadable", "route", route, "err", err)
		rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
		rw.WriteHeader(http.StatusNotFound)
		return
	}
	defer f.Close()
	s.countView(route)
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	rw.WriteHeader(http.StatusNotFound)
	io.Copy(rw, f) //nolint:errcheck
}

func (s *Server) countView(route string) {
	if s.Stats == nil {
		return
	}
	var langs []string
	def := "en"
	if s.Manifest != nil {
		langs = s.Manifest.Languages
		if s.Manifest.DefaultLanguage != "" {
			def = s.Manifest.DefaultLanguage
		}
	}
	s.Stats.Increment(intlbuilder.LanguageFromPath(route, langs, def))
}

func (s *Server) logger() *log.Logger {
	if s.Logger == nil {
		return log.New(io.Discard)
	}
	return s.Logger
}

func fileType(file string) (string, error) {
	base := filepath.Base(file)
	if base == "" {
		return "", fmt.Errorf("fileType: Invalid file path passed to type determinator")
	}
	extension := filepath.Ext(base)
	switch extension {
	case ".html":
		return "text/html; charset=utf-8", nil
	case ".json":
		return "application/json", nil
	case ".svg":
		return "image/svg+xml", nil
	default:
		if t := mime.TypeByExtension(extension); t != "" {
			return t, nil
		}
		return "application/octet-stream", nil
	}
}

// fileChecksum returns the SHA-256 hex digest of path, cached by mtime.
func fileChecksum(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("fileChecksum: stat %s: %w", path, err)
	}
	modTime := fi.ModTime()
	if sum, ok := globalChecksumCache.get(path, modTime); ok {
		return sum, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("fileChecksum: open %s: %w", path, err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("fileChecksum: hash %s: %w", path, err)
	}
	sum := fmt.Sprintf("%x", h.Sum(nil))
	globalChecksumCache.set(path, modTime, sum)
	return sum, nil
}

// buildDirectoryHeader returns the Markdown title block of a listing.
func buildDirectoryHeader(wd string) string {
	base := filepath.Base(wd)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", base, strings.Repeat("=", len(base)))
	b.WriteString("![language stats](/" + statsGraphFilename + ")\n\n")
	b.WriteString("**Directory Listing:**\n\n")
	return b.String()
}

// formatEntryLine renders one Markdown list item. Files carry size, mode and
// checksum; directories get a trailing slash and no checksum.
func formatEntryLine(wd string, entry os.DirEntry, info os.FileInfo) string {
	if entry.IsDir() {
		return fmt.Sprintf(" - [%s](%s/) : `%d` : `%s`\n", entry.Name(), entry.Name(), info.Size(), info.Mode())
	}
	sum, err := fileChecksum(filepath.Join(wd, entry.Name()))
	if err != nil {
		sum = "(checksum unavailable)"
	}
	return fmt.Sprintf(" - [%s](%s) : `%d` : `%s` - `%s`\n", entry.Name(), entry.Name(), info.Size(), info.Mode(), sum)
}

// openDirectory returns a Markdown listing of wd.
func openDirectory(wd string) (string, error) {
	files, err := os.ReadDir(wd)
	if err != nil {
		return "", fmt.Errorf("openDirectory: %w", err)
	}
	readme := buildDirectoryHeader(wd)
	for _, entry := range files {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		readme += formatEntryLine(wd, entry, info)
	}
	return readme, nil
}

func hTML(mdtxt string) []byte {
	md := markdown.New(markdown.XHTMLOutput(true))
	return []byte(md.RenderToString([]byte(mdtxt)))
}

func serveDirectory(dir string, rw http.ResponseWriter) error {
	content, err := openDirectory(dir)
	if err != nil {
		return fmt.Errorf("serveDirectory: %w", err)
	}
	rw.Write(hTML(content)) //nolint:errcheck
	return nil
}

// ServeFile streams file to rw with its content type, honouring conditional
// and range requests.
func (s *Server) ServeFile(file string, rq *http.Request, rw http.ResponseWriter) error {
	ftype, err := fileType(file)
	if err != nil {
		return fmt.Errorf("ServeFile: %s", err)
	}
	rw.Header().Set("Content-Type", ftype)
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("ServeFile: %w", err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("ServeFile: stat %s: %w", file, err)
	}
	http.ServeContent(rw, rq, filepath.Base(file), fi.ModTime(), f)
	return nil
}

// Serve constructs a Server rooted at buildDir. The route manifest is read
// from buildDir when present and persisted statistics from statsFile.
func Serve(buildDir, statsFile string, logger *log.Logger) *Server {
	s := &Server{
		BuildDir: buildDir,
		Stats:    &stats.PageStats{StateFile: statsFile},
		Logger:   logger,
	}
	m, err := intlbuilder.ReadManifest(filepath.Join(buildDir, ManifestFile))
	if err != nil {
		s.logger().Warn("no route manifest, match paths disabled", "err", err)
	} else {
		s.Manifest = m
	}
	s.Stats.Load()
	return s
}
