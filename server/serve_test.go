package intlserver

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	intlbuilder "github.com/go-i2p/intlgo/builder"
	stats "github.com/go-i2p/intlgo/server/stats"
)

// writeSite lays out a rendered build with a root 404 page, a French 404
// page carrying a wildcard match path, and an about page per language.
func writeSite(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":          "<html lang=\"en\">home</html>",
		"about/index.html":    "<html lang=\"en\">about</html>",
		"fr/about/index.html": "<html lang=\"fr\">à propos</html>",
		"404/index.html":      "<html lang=\"en\">missing</html>",
		"fr/404/index.html":   "<html lang=\"fr\">introuvable</html>",
		"style.css":           "body{}",
	}
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	reg := intlbuilder.NewMemoryRegistry(
		&intlbuilder.Page{Path: "/"},
		&intlbuilder.Page{Path: "/about/"},
		&intlbuilder.Page{Path: "/fr/about/"},
		&intlbuilder.Page{Path: "/404/"},
		&intlbuilder.Page{Path: "/fr/404/", MatchPath: "/fr/*"},
	)
	opts := intlbuilder.Options{Languages: []string{"fr"}, DefaultLanguage: "en"}
	if err := reg.WriteManifest(filepath.Join(dir, ManifestFile), opts); err != nil {
		t.Fatal(err)
	}
	return Serve(dir, filepath.Join(dir, "stats.json"), nil)
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	rw := httptest.NewRecorder()
	s.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, path, nil))
	return rw
}

func TestServeHTTP_Pages(t *testing.T) {
	s := writeSite(t)
	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/", http.StatusOK, "home"},
		{"/about/", http.StatusOK, "about"},
		{"/fr/about/", http.StatusOK, "à propos"},
		{"/fr/nope/", http.StatusNotFound, "introuvable"},
		{"/fr/deep/er/path", http.StatusNotFound, "introuvable"},
		{"/nope/", http.StatusNotFound, "missing"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rw := get(s, tt.path)
			if rw.Code != tt.wantCode {
				t.Errorf("GET %s: code = %d, want %d", tt.path, rw.Code, tt.wantCode)
			}
			if !strings.Contains(rw.Body.String(), tt.wantBody) {
				t.Errorf("GET %s: body %q does not contain %q", tt.path, rw.Body.String(), tt.wantBody)
			}
			if ct := rw.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("GET %s: Content-Type = %q", tt.path, ct)
			}
		})
	}
}

// TestServeHTTP_CountsViewsByLanguage verifies that page views, including
// fallback pages, are attributed to the language prefix of the route.
func TestServeHTTP_CountsViewsByLanguage(t *testing.T) {
	s := writeSite(t)
	for _, p := range []string{"/", "/about/", "/fr/about/", "/fr/missing/"} {
		get(s, p)
	}
	get(s, "/style.css")
	views := s.Stats.Snapshot()
	if views["en"] != 2 {
		t.Errorf("en views = %d, want 2", views["en"])
	}
	if views["fr"] != 2 {
		t.Errorf("fr views = %d, want 2", views["fr"])
	}
}

func TestFallbackRoute(t *testing.T) {
	s := &Server{Manifest: &intlbuilder.Manifest{Pages: []*intlbuilder.Page{
		{Path: "/404/"},
		{Path: "/fr/404/", MatchPath: "/fr/*"},
		{Path: "/fr/docs/404/", MatchPath: "/fr/docs/*"},
	}}}
	tests := map[string]string{
		"/fr/x":         "/fr/404/",
		"/fr/docs/x":    "/fr/docs/404/",
		"/de/x":         "/404/",
		"/french-toast": "/404/",
	}
	for in, want := range tests {
		if got := s.FallbackRoute(in); got != want {
			t.Errorf("FallbackRoute(%q) = %q, want %q", in, got, want)
		}
	}
	if got := (&Server{}).FallbackRoute("/x"); got != "" {
		t.Errorf("FallbackRoute without manifest = %q, want empty", got)
	}
}

func TestServeHTTP_MissingWithoutManifest(t *testing.T) {
	dir := t.TempDir()
	s := &Server{BuildDir: dir, Stats: &stats.PageStats{}}
	rw := get(s, "/missing/")
	if rw.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rw.Code)
	}
	if ct := rw.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
}

func TestServeHTTP_DirectoryListing(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "assets")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "app.js"), []byte("1"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := &Server{BuildDir: dir}
	rw := get(s, "/assets")
	if rw.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rw.Code)
	}
	if !strings.Contains(rw.Body.String(), "app.js") {
		t.Errorf("listing does not mention app.js: %s", rw.Body.String())
	}
}

func TestServeHTTP_StaticFile(t *testing.T) {
	s := writeSite(t)
	rw := get(s, "/style.css")
	if rw.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rw.Code)
	}
	if ct := rw.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("Content-Type = %q, want text/css", ct)
	}
	if got := rw.Header().Values("Content-Type"); len(got) != 1 {
		t.Errorf("expected exactly one Content-Type value, got %v", got)
	}
}

func TestServeHTTP_LangStatsSVG(t *testing.T) {
	s := writeSite(t)
	get(s, "/fr/about/")
	rw := get(s, "/"+statsGraphFilename)
	if rw.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rw.Code)
	}
	if !strings.Contains(rw.Body.String(), "<svg") {
		t.Errorf("expected SVG body")
	}
}

// TestContainsPath verifies the containment helper behind the traversal
// guard.
func TestContainsPath(t *testing.T) {
	tests := []struct {
		root   string
		target string
		want   bool
	}{
		{"/srv/site", "/srv/site", true},
		{"/srv/site", "/srv/site/fr/index.html", true},
		{"/srv/site", "/srv/site-old/secret", false},
		{"/srv/site", "/etc/passwd", false},
		{"/srv/site", "/srv", false},
	}
	for _, tt := range tests {
		if got := containsPath(tt.root, tt.target); got != tt.want {
			t.Errorf("containsPath(%q, %q) = %v, want %v", tt.root, tt.target, got, tt.want)
		}
	}
}

func TestServeHTTP_PathTraversal(t *testing.T) {
	s := &Server{BuildDir: t.TempDir()}
	rq := httptest.NewRequest(http.MethodGet, "/", nil)
	rq.URL.Path = "/../../etc/passwd"
	rw := httptest.NewRecorder()
	s.ServeHTTP(rw, rq)
	if rw.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for traversal, got %d", rw.Code)
	}
}

func TestFileType(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"index.html", "text/html; charset=utf-8"},
		{"pages.json", "application/json"},
		{"langstats.svg", "image/svg+xml"},
		{"blob.unknownext", "application/octet-stream"},
	}
	for _, tt := range tests {
		got, err := fileType(tt.file)
		if err != nil {
			t.Errorf("fileType(%q): unexpected error: %v", tt.file, err)
			continue
		}
		if got != tt.want {
			t.Errorf("fileType(%q) = %q, want %q", tt.file, got, tt.want)
		}
	}
}

func TestFileChecksum_Consistent(t *testing.T) {
	content := []byte("hello, intlgo")
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	want := fmt.Sprintf("%x", sha256.Sum256(content))
	got, err := fileChecksum(path)
	if err != nil {
		t.Fatalf("fileChecksum: %v", err)
	}
	if got != want {
		t.Errorf("fileChecksum = %q, want %q", got, want)
	}
	if _, err := fileChecksum(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileChecksum_CacheInvalidatedOnModify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}
	first, err := fileChecksum(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	second, err := fileChecksum(path)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("checksum not refreshed after modification")
	}
}

func TestFileChecksum_ConcurrentSafe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte("shared"), 0o644); err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := fileChecksum(path); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
}

func TestOpenDirectory(t *testing.T) {
	if _, err := openDirectory("/nonexistent/directory/path"); err == nil {
		t.Fatal("expected error for missing directory, got nil")
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	listing, err := openDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := fmt.Sprintf("%x", sha256.Sum256([]byte("x")))
	if !strings.Contains(listing, want) {
		t.Errorf("listing does not include checksum %s:\n%s", want, listing)
	}
}
