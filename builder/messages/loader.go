package intlmessages

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// ErrBundleNotFound is returned when no message file exists for a language.
var ErrBundleNotFound = errors.New("message bundle not found")

// BundleLoadError reports a message file that exists but could not be read
// or parsed.
type BundleLoadError struct {
	Path string
	Err  error
}

func (e *BundleLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *BundleLoadError) Unwrap() error { return e.Err }

type decodeFunc func([]byte, any) error

// format pairs a file extension with its decoder. Extensions are tried in
// slice order; the first existing file wins.
type format struct {
	ext    string
	decode decodeFunc
}

var formats = []format{
	{".json", json.Unmarshal},
	{".yaml", yaml.Unmarshal},
	{".yml", yaml.Unmarshal},
	{".toml", toml.Unmarshal},
}

// Loader reads message files named "{language}.{ext}" from a base directory.
type Loader struct {
	// Quiet suppresses the missing-file diagnostic. Test runs set it.
	Quiet  bool
	Logger *log.Logger
}

// NewLoader returns a Loader logging to logger. A nil logger discards.
func NewLoader(logger *log.Logger, quiet bool) *Loader {
	return &Loader{Quiet: quiet, Logger: logger}
}

// Load returns the flattened message bundle for language under basePath.
// A missing file yields an error wrapping ErrBundleNotFound; a file that
// cannot be read or decoded yields a *BundleLoadError.
func (l *Loader) Load(basePath, language string) (map[string]string, error) {
	for _, f := range formats {
		path := filepath.Join(basePath, language+f.ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &BundleLoadError{Path: path, Err: err}
		}
		tree := make(map[string]any)
		if err := f.decode(data, &tree); err != nil {
			return nil, &BundleLoadError{Path: path, Err: err}
		}
		return Flatten(tree, ""), nil
	}
	expected := filepath.Join(basePath, language+".json")
	if !l.Quiet && l.Logger != nil {
		l.Logger.Error("couldn't find message file", "file", expected)
	}
	return nil, fmt.Errorf("Load: %q: %w", expected, ErrBundleNotFound)
}

// DetectLanguages returns the language codes that have a message file
// directly inside dir, sorted and without duplicates. A missing directory
// returns nil without error.
func DetectLanguages(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var langs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if !knownExt(ext) {
			continue
		}
		lang := strings.TrimSuffix(name, ext)
		if lang == "" || seen[lang] {
			continue
		}
		seen[lang] = true
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

func knownExt(ext string) bool {
	for _, f := range formats {
		if f.ext == ext {
			return true
		}
	}
	return false
}
