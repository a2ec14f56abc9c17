package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	intlbuilder "github.com/go-i2p/intlgo/builder"
	intlrender "github.com/go-i2p/intlgo/builder/render"
	intlserver "github.com/go-i2p/intlgo/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Expand and render every page of a pages directory",
	Long: `build scans --pagesdir for .html pages, expands each into a default-language
page plus one routed page per --languages entry, fills elements marked with
data-intl="key" from the language's messages, and writes the result together
with a pages.json route manifest to --builddir.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(viper.GetBool("verbose"))
		if err := loadConf(); err != nil {
			logger.Fatal("build", "err", err)
		}
		opts, err := c.Options()
		if err != nil {
			logger.Fatal("build", "err", err)
		}
		n, err := build(opts, c.PagesDir, c.BuildDir, logger)
		if err != nil {
			logger.Fatal("build", "err", err)
		}
		logger.Info("build complete", "pages", n, "dir", c.BuildDir)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().String("pagesdir", "pages", "directory of source .html pages")

	viper.BindPFlags(buildCmd.Flags())
}

// build expands and renders every page under pagesDir into buildDir and
// returns the number of pages written. Pages matching a skip pattern are
// copied unchanged.
func build(opts intlbuilder.Options, pagesDir, buildDir string, logger *log.Logger) (int, error) {
	pages, err := intlbuilder.ScanPages(pagesDir)
	if err != nil {
		return 0, fmt.Errorf("build: scan %s: %w", pagesDir, err)
	}
	reg := intlbuilder.NewMemoryRegistry(pages...)
	e := intlbuilder.NewExpander(opts, logger)
	for _, p := range pages {
		if _, err := e.Expand(p, reg); err != nil {
			return 0, err
		}
	}

	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return 0, fmt.Errorf("build: %w", err)
	}
	r := &intlrender.Renderer{BuildDir: buildDir, Logger: logger}
	out := reg.Pages()
	for _, p := range out {
		if p.Intl() == nil {
			_, err = r.Copy(p)
		} else {
			_, err = r.Render(p)
		}
		if err != nil {
			return 0, err
		}
	}
	if err := reg.WriteManifest(filepath.Join(buildDir, intlserver.ManifestFile), opts); err != nil {
		return 0, err
	}
	return len(out), nil
}
