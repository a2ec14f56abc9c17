package config

import (
	"fmt"
	"regexp"

	intlbuilder "github.com/go-i2p/intlgo/builder"
)

// Conf is filled by viper from flags, environment, and the config file.
type Conf struct {
	PagesDir          string
	MessagesDir       string
	Languages         []string
	DefaultLanguage   string
	Redirect          bool
	Skip              []string
	RedirectComponent string
	BuildDir          string
	StatsFile         string
	Host              string
	Port              string
	Verbose           bool
}

// Options converts the plugin-facing part of c into expander options,
// compiling skip patterns and applying defaults. The result is validated.
func (c *Conf) Options() (intlbuilder.Options, error) {
	opts := intlbuilder.Options{
		Path:              c.MessagesDir,
		Languages:         c.Languages,
		DefaultLanguage:   c.DefaultLanguage,
		Redirect:          c.Redirect,
		RedirectComponent: c.RedirectComponent,
	}.WithDefaults()
	for _, s := range c.Skip {
		re, err := regexp.Compile(s)
		if err != nil {
			return opts, fmt.Errorf("Options: skip pattern %q: %w", s, err)
		}
		opts.Skip = append(opts.Skip, re)
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}
