package cmd

import (
	"fmt"
	"io"
	"slices"

	intlbuilder "github.com/go-i2p/intlgo/builder"
	intlmessages "github.com/go-i2p/intlgo/builder/messages"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// languagesCmd represents the languages command
var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List message files and flag configured languages without one",
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(viper.GetBool("verbose"))
		if err := loadConf(); err != nil {
			logger.Fatal("languages", "err", err)
		}
		opts, err := c.Options()
		if err != nil {
			logger.Fatal("languages", "err", err)
		}
		if missing := listLanguages(cmd.OutOrStdout(), opts); missing > 0 {
			logger.Fatal("languages", "missing", missing)
		}
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}

// listLanguages prints one line per configured or detected language and
// returns how many configured languages have no message file.
func listLanguages(w io.Writer, opts intlbuilder.Options) int {
	opts = opts.Normalized()
	found := intlmessages.DetectLanguages(opts.Path)
	missing := 0
	for _, l := range opts.Languages {
		if slices.Contains(found, l) {
			fmt.Fprintf(w, "%s\tconfigured\n", l)
			continue
		}
		fmt.Fprintf(w, "%s\tmissing\n", l)
		missing++
	}
	for _, l := range found {
		if !slices.Contains(opts.Languages, l) {
			fmt.Fprintf(w, "%s\tunused\n", l)
		}
	}
	return missing
}
