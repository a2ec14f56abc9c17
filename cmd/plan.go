package cmd

import (
	"encoding/json"
	"io"

	intlbuilder "github.com/go-i2p/intlgo/builder"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the bundler configuration for the configured languages",
	Long: `plan prints, as JSON, the constants and locale-data context restrictions a
bundler needs so that only the plural-rule and relative-time data of the
configured languages (plus the default language) ships to the client.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(viper.GetBool("verbose"))
		if err := loadConf(); err != nil {
			logger.Fatal("plan", "err", err)
		}
		opts, err := c.Options()
		if err != nil {
			logger.Fatal("plan", "err", err)
		}
		if err := writePlan(cmd.OutOrStdout(), opts); err != nil {
			logger.Fatal("plan", "err", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func writePlan(w io.Writer, opts intlbuilder.Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(intlbuilder.PlanBundler(opts))
}
