package cmd

import (
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	server "github.com/go-i2p/intlgo/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Preview a built site with per-language match paths",
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(viper.GetBool("verbose"))
		if err := loadConf(); err != nil {
			logger.Fatal("serve", "err", err)
		}
		s := server.Serve(c.BuildDir, c.StatsFile, logger)

		sigCh := make(chan os.Signal, 1)
		// SIGTERM as well as SIGINT so stats survive docker/systemd stops.
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			logger.Info("captured", "signal", sig)
			if err := s.Stats.Save(); err != nil {
				logger.Error("Stats.Save", "err", err)
			}
			os.Exit(0)
		}()

		addr := net.JoinHostPort(c.Host, c.Port)
		logger.Info("serving", "dir", c.BuildDir, "addr", "http://"+addr)
		if err := serveHTTP(s, addr); err != nil {
			logger.Fatal("serveHTTP", "err", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("statsfile", "build/stats.json", "file to store per-language page views in")
	serveCmd.Flags().String("host", "127.0.0.1", "host to serve the site on")
	serveCmd.Flags().String("port", "9696", "port to serve the site on")

	viper.BindPFlags(serveCmd.Flags())
}

// serveHTTP listens on addr and serves h until the listener fails.
func serveHTTP(h http.Handler, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return http.Serve(ln, h)
}
