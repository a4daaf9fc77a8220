package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/philipparndt/goslice/internal/config"
	"github.com/philipparndt/goslice/version"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	logger   = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "goslice",
	Short: "Cut triangle meshes along planes into closed, capped pieces",
	Long: `goslice splits STL meshes (or procedurally generated fruit) along arbitrary
planes. Every cut yields up to two watertight pieces: the exposed cross-section
is capped, colored and written back out as STL together with a report on area
conservation, cut loops and the recommended collider of each piece.`,
	Version: version.GetFullVersion(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := config.NewLogger(os.Stderr, logLevel)
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(l)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
