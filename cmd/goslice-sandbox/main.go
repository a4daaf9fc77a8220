package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/philipparndt/goslice/internal/app"
	"github.com/philipparndt/goslice/internal/config"
	"github.com/philipparndt/goslice/pkg/fruit"
	"github.com/philipparndt/goslice/version"
	"github.com/spf13/cobra"
)

var (
	kinds    []string
	cells    int
	scale    float64
	seed     uint64
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "goslice-sandbox",
	Short: "Throw fruit in the air and cut them with the mouse",
	Long: `goslice-sandbox opens a window that keeps throwing procedural fruit.
Hold the left mouse button and swipe fast through a fruit to cut it in two.`,
	Version:      version.GetFullVersion(),
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := config.NewLogger(os.Stderr, logLevel)
		if err != nil {
			return err
		}
		return app.Run(app.Options{
			Kinds:  kinds,
			Cells:  cells,
			Scale:  scale,
			Seed:   seed,
			Logger: logger,
		})
	},
}

func init() {
	rootCmd.Flags().StringSliceVar(&kinds, "fruit", nil, "Fruit to throw (default all: "+strings.Join(fruit.Kinds(), ", ")+")")
	rootCmd.Flags().IntVar(&cells, "cells", 24, "Marching cubes resolution of each fruit")
	rootCmd.Flags().Float64Var(&scale, "scale", 1.2, "Fruit size")
	rootCmd.Flags().Uint64Var(&seed, "seed", 1, "Random seed for spawns and spin")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
