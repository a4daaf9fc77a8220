package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/philipparndt/goslice/internal/config"
	"github.com/philipparndt/goslice/pkg/openscad"
	"github.com/philipparndt/goslice/pkg/watcher"
	"github.com/spf13/cobra"
)

var watchDebounce int

var watchCmd = &cobra.Command{
	Use:   "watch [plan]",
	Short: "Re-run a slice plan whenever the plan or its input changes",
	Long: `Run a plan file once and keep running it whenever the plan, its input mesh or
any OpenSCAD file the input includes is saved. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	Run:  runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchDebounce, "debounce", 250, "Milliseconds a file has to stay unchanged before re-running")
	rootCmd.AddCommand(watchCmd)
}

// watchedFiles lists the plan, its input and the input's OpenSCAD dependencies
func watchedFiles(planPath string, plan *config.Plan) ([]string, error) {
	files := []string{planPath}
	input := plan.InputPath()
	switch {
	case input == "":
	case openscad.IsSource(input):
		deps, err := openscad.NewCompiler(filepath.Dir(input), logger).Dependencies(input)
		if err != nil {
			return nil, err
		}
		files = append(files, deps...)
	default:
		files = append(files, input)
	}
	return files, nil
}

func runWatch(cmd *cobra.Command, args []string) {
	planPath := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w, err := watcher.New(time.Duration(watchDebounce)*time.Millisecond, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer w.Close()

	var mu sync.Mutex
	var rerun func(string)
	rerun = func(changed string) {
		mu.Lock()
		defer mu.Unlock()

		plan, err := config.Load(planPath)
		if err != nil {
			logger.Error("plan not loaded", "path", planPath, "err", err)
			return
		}
		if _, err := executePlan(ctx, plan, os.Stdout); err != nil {
			logger.Error("plan failed", "path", planPath, "err", err)
		}

		// The plan may point at a different input now.
		files, err := watchedFiles(planPath, plan)
		if err != nil {
			logger.Warn("dependencies not resolved", "err", err)
			return
		}
		if err := w.Watch(files, rerun); err != nil {
			logger.Warn("not all files watched", "err", err)
		}
	}

	if _, err := config.Load(planPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading plan: %v\n", err)
		os.Exit(1)
	}
	rerun(planPath)
	w.Start(ctx)

	logger.Info("watching for changes", "files", len(w.Files()))
	<-ctx.Done()
}
