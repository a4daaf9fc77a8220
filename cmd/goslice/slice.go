package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/philipparndt/goslice/internal/config"
	"github.com/spf13/cobra"
)

var (
	sliceNormal   string
	slicePoint    string
	sliceEpsilon  float64
	sliceCapColor string
	sliceOutput   string
	slicePlan     string
	sliceCompress string
	sliceASCII    bool
)

var sliceCmd = &cobra.Command{
	Use:   "slice [file]",
	Short: "Cut a mesh along a plane and write the pieces",
	Long: `Cut a mesh along the plane given by --normal and --point, or along every cut of
a plan file (--plan). Each piece is written as STL into the output directory;
the piece on the side the normal points to is suffixed _Slice_A, the other
_Slice_B.

Examples:
  goslice slice cube.stl --normal 0,1,0 --point 0,0,0
  goslice slice fruit:watermelon --normal 1,1,0 --compress zstd --out pieces
  goslice slice --plan plan.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runSlice,
}

func init() {
	sliceCmd.Flags().StringVarP(&sliceNormal, "normal", "n", "0,1,0", "Plane normal as x,y,z")
	sliceCmd.Flags().StringVarP(&slicePoint, "point", "p", "0,0,0", "Point on the plane as x,y,z")
	sliceCmd.Flags().Float64Var(&sliceEpsilon, "eps", 0, "On-plane tolerance (default 1e-5)")
	sliceCmd.Flags().StringVar(&sliceCapColor, "cap-color", "", "Cap color override as #rrggbb")
	sliceCmd.Flags().StringVarP(&sliceOutput, "out", "o", ".", "Output directory")
	sliceCmd.Flags().StringVar(&slicePlan, "plan", "", "Plan file (.yaml or .toml); overrides the other flags")
	sliceCmd.Flags().StringVar(&sliceCompress, "compress", "none", "Output compression: none, zstd or snappy")
	sliceCmd.Flags().BoolVar(&sliceASCII, "ascii", false, "Write ASCII instead of binary STL")
	rootCmd.AddCommand(sliceCmd)
}

// flagPlan builds a single-cut plan from the command line
func flagPlan(source string) (*config.Plan, error) {
	normal, err := parseVec3(sliceNormal)
	if err != nil {
		return nil, fmt.Errorf("--normal: %w", err)
	}
	point, err := parseVec3(slicePoint)
	if err != nil {
		return nil, fmt.Errorf("--point: %w", err)
	}

	plan := &config.Plan{
		Output:   sliceOutput,
		Epsilon:  sliceEpsilon,
		CapColor: sliceCapColor,
		Compress: sliceCompress,
		ASCII:    sliceASCII,
		LogLevel: logLevel,
		Cuts: []config.Cut{{
			Name:   "cut",
			Normal: config.Vec3{normal.X, normal.Y, normal.Z},
			Point:  config.Vec3{point.X, point.Y, point.Z},
		}},
	}
	if kind, ok := cutFruitPrefix(source); ok {
		plan.Fruit = kind
	} else {
		plan.Input = source
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

func runSlice(cmd *cobra.Command, args []string) {
	var (
		plan *config.Plan
		err  error
	)
	switch {
	case slicePlan != "":
		plan, err = config.Load(slicePlan)
	case len(args) == 1:
		plan, err = flagPlan(args[0])
	default:
		err = fmt.Errorf("either a mesh file or --plan is required")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := executePlan(ctx, plan, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error slicing: %v\n", err)
		os.Exit(1)
	}
}
