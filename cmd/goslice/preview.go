package main

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/preview"
	"github.com/philipparndt/goslice/pkg/slicer"
	"github.com/spf13/cobra"
)

const degree = math.Pi / 180

var (
	previewNormal string
	previewPoint  string
	previewOutput string
	previewWidth  int
	previewHeight int
	previewGap    float64
	previewYaw    float64
	previewPitch  float64
	previewLoops  bool
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Render the pieces of a cut to PNG",
	Long: `Cut a mesh (or fruit:<kind>) along a plane and render both pieces, pulled apart
along the cut normal, into a PNG image. Caps are drawn unlit in their cap color
and the cut loops can be outlined.`,
	Args: cobra.ExactArgs(1),
	Run:  runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewNormal, "normal", "n", "0,1,0", "Plane normal as x,y,z")
	previewCmd.Flags().StringVarP(&previewPoint, "point", "p", "0,0,0", "Point on the plane as x,y,z")
	previewCmd.Flags().StringVarP(&previewOutput, "out", "o", "preview.png", "Output PNG file")
	previewCmd.Flags().IntVar(&previewWidth, "width", 640, "Image width")
	previewCmd.Flags().IntVar(&previewHeight, "height", 480, "Image height")
	previewCmd.Flags().Float64Var(&previewGap, "gap", 0.15, "Distance each piece is pushed away from the cut")
	previewCmd.Flags().Float64Var(&previewYaw, "yaw", 0, "Extra camera yaw in degrees")
	previewCmd.Flags().Float64Var(&previewPitch, "pitch", 0, "Extra camera pitch in degrees")
	previewCmd.Flags().BoolVar(&previewLoops, "loops", false, "Outline the cut loops")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) {
	normal, err := parseVec3(previewNormal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: --normal: %v\n", err)
		os.Exit(1)
	}
	point, err := parseVec3(previewPoint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: --point: %v\n", err)
		os.Exit(1)
	}
	plane, err := geometry.NewPlane(normal, point)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	obj, skin, err := loadSource(context.Background(), args[0], geometry.IdentityTransform())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", args[0], err)
		os.Exit(1)
	}

	opts := slicer.DefaultOptions()
	opts.Logger = logger
	res, err := slicer.New(opts).Slice(obj, plane)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error slicing: %v\n", err)
		os.Exit(1)
	}

	items := preview.PieceItems(res.Pieces(), skin, previewGap)
	cam := preview.NewCamera(preview.Bounds(items))
	cam.Orbit(previewPitch*degree, previewYaw*degree)

	ropts := preview.DefaultOptions()
	ropts.Width, ropts.Height = previewWidth, previewHeight
	ropts.Caption = fmt.Sprintf("%s: %d pieces, %d loops", obj.Name, len(res.Pieces()), len(res.Loops))
	if previewLoops {
		ropts.Loops = res.Loops
	}

	img := preview.Render(items, cam, ropts)
	if err := preview.SavePNG(previewOutput, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", previewOutput)
}
