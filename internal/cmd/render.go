package cmd

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/tiledraw/internal/filters"
	"github.com/MeKo-Tech/tiledraw/internal/present"
	"github.com/MeKo-Tech/tiledraw/internal/render"
	"github.com/MeKo-Tech/tiledraw/internal/rprocess"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Run a filter over an image through the tiled rendering engine",
	Long: `render decodes an input image, runs one tiled pass of a filter to
completion via the core rendering engine, and writes the result.

It drives the engine headlessly in place of the out-of-scope GUI shell,
polling the presenter bridge on a plain loop instead of a UI event loop.`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("in", "i", "", "Input image path (required)")
	renderCmd.Flags().StringP("out", "o", "", "Output image path (required)")
	renderCmd.Flags().String("filter", "none", "Filter: none, flip, invert, glitch, median, blur, unsharp, noise")
	renderCmd.Flags().Int("tile-size", 64, "Tile width and height in pixels")
	renderCmd.Flags().IntP("workers", "w", 0, "Worker count (default: number of CPUs)")
	renderCmd.Flags().Int("radius", 3, "Median filter radius")
	renderCmd.Flags().Float64("sigma", 2.0, "Gaussian/unsharp blur sigma")
	renderCmd.Flags().Float64("amount", 1.0, "Unsharp mask amount")
	renderCmd.Flags().Int64("seed", 1, "Seed for noise/glitch filters")
	renderCmd.Flags().Float64("strength", 0.3, "Noise overlay strength")
	renderCmd.Flags().Int("resize", 0, "Resize the longest output edge to N pixels (0 disables)")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"render.in", "in"},
		{"render.out", "out"},
		{"render.filter", "filter"},
		{"render.tile_size", "tile-size"},
		{"render.workers", "workers"},
		{"render.radius", "radius"},
		{"render.sigma", "sigma"},
		{"render.amount", "amount"},
		{"render.seed", "seed"},
		{"render.strength", "strength"},
		{"render.resize", "resize"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, renderCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func init() {
	image.RegisterFormat("bmp", "BM", bmp.Decode, bmp.DecodeConfig)
	image.RegisterFormat("tiff", "II*\x00", tiff.Decode, tiff.DecodeConfig)
	image.RegisterFormat("tiff", "MM\x00*", tiff.Decode, tiff.DecodeConfig)
}

func runRender(cmd *cobra.Command, args []string) error {
	inPath := viper.GetString("render.in")
	outPath := viper.GetString("render.out")
	if inPath == "" || outPath == "" {
		return fmt.Errorf("render: --in and --out are required")
	}

	proc, err := selectProcessor(viper.GetString("render.filter"))
	if err != nil {
		return err
	}

	f, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("render: opening input: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("render: decoding input: %w", err)
	}

	tileSize := viper.GetInt("render.tile_size")
	workers := viper.GetInt("render.workers")

	preview := present.NewPreviewBuffer(img.Bounds().Dx(), img.Bounds().Dy())
	bridge := present.NewPresenterBridge(nil)

	r := render.New(tileSize, tileSize, workers, proc, bridge, logger)
	defer r.Close()

	if err := r.ReadInput(img); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	for {
		snap, didWork := bridge.Tick(preview)
		if snap.Done >= snap.Total && !didWork {
			break
		}
	}

	out, ok := r.GetOutput()
	if !ok {
		return fmt.Errorf("render: no output produced")
	}

	if resize := viper.GetInt("render.resize"); resize > 0 {
		out = resizeLongestEdge(out, resize)
	}

	return encodeTo(outPath, out)
}

func selectProcessor(name string) (rprocess.Processor, error) {
	switch name {
	case "none", "":
		return filters.DummyProcessor{}, nil
	case "flip":
		return filters.NewFlipFilter().New(), nil
	case "invert":
		return filters.InvertProcessor{}, nil
	case "glitch":
		return filters.NewGlitchProcessor(viper.GetInt64("render.seed")), nil
	case "median":
		proc := filters.NewMedianBlurProcessor()
		proc.Radius.Set(int32(viper.GetInt("render.radius")))
		return proc, nil
	case "blur":
		proc := filters.NewGiftBlurProcessor(filters.GiftGaussianBlur)
		proc.Sigma.Set(viper.GetFloat64("render.sigma"))
		return proc, nil
	case "unsharp":
		proc := filters.NewGiftBlurProcessor(filters.GiftUnsharpMask)
		proc.Sigma.Set(viper.GetFloat64("render.sigma"))
		proc.Amount.Set(viper.GetFloat64("render.amount"))
		return proc, nil
	case "noise":
		proc := filters.NewNoiseOverlayProcessor()
		proc.Seed.Set(int32(viper.GetInt64("render.seed")))
		proc.Strength.Set(viper.GetFloat64("render.strength"))
		return proc, nil
	default:
		return nil, fmt.Errorf("render: unknown filter %q", name)
	}
}

func resizeLongestEdge(img image.Image, longest int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return img
	}

	var nw, nh int
	if w >= h {
		nw = longest
		nh = h * longest / w
	} else {
		nh = longest
		nw = w * longest / h
	}

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func encodeTo(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: creating output: %w", err)
	}
	defer f.Close()

	switch ext := fileExt(path); ext {
	case ".jpg", ".jpeg":
		return jpeg.Encode(f, img, &jpeg.Options{Quality: 92})
	default:
		return png.Encode(f, img)
	}
}

func fileExt(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}
