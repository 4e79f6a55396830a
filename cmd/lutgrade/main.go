package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/fogleman/ease"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/tiff"

	ocio "github.com/IXgSoul/OpenColorIO"
	"github.com/IXgSoul/OpenColorIO/ops"
	"github.com/IXgSoul/OpenColorIO/ops/lut3d"
)

var _ = fmt.Print

const (
	grade_grid_size    = 33
	contrast_grid_size = 17
	ramp_width         = 512
	ramp_height        = 256
)

// warm_grade nudges every color toward amber and lifts saturation in the
// midtones, a typical creative look.
func warm_grade() (*lut3d.OpData, error) {
	md := ops.NewFormatMetadata(ops.MetadataRoot)
	md.SetName("warm grade")
	lut, err := lut3d.NewFull(ocio.F32BitDepth, ocio.F32BitDepth, &md,
		ocio.TetrahedralInterpolation, grade_grid_size)
	if err != nil {
		return nil, err
	}
	a := lut.Array()
	n := float64(grade_grid_size - 1)
	for i := range grade_grid_size {
		for j := range grade_grid_size {
			for k := range grade_grid_size {
				c := colorful.Color{R: float64(i) / n, G: float64(j) / n, B: float64(k) / n}
				h, s, l := c.Hsl()
				h = math.Mod(h+352, 360)
				s = math.Min(1, s*1.1)
				c = colorful.Hsl(h, s, l).Clamped()
				a.SetRGB(i, j, k, float32(c.R), float32(c.G), float32(c.B))
			}
		}
	}
	return lut, nil
}

// s_curve applies the same easing curve to every channel, the classic
// contrast boost.
func s_curve() (*lut3d.OpData, error) {
	md := ops.NewFormatMetadata(ops.MetadataRoot)
	md.SetName("s-curve contrast")
	lut, err := lut3d.NewFull(ocio.F32BitDepth, ocio.F32BitDepth, &md,
		ocio.TetrahedralInterpolation, contrast_grid_size)
	if err != nil {
		return nil, err
	}
	a := lut.Array()
	n := float64(contrast_grid_size - 1)
	for i := range contrast_grid_size {
		for j := range contrast_grid_size {
			for k := range contrast_grid_size {
				a.SetRGB(i, j, k,
					float32(ease.InOutQuad(float64(i)/n)),
					float32(ease.InOutQuad(float64(j)/n)),
					float32(ease.InOutQuad(float64(k)/n)))
			}
		}
	}
	return lut, nil
}

// hue_ramp renders a hue sweep left to right and a lightness sweep top to
// bottom, one RGB triplet per pixel.
func hue_ramp() []float32 {
	buf := make([]float32, ramp_width*ramp_height*3)
	for y := range ramp_height {
		l := 1 - float64(y)/float64(ramp_height-1)
		for x := range ramp_width {
			h := 360 * float64(x) / float64(ramp_width)
			c := colorful.Hsl(h, 0.9, l).Clamped()
			o := 3 * (y*ramp_width + x)
			buf[o], buf[o+1], buf[o+2] = float32(c.R), float32(c.G), float32(c.B)
		}
	}
	return buf
}

func quantize(v float32) uint8 {
	return uint8(math.Round(float64(min(max(v, 0), 1)) * 255))
}

func as_image(buf []float32) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, ramp_width, ramp_height))
	for y := range ramp_height {
		for x := range ramp_width {
			o := 3 * (y*ramp_width + x)
			img.SetNRGBA(x, y, color.NRGBA{
				R: quantize(buf[o]), G: quantize(buf[o+1]), B: quantize(buf[o+2]), A: 255})
		}
	}
	return img
}

func main() {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}()
	if len(os.Args) > 2 {
		fmt.Fprintln(os.Stderr, "usage: go run ./cmd/lutgrade [output-prefix]")
		os.Exit(1)
	}
	output_prefix := "ramp"
	if len(os.Args) == 2 {
		output_prefix = os.Args[1]
	}
	look, err := warm_grade()
	if err != nil {
		return
	}
	contrast, err := s_curve()
	if err != nil {
		return
	}
	if err = lut3d.Compose(look, contrast); err != nil {
		return
	}
	if err = look.Finalize(); err != nil {
		return
	}
	fmt.Println("look:", look.CacheID())
	fast, err := lut3d.MakeFastFromInverse(look.Inverse())
	if err != nil {
		return
	}
	if err = fast.Finalize(); err != nil {
		return
	}
	fmt.Println("baked inverse:", fast.CacheID())
	ev, err := look.Evaluator()
	if err != nil {
		return
	}
	src := hue_ramp()
	graded := make([]float32, len(src))
	if err = ops.EvalTriplets(graded, src, ev); err != nil {
		return
	}
	fev, err := fast.Evaluator()
	if err != nil {
		return
	}
	restored := make([]float32, len(src))
	if err = ops.EvalTriplets(restored, graded, fev); err != nil {
		return
	}
	worst := float32(0)
	for i, v := range restored {
		worst = max(worst, abs32(v-src[i]))
	}
	fmt.Printf("max round trip error through the baked inverse: %.4f\n", worst)
	source_file := output_prefix + ".png"
	out, err := os.OpenFile(source_file, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return
	}
	func() {
		defer out.Close()
		err = png.Encode(out, as_image(src))
	}()
	if err != nil {
		return
	}
	output_file := output_prefix + "-graded.tiff"
	out, err = os.OpenFile(output_file, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return
	}
	defer out.Close()
	err = tiff.Encode(out, as_image(graded), &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	if err == nil {
		fmt.Println("images saved to:", source_file, "and", output_file)
	}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
