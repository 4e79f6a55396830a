package lut3d

import (
	"testing"

	ocio "github.com/IXgSoul/OpenColorIO"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeFastFromInverseRequiresInverse(t *testing.T) {
	l, err := New(3)
	require.NoError(t, err)
	_, err = MakeFastFromInverse(l)
	require.Error(t, err)
	var cfg *ocio.ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.ErrorContains(t, err, "expects an inverse LUT")
}

func TestMakeFastFromInverseShape(t *testing.T) {
	fwd, err := NewFull(ocio.Uint10BitDepth, ocio.Uint12BitDepth, nil, ocio.DefaultInterpolation, 17)
	require.NoError(t, err)
	fill_from_function(fwd.Array(), mix_warp)
	fwd.Array().Scale(4095)

	inv := fwd.Inverse()
	require.Equal(t, ocio.Uint12BitDepth, inv.InputBitDepth())
	require.Equal(t, ocio.Uint10BitDepth, inv.OutputBitDepth())
	inv.SetInversionQuality(ocio.BestLutInversion)

	fast, err := MakeFastFromInverse(inv)
	require.NoError(t, err)

	// The bake keeps the inverse's depths and runs forward over the
	// standard grid.
	assert.Equal(t, ocio.Uint12BitDepth, fast.InputBitDepth())
	assert.Equal(t, ocio.Uint10BitDepth, fast.OutputBitDepth())
	assert.Equal(t, ocio.ForwardTransformDirection, fast.Direction())
	assert.Equal(t, FastInverseGridSize, fast.Array().Length())
	require.NoError(t, fast.Validate())

	// The source LUT keeps its settings.
	assert.Equal(t, ocio.BestLutInversion, inv.InversionQuality())
	assert.Equal(t, ocio.InverseTransformDirection, inv.Direction())

	// The top of the range maps back onto the top of the output domain.
	ev, err := fast.Evaluator()
	require.NoError(t, err)
	r, g, b := ev.Transform(4095, 4095, 4095)
	in_delta_rgb(t, 1023, 1023, 1023, r, g, b, 1)
}

func TestMakeFastFromInverseAccuracy(t *testing.T) {
	fwd, err := New(9)
	require.NoError(t, err)
	fill_from_function(fwd.Array(), mix_warp)
	fwdEval, err := fwd.Evaluator()
	require.NoError(t, err)

	inv := fwd.Inverse()
	fast, err := MakeFastFromInverse(inv)
	require.NoError(t, err)
	fastEval, err := fast.Evaluator()
	require.NoError(t, err)

	// The baked inverse interpolates between samples of the exact inverse,
	// so recovery is approximate but close on smooth content.
	for _, p := range eval_probes {
		yr, yg, yb := fwdEval.Transform(p[0], p[1], p[2])
		xr, xg, xb := fastEval.Transform(yr, yg, yb)
		in_delta_rgb(t, p[0], p[1], p[2], xr, xg, xb, 0.02)
	}
}

func TestMakeFastFromInverseQualityRestoredOnError(t *testing.T) {
	l, err := NewWithDirection(1, ocio.InverseTransformDirection)
	require.NoError(t, err)
	l.SetInversionQuality(ocio.BestLutInversion)

	_, err = MakeFastFromInverse(l)
	require.Error(t, err)
	var dom *ocio.DomainError
	require.ErrorAs(t, err, &dom)
	assert.ErrorContains(t, err, "cannot be inverted")

	assert.Equal(t, ocio.BestLutInversion, l.InversionQuality(),
		"the quality override does not leak out of a failed bake")
}

func TestFastInversionQualityThroughEvaluator(t *testing.T) {
	fwd, err := New(5)
	require.NoError(t, err)
	fill_from_function(fwd.Array(), shift)

	inv := fwd.Inverse()
	inv.SetInversionQuality(ocio.FastLutInversion)
	ev, err := inv.Evaluator()
	require.NoError(t, err)
	assert.Equal(t, ocio.FastLutInversion, inv.InversionQuality(),
		"building the evaluator leaves the node as configured")

	// shift is affine, so away from the range edges the resampled inverse
	// recovers x = 2·(y − 0.25) almost exactly. The edges themselves fall
	// inside bake cells and are only approximate.
	for _, y := range []float32{0.3, 0.45, 0.6, 0.7} {
		r, g, b := ev.Transform(y, y, y)
		want := 2 * (y - 0.25)
		in_delta_rgb(t, want, want, want, r, g, b, 1e-4)
	}

	// Outside the representable range the bake clamps.
	r, g, b := ev.Transform(0, 0, 0)
	in_delta_rgb(t, 0, 0, 0, r, g, b, 1e-5)
	r, g, b = ev.Transform(1, 1, 1)
	in_delta_rgb(t, 1, 1, 1, r, g, b, 1e-5)
}
