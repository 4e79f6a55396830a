package lut3d

import (
	"math/rand"
	"testing"

	ocio "github.com/IXgSoul/OpenColorIO"
	"github.com/IXgSoul/OpenColorIO/ops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fill_from_function samples f at the grid coordinates, with x, y and z
// running over [0,1].
func fill_from_function(a *Array, f func(x, y, z float64) (float64, float64, float64)) {
	L := a.Length()
	for i := range L {
		for j := range L {
			for k := range L {
				r, g, b := f(float64(i)/float64(L-1), float64(j)/float64(L-1), float64(k)/float64(L-1))
				a.SetRGB(i, j, k, float32(r), float32(g), float32(b))
			}
		}
	}
}

// mix_warp is a smooth bijection of the unit cube: a per-channel quadratic
// warp whose derivative stays between 0.5 and 1.5, followed by a diagonally
// dominant channel mix. Rows sum to one, so the image stays inside the
// cube, and the bounded derivative keeps the inverse well conditioned.
func mix_warp(x, y, z float64) (float64, float64, float64) {
	wx, wy, wz := (x+x*x)/2, (y+y*y)/2, (z+z*z)/2
	return 0.80*wx + 0.15*wy + 0.05*wz,
		0.05*wx + 0.80*wy + 0.15*wz,
		0.15*wx + 0.05*wy + 0.80*wz
}

// affine_mix is linear in every channel, which both interpolation methods
// reproduce exactly.
func affine_mix(x, y, z float64) (float64, float64, float64) {
	return 0.1 + 0.4*x + 0.2*y + 0.1*z,
		0.05 + 0.1*x + 0.6*y + 0.2*z,
		0.2 + 0.2*x + 0.1*y + 0.5*z
}

var eval_probes = [][3]float32{
	{0, 0, 0}, {1, 1, 1}, {0.5, 0.5, 0.5},
	{0.05, 0.8, 0.33}, {0.7, 0.1, 0.9}, {0.25, 0.4, 0.6},
	{1, 0, 0.5}, {0.999, 0.001, 0.5}, {0.125, 0.125, 0.875},
}

func TestTrilinearIdentity(t *testing.T) {
	l, err := New(5)
	require.NoError(t, err)
	ev, err := l.Evaluator()
	require.NoError(t, err)

	for _, p := range eval_probes {
		r, g, b := ev.Transform(p[0], p[1], p[2])
		in_delta_rgb(t, p[0], p[1], p[2], r, g, b, 1e-6)
	}

	// A 3D LUT clamps to its domain.
	r, g, b := ev.Transform(-0.5, 2, 0.5)
	in_delta_rgb(t, 0, 1, 0.5, r, g, b, 1e-6)

	// NaN is treated as the bottom of the domain.
	nan := float32(0)
	nan /= nan
	r, _, _ = ev.Transform(nan, 0, 0)
	assert.Equal(t, float32(0), r)
}

func TestTrilinearHitsGridSamples(t *testing.T) {
	const L = 7
	l, err := New(L)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(42))
	for i := range l.Array().Values() {
		l.Array().Values()[i] = rng.Float32()
	}
	ev, err := l.Evaluator()
	require.NoError(t, err)

	for i := range L {
		for j := range L {
			for k := range L {
				x := float32(i) / float32(L-1)
				y := float32(j) / float32(L-1)
				z := float32(k) / float32(L-1)
				wr, wg, wb := l.Array().GetRGB(i, j, k)
				r, g, b := ev.Transform(x, y, z)
				in_delta_rgb(t, wr, wg, wb, r, g, b, 1e-5)
			}
		}
	}
}

func TestTetrahedralHitsGridSamples(t *testing.T) {
	const L = 5
	l, err := New(L)
	require.NoError(t, err)
	l.SetInterpolation(ocio.TetrahedralInterpolation)
	rng := rand.New(rand.NewSource(7))
	for i := range l.Array().Values() {
		l.Array().Values()[i] = rng.Float32()
	}
	ev, err := l.Evaluator()
	require.NoError(t, err)

	for i := range L {
		for j := range L {
			for k := range L {
				x := float32(i) / float32(L-1)
				y := float32(j) / float32(L-1)
				z := float32(k) / float32(L-1)
				wr, wg, wb := l.Array().GetRGB(i, j, k)
				r, g, b := ev.Transform(x, y, z)
				in_delta_rgb(t, wr, wg, wb, r, g, b, 1e-5)
			}
		}
	}
}

func TestInterpolationReproducesAffineContent(t *testing.T) {
	for _, interp := range []ocio.Interpolation{ocio.LinearInterpolation, ocio.TetrahedralInterpolation} {
		l, err := New(5)
		require.NoError(t, err)
		l.SetInterpolation(interp)
		fill_from_function(l.Array(), affine_mix)
		ev, err := l.Evaluator()
		require.NoError(t, err)

		for _, p := range eval_probes {
			wr, wg, wb := affine_mix(float64(p[0]), float64(p[1]), float64(p[2]))
			r, g, b := ev.Transform(p[0], p[1], p[2])
			in_delta_rgb(t, float32(wr), float32(wg), float32(wb), r, g, b, 1e-5)
		}
	}
}

func TestEvaluatorDepthUnits(t *testing.T) {
	l, err := NewFull(ocio.Uint8BitDepth, ocio.Uint10BitDepth, nil, ocio.DefaultInterpolation, 3)
	require.NoError(t, err)
	ev, err := l.Evaluator()
	require.NoError(t, err)

	// Inputs arrive in 8-bit units, outputs leave in 10-bit units.
	r, g, b := ev.Transform(127.5, 255, 0)
	in_delta_rgb(t, 511.5, 1023, 0, r, g, b, 1e-2)

	// Above-range input clamps to the top of the domain.
	r, _, _ = ev.Transform(300, 0, 0)
	in_delta(t, 1023, r, 1e-2)
}

func TestConstantGrid(t *testing.T) {
	l, err := New(1)
	require.NoError(t, err)
	l.Array().SetRGB(0, 0, 0, 0.3, 0.4, 0.5)
	ev, err := l.Evaluator()
	require.NoError(t, err)
	for _, p := range eval_probes {
		r, g, b := ev.Transform(p[0], p[1], p[2])
		in_delta_rgb(t, 0.3, 0.4, 0.5, r, g, b, 0)
	}
}

func TestExactInverseIdentity(t *testing.T) {
	fwd, err := New(5)
	require.NoError(t, err)
	inv := fwd.Inverse()
	inv.SetInversionQuality(ocio.ExactLutInversion)
	ev, err := inv.Evaluator()
	require.NoError(t, err)

	for _, p := range eval_probes {
		r, g, b := ev.Transform(p[0], p[1], p[2])
		in_delta_rgb(t, p[0], p[1], p[2], r, g, b, 1e-5)
	}
}

func TestExactInverseRoundtrip(t *testing.T) {
	fwd, err := New(9)
	require.NoError(t, err)
	fill_from_function(fwd.Array(), mix_warp)
	fwdEval, err := fwd.Evaluator()
	require.NoError(t, err)

	inv := fwd.Inverse()
	inv.SetInversionQuality(ocio.ExactLutInversion)
	invEval, err := inv.Evaluator()
	require.NoError(t, err)

	for _, p := range eval_probes {
		yr, yg, yb := fwdEval.Transform(p[0], p[1], p[2])
		xr, xg, xb := invEval.Transform(yr, yg, yb)

		// The recovered color reproduces the target through the forward
		// mapping and sits next to the probe it came from.
		rr, rg, rb := fwdEval.Transform(xr, xg, xb)
		in_delta_rgb(t, yr, yg, yb, rr, rg, rb, 1e-5)
		in_delta_rgb(t, p[0], p[1], p[2], xr, xg, xb, 1e-3)
	}
}

func TestExactInverseOutOfRange(t *testing.T) {
	fwd, err := New(3)
	require.NoError(t, err)
	inv := fwd.Inverse()
	inv.SetInversionQuality(ocio.ExactLutInversion)
	ev, err := inv.Evaluator()
	require.NoError(t, err)

	// Targets beyond the representable range clamp to the closest
	// reachable color.
	r, g, b := ev.Transform(2, 0.5, 0.5)
	in_delta_rgb(t, 1, 0.5, 0.5, r, g, b, 1e-5)
	r, g, b = ev.Transform(-1, -1, -1)
	in_delta_rgb(t, 0, 0, 0, r, g, b, 1e-5)
}

func TestExactInverseDepthUnits(t *testing.T) {
	fwd, err := NewFull(ocio.Uint10BitDepth, ocio.Uint12BitDepth, nil, ocio.DefaultInterpolation, 3)
	require.NoError(t, err)
	inv := fwd.Inverse()
	inv.SetInversionQuality(ocio.ExactLutInversion)
	ev, err := inv.Evaluator()
	require.NoError(t, err)

	// The identity grid maps [0,4095] back onto [0,1023].
	r, g, b := ev.Transform(4095, 2047.5, 0)
	in_delta_rgb(t, 1023, 511.5, 0, r, g, b, 1e-2)
}

func TestInverseOfConstantGridFails(t *testing.T) {
	l, err := NewWithDirection(1, ocio.InverseTransformDirection)
	require.NoError(t, err)
	_, err = l.Evaluator()
	require.Error(t, err)
	var dom *ocio.DomainError
	require.ErrorAs(t, err, &dom)
	assert.ErrorContains(t, err, "cannot be inverted")
}

func TestEvaluatorDispatch(t *testing.T) {
	l, err := New(3)
	require.NoError(t, err)

	ev, err := l.Evaluator()
	require.NoError(t, err)
	_, ok := ev.(*trilinear_evaluator)
	assert.True(t, ok, "default resolves to trilinear")

	l.SetInterpolation(ocio.BestInterpolation)
	ev, err = l.Evaluator()
	require.NoError(t, err)
	_, ok = ev.(*tetrahedral_evaluator)
	assert.True(t, ok, "best resolves to tetrahedral")

	inv := l.Inverse()
	inv.SetInversionQuality(ocio.ExactLutInversion)
	ev, err = inv.Evaluator()
	require.NoError(t, err)
	_, ok = ev.(*exact_inverse_evaluator)
	assert.True(t, ok)

	// Fast quality bakes a forward approximation and returns its evaluator.
	inv.SetInversionQuality(ocio.FastLutInversion)
	ev, err = inv.Evaluator()
	require.NoError(t, err)
	_, ok = ev.(*trilinear_evaluator)
	assert.True(t, ok)

	l.SetInterpolation(ocio.CubicInterpolation)
	_, err = l.Evaluator()
	require.Error(t, err, "evaluator of an invalid node")
}

func TestEvaluatorWithEvalTriplets(t *testing.T) {
	l, err := New(5)
	require.NoError(t, err)
	fill_from_function(l.Array(), affine_mix)
	ev, err := l.Evaluator()
	require.NoError(t, err)

	src := make([]float32, 0, 3*len(eval_probes))
	for _, p := range eval_probes {
		src = append(src, p[0], p[1], p[2])
	}
	dst := make([]float32, len(src))
	require.NoError(t, ops.EvalTriplets(dst, src, ev))

	for i, p := range eval_probes {
		wr, wg, wb := affine_mix(float64(p[0]), float64(p[1]), float64(p[2]))
		in_delta_rgb(t, float32(wr), float32(wg), float32(wb), dst[3*i], dst[3*i+1], dst[3*i+2], 1e-5)
	}
}
