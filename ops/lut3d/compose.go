package lut3d

import (
	"fmt"

	ocio "github.com/IXgSoul/OpenColorIO"
	"github.com/IXgSoul/OpenColorIO/ops"
)

var _ = fmt.Print

// normalized_clone returns a copy of l with unit-range depths on both
// sides. The scaling setters bring the grid content into [0,1] whichever
// direction the node runs, so the clone's evaluator maps [0,1] to [0,1].
func normalized_clone(l *OpData) (*OpData, error) {
	c := l.Clone()
	if err := c.SetInputBitDepth(ocio.F32BitDepth); err != nil {
		return nil, err
	}
	if err := c.SetOutputBitDepth(ocio.F32BitDepth); err != nil {
		return nil, err
	}
	return c, nil
}

func normalized_evaluator(l *OpData) (ops.ChannelTransformer, error) {
	c, err := normalized_clone(l)
	if err != nil {
		return nil, err
	}
	return c.Evaluator()
}

// Compose replaces a with a single LUT equivalent to applying a then b;
// b is only read. a's output depth must match b's input depth. When a is
// sampled at least as finely as b the composed grid keeps a's length and
// simply pushes a's samples through b; otherwise a fresh identity domain of
// b's length is pushed through both, so the finer of the two sets the
// density. Composition through resampling is lossy in general: values
// between grid points of the result are interpolated, not composed.
//
// The result runs forward with a's input depth, b's output depth, a's
// interpolation, fast inversion quality and the combined metadata of both.
// a is left untouched on error.
func Compose(a, b *OpData) error {
	if a.OutputBitDepth() != b.InputBitDepth() {
		return ocio.ConfigErrorf("a bit depth mismatch forbids the composition of LUTs")
	}

	evalB, err := normalized_evaluator(b)
	if err != nil {
		return err
	}

	var domain *Array
	var chain []ops.ChannelTransformer
	if n, m := a.Array().Length(), b.Array().Length(); n >= m {
		domain = a.Array().Clone()
		chain = append(chain, ops.NewScale(1/a.OutputBitDepth().MaxValue()), evalB)
	} else {
		domain, err = NewArray(m, ocio.F32BitDepth)
		if err != nil {
			return err
		}
		evalA, err := normalized_evaluator(a)
		if err != nil {
			return err
		}
		chain = append(chain, evalA, evalB)
	}
	chain = append(chain, ops.NewScale(b.OutputBitDepth().MaxValue()))

	if err := ops.EvalTriplets(domain.Values(), domain.Values(), chain...); err != nil {
		return err
	}

	md := a.Metadata().Clone()
	if err := md.Combine(b.Metadata()); err != nil {
		return err
	}

	a.Base = ops.NewBase(a.InputBitDepth(), b.OutputBitDepth(), &md)
	a.array = domain
	a.direction = ocio.ForwardTransformDirection
	a.invQuality = ocio.FastLutInversion
	a.cacheID = ""
	return nil
}
