package lut3d

import (
	ocio "github.com/IXgSoul/OpenColorIO"
)

// FastInverseGridSize is the sampling density inverse LUTs are baked at
// when speed is preferred over exactness.
const FastInverseGridSize = 48

// quality_guard pins a node's inversion quality for the duration of a bake
// and puts the previous setting back afterwards.
type quality_guard struct {
	lut  *OpData
	prev ocio.LutInversionQuality
}

func pin_inversion_quality(l *OpData, q ocio.LutInversionQuality) *quality_guard {
	g := &quality_guard{lut: l, prev: l.InversionQuality()}
	l.SetInversionQuality(q)
	return g
}

func (g *quality_guard) restore() { g.lut.SetInversionQuality(g.prev) }

// MakeFastFromInverse bakes an inverse LUT into a forward LUT that
// approximates it: an identity domain sampled at FastInverseGridSize is
// composed with the exact inverse of lut. The result evaluates at forward
// speed and carries lut's input and output depths; between its grid points
// it interpolates, so it is only as accurate as the sampling. lut itself is
// not modified: its inversion quality is forced to exact while the bake
// runs and restored before returning.
func MakeFastFromInverse(lut *OpData) (*OpData, error) {
	if lut.Direction() != ocio.InverseTransformDirection {
		return nil, ocio.ConfigErrorf("MakeFastFromInverse expects an inverse LUT")
	}

	guard := pin_inversion_quality(lut, ocio.ExactLutInversion)
	defer guard.restore()

	domain, err := NewFull(lut.InputBitDepth(), lut.InputBitDepth(), nil,
		ocio.DefaultInterpolation, FastInverseGridSize)
	if err != nil {
		return nil, err
	}
	if err := Compose(domain, lut); err != nil {
		return nil, err
	}
	return domain, nil
}
