package ops

import (
	ocio "github.com/IXgSoul/OpenColorIO"
)

// Range clamps each channel to an input interval and maps that interval
// affinely onto an output interval. It is the node an identity LUT can be
// replaced with: no table, no crosstalk, just the clamp the LUT would have
// applied at its domain borders.
type Range struct {
	Base
	MinIn, MaxIn   float64
	MinOut, MaxOut float64
}

var _ OpData = (*Range)(nil)
var _ ChannelTransformer = (*Range)(nil)

func NewRange(in, out ocio.BitDepth, metadata *FormatMetadata, minIn, maxIn, minOut, maxOut float64) *Range {
	return &Range{
		Base:  NewBase(in, out, metadata),
		MinIn: minIn, MaxIn: maxIn,
		MinOut: minOut, MaxOut: maxOut,
	}
}

func (r *Range) scale() float64  { return (r.MaxOut - r.MinOut) / (r.MaxIn - r.MinIn) }
func (r *Range) offset() float64 { return r.MinOut - r.scale()*r.MinIn }

func (r *Range) Validate() error {
	if err := r.Base.Validate(); err != nil {
		return err
	}
	if r.MaxIn <= r.MinIn {
		return ocio.ConfigErrorf("range input min %g must be smaller than max %g", r.MinIn, r.MaxIn)
	}
	if r.MaxOut <= r.MinOut {
		return ocio.ConfigErrorf("range output min %g must be smaller than max %g", r.MinOut, r.MaxOut)
	}
	return nil
}

// SetInputBitDepth rescales the input interval so the clamp keeps cutting
// at the same relative positions in the new units.
func (r *Range) SetInputBitDepth(in ocio.BitDepth) error {
	if in == ocio.UnknownBitDepth {
		return ocio.ConfigErrorf("cannot rescale a range op to an unknown input bit depth")
	}
	f := in.MaxValue() / r.InputBitDepth().MaxValue()
	r.Base.SetInputBitDepth(in)
	r.MinIn *= f
	r.MaxIn *= f
	return nil
}

func (r *Range) SetOutputBitDepth(out ocio.BitDepth) error {
	if out == ocio.UnknownBitDepth {
		return ocio.ConfigErrorf("cannot rescale a range op to an unknown output bit depth")
	}
	f := out.MaxValue() / r.OutputBitDepth().MaxValue()
	r.Base.SetOutputBitDepth(out)
	r.MinOut *= f
	r.MaxOut *= f
	return nil
}

func (r *Range) apply(v float32) float32 {
	x := float64(v)*r.scale() + r.offset()
	return float32(max(r.MinOut, min(x, r.MaxOut)))
}

func (r *Range) Transform(rr, gg, bb float32) (float32, float32, float32) {
	return r.apply(rr), r.apply(gg), r.apply(bb)
}

func (r *Range) IsNoOp() bool { return false }

// IsIdentity reports whether values inside the input interval pass through
// unchanged. The clamp at the borders remains.
func (r *Range) IsIdentity() bool {
	return r.scale() == 1 && r.offset() == 0
}

func (r *Range) HasChannelCrosstalk() bool { return false }
