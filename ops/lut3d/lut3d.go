package lut3d

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sync"

	ocio "github.com/IXgSoul/OpenColorIO"
	"github.com/IXgSoul/OpenColorIO/ops"
)

var _ = fmt.Print

// OpData is a 3D LUT transform node. The grid always stores the forward
// mapping; an inverse-direction node keeps the same grid and evaluation
// solves it backwards. Consequently the grid values of a forward node live
// in output units and those of an inverse node in input units, which is
// what the depth setters rescale by.
type OpData struct {
	ops.Base
	array         *Array
	direction     ocio.TransformDirection
	interpolation ocio.Interpolation
	invQuality    ocio.LutInversionQuality

	mu      sync.Mutex
	cacheID string
}

var _ ops.OpData = (*OpData)(nil)

// New builds a forward identity LUT of the given grid size with 32f depths
// on both sides, default interpolation and fast inversion quality.
func New(gridSize int) (*OpData, error) {
	return NewFull(ocio.F32BitDepth, ocio.F32BitDepth, nil, ocio.DefaultInterpolation, gridSize)
}

func NewWithDirection(gridSize int, direction ocio.TransformDirection) (*OpData, error) {
	l, err := New(gridSize)
	if err != nil {
		return nil, err
	}
	l.direction = direction
	return l, nil
}

// NewFull builds a forward LUT with the given depths and metadata. The grid
// starts as the identity mapping in output depth units.
func NewFull(in, out ocio.BitDepth, metadata *ops.FormatMetadata,
	interpolation ocio.Interpolation, gridSize int) (*OpData, error) {
	if out == ocio.UnknownBitDepth {
		return nil, ocio.ConfigErrorf("cannot build a LUT 3D with an unknown output bit depth")
	}
	a, err := NewArray(gridSize, out)
	if err != nil {
		return nil, err
	}
	return &OpData{
		Base:          ops.NewBase(in, out, metadata),
		array:         a,
		direction:     ocio.ForwardTransformDirection,
		interpolation: interpolation,
		invQuality:    ocio.FastLutInversion,
	}, nil
}

func (l *OpData) Array() *Array                        { return l.array }
func (l *OpData) Direction() ocio.TransformDirection   { return l.direction }
func (l *OpData) Interpolation() ocio.Interpolation    { return l.interpolation }
func (l *OpData) SetInterpolation(i ocio.Interpolation) { l.interpolation = i }

func (l *OpData) InversionQuality() ocio.LutInversionQuality     { return l.invQuality }
func (l *OpData) SetInversionQuality(q ocio.LutInversionQuality) { l.invQuality = q }

// ConcreteInterpolation resolves the requested interpolation to the
// algorithm evaluation actually runs: best and tetrahedral run tetrahedral,
// everything else, nearest included, runs trilinear.
func (l *OpData) ConcreteInterpolation() ocio.Interpolation {
	switch l.interpolation {
	case ocio.BestInterpolation, ocio.TetrahedralInterpolation:
		return ocio.TetrahedralInterpolation
	}
	return ocio.LinearInterpolation
}

// ConcreteInversionQuality resolves the requested inversion quality: best
// and exact run the exact solver, default and fast the resampled one.
func (l *OpData) ConcreteInversionQuality() ocio.LutInversionQuality {
	switch l.invQuality {
	case ocio.BestLutInversion, ocio.ExactLutInversion:
		return ocio.ExactLutInversion
	}
	return ocio.FastLutInversion
}

// SetInputBitDepth records the new input depth. The grid of an inverse node
// holds values in input units, so its content is rescaled by the ratio of
// the new to the old maximum; on a forward node only the record changes.
func (l *OpData) SetInputBitDepth(in ocio.BitDepth) error {
	if in == ocio.UnknownBitDepth {
		return ocio.ConfigErrorf("cannot rescale a LUT 3D to an unknown input bit depth")
	}
	if l.direction == ocio.InverseTransformDirection {
		factor := float32(in.MaxValue()) / float32(l.InputBitDepth().MaxValue())
		l.array.Scale(factor)
	}
	l.Base.SetInputBitDepth(in)
	return nil
}

// SetOutputBitDepth is the mirror image: the grid of a forward node holds
// values in output units and is rescaled, an inverse node only records.
func (l *OpData) SetOutputBitDepth(out ocio.BitDepth) error {
	if out == ocio.UnknownBitDepth {
		return ocio.ConfigErrorf("cannot rescale a LUT 3D to an unknown output bit depth")
	}
	if l.direction == ocio.ForwardTransformDirection {
		factor := float32(out.MaxValue()) / float32(l.OutputBitDepth().MaxValue())
		l.array.Scale(factor)
	}
	l.Base.SetOutputBitDepth(out)
	return nil
}

// SetFromRedFastestOrder loads grid content from a flat buffer laid out
// with the red index varying fastest, the convention of most LUT file
// formats, reordering it into the blue-fastest layout evaluation expects.
func (l *OpData) SetFromRedFastestOrder(lut []float32) error {
	sz := l.array.Length()
	if sz*sz*sz*3 != len(lut) {
		return ocio.DomainErrorf("LUT 3D grid length %d does not match a buffer of %d values", sz, len(lut))
	}
	values := l.array.Values()
	for b := range sz {
		for g := range sz {
			for r := range sz {
				blueFast := 3 * ((r*sz+g)*sz + b)
				redFast := 3 * ((b*sz+g)*sz + r)
				values[blueFast+0] = lut[redFast+0]
				values[blueFast+1] = lut[redFast+1]
				values[blueFast+2] = lut[redFast+2]
			}
		}
	}
	return nil
}

func (l *OpData) Validate() error {
	if err := l.Base.Validate(); err != nil {
		return err
	}
	switch l.interpolation {
	case ocio.BestInterpolation, ocio.TetrahedralInterpolation, ocio.DefaultInterpolation,
		ocio.LinearInterpolation, ocio.NearestInterpolation:
	default:
		return ocio.ConfigErrorf("LUT 3D has an invalid interpolation type '%s'", l.interpolation)
	}
	if err := l.array.Validate(); err != nil {
		return fmt.Errorf("LUT 3D content array issue: %w", err)
	}
	if l.array.NumComponents() != 3 {
		return ocio.ConfigErrorf("LUT 3D has an incorrect number of color components")
	}
	if l.array.Length() > MaxGridLength {
		return ocio.ConfigErrorf("LUT 3D length %d is not supported", l.array.Length())
	}
	return nil
}

// IsNoOp is always false: a 3D LUT clamps to its domain even when its
// content is an identity.
func (l *OpData) IsNoOp() bool { return false }

func (l *OpData) IsIdentity() bool {
	return l.array.IsIdentity(l.OutputBitDepth())
}

func (l *OpData) HasChannelCrosstalk() bool { return true }

// IdentityReplacement is the op an identity LUT can be swapped for: a range
// clamping to the LUT domain and converting between the recorded depths.
func (l *OpData) IdentityReplacement() ops.OpData {
	in, out := l.InputBitDepth(), l.OutputBitDepth()
	return ops.NewRange(in, out, nil, 0, in.MaxValue(), 0, out.MaxValue())
}

// HaveEqualBasics compares the grid content, the part of the state a LUT
// shares with its inverse. The recorded depths must be harmonized by the
// caller before the contents are comparable.
func (l *OpData) HaveEqualBasics(o *OpData) bool {
	return l.array.Equal(o.array)
}

// Equal reports whether the nodes are interchangeable: same depths,
// direction, interpolation and grid content. Metadata and the inversion
// quality are not compared.
func (l *OpData) Equal(o *OpData) bool {
	if l == o {
		return true
	}
	if !l.Base.Equal(&o.Base) {
		return false
	}
	if l.direction != o.direction || l.interpolation != o.interpolation {
		return false
	}
	return l.HaveEqualBasics(o)
}

func (l *OpData) Clone() *OpData {
	return &OpData{
		Base:          ops.NewBase(l.InputBitDepth(), l.OutputBitDepth(), l.Metadata()),
		array:         l.array.Clone(),
		direction:     l.direction,
		interpolation: l.interpolation,
		invQuality:    l.invQuality,
	}
}

// isInversePair reports whether an inverse-direction node undoes a forward
// one: identical grids once the depths the content is expressed in agree.
// When the forward output and inverse input maxima differ, the forward
// content is rescaled through a clone to harmonize them first.
func isInversePair(fwd, inv *OpData) bool {
	if fwd.OutputBitDepth().MaxValue() != inv.InputBitDepth().MaxValue() {
		// Quick fail on the array size.
		if fwd.array.NumValues() != inv.array.NumValues() {
			return false
		}
		scaled := fwd.Clone()
		if err := scaled.SetOutputBitDepth(inv.InputBitDepth()); err != nil {
			return false
		}
		return scaled.HaveEqualBasics(inv)
	}
	return fwd.HaveEqualBasics(inv)
}

// IsInverse reports whether o undoes l: one node forward, the other
// inverse, both holding the same grid up to depth scaling.
func (l *OpData) IsInverse(o *OpData) bool {
	if l.direction == ocio.ForwardTransformDirection && o.direction == ocio.InverseTransformDirection {
		return isInversePair(l, o)
	}
	if l.direction == ocio.InverseTransformDirection && o.direction == ocio.ForwardTransformDirection {
		return isInversePair(o, l)
	}
	return false
}

// Inverse returns the node mapping in the opposite direction: a clone with
// the direction flipped and the recorded depths swapped. The swap goes
// through the embedded Base setters, so the grid content is untouched.
// Metadata is carried over unchanged.
func (l *OpData) Inverse() *OpData {
	inv := l.Clone()
	if l.direction == ocio.ForwardTransformDirection {
		inv.direction = ocio.InverseTransformDirection
	} else {
		inv.direction = ocio.ForwardTransformDirection
	}
	in := l.InputBitDepth()
	inv.Base.SetInputBitDepth(l.OutputBitDepth())
	inv.Base.SetOutputBitDepth(in)
	return inv
}

// Finalize validates the node and computes the identifier evaluation
// pipelines cache renderers under: an MD5 of the raw grid bytes followed by
// the settings that change evaluation. The inversion quality is not
// included. Safe for concurrent use with CacheID.
func (l *OpData) Finalize() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.Validate(); err != nil {
		return err
	}
	values := l.array.Values()
	raw := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}
	digest := md5.Sum(raw)
	l.cacheID = fmt.Sprintf("%s %s %s %s %s", hex.EncodeToString(digest[:]),
		l.interpolation, l.direction, l.InputBitDepth(), l.OutputBitDepth())
	return nil
}

// CacheID returns the identifier computed by the last Finalize, or "" for a
// node that was never finalized.
func (l *OpData) CacheID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cacheID
}
