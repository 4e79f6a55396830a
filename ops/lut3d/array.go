// Package lut3d implements the 3D LUT transform node: cubic grid storage,
// bit-depth aware rescaling, trilinear and tetrahedral evaluation, numeric
// inversion, and functional composition of two LUTs into one.
package lut3d

import (
	"slices"

	ocio "github.com/IXgSoul/OpenColorIO"
)

// MaxGridLength is the largest supported grid edge length. 129 allows for a
// MESH dimension of 7 in the 3dl file format.
const MaxGridLength = 129

// identity_abs_tolerance is the fixed absolute tolerance identity detection
// uses, independent of the bit depth the content is expressed in.
const identity_abs_tolerance = 1e-4

// Array owns the samples of a 3D LUT: length³ RGB triplets in a flat
// float32 slice. Channels vary most rapidly, then the blue grid index, then
// green, then red, so the triplet for grid coordinate (r, g, b) starts at
// ((r·length+g)·length+b)·3.
type Array struct {
	length   int
	channels int
	values   []float32
}

// NewArray builds a grid of the given edge length holding the identity
// mapping expressed in outDepth units.
func NewArray(length int, outDepth ocio.BitDepth) (*Array, error) {
	a := &Array{}
	if err := a.Resize(length, 3); err != nil {
		return nil, err
	}
	a.Fill(outDepth)
	return a, nil
}

// Resize reallocates the grid, dropping previous content. The new values
// are all zero; use Fill to restore an identity.
func (a *Array) Resize(length, channels int) error {
	if length < 0 {
		return ocio.DomainErrorf("LUT 3D: grid size '%d' must not be negative", length)
	}
	if length > MaxGridLength {
		return ocio.DomainErrorf("LUT 3D: grid size '%d' must not be greater than '%d'", length, MaxGridLength)
	}
	a.length = length
	a.channels = channels
	a.values = make([]float32, length*length*length*channels)
	return nil
}

func (a *Array) Length() int        { return a.length }
func (a *Array) NumComponents() int { return a.channels }

// NumValues is the number of floats the dimensions call for, which Validate
// compares against the actual content size.
func (a *Array) NumValues() int { return a.length * a.length * a.length * a.channels }

// Values exposes the flat sample storage for direct reads and writes.
func (a *Array) Values() []float32 { return a.values }

func identity_step(length int, outDepth ocio.BitDepth) float32 {
	if length < 2 {
		return 0
	}
	return float32(outDepth.MaxValue()) / float32(length-1)
}

// Fill writes the identity mapping in outDepth units: the triplet at grid
// coordinate (r, g, b) becomes (r, g, b) times the grid step.
func (a *Array) Fill(outDepth ocio.BitDepth) {
	step := identity_step(a.length, outDepth)
	n := a.length * a.length * a.length
	for idx := range n {
		a.values[a.channels*idx+0] = float32(idx/a.length/a.length%a.length) * step
		a.values[a.channels*idx+1] = float32(idx/a.length%a.length) * step
		a.values[a.channels*idx+2] = float32(idx%a.length) * step
	}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func equal_with_abs_error(x1, x2, e float32) bool {
	return abs32(x1-x2) <= e
}

// IsIdentity reports whether every sample sits where Fill(outDepth) would
// put it, within a fixed absolute tolerance of 1e-4.
func (a *Array) IsIdentity(outDepth ocio.BitDepth) bool {
	step := identity_step(a.length, outDepth)
	n := a.length * a.length * a.length
	for idx := range n {
		if !equal_with_abs_error(a.values[a.channels*idx+0],
			float32(idx/a.length/a.length%a.length)*step, identity_abs_tolerance) {
			return false
		}
		if !equal_with_abs_error(a.values[a.channels*idx+1],
			float32(idx/a.length%a.length)*step, identity_abs_tolerance) {
			return false
		}
		if !equal_with_abs_error(a.values[a.channels*idx+2],
			float32(idx%a.length)*step, identity_abs_tolerance) {
			return false
		}
	}
	return true
}

func (a *Array) GetRGB(i, j, k int) (r, g, b float32) {
	o := ((i*a.length+j)*a.length + k) * a.channels
	return a.values[o], a.values[o+1], a.values[o+2]
}

func (a *Array) SetRGB(i, j, k int, r, g, b float32) {
	o := ((i*a.length+j)*a.length + k) * a.channels
	a.values[o], a.values[o+1], a.values[o+2] = r, g, b
}

// Scale multiplies every sample by factor. A factor of exactly 1 leaves the
// content bit-identical.
func (a *Array) Scale(factor float32) {
	if factor == 1 {
		return
	}
	for i := range a.values {
		a.values[i] *= factor
	}
}

func (a *Array) Validate() error {
	if a.NumValues() == 0 {
		return ocio.DomainErrorf("LUT 3D array does not contain any values")
	}
	if len(a.values) != a.NumValues() {
		return ocio.DomainErrorf("LUT 3D array content of %d values does not match its dimensions (%d values expected)",
			len(a.values), a.NumValues())
	}
	return nil
}

// Equal compares dimensions and content exactly, element by element.
func (a *Array) Equal(o *Array) bool {
	if a.length != o.length || a.channels != o.channels {
		return false
	}
	return slices.Equal(a.values, o.values)
}

func (a *Array) Clone() *Array {
	return &Array{length: a.length, channels: a.channels, values: slices.Clone(a.values)}
}
