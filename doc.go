/*
Package ocio provides color transform nodes for building color management
pipelines, centered on three-dimensional lookup tables (3D LUTs).

A 3D LUT samples an arbitrary color mapping on a cubic grid and reproduces it
by interpolation. The ops/lut3d package holds the grid storage and the
transform node itself: construction at any supported grid size, bit-depth
aware rescaling, validation, equality and inverse semantics, composition of
two LUTs into one, and baking of a fast forward approximation of an inverse
LUT. The ops package carries the pieces shared by every node kind: recorded
bit depths, descriptive metadata, and a small evaluator that runs colors
through a chain of per-triplet transformers.

This package defines the vocabulary used throughout: bit depths, transform
directions, interpolation choices, LUT inversion styles, and the error types
grid-level and node-level failures are reported with.
*/
package ocio

import "fmt"

type OCIOVersion struct {
	Major, Minor, Patch uint
}

func (v OCIOVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v OCIOVersion) Equal(o OCIOVersion) bool {
	return v.Major == o.Major && v.Minor == o.Minor && v.Patch == o.Patch
}

func (v OCIOVersion) After(o OCIOVersion) bool {
	switch {
	case v.Major == o.Major:
		switch {
		case v.Minor == o.Minor:
			return v.Patch > o.Patch
		case v.Minor > o.Minor:
			return true
		case v.Minor < o.Minor:
			return false
		}
	case v.Major > o.Major:
		return true
	case v.Major < o.Major:
		return false
	}
	return false
}

func (v OCIOVersion) Before(o OCIOVersion) bool {
	return !v.Equal(o) && !v.After(o)
}

var Version = OCIOVersion{2, 0, 0}
