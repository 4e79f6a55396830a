package ocio

// TransformDirection states whether a node applies its stored mapping as-is
// or as the functional inverse of that mapping.
type TransformDirection int

const (
	ForwardTransformDirection TransformDirection = iota
	InverseTransformDirection
)

func (d TransformDirection) String() string {
	if d == InverseTransformDirection {
		return "inverse"
	}
	return "forward"
}

// Interpolation is the requested method for reading between grid samples.
// Not every request is honored literally: nodes resolve a request to the
// concrete algorithm they actually run, see the node's concrete
// interpolation accessor.
type Interpolation int

const (
	UnknownInterpolation Interpolation = iota
	NearestInterpolation
	LinearInterpolation
	TetrahedralInterpolation
	CubicInterpolation
	DefaultInterpolation
	BestInterpolation
)

var interpolationNames = map[Interpolation]string{
	UnknownInterpolation:     "unknown",
	NearestInterpolation:     "nearest",
	LinearInterpolation:      "linear",
	TetrahedralInterpolation: "tetrahedral",
	CubicInterpolation:       "cubic",
	DefaultInterpolation:     "default",
	BestInterpolation:        "best",
}

func (i Interpolation) String() string { return interpolationNames[i] }

// LutInversionQuality selects how an inverse-direction LUT is evaluated:
// exact inversion solves the forward mapping numerically for every color,
// fast inversion resamples the exact inverse onto a forward grid once and
// interpolates it from then on.
type LutInversionQuality int

const (
	ExactLutInversion LutInversionQuality = iota
	FastLutInversion
	DefaultLutInversion
	BestLutInversion
)

var lutInversionNames = map[LutInversionQuality]string{
	ExactLutInversion:   "exact",
	FastLutInversion:    "fast",
	DefaultLutInversion: "default",
	BestLutInversion:    "best",
}

func (q LutInversionQuality) String() string { return lutInversionNames[q] }
