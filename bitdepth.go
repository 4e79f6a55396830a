package ocio

// BitDepth identifies the unit of image data a transform node reads or
// writes. A depth does not change how values are stored (always float32);
// it records the nominal encoding so that grid contents can be rescaled
// when the depth on either side of a node changes.
type BitDepth int

const (
	UnknownBitDepth BitDepth = iota
	Uint8BitDepth
	Uint10BitDepth
	Uint12BitDepth
	Uint14BitDepth
	Uint16BitDepth
	Uint32BitDepth
	F16BitDepth
	F32BitDepth
)

var bitDepthNames = map[BitDepth]string{
	UnknownBitDepth: "unknown",
	Uint8BitDepth:   "8ui",
	Uint10BitDepth:  "10ui",
	Uint12BitDepth:  "12ui",
	Uint14BitDepth:  "14ui",
	Uint16BitDepth:  "16ui",
	Uint32BitDepth:  "32ui",
	F16BitDepth:     "16f",
	F32BitDepth:     "32f",
}

var bitDepthMaxValues = map[BitDepth]float64{
	Uint8BitDepth:  255,
	Uint10BitDepth: 1023,
	Uint12BitDepth: 4095,
	Uint14BitDepth: 16383,
	Uint16BitDepth: 65535,
	Uint32BitDepth: 4294967295,
	F16BitDepth:    1,
	F32BitDepth:    1,
}

func (b BitDepth) String() string { return bitDepthNames[b] }

// MaxValue is the largest code value of the depth: 2^bits - 1 for integer
// depths, 1.0 for float depths. Zero for UnknownBitDepth, which validation
// rejects before any scaling arithmetic can reach it.
func (b BitDepth) MaxValue() float64 { return bitDepthMaxValues[b] }

func (b BitDepth) IsFloat() bool {
	return b == F16BitDepth || b == F32BitDepth
}
