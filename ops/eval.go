package ops

import (
	ocio "github.com/IXgSoul/OpenColorIO"
	"github.com/kovidgoyal/go-parallel"
)

// ChannelTransformer maps one RGB triplet to another. Implementations must
// be safe for concurrent Transform calls as the evaluator fans triplets out
// over all cores.
type ChannelTransformer interface {
	Transform(r, g, b float32) (float32, float32, float32)
}

// Scale multiplies every channel by a constant factor. It is the glue
// between differently scaled stages of a chain: depth units in, normalized
// units through the interpolation, depth units out.
type Scale struct {
	factor float32
}

func NewScale(factor float64) *Scale { return &Scale{factor: float32(factor)} }

func (s *Scale) Transform(r, g, b float32) (float32, float32, float32) {
	return r * s.factor, g * s.factor, b * s.factor
}

// EvalTriplets runs every RGB triplet of src through the chain in order and
// writes the results to dst. dst and src must have the same length, a
// multiple of 3. They may be the same slice: triplets are independent, each
// one is read in full before being written.
func EvalTriplets(dst, src []float32, chain ...ChannelTransformer) error {
	if len(dst) != len(src) {
		return ocio.DomainErrorf("destination size %d does not match source size %d", len(dst), len(src))
	}
	if len(src)%3 != 0 {
		return ocio.DomainErrorf("buffer size %d is not a multiple of 3", len(src))
	}
	f := func(start, limit int) {
		for i := start; i < limit; i++ {
			o := 3 * i
			r, g, b := src[o], src[o+1], src[o+2]
			for _, tr := range chain {
				r, g, b = tr.Transform(r, g, b)
			}
			dst[o], dst[o+1], dst[o+2] = r, g, b
		}
	}
	return parallel.Run_in_parallel_over_range(0, f, 0, len(src)/3)
}
