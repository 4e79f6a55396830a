package lut3d

import (
	"fmt"
	"math"
	"slices"

	ocio "github.com/IXgSoul/OpenColorIO"
	"github.com/IXgSoul/OpenColorIO/ops"
	"gonum.org/v1/gonum/mat"
)

var _ = fmt.Print

// Evaluator returns a transformer applying this node to RGB triplets.
// Inputs are expected in input-depth units and clamped to the node domain;
// outputs come back in output-depth units. Forward nodes interpolate the
// grid with the concrete interpolation; inverse nodes solve the grid
// backwards, either exactly or through a resampled forward approximation
// depending on the concrete inversion quality. Building the fast inverse
// temporarily overrides the node's inversion quality and restores it before
// returning. The transformer itself is safe for concurrent use.
func (l *OpData) Evaluator() (ops.ChannelTransformer, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if l.direction == ocio.InverseTransformDirection {
		if l.ConcreteInversionQuality() == ocio.ExactLutInversion {
			return new_exact_inverse_evaluator(l.array, l.OutputBitDepth().MaxValue())
		}
		fast, err := MakeFastFromInverse(l)
		if err != nil {
			return nil, err
		}
		return fast.Evaluator()
	}
	g := make_lut_grid(l.array, l.InputBitDepth().MaxValue())
	if l.ConcreteInterpolation() == ocio.TetrahedralInterpolation {
		return &tetrahedral_evaluator{g}, nil
	}
	return &trilinear_evaluator{g}, nil
}

func lerp(a, l, h float32) float32 { return l + (h-l)*a }

// clamp01 clamps to the unit interval; NaN lands on 0.
func clamp01(v float32) float32 {
	if v > 0 {
		return min(v, 1)
	}
	return 0
}

// lut_grid is the geometry the forward evaluators share: the flat samples,
// the index stride of a one-sample step along each axis, and the maximum
// input code value the domain is normalized by.
type lut_grid struct {
	values     []float32
	length     int
	sr, sg, sb int
	inMax      float32
}

func make_lut_grid(a *Array, inMax float64) lut_grid {
	L := a.Length()
	return lut_grid{
		values: a.Values(),
		length: L,
		sr:     3 * L * L,
		sg:     3 * L,
		sb:     3,
		inMax:  float32(inMax),
	}
}

// corner_span brackets one axis: the offsets of the two corner planes and
// the fractional position between them. At the domain top both offsets
// collapse onto the last plane.
type corner_span struct {
	lo, hi int
	f      float32
}

func (lt *lut_grid) span(v float32, stride int) corner_span {
	v = clamp01(v / lt.inMax)
	p := v * float32(lt.length-1)
	i := int(p)
	s := corner_span{lo: i * stride, f: p - float32(i)}
	s.hi = s.lo
	if v < 1 {
		s.hi += stride
	}
	return s
}

// trilinear_evaluator reads between the 8 corners of the enclosing cell
// with a cascade of linear interpolations: along red, then green, then
// blue.
type trilinear_evaluator struct {
	lut_grid
}

func (e *trilinear_evaluator) Transform(r, g, b float32) (float32, float32, float32) {
	if e.length == 1 {
		return e.values[0], e.values[1], e.values[2]
	}
	X := e.span(r, e.sr)
	Y := e.span(g, e.sg)
	Z := e.span(b, e.sb)
	v := e.values
	var out [3]float32
	for c := range 3 {
		d000 := v[X.lo+Y.lo+Z.lo+c]
		d001 := v[X.lo+Y.lo+Z.hi+c]
		d010 := v[X.lo+Y.hi+Z.lo+c]
		d011 := v[X.lo+Y.hi+Z.hi+c]
		d100 := v[X.hi+Y.lo+Z.lo+c]
		d101 := v[X.hi+Y.lo+Z.hi+c]
		d110 := v[X.hi+Y.hi+Z.lo+c]
		d111 := v[X.hi+Y.hi+Z.hi+c]

		dx00 := lerp(X.f, d000, d100)
		dx01 := lerp(X.f, d001, d101)
		dx10 := lerp(X.f, d010, d110)
		dx11 := lerp(X.f, d011, d111)

		dxy0 := lerp(Y.f, dx00, dx10)
		dxy1 := lerp(Y.f, dx01, dx11)

		out[c] = lerp(Z.f, dxy0, dxy1)
	}
	return out[0], out[1], out[2]
}

// tetrahedral_evaluator splits each cell into 6 tetrahedra along its main
// diagonal and interpolates within the one the fractional offsets select.
type tetrahedral_evaluator struct {
	lut_grid
}

func (e *tetrahedral_evaluator) Transform(r, g, b float32) (float32, float32, float32) {
	if e.length == 1 {
		return e.values[0], e.values[1], e.values[2]
	}
	X := e.span(r, e.sr)
	Y := e.span(g, e.sg)
	Z := e.span(b, e.sb)
	rx, ry, rz := X.f, Y.f, Z.f
	v := e.values

	i000 := X.lo + Y.lo + Z.lo
	i001 := X.lo + Y.lo + Z.hi
	i010 := X.lo + Y.hi + Z.lo
	i011 := X.lo + Y.hi + Z.hi
	i100 := X.hi + Y.lo + Z.lo
	i101 := X.hi + Y.lo + Z.hi
	i110 := X.hi + Y.hi + Z.lo
	i111 := X.hi + Y.hi + Z.hi

	var out [3]float32
	switch {
	case rx >= ry && ry >= rz:
		for c := range 3 {
			c0 := v[i000+c]
			c1 := v[i100+c] - c0
			c2 := v[i110+c] - v[i100+c]
			c3 := v[i111+c] - v[i110+c]
			out[c] = c0 + c1*rx + c2*ry + c3*rz
		}
	case rx >= rz && rz >= ry:
		for c := range 3 {
			c0 := v[i000+c]
			c1 := v[i100+c] - c0
			c2 := v[i111+c] - v[i101+c]
			c3 := v[i101+c] - v[i100+c]
			out[c] = c0 + c1*rx + c2*ry + c3*rz
		}
	case rz >= rx && rx >= ry:
		for c := range 3 {
			c0 := v[i000+c]
			c1 := v[i101+c] - v[i001+c]
			c2 := v[i111+c] - v[i101+c]
			c3 := v[i001+c] - c0
			out[c] = c0 + c1*rx + c2*ry + c3*rz
		}
	case ry >= rx && rx >= rz:
		for c := range 3 {
			c0 := v[i000+c]
			c1 := v[i110+c] - v[i010+c]
			c2 := v[i010+c] - c0
			c3 := v[i111+c] - v[i110+c]
			out[c] = c0 + c1*rx + c2*ry + c3*rz
		}
	case ry >= rz && rz >= rx:
		for c := range 3 {
			c0 := v[i000+c]
			c1 := v[i111+c] - v[i011+c]
			c2 := v[i010+c] - c0
			c3 := v[i011+c] - v[i010+c]
			out[c] = c0 + c1*rx + c2*ry + c3*rz
		}
	default:
		for c := range 3 {
			c0 := v[i000+c]
			c1 := v[i111+c] - v[i011+c]
			c2 := v[i011+c] - v[i001+c]
			c3 := v[i001+c] - c0
			out[c] = c0 + c1*rx + c2*ry + c3*rz
		}
	}
	return out[0], out[1], out[2]
}

const (
	max_newton_iterations  = 16
	max_inverse_candidates = 64
)

// value_box is an axis-aligned box in output space.
type value_box struct {
	lo, hi [3]float32
}

func (b *value_box) contains(p [3]float32) bool {
	return p[0] >= b.lo[0] && p[0] <= b.hi[0] &&
		p[1] >= b.lo[1] && p[1] <= b.hi[1] &&
		p[2] >= b.lo[2] && p[2] <= b.hi[2]
}

type inverse_solution struct {
	r, g, b  float32
	residual float64
}

// exact_inverse_evaluator solves the forward mapping backwards: given an
// output color it finds the grid coordinates whose trilinear forward
// interpolation reproduces it. Each grid cell registers the bounding box of
// its 8 corners in a uniform bucket grid over output space; a query scans
// the boxes containing the target and runs Newton iterations on the cell's
// trilinear function. Targets outside the representable range clamp to the
// reachable point with the smallest error.
type exact_inverse_evaluator struct {
	values []float32
	length int
	outMax float32

	ncells    int
	boxes     []value_box
	lo, hi    [3]float32
	bdim      int
	buckets   [][]int32
	acceptTol float64
}

func new_exact_inverse_evaluator(a *Array, outMax float64) (*exact_inverse_evaluator, error) {
	L := a.Length()
	if L < 2 {
		return nil, ocio.DomainErrorf("a LUT 3D grid of length %d cannot be inverted", L)
	}
	e := &exact_inverse_evaluator{
		values: a.Values(),
		length: L,
		outMax: float32(outMax),
		ncells: L - 1,
	}

	values := e.values
	e.lo = [3]float32{values[0], values[1], values[2]}
	e.hi = e.lo
	for i := 3; i < len(values); i += 3 {
		for c := range 3 {
			v := values[i+c]
			if v < e.lo[c] {
				e.lo[c] = v
			}
			if v > e.hi[c] {
				e.hi[c] = v
			}
		}
	}
	span := 0.0
	for c := range 3 {
		span = max(span, float64(e.hi[c]-e.lo[c]))
	}
	e.acceptTol = 1e-6 * max(1, span)
	pad := float32(e.acceptTol)

	nc := e.ncells
	e.boxes = make([]value_box, nc*nc*nc)
	for ci := range nc {
		for cj := range nc {
			for ck := range nc {
				o0 := ((ci*L+cj)*L + ck) * 3
				bx := value_box{lo: [3]float32{values[o0], values[o0+1], values[o0+2]}}
				bx.hi = bx.lo
				for corner := 1; corner < 8; corner++ {
					di, dj, dk := corner>>2&1, corner>>1&1, corner&1
					o := (((ci+di)*L+cj+dj)*L + ck + dk) * 3
					for c := range 3 {
						bx.lo[c] = min(bx.lo[c], values[o+c])
						bx.hi[c] = max(bx.hi[c], values[o+c])
					}
				}
				for c := range 3 {
					bx.lo[c] -= pad
					bx.hi[c] += pad
				}
				e.boxes[(ci*nc+cj)*nc+ck] = bx
			}
		}
	}

	e.bdim = min(max(nc, 2), 16)
	e.buckets = make([][]int32, e.bdim*e.bdim*e.bdim)
	for id := range e.boxes {
		bx := &e.boxes[id]
		xl, xh := e.slot(0, bx.lo[0]), e.slot(0, bx.hi[0])
		yl, yh := e.slot(1, bx.lo[1]), e.slot(1, bx.hi[1])
		zl, zh := e.slot(2, bx.lo[2]), e.slot(2, bx.hi[2])
		for x := xl; x <= xh; x++ {
			for y := yl; y <= yh; y++ {
				for z := zl; z <= zh; z++ {
					bi := (x*e.bdim+y)*e.bdim + z
					e.buckets[bi] = append(e.buckets[bi], int32(id))
				}
			}
		}
	}
	return e, nil
}

func (e *exact_inverse_evaluator) slot(c int, v float32) int {
	lo, hi := e.lo[c], e.hi[c]
	if hi <= lo {
		return 0
	}
	s := int(float64(v-lo) / float64(hi-lo) * float64(e.bdim))
	return max(0, min(s, e.bdim-1))
}

// clamp_into clamps v into [lo, hi]; NaN lands on the low bound.
func clamp_into(v, lo, hi float32) float32 {
	if !(v >= lo) {
		return lo
	}
	return min(v, hi)
}

func (e *exact_inverse_evaluator) Transform(r, g, b float32) (float32, float32, float32) {
	target := [3]float32{
		clamp_into(r, e.lo[0], e.hi[0]),
		clamp_into(g, e.lo[1], e.hi[1]),
		clamp_into(b, e.lo[2], e.hi[2]),
	}
	sx, sy, sz := e.slot(0, target[0]), e.slot(1, target[1]), e.slot(2, target[2])

	best := inverse_solution{residual: math.Inf(1)}
	var tried []int32

	// Every cell whose box contains the target registered in the target's
	// own bucket, so the containment scan never has to leave it.
	for _, cell := range e.buckets[(sx*e.bdim+sy)*e.bdim+sz] {
		if !e.boxes[cell].contains(target) {
			continue
		}
		tried = append(tried, cell)
		if sol := e.solve_cell(cell, target); sol.residual < best.residual {
			best = sol
			if best.residual <= e.acceptTol {
				return e.scaled(best)
			}
		}
	}

	// The target sits outside the representable range or in a fold of the
	// mapping. Walk the buckets outward and keep the reachable point with
	// the smallest error.
	stopRing := -1
	for ring := 0; ring < e.bdim && len(tried) < max_inverse_candidates; ring++ {
		if stopRing >= 0 && ring > stopRing {
			break
		}
		any := false
		e.ring_buckets(sx, sy, sz, ring, func(cells []int32) {
			for _, cell := range cells {
				if slices.Contains(tried, cell) {
					continue
				}
				tried = append(tried, cell)
				any = true
				if sol := e.solve_cell(cell, target); sol.residual < best.residual {
					best = sol
				}
			}
		})
		if any && stopRing < 0 {
			stopRing = ring + 1
		}
		if best.residual <= e.acceptTol {
			break
		}
	}
	return e.scaled(best)
}

func abs_int(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ring_buckets visits every bucket at exactly the given Chebyshev distance
// from the start slot.
func (e *exact_inverse_evaluator) ring_buckets(sx, sy, sz, ring int, visit func([]int32)) {
	for x := max(sx-ring, 0); x <= min(sx+ring, e.bdim-1); x++ {
		for y := max(sy-ring, 0); y <= min(sy+ring, e.bdim-1); y++ {
			for z := max(sz-ring, 0); z <= min(sz+ring, e.bdim-1); z++ {
				if max(abs_int(x-sx), abs_int(y-sy), abs_int(z-sz)) != ring {
					continue
				}
				visit(e.buckets[(x*e.bdim+y)*e.bdim+z])
			}
		}
	}
}

// trilinear_cell evaluates the cell's trilinear function at local
// coordinates (u, v, w) in [0,1]³. Corners are indexed di·4+dj·2+dk.
func trilinear_cell(c *[8][3]float64, u, v, w float64) [3]float64 {
	u1, v1, w1 := 1-u, 1-v, 1-w
	var out [3]float64
	for ch := range 3 {
		out[ch] = u1*v1*w1*c[0][ch] + u1*v1*w*c[1][ch] +
			u1*v*w1*c[2][ch] + u1*v*w*c[3][ch] +
			u*v1*w1*c[4][ch] + u*v1*w*c[5][ch] +
			u*v*w1*c[6][ch] + u*v*w*c[7][ch]
	}
	return out
}

func trilinear_cell_jacobian(c *[8][3]float64, u, v, w float64, jac *mat.Dense) {
	u1, v1, w1 := 1-u, 1-v, 1-w
	for ch := range 3 {
		du := v1*w1*(c[4][ch]-c[0][ch]) + v1*w*(c[5][ch]-c[1][ch]) +
			v*w1*(c[6][ch]-c[2][ch]) + v*w*(c[7][ch]-c[3][ch])
		dv := u1*w1*(c[2][ch]-c[0][ch]) + u1*w*(c[3][ch]-c[1][ch]) +
			u*w1*(c[6][ch]-c[4][ch]) + u*w*(c[7][ch]-c[5][ch])
		dw := u1*v1*(c[1][ch]-c[0][ch]) + u1*v*(c[3][ch]-c[2][ch]) +
			u*v1*(c[5][ch]-c[4][ch]) + u*v*(c[7][ch]-c[6][ch])
		jac.Set(ch, 0, du)
		jac.Set(ch, 1, dv)
		jac.Set(ch, 2, dw)
	}
}

func (e *exact_inverse_evaluator) load_corners(cell int32, c *[8][3]float64) (ci, cj, ck int) {
	nc := e.ncells
	ci = int(cell) / (nc * nc)
	cj = int(cell) / nc % nc
	ck = int(cell) % nc
	L := e.length
	for corner := range 8 {
		di, dj, dk := corner>>2&1, corner>>1&1, corner&1
		o := (((ci+di)*L+cj+dj)*L + ck + dk) * 3
		c[corner][0] = float64(e.values[o])
		c[corner][1] = float64(e.values[o+1])
		c[corner][2] = float64(e.values[o+2])
	}
	return ci, cj, ck
}

func clamp64(v, lo, hi float64) float64 { return max(lo, min(v, hi)) }

// solve_cell runs Newton iterations on one cell and returns the local
// solution clamped into the cell, with the residual of the clamped point.
// Iterates may wander half a cell outside while converging; the final
// answer never does.
func (e *exact_inverse_evaluator) solve_cell(cell int32, target [3]float32) inverse_solution {
	var corners [8][3]float64
	ci, cj, ck := e.load_corners(cell, &corners)

	tr, tg, tb := float64(target[0]), float64(target[1]), float64(target[2])
	u, v, w := 0.5, 0.5, 0.5
	jac := mat.NewDense(3, 3, nil)
	rhs := mat.NewVecDense(3, nil)
	var delta mat.VecDense
	for range max_newton_iterations {
		f := trilinear_cell(&corners, u, v, w)
		rx, ry, rz := f[0]-tr, f[1]-tg, f[2]-tb
		if max(math.Abs(rx), math.Abs(ry), math.Abs(rz)) <= 0.5*e.acceptTol {
			break
		}
		trilinear_cell_jacobian(&corners, u, v, w, jac)
		rhs.SetVec(0, rx)
		rhs.SetVec(1, ry)
		rhs.SetVec(2, rz)
		if err := delta.SolveVec(jac, rhs); err != nil {
			// Singular where the mapping is locally flat; fall through
			// to the clamped iterate.
			break
		}
		u = clamp64(u-delta.AtVec(0), -0.5, 1.5)
		v = clamp64(v-delta.AtVec(1), -0.5, 1.5)
		w = clamp64(w-delta.AtVec(2), -0.5, 1.5)
	}
	u, v, w = clamp64(u, 0, 1), clamp64(v, 0, 1), clamp64(w, 0, 1)
	f := trilinear_cell(&corners, u, v, w)

	m := float64(e.length - 1)
	return inverse_solution{
		r:        float32((float64(ci) + u) / m),
		g:        float32((float64(cj) + v) / m),
		b:        float32((float64(ck) + w) / m),
		residual: max(math.Abs(f[0]-tr), math.Abs(f[1]-tg), math.Abs(f[2]-tb)),
	}
}

func (e *exact_inverse_evaluator) scaled(s inverse_solution) (float32, float32, float32) {
	return s.r * e.outMax, s.g * e.outMax, s.b * e.outMax
}
