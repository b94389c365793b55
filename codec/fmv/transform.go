/*
DESCRIPTION
  transform.go implements the 8x8 integer DCT/IDCT pair, the
  perceptual post-transform weighting window, and the quantizer
  table construction and application used by both the encoder and
  decoder. All transform arithmetic is fixed point: the separable
  cosine matrix is scaled by 1<<cosShift and every matrix-vector
  product rounds by adding half a unit before shifting back down.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package fmv

const cosShift = 14

// c8 is the separable 8-point DCT-II basis, scaled by 1<<cosShift.
var c8 = [8][8]int32{
	{5793, 5793, 5793, 5793, 5793, 5793, 5793, 5793},
	{8035, 6811, 4551, 1598, -1598, -4551, -6811, -8035},
	{7568, 3135, -3135, -7568, -7568, -3135, 3135, 7568},
	{6811, -1598, -8035, -4551, 4551, 8035, 1598, -6811},
	{5793, -5793, -5793, 5793, 5793, -5793, -5793, 5793},
	{4551, -8035, 1598, 6811, -6811, -1598, 8035, -4551},
	{3135, -7568, 7568, -3135, -3135, 7568, -7568, 3135},
	{1598, -4551, 6811, -8035, 8035, -6811, 4551, -1598},
}

// zigZag is the 8x8 frequency scan order used by the entropy coder.
var zigZag = [64]byte{
	0, 1, 8, 16, 9, 2, 3, 10, 17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34, 27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36, 29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46, 53, 60, 61, 54, 47, 55, 62, 63,
}

// baseQY and baseQC are JPEG-style luminance and chrominance step
// tables in natural (row-major) order, the starting point every
// quality preset reshapes.
var baseQY = [64]byte{
	8, 16, 19, 22, 26, 27, 29, 34, 16, 16, 22, 24, 27, 29, 34, 37,
	19, 22, 26, 27, 29, 34, 34, 38, 22, 22, 26, 27, 29, 34, 37, 40,
	22, 26, 27, 29, 32, 35, 40, 48, 26, 27, 29, 32, 35, 40, 48, 58,
	26, 27, 29, 34, 38, 46, 56, 69, 27, 29, 35, 38, 46, 56, 69, 83,
}

var baseQC = [64]byte{
	16, 17, 18, 19, 20, 21, 22, 24, 17, 18, 19, 20, 21, 22, 24, 25,
	18, 19, 20, 21, 22, 24, 25, 27, 19, 20, 21, 22, 24, 25, 27, 28,
	20, 21, 22, 24, 25, 27, 28, 30, 21, 22, 24, 25, 27, 28, 30, 32,
	22, 24, 25, 27, 28, 30, 32, 35, 24, 25, 27, 28, 30, 32, 35, 38,
}

// buildWindow returns the post-transform perceptual weight applied to
// every coefficient before reconstruction. Low frequencies pass
// through unweighted; mid and high bands are progressively softened,
// and high-band coefficients in the last two rows or columns are
// softened again.
func buildWindow() [64]uint16 {
	const (
		shift = 8
		soft  = 240
		mid   = 212
		high  = 190
		xhi   = 176
	)
	var w [64]uint16
	for v := 0; v < 8; v++ {
		for u := 0; u < 8; u++ {
			idx := v*8 + u
			s := u + v
			val := 256
			switch {
			case u == 0 && v == 0, s <= 2:
				val = 256
			case s <= 4:
				val = soft
			case s <= 6:
				val = mid
			default:
				val = high
				if u >= 6 || v >= 6 {
					val = (val*xhi + (1 << (shift - 1))) >> shift
				}
			}
			w[idx] = uint16(val)
		}
	}
	return w
}

// reshapeQuantOne rescales one base table by the edge and
// high-frequency ratios, leaving the DC entry untouched for the
// caller to scale separately.
func reshapeQuantOne(dst *[64]byte, src *[64]byte, edgeNum, edgeDen, hfNum, hfDen int) {
	for i := 0; i < 64; i++ {
		u, v := i&7, i>>3
		s := u + v
		q := int(src[i])
		if i == 0 {
			dst[i] = byte(q)
			continue
		}
		switch {
		case s <= 2:
			q = (q*edgeNum + edgeDen/2) / edgeDen
			if q < 1 {
				q = 1
			}
		case s >= 8 || u >= 6 || v >= 6:
			q = (q*hfNum + hfDen/2) / hfDen
			if q > 255 {
				q = 255
			}
		}
		dst[i] = byte(q)
	}
}

// buildQuants derives the luma and chroma quantizer step tables for a
// preset: reshape by edge/HF ratio, then scale DC and AC independently.
func buildQuants(q qualityParams) (qy, qc [64]byte) {
	qy, qc = baseQY, baseQC
	reshapeQuantOne(&qy, &baseQY, q.edgeNum, q.edgeDen, q.hfYNum, q.hfYDen)
	reshapeQuantOne(&qc, &baseQC, q.edgeNum, q.edgeDen, q.hfCNum, q.hfCDen)

	dcy := scaleClamp(int(qy[0]), q.dcYNum, q.dcYDen)
	qy[0] = byte(dcy)
	dcc := scaleClamp(int(qc[0]), q.dcCNum, q.dcCDen)
	qc[0] = byte(dcc)

	for i := 1; i < 64; i++ {
		qy[i] = byte(scaleClamp(int(qy[i]), q.acYNum, q.acYDen))
		qc[i] = byte(scaleClamp(int(qc[i]), q.acCNum, q.acCDen))
	}
	return qy, qc
}

// scaleClamp scales v by num/den with round-to-nearest and clamps the
// result to [1,255], the valid range for a single-byte quant step.
func scaleClamp(v, num, den int) int {
	v = (v*num + den/2) / den
	if v < 1 {
		v = 1
	} else if v > 255 {
		v = 255
	}
	return v
}

// divRoundQ performs a rounded division of t by qstep, preserving
// sign by rounding away from zero symmetrically.
func divRoundQ(t int32, qstep int16) int16 {
	d := int32(qstep)
	if d <= 0 {
		d = 1
	}
	if t >= 0 {
		return int16((t + d/2) / d)
	}
	return int16(-((-t + d/2) / d))
}

// quantDC quantizes a DC coefficient with plain rounding; DC carries
// no dead zone since every block contributes one.
func quantDC(f int32, qstep int16) int16 {
	return divRoundQ(f, qstep)
}

// quantACDeadzone quantizes an AC coefficient with a dead zone sized
// by dzNum/dzDen of the step; coefficients inside the zone round to
// zero rather than to the nearest (possibly nonzero) level.
func quantACDeadzone(f int32, qstep int16, dzNum, dzDen int) int16 {
	a := f
	if a < 0 {
		a = -a
	}
	t0 := (int32(qstep)*int32(dzNum) + int32(dzDen)) / (2 * int32(dzDen))
	if a <= t0 {
		return 0
	}
	return divRoundQ(f, qstep)
}

// postWeight applies the perceptual window to a coefficient block in
// place. It runs only on reconstruction, identically in the encoder's
// local reconstruction and in the decoder, so both stay in step. The
// forward path applies no matching pre-weight, so coefficients whose
// weight is below 256 reconstruct attenuated.
func postWeight(f *[64]int32, w *[64]uint16) {
	const shift = 8
	for i := range f {
		t := int64(f[i]) * int64(w[i])
		f[i] = int32((t + (1 << (shift - 1))) >> shift)
	}
}

// fdct8x8 computes the forward 8x8 DCT of an 8-bit block of the given
// stride, centering samples on zero before transforming.
func fdct8x8(src []byte, stride int, f *[64]int32) {
	var tmp [64]int32
	for y := 0; y < 8; y++ {
		var r [8]int32
		for x := 0; x < 8; x++ {
			r[x] = int32(src[y*stride+x]) - 128
		}
		for u := 0; u < 8; u++ {
			var s int64
			for x := 0; x < 8; x++ {
				s += int64(c8[u][x]) * int64(r[x])
			}
			tmp[y*8+u] = int32((s + (1 << (cosShift - 1))) >> cosShift)
		}
	}
	for u := 0; u < 8; u++ {
		for v := 0; v < 8; v++ {
			var s int64
			for y := 0; y < 8; y++ {
				s += int64(c8[v][y]) * int64(tmp[y*8+u])
			}
			f[v*8+u] = int32((s + (1 << (cosShift - 1))) >> cosShift)
		}
	}
}

// idctDequantToU8 dequantizes qcoef against Q, applies the perceptual
// window, inverse-transforms, and writes the clamped 8-bit result
// into dst at the given stride. Used for intra reconstruction.
func idctDequantToU8(qcoef *[64]int16, q *[64]byte, w *[64]uint16, dst []byte, stride int) {
	var f [64]int32
	for i := range f {
		f[i] = int32(qcoef[i]) * int32(q[i])
	}
	postWeight(&f, w)
	idctCore(&f, func(y, x int, v int32) {
		dst[y*stride+x] = clampByte(int(v) + 128)
	})
}

// idctDequantToS16 is idctDequantToU8's counterpart for inter
// prediction, where the IDCT output is a residual to be added to a
// motion-compensated predictor rather than a standalone sample.
func idctDequantToS16(qcoef *[64]int16, q *[64]byte, w *[64]uint16, dst []int16, dstride int) {
	var f [64]int32
	for i := range f {
		f[i] = int32(qcoef[i]) * int32(q[i])
	}
	postWeight(&f, w)
	idctCore(&f, func(y, x int, v int32) {
		dst[y*dstride+x] = int16(v)
	})
}

// idctCore runs the separable inverse DCT over f and invokes store
// for each of the 64 output samples, before any clamping or residual
// addition the two callers apply differently.
func idctCore(f *[64]int32, store func(y, x int, v int32)) {
	var tmp [64]int32
	for y := 0; y < 8; y++ {
		for u := 0; u < 8; u++ {
			var s int64
			for v := 0; v < 8; v++ {
				s += int64(c8[v][y]) * int64(f[v*8+u])
			}
			tmp[y*8+u] = int32((s + (1 << (cosShift - 1))) >> cosShift)
		}
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			var s int64
			for u := 0; u < 8; u++ {
				s += int64(c8[u][x]) * int64(tmp[y*8+u])
			}
			v := int32((s + (1 << (cosShift - 1))) >> cosShift)
			store(y, x, v)
		}
	}
}
