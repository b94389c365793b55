/*
DESCRIPTION
  mode.go implements the per-block trial coding used by rate-distortion
  mode decision: trialIBlock forward-transforms, quantizes and
  reconstructs a block as if it were intra coded; trialPBlock does the
  same against a motion-compensated predictor, including the small-
  residual shortcut and the post-quant all-zero safety net. Both
  report the reconstructed distortion (SSE) and an estimated RLE byte
  cost so the caller can weigh SKIP/INTER/INTRA candidates.

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

// modeSkip, modeInter, modeIntra and modeInterZero are the four
// per-macroblock coding modes a P frame emits.
const (
	modeSkip      = 0
	modeInter     = 1
	modeIntra     = 2
	modeInterZero = 3
)

// allZero64 reports whether every coefficient of a zig-zag-ordered
// block is zero.
func allZero64(zzq *[64]int16) bool {
	for _, v := range zzq {
		if v != 0 {
			return false
		}
	}
	return true
}

// makeCBP6 packs the six coded-block-pattern bits (Y0,Y1,Y2,Y3,U,V)
// from four luma and two chroma zig-zag blocks.
func makeCBP6(y *[4][64]int16, u, v *[64]int16) byte {
	var cbp byte
	for i := 0; i < 4; i++ {
		if !allZero64(&y[i]) {
			cbp |= 1 << uint(i)
		}
	}
	if !allZero64(u) {
		cbp |= 1 << 4
	}
	if !allZero64(v) {
		cbp |= 1 << 5
	}
	return cbp
}

// trialResult carries everything an RD mode decision needs out of a
// trial block encode.
type trialResult struct {
	zzq      [64]int16
	recon    [64]byte  // valid for trialIBlock
	add16    [64]int16 // valid for trialPBlock
	rleBytes int
	sse      int64
}

// trialIBlock forward-transforms, quantizes, RLE-cost-estimates and
// reconstructs an intra block of bwid x bhgt valid samples (padding
// beyond that, if any, is the caller's responsibility via fill before
// calling this on a full 8x8 source).
func trialIBlock(src []byte, stride int, q *[64]byte, w8 *[64]uint16, qp qualityParams, bwid, bhgt int) trialResult {
	var f [64]int32
	fdct8x8(src, stride, &f)

	var cq [64]int16
	cq[0] = quantDC(f[0], int16(q[0]))
	for i := 1; i < 64; i++ {
		cq[i] = quantACDeadzone(f[i], int16(q[i]), qp.dzNum, qp.dzDen)
	}

	var r trialResult
	for i := 0; i < 64; i++ {
		r.zzq[i] = cq[zigZag[i]]
	}
	var rq [64]int16
	for i := 0; i < 64; i++ {
		rq[zigZag[i]] = r.zzq[i]
	}
	idctDequantToU8(&rq, q, w8, r.recon[:], 8)
	r.rleBytes = rleLenEstimate(&r.zzq)

	for by := 0; by < bhgt; by++ {
		for bx := 0; bx < bwid; bx++ {
			d := int(src[by*stride+bx]) - int(r.recon[by*8+bx])
			r.sse += int64(d) * int64(d)
		}
	}
	return r
}

// trialPBlock forward-transforms, quantizes and RLE-cost-estimates a
// residual block between cur and pred. If the peak absolute residual
// over the valid bwid x bhgt region is within the small-residual
// threshold (1 for luma, 2 for chroma), the block is coded all-zero
// directly without running the transform. After quantizing, a second
// safety net zeroes the whole block when the AC energy and DC
// magnitude are both negligible, since a residual that small is
// cheaper to drop than to RLE-code.
func trialPBlock(cur []byte, cstride int, pred []byte, pstride int, q *[64]byte, w8 *[64]uint16, qp qualityParams, isLuma bool, bwid, bhgt int) trialResult {
	smallTH := 2
	if isLuma {
		smallTH = 1
	}

	var resid [64]int16
	maxAbs := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			v := 0
			if y < bhgt && x < bwid {
				d := int(cur[y*cstride+x]) - int(pred[y*pstride+x])
				v = d
				if ad := absInt(d); ad > maxAbs {
					maxAbs = ad
				}
			}
			resid[y*8+x] = int16(v)
		}
	}

	var r trialResult
	if maxAbs <= smallTH {
		r.rleBytes = 5
		for by := 0; by < bhgt; by++ {
			for bx := 0; bx < bwid; bx++ {
				d := int(resid[by*8+bx])
				r.sse += int64(d) * int64(d)
			}
		}
		return r
	}

	var f [64]int32
	fdct8x8s16(resid[:], 8, &f)

	var cq [64]int16
	cq[0] = quantDC(f[0], int16(q[0]))
	for i := 1; i < 64; i++ {
		cq[i] = quantACDeadzone(f[i], int16(q[i]), qp.dzNum, qp.dzDen)
	}

	sumAC := 0
	for i := 1; i < 64; i++ {
		sumAC += absInt(int(cq[i]))
		if sumAC > 2 {
			break
		}
	}
	dcAbs := absInt(int(cq[0]))
	if sumAC <= 2 && dcAbs <= 1 {
		for i := range cq {
			cq[i] = 0
		}
	}

	for i := 0; i < 64; i++ {
		r.zzq[i] = cq[zigZag[i]]
	}
	r.rleBytes = rleLenEstimate(&r.zzq)

	var rq [64]int16
	for i := 0; i < 64; i++ {
		rq[zigZag[i]] = r.zzq[i]
	}
	idctDequantToS16(&rq, q, w8, r.add16[:], 8)

	for by := 0; by < bhgt; by++ {
		for bx := 0; bx < bwid; bx++ {
			idx := by*8 + bx
			d := int(resid[idx]) - int(r.add16[idx])
			r.sse += int64(d) * int64(d)
		}
	}
	return r
}

// fdct8x8s16 is fdct8x8's counterpart over signed 16-bit residual
// samples, used for inter-block trial coding.
func fdct8x8s16(src []int16, stride int, f *[64]int32) {
	var tmp [64]int32
	for y := 0; y < 8; y++ {
		var r [8]int32
		for x := 0; x < 8; x++ {
			r[x] = int32(src[y*stride+x])
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
