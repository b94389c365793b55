/*
DESCRIPTION
  filter.go implements the two in-loop reconstruction filters applied
  after every frame is decoded (both at the encoder, to match what the
  decoder will see, and at the decoder itself): an adaptive deblocking
  filter across the 8x8 transform grid, and a luma-only deringing
  filter that smooths isolated outliers in near-flat regions.

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

// deblockPlane filters every internal 8-pixel grid line of img,
// first all vertical edges left to right, then all horizontal edges
// top to bottom, each pass operating on the previous pass's output.
// isChroma tightens the edge floor and caps the correction step,
// since chroma blocking is both less visible and easier to oversmooth.
// A plane narrower or shorter than 16 pixels is left unfiltered.
func deblockPlane(img *plane, isChroma bool) {
	if img.w < 16 || img.h < 16 {
		return
	}
	stepCap, edgeFloor := 6, 1
	if isChroma {
		stepCap, edgeFloor = 3, 2
	}

	for x := 8; x < img.w; x += 8 {
		i := x - 1
		for y := 0; y < img.h; y++ {
			deblockEdge(img, isChroma, stepCap, edgeFloor,
				func(k int) int { return int(img.at(i+k, y)) },
				func(k int, v byte) { img.set(i+k, y, v) })
		}
	}

	for yb := 8; yb < img.h; yb += 8 {
		j := yb - 1
		for x := 0; x < img.w; x++ {
			deblockEdge(img, isChroma, stepCap, edgeFloor,
				func(k int) int { return int(img.at(x, j+k)) },
				func(k int, v byte) { img.set(x, j+k, v) })
		}
	}
}

// deblockEdge filters one pixel line across a single 8-pixel grid
// boundary. sample(k) reads the pixel k steps from the boundary
// (k=-2..3, boundary between k=0 and k=1); store(k,v) writes it back.
func deblockEdge(img *plane, isChroma bool, stepCap, edgeFloor int, sample func(int) int, store func(int, byte)) {
	p2, p1, p0 := sample(-2), sample(-1), sample(0)
	q0, q1, q2 := sample(1), sample(2), sample(3)

	g := absInt(p0 - q0)
	rL := maxInt(absInt(p2-p1), absInt(p1-p0))
	rR := maxInt(absInt(q2-q1), absInt(q1-q0))
	flat := maxInt(rL, rR)

	if g <= edgeFloor || g <= flat {
		return
	}

	a := (p1 + 3*p0 + 3*q0 + q1 + 4) >> 3
	dp, dq := a-p0, a-q0

	wgt := clampInt(g-flat, 0, 12)
	step := clampInt((wgt+1)>>1, 0, stepCap)
	dp = clampInt(dp, -step, step)
	dq = clampInt(dq, -step, step)

	p0n := clampByte(p0 + dp)
	q0n := clampByte(q0 + dq)
	store(0, p0n)
	store(1, q0n)

	if isChroma {
		return
	}
	flat2 := maxInt(absInt(p2-p1), absInt(q2-q1))
	if flat2 > 3 {
		return
	}
	adj := (step + 1) >> 1
	tL := clampInt((p2+int(p0n))>>1-p1, -adj, adj)
	tR := clampInt((q2+int(q0n))>>1-q1, -adj, adj)
	store(-1, clampByte(p1+tL))
	store(2, clampByte(q1+tR))
}

// deringLuma smooths isolated single-pixel ringing artifacts in
// near-flat 4-neighborhoods: a pixel moves at most one level toward
// the neighborhood average, and only when it already sits at or
// beyond the neighborhood's extremes.
func deringLuma(y *plane) {
	if y.w < 3 || y.h < 3 {
		return
	}
	const flatTH = 24
	const extMargin = 1
	for yy := 1; yy < y.h-1; yy++ {
		for xx := 1; xx < y.w-1; xx++ {
			n := int(y.at(xx, yy-1))
			s := int(y.at(xx, yy+1))
			w := int(y.at(xx-1, yy))
			e := int(y.at(xx+1, yy))
			lo := minInt(minInt(n, s), minInt(w, e))
			hi := maxInt(maxInt(n, s), maxInt(w, e))
			if hi-lo > flatTH {
				continue
			}
			avg := (n + s + w + e + 2) >> 2
			px := int(y.at(xx, yy))
			d := avg - px
			switch {
			case d >= 2:
				d = 1
			case d <= -2:
				d = -1
			default:
				d = 0
			}
			if d != 0 && !(px <= lo+extMargin || px >= hi-extMargin) {
				d = 0
			}
			if d != 0 {
				y.set(xx, yy, byte(px+d))
			}
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
