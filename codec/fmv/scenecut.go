/*
DESCRIPTION
  scenecut.go implements the scene-cut detector that forces an I frame
  when the incoming picture diverges too far from the last
  reconstructed reference: a quarter-resolution shifted SAD search
  bounds small pans, and a 32-bin luma histogram L1 distance catches
  content changes a shift search would miss (lighting cuts, overlays).

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

import "math"

const (
	cutMinGap     = 10
	cutShiftRad   = 2
	cutHistOnly   = 3500
	cutSADHi      = 26
	cutSADMid     = 18
	cutHistMid    = 1500
)

// cutDetector tracks the state the scene-cut rule needs across calls:
// how many frames have elapsed since the last forced I frame, and the
// most recent diagnostic measurements (exposed for statistics).
type cutDetector struct {
	framesSinceI int
	lastSADPerPx int
	lastHistL1   int
}

// sadPlaneShifted sums absolute differences between a and b with b
// shifted by (dx,dy), rows clamped vertically and samples clamped
// horizontally, returning early once the sum reaches cutoff.
func sadPlaneShifted(a, b *plane, dx, dy int, cutoff int64) int64 {
	w, h := a.w, a.h
	var s int64
	for y := 0; y < h; y++ {
		yb := y + dy
		if yb < 0 {
			yb = 0
		} else if yb >= h {
			yb = h - 1
		}
		for x := 0; x < w; x++ {
			xb := x + dx
			if xb < 0 {
				xb = 0
			} else if xb >= w {
				xb = w - 1
			}
			d := int64(a.at(x, y)) - int64(b.at(xb, yb))
			if d < 0 {
				d = -d
			}
			s += d
		}
		if s >= cutoff {
			return s
		}
	}
	return s
}

// hist32Luma bins every sample of img into one of 32 buckets by its
// top 5 bits.
func hist32Luma(img *plane) [32]uint32 {
	var h [32]uint32
	for _, p := range img.pix {
		h[p>>3]++
	}
	return h
}

// shouldEmitIFrame decides whether the upcoming frame should be coded
// as an I frame: always true for the first frame, always false inside
// the post-cut warm-up window, and otherwise driven by the combined
// shift-SAD / histogram-L1 rule. cur and ref are full-resolution luma
// planes; y2/r2/y4/r4 are scratch planes reused across calls by the
// caller for the half- and quarter-resolution pyramid.
func (c *cutDetector) shouldEmitIFrame(fidx int, cur, ref, y2, r2, y4, r4 *plane) bool {
	if fidx == 0 {
		return true
	}
	if c.framesSinceI < cutMinGap {
		c.lastSADPerPx = 0
		c.lastHistL1 = 0
		return false
	}
	w4, h4 := cur.w>>2, cur.h>>2
	if w4 < 4 || h4 < 4 {
		return false
	}
	y2.copyFrom(down2Box(cur))
	y4.copyFrom(down2Box(y2))
	r2.copyFrom(down2Box(ref))
	r4.copyFrom(down2Box(r2))

	best := int64(math.MaxInt64)
	for dy := -cutShiftRad; dy <= cutShiftRad; dy++ {
		for dx := -cutShiftRad; dx <= cutShiftRad; dx++ {
			s := sadPlaneShifted(y4, r4, dx, dy, best)
			if s < best {
				best = s
			}
		}
	}
	n := int64(w4) * int64(h4)
	sadPerPx := int((best + n/2) / n)

	hc := hist32Luma(y4)
	hr := hist32Luma(r4)
	var diff int64
	for i := range hc {
		d := int64(hc[i]) - int64(hr[i])
		if d < 0 {
			d = -d
		}
		diff += d
	}
	histL1 := int((diff * 10000) / n)

	c.lastSADPerPx = sadPerPx
	c.lastHistL1 = histL1

	switch {
	case histL1 >= cutHistOnly:
		return true
	case sadPerPx >= cutSADHi:
		return true
	case sadPerPx >= cutSADMid && histL1 >= cutHistMid:
		return true
	default:
		return false
	}
}
