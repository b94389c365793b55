/*
DESCRIPTION
  motion.go implements hierarchical motion estimation over a 16x16
  luma macroblock: an exhaustive quarter-resolution SAD search seeds
  a half-resolution diamond refinement, which in turn seeds a
  full-resolution half-pel SATD (Hadamard) refinement over a 5x5 then
  a 3x3 grid. It also implements the half-pel luma and quarter-pel
  chroma bilinear samplers used both here and during motion
  compensation, and the box-filter downsampling that builds the
  pyramid.

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
	biasSAD4x  = 1
	biasSAD2x  = 2
	biasSATD1x = 6
	fracPen    = 2
)

// floorDiv2 and floorDiv4 are the floor-towards-negative-infinity
// division rules motion compensation uses to split a half/quarter-pel
// offset into an integer block offset plus a fractional remainder.
func floorDiv2(v int) int {
	if v >= 0 {
		return v >> 1
	}
	return -((-v + 1) >> 1)
}

func floorDiv4(v int) int {
	if v >= 0 {
		return v >> 2
	}
	return -((-v + 3) >> 2)
}

// down2Box halves both dimensions of src with a 2x2 box filter; on odd
// dimensions the trailing row/column is dropped.
func down2Box(src *plane) *plane {
	w, h := src.w>>1, src.h>>1
	dst := newPlane(w, h, 0)
	for y := 0; y < h; y++ {
		y0 := y * 2
		y1 := y0 + 1
		if y1 >= src.h {
			y1 = src.h - 1
		}
		for x := 0; x < w; x++ {
			x0 := x * 2
			x1 := x0 + 1
			if x1 >= src.w {
				x1 = src.w - 1
			}
			s := int(src.at(x0, y0)) + int(src.at(x1, y0)) + int(src.at(x0, y1)) + int(src.at(x1, y1))
			dst.set(x, y, byte((s+2)>>2))
		}
	}
	return dst
}

// sadBlockClamped sums absolute differences between a BxB block of a
// at (ax,ay) and a BxB block of b at (bx,by), both edge-clamped,
// returning early once the running sum reaches cutoff.
func sadBlockClamped(a *plane, ax, ay int, b *plane, bx, by, blk, cutoff int) int {
	s := 0
	for yy := 0; yy < blk; yy++ {
		for xx := 0; xx < blk; xx++ {
			d := int(a.at(ax+xx, ay+yy)) - int(b.at(bx+xx, by+yy))
			s += absInt(d)
		}
		if s >= cutoff {
			return s
		}
	}
	return s
}

// sampleLumaHpel bilinearly samples img at integer pixel (x,y) offset
// by a half-pel vector (dxh,dyh), where dxh/dyh are in half-pel units.
func sampleLumaHpel(img *plane, x, y, dxh, dyh int) byte {
	bx := x + floorDiv2(dxh)
	by := y + floorDiv2(dyh)
	fx := dxh&1 != 0
	fy := dyh&1 != 0
	p00 := img.at(bx, by)
	if !fx && !fy {
		return p00
	}
	if fx && !fy {
		p10 := img.at(bx+1, by)
		return byte((int(p00) + int(p10) + 1) >> 1)
	}
	if !fx && fy {
		p01 := img.at(bx, by+1)
		return byte((int(p00) + int(p01) + 1) >> 1)
	}
	p10 := img.at(bx+1, by)
	p01 := img.at(bx, by+1)
	p11 := img.at(bx+1, by+1)
	s := int(p00) + int(p10) + int(p01) + int(p11)
	return byte((s + 2) >> 2)
}

// sampleChromaQpel bilinearly samples img at integer pixel (x,y)
// offset by a quarter-pel vector (dxq,dyq) in quarter-pel units.
func sampleChromaQpel(img *plane, x, y, dxq, dyq int) byte {
	bx := x + floorDiv4(dxq)
	by := y + floorDiv4(dyq)
	rx := dxq - 4*floorDiv4(dxq)
	ry := dyq - 4*floorDiv4(dyq)
	p00 := img.at(bx, by)
	p10 := img.at(bx+1, by)
	p01 := img.at(bx, by+1)
	p11 := img.at(bx+1, by+1)
	w00 := (4 - rx) * (4 - ry)
	w10 := rx * (4 - ry)
	w01 := (4 - rx) * ry
	w11 := rx * ry
	s := w00*int(p00) + w10*int(p10) + w01*int(p01) + w11*int(p11)
	return byte((s + 8) >> 4)
}

// copyBlockFracLuma fills an 8x8 dst block by sampling src at
// (sx,sy) offset by the half-pel vector (dxh,dyh).
func copyBlockFracLuma(src *plane, sx, sy, dxh, dyh int, dst []byte) {
	for by := 0; by < 8; by++ {
		for bx := 0; bx < 8; bx++ {
			dst[by*8+bx] = sampleLumaHpel(src, sx+bx, sy+by, dxh, dyh)
		}
	}
}

// copyBlockFracChroma fills an 8x8 dst block by sampling src at
// (sx,sy) offset by the quarter-pel vector (dxq,dyq).
func copyBlockFracChroma(src *plane, sx, sy, dxq, dyq int, dst []byte) {
	for by := 0; by < 8; by++ {
		for bx := 0; bx < 8; bx++ {
			dst[by*8+bx] = sampleChromaQpel(src, sx+bx, sy+by, dxq, dyq)
		}
	}
}

// hadamard4AbsSum runs a 4x4 Hadamard transform over r and sums the
// absolute values of the 16 transform coefficients; this is the
// per-4x4-tile cost term inside SATD.
func hadamard4AbsSum(r *[16]int) int {
	var a [16]int
	for i := 0; i < 4; i++ {
		r0, r1, r2, r3 := r[i*4+0], r[i*4+1], r[i*4+2], r[i*4+3]
		t0, t1, t2, t3 := r0+r1, r0-r1, r2+r3, r2-r3
		a[i*4+0] = t0 + t2
		a[i*4+1] = t1 + t3
		a[i*4+2] = t0 - t2
		a[i*4+3] = t1 - t3
	}
	sum := 0
	for j := 0; j < 4; j++ {
		b0, b1 := a[0*4+j]+a[1*4+j], a[0*4+j]-a[1*4+j]
		b2, b3 := a[2*4+j]+a[3*4+j], a[2*4+j]-a[3*4+j]
		c0, c1, c2, c3 := b0+b2, b1+b3, b0-b2, b1-b3
		sum += absInt(c0) + absInt(c1) + absInt(c2) + absInt(c3)
	}
	return sum
}

// satd16x16LumaHpel computes the sum of absolute Hadamard transform
// coefficients between a 16x16 region of cur at (x,y) and the
// half-pel motion-compensated prediction from ref, tiled into 4x4
// blocks, returning early once the running sum reaches cutoff.
func satd16x16LumaHpel(cur *plane, x, y int, ref *plane, dxh, dyh, cutoff int) int {
	sum := 0
	var r [16]int
	for ty := 0; ty < 16; ty += 4 {
		for tx := 0; tx < 16; tx += 4 {
			for j := 0; j < 4; j++ {
				for i := 0; i < 4; i++ {
					p := sampleLumaHpel(ref, x+tx+i, y+ty+j, dxh, dyh)
					r[j*4+i] = int(cur.at(x+tx+i, y+ty+j)) - int(p)
				}
			}
			sum += hadamard4AbsSum(&r)
			if sum >= cutoff {
				return sum
			}
		}
	}
	return sum
}

// diamondPattern is the 8-direction search offset pattern used by the
// half-resolution diamond refinement stage.
var diamondPattern = [8][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}, {-1, -1}, {1, -1}, {-1, 1}, {1, 1}}

// searchBestMV16x16 finds the best half-pel luma motion vector for
// the 16x16 macroblock at (x,y) in cur against ref, using a 3-level
// pyramid: an exhaustive search at quarter resolution, a diamond
// refinement at half resolution, then a 5x5 and a 3x3 SATD
// refinement at full resolution. rad is the search radius in
// full-resolution pixels; the quarter-res search radius is rad/4,
// clamped to at least 2.
func searchBestMV16x16(cur *plane, x, y int, ref *plane, rad int, y2, r2, y4, r4 *plane) (dxh, dyh int) {
	cx4, cy4 := x>>2, y>>2
	radf4 := rad >> 2
	if radf4 < 2 {
		radf4 = 2
	}
	bx4, by4, best4 := 0, 0, math.MaxInt32
	for dy := -radf4; dy <= radf4; dy++ {
		for dx := -radf4; dx <= radf4; dx++ {
			s := sadBlockClamped(y4, cx4, cy4, r4, cx4+dx, cy4+dy, 4, best4)
			s += biasSAD4x * (absInt(dx) + absInt(dy))
			if s < best4 {
				best4, bx4, by4 = s, dx, dy
			}
		}
	}

	bx2, by2 := bx4<<1, by4<<1
	cx2, cy2 := x>>1, y>>1
	best2 := sadBlockClamped(y2, cx2, cy2, r2, cx2+bx2, cy2+by2, 8, math.MaxInt32)
	best2 += biasSAD2x * (absInt(bx2) + absInt(by2))
	for step := 2; step >= 1; step-- {
		improved := true
		for improved {
			improved = false
			for _, d := range diamondPattern {
				dx := bx2 + d[0]*step
				dy := by2 + d[1]*step
				s := sadBlockClamped(y2, cx2, cy2, r2, cx2+dx, cy2+dy, 8, best2)
				s += biasSAD2x * (absInt(dx) + absInt(dy))
				if s < best2 {
					best2, bx2, by2, improved = s, dx, dy, true
				}
			}
		}
	}

	bestDxh, bestDyh := bx2<<1, by2<<1
	bestF := satd16x16LumaHpel(cur, x, y, ref, bestDxh, bestDyh, math.MaxInt32)
	bestF += biasSATD1x * (absInt(bestDxh) + absInt(bestDyh))
	bestF += fracPen * ((bestDxh & 1) + (bestDyh & 1))

	for iy := -2; iy <= 2; iy++ {
		for ix := -2; ix <= 2; ix++ {
			dxh := (bx2 + ix) << 1
			dyh := (by2 + iy) << 1
			s := satd16x16LumaHpel(cur, x, y, ref, dxh, dyh, bestF)
			s += biasSATD1x * (absInt(dxh) + absInt(dyh))
			s += fracPen * ((dxh & 1) + (dyh & 1))
			if s < bestF {
				bestF, bestDxh, bestDyh = s, dxh, dyh
			}
		}
	}
	for fy := -1; fy <= 1; fy++ {
		for fx := -1; fx <= 1; fx++ {
			dxh := bestDxh + fx
			dyh := bestDyh + fy
			s := satd16x16LumaHpel(cur, x, y, ref, dxh, dyh, bestF)
			s += biasSATD1x * (absInt(dxh) + absInt(dyh))
			s += fracPen * ((dxh & 1) + (dyh & 1))
			if s < bestF {
				bestF, bestDxh, bestDyh = s, dxh, dyh
			}
		}
	}
	return bestDxh, bestDyh
}
