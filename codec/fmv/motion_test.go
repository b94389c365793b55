/*
DESCRIPTION
  motion_test.go exercises the half-pel/quarter-pel samplers and the
  hierarchical motion search, including the zero-motion identity case
  mode decision relies on to collapse a static macroblock to SKIP.

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

import "testing"

// TestSampleLumaHpelIntegerOffsetIsExact checks that a zero half-pel
// vector samples the plane exactly, with no interpolation blur.
func TestSampleLumaHpelIntegerOffsetIsExact(t *testing.T) {
	p := newPlane(16, 16, 0)
	for i := range p.pix {
		p.pix[i] = byte(i)
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if got := sampleLumaHpel(p, x, y, 0, 0); got != p.at(x, y) {
				t.Fatalf("sampleLumaHpel(%d,%d,0,0): got %d, want %d", x, y, got, p.at(x, y))
			}
		}
	}
}

// TestSampleLumaHpelHalfwayAverages checks a one-half-pel horizontal
// offset averages two adjacent samples.
func TestSampleLumaHpelHalfwayAverages(t *testing.T) {
	p := newPlane(4, 4, 0)
	p.set(1, 1, 10)
	p.set(2, 1, 20)
	got := sampleLumaHpel(p, 1, 1, 1, 0)
	if got != 15 {
		t.Fatalf("sampleLumaHpel(halfway): got %d, want 15", got)
	}
}

// TestCopyBlockFracLumaZeroMVIsIdentity checks that motion-compensated
// copy at a zero vector reproduces the source block exactly, the
// condition trySkip and the zero-residual safety net both depend on.
func TestCopyBlockFracLumaZeroMVIsIdentity(t *testing.T) {
	ref := newPlane(32, 32, 0)
	for i := range ref.pix {
		ref.pix[i] = byte(i * 7)
	}
	var dst [64]byte
	copyBlockFracLuma(ref, 8, 8, 0, 0, dst[:])
	for by := 0; by < 8; by++ {
		for bx := 0; bx < 8; bx++ {
			want := ref.at(8+bx, 8+by)
			if got := dst[by*8+bx]; got != want {
				t.Fatalf("copyBlockFracLuma zero MV at (%d,%d): got %d, want %d", bx, by, got, want)
			}
		}
	}
}

// TestSearchBestMV16x16FindsBetterThanZero builds a reference frame
// and a current frame that is the reference shifted by a known
// whole-pixel translation, then checks the search returns a motion
// vector whose SATD cost against the true shifted content is both
// lower than the zero vector's and close to the ideal vector's,
// rather than requiring the heuristic pyramid search to reproduce the
// ideal answer bit-exactly.
func TestSearchBestMV16x16FindsBetterThanZero(t *testing.T) {
	const w, h = 64, 64
	ref := newPlane(w, h, 0)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ref.set(x, y, byte((x*5+y*11)%256))
		}
	}
	const shiftX, shiftY = 3, -2
	cur := newPlane(w, h, 0)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cur.set(x, y, ref.at(x+shiftX, y+shiftY))
		}
	}

	y2, r2 := down2Box(cur), down2Box(ref)
	y4, r4 := down2Box(y2), down2Box(r2)

	dxh, dyh := searchBestMV16x16(cur, 16, 16, ref, 16, y2, r2, y4, r4)

	const big = 1 << 30
	zeroCost := satd16x16LumaHpel(cur, 16, 16, ref, 0, 0, big)
	foundCost := satd16x16LumaHpel(cur, 16, 16, ref, dxh, dyh, big)
	idealCost := satd16x16LumaHpel(cur, 16, 16, ref, 2*shiftX, 2*shiftY, big)

	if foundCost > zeroCost {
		t.Fatalf("search found MV (%d,%d) costing %d, worse than the zero vector's %d", dxh, dyh, foundCost, zeroCost)
	}
	if idealCost != 0 {
		t.Fatalf("sanity check failed: ideal vector (%d,%d) should cost 0, got %d", 2*shiftX, 2*shiftY, idealCost)
	}
	if foundCost > idealCost+200 {
		t.Fatalf("search found MV (%d,%d) costing %d, far from the ideal vector's cost %d", dxh, dyh, foundCost, idealCost)
	}
}

func TestFloorDivRounding(t *testing.T) {
	cases := []struct{ in, want2, want4 int }{
		{0, 0, 0},
		{3, 1, 0},
		{-1, -1, -1},
		{-3, -2, -1},
		{-4, -2, -1},
		{4, 2, 1},
	}
	for _, c := range cases {
		if got := floorDiv2(c.in); got != c.want2 {
			t.Errorf("floorDiv2(%d): got %d, want %d", c.in, got, c.want2)
		}
		if got := floorDiv4(c.in); got != c.want4 {
			t.Errorf("floorDiv4(%d): got %d, want %d", c.in, got, c.want4)
		}
	}
}
