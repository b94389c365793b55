/*
DESCRIPTION
  filter_test.go exercises the in-loop deblock/dering filters: a flat
  plane must be left untouched (nothing to smooth), an artificial
  step across an 8-pixel boundary must be softened, and an isolated
  outlier must move one level toward its neighbours.

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

func TestDeblockPlaneFlatIsNoOp(t *testing.T) {
	p := newPlane(32, 32, 150)
	before := make([]byte, len(p.pix))
	copy(before, p.pix)
	deblockPlane(p, false)
	for i := range p.pix {
		if p.pix[i] != before[i] {
			t.Fatalf("pixel %d changed on a flat plane: got %d, want %d", i, p.pix[i], before[i])
		}
	}
}

// TestDeblockPlaneSoftensHardEdge builds a plane with a sharp step
// exactly on an 8-pixel grid boundary and checks the filter pulls the
// two boundary samples toward each other rather than leaving the step
// untouched.
func TestDeblockPlaneSoftensHardEdge(t *testing.T) {
	p := newPlane(32, 32, 0)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			v := byte(40)
			if x >= 8 {
				v = 220
			}
			p.set(x, y, v)
		}
	}
	before0, before1 := p.at(7, 16), p.at(8, 16)
	deblockPlane(p, false)
	after0, after1 := p.at(7, 16), p.at(8, 16)
	if after0 <= before0 {
		t.Fatalf("left boundary sample didn't rise toward the edge: before=%d after=%d", before0, after0)
	}
	if after1 >= before1 {
		t.Fatalf("right boundary sample didn't fall toward the edge: before=%d after=%d", before1, after1)
	}
}

func TestDeringLumaFlatIsNoOp(t *testing.T) {
	p := newPlane(16, 16, 100)
	before := make([]byte, len(p.pix))
	copy(before, p.pix)
	deringLuma(p)
	for i := range p.pix {
		if p.pix[i] != before[i] {
			t.Fatalf("pixel %d changed on a flat plane: got %d, want %d", i, p.pix[i], before[i])
		}
	}
}

// TestDeringLumaSmoothsOutlier checks a single pixel spiking above its
// otherwise-flat neighborhood moves one level toward the neighborhood
// average.
func TestDeringLumaSmoothsOutlier(t *testing.T) {
	p := newPlane(16, 16, 100)
	p.set(8, 8, 103) // an isolated +3 ringing artifact amid flat 100s
	deringLuma(p)
	got := p.at(8, 8)
	if got != 102 {
		t.Fatalf("outlier pixel: got %d, want 102 (one level toward 100)", got)
	}
}
