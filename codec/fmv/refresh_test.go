/*
DESCRIPTION
  refresh_test.go exercises the cyclic intra refresh schedule in
  refresh.go: full coverage over one cycle, and a rotating counter
  that advances exactly one group per frame.

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

// TestRefreshMapCoversEveryMacroblock checks that, over cirGroupCount
// consecutive frames, every macroblock is forced intra at least once.
func TestRefreshMapCoversEveryMacroblock(t *testing.T) {
	const mbW, mbH = 11, 7 // deliberately not a multiple of cirGroupCount
	r := buildRefreshMap(mbW, mbH)
	seen := make([]bool, mbW*mbH)
	for f := 0; f < cirGroupCount; f++ {
		for i := range seen {
			if r.forced(i) {
				seen[i] = true
			}
		}
		r.advance()
	}
	for i, ok := range seen {
		if !ok {
			t.Fatalf("macroblock %d never forced intra over %d frames", i, cirGroupCount)
		}
	}
}

// TestRefreshMapAdvanceWraps checks the rotating counter wraps back to
// group 0 after exactly cirGroupCount advances.
func TestRefreshMapAdvanceWraps(t *testing.T) {
	r := buildRefreshMap(4, 4)
	if g := r.group(); g != 0 {
		t.Fatalf("initial group: got %d, want 0", g)
	}
	for i := 0; i < cirGroupCount; i++ {
		r.advance()
	}
	if g := r.group(); g != 0 {
		t.Fatalf("group after %d advances: got %d, want 0", cirGroupCount, g)
	}
}

// TestRefreshMapForcedCountBounded checks that the number of forced
// macroblocks in any one frame never exceeds a small multiple of the
// even share (n/k), i.e. the schedule doesn't force the whole grid at
// once by some hashing degeneracy.
func TestRefreshMapForcedCountBounded(t *testing.T) {
	const mbW, mbH = 20, 15
	r := buildRefreshMap(mbW, mbH)
	n := mbW * mbH
	maxExpected := 4 * (n / cirGroupCount + 1)
	for f := 0; f < cirGroupCount; f++ {
		count := 0
		for i := 0; i < n; i++ {
			if r.forced(i) {
				count++
			}
		}
		if count > maxExpected {
			t.Fatalf("frame %d: %d macroblocks forced intra, want <= %d", f, count, maxExpected)
		}
		r.advance()
	}
}
