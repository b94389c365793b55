/*
DESCRIPTION
  scenecut_test.go exercises the scene-cut detector's warm-up gap,
  identical-frame negative case, and hard-cut positive case.

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

func newScratchPyramid(w, h int) (y2, r2, y4, r4 *plane) {
	return newPlane(w/2, h/2, 0), newPlane(w/2, h/2, 0), newPlane(w/4, h/4, 0), newPlane(w/4, h/4, 0)
}

func TestShouldEmitIFrameFirstFrame(t *testing.T) {
	var c cutDetector
	cur := newPlane(64, 64, 100)
	ref := newPlane(64, 64, 100)
	y2, r2, y4, r4 := newScratchPyramid(64, 64)
	if !c.shouldEmitIFrame(0, cur, ref, y2, r2, y4, r4) {
		t.Fatalf("frame 0: got false, want true (always an I frame)")
	}
}

func TestShouldEmitIFrameWarmup(t *testing.T) {
	c := cutDetector{framesSinceI: cutMinGap - 1}
	cur := newPlane(64, 64, 255)
	ref := newPlane(64, 64, 0) // maximally different content
	y2, r2, y4, r4 := newScratchPyramid(64, 64)
	if c.shouldEmitIFrame(5, cur, ref, y2, r2, y4, r4) {
		t.Fatalf("inside warm-up window: got true, want false regardless of content")
	}
}

func TestShouldEmitIFrameIdenticalContent(t *testing.T) {
	c := cutDetector{framesSinceI: cutMinGap + 5}
	cur := newPlane(64, 64, 128)
	ref := newPlane(64, 64, 128)
	y2, r2, y4, r4 := newScratchPyramid(64, 64)
	if c.shouldEmitIFrame(20, cur, ref, y2, r2, y4, r4) {
		t.Fatalf("identical frames: got true, want false")
	}
}

func TestShouldEmitIFrameHardCut(t *testing.T) {
	c := cutDetector{framesSinceI: cutMinGap + 5}
	cur := newPlane(64, 64, 250)
	ref := newPlane(64, 64, 5) // a maximally different flat frame, simulating a hard cut
	y2, r2, y4, r4 := newScratchPyramid(64, 64)
	if !c.shouldEmitIFrame(20, cur, ref, y2, r2, y4, r4) {
		t.Fatalf("hard cut (flat 250 vs flat 5): got false, want true")
	}
}
