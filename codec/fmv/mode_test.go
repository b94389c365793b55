/*
DESCRIPTION
  mode_test.go exercises CBP packing and the per-block trial encode
  helpers mode.go provides to rate-distortion mode decision.

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

func TestMakeCBP6AllZero(t *testing.T) {
	var y [4][64]int16
	var u, v [64]int16
	if cbp := makeCBP6(&y, &u, &v); cbp != 0 {
		t.Fatalf("makeCBP6(all zero): got %#02x, want 0", cbp)
	}
}

func TestMakeCBP6Bits(t *testing.T) {
	var y [4][64]int16
	var u, v [64]int16
	y[0][3] = 1
	y[2][0] = -1
	v[5] = 2
	got := makeCBP6(&y, &u, &v)
	want := byte(1<<0 | 1<<2 | 1<<5)
	if got != want {
		t.Fatalf("makeCBP6: got %#02x, want %#02x", got, want)
	}
}

// TestTrialIBlockFlatReconstructsExactly checks that a perfectly flat
// 8x8 block (no quantization rounding to fight) reconstructs to the
// same flat level through trialIBlock's own forward/inverse path.
func TestTrialIBlockFlatReconstructsExactly(t *testing.T) {
	var src [64]byte
	for i := range src {
		src[i] = 150
	}
	qy, _ := buildQuants(qualityTable[QualityMax])
	w8 := buildWindow()
	r := trialIBlock(src[:], 8, &qy, &w8, qualityTable[QualityMax], 8, 8)
	for i, v := range r.recon {
		if d := int(v) - 150; d < -1 || d > 1 {
			t.Fatalf("recon[%d] = %d, want close to 150 (diff %d)", i, v, d)
		}
	}
	if r.sse > 64 { // at most 1 level of rounding error per sample
		t.Fatalf("flat block SSE = %d, want <= 64", r.sse)
	}
}

// TestTrialPBlockZeroResidualIsSkippable checks that an identical
// current/predictor pair trials to an all-zero residual with zero
// SSE, the condition codeRDMB relies on to collapse to SKIP.
func TestTrialPBlockZeroResidualIsSkippable(t *testing.T) {
	var buf [64]byte
	for i := range buf {
		buf[i] = byte(i)
	}
	qy, _ := buildQuants(qualityTable[QualityDefault])
	w8 := buildWindow()
	r := trialPBlock(buf[:], 8, buf[:], 8, &qy, &w8, qualityTable[QualityDefault], true, 8, 8)
	if !allZero64(&r.zzq) {
		t.Fatalf("trialPBlock(identical blocks): zzq not all zero: %+v", r.zzq)
	}
	if r.sse != 0 {
		t.Fatalf("trialPBlock(identical blocks): sse = %d, want 0", r.sse)
	}
}

// TestTrialPBlockLargeResidualIsCoded checks a residual well above
// every small-residual/safety-net threshold survives quantization as
// a nonzero block.
func TestTrialPBlockLargeResidualIsCoded(t *testing.T) {
	var cur, pred [64]byte
	for i := range cur {
		cur[i] = 200
		pred[i] = 40
	}
	qy, _ := buildQuants(qualityTable[QualityMin])
	w8 := buildWindow()
	r := trialPBlock(cur[:], 8, pred[:], 8, &qy, &w8, qualityTable[QualityMin], true, 8, 8)
	if allZero64(&r.zzq) {
		t.Fatalf("trialPBlock(160-level residual): zzq all zero, want nonzero")
	}
}
