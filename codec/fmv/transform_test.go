/*
DESCRIPTION
  transform_test.go exercises the forward/inverse DCT pair and quant
  table construction in transform.go.

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

// TestDCTIdentityNoQuant runs a block through the forward DCT, then
// straight back through the inverse DCT with Q=1 and W=256 (a neutral
// 1:1 perceptual weight) and expects reconstruction within a few
// levels of the original thanks to fixed-point rounding only.
func TestDCTIdentityNoQuant(t *testing.T) {
	var src [64]byte
	for i := range src {
		src[i] = byte((i*37 + 11) % 256)
	}

	var f [64]int32
	fdct8x8(src[:], 8, &f)

	var qcoef [64]int16
	var q [64]byte
	var w [64]uint16
	for i := range q {
		q[i] = 1
		w[i] = 256 // postWeight divides by 256, so this is a no-op weight.
		qcoef[i] = int16(f[i])
	}

	var dst [64]byte
	idctDequantToU8(&qcoef, &q, &w, dst[:], 8)

	for i := range src {
		d := int(src[i]) - int(dst[i])
		if d < -2 || d > 2 {
			t.Fatalf("sample %d: got %d, want close to %d (diff %d)", i, dst[i], src[i], d)
		}
	}
}

// TestDCTFlatBlock checks that a constant block transforms to a pure
// DC coefficient with all AC terms at zero.
func TestDCTFlatBlock(t *testing.T) {
	var src [64]byte
	for i := range src {
		src[i] = 200
	}
	var f [64]int32
	fdct8x8(src[:], 8, &f)
	for i := 1; i < 64; i++ {
		if f[i] != 0 {
			t.Fatalf("AC coefficient %d: got %d, want 0 for a flat block", i, f[i])
		}
	}
	if f[0] == 0 {
		t.Fatalf("DC coefficient is zero for a non-neutral flat block")
	}
}

// TestBuildQuantsBounded checks every quality preset reshapes the base
// tables into the documented [1,255] range.
func TestBuildQuantsBounded(t *testing.T) {
	for q := QualityMin; q <= QualityMax; q++ {
		qy, qc := buildQuants(qualityTable[q])
		for i, v := range qy {
			if v < 1 {
				t.Fatalf("quality %d: qy[%d] = %d, want >= 1", q, i, v)
			}
		}
		for i, v := range qc {
			if v < 1 {
				t.Fatalf("quality %d: qc[%d] = %d, want >= 1", q, i, v)
			}
		}
	}
}

// TestQuantACDeadzoneAtZero checks that a near-zero AC coefficient
// quantizes to exactly zero within the dead zone, matching the
// all-zero-block fast paths SKIP and CBP both rely on.
func TestQuantACDeadzoneAtZero(t *testing.T) {
	got := quantACDeadzone(3, 32, 53, 40)
	if got != 0 {
		t.Fatalf("quantACDeadzone(3, qstep=32): got %d, want 0 (inside dead zone)", got)
	}
}
