/*
DESCRIPTION
  entropy_test.go exercises the RLE and zig-zag coding in entropy.go.

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

func TestRLERoundTripSparse(t *testing.T) {
	var zzq [64]int16
	zzq[0] = 37
	zzq[5] = -3
	zzq[40] = 12
	zzq[63] = 1

	buf := rleWrite(nil, &zzq)
	if len(buf) != rleLenEstimate(&zzq) {
		t.Fatalf("rleLenEstimate: got %d, want %d", rleLenEstimate(&zzq), len(buf))
	}

	var got [64]int16
	rest, err := rleRead(buf, &got)
	if err != nil {
		t.Fatalf("rleRead: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("rleRead: %d unconsumed bytes", len(rest))
	}
	if got != zzq {
		t.Fatalf("rleRead round trip mismatch: got %+v, want %+v", got, zzq)
	}
}

func TestRLERoundTripAllZero(t *testing.T) {
	var zzq [64]int16
	buf := rleWrite(nil, &zzq)
	if len(buf) != 5 { // 2-byte DC + 3-byte terminator
		t.Fatalf("all-zero block: got %d bytes, want 5", len(buf))
	}
	var got [64]int16
	got[3] = 99 // dirty the destination to confirm rleRead clears it
	_, err := rleRead(buf, &got)
	if err != nil {
		t.Fatalf("rleRead: %v", err)
	}
	if got != zzq {
		t.Fatalf("rleRead round trip mismatch for all-zero block")
	}
}

// TestRLELongestInBlockRun exercises the longest zero run one
// 64-coefficient block can hold. At 62 zeros it stays under the 255
// limit, so no (255,0) escape pair is written.
func TestRLELongestInBlockRun(t *testing.T) {
	var zzq [64]int16
	zzq[0] = 5
	zzq[63] = 9 // run of 62 zeros between index 1 and 62 inclusive

	buf := rleWrite(nil, &zzq)
	var got [64]int16
	_, err := rleRead(buf, &got)
	if err != nil {
		t.Fatalf("rleRead: %v", err)
	}
	if got != zzq {
		t.Fatalf("rleRead round trip mismatch: got %+v, want %+v", got, zzq)
	}
}

func TestRLETruncated(t *testing.T) {
	var got [64]int16
	_, err := rleRead([]byte{1}, &got)
	if err != ErrMalformedFrame {
		t.Fatalf("rleRead(1 byte): got %v, want ErrMalformedFrame", err)
	}
	_, err = rleRead([]byte{0, 0, 1, 2}, &got)
	if err != ErrMalformedFrame {
		t.Fatalf("rleRead(truncated pair): got %v, want ErrMalformedFrame", err)
	}
}

func TestZigZagRoundTrip(t *testing.T) {
	var natural [64]int16
	for i := range natural {
		natural[i] = int16(i) - 32
	}
	zz := zigZagScan(&natural)
	back := zigZagUnscan(&zz)
	if back != natural {
		t.Fatalf("zig-zag round trip mismatch")
	}
}
