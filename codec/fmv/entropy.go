/*
DESCRIPTION
  entropy.go implements the run-length coding of a zig-zag-ordered
  64-coefficient block: the DC coefficient is always written in full,
  followed by (run, level) pairs for each nonzero AC coefficient, with
  runs longer than 255 split across multiple escape pairs, and a
  (0,0) pair terminating the block.

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

import "encoding/binary"

// rleLenEstimate returns the number of bytes rleWrite would append
// for zzq, used to size buffers up front without a second pass.
func rleLenEstimate(zzq *[64]int16) int {
	n := 2 // DC coefficient
	run := 0
	for i := 1; i < 64; i++ {
		if zzq[i] == 0 {
			run++
			continue
		}
		for run > 255 {
			n += 3
			run -= 255
		}
		n += 3
		run = 0
	}
	n += 3
	return n
}

// rleWrite appends the run-length coding of zzq (in zig-zag scan
// order) to buf and returns the extended slice.
func rleWrite(buf []byte, zzq *[64]int16) []byte {
	var dc [2]byte
	binary.LittleEndian.PutUint16(dc[:], uint16(zzq[0]))
	buf = append(buf, dc[:]...)

	run := 0
	for i := 1; i < 64; i++ {
		if zzq[i] == 0 {
			run++
			continue
		}
		for run > 255 {
			buf = append(buf, 255, 0, 0)
			run -= 255
		}
		var lev [2]byte
		binary.LittleEndian.PutUint16(lev[:], uint16(zzq[i]))
		buf = append(buf, byte(run), lev[0], lev[1])
		run = 0
	}
	return append(buf, 0, 0, 0)
}

// rleRead decodes one run-length coded block from the front of buf
// into zzq (zig-zag order) and returns the unconsumed remainder.
func rleRead(buf []byte, zzq *[64]int16) ([]byte, error) {
	for i := range zzq {
		zzq[i] = 0
	}
	if len(buf) < 2 {
		return nil, ErrMalformedFrame
	}
	zzq[0] = int16(binary.LittleEndian.Uint16(buf))
	buf = buf[2:]
	idx := 1
	for {
		if len(buf) < 3 {
			return nil, ErrMalformedFrame
		}
		run := int(buf[0])
		lev := int16(binary.LittleEndian.Uint16(buf[1:3]))
		buf = buf[3:]
		if run == 0 && lev == 0 {
			break
		}
		idx += run
		if idx >= 64 {
			return nil, ErrMalformedFrame
		}
		zzq[idx] = lev
		idx++
	}
	return buf, nil
}

// zigZagScan reorders a natural-order 8x8 coefficient block into
// zig-zag scan order.
func zigZagScan(natural *[64]int16) [64]int16 {
	var out [64]int16
	for i, n := range zigZag {
		out[i] = natural[n]
	}
	return out
}

// zigZagUnscan reorders a zig-zag-order 8x8 coefficient block back
// into natural (row-major) order.
func zigZagUnscan(zz *[64]int16) [64]int16 {
	var out [64]int16
	for i, n := range zigZag {
		out[n] = zz[i]
	}
	return out
}
