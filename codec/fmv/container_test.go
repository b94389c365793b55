/*
DESCRIPTION
  container_test.go exercises the header round-trip and frame-record
  framing container.go implements.

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

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := streamHeader{
		w: 352, h: 288,
		fpsN: 24000, fpsD: 1001,
		sarN: 4, sarD: 3,
		q: qualityTable[QualityDefault],
	}
	buf := encodeHeader(h)
	if len(buf) != DecHeaderSize {
		t.Fatalf("encodeHeader: got %d bytes, want %d", len(buf), DecHeaderSize)
	}
	got, err := decodeHeader(buf)
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}
	// The header carries only the quantizer ratios; the RD lambda and
	// the SKIP thresholds are encoder-side settings and decode as zero.
	want := h
	want.q.rdLambda = 0
	want.q.skipLumaMax, want.q.skipLumaSum = 0, 0
	want.q.skipChromaMax, want.q.skipChromaSum = 0, 0
	want.q.skipLumaMeanAbsMax, want.q.skipChromaMeanAbsMax = 0, 0
	want.q.skipCoarseMVMargin = 0
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(streamHeader{}, qualityParams{})); diff != "" {
		t.Fatalf("header round trip mismatch (-want +got):\n%s", diff)
	}
}

// A 95-byte buffer is one byte short of DecHeaderSize and must be
// rejected rather than silently parsed.
func TestHeaderTooShort(t *testing.T) {
	h := streamHeader{w: 16, h: 16, fpsN: 30, fpsD: 1, sarN: 1, sarD: 1, q: qualityTable[QualityDefault]}
	buf := encodeHeader(h)[:95]
	_, err := decodeHeader(buf)
	if !errors.Is(err, ErrShortHeader) {
		t.Fatalf("decodeHeader(95 bytes): got %v, want ErrShortHeader", err)
	}
}

func TestHeaderBadSignature(t *testing.T) {
	buf := encodeHeader(streamHeader{w: 16, h: 16, fpsN: 30, fpsD: 1, sarN: 1, sarD: 1, q: qualityTable[QualityDefault]})
	buf[0] = 'X'
	_, err := decodeHeader(buf)
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("decodeHeader(bad signature): got %v, want ErrBadSignature", err)
	}
}

func TestHeaderUnsupportedVersion(t *testing.T) {
	buf := encodeHeader(streamHeader{w: 16, h: 16, fpsN: 30, fpsD: 1, sarN: 1, sarD: 1, q: qualityTable[QualityDefault]})
	buf[3] = 1
	_, err := decodeHeader(buf)
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("decodeHeader(bad version): got %v, want ErrUnsupportedVersion", err)
	}
}

func TestFrameRecordRoundTrip(t *testing.T) {
	raw := make([]byte, 777)
	for i := range raw {
		raw[i] = byte(i * 3)
	}
	rec := deflateFrame(raw)

	var buf bytes.Buffer
	buf.Write(rec)
	buf.Write(endMarker[:])

	got, err := readFrameRecord(&buf)
	if err != nil {
		t.Fatalf("readFrameRecord: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("frame record round trip mismatch")
	}

	_, err = readFrameRecord(&buf)
	if err != io.EOF {
		t.Fatalf("readFrameRecord at end marker: got %v, want io.EOF", err)
	}
}

func TestFrameRecordTruncated(t *testing.T) {
	var sizeBuf [4]byte
	sizeBuf[0] = 2 // size=2, below the minimum 4-byte raw-length prefix
	_, err := readFrameRecord(bytes.NewReader(sizeBuf[:]))
	if !errors.Is(err, ErrTruncatedFrame) {
		t.Fatalf("readFrameRecord(truncated): got %v, want ErrTruncatedFrame", err)
	}
}
