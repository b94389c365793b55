/*
DESCRIPTION
  codec_test.go exercises the public Encoder/Decoder pair end to end:
  header round trip through a real stream, a two-frame static scene
  decoded back close to its source, and invalid-construction argument
  checks.

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
)

// flatYUV420 builds a frame of width w, height h at 4:2:0 subsampling
// with every luma sample set to y and every chroma sample set to uv.
func flatYUV420(w, h int, y, uv byte) []byte {
	buf := make([]byte, w*h+2*(w/2)*(h/2))
	for i := 0; i < w*h; i++ {
		buf[i] = y
	}
	for i := w * h; i < len(buf); i++ {
		buf[i] = uv
	}
	return buf
}

// TestEncodeDecodeStaticScene runs two identical flat frames through
// the encoder (S5-style sar=4:3, fps=24000:1001 geometry) and checks
// the decoder reports back the same stream geometry, decodes exactly
// two frames close to mid-gray, and that Stats records one I frame
// followed by one P frame.
func TestEncodeDecodeStaticScene(t *testing.T) {
	const w, h = 32, 32
	enc, err := NewEncoder(w, h, 24000, 1001, 4, 3, QualityDefault, nil)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}

	frame := flatYUV420(w, h, 128, 128)
	var stream bytes.Buffer
	for i := 0; i < 2; i++ {
		chunk, err := enc.EncodeYUV420(frame)
		if err != nil {
			t.Fatalf("EncodeYUV420(frame %d): %v", i, err)
		}
		stream.Write(chunk)
	}
	tail, err := enc.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	stream.Write(tail)

	st := enc.Stats()
	if st.FramesTotal != 2 {
		t.Fatalf("Stats.FramesTotal: got %d, want 2", st.FramesTotal)
	}
	if st.FramesI != 1 || st.FramesP != 1 {
		t.Fatalf("Stats: got I=%d P=%d, want I=1 P=1", st.FramesI, st.FramesP)
	}

	header := make([]byte, DecHeaderSize)
	if _, err := io.ReadFull(&stream, header); err != nil {
		t.Fatalf("reading header: %v", err)
	}
	dec, err := NewDecoder(header, nil)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	if dec.Width() != w || dec.Height() != h {
		t.Fatalf("decoder geometry: got %dx%d, want %dx%d", dec.Width(), dec.Height(), w, h)
	}
	if n, d := dec.FrameRate(); n != 24000 || d != 1001 {
		t.Fatalf("decoder frame rate: got %d:%d, want 24000:1001", n, d)
	}
	if n, d := dec.AspectRatio(); n != 4 || d != 3 {
		t.Fatalf("decoder aspect ratio: got %d:%d, want 4:3", n, d)
	}

	frames := 0
	for {
		xbgr, err := dec.NextFrame(&stream)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextFrame(%d): %v", frames, err)
		}
		if len(xbgr) != w*h*4 {
			t.Fatalf("NextFrame(%d): got %d bytes, want %d", frames, len(xbgr), w*h*4)
		}
		// A flat mid-gray frame should reconstruct close to itself;
		// allow slack for quantization and the in-loop filters.
		for i := 0; i < w*h; i++ {
			px := xbgr[i*4 : i*4+3]
			for _, c := range px {
				if d := int(c) - 128; d < -12 || d > 12 {
					t.Fatalf("NextFrame(%d): pixel %d channel = %d, want close to 128", frames, i, c)
				}
			}
		}
		frames++
	}
	if frames != 2 {
		t.Fatalf("decoded %d frames, want 2", frames)
	}

	if _, err := dec.NextFrame(&stream); !errors.Is(err, ErrClosedStream) {
		t.Fatalf("NextFrame after EOF: got %v, want ErrClosedStream", err)
	}
}

func TestNewEncoderRejectsBadDimensions(t *testing.T) {
	if _, err := NewEncoder(33, 32, 30, 1, 1, 1, QualityDefault, nil); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("odd width: got %v, want ErrInvalidDimensions", err)
	}
	if _, err := NewEncoder(32, 32, 30, 0, 1, 1, QualityDefault, nil); !errors.Is(err, ErrInvalidFrameRate) {
		t.Fatalf("fps_d=0: got %v, want ErrInvalidFrameRate", err)
	}
	if _, err := NewEncoder(32, 32, 30, 1, 0, 1, QualityDefault, nil); !errors.Is(err, ErrInvalidAspect) {
		t.Fatalf("sar_n=0: got %v, want ErrInvalidAspect", err)
	}
	if _, err := NewEncoder(32, 32, 30, 1, 1, 1, Quality(99), nil); !errors.Is(err, ErrInvalidQuality) {
		t.Fatalf("bad quality: got %v, want ErrInvalidQuality", err)
	}
}

// TestFinalizeIsSingleCall checks the idiomatic stricter lifecycle:
// a second Finalize (or an Encode after Finalize) is rejected.
func TestFinalizeIsSingleCall(t *testing.T) {
	enc, err := NewEncoder(16, 16, 30, 1, 1, 1, QualityDefault, nil)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if _, err := enc.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if _, err := enc.Finalize(); !errors.Is(err, ErrFinalized) {
		t.Fatalf("second Finalize: got %v, want ErrFinalized", err)
	}
	frame := flatYUV420(16, 16, 128, 128)
	if _, err := enc.EncodeYUV420(frame); !errors.Is(err, ErrFinalized) {
		t.Fatalf("EncodeYUV420 after Finalize: got %v, want ErrFinalized", err)
	}
}
