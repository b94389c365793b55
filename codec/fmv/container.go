/*
DESCRIPTION
  container.go implements the on-disk stream format: a fixed 96-byte
  header carrying geometry, frame rate, sample aspect ratio and the
  quantizer ratios needed to rebuild the quant tables, followed by a
  sequence of DEFLATE-compressed frame records and a zero-length
  end-of-stream marker.

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
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"
)

// streamVersion is the only version this package writes or accepts.
const streamVersion = 0

// DecHeaderSize is the exact number of header bytes NewDecoder
// requires.
const DecHeaderSize = 96

var signature = [3]byte{'F', 'M', 'V'}

// streamHeader is the parsed form of the 96-byte container header.
type streamHeader struct {
	w, h         int32
	fpsN, fpsD   int32
	sarN, sarD   int32
	q            qualityParams
}

// encodeHeader serializes h into exactly DecHeaderSize bytes.
func encodeHeader(h streamHeader) []byte {
	buf := make([]byte, DecHeaderSize)
	buf[0], buf[1], buf[2], buf[3] = signature[0], signature[1], signature[2], streamVersion

	ints := []int32{
		h.w, h.h, h.fpsN, h.fpsD, h.sarN, h.sarD,
		int32(h.q.acYNum), int32(h.q.acYDen),
		int32(h.q.acCNum), int32(h.q.acCDen),
		int32(h.q.dcYNum), int32(h.q.dcYDen),
		int32(h.q.dcCNum), int32(h.q.dcCDen),
		int32(h.q.edgeNum), int32(h.q.edgeDen),
		int32(h.q.hfYNum), int32(h.q.hfYDen),
		int32(h.q.hfCNum), int32(h.q.hfCDen),
		int32(h.q.dzNum), int32(h.q.dzDen),
	}
	off := 4
	for _, v := range ints {
		binary.LittleEndian.PutUint32(buf[off:], uint32(v))
		off += 4
	}
	// Remaining 4 bytes (offset 92..95) are reserved and left zero.
	return buf
}

// decodeHeader parses exactly DecHeaderSize bytes into a streamHeader.
func decodeHeader(buf []byte) (streamHeader, error) {
	if len(buf) < DecHeaderSize {
		return streamHeader{}, ErrShortHeader
	}
	if buf[0] != signature[0] || buf[1] != signature[1] || buf[2] != signature[2] {
		return streamHeader{}, ErrBadSignature
	}
	if buf[3] != streamVersion {
		return streamHeader{}, ErrUnsupportedVersion
	}

	read := func(i int) int32 { return int32(binary.LittleEndian.Uint32(buf[4+4*i:])) }
	var h streamHeader
	h.w, h.h = read(0), read(1)
	h.fpsN, h.fpsD = read(2), read(3)
	h.sarN, h.sarD = read(4), read(5)
	h.q.acYNum, h.q.acYDen = int(read(6)), int(read(7))
	h.q.acCNum, h.q.acCDen = int(read(8)), int(read(9))
	h.q.dcYNum, h.q.dcYDen = int(read(10)), int(read(11))
	h.q.dcCNum, h.q.dcCDen = int(read(12)), int(read(13))
	h.q.edgeNum, h.q.edgeDen = int(read(14)), int(read(15))
	h.q.hfYNum, h.q.hfYDen = int(read(16)), int(read(17))
	h.q.hfCNum, h.q.hfCDen = int(read(18)), int(read(19))
	h.q.dzNum, h.q.dzDen = int(read(20)), int(read(21))

	if h.w == 0 || h.h == 0 || h.fpsD == 0 || h.sarD == 0 {
		return streamHeader{}, ErrInvalidDimensions
	}
	return h, nil
}

// deflateFrame compresses raw with flate at the default level and
// returns the record: uint32 size, uint32 raw length, payload.
func deflateFrame(raw []byte) []byte {
	var compressed []byte
	w, _ := flate.NewWriter(sliceWriter{&compressed}, flate.DefaultCompression)
	_, _ = w.Write(raw)
	_ = w.Close()

	rec := make([]byte, 8+len(compressed))
	binary.LittleEndian.PutUint32(rec[0:4], uint32(4+len(compressed)))
	binary.LittleEndian.PutUint32(rec[4:8], uint32(len(raw)))
	copy(rec[8:], compressed)
	return rec
}

// sliceWriter adapts a *[]byte to io.Writer for flate.NewWriter.
type sliceWriter struct{ buf *[]byte }

func (s sliceWriter) Write(p []byte) (int, error) {
	*s.buf = append(*s.buf, p...)
	return len(p), nil
}

// readFrameRecord reads one frame record from r: a uint32 size field,
// a uint32 raw length, and size-4 bytes of DEFLATE payload, which it
// inflates and validates against rawLength. Returns io.EOF when the
// size field is the zero end-of-stream marker.
func readFrameRecord(r io.Reader) ([]byte, error) {
	var sizeBuf [4]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return nil, errors.Wrap(err, "fmv: reading frame size field")
	}
	size := binary.LittleEndian.Uint32(sizeBuf[:])
	if size == 0 {
		return nil, io.EOF
	}
	if size < 4 {
		return nil, ErrTruncatedFrame
	}

	rest := make([]byte, size)
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, errors.Wrap(err, "fmv: reading frame payload")
	}
	rawLength := binary.LittleEndian.Uint32(rest[0:4])
	compressed := rest[4:]

	raw := make([]byte, 0, rawLength)
	fr := flate.NewReader(&sliceReader{buf: compressed})
	defer fr.Close()
	buf := make([]byte, 32*1024)
	for {
		n, err := fr.Read(buf)
		raw = append(raw, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "fmv: inflating frame payload")
		}
	}
	if uint32(len(raw)) != rawLength {
		return nil, ErrInflateMismatch
	}
	return raw, nil
}

// sliceReader adapts a []byte to io.Reader for flate.NewReader.
type sliceReader struct {
	buf []byte
	pos int
}

func (s *sliceReader) Read(p []byte) (int, error) {
	if s.pos >= len(s.buf) {
		return 0, io.EOF
	}
	n := copy(p, s.buf[s.pos:])
	s.pos += n
	return n, nil
}

// endMarker is the 4 zero bytes that terminate every finalized stream.
var endMarker = [4]byte{0, 0, 0, 0}
