/*
DESCRIPTION
  decoder.go implements the public Decoder: NewDecoder consumes the
  96-byte container header and rebuilds the quant tables and
  perceptual window from it, then NextFrame pulls one frame record at
  a time from an io.Reader, decodes it (I or P), in-loop filters the
  reconstruction, and converts it to packed XBGR.

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
	"io"

	"github.com/ausocean/fmv/internal/logging"
)

// Decoder turns a stream of frame records, given one NextFrame call
// at a time, back into packed XBGR frames. It is not safe for
// concurrent use.
type Decoder struct {
	w, h       int
	fpsN, fpsD int32
	sarN, sarD int32
	qp         qualityParams
	qy, qc     [64]byte
	w8         [64]uint16

	curY, curU, curV *plane
	refY, refU, refV *plane

	closed bool
	log    logging.Logger
}

// NewDecoder consumes exactly DecHeaderSize bytes of header and
// returns a Decoder ready to decode the frame records that follow.
func NewDecoder(header []byte, log logging.Logger) (*Decoder, error) {
	h, err := decodeHeader(header)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.NoOp()
	}

	qy, qc := buildQuants(h.q)
	w, hh := int(h.w), int(h.h)
	d := &Decoder{
		w: w, h: hh,
		fpsN: h.fpsN, fpsD: h.fpsD,
		sarN: h.sarN, sarD: h.sarD,
		qp: h.q,
		qy: qy, qc: qc,
		w8: buildWindow(),

		curY: newPlane(w, hh, 0),
		curU: newPlane(w/2, hh/2, 128),
		curV: newPlane(w/2, hh/2, 128),
		refY: newPlane(w, hh, 0),
		refU: newPlane(w/2, hh/2, 128),
		refV: newPlane(w/2, hh/2, 128),

		log: log,
	}
	log.Debug("decoder created", "w", w, "h", hh)
	return d, nil
}

// Width and Height report the stream's picture geometry.
func (d *Decoder) Width() int  { return d.w }
func (d *Decoder) Height() int { return d.h }

// FrameRate reports the stream's frames-per-second as a ratio.
func (d *Decoder) FrameRate() (n, dnm int32) { return d.fpsN, d.fpsD }

// AspectRatio reports the stream's sample aspect ratio.
func (d *Decoder) AspectRatio() (n, dnm int32) { return d.sarN, d.sarD }

// NextFrame reads one frame record from r, decodes it, and returns
// the picture as packed 32-bit XBGR (R,G,B,pad per pixel). It returns
// io.EOF once the end-of-stream marker has been read, and
// ErrClosedStream on any call after that.
func (d *Decoder) NextFrame(r io.Reader) ([]byte, error) {
	if d.closed {
		return nil, ErrClosedStream
	}
	raw, err := readFrameRecord(r)
	if err == io.EOF {
		d.closed = true
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	if len(raw) < 1 {
		return nil, ErrMalformedFrame
	}

	switch raw[0] {
	case frameTypeI:
		if err := d.decodeIFrame(raw[1:]); err != nil {
			return nil, err
		}
	case frameTypeP:
		if err := d.decodePFrame(raw[1:]); err != nil {
			return nil, err
		}
	default:
		return nil, ErrMalformedFrame
	}

	out := make([]byte, d.w*d.h*4)
	yuv420ToXBGR(d.curY, d.curU, d.curV, out)
	return out, nil
}

// decodeIFrame decodes an I frame's three intra-coded planes in
// sequence, then applies the in-loop filters.
func (d *Decoder) decodeIFrame(z []byte) error {
	var err error
	z, err = decodePlaneI(z, d.curY, &d.qy, &d.w8)
	if err != nil {
		return err
	}
	z, err = decodePlaneI(z, d.curU, &d.qc, &d.w8)
	if err != nil {
		return err
	}
	_, err = decodePlaneI(z, d.curV, &d.qc, &d.w8)
	if err != nil {
		return err
	}

	deblockPlane(d.curY, false)
	deblockPlane(d.curU, true)
	deblockPlane(d.curV, true)
	deringLuma(d.curY)
	return nil
}

// decodePlaneI decodes every 8x8 block of a plane from z in raster
// order, returning the unconsumed remainder of z.
func decodePlaneI(z []byte, dst *plane, q *[64]byte, w8 *[64]uint16) ([]byte, error) {
	w, h := dst.w, dst.h
	var zzq, rq [64]int16
	var blk [64]byte
	var err error
	for y := 0; y < h; y += 8 {
		for x := 0; x < w; x += 8 {
			bwid, bhgt := blkBounds(x, y, w, h)
			z, err = rleRead(z, &zzq)
			if err != nil {
				return nil, err
			}
			for i := 0; i < 64; i++ {
				rq[zigZag[i]] = zzq[i]
			}
			if bwid == 8 && bhgt == 8 {
				idctDequantToU8(&rq, q, w8, dst.pix[y*w+x:], w)
			} else {
				idctDequantToU8(&rq, q, w8, blk[:], 8)
				storeBlock(dst, x, y, blk[:])
			}
		}
	}
	return z, nil
}

// decodePFrame decodes a P frame macroblock by macroblock: SKIP
// copies the reference block, INTER(mv)/INTER(0) adds a decoded
// residual to a motion-compensated predictor, and INTRA decodes a
// standalone block per the coded-block-pattern, filling an
// uncoded chroma/luma sub-block with the neutral level 128 exactly
// as the encoder does for a forced-intra sub-block whose CBP bit is
// clear.
func (d *Decoder) decodePFrame(z []byte) error {
	d.refY.copyFrom(d.curY)
	d.refU.copyFrom(d.curU)
	d.refV.copyFrom(d.curV)

	w, h := d.w, d.h
	var err error
	for yb := 0; yb < h; yb += 16 {
		for xb := 0; xb < w; xb += 16 {
			if len(z) < 1 {
				return ErrMalformedFrame
			}
			mode := z[0]
			z = z[1:]
			cx, cy := xb>>1, yb>>1

			switch mode {
			case modeSkip:
				d.copyRefMB(xb, yb, cx, cy)

			case modeInter, modeInterZero:
				var dx8, dy8 int8
				if mode == modeInter {
					if len(z) < 2 {
						return ErrMalformedFrame
					}
					dx8, dy8 = int8(z[0]), int8(z[1])
					z = z[2:]
				}
				z, err = d.decodeInterMB(z, xb, yb, cx, cy, dx8, dy8)
				if err != nil {
					return err
				}

			case modeIntra:
				z, err = d.decodeIntraMB(z, xb, yb, cx, cy)
				if err != nil {
					return err
				}

			default:
				return ErrMalformedFrame
			}
		}
	}

	deblockPlane(d.curY, false)
	deblockPlane(d.curU, true)
	deblockPlane(d.curV, true)
	deringLuma(d.curY)
	return nil
}

// copyRefMB copies a macroblock's luma and chroma blocks directly
// from the reference reconstruction, used for SKIP.
func (d *Decoder) copyRefMB(xb, yb, cx, cy int) {
	for by := 0; by < 2; by++ {
		for bx := 0; bx < 2; bx++ {
			x, y := xb+bx*8, yb+by*8
			blk := copyBlockFrom(d.refY, x, y)
			storeBlock(d.curY, x, y, blk[:])
		}
	}
	blkU := copyBlockFrom(d.refU, cx, cy)
	storeBlock(d.curU, cx, cy, blkU[:])
	blkV := copyBlockFrom(d.refV, cx, cy)
	storeBlock(d.curV, cx, cy, blkV[:])
}

// decodeInterMB reads the shared CBP byte and up to six RLE blocks
// for an INTER(mv)/INTER(0) macroblock, adding each decoded residual
// to its motion-compensated predictor.
func (d *Decoder) decodeInterMB(z []byte, xb, yb, cx, cy int, dx8, dy8 int8) ([]byte, error) {
	if len(z) < 1 {
		return nil, ErrMalformedFrame
	}
	cbp := z[0]
	z = z[1:]

	for by := 0; by < 2; by++ {
		for bx := 0; bx < 2; bx++ {
			x, y := xb+bx*8, yb+by*8
			idx := by*2 + bx
			var add16 [64]int16
			var err error
			if cbp&(1<<uint(idx)) != 0 {
				z, err = readResidualS16(z, &d.qy, &d.w8, add16[:])
				if err != nil {
					return nil, err
				}
			}
			var pred, out8 [64]byte
			copyBlockFracLuma(d.refY, x, y, int(dx8), int(dy8), pred[:])
			for i := 0; i < 64; i++ {
				out8[i] = clampByte(int(pred[i]) + int(add16[i]))
			}
			storeBlock(d.curY, x, y, out8[:])
		}
	}

	if err := d.decodeInterChroma(&z, d.refU, d.curU, cx, cy, dx8, dy8, cbp&(1<<4) != 0); err != nil {
		return nil, err
	}
	if err := d.decodeInterChroma(&z, d.refV, d.curV, cx, cy, dx8, dy8, cbp&(1<<5) != 0); err != nil {
		return nil, err
	}
	return z, nil
}

func (d *Decoder) decodeInterChroma(z *[]byte, ref, cur *plane, cx, cy int, dx8, dy8 int8, coded bool) error {
	var add16 [64]int16
	if coded {
		zz, err := readResidualS16(*z, &d.qc, &d.w8, add16[:])
		if err != nil {
			return err
		}
		*z = zz
	}
	var pred, out8 [64]byte
	copyBlockFracChroma(ref, cx, cy, int(dx8), int(dy8), pred[:])
	for i := 0; i < 64; i++ {
		out8[i] = clampByte(int(pred[i]) + int(add16[i]))
	}
	storeBlock(cur, cx, cy, out8[:])
	return nil
}

// readResidualS16 reads one RLE block and inverse-transforms it into
// a signed residual, for addition to a motion-compensated predictor.
func readResidualS16(z []byte, q *[64]byte, w8 *[64]uint16, dst []int16) ([]byte, error) {
	var zzq, rq [64]int16
	z, err := rleRead(z, &zzq)
	if err != nil {
		return nil, err
	}
	for i := 0; i < 64; i++ {
		rq[zigZag[i]] = zzq[i]
	}
	idctDequantToS16(&rq, q, w8, dst, 8)
	return z, nil
}

// decodeIntraMB reads the shared CBP byte and up to six RLE blocks
// for an INTRA macroblock, decoding each coded block standalone and
// filling any uncoded block with the neutral level 128.
func (d *Decoder) decodeIntraMB(z []byte, xb, yb, cx, cy int) ([]byte, error) {
	if len(z) < 1 {
		return nil, ErrMalformedFrame
	}
	cbp := z[0]
	z = z[1:]

	for by := 0; by < 2; by++ {
		for bx := 0; bx < 2; bx++ {
			x, y := xb+bx*8, yb+by*8
			idx := by*2 + bx
			blk, zz, err := d.decodeIntraBlock(z, &d.qy, cbp&(1<<uint(idx)) != 0)
			if err != nil {
				return nil, err
			}
			z = zz
			storeBlock(d.curY, x, y, blk[:])
		}
	}

	blkU, z, err := d.decodeIntraBlock(z, &d.qc, cbp&(1<<4) != 0)
	if err != nil {
		return nil, err
	}
	storeBlock(d.curU, cx, cy, blkU[:])

	blkV, z, err := d.decodeIntraBlock(z, &d.qc, cbp&(1<<5) != 0)
	if err != nil {
		return nil, err
	}
	storeBlock(d.curV, cx, cy, blkV[:])
	return z, nil
}

func (d *Decoder) decodeIntraBlock(z []byte, q *[64]byte, coded bool) ([64]byte, []byte, error) {
	var blk [64]byte
	if !coded {
		for i := range blk {
			blk[i] = 128
		}
		return blk, z, nil
	}
	var zzq, rq [64]int16
	z, err := rleRead(z, &zzq)
	if err != nil {
		return blk, nil, err
	}
	for i := 0; i < 64; i++ {
		rq[zigZag[i]] = zzq[i]
	}
	idctDequantToU8(&rq, q, &d.w8, blk[:], 8)
	return blk, z, nil
}
