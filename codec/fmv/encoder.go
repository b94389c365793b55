/*
DESCRIPTION
  encoder.go implements the public Encoder: a create, encode (repeated),
  finalize state machine that turns successive YUV 4:2:0 or packed XBGR frames
  into a DEFLATE-wrapped FMV stream. Every call returns exactly the
  bytes that belong on the wire for that call — the 96-byte header is
  prepended to the first frame's output, nothing else is buffered
  across calls.

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
	"github.com/pkg/errors"

	"github.com/ausocean/fmv/internal/logging"
)

// searchRad is the motion search radius in full-resolution pixels; the
// quarter-resolution exhaustive search scans searchRad/4 quarter-
// resolution pixels around the zero vector.
const searchRad = 96

// Encoder turns successive frames of one fixed geometry into an FMV
// stream. It is not safe for concurrent use.
type Encoder struct {
	w, h       int
	fpsN, fpsD int32
	sarN, sarD int32
	quality    Quality
	qp         qualityParams
	qy, qc     [64]byte
	w8         [64]uint16

	rY, rU, rV       *plane
	refY, refU, refV *plane
	y2, r2, y4, r4   *plane

	mbW, mbH, mbN int
	refresh       *refreshMap
	cut           cutDetector

	fidx        int
	wroteHeader bool
	finalized   bool

	stats Stats
	log   logging.Logger
}

// NewEncoder creates an Encoder for a width x height stream at
// fpsN/fpsD frames per second with sample aspect ratio sarN:sarD,
// coding at the given quality preset. log may be nil, in which case a
// no-op logger is used.
func NewEncoder(w, h int, fpsN, fpsD, sarN, sarD int32, quality Quality, log logging.Logger) (*Encoder, error) {
	if w <= 0 || h <= 0 || w&7 != 0 || h&7 != 0 {
		return nil, ErrInvalidDimensions
	}
	if fpsD <= 0 {
		return nil, ErrInvalidFrameRate
	}
	if sarN < 1 || sarD < 1 {
		return nil, ErrInvalidAspect
	}
	if !quality.valid() {
		return nil, ErrInvalidQuality
	}
	if log == nil {
		log = logging.NoOp()
	}

	qp := qualityTable[quality]
	qy, qc := buildQuants(qp)
	mbW, mbH := (w+15)>>4, (h+15)>>4

	e := &Encoder{
		w: w, h: h,
		fpsN: fpsN, fpsD: fpsD,
		sarN: sarN, sarD: sarD,
		quality: quality,
		qp:      qp,
		qy:      qy,
		qc:      qc,
		w8:      buildWindow(),

		rY: newPlane(w, h, 0),
		rU: newPlane(w/2, h/2, 128),
		rV: newPlane(w/2, h/2, 128),

		refY: newPlane(w, h, 0),
		refU: newPlane(w/2, h/2, 128),
		refV: newPlane(w/2, h/2, 128),

		y2: newPlane(w/2, h/2, 0),
		r2: newPlane(w/2, h/2, 0),
		y4: newPlane(w/4, h/4, 0),
		r4: newPlane(w/4, h/4, 0),

		mbW: mbW, mbH: mbH, mbN: mbW * mbH,
		refresh: buildRefreshMap(mbW, mbH),
		log:     log,
	}
	log.Debug("encoder created", "w", w, "h", h, "quality", int(quality), "mb_w", mbW, "mb_h", mbH)
	return e, nil
}

// Stats returns a copy of the encoder's cumulative counters.
func (e *Encoder) Stats() Stats { return e.stats }

// EncodeYUV420 encodes one frame given as contiguous planar Y, then
// U, then V samples at 4:2:0 subsampling, returning the bytes to
// append to the stream (the header, if this is the first call,
// followed by the frame record).
func (e *Encoder) EncodeYUV420(yuv420 []byte) ([]byte, error) {
	if e.finalized {
		return nil, ErrFinalized
	}
	ysz := e.w * e.h
	csz := (e.w / 2) * (e.h / 2)
	if len(yuv420) < ysz+2*csz {
		return nil, errors.Errorf("fmv: yuv420 buffer too short: want %d got %d", ysz+2*csz, len(yuv420))
	}
	yp := &plane{w: e.w, h: e.h, pix: yuv420[:ysz]}
	up := &plane{w: e.w / 2, h: e.h / 2, pix: yuv420[ysz : ysz+csz]}
	vp := &plane{w: e.w / 2, h: e.h / 2, pix: yuv420[ysz+csz : ysz+2*csz]}
	return e.encodeFromPlanes(yp, up, vp)
}

// EncodeXBGR encodes one frame given as w*h packed 32-bit XBGR
// samples (4 bytes per pixel: R, G, B, pad), converting to YUV 4:2:0
// internally.
func (e *Encoder) EncodeXBGR(xbgr []byte) ([]byte, error) {
	if e.finalized {
		return nil, ErrFinalized
	}
	if len(xbgr) < e.w*e.h*4 {
		return nil, errors.Errorf("fmv: xbgr buffer too short: want %d got %d", e.w*e.h*4, len(xbgr))
	}
	yp, up, vp := xbgrToYUV420(xbgr, e.w, e.h)
	return e.encodeFromPlanes(yp, up, vp)
}

// Finalize emits the end-of-stream marker (and the header, if no
// frame was ever encoded) and marks the encoder closed. Any further
// Encode* or Finalize call returns ErrFinalized.
func (e *Encoder) Finalize() ([]byte, error) {
	if e.finalized {
		return nil, ErrFinalized
	}
	e.finalized = true
	var out []byte
	if !e.wroteHeader {
		out = append(out, e.header()...)
		e.wroteHeader = true
	}
	out = append(out, endMarker[:]...)
	e.log.Info("encoder finalized", "frames_total", e.stats.FramesTotal)
	return out, nil
}

func (e *Encoder) header() []byte {
	return encodeHeader(streamHeader{
		w: int32(e.w), h: int32(e.h),
		fpsN: e.fpsN, fpsD: e.fpsD,
		sarN: e.sarN, sarD: e.sarD,
		q: e.qp,
	})
}

// encodeFromPlanes runs the I/P decision and the corresponding coding
// pass, then compresses and frames the result.
func (e *Encoder) encodeFromPlanes(Y, U, V *plane) ([]byte, error) {
	var out []byte
	if !e.wroteHeader {
		out = append(out, e.header()...)
		e.wroteHeader = true
	}

	var raw []byte
	isI := e.fidx == 0 || e.cut.shouldEmitIFrame(e.fidx, Y, e.rY, e.y2, e.r2, e.y4, e.r4)
	if isI {
		raw = e.encodeIFrame(Y, U, V)
		e.cut.framesSinceI = 0
	} else {
		group := e.refresh.group()
		raw = e.encodePFrame(Y, U, V, group)
		e.cut.framesSinceI++
		e.refresh.advance()
	}
	e.fidx++

	rec := deflateFrame(raw)
	out = append(out, rec...)
	e.stats.record(isI, len(raw), len(rec)-8)
	e.stats.LastCutSADPerPx = e.cut.lastSADPerPx
	e.stats.LastCutHistL1 = e.cut.lastHistL1
	return out, nil
}

// encodeIFrame intra-codes every 8x8 block of every plane, then
// in-loop filters the reconstruction, exactly mirroring
// encodePFrame's tail but with no prediction, mode bytes, or CBP: an
// I frame's block stream is simply DC+AC RLE data for every block in
// raster order, one plane at a time (Y, then U, then V).
func (e *Encoder) encodeIFrame(Y, U, V *plane) []byte {
	var buf []byte
	buf = append(buf, frameTypeI)
	buf = e.encodePlaneI(buf, Y, &e.qy, e.rY, false)
	buf = e.encodePlaneI(buf, U, &e.qc, e.rU, true)
	buf = e.encodePlaneI(buf, V, &e.qc, e.rV, true)

	deblockPlane(e.rY, false)
	deblockPlane(e.rU, true)
	deblockPlane(e.rV, true)
	deringLuma(e.rY)
	return buf
}

const (
	frameTypeI = 0
	frameTypeP = 1
)

// fillNeutral is the out-of-frame padding sample used to fill a
// partial edge block before the forward transform: 16 for luma (the
// studio-range black level), 128 for chroma.
func fillNeutral(isChroma bool) byte {
	if isChroma {
		return 128
	}
	return 16
}

func (e *Encoder) encodePlaneI(buf []byte, src *plane, q *[64]byte, recon *plane, isChroma bool) []byte {
	w, h := src.w, src.h
	for y := 0; y < h; y += 8 {
		for x := 0; x < w; x += 8 {
			bwid, bhgt := 8, 8
			if x+8 > w {
				bwid = w - x
			}
			if y+8 > h {
				bhgt = h - y
			}
			var s8 [64]byte
			if bwid == 8 && bhgt == 8 {
				for by := 0; by < 8; by++ {
					copy(s8[by*8:by*8+8], src.pix[(y+by)*w+x:(y+by)*w+x+8])
				}
			} else {
				fill := fillNeutral(isChroma)
				for by := 0; by < 8; by++ {
					for bx := 0; bx < 8; bx++ {
						if bx < bwid && by < bhgt {
							s8[by*8+bx] = src.at(x+bx, y+by)
						} else {
							s8[by*8+bx] = fill
						}
					}
				}
			}

			var f [64]int32
			fdct8x8(s8[:], 8, &f)
			var cq [64]int16
			cq[0] = quantDC(f[0], int16(q[0]))
			for i := 1; i < 64; i++ {
				cq[i] = quantACDeadzone(f[i], int16(q[i]), e.qp.dzNum, e.qp.dzDen)
			}
			var zzq [64]int16
			for i := 0; i < 64; i++ {
				zzq[i] = cq[zigZag[i]]
			}
			buf = rleWrite(buf, &zzq)

			var rq [64]int16
			for i := 0; i < 64; i++ {
				rq[zigZag[i]] = zzq[i]
			}
			var r8 [64]byte
			idctDequantToU8(&rq, q, &e.w8, r8[:], 8)
			storeBlock(recon, x, y, r8[:])
		}
	}
	return buf
}

// mbBounds returns the true pixel width/height of the 16x16
// macroblock at (xb,yb) within a w x h plane, clipped at the
// picture's right/bottom edge.
func mbBounds(xb, yb, w, h int) (bwid, bhgt int) {
	bwid, bhgt = 16, 16
	if xb+16 > w {
		bwid = w - xb
	}
	if yb+16 > h {
		bhgt = h - yb
	}
	return bwid, bhgt
}

// blkBounds is mbBounds' 8x8 counterpart for a single luma or chroma
// sub-block.
func blkBounds(x, y, w, h int) (bwid, bhgt int) {
	bwid, bhgt = 8, 8
	if x+8 > w {
		bwid = w - x
	}
	if y+8 > h {
		bhgt = h - y
	}
	return bwid, bhgt
}

// encodePFrame inter-codes every macroblock of the frame against the
// previous reconstruction, choosing per macroblock between SKIP,
// forced intra refresh, and an RD comparison of INTER vs INTRA, then
// in-loop filters the result exactly as encodeIFrame does.
func (e *Encoder) encodePFrame(Y, U, V *plane, cirGroup int) []byte {
	e.refY.copyFrom(e.rY)
	e.refU.copyFrom(e.rU)
	e.refV.copyFrom(e.rV)

	e.y2.copyFrom(down2Box(Y))
	e.r2.copyFrom(down2Box(e.refY))
	e.y4.copyFrom(down2Box(e.y2))
	e.r4.copyFrom(down2Box(e.r2))

	var buf []byte
	buf = append(buf, frameTypeP)
	lambdaBump := rdLambdaBump(e.qp)

	w, h := e.w, e.h
	cw, ch := w/2, h/2
	w4, h4 := w/4, h/4

	for yb := 0; yb < h; yb += 16 {
		for xb := 0; xb < w; xb += 16 {
			mbx, mby := xb>>4, yb>>4
			mbi := mby*e.mbW + mbx
			forceIntra := e.refresh.forced(mbi)

			if !forceIntra && e.trySkip(&buf, Y, U, V, xb, yb, w, h, cw, ch, w4, h4) {
				continue
			}
			if forceIntra {
				e.codeForcedIntraMB(&buf, Y, U, V, xb, yb, w, h, cw, ch)
				continue
			}
			e.codeRDMB(&buf, Y, U, V, xb, yb, w, h, cw, ch, w4, h4, lambdaBump)
		}
	}

	deblockPlane(e.rY, false)
	deblockPlane(e.rU, true)
	deblockPlane(e.rV, true)
	deringLuma(e.rY)
	return buf
}

// trySkip evaluates the SKIP acceptance rule for the macroblock at
// (xb,yb): small amplitude, small mean drift, and a coarse-MV sanity
// check against the quarter-resolution pyramid. If accepted, it
// writes the SKIP mode byte, copies the reference block into the
// reconstruction and reports true.
func (e *Encoder) trySkip(buf *[]byte, Y, U, V *plane, xb, yb, w, h, cw, ch, w4, h4 int) bool {
	bwid, bhgt := mbBounds(xb, yb, w, h)
	nY := bwid * bhgt
	sumYAbs, maxY, sumYSigned := 0, 0, 0
	for y := 0; y < bhgt; y++ {
		for x := 0; x < bwid; x++ {
			d := int(Y.at(xb+x, yb+y)) - int(e.refY.at(xb+x, yb+y))
			ad := absInt(d)
			sumYAbs += ad
			sumYSigned += d
			if ad > maxY {
				maxY = ad
			}
		}
	}

	cx, cy := xb>>1, yb>>1
	cbw, cbh := blkBounds(cx, cy, cw, ch)
	nC := cbw * cbh
	sumUAbs, maxU, sumUSigned := 0, 0, 0
	sumVAbs, maxV, sumVSigned := 0, 0, 0
	for y := 0; y < cbh; y++ {
		for x := 0; x < cbw; x++ {
			du := int(U.at(cx+x, cy+y)) - int(e.refU.at(cx+x, cy+y))
			dv := int(V.at(cx+x, cy+y)) - int(e.refV.at(cx+x, cy+y))
			au, av := absInt(du), absInt(dv)
			sumUAbs += au
			sumVAbs += av
			sumUSigned += du
			sumVSigned += dv
			if au > maxU {
				maxU = au
			}
			if av > maxV {
				maxV = av
			}
		}
	}

	qp := e.qp
	ampOK := maxY <= qp.skipLumaMax && sumYAbs <= qp.skipLumaSum &&
		maxU <= qp.skipChromaMax && sumUAbs <= qp.skipChromaSum &&
		maxV <= qp.skipChromaMax && sumVAbs <= qp.skipChromaSum
	meanOK := absInt(sumYSigned) <= qp.skipLumaMeanAbsMax*nY &&
		absInt(sumUSigned) <= qp.skipChromaMeanAbsMax*nC &&
		absInt(sumVSigned) <= qp.skipChromaMeanAbsMax*nC

	mv0OK := false
	if w4 >= 4 && h4 >= 4 {
		cx4, cy4 := xb>>2, yb>>2
		s00 := sadBlockClamped(e.y4, cx4, cy4, e.r4, cx4, cy4, 4, 1<<30)
		best := 1 << 30
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				s := sadBlockClamped(e.y4, cx4, cy4, e.r4, cx4+dx, cy4+dy, 4, best)
				if s < best {
					best = s
				}
			}
		}
		mv0OK = s00 <= best+qp.skipCoarseMVMargin
	}

	if !(ampOK && meanOK && mv0OK) {
		return false
	}

	*buf = append(*buf, modeSkip)
	e.copyRefMB(xb, yb, cx, cy)
	return true
}

// copyRefMB copies the four luma and two chroma 8x8 blocks of the
// reference reconstruction at the given macroblock position directly
// into the current reconstruction, used by both SKIP and the
// all-zero INTER shortcut.
func (e *Encoder) copyRefMB(xb, yb, cx, cy int) {
	for by := 0; by < 2; by++ {
		for bx := 0; bx < 2; bx++ {
			x, y := xb+bx*8, yb+by*8
			blk := copyBlockFrom(e.refY, x, y)
			storeBlock(e.rY, x, y, blk[:])
		}
	}
	blkU := copyBlockFrom(e.refU, cx, cy)
	storeBlock(e.rU, cx, cy, blkU[:])
	blkV := copyBlockFrom(e.refV, cx, cy)
	storeBlock(e.rV, cx, cy, blkV[:])
}

// codeForcedIntraMB intra-codes a macroblock forced by the cyclic
// refresh schedule, writing mode INTRA unconditionally (the RD
// comparison against INTER is skipped; refresh exists precisely to
// guarantee an intra hit regardless of cost).
func (e *Encoder) codeForcedIntraMB(buf *[]byte, Y, U, V *plane, xb, yb, w, h, cw, ch int) {
	var zzY [4][64]int16
	var recY [4][64]byte
	for by := 0; by < 2; by++ {
		for bx := 0; bx < 2; bx++ {
			x, y := xb+bx*8, yb+by*8
			bwid, bhgt := blkBounds(x, y, w, h)
			src := copyBlockFrom(Y, x, y)
			idx := by*2 + bx
			tr := trialIBlock(src[:], 8, &e.qy, &e.w8, e.qp, bwid, bhgt)
			zzY[idx] = tr.zzq
			recY[idx] = tr.recon
		}
	}
	cx, cy := xb>>1, yb>>1
	cbw, cbh := blkBounds(cx, cy, cw, ch)
	srcU := copyBlockFrom(U, cx, cy)
	trU := trialIBlock(srcU[:], 8, &e.qc, &e.w8, e.qp, cbw, cbh)
	srcV := copyBlockFrom(V, cx, cy)
	trV := trialIBlock(srcV[:], 8, &e.qc, &e.w8, e.qp, cbw, cbh)

	*buf = append(*buf, modeIntra)
	cbp := makeCBP6(&zzY, &trU.zzq, &trV.zzq)
	*buf = append(*buf, cbp)
	for i := 0; i < 4; i++ {
		if cbp&(1<<uint(i)) != 0 {
			*buf = rleWrite(*buf, &zzY[i])
		}
	}
	if cbp&(1<<4) != 0 {
		*buf = rleWrite(*buf, &trU.zzq)
	}
	if cbp&(1<<5) != 0 {
		*buf = rleWrite(*buf, &trV.zzq)
	}

	for by := 0; by < 2; by++ {
		for bx := 0; bx < 2; bx++ {
			x, y := xb+bx*8, yb+by*8
			rec := recY[by*2+bx]
			storeBlock(e.rY, x, y, rec[:])
		}
	}
	storeBlock(e.rU, cx, cy, trU.recon[:])
	storeBlock(e.rV, cx, cy, trV.recon[:])
}

// codeRDMB runs the full mode decision for one macroblock not forced
// intra and not accepted as SKIP: search a motion vector, trial-code
// both an INTER and an INTRA candidate, and keep whichever has the
// lower Lagrangian cost D + lambda*R. A zero motion vector whose
// residual quantizes entirely to zero collapses to SKIP regardless of
// the RD comparison, matching the reference block copy SKIP already
// produces.
func (e *Encoder) codeRDMB(buf *[]byte, Y, U, V *plane, xb, yb, w, h, cw, ch, w4, h4, lambdaBump int) {
	dxh, dyh := searchBestMV16x16(Y, xb, yb, e.refY, searchRad, e.y2, e.r2, e.y4, e.r4)
	dx8 := int8(clampInt(dxh, -127, 127))
	dy8 := int8(clampInt(dyh, -127, 127))
	isInterZero := dx8 == 0 && dy8 == 0

	var zzY, zzYi [4][64]int16
	var addY [4][64]int16
	var recYi [4][64]byte
	DInter, DIntra := int64(0), int64(0)
	RInter := 1
	if !isInterZero {
		RInter += 2
	}
	RIntra := 1

	for by := 0; by < 2; by++ {
		for bx := 0; bx < 2; bx++ {
			x, y := xb+bx*8, yb+by*8
			bwid, bhgt := blkBounds(x, y, w, h)
			idx := by*2 + bx

			cur := copyBlockFrom(Y, x, y)
			var pred [64]byte
			copyBlockFracLuma(e.refY, x, y, int(dx8), int(dy8), pred[:])
			tp := trialPBlock(cur[:], 8, pred[:], 8, &e.qy, &e.w8, e.qp, true, bwid, bhgt)
			zzY[idx] = tp.zzq
			addY[idx] = tp.add16
			DInter += tp.sse
			RInter += tp.rleBytes

			ti := trialIBlock(cur[:], 8, &e.qy, &e.w8, e.qp, bwid, bhgt)
			zzYi[idx] = ti.zzq
			recYi[idx] = ti.recon
			DIntra += ti.sse
			RIntra += ti.rleBytes
		}
	}

	cx, cy := xb>>1, yb>>1
	cbw, cbh := blkBounds(cx, cy, cw, ch)

	curU := copyBlockFrom(U, cx, cy)
	var predU [64]byte
	copyBlockFracChroma(e.refU, cx, cy, int(dx8), int(dy8), predU[:])
	tpU := trialPBlock(curU[:], 8, predU[:], 8, &e.qc, &e.w8, e.qp, false, cbw, cbh)
	DInter += tpU.sse
	RInter += tpU.rleBytes
	tiU := trialIBlock(curU[:], 8, &e.qc, &e.w8, e.qp, cbw, cbh)
	DIntra += tiU.sse
	RIntra += tiU.rleBytes

	curV := copyBlockFrom(V, cx, cy)
	var predV [64]byte
	copyBlockFracChroma(e.refV, cx, cy, int(dx8), int(dy8), predV[:])
	tpV := trialPBlock(curV[:], 8, predV[:], 8, &e.qc, &e.w8, e.qp, false, cbw, cbh)
	DInter += tpV.sse
	RInter += tpV.rleBytes
	tiV := trialIBlock(curV[:], 8, &e.qc, &e.w8, e.qp, cbw, cbh)
	DIntra += tiV.sse
	RIntra += tiV.rleBytes

	interAllZero := isInterZero && allZero64(&tpU.zzq) && allZero64(&tpV.zzq) &&
		allZero64(&zzY[0]) && allZero64(&zzY[1]) && allZero64(&zzY[2]) && allZero64(&zzY[3])
	if interAllZero {
		*buf = append(*buf, modeSkip)
		e.copyRefMB(xb, yb, cx, cy)
		return
	}

	zerosInter, zerosIntra := 0, 0
	for i := 0; i < 4; i++ {
		if allZero64(&zzY[i]) {
			zerosInter++
		}
		if allZero64(&zzYi[i]) {
			zerosIntra++
		}
	}
	if allZero64(&tpU.zzq) {
		zerosInter++
	}
	if allZero64(&tpV.zzq) {
		zerosInter++
	}
	if allZero64(&tiU.zzq) {
		zerosIntra++
	}
	if allZero64(&tiV.zzq) {
		zerosIntra++
	}
	RInterCBP := RInter - 5*zerosInter + 1
	RIntraCBP := RIntra - 5*zerosIntra + 1
	CInter := DInter + int64(lambdaBump)*int64(RInterCBP)
	CIntra := DIntra + int64(lambdaBump)*int64(RIntraCBP)

	if CIntra < CInter {
		*buf = append(*buf, modeIntra)
		cbp := makeCBP6(&zzYi, &tiU.zzq, &tiV.zzq)
		*buf = append(*buf, cbp)
		for i := 0; i < 4; i++ {
			if cbp&(1<<uint(i)) != 0 {
				*buf = rleWrite(*buf, &zzYi[i])
			}
		}
		if cbp&(1<<4) != 0 {
			*buf = rleWrite(*buf, &tiU.zzq)
		}
		if cbp&(1<<5) != 0 {
			*buf = rleWrite(*buf, &tiV.zzq)
		}
		for by := 0; by < 2; by++ {
			for bx := 0; bx < 2; bx++ {
				x, y := xb+bx*8, yb+by*8
				rec := recYi[by*2+bx]
				storeBlock(e.rY, x, y, rec[:])
			}
		}
		storeBlock(e.rU, cx, cy, tiU.recon[:])
		storeBlock(e.rV, cx, cy, tiV.recon[:])
		return
	}

	if isInterZero {
		*buf = append(*buf, modeInterZero)
	} else {
		*buf = append(*buf, modeInter)
		*buf = append(*buf, byte(dx8), byte(dy8))
	}
	cbp := makeCBP6(&zzY, &tpU.zzq, &tpV.zzq)
	*buf = append(*buf, cbp)
	for i := 0; i < 4; i++ {
		if cbp&(1<<uint(i)) != 0 {
			*buf = rleWrite(*buf, &zzY[i])
		}
	}
	if cbp&(1<<4) != 0 {
		*buf = rleWrite(*buf, &tpU.zzq)
	}
	if cbp&(1<<5) != 0 {
		*buf = rleWrite(*buf, &tpV.zzq)
	}

	for by := 0; by < 2; by++ {
		for bx := 0; bx < 2; bx++ {
			x, y := xb+bx*8, yb+by*8
			var pred, out8 [64]byte
			copyBlockFracLuma(e.refY, x, y, int(dx8), int(dy8), pred[:])
			idx := by*2 + bx
			for i := 0; i < 64; i++ {
				out8[i] = clampByte(int(pred[i]) + int(addY[idx][i]))
			}
			storeBlock(e.rY, x, y, out8[:])
		}
	}
	var predU2, outU [64]byte
	copyBlockFracChroma(e.refU, cx, cy, int(dx8), int(dy8), predU2[:])
	for i := 0; i < 64; i++ {
		outU[i] = clampByte(int(predU2[i]) + int(tpU.add16[i]))
	}
	storeBlock(e.rU, cx, cy, outU[:])

	var predV2, outV [64]byte
	copyBlockFracChroma(e.refV, cx, cy, int(dx8), int(dy8), predV2[:])
	for i := 0; i < 64; i++ {
		outV[i] = clampByte(int(predV2[i]) + int(tpV.add16[i]))
	}
	storeBlock(e.rV, cx, cy, outV[:])
}
