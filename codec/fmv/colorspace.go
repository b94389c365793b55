/*
DESCRIPTION
  colorspace.go converts between packed 32-bit XBGR and planar YUV
  4:2:0, and between planar YUV 4:2:0 and packed 32-bit XBGR, using
  BT.601 integer coefficients at studio range (luma 16-235, chroma
  centred on 128).

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

// xbgrToYUV420 converts a packed 32-bit little-endian XBGR frame (so
// the in-memory byte order per pixel is R,G,B,X) into planar Y, with
// chroma box-downsampled 2x2 by averaging four converted samples.
func xbgrToYUV420(xbgr []byte, w, h int) (y, u, v *plane) {
	y = newPlane(w, h, 0)
	cw, ch := w/2, h/2
	u = newPlane(cw, ch, 0)
	v = newPlane(cw, ch, 0)

	for py := 0; py < h; py++ {
		o := py * w * 4
		for px := 0; px < w; px++ {
			r, g, b := int(xbgr[o+px*4]), int(xbgr[o+px*4+1]), int(xbgr[o+px*4+2])
			y.set(px, py, rgbToY(r, g, b))
		}
	}
	for py := 0; py < h; py += 2 {
		y1 := py + 1
		if y1 >= h {
			y1 = h - 1
		}
		r0 := py * w * 4
		r1 := y1 * w * 4
		for px := 0; px < w; px += 2 {
			x1 := px + 1
			if x1 >= w {
				x1 = w - 1
			}
			r00, g00, b00 := int(xbgr[r0+px*4]), int(xbgr[r0+px*4+1]), int(xbgr[r0+px*4+2])
			r01, g01, b01 := int(xbgr[r0+x1*4]), int(xbgr[r0+x1*4+1]), int(xbgr[r0+x1*4+2])
			r10, g10, b10 := int(xbgr[r1+px*4]), int(xbgr[r1+px*4+1]), int(xbgr[r1+px*4+2])
			r11, g11, b11 := int(xbgr[r1+x1*4]), int(xbgr[r1+x1*4+1]), int(xbgr[r1+x1*4+2])
			su := int(rgbToU(r00, g00, b00)) + int(rgbToU(r01, g01, b01)) + int(rgbToU(r10, g10, b10)) + int(rgbToU(r11, g11, b11))
			sv := int(rgbToV(r00, g00, b00)) + int(rgbToV(r01, g01, b01)) + int(rgbToV(r10, g10, b10)) + int(rgbToV(r11, g11, b11))
			u.set(px/2, py/2, clampByte((su+2)>>2))
			v.set(px/2, py/2, clampByte((sv+2)>>2))
		}
	}
	return y, u, v
}

// rgbToY computes the BT.601 luma sample for one RGB pixel.
func rgbToY(r, g, b int) byte {
	return clampByte(((66*r+129*g+25*b+128)>>8)+16)
}

// rgbToU computes the BT.601 Cb sample for one RGB pixel.
func rgbToU(r, g, b int) byte {
	return clampByte(((-38*r-74*g+112*b+128)>>8)+128)
}

// rgbToV computes the BT.601 Cr sample for one RGB pixel.
func rgbToV(r, g, b int) byte {
	return clampByte(((112*r-94*g-18*b+128)>>8)+128)
}

// yuv420ToXBGR converts planar Y,U,V back into a packed 32-bit
// little-endian XBGR buffer (in-memory byte order R,G,B,X),
// replicating each chroma sample across its 2x2 luma block.
func yuv420ToXBGR(y, u, v *plane, out []byte) {
	w, h := y.w, y.h
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			yv := int(y.at(px, py)) - 16
			if yv < 0 {
				yv = 0
			}
			uv := int(u.at(px>>1, py>>1)) - 128
			vv := int(v.at(px>>1, py>>1)) - 128
			c := 298 * yv
			r := clampByte((c + 409*vv + 128) >> 8)
			g := clampByte((c - 100*uv - 208*vv + 128) >> 8)
			b := clampByte((c + 516*uv + 128) >> 8)
			o := (py*w + px) * 4
			out[o+0] = r
			out[o+1] = g
			out[o+2] = b
			out[o+3] = 255
		}
	}
}
