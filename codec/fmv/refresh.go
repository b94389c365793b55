/*
DESCRIPTION
  refresh.go implements cyclic intra refresh: every macroblock is
  assigned to one of K rotating groups so that, over K consecutive P
  frames, every macroblock is forced to intra-code at least once, even
  on content too static to ever trip the scene-cut detector. Groups
  are split into two checkerboard-parity classes so adjacent
  macroblocks refresh in different frames, and within a class the
  group id is a hash of the macroblock coordinate so the refreshed
  set looks scattered rather than banded.

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

// cirGroupCount is the number of rotating refresh groups; a
// macroblock is force-coded intra roughly once every cirGroupCount P
// frames.
const cirGroupCount = 120

// hashXY scrambles a macroblock coordinate into a group-selection
// hash; the constants are large odd numbers chosen only for their
// mixing properties, not for any domain meaning.
func hashXY(x, y uint32) uint32 {
	return (x*73856093)^(y*19349663) ^ 0x9e3779b9
}

// refreshMap holds the per-macroblock group assignment and the
// rotating counter that selects which group is forced intra on the
// current P frame.
type refreshMap struct {
	k     int
	frame int
	gid   []uint16
}

// buildRefreshMap assigns every macroblock in an mbW x mbH grid to a
// refresh group: even-parity (mx+my) macroblocks draw from a block of
// groups sized proportionally to their share of the grid, odd-parity
// macroblocks from the remaining groups, and within each parity class
// the specific group is hashXY(mx,my) mod (class size).
func buildRefreshMap(mbW, mbH int) *refreshMap {
	n := mbW * mbH
	r := &refreshMap{k: cirGroupCount, gid: make([]uint16, n)}
	if r.k <= 1 {
		r.k = 1
		return r
	}
	nA := 0
	for my := 0; my < mbH; my++ {
		for mx := 0; mx < mbW; mx++ {
			if (mx+my)&1 == 0 {
				nA++
			}
		}
	}
	kA := (r.k*nA + n/2) / n
	if kA < 1 {
		kA = 1
	}
	if kA > r.k-1 {
		kA = r.k - 1
	}
	kB := r.k - kA

	for my := 0; my < mbH; my++ {
		for mx := 0; mx < mbW; mx++ {
			idx := my*mbW + mx
			parity := (mx + my) & 1
			base := 0
			kcol := kA
			if parity == 1 {
				base = kA
				kcol = kB
			}
			g := uint16(base)
			if kcol > 0 {
				g = uint16(base + int(hashXY(uint32(mx), uint32(my))%uint32(kcol)))
			}
			r.gid[idx] = g
		}
	}
	return r
}

// group returns the group id forced intra on the current P frame.
func (r *refreshMap) group() int {
	if r.k <= 0 {
		return 0
	}
	return r.frame % r.k
}

// advance rotates the refresh counter after a P frame has been coded.
func (r *refreshMap) advance() {
	if r.k > 0 {
		r.frame = (r.frame + 1) % r.k
	}
}

// forced reports whether the macroblock at flat index mbi must be
// coded intra this frame under the refresh schedule.
func (r *refreshMap) forced(mbi int) bool {
	return r.gid[mbi] == uint16(r.group())
}
