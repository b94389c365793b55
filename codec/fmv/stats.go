/*
DESCRIPTION
  stats.go defines the encoder's running statistics, updated after
  every frame is compressed and appended, and exposed to callers
  (notably cmd/fmvstats) for real-time bitrate/size reporting.

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

// Stats holds cumulative encoder counters. A caller may read a copy
// after any Encode call or Finalize; the Encoder never retains a
// pointer to the caller's own Stats value.
type Stats struct {
	FramesTotal         uint64
	FramesI             uint64
	FramesP             uint64
	BytesRawTotal       uint64
	BytesCompressedTotal uint64

	// LastCutSADPerPx and LastCutHistL1 are the most recent scene-cut
	// detector measurements, in case a caller wants to log or chart
	// why a particular frame was (or wasn't) forced intra.
	LastCutSADPerPx int
	LastCutHistL1   int

	// FrameSizes records the compressed size (size_field value) of
	// every frame emitted so far, in encode order, for tools like
	// cmd/fmvstats that chart a size-over-time curve.
	FrameSizes []int
}

// record updates the cumulative counters for one compressed frame.
func (s *Stats) record(isI bool, raw, compressed int) {
	s.FramesTotal++
	if isI {
		s.FramesI++
	} else {
		s.FramesP++
	}
	s.BytesRawTotal += uint64(raw)
	s.BytesCompressedTotal += uint64(compressed)
	s.FrameSizes = append(s.FrameSizes, 4+compressed)
}
