/*
DESCRIPTION
  quality.go defines the five quality presets and the perceptual
  quantization table derivation that every preset feeds through. The
  base QY/QC tables are JPEG-style luminance/chrominance step tables;
  each preset reshapes them by an edge-band boost, a high-frequency
  attenuation, and independent DC/AC scaling ratios, then rounds and
  clamps to [1,255].

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

// Quality selects one of five fixed presets trading bitrate for
// fidelity. It is part of the public Encoder configuration surface.
type Quality int

const (
	QualityMin Quality = iota
	QualityLow
	QualityDefault
	QualityHigh
	QualityMax
)

// valid reports whether q is one of the five defined presets.
func (q Quality) valid() bool {
	return q >= QualityMin && q <= QualityMax
}

// qualityParams holds the ratios and thresholds a preset contributes.
// The eight quantizer num/den pairs are written verbatim into the
// stream header so a decoder never needs to know about presets; the
// RD lambda and the SKIP thresholds are used by the encoder only and
// are not stored in the stream.
type qualityParams struct {
	acYNum, acYDen int
	acCNum, acCDen int
	dcYNum, dcYDen int
	dcCNum, dcCDen int
	edgeNum, edgeDen int
	hfYNum, hfYDen int
	hfCNum, hfCDen int
	dzNum, dzDen int
	rdLambda int

	skipLumaMax, skipLumaSum       int
	skipChromaMax, skipChromaSum   int
	skipLumaMeanAbsMax             int
	skipChromaMeanAbsMax           int
	skipCoarseMVMargin             int
}

// qualityTable holds the exact numeric presets. These are tuned
// constants, not derived from anything else in the package.
var qualityTable = map[Quality]qualityParams{
	QualityMin: {
		dcYNum: 180, dcYDen: 100,
		dcCNum: 210, dcCDen: 100,
		acYNum: 160, acYDen: 100,
		acCNum: 180, acCDen: 100,
		dzNum: 80, dzDen: 40,
		rdLambda: 110,
		skipLumaMax: 8, skipLumaSum: 2048,
		skipChromaMax: 9, skipChromaSum: 512,
		skipLumaMeanAbsMax: 2, skipChromaMeanAbsMax: 3,
		skipCoarseMVMargin: 16,
		edgeNum: 6, edgeDen: 5,
		hfYNum: 64, hfYDen: 40,
		hfCNum: 68, hfCDen: 40,
	},
	QualityLow: {
		dcYNum: 120, dcYDen: 100,
		dcCNum: 130, dcCDen: 100,
		acYNum: 130, acYDen: 100,
		acCNum: 145, acCDen: 100,
		dzNum: 60, dzDen: 40,
		rdLambda: 60,
		skipLumaMax: 3, skipLumaSum: 384,
		skipChromaMax: 4, skipChromaSum: 96,
		skipLumaMeanAbsMax: 1, skipChromaMeanAbsMax: 1,
		skipCoarseMVMargin: 8,
		edgeNum: 5, edgeDen: 5,
		hfYNum: 56, hfYDen: 40,
		hfCNum: 60, hfCDen: 40,
	},
	QualityDefault: {
		dcYNum: 100, dcYDen: 100,
		dcCNum: 100, dcCDen: 100,
		acYNum: 103, acYDen: 100,
		acCNum: 109, acCDen: 100,
		dzNum: 53, dzDen: 40,
		rdLambda: 42,
		skipLumaMax: 2, skipLumaSum: 256,
		skipChromaMax: 3, skipChromaSum: 64,
		skipLumaMeanAbsMax: 0, skipChromaMeanAbsMax: 1,
		skipCoarseMVMargin: 6,
		edgeNum: 4, edgeDen: 5,
		hfYNum: 47, hfYDen: 40,
		hfCNum: 51, hfCDen: 40,
	},
	QualityHigh: {
		dcYNum: 100, dcYDen: 100,
		dcCNum: 100, dcCDen: 100,
		acYNum: 70, acYDen: 100,
		acCNum: 75, acCDen: 100,
		dzNum: 40, dzDen: 40,
		rdLambda: 28,
		skipLumaMax: 1, skipLumaSum: 128,
		skipChromaMax: 2, skipChromaSum: 32,
		skipLumaMeanAbsMax: 0, skipChromaMeanAbsMax: 0,
		skipCoarseMVMargin: 3,
		edgeNum: 3, edgeDen: 5,
		hfYNum: 43, hfYDen: 40,
		hfCNum: 45, hfCDen: 40,
	},
	QualityMax: {
		dcYNum: 100, dcYDen: 100,
		dcCNum: 100, dcCDen: 100,
		acYNum: 50, acYDen: 100,
		acCNum: 55, acCDen: 100,
		dzNum: 20, dzDen: 40,
		rdLambda: 18,
		skipLumaMax: 0, skipLumaSum: 64,
		skipChromaMax: 1, skipChromaSum: 16,
		skipLumaMeanAbsMax: 0, skipChromaMeanAbsMax: 0,
		skipCoarseMVMargin: 2,
		edgeNum: 2, edgeDen: 5,
		hfYNum: 41, hfYDen: 40,
		hfCNum: 43, hfCDen: 40,
	},
}

// rdLambdaBump returns the Lagrangian multiplier applied to the
// estimated rate of both the INTER and the INTRA candidate in the RD
// mode decision; it is the base lambda scaled by 11/10, rounded to
// nearest.
func rdLambdaBump(q qualityParams) int {
	return (q.rdLambda*11 + 5) / 10
}
