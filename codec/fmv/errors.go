/*
DESCRIPTION
  errors.go defines the sentinel errors surfaced at the codec's API
  boundaries. Internal routines return these directly or wrap them with
  github.com/pkg/errors for additional context; there is no retry or
  recovery anywhere in the codec, so every error here is terminal for
  the stream in which it occurs.

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

import "errors"

var (
	// ErrInvalidDimensions indicates a width/height that is not a
	// positive multiple of 8.
	ErrInvalidDimensions = errors.New("fmv: width and height must be positive multiples of 8")

	// ErrInvalidFrameRate indicates a zero frame rate denominator.
	ErrInvalidFrameRate = errors.New("fmv: fps_d must be greater than zero")

	// ErrInvalidAspect indicates a non-positive sample aspect ratio term.
	ErrInvalidAspect = errors.New("fmv: sar_n and sar_d must be at least 1")

	// ErrInvalidQuality indicates a quality preset outside
	// QualityMin..QualityMax.
	ErrInvalidQuality = errors.New("fmv: unknown quality preset")

	// ErrShortHeader indicates fewer than DecHeaderSize bytes were
	// supplied to NewDecoder.
	ErrShortHeader = errors.New("fmv: header shorter than DecHeaderSize")

	// ErrBadSignature indicates the stream does not begin with 'F','M','V'.
	ErrBadSignature = errors.New("fmv: bad stream signature")

	// ErrUnsupportedVersion indicates a version byte other than 0.
	ErrUnsupportedVersion = errors.New("fmv: unsupported stream version")

	// ErrTruncatedFrame indicates a frame record shorter than the
	// minimum 8-byte length+raw-length prefix.
	ErrTruncatedFrame = errors.New("fmv: truncated frame record")

	// ErrInflateMismatch indicates the inflated length did not match
	// the raw_length field.
	ErrInflateMismatch = errors.New("fmv: inflated length does not match raw_length")

	// ErrMalformedFrame indicates an unknown mode byte, RLE overflow,
	// or other structurally invalid frame payload.
	ErrMalformedFrame = errors.New("fmv: malformed frame payload")

	// ErrFinalized indicates an encode call after Finalize.
	ErrFinalized = errors.New("fmv: encoder already finalized")

	// ErrClosedStream indicates a decode call after the end-of-stream
	// marker has been observed.
	ErrClosedStream = errors.New("fmv: stream already at end")
)
