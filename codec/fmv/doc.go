/*
DESCRIPTION
  fmv is a custom MPEG-style intraframe/interframe block codec intended
  for game full-motion-video playback. It compresses a sequence of
  8-bit YUV 4:2:0 or 32-bit RGB raster frames into a self-delimiting
  bitstream, and decodes that stream back into 32-bit packed RGB
  frames suitable for direct blitting.

  The package owns the encoder/decoder pair: the 8x8 forward/inverse
  DCT, perceptual quantization, hierarchical motion estimation with
  half/quarter-pel interpolation, rate-distortion mode decision, scene
  cut detection, cyclic intra refresh, in-loop deblocking/deringing,
  RLE entropy coding and the DEFLATE-wrapped container framing.

  Input acquisition (file/PNG/Y4M readers) and output rendering
  (windowing, shaders, audio) are outside this package; see cmd/fmvenc
  and cmd/fmvplay for examples that provide them.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package fmv implements the FMV block video codec: an intraframe/
// interframe DCT codec with hierarchical motion estimation, in-loop
// filtering and DEFLATE-wrapped frame framing.
package fmv
