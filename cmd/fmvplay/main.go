/*
DESCRIPTION
  fmvplay decodes an FMV stream back into a sequence of PNG frames, or
  a single raw concatenated XBGR dump when -raw is given.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Command fmvplay decodes an FMV stream into PNGs or a raw XBGR dump.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/ausocean/fmv/codec/fmv"
	"github.com/ausocean/fmv/internal/logging"
)

const logPath = "fmvplay.log"

func main() {
	in := flag.String("in", "", "input .fmv path")
	outDir := flag.String("out", "", "output directory for decoded frames")
	raw := flag.Bool("raw", false, "write a single concatenated .rgb dump instead of PNGs")
	flag.Parse()

	log := logging.New(logPath, true)

	if *in == "" || *outDir == "" {
		fmt.Fprintln(os.Stderr, "fmvplay: -in and -out are required")
		os.Exit(1)
	}

	if err := run(*in, *outDir, *raw, log); err != nil {
		fmt.Fprintln(os.Stderr, "fmvplay:", err)
		os.Exit(1)
	}
}

func run(inPath, outDir string, raw bool, log logging.Logger) error {
	f, err := os.Open(inPath)
	if err != nil {
		return errors.Wrap(err, "fmvplay: opening input")
	}
	defer f.Close()
	r := bufio.NewReader(f)

	header := make([]byte, fmv.DecHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return errors.Wrap(err, "fmvplay: reading header")
	}
	dec, err := fmv.NewDecoder(header, log)
	if err != nil {
		return errors.Wrap(err, "fmvplay: creating decoder")
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrap(err, "fmvplay: creating output directory")
	}

	if raw {
		return decodeRaw(dec, r, filepath.Join(outDir, "frames.rgb"), log)
	}
	return decodePNGs(dec, r, outDir, log)
}

func decodeRaw(dec *fmv.Decoder, r io.Reader, outPath string, log logging.Logger) error {
	out, err := os.Create(outPath)
	if err != nil {
		return errors.Wrap(err, "fmvplay: creating raw output")
	}
	defer out.Close()

	start := time.Now()
	n := 0
	for {
		xbgr, err := dec.NextFrame(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "fmvplay: decoding frame")
		}
		if _, err := out.Write(xbgr); err != nil {
			return errors.Wrap(err, "fmvplay: writing raw frame")
		}
		n++
	}
	log.Info("raw decode complete", "frames", n, "elapsed", time.Since(start).String())
	return nil
}

func decodePNGs(dec *fmv.Decoder, r io.Reader, outDir string, log logging.Logger) error {
	w, h := dec.Width(), dec.Height()
	start := time.Now()
	n := 0
	for {
		xbgr, err := dec.NextFrame(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "fmvplay: decoding frame")
		}
		img := xbgrToImage(xbgr, w, h)
		name := filepath.Join(outDir, fmt.Sprintf("frame%06d.png", n))
		if err := writePNG(name, img); err != nil {
			return err
		}
		n++
	}
	log.Info("PNG decode complete", "frames", n, "elapsed", time.Since(start).String())
	return nil
}

// xbgrToImage packs the decoder's R,G,B,pad-per-pixel output into an
// NRGBA image ready for png.Encode.
func xbgrToImage(xbgr []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		si := i * 4
		di := i * 4
		img.Pix[di+0] = xbgr[si+0]
		img.Pix[di+1] = xbgr[si+1]
		img.Pix[di+2] = xbgr[si+2]
		img.Pix[di+3] = 255
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "fmvplay: creating PNG")
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return errors.Wrap(err, "fmvplay: encoding PNG")
	}
	return nil
}
