/*
DESCRIPTION
  fmvenc encodes a Y4M file, or a directory of numerically named PNGs,
  into an FMV stream.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Command fmvenc encodes Y4M or PNG-directory input into an FMV stream.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/ausocean/fmv/codec/fmv"
	"github.com/ausocean/fmv/internal/logging"
)

// Logging configuration, matching the teacher's cmd/looper convention
// of a rotated file sink plus an optional console tee.
const (
	logPath    = "fmvenc.log"
	logConsole = true
)

func main() {
	in := flag.String("in", "", "input Y4M file or PNG directory")
	out := flag.String("out", "", "output .fmv path")
	quality := flag.Int("quality", 3, "quality preset 1 (smallest) to 5 (best)")
	fps := flag.String("fps", "25:1", "frame rate as n[:d], used for a PNG directory input")
	watch := flag.Bool("watch", false, "watch the PNG directory for newly written frames instead of exiting at EOF")
	flag.Parse()

	log := logging.New(logPath, logConsole)

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "fmvenc: -in and -out are required")
		os.Exit(1)
	}
	q, err := mapQuality(*quality)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fmvenc:", err)
		os.Exit(1)
	}

	info, err := os.Stat(*in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fmvenc:", err)
		os.Exit(1)
	}

	outFile, err := os.Create(*out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fmvenc:", err)
		os.Exit(1)
	}
	defer outFile.Close()

	if info.IsDir() {
		fpsN, fpsD, err := parseFPS(*fps)
		if err != nil {
			fmt.Fprintln(os.Stderr, "fmvenc:", err)
			os.Exit(1)
		}
		err = encodePNGDir(*in, outFile, fpsN, fpsD, q, *watch, log)
	} else {
		err = encodeY4M(*in, outFile, q, log)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "fmvenc:", err)
		os.Exit(1)
	}
}

// mapQuality maps the 1..5 CLI scale onto fmv.Quality's 0..4 enum.
func mapQuality(q int) (fmv.Quality, error) {
	if q < 1 || q > 5 {
		return 0, errors.Errorf("fmvenc: -quality must be in [1,5], got %d", q)
	}
	return fmv.Quality(q - 1), nil
}

func parseFPS(s string) (n, d int32, err error) {
	parts := strings.SplitN(s, ":", 2)
	num, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, errors.Wrap(err, "fmvenc: invalid -fps")
	}
	den := 1
	if len(parts) == 2 {
		den, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, errors.Wrap(err, "fmvenc: invalid -fps")
		}
	}
	return int32(num), int32(den), nil
}

// y4mHeader holds the fields parsed from a YUV4MPEG2 stream header.
type y4mHeader struct {
	w, h       int
	fpsN, fpsD int32
	sarN, sarD int32
}

func parseY4MHeader(line string) (y4mHeader, error) {
	var h y4mHeader
	h.sarN, h.sarD = 1, 1
	if !strings.HasPrefix(line, "YUV4MPEG2") {
		return h, errors.New("fmvenc: not a YUV4MPEG2 stream")
	}
	for _, tok := range strings.Fields(strings.TrimPrefix(line, "YUV4MPEG2")) {
		tag, val := tok[0], tok[1:]
		switch tag {
		case 'W':
			h.w, _ = strconv.Atoi(val)
		case 'H':
			h.h, _ = strconv.Atoi(val)
		case 'F':
			n, d := parseRatio(val, 30, 1)
			h.fpsN, h.fpsD = n, d
		case 'A':
			n, d := parseRatio(val, 1, 1)
			if n > 0 && d > 0 {
				h.sarN, h.sarD = n, d
			}
		}
	}
	if h.w <= 0 || h.h <= 0 {
		return h, errors.New("fmvenc: Y4M header missing W/H")
	}
	if h.fpsN == 0 || h.fpsD == 0 {
		h.fpsN, h.fpsD = 30, 1
	}
	return h, nil
}

func parseRatio(s string, defN, defD int32) (int32, int32) {
	parts := strings.SplitN(s, ":", 2)
	n, err := strconv.Atoi(parts[0])
	if err != nil {
		return defN, defD
	}
	d := 1
	if len(parts) == 2 {
		d, err = strconv.Atoi(parts[1])
		if err != nil {
			d = 1
		}
	}
	if d == 0 {
		d = 1
	}
	return int32(n), int32(d)
}

// encodeY4M reads a Y4M stream, encodes every frame, and writes the
// resulting .fmv stream to out.
func encodeY4M(path string, out io.Writer, quality fmv.Quality, log logging.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "fmvenc: opening Y4M file")
	}
	defer f.Close()

	r := bufio.NewReader(f)
	headerLine, err := r.ReadString('\n')
	if err != nil {
		return errors.Wrap(err, "fmvenc: reading Y4M header")
	}
	hdr, err := parseY4MHeader(strings.TrimRight(headerLine, "\n"))
	if err != nil {
		return err
	}

	enc, err := fmv.NewEncoder(hdr.w, hdr.h, hdr.fpsN, hdr.fpsD, hdr.sarN, hdr.sarD, quality, log)
	if err != nil {
		return errors.Wrap(err, "fmvenc: creating encoder")
	}

	frameSize := hdr.w*hdr.h + 2*(hdr.w/2)*(hdr.h/2)
	buf := make([]byte, frameSize)
	start := time.Now()
	n := 0
	for {
		frameLine, err := r.ReadString('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "fmvenc: reading FRAME marker")
		}
		if !strings.HasPrefix(frameLine, "FRAME") {
			return errors.New("fmvenc: expected FRAME marker")
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			return errors.Wrap(err, "fmvenc: reading frame data")
		}
		chunk, err := enc.EncodeYUV420(buf)
		if err != nil {
			return errors.Wrap(err, "fmvenc: encoding frame")
		}
		if _, err := out.Write(chunk); err != nil {
			return errors.Wrap(err, "fmvenc: writing output")
		}
		n++
	}
	tail, err := enc.Finalize()
	if err != nil {
		return errors.Wrap(err, "fmvenc: finalizing")
	}
	if _, err := out.Write(tail); err != nil {
		return errors.Wrap(err, "fmvenc: writing end marker")
	}
	log.Info("encode complete", "frames", n, "elapsed", time.Since(start).String())
	return nil
}

// encodePNGDir encodes every numbered PNG already present in dir, in
// numeric order, then — if watch is set — keeps encoding newly
// written PNGs as fsnotify reports them, until interrupted.
func encodePNGDir(dir string, out io.Writer, fpsN, fpsD int32, quality fmv.Quality, watch bool, log logging.Logger) error {
	names, err := listPNGs(dir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return errors.New("fmvenc: no PNG frames found")
	}

	w, h, err := pngDims(filepath.Join(dir, names[0]))
	if err != nil {
		return err
	}
	enc, err := fmv.NewEncoder(w, h, fpsN, fpsD, 1, 1, quality, log)
	if err != nil {
		return errors.Wrap(err, "fmvenc: creating encoder")
	}

	encodeOne := func(name string) error {
		xbgr, err := readPNGAsXBGR(filepath.Join(dir, name), w, h)
		if err != nil {
			return err
		}
		chunk, err := enc.EncodeXBGR(xbgr)
		if err != nil {
			return errors.Wrap(err, "fmvenc: encoding frame")
		}
		_, err = out.Write(chunk)
		return err
	}

	for _, name := range names {
		if err := encodeOne(name); err != nil {
			return err
		}
	}
	log.Info("initial directory drained", "frames", len(names))

	if watch {
		if err := watchDir(dir, names, encodeOne, log); err != nil {
			return err
		}
	}

	tail, err := enc.Finalize()
	if err != nil {
		return errors.Wrap(err, "fmvenc: finalizing")
	}
	_, err = out.Write(tail)
	return err
}

// watchDir uses fsnotify to encode PNGs written to dir after the
// initial batch named in seen. It returns nil on SIGINT/SIGTERM, or
// when the watcher's Events or Errors channel closes, so the caller
// can finalize the stream.
func watchDir(dir string, seen []string, encodeOne func(string) error, log logging.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "fmvenc: creating watcher")
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return errors.Wrap(err, "fmvenc: watching directory")
	}
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	done := make(map[string]bool, len(seen))
	for _, n := range seen {
		done[n] = true
	}
	for {
		select {
		case <-sig:
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, ".png") || done[name] {
				continue
			}
			done[name] = true
			if err := encodeOne(name); err != nil {
				log.Error("frame encode failed", "file", name, "error", err.Error())
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warning("watcher error", "error", err.Error())
		}
	}
}

func listPNGs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "fmvenc: reading directory")
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".png") {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return numericKey(names[i]) < numericKey(names[j])
	})
	return names, nil
}

// numericKey extracts the leading run of digits from a filename for
// numeric (not lexical) ordering of frame000001.png-style names.
func numericKey(name string) int {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	i := 0
	for i < len(base) && base[i] >= '0' && base[i] <= '9' {
		i++
	}
	n, _ := strconv.Atoi(base[:i])
	return n
}

func pngDims(path string) (w, h int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, errors.Wrap(err, "fmvenc: opening PNG")
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return 0, 0, errors.Wrap(err, "fmvenc: decoding PNG header")
	}
	return cfg.Width, cfg.Height, nil
}

func readPNGAsXBGR(path string, w, h int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "fmvenc: opening PNG")
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, "fmvenc: decoding PNG")
	}
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		return nil, errors.Errorf("fmvenc: frame dimensions changed: want %dx%d got %dx%d", w, h, img.Bounds().Dx(), img.Bounds().Dy())
	}

	out := make([]byte, w*h*4)
	b := img.Bounds()
	at := func(x, y int) (r, g, b2, _ uint32) { return img.At(x, y).RGBA() }
	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < h; y++ {
			srow := nrgba.PixOffset(b.Min.X, b.Min.Y+y)
			drow := y * w * 4
			for x := 0; x < w; x++ {
				si := srow + x*4
				di := drow + x*4
				out[di+0] = nrgba.Pix[si+0]
				out[di+1] = nrgba.Pix[si+1]
				out[di+2] = nrgba.Pix[si+2]
				out[di+3] = 255
			}
		}
		return out, nil
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := at(b.Min.X+x, b.Min.Y+y)
			di := (y*w + x) * 4
			out[di+0] = byte(r >> 8)
			out[di+1] = byte(g >> 8)
			out[di+2] = byte(bl >> 8)
			out[di+3] = 255
		}
	}
	return out, nil
}
