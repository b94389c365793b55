/*
DESCRIPTION
  fmvstats runs the encoder over a Y4M input and renders a
  compression-ratio-over-time chart from the resulting Stats snapshot.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Command fmvstats charts an encode run's compression ratio over time.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ausocean/fmv/codec/fmv"
	"github.com/ausocean/fmv/internal/logging"
)

const logPath = "fmvstats.log"

func main() {
	in := flag.String("in", "", "input Y4M file")
	out := flag.String("out", "ratio.png", "output chart path (.png)")
	quality := flag.Int("quality", 3, "quality preset 1 (smallest) to 5 (best)")
	flag.Parse()

	log := logging.New(logPath, true)

	if *in == "" {
		fmt.Fprintln(os.Stderr, "fmvstats: -in is required")
		os.Exit(1)
	}
	if *quality < 1 || *quality > 5 {
		fmt.Fprintln(os.Stderr, "fmvstats: -quality must be in [1,5]")
		os.Exit(1)
	}

	stats, err := runEncode(*in, fmv.Quality(*quality-1), log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fmvstats:", err)
		os.Exit(1)
	}

	if err := renderChart(stats, *out); err != nil {
		fmt.Fprintln(os.Stderr, "fmvstats:", err)
		os.Exit(1)
	}
	mean, stddev := frameSizeMeanStddev(stats.FrameSizes)
	fmt.Printf("fmvstats: %d frames (%d I, %d P), %d raw bytes -> %d compressed bytes, chart written to %s\n",
		stats.FramesTotal, stats.FramesI, stats.FramesP, stats.BytesRawTotal, stats.BytesCompressedTotal, *out)
	fmt.Printf("fmvstats: frame size mean %.1f bytes, stddev %.1f bytes\n", mean, stddev)
}

// frameSizeMeanStddev reports the mean and sample standard deviation
// of a run's per-frame compressed sizes.
func frameSizeMeanStddev(sizes []int) (mean, stddev float64) {
	if len(sizes) == 0 {
		return 0, 0
	}
	xs := make([]float64, len(sizes))
	for i, s := range sizes {
		xs[i] = float64(s)
	}
	mean = stat.Mean(xs, nil)
	stddev = stat.StdDev(xs, nil)
	return mean, stddev
}

// runEncode drives a Y4M file through the encoder purely to collect
// its Stats snapshot; the compressed bytes themselves are discarded.
func runEncode(path string, quality fmv.Quality, log logging.Logger) (fmv.Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return fmv.Stats{}, errors.Wrap(err, "fmvstats: opening Y4M file")
	}
	defer f.Close()

	r := bufio.NewReader(f)
	headerLine, err := r.ReadString('\n')
	if err != nil {
		return fmv.Stats{}, errors.Wrap(err, "fmvstats: reading Y4M header")
	}
	w, h, fpsN, fpsD, err := parseY4MHeader(strings.TrimRight(headerLine, "\n"))
	if err != nil {
		return fmv.Stats{}, err
	}

	enc, err := fmv.NewEncoder(w, h, fpsN, fpsD, 1, 1, quality, log)
	if err != nil {
		return fmv.Stats{}, errors.Wrap(err, "fmvstats: creating encoder")
	}

	frameSize := w*h + 2*(w/2)*(h/2)
	buf := make([]byte, frameSize)
	for {
		frameLine, err := r.ReadString('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmv.Stats{}, errors.Wrap(err, "fmvstats: reading FRAME marker")
		}
		if !strings.HasPrefix(frameLine, "FRAME") {
			return fmv.Stats{}, errors.New("fmvstats: expected FRAME marker")
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			return fmv.Stats{}, errors.Wrap(err, "fmvstats: reading frame data")
		}
		if _, err := enc.EncodeYUV420(buf); err != nil {
			return fmv.Stats{}, errors.Wrap(err, "fmvstats: encoding frame")
		}
	}
	if _, err := enc.Finalize(); err != nil {
		return fmv.Stats{}, errors.Wrap(err, "fmvstats: finalizing")
	}
	return enc.Stats(), nil
}

func parseY4MHeader(line string) (w, h int, fpsN, fpsD int32, err error) {
	if !strings.HasPrefix(line, "YUV4MPEG2") {
		return 0, 0, 0, 0, errors.New("fmvstats: not a YUV4MPEG2 stream")
	}
	for _, tok := range strings.Fields(strings.TrimPrefix(line, "YUV4MPEG2")) {
		tag, val := tok[0], tok[1:]
		switch tag {
		case 'W':
			w, _ = strconv.Atoi(val)
		case 'H':
			h, _ = strconv.Atoi(val)
		case 'F':
			parts := strings.SplitN(val, ":", 2)
			n, _ := strconv.Atoi(parts[0])
			d := 1
			if len(parts) == 2 {
				d, _ = strconv.Atoi(parts[1])
			}
			fpsN, fpsD = int32(n), int32(d)
		}
	}
	if w <= 0 || h <= 0 {
		return 0, 0, 0, 0, errors.New("fmvstats: Y4M header missing W/H")
	}
	if fpsN == 0 || fpsD == 0 {
		fpsN, fpsD = 30, 1
	}
	return w, h, fpsN, fpsD, nil
}

// renderChart plots per-frame compression ratio (raw/compressed) over
// frame index using a fixed per-frame raw size derived from the
// stream's own bytes-total/frames-total average, since Stats does not
// retain each frame's raw size individually.
func renderChart(s fmv.Stats, out string) error {
	if len(s.FrameSizes) == 0 {
		return errors.New("fmvstats: no frames encoded")
	}
	rawPerFrame := float64(s.BytesRawTotal) / float64(s.FramesTotal)

	pts := make(plotter.XYs, len(s.FrameSizes))
	for i, compressed := range s.FrameSizes {
		pts[i].X = float64(i)
		if compressed > 0 {
			pts[i].Y = rawPerFrame / float64(compressed)
		}
	}

	p := plot.New()
	p.Title.Text = "Compression ratio over time"
	p.X.Label.Text = "frame index"
	p.Y.Label.Text = "raw / compressed"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "fmvstats: building chart line")
	}
	line.LineStyle.Width = vg.Points(1.2)
	p.Add(line)
	p.Add(plotter.NewGrid())

	if err := p.Save(8*vg.Inch, 4*vg.Inch, out); err != nil {
		return errors.Wrap(err, "fmvstats: saving chart")
	}
	return nil
}
