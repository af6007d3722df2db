package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	// Input decoders for "image" sources.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/deepteams/h264"
	"github.com/deepteams/h264/internal/config"
	"github.com/deepteams/h264/yuv"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

func (c *cli) runEnc(args []string) error {
	fs := flag.NewFlagSet("enc", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	configPath := fs.String("config", "", "YAML configuration file; flags override its values")
	format := fs.String("format", "", "input format: i420/image (default: from the file extension)")
	width := fs.Int("width", 0, "i420 frame width, or scale width for images")
	height := fs.Int("height", 0, "i420 frame height, or scale height for images")
	frames := fs.Int("frames", 0, "stop after this many frames (0=all)")
	qp := fs.Int("qp", 0, "luma QP 0-51 (default 28)")
	cqp := fs.Int("cqp", 0, "chroma QP 0-51 (default 28)")
	level := fs.Int("level", 0, "level_idc, e.g. 31 (0=lowest that fits)")
	pcmLuma := fs.Int("pcm_luma", 0, "luma SAD above which a macroblock is sent raw (<=0 disables)")
	pcmChroma := fs.Int("pcm_chroma", 0, "chroma SAD above which a macroblock is sent raw (<=0 disables)")
	sei := fs.String("sei", "", "user data written once as an SEI message")
	output := fs.String("o", "", `output path (default: <input>.264, "-" for stdout)`)
	recon := fs.String("recon", "", "write the reconstructed frames as raw I420 to this path")
	psnr := fs.Bool("psnr", false, "log the PSNR of every frame")
	verbose := fs.Bool("v", false, "log per-frame statistics")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Read(*configPath); err != nil {
			return errors.Wrap(err, "enc")
		}
	}
	if fs.NArg() > 0 {
		cfg.Input.Path = fs.Arg(0)
	}
	if *configPath == "" && fs.NArg() < 1 {
		return errors.New("enc: missing input file\nUsage: gh264 enc [options] <input>")
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["format"] {
		cfg.Input.Format = *format
	} else if imageExts[strings.ToLower(filepath.Ext(cfg.Input.Path))] {
		cfg.Input.Format = config.FormatImage
	}
	apply := map[string]func(){
		"width":      func() { cfg.Input.Width = *width },
		"height":     func() { cfg.Input.Height = *height },
		"frames":     func() { cfg.Input.Frames = *frames },
		"qp":         func() { cfg.Encoder.LumaQP = *qp },
		"cqp":        func() { cfg.Encoder.ChromaQP = *cqp },
		"level":      func() { cfg.Encoder.Level = *level },
		"pcm_luma":   func() { cfg.Encoder.LumaPCMThreshold = *pcmLuma },
		"pcm_chroma": func() { cfg.Encoder.ChromaPCMThreshold = *pcmChroma },
		"sei":        func() { cfg.Encoder.UserData = *sei },
		"o":          func() { cfg.Output.Path = *output },
		"recon":      func() { cfg.Output.Recon = *recon },
		"psnr":       func() { cfg.Output.PSNR = *psnr },
	}
	for name, fn := range apply {
		if set[name] {
			fn()
		}
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if !set["o"] && *configPath == "" {
		cfg.Output.Path = defaultOutput(cfg.Input.Path)
	}
	if err := config.Validate(cfg); err != nil {
		return errors.Wrap(err, "enc")
	}

	log := slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return c.encode(context.Background(), log, cfg)
}

// defaultOutput names the stream after the input: <base>.264, or
// output.264 for stdin.
func defaultOutput(input string) string {
	if input == "-" {
		return "output.264"
	}
	return strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".264"
}

// frameSink encodes frames and writes the optional reconstruction.
type frameSink struct {
	log   *slog.Logger
	enc   *h264.Encoder
	psnr  bool
	rec   *yuv.Frame
	recW  io.Writer
	bytes int
}

func (s *frameSink) put(f *yuv.Frame) error {
	st, err := s.enc.EncodeFrame(f)
	if err != nil {
		return err
	}
	s.bytes += st.Bytes
	attrs := []any{
		"index", st.Index, "i4x4", st.I4x4, "i16x16", st.I16x16, "pcm", st.PCM, "bytes", st.Bytes,
	}
	if s.rec != nil {
		if err := s.enc.Recon(s.rec); err != nil {
			return err
		}
		if s.recW != nil {
			if err := yuv.WriteI420(s.recW, s.rec); err != nil {
				return err
			}
		}
		if s.psnr {
			y, cb, cr := yuv.PSNR(f, s.rec)
			attrs = append(attrs, "psnr_y", fmt.Sprintf("%.2f", y),
				"psnr_cb", fmt.Sprintf("%.2f", cb), "psnr_cr", fmt.Sprintf("%.2f", cr),
				"ssim", fmt.Sprintf("%.4f", yuv.SSIM(f, s.rec)))
		}
	}
	s.log.Debug("frame", attrs...)
	return nil
}

func (c *cli) encode(ctx context.Context, log *slog.Logger, cfg *config.Config) error {
	start := time.Now()
	in, err := c.openInput(cfg.Input.Path)
	if err != nil {
		return err
	}
	defer in.Close()

	// Images are decoded before the output exists so that a bad input
	// leaves nothing behind.
	var img *yuv.Frame
	width, height := cfg.Input.Width, cfg.Input.Height
	if cfg.Input.Format == config.FormatImage {
		if img, err = readImage(in, width, height); err != nil {
			return errors.Wrap(err, "enc: decoding input")
		}
		defer img.Release()
		width, height = img.RawWidth, img.RawHeight
	}

	out, remove, err := c.createOutput(cfg.Output.Path)
	if err != nil {
		return err
	}
	enc, err := h264.NewEncoder(out, width, height, cfg.Options())
	if err != nil {
		out.Close()
		remove()
		return errors.Wrap(err, "enc")
	}

	sink := &frameSink{log: log, enc: enc, psnr: cfg.Output.PSNR}
	if cfg.Output.PSNR || cfg.Output.Recon != "" {
		if sink.rec, err = yuv.NewFrame(width, height); err != nil {
			return err
		}
		defer sink.rec.Release()
	}
	if cfg.Output.Recon != "" {
		rw, removeRecon, err := c.createOutput(cfg.Output.Recon)
		if err != nil {
			out.Close()
			remove()
			return err
		}
		defer func() {
			if rw.Close() != nil {
				removeRecon()
			}
		}()
		sink.recW = rw
	}

	if img != nil {
		err = sink.put(img)
	} else {
		err = encodeI420(ctx, in, width, height, cfg.Input.Frames, sink)
	}
	if cerr := enc.Close(); err == nil {
		err = cerr
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		remove()
		return errors.Wrap(err, "enc")
	}

	log.Info("encoded",
		"input", cfg.Input.Path,
		"output", cfg.Output.Path,
		"frames", enc.Frames(),
		"size", fmt.Sprintf("%dx%d", width, height),
		"bytes", sink.bytes,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

func readImage(r io.Reader, width, height int) (*yuv.Frame, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	if width != 0 && height != 0 {
		return yuv.Scale(src, width, height)
	}
	return yuv.FromImage(src)
}

// encodeI420 reads raw frames on one goroutine and encodes them on another,
// so that reading the next frame overlaps encoding the current one.
func encodeI420(ctx context.Context, r io.Reader, width, height, limit int, sink *frameSink) error {
	g, ctx := errgroup.WithContext(ctx)
	frames := make(chan *yuv.Frame, 2)

	g.Go(func() error {
		defer close(frames)
		for n := 0; limit == 0 || n < limit; n++ {
			f, err := yuv.NewFrame(width, height)
			if err != nil {
				return err
			}
			if err := yuv.ReadI420(r, f); err != nil {
				f.Release()
				if err == io.EOF {
					return nil
				}
				return errors.Wrapf(err, "read frame %d", n)
			}
			select {
			case frames <- f:
			case <-ctx.Done():
				f.Release()
				return ctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		for f := range frames {
			err := sink.put(f)
			f.Release()
			if err != nil {
				return err
			}
		}
		return nil
	})

	return g.Wait()
}
