package config

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/deepteams/h264/yuv"
)

// Validate checks the configuration and fills derived defaults.
func Validate(cfg *Config) error {
	if cfg.Input.Path == "" {
		cfg.Input.Path = "-"
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = "-"
	}

	switch cfg.Input.Format {
	case FormatI420:
		if err := yuv.CheckSize(cfg.Input.Width, cfg.Input.Height); err != nil {
			return errors.Wrap(err, "input: i420 needs width and height")
		}
	case FormatImage:
		// Zero width and height keep the image size.
		if cfg.Input.Width != 0 || cfg.Input.Height != 0 {
			if err := yuv.CheckSize(cfg.Input.Width, cfg.Input.Height); err != nil {
				return errors.Wrap(err, "input: scale size")
			}
		}
	default:
		return errors.Errorf("input.format %q (must be %q or %q)", cfg.Input.Format, FormatI420, FormatImage)
	}
	if cfg.Input.Frames < 0 {
		return errors.Errorf("input.frames must be >= 0, got %d", cfg.Input.Frames)
	}
	if cfg.Output.Recon != "" && cfg.Output.Recon == cfg.Output.Path {
		return errors.New("output.recon must differ from output.path")
	}

	// The expected frame count sizes the headers; default it from the input.
	if cfg.Encoder.FrameCount <= 1 && cfg.Input.Frames > 0 {
		cfg.Encoder.FrameCount = cfg.Input.Frames
	}
	if err := cfg.Options().Validate(); err != nil {
		return errors.Wrap(err, "encoder")
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return errors.Errorf("log_level %q (must be debug, info, warn or error)", cfg.LogLevel)
	}
	return nil
}
