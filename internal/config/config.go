// Package config loads the YAML configuration of the gh264 command.
package config

import (
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/deepteams/h264"
)

// Input formats.
const (
	FormatI420  = "i420"  // raw planar 4:2:0 frames, size from the config
	FormatImage = "image" // a single PNG, JPEG, GIF, BMP, TIFF or WebP file
)

// Config is the complete gh264 configuration.
type Config struct {
	Input    InputConfig   `yaml:"input"`
	Output   OutputConfig  `yaml:"output"`
	Encoder  EncoderConfig `yaml:"encoder"`
	LogLevel string        `yaml:"log_level"` // debug, info, warn, error
}

// InputConfig describes the source pictures.
type InputConfig struct {
	Path   string `yaml:"path"`   // "-" for stdin
	Format string `yaml:"format"` // i420 or image
	Width  int    `yaml:"width"`  // i420 frame size; for images, scale target
	Height int    `yaml:"height"`
	Frames int    `yaml:"frames"` // stop after this many frames, 0 for all
}

// OutputConfig describes the destination stream.
type OutputConfig struct {
	Path  string `yaml:"path"`  // "-" for stdout
	Recon string `yaml:"recon"` // optional raw I420 file for the reconstruction
	PSNR  bool   `yaml:"psnr"`  // log per-frame PSNR
}

// EncoderConfig mirrors h264.Options.
type EncoderConfig struct {
	LumaQP             int    `yaml:"luma_qp"`
	ChromaQP           int    `yaml:"chroma_qp"`
	FrameCount         int    `yaml:"frame_count"`
	LumaPCMThreshold   int    `yaml:"luma_pcm_threshold"`
	ChromaPCMThreshold int    `yaml:"chroma_pcm_threshold"`
	Level              int    `yaml:"level"`
	UserData           string `yaml:"user_data"`
}

// Default returns the configuration used for keys missing from a file.
func Default() *Config {
	o := h264.DefaultOptions()
	return &Config{
		Input:  InputConfig{Path: "-", Format: FormatI420},
		Output: OutputConfig{Path: "-"},
		Encoder: EncoderConfig{
			LumaQP:             o.LumaQP,
			ChromaQP:           o.ChromaQP,
			FrameCount:         o.FrameCount,
			LumaPCMThreshold:   o.LumaPCMThreshold,
			ChromaPCMThreshold: o.ChromaPCMThreshold,
		},
		LogLevel: "info",
	}
}

// Load reads, parses and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// Read parses a YAML configuration file over the defaults without
// validating it, so that command-line flags can complete it first.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Decode(data)
}

// Decode parses YAML over the defaults.
func Decode(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// Options returns the encoder options the configuration describes.
func (c *Config) Options() *h264.Options {
	e := c.Encoder
	opts := &h264.Options{
		LumaQP:             e.LumaQP,
		ChromaQP:           e.ChromaQP,
		FrameCount:         e.FrameCount,
		LumaPCMThreshold:   e.LumaPCMThreshold,
		ChromaPCMThreshold: e.ChromaPCMThreshold,
		Level:              e.Level,
	}
	if e.UserData != "" {
		opts.UserData = []byte(e.UserData)
	}
	return opts
}

// SlogLevel returns the logging level. Validate guarantees it is known.
func (c *Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
