package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/deepteams/h264"
)

func (c *cli) runInfo(args []string) error {
	if len(args) < 1 {
		return errors.New("info: missing input file\nUsage: gh264 info <input.264>")
	}
	inputPath := args[0]

	in, err := c.openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := h264.Info(in)
	if err != nil {
		return errors.Wrap(err, "info")
	}

	name := inputPath
	if inputPath == "-" {
		name = "<stdin>"
	}

	w := c.stdout
	fmt.Fprintf(w, "File:        %s\n", name)
	fmt.Fprintf(w, "Profile:     %d\n", info.Profile)
	fmt.Fprintf(w, "Level:       %d.%d\n", info.Level/10, info.Level%10)
	fmt.Fprintf(w, "Dimensions:  %d x %d (%d x %d macroblocks)\n", info.Width, info.Height, info.WidthMBs, info.HeightMBs)
	fmt.Fprintf(w, "QP:          %d (chroma offset %d)\n", info.PicInitQP, info.ChromaQPIndexOffset)
	fmt.Fprintf(w, "Frames:      %d\n", info.Frames())
	fmt.Fprintf(w, "NAL units:   %d\n", len(info.Units))
	for _, d := range info.UserData {
		fmt.Fprintf(w, "User data:   %s %q\n", d.UUID, d.Payload)
	}

	if inputPath != "-" {
		if fi, err := os.Stat(inputPath); err == nil {
			fmt.Fprintf(w, "File size:   %d bytes\n", fi.Size())
		}
	}
	return nil
}
