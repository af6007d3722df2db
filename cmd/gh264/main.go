// Command gh264 encodes pictures into intra-only H.264 streams and inspects
// such streams.
//
// Usage:
//
//	gh264 enc [options] <input>   raw I420 or PNG/JPEG/GIF/BMP/TIFF/WebP -> H.264 (use "-" for stdin)
//	gh264 info <input.264>        Display stream parameters
package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if len(os.Args) < 2 {
		c.printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "enc":
		err = c.runEnc(os.Args[2:])
	case "info":
		err = c.runInfo(os.Args[2:])
	case "-h", "-help", "--help", "help":
		c.printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "gh264: unknown command %q\n\n", os.Args[1])
		c.printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "gh264: %v\n", err)
		os.Exit(1)
	}
}

// cli holds the standard streams so commands can run inside tests.
type cli struct {
	stdin          io.Reader
	stdout, stderr io.Writer
}

func (c *cli) printUsage() {
	fmt.Fprintf(c.stderr, `Usage:
  gh264 enc [options] <input>    Encode raw I420 frames or an image to H.264
  gh264 info <input.264>         Display stream parameters

Use "-" as input to read from stdin, "-o -" to write to stdout.

Run "gh264 <command> -h" for command-specific options.
`)
}

// openInput returns an io.ReadCloser for the given path.
// If path is "-", stdin is returned.
func (c *cli) openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(c.stdin), nil
	}
	return os.Open(path)
}

// nopWriteCloser keeps stdout open when the output is "-".
type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// createOutput returns the destination for path and a cleanup that removes
// a partially written file.
func (c *cli) createOutput(path string) (io.WriteCloser, func(), error) {
	if path == "-" {
		return nopWriteCloser{c.stdout}, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { os.Remove(path) }, nil
}
