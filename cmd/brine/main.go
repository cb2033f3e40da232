package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/alecthomas/kong"
	"github.com/klauspost/compress/zstd"

	brine "github.com/brinehq/brine-go"
)

type cli struct {
	Encode  encodeCmd  `cmd:"" help:"Encode JSON into a BRINE record."`
	Decode  decodeCmd  `cmd:"" help:"Decode a BRINE record into JSON."`
	Inspect inspectCmd `cmd:"" help:"Print the record tree of a BRINE file."`
}

func main() {
	log.SetFlags(0)

	var args cli
	ctx := kong.Parse(&args,
		kong.Name("brine"),
		kong.Description("Encode, decode and inspect BRINE records."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(); err != nil {
		log.Fatal(err)
	}
}

type encodeCmd struct {
	Input    string `arg:"" help:"JSON input file, or - for stdin."`
	Output   string `short:"o" help:"Output file. Defaults to stdout."`
	Compress bool   `help:"Compress the record with zstd."`
}

func (c *encodeCmd) Run() error {
	data, err := readInput(c.Input)
	if err != nil {
		return err
	}
	v, err := brine.FromJSON(data)
	if err != nil {
		return err
	}
	out, err := brine.Marshal(v)
	if err != nil {
		return err
	}
	if c.Compress {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		defer enc.Close()
		out = enc.EncodeAll(out, nil)
	}
	return writeOutput(c.Output, out)
}

type decodeCmd struct {
	Input  string `arg:"" help:"BRINE input file, or - for stdin."`
	Output string `short:"o" help:"Output file. Defaults to stdout."`
}

func (c *decodeCmd) Run() error {
	data, err := readInput(c.Input)
	if err != nil {
		return err
	}
	data, err = maybeDecompress(data)
	if err != nil {
		return err
	}
	v, err := brine.Unmarshal(data)
	if err != nil {
		return err
	}
	s, err := brine.ToJSON(v)
	if err != nil {
		return err
	}
	return writeOutput(c.Output, append([]byte(s), '\n'))
}

// zstdMagic opens every zstd frame. No BRINE record can start with it: the
// first byte of a record is a tag, and 0x28 is not an assigned tag.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

func maybeDecompress(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, zstdMagic) {
		return data, nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return out, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
