package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	brine "github.com/brinehq/brine-go"
)

type inspectCmd struct {
	Input string `arg:"" help:"BRINE input file, or - for stdin."`
}

func (c *inspectCmd) Run() error {
	data, err := readInput(c.Input)
	if err != nil {
		return err
	}
	data, err = maybeDecompress(data)
	if err != nil {
		return err
	}
	var sb strings.Builder
	end, err := dumpRecord(&sb, data, 0, 0)
	if err != nil {
		return err
	}
	if end != len(data) {
		fmt.Fprintf(&sb, "warning: %d trailing bytes\n", len(data)-end)
	}
	_, err = os.Stdout.WriteString(sb.String())
	return err
}

// dumpRecord prints the record starting at off and returns the offset just
// past it. Composites recurse; scalars print a short preview of the decoded
// value.
func dumpRecord(sb *strings.Builder, data []byte, off, depth int) (int, error) {
	h, err := brine.ReadHeader(data[off:])
	if err != nil {
		return 0, fmt.Errorf("at offset %d: %w", off, err)
	}
	avail := len(data) - off - brine.HeaderSize
	if h.Length > uint64(avail) {
		return 0, fmt.Errorf("at offset %d: %s declares %d body bytes, %d remain", off, h.Tag, h.Length, avail)
	}
	end := off + brine.HeaderSize + int(h.Length)
	indent := strings.Repeat("  ", depth)
	if h.Tag.Composite() {
		fmt.Fprintf(sb, "%s%08x %s %d bytes\n", indent, off, h.Tag, h.Length)
		cur := off + brine.HeaderSize
		for cur < end {
			next, err := dumpRecord(sb, data, cur, depth+1)
			if err != nil {
				return 0, err
			}
			if next > end {
				return 0, fmt.Errorf("at offset %d: child crosses %s body end", cur, h.Tag)
			}
			cur = next
		}
		return end, nil
	}
	v, _, err := brine.DecodeValue(data[off:end])
	if err != nil {
		return 0, fmt.Errorf("at offset %d: %w", off, err)
	}
	fmt.Fprintf(sb, "%s%08x %s %d bytes  %s\n", indent, off, h.Tag, h.Length, preview(v))
	return end, nil
}

func preview(v brine.Value) string {
	switch v.Kind {
	case brine.KindNull:
		return "null"
	case brine.KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case brine.KindInt, brine.KindFloat:
		s, _ := v.AsString()
		return truncate(s, 40)
	case brine.KindText:
		return truncate(strconv.Quote(string(v.Bytes)), 40)
	case brine.KindBytes:
		return truncate(fmt.Sprintf("%x", v.Bytes), 40)
	default:
		return ""
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
