package dirhash

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/google/vectorio"
)

// Printer collects output lines and writes them in batches.
// When the destination is an *os.File the batch goes out with a single writev.
type Printer struct {
	out   io.Writer
	file  *os.File
	lines [][]byte
	size  int
}

// NewPrinter creates a printer writing to w
func NewPrinter(w io.Writer) *Printer {
	p := &Printer{out: w, lines: make([][]byte, 0, maxIovecs)}
	if f, ok := w.(*os.File); ok {
		p.file = f
	}
	return p
}

// Println queues one line, adding the trailing newline
func (p *Printer) Println(line string) error {
	b := make([]byte, 0, len(line)+1)
	b = append(b, line...)
	b = append(b, '\n')
	p.lines = append(p.lines, b)
	p.size += len(b)
	if len(p.lines) >= maxIovecs {
		return p.Flush()
	}
	return nil
}

// Flush writes every queued line
func (p *Printer) Flush() error {
	if len(p.lines) == 0 {
		return nil
	}
	defer func() {
		p.lines = p.lines[:0]
		p.size = 0
	}()

	if p.file == nil {
		for _, line := range p.lines {
			if _, err := p.out.Write(line); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	}

	iovecs := make([]syscall.Iovec, len(p.lines))
	for i, line := range p.lines {
		iovecs[i].Base = &line[0]
		iovecs[i].SetLen(len(line))
	}

	nw, err := vectorio.WritevRaw(uintptr(p.file.Fd()), iovecs)
	if err != nil {
		return fmt.Errorf("failed to write output with vectorio: %w", err)
	}
	if nw == p.size {
		return nil
	}

	// Short writev: push out whatever is left with plain writes
	skip := nw
	for _, line := range p.lines {
		if skip >= len(line) {
			skip -= len(line)
			continue
		}
		if _, err := p.file.Write(line[skip:]); err != nil {
			return fmt.Errorf("output write incomplete: %w", err)
		}
		skip = 0
	}
	return nil
}

// FormatSum formats a digest line as "<hex>  <path>", or "<path>  <hex>" when swapped
func FormatSum(path, hexSum string, swap bool) string {
	if swap {
		return path + "  " + hexSum
	}
	return hexSum + "  " + path
}
