package fetch

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// Progress renders cumulative byte counts on a single terminal line.
// With an unknown total every update is printed on its own line.
type Progress struct {
	Out   io.Writer
	Total int64

	last    int64
	printed bool
}

func NewProgress(out io.Writer, total int64) *Progress {
	return &Progress{Out: out, Total: total}
}

// Update prints the received byte count; repeated polls with no new data are
// dropped.
func (p *Progress) Update(current int64) {
	if p == nil || p.Out == nil {
		return
	}
	if p.printed && current == p.last {
		return
	}
	p.last = current
	p.printed = true

	if p.Total <= 0 {
		fmt.Fprintf(p.Out, "\r%s\n", humanize.Comma(current))
		return
	}
	if current > p.Total {
		current = p.Total
	}
	pct := float64(current) * 100 / float64(p.Total)
	fmt.Fprintf(p.Out, "\r%s / %s (%.1f%%)", humanize.Comma(current), humanize.Comma(p.Total), pct)
}
