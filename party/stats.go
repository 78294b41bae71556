//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package party

import (
	"fmt"
	"io"
	"time"

	"github.com/markkurossi/tabulate"
)

// FileSize specifies a byte count.
type FileSize uint64

func (s FileSize) String() string {
	if s > 1000*1000*1000*1000 {
		return fmt.Sprintf("%dTB", s/(1000*1000*1000*1000))
	} else if s > 1000*1000*1000 {
		return fmt.Sprintf("%dGB", s/(1000*1000*1000))
	} else if s > 1000*1000 {
		return fmt.Sprintf("%dMB", s/(1000*1000))
	} else if s > 1000 {
		return fmt.Sprintf("%dkB", s/1000)
	} else {
		return fmt.Sprintf("%dB", s)
	}
}

// PrintStats prints the party's triple supply and I/O report to w.
func (p *Party) PrintStats(w io.Writer) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header(p.String()).SetAlign(tabulate.ML)
	tab.Header("Value").SetAlign(tabulate.MR)

	row := tab.Row()
	row.Column("Uptime")
	row.Column(time.Since(p.started).Round(time.Millisecond).String())

	row = tab.Row()
	row.Column("Tasks")
	row.Column(fmt.Sprintf("%d/%d", p.alloc.Issued(), p.server.Issued()))

	if p.supplier != nil {
		stats := p.supplier.Stats()

		row = tab.Row()
		row.Column("Base OT")
		row.Column(p.setup.Round(time.Millisecond).String())

		row = tab.Row()
		row.Column("Triples").SetFormat(tabulate.FmtBold)
		row.Column(stats.Name).SetFormat(tabulate.FmtBold)

		row = tab.Row()
		row.Column("├╴Generated").SetFormat(tabulate.FmtItalic)
		row.Column(fmt.Sprintf("%d/%d",
			stats.Generated.Load(), stats.GeneratedBitwise.Load()))

		row = tab.Row()
		row.Column("├╴Consumed").SetFormat(tabulate.FmtItalic)
		row.Column(fmt.Sprintf("%d/%d",
			stats.Consumed.Load(), stats.ConsumedBitwise.Load()))

		row = tab.Row()
		row.Column("├╴Batches").SetFormat(tabulate.FmtItalic)
		row.Column(fmt.Sprintf("%d", stats.Batches.Load()))

		row = tab.Row()
		row.Column("├╴Gen").SetFormat(tabulate.FmtItalic)
		row.Column(time.Duration(stats.GenTime.Load()).
			Round(time.Millisecond).String())

		row = tab.Row()
		row.Column("╰╴Wait").SetFormat(tabulate.FmtItalic)
		row.Column(time.Duration(stats.WaitTime.Load()).
			Round(time.Millisecond).String())
	}

	ioStats := p.transport.Stats()
	sent := ioStats.Sent.Load()
	received := ioStats.Recvd.Load()

	row = tab.Row()
	row.Column("Xfer").SetFormat(tabulate.FmtBold)
	row.Column(FileSize(sent + received).String()).SetFormat(tabulate.FmtBold)

	row = tab.Row()
	row.Column("├╴Sent").SetFormat(tabulate.FmtItalic)
	row.Column(FileSize(sent).String())

	row = tab.Row()
	row.Column("├╴Rcvd").SetFormat(tabulate.FmtItalic)
	row.Column(FileSize(received).String())

	row = tab.Row()
	row.Column("╰╴Flcd").SetFormat(tabulate.FmtItalic)
	row.Column(fmt.Sprintf("%v", ioStats.Flushed.Load()))

	tab.Print(w)
}
