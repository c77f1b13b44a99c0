// Package console renders splitter progress for a terminal.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/simp-lee/epubsplit"
)

// Printer writes one line per event to an io.Writer. It implements
// epubsplit.Observer.
type Printer struct {
	out   io.Writer
	title *color.Color
	info  *color.Color
	saved *color.Color
	skip  *color.Color
	done  *color.Color
}

var _ epubsplit.Observer = (*Printer)(nil)

// NewPrinter returns a Printer writing to out. Colors follow the fatih/color
// terminal detection unless noColor is set.
func NewPrinter(out io.Writer, noColor bool) *Printer {
	p := &Printer{
		out:   out,
		title: color.New(color.FgCyan, color.Bold),
		info:  color.New(color.Faint),
		saved: color.New(color.FgGreen),
		skip:  color.New(color.FgYellow),
		done:  color.New(color.FgGreen, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.title, p.info, p.saved, p.skip, p.done} {
			c.DisableColor()
		}
	}
	return p
}

// BookOpened prints the book name, its title and authors when known, and the
// number of spine entries about to be processed.
func (p *Printer) BookOpened(name string, md epubsplit.Metadata, chapters int) {
	p.title.Fprintf(p.out, "📖 Opening book: %s\n", name)
	if title := md.Title(); title != "" {
		line := title
		if len(md.Authors) > 0 {
			line += " by " + strings.Join(md.Authors, ", ")
		}
		p.info.Fprintf(p.out, "   %s\n", line)
	}
	fmt.Fprintf(p.out, "🔪 Extracting %d chapters to Plain Text...\n", chapters)
}

// ChapterSaved prints the name of a written chapter file.
func (p *Printer) ChapterSaved(_ epubsplit.Chapter, file string) {
	p.saved.Fprintf(p.out, "   saved: %s\n", file)
}

// ChapterSkipped reports chapters dropped by the length filter, encrypted
// chapters and those that could not be read. Entries missing from the manifest or the archive
// are not shown.
func (p *Printer) ChapterSkipped(ch epubsplit.Chapter, file string) {
	switch ch.Skip {
	case epubsplit.SkipTooShort:
		p.skip.Fprintf(p.out, "   skipping: %s (Content too short)\n", file)
	case epubsplit.SkipUnreadable:
		p.skip.Fprintf(p.out, "   skipping: %s (%v)\n", file, ch.Err)
	case epubsplit.SkipEncrypted:
		p.skip.Fprintf(p.out, "   skipping: %s (encrypted)\n", file)
	}
}

// Done prints the output directory once every chapter has been handled.
func (p *Printer) Done(s *epubsplit.Summary) {
	p.done.Fprintf(p.out, "\n✨ Done! Text files are in: %s\n", s.Dir)
}
