package epubsplit

import (
	"context"
	"errors"
	"fmt"
)

// DefaultMinContentLength is the text length, in bytes, below which a chapter
// is treated as filler (cover, copyright page, blank separator) and skipped.
const DefaultMinContentLength = 200

// Extractor converts spine entries of a Book to plain text and applies the
// minimum length filter.
type Extractor struct {
	// MinLength is the minimum converted text length in bytes. Chapters with
	// len(text) < MinLength are skipped.
	MinLength int

	// Converter turns chapter markup into text.
	Converter *TextConverter
}

// NewExtractor returns an Extractor with the given filter threshold and wrap width.
func NewExtractor(minLength, width int) *Extractor {
	return &Extractor{
		MinLength: minLength,
		Converter: NewTextConverter(width),
	}
}

// Walk visits every spine position of b in reading order and calls fn with
// the extracted Chapter, accepted or skipped. Chapter.Index starts at 1 and
// increments on every position, so gaps from skipped entries are preserved.
//
// Walk stops at the first error returned by fn and checks ctx between
// chapters.
func (e *Extractor) Walk(ctx context.Context, b *Book, fn func(Chapter) error) error {
	for i, idref := range b.pkg.Spine {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(e.Extract(b, i+1, idref)); err != nil {
			return err
		}
	}
	return nil
}

// Extract resolves idref through the manifest, reads the archive entry and
// converts it. Soft failures are reported through Chapter.Skip, never as
// errors.
func (e *Extractor) Extract(b *Book, index int, idref string) Chapter {
	ch := Chapter{Index: index, IDRef: idref}

	href, ok := b.pkg.Href(idref)
	if !ok {
		ch.Skip = SkipUnresolved
		return ch
	}
	ch.Href = href
	ch.Path = b.entryPath(href)
	if ch.Path == "" {
		ch.Skip = SkipMissing
		return ch
	}
	if !b.archive.Has(ch.Path) {
		ch.Skip = SkipMissing
		return ch
	}
	if algo, ok := b.encryption.algorithm(ch.Path); ok {
		ch.Skip = SkipEncrypted
		ch.Err = fmt.Errorf("%w: %s encrypted with %q", ErrDRMProtected, ch.Path, algo)
		return ch
	}

	rc, err := b.archive.Open(ch.Path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			ch.Skip = SkipMissing
		} else {
			ch.Skip = SkipUnreadable
			ch.Err = err
		}
		return ch
	}
	defer rc.Close()

	text, err := e.converter().Convert(rc)
	if err != nil {
		ch.Skip = SkipUnreadable
		ch.Err = fmt.Errorf("epubsplit: convert %s: %w", ch.Path, err)
		return ch
	}
	ch.Text = text

	if len(text) < e.MinLength {
		ch.Skip = SkipTooShort
	}
	return ch
}

func (e *Extractor) converter() *TextConverter {
	if e.Converter == nil {
		return NewTextConverter(DefaultWrapWidth)
	}
	return e.Converter
}
