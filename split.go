package epubsplit

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// OutputFolder is the directory created under the user's Documents folder
// that holds one sub-directory per split book.
const OutputFolder = "Split_Books"

// Observer receives progress notifications from a Splitter. Implementations
// render them for humans; the Splitter itself only logs.
type Observer interface {
	// BookOpened is called once the package document has been resolved.
	BookOpened(name string, md Metadata, chapters int)

	// ChapterSaved is called after an accepted chapter was written as file.
	ChapterSaved(ch Chapter, file string)

	// ChapterSkipped is called for every spine position that produced no
	// file. file is the name it would have had, or "" when unresolved.
	ChapterSkipped(ch Chapter, file string)

	// Done is called after the last chapter.
	Done(s *Summary)
}

// Summary describes a finished run.
type Summary struct {
	// Book is the book name derived from the input file.
	Book string

	// Dir is the output directory.
	Dir string

	// Chapters is the number of spine entries.
	Chapters int

	// Written lists the written file names in spine order.
	Written []string

	// Skipped counts skipped spine positions per reason.
	Skipped map[SkipReason]int
}

// Options configures a Splitter. Zero values select the defaults.
type Options struct {
	// OutputRoot is the directory that receives one folder per book.
	OutputRoot string

	// MinLength is the minimum chapter text length in bytes. Values <= 0
	// select DefaultMinContentLength; use 1 to keep every non-empty chapter.
	MinLength int

	// Width is the wrap width of converted text. Values <= 0 select
	// DefaultWrapWidth.
	Width int

	// Fs is the filesystem for reading the input and writing output.
	// Defaults to the OS filesystem.
	Fs afero.Fs

	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger

	// Observer receives progress notifications. Optional.
	Observer Observer
}

// Splitter splits ePub files into one text file per chapter.
type Splitter struct {
	root      string
	fs        afero.Fs
	log       *zap.Logger
	observer  Observer
	extractor *Extractor
}

// NewSplitter returns a Splitter configured by opts.
func NewSplitter(opts Options) *Splitter {
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinContentLength
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWrapWidth
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	return &Splitter{
		root:      opts.OutputRoot,
		fs:        opts.Fs,
		log:       opts.Logger,
		observer:  opts.Observer,
		extractor: NewExtractor(opts.MinLength, opts.Width),
	}
}

// OutputDir returns the directory Split writes to for inputPath.
func (s *Splitter) OutputDir(inputPath string) string {
	return filepath.Join(s.root, BookName(inputPath))
}

// Split opens the ePub at inputPath, recreates its output directory and
// writes every accepted chapter into it.
//
// Setup failures (unreadable archive, bad container or package document)
// return before the output directory is touched. A write failure aborts the
// run and leaves the files written so far in place.
func (s *Splitter) Split(ctx context.Context, inputPath string) (*Summary, error) {
	name := BookName(inputPath)
	log := s.log.With(zap.String("book", name))

	book, err := OpenFs(s.fs, inputPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", inputPath, err)
	}
	defer book.Close()

	for _, w := range book.Warnings() {
		log.Warn("ePub structure warning", zap.String("warning", w))
	}
	log.Debug("package resolved",
		zap.String("opf", book.PackagePath()),
		zap.Int("manifest", len(book.pkg.Manifest)),
		zap.Int("spine", len(book.pkg.Spine)),
		zap.String("title", book.pkg.Metadata.Title()),
	)

	summary := &Summary{
		Book:     name,
		Dir:      s.OutputDir(inputPath),
		Chapters: len(book.pkg.Spine),
		Skipped:  make(map[SkipReason]int),
	}
	s.observer.BookOpened(name, book.Metadata(), summary.Chapters)

	w := NewWriter(s.fs, summary.Dir)
	if err := w.Reset(); err != nil {
		return nil, err
	}

	err = s.extractor.Walk(ctx, book, func(ch Chapter) error {
		if !ch.Accepted() {
			summary.Skipped[ch.Skip]++
			s.logSkip(log, ch)
			file := ""
			if ch.Skip != SkipUnresolved {
				file = OutputName(ch.Index, ch.Href)
			}
			s.observer.ChapterSkipped(ch, file)
			return nil
		}

		file, err := w.Write(ch)
		if err != nil {
			return err
		}
		summary.Written = append(summary.Written, file)
		log.Debug("chapter written", zap.Int("index", ch.Index), zap.String("file", file), zap.Int("bytes", len(ch.Text)))
		s.observer.ChapterSaved(ch, file)
		return nil
	})
	if err != nil {
		return summary, err
	}

	s.observer.Done(summary)
	return summary, nil
}

func (s *Splitter) logSkip(log *zap.Logger, ch Chapter) {
	fields := []zap.Field{
		zap.Int("index", ch.Index),
		zap.String("idref", ch.IDRef),
		zap.String("path", ch.Path),
		zap.Stringer("reason", ch.Skip),
	}
	switch ch.Skip {
	case SkipUnreadable, SkipEncrypted:
		log.Warn("chapter skipped", append(fields, zap.Error(ch.Err))...)
	case SkipTooShort:
		log.Debug("chapter skipped", append(fields, zap.Int("bytes", len(ch.Text)))...)
	default:
		log.Debug("chapter skipped", fields...)
	}
}

type nopObserver struct{}

func (nopObserver) BookOpened(string, Metadata, int) {}
func (nopObserver) ChapterSaved(Chapter, string) {}
func (nopObserver) ChapterSkipped(Chapter, string) {}
func (nopObserver) Done(*Summary) {}
