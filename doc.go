// Package epubsplit splits ePub books into one plain-text file per chapter.
//
// Reading order comes from the OPF spine alone; the NCX and ePub 3 nav
// documents are ignored. Each spine entry is resolved through the manifest,
// read from the archive, converted to text and written as
// "NN_<href>.txt", where NN is the 1-based spine position. Chapters whose
// text is shorter than [DefaultMinContentLength] bytes are treated as filler
// and skipped; the numbering of later chapters does not shift.
//
// # Splitting a book
//
// [Splitter] runs the whole pipeline for one input file:
//
//	s := epubsplit.NewSplitter(epubsplit.Options{
//	    OutputRoot: "/home/me/Documents/Split_Books",
//	})
//	summary, err := s.Split(ctx, "book.epub")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(summary.Written), "chapters in", summary.Dir)
//
// # Lower-level access
//
// [Open] resolves the container and package documents of an ePub and
// returns a [Book]; [Extractor.Walk] visits its spine positions in order:
//
//	book, err := epubsplit.Open("book.epub")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer book.Close()
//
//	ex := epubsplit.NewExtractor(epubsplit.DefaultMinContentLength, epubsplit.DefaultWrapWidth)
//	err = ex.Walk(ctx, book, func(ch epubsplit.Chapter) error {
//	    fmt.Println(ch.Index, ch.Path, ch.Skip)
//	    return nil
//	})
//
// # Error Handling
//
// Setup failures are reported with sentinel errors matched by errors.Is:
//   - [ErrArchive] – the input is not a ZIP container
//   - [ErrInvalidEPub] – META-INF/container.xml is missing or malformed
//   - [ErrMissingRootfile], [ErrMissingFullPath] – container.xml names no package
//   - [ErrInvalidPackage] – the OPF cannot be read or parsed
//   - [ErrMissingManifest], [ErrMissingSpine] – the OPF lacks a section
//   - [ErrDRMProtected] – a chapter entry is encrypted; carried by
//     SkipEncrypted chapters, never returned by Open
//
// Per-chapter problems never fail a run; they surface as [Chapter.Skip].
// Output failures are reported as [ErrWrite] and abort the run.
package epubsplit
