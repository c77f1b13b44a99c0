package epubsplit

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// benchEPubFiles builds a realistic ePub 2 file map with the given number of chapters.
// Each chapter has a title, heading, and a few paragraphs of text.
func benchEPubFiles(numChapters int) map[string]string {
	items := make([][2]string, 0, numChapters)
	spine := make([]string, 0, numChapters)
	files := map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": testContainerXML,
	}

	for i := 1; i <= numChapters; i++ {
		id := fmt.Sprintf("ch%d", i)
		href := fmt.Sprintf("chapter%03d.xhtml", i)
		items = append(items, [2]string{id, href})
		spine = append(spine, id)

		files["OEBPS/"+href] = testXHTML(fmt.Sprintf("Chapter %d", i), fmt.Sprintf(`<h1>Chapter %d</h1>
<p>This is the opening paragraph of chapter %d. It contains enough text to simulate a realistic reading experience for benchmark purposes.</p>
<p>The second paragraph continues the narrative with additional details and descriptions that help establish the setting and characters.</p>
<p>A third paragraph adds more substance to ensure the text extraction benchmarks have meaningful content to process.</p>
<p>Finally, the chapter concludes with a closing paragraph that wraps up the events described in this section of the book.</p>`, i, i))
	}
	files["OEBPS/content.opf"] = testOPF(items, spine...)
	return files
}

// BenchmarkOpen measures the time to Open an ePub file, read its metadata, and close it.
func BenchmarkOpen(b *testing.B) {
	fp := buildTestEPubFile(b, benchEPubFiles(10))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		book, err := Open(fp)
		if err != nil {
			b.Fatalf("Open: %v", err)
		}
		_ = book.Metadata()
		book.Close()
	}
}

// BenchmarkExtract measures reading and converting a single chapter.
func BenchmarkExtract(b *testing.B) {
	book := openTestBook(b, benchEPubFiles(10))
	ex := NewExtractor(DefaultMinContentLength, DefaultWrapWidth)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if ch := ex.Extract(book, 1, "ch1"); !ch.Accepted() {
			b.Fatalf("Extract: chapter skipped (%s)", ch.Skip)
		}
	}
}

// BenchmarkWrapText measures reflowing a long paragraph at a narrow width.
func BenchmarkWrapText(b *testing.B) {
	text := strings.TrimSpace(strings.Repeat("lorem ipsum dolor sit amet ", 400))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = wrapText(text, 80)
	}
}

// BenchmarkSplit measures a full run over a 50-chapter book on an in-memory filesystem.
func BenchmarkSplit(b *testing.B) {
	fs := buildTestEPubFs(b, "/bench.epub", benchEPubFiles(50))
	s := NewSplitter(Options{OutputRoot: "/out", Fs: fs})
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		summary, err := s.Split(ctx, "/bench.epub")
		if err != nil {
			b.Fatalf("Split: %v", err)
		}
		if len(summary.Written) != 50 {
			b.Fatalf("Split wrote %d files, want 50", len(summary.Written))
		}
	}
}
