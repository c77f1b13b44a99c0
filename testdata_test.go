package epubsplit

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

// testContainerXML is a well-formed META-INF/container.xml pointing to OEBPS/content.opf.
const testContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

// buildTestEPubBytes creates an in-memory ZIP archive from the provided files
// map (path → content). A "mimetype" entry, when present, is written first as
// the ePub container format requires; the rest follow in sorted order so archives are
// deterministic.
func buildTestEPubBytes(t testing.TB, files map[string]string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	names := make([]string, 0, len(files))
	for name := range files {
		if name != "mimetype" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := files["mimetype"]; ok {
		names = append([]string{"mimetype"}, names...)
	}

	for _, name := range names {
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("buildTestEPubBytes: create %s: %v", name, err)
		}
		if _, err := io.WriteString(fw, files[name]); err != nil {
			t.Fatalf("buildTestEPubBytes: write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("buildTestEPubBytes: close writer: %v", err)
	}
	return buf.Bytes()
}

// buildTestArchive returns an *Archive over an in-memory ZIP of files.
func buildTestArchive(t testing.TB, files map[string]string) *Archive {
	t.Helper()
	data := buildTestEPubBytes(t, files)
	a, err := NewArchive(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("buildTestArchive: %v", err)
	}
	return a
}

// buildTestEPubFile writes an ePub (ZIP) archive to a temporary file and returns
// the file path. This variant is useful for testing Open() which requires a file path.
func buildTestEPubFile(t testing.TB, files map[string]string) string {
	t.Helper()
	fp := filepath.Join(t.TempDir(), "test.epub")
	if err := os.WriteFile(fp, buildTestEPubBytes(t, files), 0644); err != nil {
		t.Fatalf("buildTestEPubFile: write file: %v", err)
	}
	return fp
}

// buildTestEPubFs writes an ePub archive to name on a fresh in-memory
// filesystem and returns the filesystem.
func buildTestEPubFs(t testing.TB, name string, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, name, buildTestEPubBytes(t, files), 0644); err != nil {
		t.Fatalf("buildTestEPubFs: write %s: %v", name, err)
	}
	return fs
}

// testOPF renders an OPF with one manifest item per id→href pair in items
// (kept in the given order) and the spine idrefs.
func testOPF(items [][2]string, spine ...string) string {
	var manifest, refs strings.Builder
	for _, it := range items {
		fmt.Fprintf(&manifest, "    <item id=%q href=%q media-type=\"application/xhtml+xml\"/>\n", it[0], it[1])
	}
	for _, id := range spine {
		fmt.Fprintf(&refs, "    <itemref idref=%q/>\n", id)
	}
	return `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
    <dc:creator>Test Author</dc:creator>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
` + manifest.String() + `  </manifest>
  <spine>
` + refs.String() + `  </spine>
</package>`
}

// testXHTML wraps body in a minimal XHTML document.
func testXHTML(title, body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>` + title + `</title></head>
<body>
` + body + `
</body>
</html>`
}

// longParagraph returns a <p> whose text is exactly n bytes of ASCII.
func longParagraph(n int) string {
	return "<p>" + strings.Repeat("a", n) + "</p>"
}

// minimalEPubFiles returns a three-chapter ePub whose chapters all pass the
// default length filter.
func minimalEPubFiles() map[string]string {
	return map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": testContainerXML,
		"OEBPS/content.opf": testOPF([][2]string{
			{"ch1", "chapter1.xhtml"},
			{"ch2", "chapter2.xhtml"},
			{"ch3", "chapter3.xhtml"},
		}, "ch1", "ch2", "ch3"),
		"OEBPS/chapter1.xhtml": testXHTML("One", longParagraph(300)),
		"OEBPS/chapter2.xhtml": testXHTML("Two", longParagraph(400)),
		"OEBPS/chapter3.xhtml": testXHTML("Three", longParagraph(500)),
	}
}
