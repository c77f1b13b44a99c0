package epubsplit

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"
)

// maxFilenameBytes is the longest file name most filesystems accept.
const maxFilenameBytes = 255

var (
	illegalFilenameChars = regexp.MustCompile(`[/?<>\\:*|"]`)
	controlFilenameChars = regexp.MustCompile(`[\x00-\x1f\x80-\x9f]`)
	reservedDotNames     = regexp.MustCompile(`^\.+$`)
	windowsReservedNames = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)
	windowsTrailingChars = regexp.MustCompile(`[. ]+$`)
)

// sanitizeFilename removes characters that are unsafe in file names on common
// filesystems. Path separators are dropped rather than replaced, so
// "text/ch01.xhtml" becomes "textch01.xhtml".
func sanitizeFilename(name string) string {
	name = norm.NFC.String(name)
	name = illegalFilenameChars.ReplaceAllString(name, "")
	name = controlFilenameChars.ReplaceAllString(name, "")
	name = reservedDotNames.ReplaceAllString(name, "")
	name = windowsReservedNames.ReplaceAllString(name, "")
	name = windowsTrailingChars.ReplaceAllString(name, "")
	return truncateUTF8(name, maxFilenameBytes)
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

// OutputName returns the file name for the chapter at spine position index
// with manifest href: "NN_<sanitized-href>.txt" with every ".xhtml" and then
// every ".html" removed from the whole name, wherever it occurs.
func OutputName(index int, href string) string {
	name := fmt.Sprintf("%02d_%s.txt", index, sanitizeFilename(href))
	name = strings.ReplaceAll(name, ".xhtml", "")
	return strings.ReplaceAll(name, ".html", "")
}

// BookName returns the output folder name for an input path: its base name
// without the final extension. Dot-files with no other extension keep their
// full name.
func BookName(inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return base
	}
	return stem
}

// Writer writes chapter text files into a single output directory.
type Writer struct {
	fs  afero.Fs
	dir string
}

// NewWriter returns a Writer for dir on fs.
func NewWriter(fs afero.Fs, dir string) *Writer {
	return &Writer{fs: fs, dir: dir}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Reset removes the output directory with everything in it and recreates it
// empty, so two runs never merge their outputs.
func (w *Writer) Reset() error {
	if err := w.fs.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("%w: clear %s: %v", ErrWrite, w.dir, err)
	}
	if err := w.fs.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrWrite, w.dir, err)
	}
	return nil
}

// Write stores the text of ch under its OutputName and returns the file name.
func (w *Writer) Write(ch Chapter) (string, error) {
	name := OutputName(ch.Index, ch.Href)
	target := filepath.Join(w.dir, name)
	if err := afero.WriteFile(w.fs, target, []byte(ch.Text), 0o644); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrWrite, target, err)
	}
	return name, nil
}
