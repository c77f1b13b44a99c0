package epubsplit

import (
	"archive/zip"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// maxDecompressSize is the maximum allowed decompressed size for a single ZIP entry.
// This guards against zip bomb attacks. Defaults to 256 MB.
const maxDecompressSize int64 = 256 * 1024 * 1024

// Archive is a read-only view of a ZIP container with exact-name entry lookup.
//
// An Archive is not safe for concurrent use by multiple goroutines.
type Archive struct {
	zr     *zip.Reader
	index  map[string]*zip.File
	closer io.Closer // non-nil only when the Archive owns the underlying file
	limit  int64
}

// OpenArchive opens the ZIP file at name on the OS filesystem.
func OpenArchive(name string) (*Archive, error) {
	return OpenArchiveFs(afero.NewOsFs(), name)
}

// OpenArchiveFs opens the ZIP file at name on fs. The returned Archive owns
// the file handle; call Close when done.
func OpenArchiveFs(fs afero.Fs, name string) (*Archive, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("epubsplit: open %s: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("epubsplit: stat %s: %w", name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("epubsplit: %s is a directory: %w", name, ErrArchive)
	}

	a, err := NewArchive(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	a.closer = f
	return a, nil
}

// NewArchive reads a ZIP container from r. The caller is responsible for the
// lifetime of r.
func NewArchive(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchive, err)
	}

	a := &Archive{
		zr:    zr,
		index: make(map[string]*zip.File, len(zr.File)),
		limit: maxDecompressSize,
	}
	for _, f := range zr.File {
		if _, exists := a.index[f.Name]; !exists {
			a.index[f.Name] = f // first match wins
		}
	}
	return a, nil
}

// Close releases the underlying file when the Archive was opened by name.
// Close is idempotent.
func (a *Archive) Close() error {
	if a.closer != nil {
		err := a.closer.Close()
		a.closer = nil
		return err
	}
	return nil
}

// Has reports whether an entry named name exists.
func (a *Archive) Has(name string) bool {
	_, ok := a.index[name]
	return ok
}

// Names returns the entry names in archive order.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.zr.File))
	for _, f := range a.zr.File {
		names = append(names, f.Name)
	}
	return names
}

// Open returns a stream over the entry named name. The lookup is by exact,
// forward-slash separated path; a missing entry yields ErrNotFound.
// Reading past the archive's decompression limit fails with an error rather
// than ending the stream early.
func (a *Archive) Open(name string) (io.ReadCloser, error) {
	f, ok := a.index[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if !isSafePath(f.Name) {
		return nil, fmt.Errorf("epubsplit: unsafe zip entry path: %s", f.Name)
	}
	if f.UncompressedSize64 > uint64(a.limit) {
		return nil, fmt.Errorf("epubsplit: zip entry %s too large: %d bytes (max %d)", f.Name, f.UncompressedSize64, a.limit)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("epubsplit: open zip entry %s: %w", f.Name, err)
	}
	return &limitedReadCloser{rc: rc, name: f.Name, remaining: a.limit}, nil
}

// ReadFile reads the full contents of the entry named name.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	f, ok := a.index[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return readZipFileWithLimit(f, a.limit)
}

// limitedReadCloser fails once more than remaining bytes have been read, so
// a forged UncompressedSize64 cannot yield silently truncated content.
type limitedReadCloser struct {
	rc        io.ReadCloser
	name      string
	remaining int64
}

func (l *limitedReadCloser) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, l.overflow()
	}
	// Allow one byte beyond the limit to tell "exactly limit" from "more".
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.rc.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n + int(l.remaining), l.overflow()
	}
	return n, err
}

func (l *limitedReadCloser) overflow() error {
	return fmt.Errorf("epubsplit: zip entry %s decompressed size exceeds limit", l.name)
}

func (l *limitedReadCloser) Close() error {
	return l.rc.Close()
}

// resolveRelativePath resolves href against baseDir, the directory holding the
// package document ("" for the archive root). Backslashes are treated as
// separators and percent-escapes are decoded. The result is cleaned; if it
// escapes the archive root or href is absolute, an empty string is returned.
func resolveRelativePath(baseDir, href string) string {
	return joinArchivePath(baseDir, href, true)
}

// resolveLiteralPath is resolveRelativePath without percent-decoding, for
// entries whose stored name contains a literal escape such as "%20".
func resolveLiteralPath(baseDir, href string) string {
	return joinArchivePath(baseDir, href, false)
}

func joinArchivePath(baseDir, href string, decode bool) string {
	href = strings.TrimSpace(href)
	href = strings.ReplaceAll(href, "\\", "/")
	if href == "" || strings.HasPrefix(href, "/") {
		return ""
	}
	if decode {
		if decoded, err := url.PathUnescape(href); err == nil {
			href = decoded
		}
	}
	cleaned := path.Clean(path.Join(baseDir, href))
	if !isSafePath(cleaned) {
		return ""
	}
	return cleaned
}

// isSafePath checks whether p is a safe ZIP-internal path that does not
// escape the archive root via path traversal (e.g., "../../../etc/passwd").
func isSafePath(p string) bool {
	cleaned := path.Clean(p)
	if strings.HasPrefix(cleaned, "/") {
		return false
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return false
	}
	return true
}

// stripBOM removes a leading UTF-8 BOM (0xEF 0xBB 0xBF) from data, if present.
func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

// readZipFileWithLimit reads the full contents of a ZIP entry, refusing
// entries that escape the root or decompress beyond limit.
func readZipFileWithLimit(f *zip.File, limit int64) ([]byte, error) {
	if !isSafePath(f.Name) {
		return nil, fmt.Errorf("epubsplit: unsafe zip entry path: %s", f.Name)
	}

	if f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("epubsplit: zip entry %s too large: %d bytes (max %d)", f.Name, f.UncompressedSize64, limit)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("epubsplit: open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	// Read up to limit+1 to detect if the actual decompressed data
	// exceeds the limit (the declared size might be wrong/forged).
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("epubsplit: read zip entry %s: %w", f.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("epubsplit: zip entry %s decompressed size exceeds limit (%d bytes)", f.Name, limit)
	}

	return data, nil
}
