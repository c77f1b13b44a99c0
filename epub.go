package epubsplit

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// expectedMimetype is the required content of the "mimetype" file in a valid ePub.
const expectedMimetype = "application/epub+zip"

// Book is an opened ePub with its package document resolved.
// Use Open, OpenFs or NewReader to create a Book instance.
//
// A Book is not safe for concurrent use by multiple goroutines.
type Book struct {
	archive    *Archive
	pkg        *Package
	encryption encryptionInfo
	warnings   []string
}

// Open opens an ePub file at the given path on the OS filesystem.
// The caller must call Close when done reading from the book.
func Open(path string) (*Book, error) {
	return OpenFs(afero.NewOsFs(), path)
}

// OpenFs opens an ePub file at path on fs.
// The caller must call Close when done reading from the book.
func OpenFs(fs afero.Fs, path string) (*Book, error) {
	a, err := OpenArchiveFs(fs, path)
	if err != nil {
		return nil, err
	}

	b, err := initBook(a)
	if err != nil {
		a.Close()
		return nil, err
	}
	return b, nil
}

// NewReader creates a Book from an io.ReaderAt with the given size.
// The caller is responsible for the lifetime of r; Close only cleans
// up internal state.
func NewReader(r io.ReaderAt, size int64) (*Book, error) {
	a, err := NewArchive(r, size)
	if err != nil {
		return nil, err
	}
	return initBook(a)
}

// initBook performs common initialisation: mimetype validation, container
// lookup, encryption discovery and package resolution.
func initBook(a *Archive) (*Book, error) {
	b := &Book{archive: a}

	b.validateMimetype()

	opfPath, err := locatePackage(a)
	if err != nil {
		return nil, err
	}

	b.encryption = readEncryption(a)
	if b.encryption.fontObfuscation {
		b.warnings = append(b.warnings, "font obfuscation detected; embedded fonts are ignored")
	}
	b.warnings = append(b.warnings, b.encryption.warnings...)

	pkg, err := resolvePackage(a, opfPath)
	if err != nil {
		return nil, err
	}
	b.pkg = pkg

	return b, nil
}

// validateMimetype checks that the first ZIP entry is named "mimetype" and
// contains "application/epub+zip". Deviations are recorded as warnings.
func (b *Book) validateMimetype() {
	names := b.archive.Names()
	if len(names) == 0 {
		b.warnings = append(b.warnings, "empty ZIP archive; mimetype entry missing")
		return
	}
	if names[0] != "mimetype" {
		b.warnings = append(b.warnings, "first ZIP entry is not \"mimetype\"")
		return
	}

	data, err := b.archive.ReadFile("mimetype")
	if err != nil {
		b.warnings = append(b.warnings, fmt.Sprintf("cannot read mimetype entry: %v", err))
		return
	}
	if string(data) != expectedMimetype {
		b.warnings = append(b.warnings, fmt.Sprintf("unexpected mimetype: %q", string(data)))
	}
}

// Close releases resources held by the Book. When the Book was created via
// Open or OpenFs, Close closes the underlying file. Close is idempotent.
func (b *Book) Close() error {
	return b.archive.Close()
}

// entryPath maps a manifest href to the archive entry it names. The
// percent-decoded path is preferred; the literal path is used when only
// that one exists. An unsafe href yields "".
func (b *Book) entryPath(href string) string {
	decoded := b.pkg.ResolveHref(href)
	if decoded == "" || b.archive.Has(decoded) {
		return decoded
	}
	if literal := b.pkg.resolveLiteralHref(href); literal != "" && b.archive.Has(literal) {
		return literal
	}
	return decoded
}

// ReadFile reads a file from the ePub archive by its exact ZIP-internal path.
func (b *Book) ReadFile(name string) ([]byte, error) {
	return b.archive.ReadFile(name)
}

// PackagePath returns the archive path of the OPF package document.
func (b *Book) PackagePath() string {
	return b.pkg.Path
}

// Spine returns the spine idrefs in reading order.
func (b *Book) Spine() []string {
	return append([]string(nil), b.pkg.Spine...)
}

// Manifest returns a copy of the manifest id to href map.
func (b *Book) Manifest() map[string]string {
	out := make(map[string]string, len(b.pkg.Manifest))
	for k, v := range b.pkg.Manifest {
		out[k] = v
	}
	return out
}

// Metadata returns the Dublin Core metadata of the book.
func (b *Book) Metadata() Metadata {
	return copyMetadata(b.pkg.Metadata)
}

// Warnings returns the list of non-fatal warnings accumulated during parsing.
func (b *Book) Warnings() []string {
	return append([]string(nil), b.warnings...)
}
