package epubsplit

import "errors"

// Sentinel errors returned by the epubsplit package. Callers match them with
// errors.Is; the returned errors carry the offending path as context.
var (
	// ErrArchive indicates the input is not a readable ZIP container.
	ErrArchive = errors.New("epubsplit: not a valid ZIP archive")

	// ErrNotFound indicates the requested entry does not exist in the archive.
	ErrNotFound = errors.New("epubsplit: entry not found in archive")

	// ErrInvalidEPub indicates META-INF/container.xml is missing or is not
	// well-formed XML.
	ErrInvalidEPub = errors.New("epubsplit: not a valid ePub (missing container.xml)")

	// ErrMissingRootfile indicates container.xml has no rootfile element.
	ErrMissingRootfile = errors.New("epubsplit: container.xml has no rootfile")

	// ErrMissingFullPath indicates the first rootfile has no full-path attribute.
	ErrMissingFullPath = errors.New("epubsplit: rootfile has no full-path")

	// ErrInvalidPackage indicates the OPF package document could not be read
	// or parsed.
	ErrInvalidPackage = errors.New("epubsplit: invalid package document")

	// ErrMissingManifest indicates the OPF has no manifest element.
	ErrMissingManifest = errors.New("epubsplit: package document has no manifest")

	// ErrMissingSpine indicates the OPF has no spine element.
	ErrMissingSpine = errors.New("epubsplit: package document has no spine")

	// ErrDRMProtected marks a chapter whose archive entry is encrypted
	// (e.g., Adobe ADEPT, Readium LCP). It is carried in Chapter.Err of
	// SkipEncrypted chapters and never aborts a run.
	ErrDRMProtected = errors.New("epubsplit: content is DRM protected")

	// ErrWrite indicates a chapter file or the output directory could not be
	// written. It is always fatal.
	ErrWrite = errors.New("epubsplit: write failed")
)
