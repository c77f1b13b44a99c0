package epubsplit

// SkipReason explains why a spine position produced no output file.
// The zero value means the chapter was accepted.
type SkipReason int

const (
	// SkipNone marks an accepted chapter.
	SkipNone SkipReason = iota

	// SkipUnresolved means the spine idref has no manifest entry.
	SkipUnresolved

	// SkipMissing means the manifest href names no entry in the archive.
	SkipMissing

	// SkipUnreadable means the entry exists but could not be read or converted.
	SkipUnreadable

	// SkipTooShort means the converted text is below the minimum length.
	SkipTooShort

	// SkipEncrypted means META-INF/encryption.xml lists the entry under a
	// content encryption algorithm.
	SkipEncrypted
)

// String returns a short human-readable description of the reason.
func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "accepted"
	case SkipUnresolved:
		return "not in manifest"
	case SkipMissing:
		return "not found in archive"
	case SkipUnreadable:
		return "unreadable"
	case SkipTooShort:
		return "content too short"
	case SkipEncrypted:
		return "encrypted"
	default:
		return "unknown"
	}
}

// Chapter is one spine position after extraction.
type Chapter struct {
	// Index is the 1-based spine position. It counts every spine entry,
	// skipped or not, so accepted chapters keep their original numbering.
	Index int

	// IDRef is the spine itemref idref.
	IDRef string

	// Href is the manifest href as written in the OPF (empty when unresolved).
	Href string

	// Path is the archive-internal path the href resolves to.
	Path string

	// Text is the converted plain text. It is set for accepted chapters and
	// for chapters skipped as too short.
	Text string

	// Skip is SkipNone for accepted chapters.
	Skip SkipReason

	// Err holds the read or conversion error when Skip is SkipUnreadable,
	// and an ErrDRMProtected chain when Skip is SkipEncrypted.
	Err error
}

// Accepted reports whether the chapter should be written.
func (c Chapter) Accepted() bool {
	return c.Skip == SkipNone
}
