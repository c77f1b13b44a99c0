package epubsplit

import (
	"strings"
)

// dcNamespace is the Dublin Core elements namespace used by OPF metadata.
const dcNamespace = "http://purl.org/dc/elements/1.1/"

// Metadata holds the Dublin Core fields extracted from the OPF file.
type Metadata struct {
	// Version is the package version attribute (e.g., "2.0", "3.0").
	// Defaults to "2.0" when absent.
	Version string

	// Titles contains all dc:title values. The first entry is the primary title.
	Titles []string

	// Authors contains all dc:creator values.
	Authors []string

	// Language contains all dc:language values.
	Language []string
}

// Title returns the primary title, or "" if the book declares none.
func (m Metadata) Title() string {
	if len(m.Titles) == 0 {
		return ""
	}
	return m.Titles[0]
}

// extractMetadata reads Dublin Core values from the first metadata element of
// the package tree. A missing metadata element yields only the version.
func extractMetadata(root *xmlElement) Metadata {
	md := Metadata{Version: "2.0"}
	if v, ok := root.attr("version"); ok && strings.TrimSpace(v) != "" {
		md.Version = strings.TrimSpace(v)
	}

	meta := root.find("metadata")
	if meta == nil {
		return md
	}

	md.Titles = dcValues(meta, "title")
	md.Authors = dcValues(meta, "creator")
	md.Language = dcValues(meta, "language")
	return md
}

// dcValues returns the trimmed, non-empty text of every dc:<local> element.
func dcValues(meta *xmlElement, local string) []string {
	var out []string
	for _, el := range meta.findAll(local) {
		if el.Name.Space != dcNamespace {
			continue
		}
		if v := strings.Join(strings.Fields(el.Text), " "); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func copyMetadata(in Metadata) Metadata {
	out := in
	out.Titles = append([]string(nil), in.Titles...)
	out.Authors = append([]string(nil), in.Authors...)
	out.Language = append([]string(nil), in.Language...)
	return out
}
