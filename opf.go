package epubsplit

import (
	"errors"
	"fmt"
	"path"
)

// Package is the resolved OPF package document: where it lives, its manifest
// and its spine.
type Package struct {
	// Path is the archive-internal path of the OPF file.
	Path string

	// BaseDir is the directory holding the OPF file, "" at the archive root.
	// Manifest hrefs are relative to it.
	BaseDir string

	// Manifest maps manifest item id to href. A later duplicate id
	// overwrites an earlier one.
	Manifest map[string]string

	// Spine lists itemref idrefs in reading order.
	Spine []string

	// Metadata holds the Dublin Core fields used for reporting.
	Metadata Metadata
}

// Href returns the manifest href for id.
func (p *Package) Href(id string) (string, bool) {
	href, ok := p.Manifest[id]
	return href, ok
}

// ResolveHref joins href onto the package base directory and returns the
// forward-slash archive path. An empty string means the href cannot name an
// entry inside the archive.
func (p *Package) ResolveHref(href string) string {
	return resolveRelativePath(p.BaseDir, href)
}

// resolveLiteralHref is ResolveHref without percent-decoding.
func (p *Package) resolveLiteralHref(href string) string {
	return resolveLiteralPath(p.BaseDir, href)
}

// resolvePackage reads and parses the OPF at opfPath.
func resolvePackage(a *Archive, opfPath string) (*Package, error) {
	data, err := a.ReadFile(opfPath)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s not found in archive", ErrInvalidPackage, opfPath)
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidPackage, opfPath, err)
	}

	root, err := parseXMLTree(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidPackage, opfPath, err)
	}

	manifest := root.find("manifest")
	if manifest == nil {
		return nil, fmt.Errorf("%s: %w", opfPath, ErrMissingManifest)
	}
	spine := root.find("spine")
	if spine == nil {
		return nil, fmt.Errorf("%s: %w", opfPath, ErrMissingSpine)
	}

	return &Package{
		Path:     opfPath,
		BaseDir:  baseDir(opfPath),
		Manifest: buildManifest(manifest),
		Spine:    buildSpine(spine),
		Metadata: extractMetadata(root),
	}, nil
}

// buildManifest maps id to href for every direct child of the manifest that
// carries both attributes.
func buildManifest(manifest *xmlElement) map[string]string {
	byID := make(map[string]string, len(manifest.Children))
	for _, item := range manifest.Children {
		id, hasID := item.attr("id")
		href, hasHref := item.attr("href")
		if hasID && hasHref {
			byID[id] = href
		}
	}
	return byID
}

// buildSpine collects the idref of every direct child element of the spine.
// Children without an idref are omitted.
func buildSpine(spine *xmlElement) []string {
	ids := make([]string, 0, len(spine.Children))
	for _, ref := range spine.Children {
		if idref, ok := ref.attr("idref"); ok {
			ids = append(ids, idref)
		}
	}
	return ids
}

// baseDir returns the directory of the OPF path, "" when it sits at the root.
func baseDir(opfPath string) string {
	dir := path.Dir(opfPath)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}
