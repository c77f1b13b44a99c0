package epubsplit

import (
	"errors"
	"fmt"
	"strings"
)

// containerPath is the well-known location of container.xml in an ePub archive.
const containerPath = "META-INF/container.xml"

// locatePackage reads META-INF/container.xml and returns the full-path of the
// first rootfile element, which names the OPF package document relative to
// the archive root.
//
// The rootfile is looked up anywhere in the document by local name, so
// container files with unusual nesting or namespaces still resolve.
func locatePackage(a *Archive) (string, error) {
	data, err := a.ReadFile(containerPath)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("%w: %s not found", ErrInvalidEPub, containerPath)
		}
		return "", fmt.Errorf("%w: read %s: %v", ErrInvalidEPub, containerPath, err)
	}

	root, err := parseXMLTree(data)
	if err != nil {
		return "", fmt.Errorf("%w: parse %s: %v", ErrInvalidEPub, containerPath, err)
	}

	rf := root.find("rootfile")
	if rf == nil {
		return "", ErrMissingRootfile
	}

	fullPath, ok := rf.attr("full-path")
	if !ok {
		return "", ErrMissingFullPath
	}
	return strings.TrimSpace(fullPath), nil
}
