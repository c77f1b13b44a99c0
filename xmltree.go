package epubsplit

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// xmlElement is a minimal element tree built from encoding/xml tokens.
// Comments and processing instructions are dropped; character data is kept
// per element as the concatenation of its direct text children.
type xmlElement struct {
	Name     xml.Name
	Attr     []xml.Attr
	Text     string
	Children []*xmlElement
}

// parseXMLTree parses data into an element tree rooted at the document element.
// HTML named entities (&nbsp;, &eacute;, ...) are accepted since ePub tooling
// frequently emits them into OPF metadata, and non-UTF-8 encodings declared in
// the XML prolog are decoded.
func parseXMLTree(data []byte) (*xmlElement, error) {
	dec := xml.NewDecoder(bytes.NewReader(stripBOM(data)))
	dec.Strict = true
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *xmlElement
		stack []*xmlElement
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &xmlElement{Name: t.Name, Attr: t.Copy().Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements: <%s> after <%s>", t.Name.Local, root.Name.Local)
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("no root element")
	}
	return root, nil
}

// find returns the first element in document order (e itself included) whose
// local name is local, regardless of namespace. It returns nil if none exists.
func (e *xmlElement) find(local string) *xmlElement {
	if e.Name.Local == local {
		return e
	}
	for _, c := range e.Children {
		if found := c.find(local); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every element with the given local name in document order.
func (e *xmlElement) findAll(local string) []*xmlElement {
	var out []*xmlElement
	var walk func(*xmlElement)
	walk = func(n *xmlElement) {
		if n.Name.Local == local {
			out = append(out, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(e)
	return out
}

// attr returns the value of the un-namespaced attribute name.
func (e *xmlElement) attr(name string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
