package epubsplit

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
)

// DefaultWrapWidth is the line width chapters are reflowed to. It is wide
// enough that ordinary paragraphs stay on one line.
const DefaultWrapWidth = 1000

// blockTags is the set of tags that start and end a line during text
// extraction.
var blockTags = map[atom.Atom]bool{
	atom.P:          true,
	atom.Br:         true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Li:         true,
	atom.Dl:         true,
	atom.Dt:         true,
	atom.Dd:         true,
	atom.Table:      true,
	atom.Tr:         true,
	atom.Blockquote: true,
	atom.Hr:         true,
	atom.Pre:        true,
	atom.Section:    true,
	atom.Article:    true,
	atom.Aside:      true,
	atom.Figure:     true,
	atom.Figcaption: true,
	atom.Header:     true,
	atom.Footer:     true,
	atom.Nav:        true,
	atom.Main:       true,
}

// cellTags separate their content from the previous cell of a row with a tab.
var cellTags = map[atom.Atom]bool{
	atom.Td: true,
	atom.Th: true,
}

// skipTags is the set of tags whose content should be skipped during text extraction.
var skipTags = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Head:   true,
}

var selfClosingSkipTagPattern = regexp.MustCompile(`(?is)<(script|style|head)\b([^>]*)/>`)

func normalizeSelfClosingSkipTags(htmlData []byte) []byte {
	if !selfClosingSkipTagPattern.Match(htmlData) {
		return htmlData
	}
	return selfClosingSkipTagPattern.ReplaceAll(htmlData, []byte(`<$1$2></$1>`))
}

// TextConverter turns chapter markup into plain text reflowed to Width
// display columns.
type TextConverter struct {
	// Width is the maximum display width of an output line. Values <= 0
	// disable wrapping.
	Width int
}

// NewTextConverter returns a converter wrapping at width columns.
func NewTextConverter(width int) *TextConverter {
	return &TextConverter{Width: width}
}

// Convert reads markup from r and returns its text content. Input that is not
// valid UTF-8 is decoded using the encoding sniffed from its meta charset,
// falling back to windows-1252.
func (c *TextConverter) Convert(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	data = stripBOM(data)

	if !utf8.Valid(data) {
		enc, _, _ := charset.DetermineEncoding(data, "text/html")
		if decoded, err := enc.NewDecoder().Bytes(data); err == nil {
			data = decoded
		}
	}

	text, err := extractText(data)
	if err != nil {
		return "", err
	}
	return wrapText(text, c.Width), nil
}

// extractText extracts the plain text content from HTML data.
// Block-level elements produce line breaks when they open and when they
// close, table cells are separated by tabs, and content inside <head>,
// <script> and <style> is skipped. Whitespace between inline elements is kept
// as a single space; lines carry no trailing blanks.
func extractText(htmlData []byte) (string, error) {
	htmlData = normalizeSelfClosingSkipTags(htmlData)
	tokenizer := html.NewTokenizer(bytes.NewReader(htmlData))

	var w textBuilder
	skipDepth := 0 // depth inside a skip tag

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			err := tokenizer.Err()
			if errors.Is(err, io.EOF) {
				return strings.TrimSpace(string(w.buf)), nil
			}
			return "", err

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := tokenizer.TagName()
			a := atom.Lookup(tn)
			if tt == html.StartTagToken && skipTags[a] {
				skipDepth++
				continue
			}
			if skipDepth > 0 {
				continue
			}
			switch {
			case blockTags[a]:
				w.lineBreak()
			case cellTags[a]:
				w.cellBreak()
			}

		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			a := atom.Lookup(tn)
			if skipTags[a] && skipDepth > 0 {
				skipDepth--
				continue
			}
			if skipDepth == 0 && blockTags[a] {
				w.lineBreak()
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			w.text(string(tokenizer.Text()))
		}
	}
}

// textBuilder accumulates extracted text and owns the spacing rules between
// text runs, cells and lines.
type textBuilder struct {
	buf []byte
}

func (w *textBuilder) last() byte {
	if len(w.buf) == 0 {
		return '\n'
	}
	return w.buf[len(w.buf)-1]
}

func (w *textBuilder) trimTrailing(cutset string) {
	for len(w.buf) > 0 && strings.IndexByte(cutset, w.buf[len(w.buf)-1]) >= 0 {
		w.buf = w.buf[:len(w.buf)-1]
	}
}

// lineBreak ends the current line unless it is already empty.
func (w *textBuilder) lineBreak() {
	w.trimTrailing(" \t")
	if w.last() != '\n' {
		w.buf = append(w.buf, '\n')
	}
}

// cellBreak separates a table cell from the one before it on the same line.
func (w *textBuilder) cellBreak() {
	w.trimTrailing(" ")
	if c := w.last(); c != '\n' && c != '\t' {
		w.buf = append(w.buf, '\t')
	}
}

// text appends a raw text node with whitespace runs collapsed. A node made
// only of whitespace still separates the words around it.
func (w *textBuilder) text(raw string) {
	text := collapseWhitespace(raw)
	if text == "" {
		if raw != "" && w.last() != ' ' && w.last() != '\n' && w.last() != '\t' {
			w.buf = append(w.buf, ' ')
		}
		return
	}
	switch w.last() {
	case '\n', '\t':
		text = strings.TrimLeft(text, " ")
	case ' ':
		text = strings.TrimPrefix(text, " ")
	}
	w.buf = append(w.buf, text...)
}

// collapseWhitespace replaces runs of whitespace characters (spaces, tabs,
// newlines) with a single space. Returns empty string if the input is all whitespace.
// Leading and trailing whitespace is preserved as a single space so that
// inter-element spacing (e.g., between inline tags) is maintained.
func collapseWhitespace(s string) string {
	var buf strings.Builder
	inSpace := false
	hasNonSpace := false
	for _, r := range s {
		if isWhitespace(r) {
			inSpace = true
			continue
		}
		if inSpace && buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteRune(r)
		inSpace = false
		hasNonSpace = true
	}
	if !hasNonSpace {
		return ""
	}
	result := buf.String()
	if isWhitespace(rune(s[0])) {
		result = " " + result
	}
	if inSpace {
		result += " "
	}
	return result
}

// isWhitespace returns true if r is a whitespace character.
func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}

// wrapText breaks every line of text so that none exceeds width display
// columns. Breaks happen at spaces; a single word wider than width is kept
// whole on its own line. Trailing spaces left by the split are trimmed.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, " ")
		if runewidth.StringWidth(line) <= width {
			out = append(out, line)
			continue
		}

		var cur strings.Builder
		curWidth := 0
		for _, word := range strings.Split(line, " ") {
			if word == "" {
				continue
			}
			w := runewidth.StringWidth(word)
			if curWidth > 0 && curWidth+1+w > width {
				out = append(out, cur.String())
				cur.Reset()
				curWidth = 0
			}
			if curWidth > 0 {
				cur.WriteByte(' ')
				curWidth++
			}
			cur.WriteString(word)
			curWidth += w
		}
		if cur.Len() > 0 {
			out = append(out, cur.String())
		}
	}
	return strings.Join(out, "\n")
}
