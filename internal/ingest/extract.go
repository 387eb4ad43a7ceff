package ingest

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ExtractText parses raw HTML and returns the text of heading and
// paragraph-level elements only, in document order, joined by single
// spaces. Scripts, styles and navigation chrome are ignored.
func ExtractText(raw []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	var blocks []string
	extractBlocks(doc, &blocks)
	return strings.Join(blocks, " "), nil
}

// extractBlocks walks the DOM tree and collects heading and paragraph text.
func extractBlocks(n *html.Node, blocks *[]string) {
	if n.Type == html.ElementNode {
		// Skip boilerplate.
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Nav, atom.Footer, atom.Header:
			return
		}

		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.P:
			if text := collectText(n); text != "" {
				*blocks = append(*blocks, text)
			}
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractBlocks(c, blocks)
	}
}

// collectText extracts all text from a node subtree with whitespace
// collapsed to single spaces.
func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
