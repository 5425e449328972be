package ui

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PlainText flattens an HTML fragment to a single line of text. Input that
// does not parse is returned with its whitespace collapsed.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return cleanText(fragment)
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return cleanText(fragment)
	}

	var text strings.Builder
	for _, n := range nodes {
		collectText(n, &text)
	}
	return cleanText(text.String())
}

// collectText appends visible text below n, skipping script and style
func collectText(n *html.Node, text *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style":
			return
		case "br", "p", "li", "div":
			text.WriteString(" ")
		}
	}

	if n.Type == html.TextNode {
		text.WriteString(n.Data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, text)
	}
}

// cleanText collapses runs of whitespace
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// truncate shortens s to maxLen runes, marking the cut with "..."
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen < 0 {
		maxLen = 0
	}
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
