package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// NormalizeText strips non-printable runes, trims surrounding
// whitespace and collapses inner whitespace runs to one space.
func NormalizeText(s string) string {
	var printable strings.Builder
	for _, c := range s {
		switch {
		case unicode.IsSpace(c):
			printable.WriteRune(' ')
		case unicode.IsPrint(c):
			printable.WriteRune(c)
		}
	}
	out := strings.TrimSpace(printable.String())
	return innerWhitespace.ReplaceAllString(out, " ")
}
