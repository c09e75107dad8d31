package domtree

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/ORDEP81/ticketsight/internal/apperror"
)

// ParseHTML decodes a serialized HTML snapshot into a Node tree. The
// document skeleton (html/head/body) is collapsed so the returned root is
// the body content, matching what the browser layer captures.
func ParseHTML(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, apperror.Internal(apperror.CodeSnapshotDecodeFailed, "html parse", err)
	}

	body := findBody(doc)
	if body == nil {
		return nil, apperror.New(apperror.CodeSnapshotDecodeFailed,
			apperror.WithContext("snapshot has no body"))
	}

	root := NewElement("body")
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if converted := convert(c); converted != nil {
			root.Append(converted)
		}
	}
	return root, nil
}

// ParseHTMLString is a convenience wrapper over ParseHTML.
func ParseHTMLString(s string) (*Node, error) {
	return ParseHTML(strings.NewReader(s))
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}

func convert(n *html.Node) *Node {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return NewText(n.Data)
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if tag == "script" || tag == "style" || tag == "noscript" {
			return nil
		}
		el := NewElement(tag)
		for _, a := range n.Attr {
			el.SetAttr(a.Key, a.Val)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if converted := convert(c); converted != nil {
				el.Append(converted)
			}
		}
		return el
	default:
		return nil
	}
}
