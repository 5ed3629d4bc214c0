package web

import (
	"golang.org/x/net/html"
)

// Attr returns the value of the named attribute of n, or the empty string if
// n has no such attribute.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// ForEachNode applies a function to the given node and each of its
// descendants.
func ForEachNode(node *html.Node, fn func(n *html.Node) error) error {
	var iter func(n *html.Node) error
	iter = func(n *html.Node) error {
		err := fn(n)
		if err != nil {
			return err
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			err := iter(c)
			if err != nil {
				return err
			}
		}

		return nil
	}

	return iter(node)
}

// GalleryFiles returns the file references (img sources and link targets)
// of a gallery document, in document order.
func GalleryFiles(doc *html.Node) []string {
	var refs []string

	ForEachNode(doc, func(n *html.Node) error {
		if n.Type != html.ElementNode {
			return nil
		}
		switch n.Data {
		case "img":
			refs = append(refs, Attr(n, "src"))
		case "a":
			refs = append(refs, Attr(n, "href"))
		}
		return nil
	})

	return refs
}
