package web

import (
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// GalleryName is the file name a gallery is saved under in the output
// directory.
const GalleryName = "index.html"

// imageExts lists extensions that browsers display inline.
var imageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".svg":  {},
	".webp": {},
	".bmp":  {},
}

// IsImage returns true if a browser can show the named file in an img tag.
func IsImage(filename string) bool {
	_, ok := imageExts[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// BuildGallery constructs an html document showing the files with the given
// names, which are relative to the document's directory. Images are embedded;
// other media (audio, video, documents) are linked.
func BuildGallery(heading string, filenames []string) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"}))
	title := element(atom.Title)
	title.AppendChild(text(heading))
	head.AppendChild(title)
	root.AppendChild(head)

	body := element(atom.Body)
	h1 := element(atom.H1)
	h1.AppendChild(text(heading))
	body.AppendChild(h1)

	for _, f := range filenames {
		href := url.PathEscape(f)

		var item *html.Node
		if IsImage(f) {
			item = element(atom.Img,
				html.Attribute{Key: "src", Val: href},
				html.Attribute{Key: "alt", Val: f},
				html.Attribute{Key: "title", Val: f},
				html.Attribute{Key: "loading", Val: "lazy"},
				html.Attribute{Key: "style", Val: "max-width:320px;max-height:320px"},
			)
		} else {
			item = element(atom.A, html.Attribute{Key: "href", Val: href})
			item.AppendChild(text(f))
		}

		div := element(atom.Div)
		div.AppendChild(item)
		body.AppendChild(div)
	}
	root.AppendChild(body)

	return doc
}

// WriteGallery renders a gallery document to w.
func WriteGallery(w io.Writer, heading string, filenames []string) error {
	return html.Render(w, BuildGallery(heading, filenames))
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
