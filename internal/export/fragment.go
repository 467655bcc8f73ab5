package export

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"slidedeck/internal/deck"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ContainerClass marks the element whose children form a slide's content.
const ContainerClass = "slide-container"

var (
	errEmptyDocument = errors.New("empty document")
	errInvalidUTF8   = errors.New("document is not valid UTF-8")
	errMissingBody   = errors.New("document has no body")
	errEmptyFragment = errors.New("slide has no content")
)

// sanitizer keeps user-generated markup plus the class attributes slide
// styling depends on. bluemonday policies are safe for concurrent use.
var sanitizer = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowElements("section", "figure", "figcaption")
	return p
}()

type page struct {
	slide    deck.Slide
	fragment string
	styles   []string
}

// extract pulls the presentable fragment and any head styles out of a
// slide document.
func extract(s deck.Slide, sanitize bool) (page, error) {
	fail := func(err error) (page, error) {
		return page{}, &RenderError{ID: s.ID, Title: s.Title, Err: err}
	}

	if len(bytes.TrimSpace(s.Content)) == 0 {
		return fail(errEmptyDocument)
	}
	if !utf8.Valid(s.Content) {
		return fail(errInvalidUTF8)
	}

	doc, err := html.Parse(bytes.NewReader(s.Content))
	if err != nil {
		return fail(err)
	}

	root := findContainer(doc)
	if root == nil {
		root = findElement(doc, atom.Body)
	}
	if root == nil {
		return fail(errMissingBody)
	}

	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Script && sanitize {
			continue
		}
		if err := html.Render(&buf, c); err != nil {
			return fail(err)
		}
	}

	fragment := strings.TrimSpace(buf.String())
	if sanitize {
		fragment = strings.TrimSpace(sanitizer.Sanitize(fragment))
	}
	if fragment == "" {
		return fail(errEmptyFragment)
	}

	p := page{slide: s, fragment: fragment}
	if !sanitize {
		p.styles = headStyles(doc)
	}
	return p, nil
}

func findContainer(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && hasClass(n, ContainerClass) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findContainer(c); found != nil {
			return found
		}
	}
	return nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, f := range strings.Fields(a.Val) {
				if f == class {
					return true
				}
			}
		}
	}
	return false
}

func headStyles(doc *html.Node) []string {
	head := findElement(doc, atom.Head)
	if head == nil {
		return nil
	}
	var styles []string
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Style {
			continue
		}
		var b strings.Builder
		for t := c.FirstChild; t != nil; t = t.NextSibling {
			if t.Type == html.TextNode {
				b.WriteString(t.Data)
			}
		}
		if css := strings.TrimSpace(b.String()); css != "" {
			styles = append(styles, css)
		}
	}
	return styles
}
