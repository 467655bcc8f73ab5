package deck

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// SectionMetaName is the <meta name> carrying a slide's section hint.
const SectionMetaName = "slide-section"

// SectionBadgeClass marks the visible section badge inside a slide.
const SectionBadgeClass = "section-badge"

var (
	filenamePattern = regexp.MustCompile(`^(\d+)-(.+)\.(html|htm|md)$`)
	numberedTitle   = regexp.MustCompile(`^\d+\s*-\s*(.+)$`)
	markdownHeading = regexp.MustCompile(`(?m)^#\s+(.+?)\s*#*\s*$`)

	titleCaser = cases.Title(language.English)
	markdown   = goldmark.New(goldmark.WithExtensions(extension.GFM))
)

// fileInfo is what the filename alone tells us about a slide.
type fileInfo struct {
	ID      string
	Ordinal int
	Slug    string
	Format  Format
}

// parseFilename matches NNN-slug.html / NNN-slug.md.
func parseFilename(name string) (fileInfo, bool) {
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return fileInfo{}, false
	}
	id, ord, err := NormalizeID(m[1])
	if err != nil {
		return fileInfo{}, false
	}
	format := FormatHTML
	if m[3] == "md" {
		format = FormatMarkdown
	}
	return fileInfo{ID: id, Ordinal: ord, Slug: m[2], Format: format}, true
}

// slugTitle turns "quick-setup" into "Quick Setup".
func slugTitle(slug string) string {
	return titleCaser.String(strings.ReplaceAll(slug, "-", " "))
}

// docMeta is what a slide document says about itself.
type docMeta struct {
	Title    string
	Appendix bool
}

// parseHTMLMeta extracts the title and section hint from an HTML slide.
// "<title>004 - Setup</title>" yields "Setup".
func parseHTMLMeta(content []byte) (docMeta, error) {
	root, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return docMeta{}, fmt.Errorf("failed to parse html: %w", err)
	}

	var meta docMeta
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.DataAtom == atom.Title && meta.Title == "":
				meta.Title = headTitle(textOf(n))
			case n.DataAtom == atom.Meta && strings.EqualFold(attr(n, "name"), SectionMetaName):
				if sec, err := ParseSection(attr(n, "content")); err == nil && sec == SectionAppendix {
					meta.Appendix = true
				}
			case hasClass(n, SectionBadgeClass):
				if strings.EqualFold(strings.TrimSpace(textOf(n)), SectionAppendix.Label()) {
					meta.Appendix = true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return meta, nil
}

func headTitle(raw string) string {
	raw = strings.Join(strings.Fields(raw), " ")
	if m := numberedTitle.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return raw
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// frontMatter is the optional YAML header of a markdown slide.
type frontMatter struct {
	Title   string `yaml:"title"`
	Section string `yaml:"section"`
}

// splitFrontMatter separates a leading "---" YAML block from the body.
func splitFrontMatter(content []byte) (frontMatter, []byte, error) {
	var fm frontMatter
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	if !strings.HasPrefix(text, "---\n") {
		return fm, []byte(text), nil
	}
	rest := text[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return fm, []byte(text), nil
	}
	header := rest[:end]
	body := strings.TrimPrefix(rest[end+len("\n---"):], "\n")
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return fm, nil, fmt.Errorf("invalid front matter: %w", err)
	}
	return fm, []byte(body), nil
}

// convertMarkdown turns a markdown slide into a full slide document and
// returns the metadata it declared.
func convertMarkdown(info fileInfo, content []byte) ([]byte, docMeta, error) {
	fm, body, err := splitFrontMatter(content)
	if err != nil {
		return nil, docMeta{}, err
	}

	meta := docMeta{Title: strings.TrimSpace(fm.Title)}
	if fm.Section != "" {
		sec, err := ParseSection(fm.Section)
		if err != nil {
			return nil, docMeta{}, err
		}
		meta.Appendix = sec == SectionAppendix
	}
	if meta.Title == "" {
		if m := markdownHeading.FindSubmatch(body); m != nil {
			meta.Title = string(m[1])
		}
	}
	if meta.Title == "" {
		meta.Title = slugTitle(info.Slug)
	}

	var rendered bytes.Buffer
	if err := markdown.Convert(body, &rendered); err != nil {
		return nil, docMeta{}, fmt.Errorf("failed to convert markdown: %w", err)
	}

	section := SectionMain
	if meta.Appendix {
		section = SectionAppendix
	}
	var doc bytes.Buffer
	if err := RenderSlideDocument(&doc, info.ID, meta.Title, section, rendered.String()); err != nil {
		return nil, docMeta{}, err
	}
	return doc.Bytes(), meta, nil
}

// parseSlide builds a Slide from a discovered file. Section is only set to
// appendix when the document asks for it; positional partitioning happens in
// Assemble.
func parseSlide(name string, info fileInfo, content []byte) (Slide, error) {
	s := Slide{
		ID:       info.ID,
		Ordinal:  info.Ordinal,
		Filename: name,
		Format:   info.Format,
	}

	var meta docMeta
	var err error
	switch info.Format {
	case FormatMarkdown:
		s.Content, meta, err = convertMarkdown(info, content)
	default:
		s.Content = content
		meta, err = parseHTMLMeta(content)
	}
	if err != nil {
		return Slide{}, fmt.Errorf("%s: %w", name, err)
	}

	s.Title = meta.Title
	if s.Title == "" {
		s.Title = slugTitle(info.Slug)
	}
	if meta.Appendix {
		s.Section = SectionAppendix
	}
	return s, nil
}
