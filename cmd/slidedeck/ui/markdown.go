package ui

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLToMarkdown converts a slide document into Markdown suitable for
// glamour. Only the slide container (or body) is converted; scripts, styles
// and the head are dropped. Unknown elements contribute their text.
func HTMLToMarkdown(doc []byte) string {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return string(doc)
	}
	start := findClass(root, "slide-container")
	if start == nil {
		start = findAtom(root, atom.Body)
	}
	if start == nil {
		start = root
	}
	var b strings.Builder
	writeBlocks(&b, start)
	return tidy(b.String())
}

func findAtom(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findAtom(c, a); found != nil {
			return found
		}
	}
	return nil
}

func findClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "class" {
				for _, f := range strings.Fields(a.Val) {
					if f == class {
						return n
					}
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Head:     true,
	atom.Title:    true,
	atom.Noscript: true,
	atom.Template: true,
}

var inlineElements = map[atom.Atom]bool{
	atom.A:      true,
	atom.Abbr:   true,
	atom.B:      true,
	atom.Br:     true,
	atom.Code:   true,
	atom.Em:     true,
	atom.I:      true,
	atom.Img:    true,
	atom.Kbd:    true,
	atom.Mark:   true,
	atom.Small:  true,
	atom.Span:   true,
	atom.Strong: true,
	atom.Sub:    true,
	atom.Sup:    true,
	atom.U:      true,
}

func isInline(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return true
	case html.ElementNode:
		return inlineElements[n.DataAtom]
	}
	return false
}

// writeBlocks emits the children of n as Markdown blocks. Runs of inline
// children are joined into one paragraph.
func writeBlocks(b *strings.Builder, n *html.Node) {
	var run []*html.Node
	flush := func() {
		if len(run) == 0 {
			return
		}
		var p strings.Builder
		for _, c := range run {
			writeInline(&p, c)
		}
		paragraph(b, p.String())
		run = run[:0]
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isInline(c) {
			run = append(run, c)
			continue
		}
		flush()
		writeBlock(b, c)
	}
	flush()
}

func paragraph(b *strings.Builder, text string) {
	text = strings.TrimSpace(collapseSpaces(text))
	if text == "" {
		return
	}
	b.WriteString(text)
	b.WriteString("\n\n")
}

func writeBlock(b *strings.Builder, n *html.Node) {
	if n.Type != html.ElementNode || skipped[n.DataAtom] {
		return
	}
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		text := strings.TrimSpace(collapseSpaces(inlineText(n)))
		if text != "" {
			fmt.Fprintf(b, "%s %s\n\n", strings.Repeat("#", level), text)
		}
	case atom.P:
		paragraph(b, inlineText(n))
	case atom.Ul, atom.Ol:
		writeList(b, n, 0)
		b.WriteString("\n")
	case atom.Pre:
		code := strings.TrimRight(rawText(n), "\n")
		fmt.Fprintf(b, "```\n%s\n```\n\n", code)
	case atom.Blockquote:
		var inner strings.Builder
		writeBlocks(&inner, n)
		for _, line := range strings.Split(strings.TrimSpace(inner.String()), "\n") {
			if line == "" {
				b.WriteString(">\n")
				continue
			}
			b.WriteString("> " + line + "\n")
		}
		b.WriteString("\n")
	case atom.Table:
		writeTable(b, n)
	case atom.Hr:
		b.WriteString("---\n\n")
	default:
		writeBlocks(b, n)
	}
}

func writeList(b *strings.Builder, list *html.Node, depth int) {
	ordered := list.DataAtom == atom.Ol
	indent := strings.Repeat("  ", depth)
	num := 0
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		num++
		marker := "-"
		if ordered {
			marker = fmt.Sprintf("%d.", num)
		}
		var text strings.Builder
		var nested []*html.Node
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
				nested = append(nested, c)
				continue
			}
			if c.Type == html.ElementNode && !isInline(c) {
				text.WriteString(" ")
				text.WriteString(inlineText(c))
				continue
			}
			writeInline(&text, c)
		}
		fmt.Fprintf(b, "%s%s %s\n", indent, marker, strings.TrimSpace(collapseSpaces(text.String())))
		for _, sub := range nested {
			writeList(b, sub, depth+1)
		}
	}
}

func writeTable(b *strings.Builder, table *html.Node) {
	var rows [][]string
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.DataAtom == atom.Tr {
				var cells []string
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type == html.ElementNode && (cell.DataAtom == atom.Td || cell.DataAtom == atom.Th) {
						text := strings.TrimSpace(collapseSpaces(inlineText(cell)))
						cells = append(cells, strings.ReplaceAll(text, "|", `\|`))
					}
				}
				rows = append(rows, cells)
				continue
			}
			collect(c)
		}
	}
	collect(table)
	if len(rows) == 0 {
		return
	}
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return
	}
	writeRow := func(cells []string) {
		for len(cells) < cols {
			cells = append(cells, "")
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	writeRow(rows[0])
	sep := make([]string, cols)
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)
	for _, r := range rows[1:] {
		writeRow(r)
	}
	b.WriteString("\n")
}

func inlineText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeInline(&b, c)
	}
	return b.String()
}

func writeInline(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(collapseSpaces(n.Data))
		return
	case html.ElementNode:
	default:
		return
	}
	if skipped[n.DataAtom] {
		return
	}
	wrap := func(mark string) {
		inner := strings.TrimSpace(collapseSpaces(inlineText(n)))
		if inner != "" {
			b.WriteString(mark + inner + mark)
		}
	}
	switch n.DataAtom {
	case atom.Strong, atom.B:
		wrap("**")
	case atom.Em, atom.I:
		wrap("_")
	case atom.Code, atom.Kbd:
		if text := rawText(n); text != "" {
			b.WriteString("`" + text + "`")
		}
	case atom.A:
		text := strings.TrimSpace(collapseSpaces(inlineText(n)))
		href := getAttr(n, "href")
		switch {
		case href == "":
			b.WriteString(text)
		case text == "":
			b.WriteString("<" + href + ">")
		default:
			fmt.Fprintf(b, "[%s](%s)", text, href)
		}
	case atom.Img:
		fmt.Fprintf(b, "![%s](%s)", getAttr(n, "alt"), getAttr(n, "src"))
	case atom.Br:
		b.WriteRune(lineBreak)
	default:
		b.WriteString(inlineText(n))
	}
}

func rawText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// lineBreak marks a <br> until tidy turns it into a newline; collapseSpaces
// leaves it alone.
const lineBreak = '\u2028'

// collapseSpaces folds runs of whitespace into one space. Leading and
// trailing runs are kept as a single space so adjacent inline nodes stay
// separated; callers trim at block edges. No space is kept next to a
// lineBreak.
func collapseSpaces(s string) string {
	var b strings.Builder
	space := false
	var last rune
	for _, r := range s {
		switch r {
		case ' ', '\t', '\r', '\f', '\n':
			space = true
			continue
		}
		if space && last != lineBreak && r != lineBreak {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
		last = r
	}
	if space && last != lineBreak {
		b.WriteByte(' ')
	}
	return b.String()
}

// tidy trims the result and squeezes repeated blank lines.
func tidy(s string) string {
	s = strings.ReplaceAll(s, string(lineBreak), "\n")
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " ")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n")) + "\n"
}
