package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "container with headings, inline marks, lists and code",
			in: `<html><body><div class="slide-container">
<h1>Title</h1>
<p>Some <strong>bold</strong> and <em>it</em> text with <code>x := 1</code>.</p>
<ul><li>One</li><li>Two<ul><li>Nested</li></ul></li></ul>
<pre>line1
line2</pre>
</div></body></html>`,
			want: "# Title\n\nSome **bold** and _it_ text with `x := 1`.\n\n- One\n- Two\n  - Nested\n\n```\nline1\nline2\n```\n",
		},
		{
			name: "body fallback drops head and scripts",
			in:   `<html><head><title>T</title><style>p{color:red}</style></head><body><p>Hi<br>there</p><script>alert(1)</script></body></html>`,
			want: "Hi\nthere\n",
		},
		{
			name: "content outside the container is ignored",
			in:   `<body><div class="section-badge">Appendix</div><div class="slide-container"><h2>Inside</h2></div><footer>outside</footer></body>`,
			want: "## Inside\n",
		},
		{
			name: "ordered list",
			in:   `<ol><li>first</li><li>second</li></ol>`,
			want: "1. first\n2. second\n",
		},
		{
			name: "table",
			in:   `<table><thead><tr><th>A</th><th>B</th></tr></thead><tbody><tr><td>1</td><td>x|y</td></tr><tr><td>2</td></tr></tbody></table>`,
			want: "| A | B |\n| --- | --- |\n| 1 | x\\|y |\n| 2 |  |\n",
		},
		{
			name: "links and images",
			in:   `<p><a href="https://example.com/docs">docs</a> <img src="a.png" alt="A"></p>`,
			want: "[docs](https://example.com/docs) ![A](a.png)\n",
		},
		{
			name: "blockquote and rule",
			in:   `<blockquote><p>Quote</p></blockquote><hr><p>After</p>`,
			want: "> Quote\n\n---\n\nAfter\n",
		},
		{
			name: "loose inline content becomes one paragraph",
			in:   `<div>Plain   text <b>with</b>
   spacing</div>`,
			want: "Plain text **with** spacing\n",
		},
		{
			name: "spaces around inline elements survive",
			in:   `<p>Use <code>slidedeck build</code> to <strong>generate</strong> the page</p>`,
			want: "Use `slidedeck build` to **generate** the page\n",
		},
		{
			name: "inline elements in list items and headings",
			in:   `<h2>Run <em>it</em> now</h2><ul><li>press <kbd>q</kbd> to quit</li></ul>`,
			want: "## Run _it_ now\n\n- press `q` to quit\n",
		},
		{
			name: "line break swallows surrounding spaces",
			in:   `<p>first line <br> second line</p>`,
			want: "first line\nsecond line\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTMLToMarkdown([]byte(tt.in)))
		})
	}
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, " to ", collapseSpaces("  to\n\t"))
	assert.Equal(t, "a b", collapseSpaces("a \n  b"))
	assert.Equal(t, " ", collapseSpaces("\n   "))
	assert.Equal(t, "", collapseSpaces(""))
	assert.Equal(t, "a"+string(lineBreak)+"b", collapseSpaces("a "+string(lineBreak)+" b"))
}
