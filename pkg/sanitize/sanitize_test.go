package sanitize

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	assert.Equal(t, `&lt;script&gt;alert("xss")&lt;/script&gt;`, Text(`<script>alert("xss")</script>`))

	got := Text(`Text with & < > " ' characters`)
	assert.Contains(t, got, "&amp;")
	assert.Contains(t, got, "&lt;")
	assert.Contains(t, got, "&gt;")

	got = Text("<script>")
	assert.False(t, strings.ContainsAny(got, "<>"))
}

func TestURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com", "https://example.com"},
		{"https://example.com/path", "https://example.com/path"},
		{"http://example.com/a?b=c", "http://example.com/a?b=c"},
		{"mailto:test@example.com", "mailto:test@example.com"},
		{"javascript:x", "#"},
		{`javascript:alert("xss")`, "#"},
		{`data:text/html,<script>alert("xss")</script>`, "#"},
		{"not-a-url", "#"},
		{"/relative/path", "#"},
		{"", "#"},
		{"https://", "#"},
		{"jav\tascript:alert(1)", "#"},
		{"java\nscript:alert(1)", "#"},
		{"vbscript:msgbox", "#"},
		{"VBScript:msgbox", "#"},
		{"data:text/html;base64,PHNjcmlwdD5hbGVydCgxKTwvc2NyaXB0Pg==", "#"},
		{"htt\tps://example.com", "https://example.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, URL(tt.in), tt.in)
	}
}

func TestHTML(t *testing.T) {
	assert.Equal(t, "<div>Safe content</div>", HTML(`<div>Safe content</div><script>alert("xss")</script>`))
	assert.Equal(t, "<div>Content</div>", HTML(`<div onclick="alert('xss')" onload="malicious()">Content</div>`))
	assert.Equal(t, "<a>Link</a>", HTML(`<a href="javascript:alert('xss')">Link</a>`))
	assert.Equal(t, `<p>x<img alt="a"/></p>`, HTML(`<p>x<script>bad()</script><img src="JavaScript:bad()" alt="a" onerror="bad()"></p>`))

	assert.Equal(t, "<a>tab</a>", HTML("<a href=\"jav\tascript:alert(1)\">tab</a>"))
	assert.Equal(t, "<a>tab</a>", HTML(`<a href="jav&#x09;ascript:alert(1)">tab</a>`))
	assert.Equal(t, "<a>vb</a>", HTML(`<a href="vbscript:msgbox">vb</a>`))
	assert.Equal(t, "<img/>", HTML(`<img src="data:text/html;base64,PHNjcmlwdD4=">`))
	assert.Equal(t, "<a>rel</a>", HTML(`<a href="/relative">rel</a>`))
	assert.Equal(t, `<a href="https://example.com">ok</a>`, HTML(`<a href="https://example.com">ok</a>`))

	got := HTML(`<div class="safe"><p>Safe <strong>content</strong></p></div>`)
	assert.Contains(t, got, "Safe")
	assert.Contains(t, got, "strong")
	assert.Contains(t, got, `class="safe"`)
}

func TestCSS(t *testing.T) {
	assert.Equal(t, "width: (alert(1))", CSS("width: expression(alert(1))"))
	assert.Equal(t, "background: url(alert(1))", CSS("background: url(JavaScript:alert(1))"))
	assert.Equal(t, ` "evil.css";`, CSS(`@IMPORT "evil.css";`))
	assert.Equal(t, "color: red", CSS("color: red"))
}

func TestJSON(t *testing.T) {
	type pair struct {
		A int    `json:"a"`
		B string `json:"b"`
	}
	got, ok := JSON[pair](map[string]any{"a": 1, "b": "x"})
	assert.True(t, ok)
	assert.Equal(t, pair{A: 1, B: "x"}, got)

	_, ok = JSON[pair](math.Inf(1))
	assert.False(t, ok)

	_, ok = JSON[pair]([]int{1})
	assert.False(t, ok)
}
