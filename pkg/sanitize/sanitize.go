// Package sanitize makes untrusted strings safe to place in rendered pages.
package sanitize

import (
	"bytes"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var textReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Text escapes &, < and >. Quotes are left alone.
func Text(s string) string {
	return textReplacer.Replace(s)
}

var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
}

// urlNoise is what browsers silently remove from a URL before resolving it.
var urlNoise = strings.NewReplacer("\t", "", "\n", "", "\r", "")

// URL returns s when it is an absolute http, https or mailto URL, and "#" otherwise.
// Tabs and newlines are removed first, the same way a browser reads the URL.
func URL(s string) string {
	s = urlNoise.Replace(strings.TrimSpace(s))
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return "#"
	}
	if !allowedSchemes[strings.ToLower(u.Scheme)] {
		return "#"
	}
	if u.Scheme != "mailto" && u.Host == "" {
		return "#"
	}
	return s
}

var dangerousAttrs = map[string]bool{
	"onclick":     true,
	"onload":      true,
	"onerror":     true,
	"onmouseover": true,
	"onfocus":     true,
	"onblur":      true,
}

// HTML drops script elements, inline event handlers and every href or src
// that URL rejects from s.
func HTML(s string) string {
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(s), container)
	if err != nil {
		return Text(s)
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if isScript(n) {
			continue
		}
		clean(n)
		if err := html.Render(&buf, n); err != nil {
			return Text(s)
		}
	}
	return buf.String()
}

func isScript(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Script
}

func clean(n *html.Node) {
	if n.Type == html.ElementNode {
		attrs := n.Attr[:0]
		for _, a := range n.Attr {
			key := strings.ToLower(a.Key)
			if dangerousAttrs[key] {
				continue
			}
			if key == "href" || key == "src" {
				if a.Val = URL(a.Val); a.Val == "#" {
					continue
				}
			}
			attrs = append(attrs, a)
		}
		n.Attr = attrs
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if isScript(c) {
			n.RemoveChild(c)
		} else {
			clean(c)
		}
		c = next
	}
}

var cssPatterns = func() []*regexp.Regexp {
	words := []string{
		"expression",
		"javascript:",
		"vbscript:",
		"data:",
		"@import",
		"behavior:",
		"-moz-binding",
		"binding:",
	}
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		out = append(out, regexp.MustCompile("(?i)"+regexp.QuoteMeta(w)))
	}
	return out
}()

// CSS removes constructs that can run code from a style value.
func CSS(s string) string {
	for _, re := range cssPatterns {
		s = re.ReplaceAllString(s, "")
	}
	return s
}

// JSON copies v into a T through a JSON round trip. It reports false when v
// cannot be encoded or does not fit T.
func JSON[T any](v any) (T, bool) {
	var out T
	data, err := json.Marshal(v)
	if err != nil {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}
