package views

import (
	"html"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	strip "github.com/grokify/html-strip-tags-go"

	"github.com/recdash/recdash/pkg/sanitize"
)

// DescriptionHTML renders a markdown description to HTML that is safe to embed.
func DescriptionHTML(desc string) string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.SkipHTML | mdhtml.Safelink | mdhtml.HrefTargetBlank,
	})
	return sanitize.HTML(string(markdown.ToHTML([]byte(desc), p, renderer)))
}

// DescriptionPreview is the description as one line of plain text, for cards.
func DescriptionPreview(desc string) string {
	text := strip.StripTags(DescriptionHTML(desc))
	return strings.Join(strings.Fields(html.UnescapeString(text)), " ")
}
