package views

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"

	"github.com/recdash/recdash/pkg/query"
	"github.com/recdash/recdash/pkg/recommendations"
	"github.com/recdash/recdash/pkg/sanitize"
)

func render(t *testing.T, n g.Node) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, n.Render(&buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestValueScore(t *testing.T) {
	tests := map[int]int{-5: 0, 0: 0, 24: 0, 25: 1, 49: 1, 50: 2, 74: 2, 75: 3, 99: 3, 100: 4, 150: 4}
	for score, want := range tests {
		assert.Equal(t, want, ValueScore(score), "score %d", score)
	}
}

func TestLinkDomain(t *testing.T) {
	assert.Equal(t, "amazon.com", LinkDomain("https://docs.aws.amazon.com/iam/"))
	assert.Equal(t, "example.co.uk", LinkDomain("http://www.example.co.uk"))
	assert.Equal(t, "", LinkDomain("mailto:security@example.com"))
	assert.Equal(t, "", LinkDomain("#"))
}

func TestURLs(t *testing.T) {
	key := query.NewKey(true, "root mfa", []string{"CIS"})
	assert.Equal(t, "/recommendations/archive?search=root+mfa", ListURL(key))
	assert.Equal(t, "/recommendations/more?archived=true&search=root+mfa", MoreURL(key))
	assert.Equal(t, "/recommendations/a%2Fb?archived=true&search=root+mfa", DetailURL(key, "a/b"))
	assert.Equal(t, "/recommendations", ListURL(query.Key{}))
	assert.Equal(t, "/recommendations/more", MoreURL(query.Key{}))
}

func TestCategoriesFilter(t *testing.T) {
	tags := recommendations.AvailableTags{
		Frameworks: []string{"CIS", "NIST"},
		Providers:  []string{"AWS", "Azure"},
	}
	cats := Categories(tags, " cis ")
	require.Len(t, cats, 4)
	assert.Equal(t, "Frameworks", cats[0].Title)
	assert.Equal(t, []string{"CIS"}, cats[0].Tags)
	assert.Empty(t, cats[1].Tags)

	all := Categories(tags, "")
	assert.Equal(t, []string{"AWS", "Azure"}, all[1].Tags)
}

func TestListErrorStateKeepsItems(t *testing.T) {
	v := query.View{
		Items:      []recommendations.Recommendation{{RecommendationID: "r1", Title: "One"}},
		TotalCount: 5,
		Pages:      1,
		Err:        errors.New("boom"),
	}
	doc := render(t, ListFragment(ListProps{View: v}))

	assert.Equal(t, "Failed to load recommendations", doc.Find(`[data-testid="list-error"] p`).First().Text())
	assert.Equal(t, 1, doc.Find(`[data-testid="recommendation-card"]`).Length())
	assert.Equal(t, 1, doc.Find(`[data-testid="retry-button"]`).Length())
	assert.Equal(t, "Showing 1 of 5 results", doc.Find(`[data-testid="result-count"]`).Text())
}

func TestSearchBarUsesDebounce(t *testing.T) {
	doc := render(t, SearchBar(query.Key{Search: "x"}, 0))
	trigger, _ := doc.Find("input").Attr("hx-trigger")
	assert.True(t, strings.HasPrefix(trigger, "input changed delay:0ms"))
}

func TestUserProfileInitials(t *testing.T) {
	doc := render(t, UserProfile("alice", "alice@example.com"))
	assert.Equal(t, "AL", doc.Find("span").Text())
	assert.Nil(t, UserProfile("", ""))
}

func TestToastIDsAreUnique(t *testing.T) {
	a := render(t, Toast(ToastSuccess, "done")).Find(".toast")
	b := render(t, Toast(ToastSuccess, "done")).Find(".toast")
	idA, _ := a.Attr("id")
	idB, _ := b.Attr("id")
	assert.NotEqual(t, idA, idB)
	assert.Contains(t, a.Text(), "done")
}

func TestDescriptionMarkdown(t *testing.T) {
	out := DescriptionHTML("Use **MFA** for [root](javascript:alert(1)) <script>alert(1)</script>")
	assert.Contains(t, out, "<strong>MFA</strong>")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")

	assert.Equal(t, `Use MFA & "root" accounts`, DescriptionPreview("Use **MFA** &\n\n\"root\" accounts"))
	assert.Equal(t, "it's a b", DescriptionPreview("it&#x27;s a&nbsp;b"))
}

func TestDescriptionDropsUnsafeLinks(t *testing.T) {
	out := DescriptionHTML("[b](jav&#x09;ascript:alert(1)) [f](vbscript:msgbox) " +
		"[d](data:text/html;base64,PHNjcmlwdD4=) [ok](https://example.com/docs)")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	var links []string
	doc.Find("[href], [src]").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range []string{"href", "src"} {
			if v, ok := s.Attr(attr); ok {
				links = append(links, v)
				assert.Equal(t, v, sanitize.URL(v))
			}
		}
	})
	assert.Equal(t, []string{"https://example.com/docs"}, links)
}
