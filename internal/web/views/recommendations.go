package views

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/recdash/recdash/pkg/apiclient"
	"github.com/recdash/recdash/pkg/query"
	"github.com/recdash/recdash/pkg/recommendations"
)

const (
	ActivePath   = "/recommendations"
	ArchivedPath = "/recommendations/archive"
	MorePath     = "/recommendations/more"
)

// ListProps is everything the list page and its fragments render from.
type ListProps struct {
	View           query.View
	SelectedTags   []string
	SearchDebounce time.Duration
}

func (p ListProps) archived() bool { return p.View.Key.Archived }

// ListURL is the address that re-renders the list for a key.
func ListURL(key query.Key) string {
	path := ActivePath
	if key.Archived {
		path = ArchivedPath
	}
	if key.Search == "" {
		return path
	}
	return path + "?" + url.Values{"search": {key.Search}}.Encode()
}

// MoreURL is the address of the next-page fragment for a key.
func MoreURL(key query.Key) string {
	v := url.Values{}
	if key.Archived {
		v.Set("archived", "true")
	}
	if key.Search != "" {
		v.Set("search", key.Search)
	}
	if len(v) == 0 {
		return MorePath
	}
	return MorePath + "?" + v.Encode()
}

// DetailURL is the address of the detail sheet for a recommendation shown under key.
func DetailURL(key query.Key, id string) string {
	v := url.Values{}
	if key.Archived {
		v.Set("archived", "true")
	}
	if key.Search != "" {
		v.Set("search", key.Search)
	}
	u := ActivePath + "/" + url.PathEscape(id)
	if len(v) == 0 {
		return u
	}
	return u + "?" + v.Encode()
}

// RecommendationsPage is the content of the active and archived list pages.
func RecommendationsPage(p ListProps) g.Node {
	title, other, otherLabel := "Recommendations", ArchivedPath, "View Archived"
	if p.archived() {
		title, other, otherLabel = "Archived Recommendations", ActivePath, "View Active"
	}
	return Div(Class("space-y-6"),
		Div(Class("flex items-center justify-between"),
			H1(Class("text-3xl font-bold"), g.Text(title)),
			A(Href(other), Class("text-sm text-sky-600 hover:underline"), Data("testid", "list-switch"), g.Text(otherLabel)),
		),
		Div(Class("flex flex-wrap items-center gap-3"),
			SearchBar(p.View.Key, p.SearchDebounce),
			FilterButton(len(p.SelectedTags), false),
		),
		SelectedTags(p.SelectedTags, false),
		Div(ID("filter-panel")),
		ListFragment(p),
	)
}

// SearchBar issues a list request once typing has been quiet for delay.
func SearchBar(key query.Key, delay time.Duration) g.Node {
	path := ActivePath
	if key.Archived {
		path = ArchivedPath
	}
	trigger := "input changed delay:" + strconv.FormatInt(delay.Milliseconds(), 10) + "ms, search"
	return Input(Type("search"), Name("search"), Value(key.Search), Placeholder("Search recommendations..."),
		Data("testid", "search-input"),
		Class("flex-1 min-w-64 rounded-md border border-slate-300 dark:border-slate-700 bg-transparent px-3 py-2"),
		g.Attr("hx-get", path),
		g.Attr("hx-trigger", trigger),
		g.Attr("hx-target", "#rec-list"),
		g.Attr("hx-swap", "outerHTML"),
		g.Attr("hx-push-url", "true"),
	)
}

// ListFragment renders the #rec-list fragment: counter, cards, states and the scroll sentinel.
func ListFragment(p ListProps) g.Node {
	v := p.View
	return Div(ID("rec-list"), Class("space-y-4"),
		g.Attr("hx-get", ListURL(v.Key)),
		g.Attr("hx-trigger", "filters-changed from:body"),
		g.Attr("hx-swap", "outerHTML"),
		g.If(v.Loaded(), P(Class("text-sm text-slate-500"), Data("testid", "result-count"),
			g.Textf("Showing %d of %d results", len(v.Items), v.TotalCount))),
		g.If(v.Err != nil, ErrorBanner(v.Key, v.Err)),
		g.If(v.Loaded() && len(v.Items) == 0, EmptyState(v.Key.Archived)),
		Div(Class("grid gap-4"), Data("testid", "recommendation-list"),
			g.Map(v.Items, func(r recommendations.Recommendation) g.Node {
				return Card(v.Key, r)
			}),
		),
		g.If(v.HasNextPage && v.Err == nil, Div(Class("py-4 text-center text-sm text-slate-500"),
			Data("testid", "load-more"),
			g.Attr("hx-get", MoreURL(v.Key)),
			g.Attr("hx-trigger", "revealed"),
			g.Attr("hx-target", "#rec-list"),
			g.Attr("hx-swap", "outerHTML"),
			g.Text("Loading more..."),
		)),
	)
}

func EmptyState(archived bool) g.Node {
	kind := "active"
	if archived {
		kind = "archived"
	}
	return Div(Class("py-16 text-center"), Data("testid", "empty-state"),
		H3(Class("text-lg font-semibold"), g.Text("No recommendations found")),
		P(Class("text-slate-500 mt-1"), g.Textf("No %s recommendations match your criteria", kind)),
	)
}

func ErrorBanner(key query.Key, err error) g.Node {
	return Div(Class("rounded-md border border-red-300 bg-red-50 dark:bg-red-950 p-4"), Role("alert"), Data("testid", "list-error"),
		P(Class("font-semibold text-red-700 dark:text-red-300"), g.Text("Failed to load recommendations")),
		P(Class("text-sm text-red-600 mt-1"), g.Text(apiclient.Message(err))),
		Button(Type("button"), Class("mt-3 rounded-md border px-3 py-1 text-sm"), Data("testid", "retry-button"),
			g.Attr("hx-get", ListURL(key)),
			g.Attr("hx-target", "#rec-list"),
			g.Attr("hx-swap", "outerHTML"),
			g.Text("Retry"),
		),
	)
}

// ValueScore maps a 0-100 score onto 0-4 pips.
func ValueScore(score int) int {
	switch {
	case score <= 0:
		return 0
	case score >= 100:
		return 4
	}
	return score * 4 / 100
}

func valuePips(score int) g.Node {
	filled := ValueScore(score)
	pips := make([]g.Node, 4)
	for i := range pips {
		class := "inline-block h-2 w-4 rounded-sm bg-slate-200 dark:bg-slate-700"
		if i < filled {
			class = "inline-block h-2 w-4 rounded-sm bg-sky-500 filled"
		}
		pips[i] = Span(Class(class))
	}
	return Div(Class("flex items-center gap-1"), Data("testid", "value-score"), Data("value", strconv.Itoa(filled)),
		Span(Class("text-xs text-slate-500 mr-1"), g.Text("Value")),
		g.Group(pips),
	)
}

// Card is one recommendation in the list. Clicking it opens the detail sheet.
func Card(key query.Key, r recommendations.Recommendation) g.Node {
	return Div(Class("cursor-pointer rounded-lg border border-slate-200 dark:border-slate-800 p-5 hover:shadow-md transition-shadow"),
		Data("testid", "recommendation-card"),
		Data("id", r.RecommendationID),
		g.Attr("hx-get", DetailURL(key, r.RecommendationID)),
		g.Attr("hx-target", "#sheet"),
		g.Attr("hx-swap", "innerHTML"),
		Div(Class("flex items-start justify-between gap-4"),
			Div(Class("min-w-0"),
				H3(Class("font-semibold"), g.Text(r.Title)),
				Div(Class("mt-1 flex flex-wrap gap-2"),
					g.Map(r.Provider, ProviderBadge),
					g.If(r.Class != recommendations.ClassUnspecified, Span(Class("text-xs text-slate-500"), g.Text(r.Class.String()))),
				),
			),
			valuePips(r.Score),
		),
		P(Class("mt-3 text-sm text-slate-600 dark:text-slate-400 line-clamp-2"), Data("testid", "description"), g.Text(DescriptionPreview(r.Description))),
		Div(Class("mt-3 flex flex-wrap items-center gap-2 text-xs"),
			frameworkBadges(r.Frameworks, 2),
			Span(Class("ml-auto text-slate-500"), Data("testid", "violations"),
				g.Textf("~%d violations/month", r.TotalHistoricalViolations)),
		),
	)
}

func ProviderBadge(p recommendations.CloudProvider) g.Node {
	return Span(Class("rounded bg-slate-100 dark:bg-slate-800 px-2 py-0.5 text-xs font-medium"), Data("testid", "provider"),
		g.Attr("title", p.FullName()),
		g.Text(p.String()),
	)
}

func frameworkBadges(frameworks []recommendations.Framework, limit int) g.Node {
	shown := frameworks
	if len(shown) > limit {
		shown = shown[:limit]
	}
	nodes := make([]g.Node, 0, len(shown)+1)
	for _, f := range shown {
		nodes = append(nodes, Span(Class("rounded-full border px-2 py-0.5"), Data("testid", "framework"), g.Text(f.Name)))
	}
	if extra := len(frameworks) - len(shown); extra > 0 {
		nodes = append(nodes, Span(Class("text-slate-500"), Data("testid", "framework-more"), g.Text(fmt.Sprintf("+%d", extra))))
	}
	return g.Group(nodes)
}
