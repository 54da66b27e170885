package views

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/recdash/recdash/pkg/query"
	"github.com/recdash/recdash/pkg/recommendations"
	"github.com/recdash/recdash/pkg/sanitize"
)

const closeSheetJS = "document.getElementById('sheet').innerHTML=''"

// Sheet is the detail panel for one recommendation, swapped into #sheet.
func Sheet(key query.Key, r recommendations.Recommendation) g.Node {
	return Div(Class("fixed inset-0 z-40 flex justify-end bg-black/40"), Data("testid", "recommendation-sheet"), Data("id", r.RecommendationID),
		Div(Class("h-full w-full max-w-2xl overflow-y-auto bg-white dark:bg-slate-900 p-6 shadow-xl space-y-6"),
			Div(Class("flex items-start justify-between gap-4"),
				Div(
					H2(Class("text-xl font-bold"), g.Text(r.Title)),
					Div(Class("mt-2 flex flex-wrap gap-2"),
						g.Map(r.Provider, func(p recommendations.CloudProvider) g.Node {
							return Span(Class("rounded bg-slate-100 dark:bg-slate-800 px-2 py-0.5 text-xs"), Data("testid", "provider-name"), g.Text(p.FullName()))
						}),
					),
				),
				valuePips(r.Score),
				Button(Type("button"), Aria("label", "Close"), g.Attr("onclick", closeSheetJS), g.Text("×")),
			),
			g.If(len(r.Frameworks) > 0, Div(Class("flex flex-wrap gap-2 text-xs"), Data("testid", "sheet-frameworks"),
				g.Map(r.Frameworks, func(f recommendations.Framework) g.Node {
					return Span(Class("rounded-full border px-2 py-0.5"), g.Text(frameworkLabel(f)))
				}),
			)),
			Div(Class("prose prose-sm dark:prose-invert max-w-none"), Data("testid", "sheet-description"), g.Raw(DescriptionHTML(r.Description))),
			sheetSection("Resources Enforced by Policy", "sheet-resources",
				g.If(len(r.AffectedResources) == 0, P(Class("text-sm text-slate-500"), g.Text("None"))),
				Ul(Class("flex flex-wrap gap-2"),
					g.Map(r.AffectedResources, func(res recommendations.Resource) g.Node {
						return Li(Class("rounded bg-slate-100 dark:bg-slate-800 px-2 py-0.5 text-xs font-mono"), g.Text(res.Name))
					}),
				),
			),
			g.If(len(r.Reasons) > 0, sheetSection("Reasons", "sheet-reasons",
				Ul(Class("list-disc pl-5 text-sm space-y-1"),
					g.Map(r.Reasons, func(reason string) g.Node { return Li(g.Text(reason)) }),
				),
			)),
			sheetSection("Impact Assessment", "sheet-impact",
				Div(Class("grid grid-cols-2 gap-4 text-sm"),
					Div(
						P(Class("text-slate-500"), g.Text("Overall")),
						P(Class("font-semibold"), g.Textf("Violations: %d", r.ImpactAssessment.TotalViolations)),
					),
					Div(
						P(Class("text-slate-500"), g.Text("Most impacted scope")),
						P(Class("font-semibold"), g.Text(scopeLabel(r.ImpactAssessment.MostImpactedScope))),
					),
				),
			),
			g.If(len(r.FurtherReading) > 0, sheetSection("Further Reading", "sheet-reading",
				Ul(Class("space-y-1 text-sm"), g.Map(r.FurtherReading, readingLink)),
			)),
			Div(Class("flex gap-3 pt-4 border-t border-slate-200 dark:border-slate-800"),
				actionButton(key, r.RecommendationID),
				Button(Type("button"), Class("rounded-md border px-4 py-2 text-sm"), Disabled(), g.Text("Configure Policy")),
			),
		),
	)
}

func sheetSection(title, testID string, children ...g.Node) g.Node {
	return Section(Class("space-y-2"), Data("testid", testID),
		H3(Class("font-semibold"), g.Text(title)),
		g.Group(children),
	)
}

func frameworkLabel(f recommendations.Framework) string {
	parts := []string{f.Name}
	if f.Section != "" {
		parts = append(parts, f.Section)
	}
	if f.Subsection != "" {
		parts = append(parts, f.Subsection)
	}
	return strings.Join(parts, " ")
}

func scopeLabel(s recommendations.Scope) string {
	if s.Name == "" {
		return "-"
	}
	label := s.Name
	if s.Type != "" {
		label += " (" + s.Type + ")"
	}
	return label + " · " + pluralViolations(s.Count)
}

func pluralViolations(n int) string {
	if n == 1 {
		return "1 violation"
	}
	return strconv.Itoa(n) + " violations"
}

func readingLink(l recommendations.Link) g.Node {
	href := sanitize.URL(l.Href)
	name := l.Name
	if name == "" {
		name = href
	}
	return Li(
		A(Href(href), Target("_blank"), Rel("noopener noreferrer"), Class("text-sky-600 hover:underline"), g.Text(name)),
		g.If(LinkDomain(href) != "", Span(Class("ml-2 text-xs text-slate-500"), Data("testid", "link-domain"), g.Text(LinkDomain(href)))),
	)
}

// LinkDomain returns the registrable domain of an http(s) link, or "".
func LinkDomain(href string) string {
	u, err := url.Parse(href)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	host := u.Hostname()
	if host == "" {
		return ""
	}
	domain, err := publicsuffix.Domain(host)
	if err != nil {
		return host
	}
	return domain
}

// actionButton archives from the active list and unarchives from the archived one.
func actionButton(key query.Key, id string) g.Node {
	action, label := "archive", "Archive"
	if key.Archived {
		action, label = "unarchive", "Unarchive"
	}
	return Form(
		g.Attr("hx-post", ActivePath+"/"+url.PathEscape(id)+"/"+action),
		g.Attr("hx-target", "#rec-list"),
		g.Attr("hx-swap", "outerHTML"),
		Input(Type("hidden"), Name("search"), Value(key.Search)),
		Button(Type("submit"), Class("rounded-md bg-sky-600 px-4 py-2 text-sm text-white"), Data("testid", action+"-button"), g.Text(label)),
	)
}

// ClearSheet empties #sheet through an out-of-band swap.
func ClearSheet() g.Node {
	return Div(ID("sheet"), g.Attr("hx-swap-oob", "innerHTML"))
}

// NotFound is shown in the sheet when the recommendation is no longer in the list.
func NotFound() g.Node {
	return Div(Class("fixed inset-0 z-40 flex justify-end bg-black/40"), Data("testid", "sheet-not-found"),
		Div(Class("h-full w-full max-w-2xl bg-white dark:bg-slate-900 p-6"),
			P(g.Text("The requested resource was not found.")),
			Button(Type("button"), Class("mt-4 rounded-md border px-3 py-1 text-sm"), g.Attr("onclick", closeSheetJS), g.Text("Close")),
		),
	)
}
