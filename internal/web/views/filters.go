package views

import (
	"strconv"
	"strings"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/recdash/recdash/pkg/recommendations"
)

// FilterCategory is one titled group of tags in the filter panel.
type FilterCategory struct {
	Title string
	Tags  []string
}

// Categories splits the available tags into their panel groups, keeping only tags matching q.
func Categories(tags recommendations.AvailableTags, q string) []FilterCategory {
	q = strings.ToLower(strings.TrimSpace(q))
	match := func(list []string) []string {
		if q == "" {
			return list
		}
		var out []string
		for _, t := range list {
			if strings.Contains(strings.ToLower(t), q) {
				out = append(out, t)
			}
		}
		return out
	}
	return []FilterCategory{
		{"Frameworks", match(tags.Frameworks)},
		{"Providers", match(tags.Providers)},
		{"Classes", match(tags.Classes)},
		{"Reasons", match(tags.Reasons)},
	}
}

// FilterButton opens the filter panel and shows how many tags are selected.
func FilterButton(selected int, oob bool) g.Node {
	label := "Filter"
	if selected > 0 {
		label = "Filter (" + strconv.Itoa(selected) + " selected)"
	}
	return Button(ID("filter-button"), Type("button"), Data("testid", "filter-button"),
		Class("rounded-md border border-slate-300 dark:border-slate-700 px-3 py-2 text-sm"),
		g.If(oob, g.Attr("hx-swap-oob", "true")),
		g.Attr("hx-get", "/filters"),
		g.Attr("hx-target", "#filter-panel"),
		g.Attr("hx-swap", "outerHTML"),
		g.Text(label),
	)
}

// SelectedTags lists the active tag filters, each removable.
func SelectedTags(tags []string, oob bool) g.Node {
	return Div(ID("selected-tags"), Class("flex flex-wrap gap-2"), Data("testid", "selected-tags"),
		g.If(oob, g.Attr("hx-swap-oob", "true")),
		g.Map(tags, func(t string) g.Node {
			return tagForm(t, true, Class("rounded-full bg-sky-500/10 text-sky-700 dark:text-sky-300 px-3 py-1 text-xs"), g.Text(t+" ×"))
		}),
	)
}

// FilterPanel is the #filter-panel fragment with the searchable tag categories.
func FilterPanel(tags recommendations.AvailableTags, selected []string, q string, err error) g.Node {
	isSelected := make(map[string]bool, len(selected))
	for _, t := range selected {
		isSelected[t] = true
	}
	return Div(ID("filter-panel"), Class("rounded-lg border border-slate-200 dark:border-slate-800 p-4 space-y-4"), Data("testid", "filter-panel"),
		Div(Class("flex items-center gap-3"),
			Input(Type("search"), Name("q"), Value(q), Placeholder("Search tags..."), Data("testid", "tag-search"),
				Class("flex-1 rounded-md border border-slate-300 dark:border-slate-700 bg-transparent px-3 py-1 text-sm"),
				g.Attr("hx-get", "/filters"),
				g.Attr("hx-trigger", "input changed delay:300ms"),
				g.Attr("hx-target", "#filter-tags"),
				g.Attr("hx-select", "#filter-tags"),
				g.Attr("hx-swap", "outerHTML"),
			),
			Button(Type("button"), Class("text-sm text-slate-500"), g.Attr("onclick", "document.getElementById('filter-panel').innerHTML=''"), g.Text("Close")),
		),
		g.If(err != nil, P(Class("text-sm text-red-600"), Role("alert"), g.Text("Failed to load filters"))),
		Div(ID("filter-tags"), Class("grid gap-4 md:grid-cols-2"),
			g.Map(Categories(tags, q), func(c FilterCategory) g.Node {
				return categoryEl(c, isSelected)
			}),
		),
		g.If(len(selected) > 0, Button(Type("button"), Class("text-sm text-red-600"), Data("testid", "clear-filters"),
			g.Attr("hx-post", "/filters/clear"),
			g.Attr("hx-target", "#filter-panel"),
			g.Attr("hx-swap", "outerHTML"),
			g.Text("Clear All Filters"),
		)),
	)
}

func categoryEl(c FilterCategory, isSelected map[string]bool) g.Node {
	return Div(Data("testid", "filter-category"), Data("category", c.Title),
		H4(Class("text-sm font-semibold mb-2"), g.Textf("%s (%d)", c.Title, len(c.Tags))),
		Div(Class("flex flex-wrap gap-2"),
			g.Map(c.Tags, func(t string) g.Node {
				class := "rounded-full border px-3 py-1 text-xs "
				if isSelected[t] {
					class += "bg-sky-600 text-white border-sky-600 selected"
				} else {
					class += "border-slate-300 dark:border-slate-700"
				}
				return tagForm(t, false, Class(class), Data("testid", "filter-tag"), g.Text(t))
			}),
		),
	)
}

// tagForm toggles one tag. Inside the panel the panel is re-rendered; elsewhere nothing is swapped
// in place and the list refresh comes from the filters-changed event.
func tagForm(tag string, chip bool, button ...g.Node) g.Node {
	target, swap := "#filter-panel", "outerHTML"
	if chip {
		target, swap = "this", "none"
	}
	return Form(Class("inline"),
		g.Attr("hx-post", "/filters/tags"),
		g.Attr("hx-target", target),
		g.Attr("hx-swap", swap),
		Input(Type("hidden"), Name("tag"), Value(tag)),
		Button(append([]g.Node{Type("submit")}, button...)...),
	)
}
