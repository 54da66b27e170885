package views

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Dashboard is the placeholder landing page shared by the sections without their own screens.
func Dashboard(title string) g.Node {
	return Div(Class("space-y-8"),
		Div(
			H1(Class("text-3xl font-bold"), g.Text(title)),
			P(Class("text-slate-500 mt-2"), g.Text("Welcome to your security management dashboard")),
		),
		Div(Class("grid gap-6 md:grid-cols-2 lg:grid-cols-3"),
			panel("Quick Actions", "Get started with the most common tasks",
				A(Href("/recommendations"), Class("inline-block rounded-md bg-sky-600 px-4 py-2 text-white text-sm"), g.Text("View Recommendations →")),
			),
			panel("Recent Activity", "No recent activity to display", nil),
			panel("System Status", "All systems operational", nil),
		),
	)
}

func panel(title, text string, action g.Node) g.Node {
	return Div(Class("p-6 border border-slate-200 dark:border-slate-800 rounded-lg"),
		H5(Class("font-semibold mb-2"), g.Text(title)),
		P(Class("text-sm text-slate-500 mb-4"), g.Text(text)),
		action,
	)
}

// LoadingPage is served while the session is still being restored.
func LoadingPage() g.Node {
	return Document("recdash", false,
		Meta(g.Attr("http-equiv", "refresh"), Content("1")),
		Div(Class("min-h-screen flex items-center justify-center"), Role("status"),
			Span(Class("text-slate-500"), g.Text("Loading...")),
		),
	)
}
