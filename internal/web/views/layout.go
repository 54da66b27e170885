// Package views renders the dashboard pages and htmx fragments.
package views

import (
	"strings"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html" // Using . import for convenience with html tags

	"github.com/recdash/recdash/internal/utils"
)

// Shell carries what every authenticated page needs around its content.
type Shell struct {
	Title    string
	Path     string
	Dark     bool
	Username string
	Email    string
}

type navItem struct {
	Title  string
	Href   string
	TestID string
}

var navigationItems = []navItem{
	{"Dashboard", "/", "nav-dashboard"},
	{"Recommendations", "/recommendations", "nav-recommendations"},
	{"Policies", "/policies", "nav-policies"},
	{"Events", "/events", "nav-events"},
	{"Waivers", "/waivers", "nav-waivers"},
}

// Document wraps body in the html skeleton shared by every full page.
func Document(title string, dark bool, body ...g.Node) g.Node {
	htmlClass := ""
	if dark {
		htmlClass = "dark"
	}
	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(Lang("en"), g.If(htmlClass != "", Class(htmlClass)),
			Head(
				Meta(Charset("UTF-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text(title)),
				Script(Src("https://cdn.tailwindcss.com")),
				Script(Src("https://unpkg.com/htmx.org@2.0.4")),
				Script(g.Raw(`tailwind.config={darkMode:'class'}`)),
			),
			Body(Class("bg-white text-slate-900 dark:bg-slate-950 dark:text-slate-200 font-sans antialiased"),
				g.Group(body),
				Div(ID("toasts"), Class("fixed bottom-4 right-4 z-50 space-y-2")),
			),
		),
	})
}

// Page renders content inside the sidebar and header layout.
func Page(shell Shell, content g.Node) g.Node {
	return Document(shell.Title+" - recdash", shell.Dark,
		Div(Class("h-screen overflow-hidden"),
			Div(Class("grid lg:grid-cols-[225px_1fr] h-full"),
				Sidebar(shell),
				Main(Class("flex flex-col h-full overflow-hidden"),
					TopBar(shell.Dark),
					Div(Class("flex-1 overflow-auto"),
						Div(Class("container mx-auto px-6 py-8"), content),
					),
				),
			),
		),
		Div(ID("sheet")),
	)
}

// Sidebar renders the logo, navigation, user profile and logout button.
func Sidebar(shell Shell) g.Node {
	return Aside(Class("hidden lg:flex flex-col h-screen border-r border-slate-200 dark:border-slate-800"), Data("testid", "sidebar"),
		Div(Class("p-6"),
			A(Href("/"), Class("text-xl font-bold tracking-tight"), g.Text("recdash")),
		),
		Div(Class("flex-1 overflow-y-auto px-4"),
			Navigation(shell.Path),
		),
		Div(Class("p-4 border-t border-slate-200 dark:border-slate-800"),
			UserProfile(shell.Username, shell.Email),
			Form(Method("POST"), Action("/logout"), Class("mt-4"),
				Button(Type("submit"), Class("w-full text-left px-3 py-2 rounded-lg text-sm hover:bg-slate-100 dark:hover:bg-slate-800"),
					Data("testid", "logout-button"),
					g.Text("Logout"),
				),
			),
		),
	)
}

// Navigation renders the platform links with the current section highlighted.
func Navigation(currentPath string) g.Node {
	links := []g.Node{
		P(Class("px-2 text-xs font-semibold text-slate-500 uppercase tracking-wider mb-3"), g.Text("Platform")),
	}
	for _, item := range navigationItems {
		classes := "flex items-center gap-3 px-3 py-2 rounded-lg text-sm font-medium transition-colors "
		if isActive(currentPath, item.Href) {
			classes += "bg-sky-500/10 text-sky-600 dark:text-sky-400 active"
		} else {
			classes += "text-slate-500 hover:bg-slate-100 dark:hover:bg-slate-800"
		}
		links = append(links, A(Href(item.Href), Class(classes), Data("testid", item.TestID), g.Text(item.Title)))
	}
	return Nav(Class("space-y-1"), g.Group(links))
}

func isActive(currentPath, href string) bool {
	if href == "/" {
		return currentPath == "/"
	}
	return strings.HasPrefix(currentPath, href)
}

// UserProfile shows the user's initials, name and email. It renders nothing without a user.
func UserProfile(username, email string) g.Node {
	if username == "" && email == "" {
		return nil
	}
	display := username
	if display == "" {
		display = email
	}
	return Div(Class("flex items-center gap-3"), Data("testid", "user-profile"),
		Div(Class("h-10 w-10 rounded-lg bg-sky-500/20 flex items-center justify-center"),
			Span(Class("text-sm font-semibold text-sky-600"), g.Text(utils.Initials(display))),
		),
		Div(Class("flex-1 min-w-0"),
			P(Class("text-sm font-semibold truncate"), g.Text(display)),
			g.If(email != "", P(Class("text-xs text-slate-500 truncate"), g.Text(email))),
		),
	)
}

// TopBar renders the header with the theme toggle.
func TopBar(dark bool) g.Node {
	label := "Switch to dark mode"
	icon := "☾"
	if dark {
		label = "Switch to light mode"
		icon = "☀"
	}
	return Header(Class("flex items-center justify-between p-5 border-b border-slate-200 dark:border-slate-800"),
		Div(Class("ml-auto"),
			Form(Method("POST"), Action("/theme"),
				Button(Type("submit"), Aria("label", label), Data("testid", "theme-toggle"),
					Class("h-9 w-9 rounded-md hover:bg-slate-100 dark:hover:bg-slate-800"),
					g.Text(icon),
				),
			),
		),
	)
}
