package views

import (
	"github.com/google/uuid"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast renders a notification appended to #toasts through an out-of-band swap.
func Toast(kind ToastKind, message string) g.Node {
	return Div(ID("toasts"), g.Attr("hx-swap-oob", "beforeend"),
		toastBody(kind, message),
	)
}

func toastBody(kind ToastKind, message string) g.Node {
	id := "toast-" + uuid.NewString()
	classes := "toast rounded-md px-4 py-3 shadow-lg text-sm flex items-center gap-3 "
	if kind == ToastError {
		classes += "bg-red-600 text-white"
	} else {
		classes += "bg-emerald-600 text-white"
	}
	return Div(ID(id), Class(classes), Role("alert"), Data("kind", string(kind)),
		Span(g.Text(message)),
		Button(Type("button"), Class("ml-auto opacity-75 hover:opacity-100"), Aria("label", "Dismiss"),
			g.Attr("onclick", "this.parentElement.remove()"),
			g.Text("×"),
		),
	)
}
