package views

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// LoginForm holds the submitted values and per-field errors of the sign-in form.
type LoginForm struct {
	Username      string
	From          string
	UsernameError string
	PasswordError string
	// Toast is a form-wide error, shown as a notification.
	Toast string
}

func LoginPage(form LoginForm, dark bool) g.Node {
	return Document("Sign In - recdash", dark,
		Div(Class("min-h-screen flex items-center justify-center"),
			Div(Class("w-full max-w-md mx-auto border border-slate-200 dark:border-slate-800 rounded-lg shadow-lg p-8"),
				Div(Class("text-center mb-8"),
					P(Class("text-xl font-bold tracking-tight"), g.Text("recdash")),
					H1(Class("mt-6 text-2xl font-bold"), g.Text("Sign In")),
					P(Class("mt-2 text-slate-500"), g.Text("Enter your credentials to access your account")),
				),
				loginFormEl(form),
			),
		),
		g.If(form.Toast != "", Div(ID("login-toast"), Class("fixed bottom-4 right-4"), toastBody(ToastError, form.Toast))),
	)
}

func loginFormEl(form LoginForm) g.Node {
	return Form(Method("POST"), Action("/login"), Class("space-y-6"), ID("login-form"),
		g.If(form.From != "", Input(Type("hidden"), Name("from"), Value(form.From))),
		field("username", "Username", "text", "username", form.Username, form.UsernameError),
		field("password", "Password", "password", "current-password", "", form.PasswordError),
		Button(Type("submit"), Data("testid", "login-button"),
			Class("w-full rounded-md bg-sky-600 px-4 py-2 text-white font-medium hover:bg-sky-500"),
			g.Text("Sign In"),
		),
	)
}

func field(id, label, kind, autocomplete, value, errMsg string) g.Node {
	inputClass := "w-full rounded-md border px-3 py-2 bg-transparent "
	if errMsg != "" {
		inputClass += "border-red-500"
	} else {
		inputClass += "border-slate-300 dark:border-slate-700"
	}
	return Div(Class("space-y-2"),
		Label(For(id), Class("text-sm font-medium"), g.Text(label)),
		Input(ID(id), Name(id), Type(kind), AutoComplete(autocomplete), Value(value), Class(inputClass),
			Data("testid", id+"-input"),
			g.If(errMsg != "", Aria("invalid", "true")),
		),
		g.If(errMsg != "", P(Class("text-sm text-red-600 field-error"), Data("field", id), g.Text(errMsg))),
	)
}
