// Package formutil provides helpers for re-rendering forms with
// validation errors: the user's entered values echoed back, an error
// message, and the page context the form needs.
//
//	type newEventData struct {
//		formutil.Base
//		Name string
//		Slug string
//	}
//
//	data := newEventData{Name: name, Slug: slug}
//	formutil.SetBase(&data.Base, r, "New Event", "/events")
//	data.SetError("Slug is already in use.")
//	templates.Render(w, r, "event_new", data)
package formutil

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/eventhub/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// Base contains common fields for form pages; embed it in form data
// structs.
type Base struct {
	Title       string
	IsLoggedIn  bool
	Role        string
	UserName    string
	BackURL     string
	CurrentPath string
	CSRFToken   string
	Error       template.HTML
}

// SetBase populates the common Base fields from the request context.
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	role, uname, _, _ := authz.UserCtx(r)
	b.Title = title
	b.IsLoggedIn = true
	b.Role = role
	b.UserName = uname
	b.BackURL = httpnav.ResolveBackURL(r, backDefault)
	b.CurrentPath = httpnav.CurrentPath(r)
	b.CSRFToken = csrf.Token(r)
}

// SetError sets the error message shown above the form.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(msg)
}
