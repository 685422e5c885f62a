// Package navigation resolves safe back/return URLs for redirects.
package navigation

import (
	"net/http"
	"strings"
)

// Common fallback destinations.
const (
	EventsBackURL      = "/events"
	ReviewsBackURL     = "/reviews"
	CoordinatorBackURL = "/coordinator"
	SystemUsersBackURL = "/system-users"
)

// SafeBackURL returns the request's "return" form/query value when it is
// a site-relative path, otherwise the fallback. Absolute URLs and
// protocol-relative values are rejected to prevent open redirects.
func SafeBackURL(r *http.Request, fallback string) string {
	ret := strings.TrimSpace(r.FormValue("return"))
	if ret == "" {
		ret = strings.TrimSpace(r.URL.Query().Get("return"))
	}
	if ret == "" || !strings.HasPrefix(ret, "/") || strings.HasPrefix(ret, "//") {
		return fallback
	}
	return ret
}
