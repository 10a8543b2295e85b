package obs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// routeLabel must be called after the router ran: chi fills the shared route
// context while matching, so the pattern is only known on the way out.
// Unmatched requests get fallback to keep label cardinality bounded.
func routeLabel(r *http.Request, fallback string) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return fallback
}
