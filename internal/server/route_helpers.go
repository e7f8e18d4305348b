package server

import (
	"net/http"
	"sort"
	"strings"

	"github.com/ternarybob/stackscout/internal/handlers"
)

// MethodRouter maps an HTTP method to the handler serving it on one path
type MethodRouter map[string]http.HandlerFunc

// RouteByMethod dispatches on r.Method. Unlisted methods get a JSON 405
// with an Allow header naming the ones that are.
func RouteByMethod(w http.ResponseWriter, r *http.Request, routes MethodRouter) {
	if handler, ok := routes[r.Method]; ok && handler != nil {
		handler(w, r)
		return
	}
	w.Header().Set("Allow", routes.allowed())
	handlers.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// RouteResourceCollection serves a collection path: GET lists, POST creates.
// Either handler may be nil.
func RouteResourceCollection(w http.ResponseWriter, r *http.Request, list, create http.HandlerFunc) {
	RouteByMethod(w, r, MethodRouter{
		http.MethodGet:  list,
		http.MethodPost: create,
	})
}

func (m MethodRouter) allowed() string {
	methods := make([]string, 0, len(m))
	for method, h := range m {
		if h != nil {
			methods = append(methods, method)
		}
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
