package mock

import (
	"regexp"
	"strings"
)

// Route pairs a method and path pattern with a canned response. Pattern
// segments starting with ':' capture the matched value under that name.
type Route struct {
	Method   string
	Pattern  string
	Response *StubResponse

	regex *regexp.Regexp
}

// StubResponse is the canned response a route serves.
type StubResponse struct {
	StatusCode  int
	ContentType string
	Headers     map[string]string
	Body        []byte
}

// Router matches incoming requests to routes.
type Router struct {
	routes []*Route
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		routes: make([]*Route, 0),
	}
}

// AddRoute registers a route. Routes are tried in registration order.
func (r *Router) AddRoute(route *Route) {
	route.regex = compilePattern(route.Pattern)
	r.routes = append(r.routes, route)
}

// Match finds the first route matching the given method and path, along
// with the values captured by ':' segments.
func (r *Router) Match(method, path string) (*Route, map[string]string) {
	path = normalizePath(path)

	for _, route := range r.routes {
		if !strings.EqualFold(route.Method, method) {
			continue
		}
		if params := matchPath(route, path); params != nil {
			return route, params
		}
	}

	return nil, nil
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}

func matchPath(route *Route, path string) map[string]string {
	matches := route.regex.FindStringSubmatch(path)
	if matches == nil {
		return nil
	}

	params := make(map[string]string)
	for i, name := range route.regex.SubexpNames() {
		if i > 0 && name != "" && i < len(matches) {
			params[name] = matches[i]
		}
	}
	return params
}

func compilePattern(pattern string) *regexp.Regexp {
	segments := strings.Split(normalizePath(pattern), "/")
	for i, segment := range segments {
		if strings.HasPrefix(segment, ":") && len(segment) > 1 {
			segments[i] = "(?P<" + segment[1:] + ">[^/]+)"
		} else {
			segments[i] = regexp.QuoteMeta(segment)
		}
	}
	return regexp.MustCompile("^" + strings.Join(segments, "/") + "$")
}
