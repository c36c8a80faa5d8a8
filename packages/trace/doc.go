// Package trace adds request visibility to fetch clients: a console dumper
// for outgoing requests and responses, and a request-ID stamping hook for
// correlating client calls with server logs.
package trace
