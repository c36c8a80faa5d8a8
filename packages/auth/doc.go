// Package auth provides authentication hooks and transport middleware for
// fetch clients.
//
// Header-based schemes (basic, bearer, API key) are before hooks. Digest
// authentication needs to observe the 401 challenge, so it wraps the
// transport instead. AWS Signature Version 4 signs the prepared request
// from a before hook, and OAuth2 token acquisition is handled by a caching
// TokenSource.
package auth
