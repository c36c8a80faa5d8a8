package auth

import (
	"context"
	"encoding/base64"

	"github.com/abdul-hamid-achik/fetchkit/packages/fetch"
)

// Basic returns a before hook that sets an HTTP basic Authorization header.
func Basic(username, password string) fetch.BeforeHook {
	credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return setHeader("Authorization", "Basic "+credentials)
}

// Bearer returns a before hook that sets a bearer token Authorization
// header.
func Bearer(token string) fetch.BeforeHook {
	return setHeader("Authorization", "Bearer "+token)
}

// HeaderKey returns a before hook that sends an API key in the named
// header.
func HeaderKey(name, key string) fetch.BeforeHook {
	return setHeader(name, key)
}

// QueryKey returns a before hook that appends an API key to the query
// string.
func QueryKey(name, key string) fetch.BeforeHook {
	return func(ctx context.Context, url string, opts *fetch.Options) (string, *fetch.Options, error) {
		signed := fetch.AppendParams(url, fetch.Params{{Key: name, Value: key}})
		return signed, opts, nil
	}
}

func setHeader(name, value string) fetch.BeforeHook {
	return func(ctx context.Context, url string, opts *fetch.Options) (string, *fetch.Options, error) {
		next := opts.Clone()
		next.Headers[name] = value
		return url, next, nil
	}
}
