// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source implements the acquisition strategies for each upstream:
// Redlib mirrors, the PullPush archive, Reddit's JSON and feed endpoints,
// Hacker News, and generic RSS/Atom feeds. Adapters never return errors
// from Fetch; failures are logged as warnings and yield no items.
package source

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Options holds what every adapter shares.
type Options struct {
	// Client performs requests. Nil uses a client with a 15s timeout.
	Client *http.Client

	// UserAgent is sent on every request.
	UserAgent string

	// Log receives warning lines. Nil discards them.
	Log io.Writer
}

func (o Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return &http.Client{Timeout: defaultTimeout}
}

func (o Options) withDefaults() Options {
	o.Client = o.client()
	return o
}

func (o Options) header(accept string) http.Header {
	h := http.Header{}
	if o.UserAgent != "" {
		h.Set("User-Agent", o.UserAgent)
	}
	if accept != "" {
		h.Set("Accept", accept)
	}
	return h
}

func (o Options) warnf(format string, args ...any) {
	if o.Log == nil {
		return
	}
	fmt.Fprintf(o.Log, "  warning: "+format+"\n", args...)
}

// validBase checks that raw is an absolute http(s) URL and returns it
// without a trailing slash.
func validBase(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing base URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("base URL %q must be an absolute http(s) URL", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}
