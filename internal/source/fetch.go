// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/http"

	"github.com/pdiddy/trendcrawl/internal/httputil"
)

// httpGet and httpGetJSON route every adapter request through the shared
// client and headers. Failures are single attempts; the next cycle is the
// retry.
func httpGet(ctx context.Context, o Options, url string, h http.Header) ([]byte, error) {
	return httputil.Get(ctx, o.client(), url, h)
}

func httpGetJSON(ctx context.Context, o Options, url string, v any) error {
	return httputil.GetJSON(ctx, o.client(), url, o.header("application/json"), v)
}
