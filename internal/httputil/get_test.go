// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_SendsHeadersAndReturnsBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "trendcrawl/test", r.Header.Get("User-Agent"))
		fmt.Fprint(w, "hello")
	}))
	defer ts.Close()

	body, err := Get(context.Background(), ts.Client(), ts.URL, http.Header{"User-Agent": {"trendcrawl/test"}})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestGet_NonOKIsStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	_, err := Get(context.Background(), ts.Client(), ts.URL, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
}

func TestGetJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[1,2,3]`)
	}))
	defer ts.Close()

	var ids []int
	require.NoError(t, GetJSON(context.Background(), ts.Client(), ts.URL, nil, &ids))
	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestGetJSON_MalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html>`)
	}))
	defer ts.Close()

	var v map[string]any
	err := GetJSON(context.Background(), ts.Client(), ts.URL, nil, &v)
	assert.Error(t, err)
}
