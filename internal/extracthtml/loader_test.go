package extracthtml

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestLoader_Stdin verifies stdin input is read and returned as string.
//
// This is the most common mode when piping a saved page from another program.
func TestLoader_Stdin(t *testing.T) {
	t.Parallel()

	l := NewLoader(http.DefaultClient, 1*time.Second, "")
	html, err := l.Load(context.Background(), Input{
		Stdin: bytes.NewBufferString("<p>x</p>"),
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if html != "<p>x</p>" {
		t.Fatalf("unexpected html: %q", html)
	}
}

// TestLoader_URL_SendsHeaders verifies the browser-like headers go out.
func TestLoader_URL_SendsHeaders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			http.Error(w, "bad agent "+r.Header.Get("User-Agent"), http.StatusBadRequest)
			return
		}
		if r.Header.Get("Accept-Language") == "" {
			http.Error(w, "no language", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	l := NewLoader(&http.Client{Timeout: 2 * time.Second}, 2*time.Second, "test-agent")
	body, err := l.Load(context.Background(), Input{URL: srv.URL})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if body != "ok" {
		t.Fatalf("body=%q", body)
	}
}

// TestLoader_URL_Non2xx verifies we include status code and a body snippet.
// This dramatically improves debuggability when scraping.
func TestLoader_URL_Non2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	l := NewLoader(&http.Client{Timeout: 2 * time.Second}, 2*time.Second, "")
	_, err := l.Load(context.Background(), Input{URL: srv.URL})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	msg := err.Error()
	if !strings.Contains(msg, "http status 403") || !strings.Contains(msg, "nope") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetchJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["15.10.1","15.9.1"]`))
	}))
	t.Cleanup(srv.Close)

	l := NewLoader(nil, time.Second, "")
	var versions []string
	if err := FetchJSON(context.Background(), l, srv.URL, &versions); err != nil {
		t.Fatalf("FetchJSON: %v", err)
	}
	if len(versions) != 2 || versions[0] != "15.10.1" {
		t.Fatalf("versions=%v", versions)
	}

	var wrong map[string]int
	if err := FetchJSON(context.Background(), l, srv.URL, &wrong); err == nil {
		t.Fatalf("expected decode error")
	}
}
