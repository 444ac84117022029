package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestSendAndParseJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":42}`)
	}))
	defer srv.Close()

	var out struct {
		Value int `json:"value"`
	}
	c := NewClient()
	if err := c.SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Value != 42 {
		t.Fatalf("value = %d", out.Value)
	}
}

func TestSendAndParseStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "denied")
	}))
	defer srv.Close()

	c := NewClient()
	err := c.SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Status != http.StatusForbidden || se.Body != "denied" {
		t.Fatalf("status error = %+v", se)
	}
}

func TestSendAndParseRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "raw payload")
	}))
	defer srv.Close()

	var body []byte
	c := NewClient()
	if err := c.SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "raw payload" {
		t.Fatalf("body = %q", body)
	}
}

func TestFormBodyAndBasicAuth(t *testing.T) {
	var gotUser, gotPass, gotField string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		_ = r.ParseForm()
		gotField = r.PostForm.Get("subject")
	}))
	defer srv.Close()

	form := url.Values{}
	form.Set("subject", "hello world")

	c := NewClient()
	err := c.SendAndParse(context.Background(), &RequestOptions{
		Method:    MethodPost,
		URL:       srv.URL,
		Headers:   map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		Body:      form,
		BasicAuth: &BasicAuth{Username: "api", Password: "secret"},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUser != "api" || gotPass != "secret" {
		t.Fatalf("auth = %q/%q", gotUser, gotPass)
	}
	if gotField != "hello world" {
		t.Fatalf("form field = %q", gotField)
	}
}

func TestQueryParams(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
	}))
	defer srv.Close()

	c := NewClient()
	err := c.SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodGet,
		URL:         srv.URL,
		QueryParams: map[string][]string{"tickers": {"SPY,QQQ"}, "limit": {"10"}},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery.Get("tickers") != "SPY,QQQ" || gotQuery.Get("limit") != "10" {
		t.Fatalf("query = %v", gotQuery)
	}
}
