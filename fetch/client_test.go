package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetJSONSendsHeadersAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") != "sid=abc" {
			t.Errorf("Cookie header = %q", r.Header.Get("Cookie"))
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept header = %q", r.Header.Get("Accept"))
		}
		w.Write([]byte(`{"count": 12}`))
	}))
	defer srv.Close()

	c := New(WithHeader("Cookie", "sid=abc"))
	var out struct {
		Count int `json:"count"`
	}
	if err := c.GetJSON(context.Background(), srv.URL, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out.Count != 12 {
		t.Errorf("Count = %d; want 12", out.Count)
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
	}

	for _, tt := range tests {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(tt.status)
		}))

		c := New(WithRetry(3, time.Millisecond))
		err := c.GetJSON(context.Background(), srv.URL, &struct{}{})
		srv.Close()

		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: got %v; want %v", tt.status, err, tt.want)
		}
		if calls != 1 {
			t.Errorf("status %d: %d calls; client errors must not be retried", tt.status, calls)
		}
	}
}

func TestConflictIsRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(WithRetry(3, time.Millisecond))
	if err := c.GetJSON(context.Background(), srv.URL, &struct{}{}); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d; want 3", calls)
	}
}

func TestConflictGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := New(WithRetry(2, time.Millisecond))
	err := c.GetJSON(context.Background(), srv.URL, &struct{}{})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("got %v; want ErrConflict", err)
	}
}

func TestDecodeErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`<html>login</html>`))
	}))
	defer srv.Close()

	c := New(WithRetry(3, time.Millisecond))
	if err := c.GetJSON(context.Background(), srv.URL, &struct{}{}); err == nil {
		t.Fatal("expected decode error")
	}
	if calls != 1 {
		t.Errorf("calls = %d; want 1", calls)
	}
}
