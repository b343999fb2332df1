package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestKeyFromURL(t *testing.T) {
	cases := map[string]string{
		"https://utfs.io/f/abc123.mp3":    "abc123.mp3",
		"https://utfs.io/f/abc123/":       "abc123",
		"https://utfs.io/f/k?download=1":  "k",
		"abc":                             "abc",
		"":                                "",
		"https://utfs.io":                 "",
	}
	for in, want := range cases {
		if got := KeyFromURL(in); got != want {
			t.Fatalf("KeyFromURL(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestDeleteFilesSendsKeys(t *testing.T) {
	var gotKey, gotPath string
	var gotBody deleteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(apiKeyHeader)
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_, _ = w.Write([]byte(`{"success":true,"deletedCount":1}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "sk_test", srv.Client())
	if err := c.DeleteFiles(context.Background(), "abc", " "); err != nil {
		t.Fatalf("DeleteFiles returned error: %v", err)
	}
	if gotKey != "sk_test" || gotPath != "/v6/deleteFiles" {
		t.Fatalf("unexpected request key=%q path=%q", gotKey, gotPath)
	}
	if len(gotBody.FileKeys) != 1 || gotBody.FileKeys[0] != "abc" {
		t.Fatalf("unexpected body %+v", gotBody)
	}
}

func TestDeleteFilesErrorsAndBreaker(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", srv.Client())
	for i := 0; i < 5; i++ {
		err := c.DeleteFiles(context.Background(), "abc")
		if err == nil || !strings.Contains(err.Error(), "status 500") {
			t.Fatalf("attempt %d: expected status error, got %v", i, err)
		}
	}
	err := c.DeleteFiles(context.Background(), "abc")
	if err == nil || !strings.Contains(err.Error(), "unavailable") {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 5 {
		t.Fatalf("server called %d times, want 5", n)
	}
}

func TestNewWithoutKeyIsNoop(t *testing.T) {
	d := New("https://api.uploadthing.com", "", time.Second)
	if _, ok := d.(Noop); !ok {
		t.Fatalf("expected Noop, got %T", d)
	}
	if err := d.DeleteFiles(context.Background(), "x"); err != nil {
		t.Fatalf("Noop returned error: %v", err)
	}
}
