package engine

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenMediaStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.mp4":
			w.Write([]byte("media-bytes"))
		case "/limited.mp4":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	t.Run("ok", func(t *testing.T) {
		rc, err := OpenMediaStream(context.Background(), srv.URL+"/ok.mp4")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer rc.Close()
		body, _ := io.ReadAll(rc)
		if string(body) != "media-bytes" {
			t.Errorf("body = %q", body)
		}
	})

	for _, path := range []string{"/missing.mp4", "/limited.mp4"} {
		t.Run(path, func(t *testing.T) {
			_, err := OpenMediaStream(context.Background(), srv.URL+path)
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if se.StatusCode < 400 {
				t.Errorf("status = %d", se.StatusCode)
			}
		})
	}
}

func TestOpenMediaStreamCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := OpenMediaStream(ctx, "http://127.0.0.1:1/x.mp4"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
