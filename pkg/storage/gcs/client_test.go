package gcs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := &Client{
		httpClient:    srv.Client(),
		defaultBucket: "saraf-media",
		apiBase:       srv.URL + "/storage/v1",
		uploadBase:    srv.URL + "/upload/storage/v1",
		tokenSource: &tokenSource{
			fetch: func(context.Context) (string, time.Time, error) {
				return "test-token", time.Now().Add(time.Hour), nil
			},
		},
	}
	return client, srv
}

func TestPingChecksObjectListing(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if !strings.Contains(r.URL.Path, "/b/saraf-media/o") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
}

func TestUploadObjectReturnsPublicURL(t *testing.T) {
	var gotBody string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.WriteHeader(http.StatusOK)
	}))

	url, err := client.UploadObject(context.Background(), "products/ring.png", "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "https://storage.googleapis.com/saraf-media/products/ring.png" {
		t.Fatalf("unexpected public url %s", url)
	}
	if gotBody != "png-bytes" {
		t.Fatalf("body not streamed, got %q", gotBody)
	}
}

func TestDeleteObjectTreatsMissingAsSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	if err := client.DeleteObject(context.Background(), "products/gone.png"); err != nil {
		t.Fatalf("expected 404 to pass, got %v", err)
	}
}

func TestObjectNameFromURL(t *testing.T) {
	client := &Client{defaultBucket: "saraf-media"}

	if got := client.ObjectNameFromURL("https://storage.googleapis.com/saraf-media/products/a.png"); got != "products/a.png" {
		t.Fatalf("unexpected object name %q", got)
	}
	if got := client.ObjectNameFromURL("https://example.com/other.png"); got != "" {
		t.Fatalf("expected empty for foreign url, got %q", got)
	}
}
