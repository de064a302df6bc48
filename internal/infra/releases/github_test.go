package releases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(url string) *Client {
	return &Client{BaseURL: url, HTTP: http.DefaultClient, Backoff: []time.Duration{time.Millisecond, time.Millisecond}}
}

func TestListReleases(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/caracal-pipeline/cult-cargo/releases" {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]map[string]string{{"tag_name": "0.1.0"}, {"tag_name": "0.2.0rc1"}})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.Token = "tkn"
	tags, err := c.ListReleases(context.Background(), "caracal-pipeline/cult-cargo")
	if err != nil {
		t.Fatalf("ListReleases: %v", err)
	}
	if tags.Cardinality() != 2 || !tags.Contains("0.1.0", "0.2.0rc1") {
		t.Fatalf("unexpected tags: %v", tags)
	}
	if auth != "Bearer tkn" {
		t.Fatalf("unexpected auth header: %q", auth)
	}
}

func TestListReleasesFollowsPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var batch []map[string]string
		if r.URL.Query().Get("page") == "1" {
			for i := 0; i < pageSize; i++ {
				batch = append(batch, map[string]string{"tag_name": fmt.Sprintf("0.0.%d", i)})
			}
		} else {
			batch = append(batch, map[string]string{"tag_name": "1.0.0"})
		}
		_ = json.NewEncoder(w).Encode(batch)
	}))
	defer srv.Close()

	tags, err := testClient(srv.URL).ListReleases(context.Background(), "o/r")
	if err != nil {
		t.Fatalf("ListReleases: %v", err)
	}
	if tags.Cardinality() != pageSize+1 || !tags.Contains("1.0.0") {
		t.Fatalf("expected %d tags, got %d", pageSize+1, tags.Cardinality())
	}
}

func TestListReleasesRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"tag_name":"1.0"}]`))
	}))
	defer srv.Close()

	tags, err := testClient(srv.URL).ListReleases(context.Background(), "o/r")
	if err != nil {
		t.Fatalf("ListReleases: %v", err)
	}
	if calls.Load() != 2 || !tags.Contains("1.0") {
		t.Fatalf("expected retry, calls=%d tags=%v", calls.Load(), tags)
	}
}

func TestListReleasesFailsOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ListReleases(context.Background(), "o/r")
	var status *StatusError
	if !errors.As(err, &status) || status.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("client errors must not be retried, calls=%d", calls.Load())
	}
}

func TestListReleasesRejectsBadRepository(t *testing.T) {
	if _, err := testClient("http://unused").ListReleases(context.Background(), "just-a-name"); err == nil {
		t.Fatalf("expected error for malformed repository")
	}
}
