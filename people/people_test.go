/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

package people

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/webexcommunity/calling-go-sdk/webexsdk"
)

func newTestClient(t *testing.T, baseURL string, config *Config) *Client {
	t.Helper()
	cfg := webexsdk.DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.Timeout = 5 * time.Second
	transport, err := webexsdk.NewClient("test-token", cfg)
	if err != nil {
		t.Fatal(err)
	}
	return New(transport, config)
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/people/person-123") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(Person{
			ID:          "person-123",
			DisplayName: "Alice Example",
			Emails:      []string{"alice@example.com"},
			Avatar:      "https://avatar.example.com/alice.png",
		})
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, nil)

	person, err := c.Get(context.Background(), "person-123")
	if err != nil {
		t.Fatal(err)
	}
	if person.DisplayName != "Alice Example" {
		t.Errorf("display name %q", person.DisplayName)
	}

	if _, err := c.Get(context.Background(), ""); err == nil {
		t.Error("empty person ID should be rejected")
	}
	if _, err := c.Get(context.Background(), "missing"); err == nil {
		t.Error("expected not-found error")
	} else if !webexsdk.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestGetMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/people/me") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(Person{ID: "me-1", DisplayName: "Current User"})
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, nil)
	me, err := c.GetMe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if me.ID != "me-1" {
		t.Errorf("id %q", me.ID)
	}
}

func TestList(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []Person{{ID: "p1"}, {ID: "p2"}},
		})
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.ShowAllTypes = true
	c := newTestClient(t, srv.URL, cfg)

	if _, err := c.List(context.Background(), nil); err == nil {
		t.Error("list without a filter should be rejected")
	}
	if _, err := c.List(context.Background(), &ListOptions{}); err == nil {
		t.Error("empty options should be rejected")
	}

	items, err := c.List(context.Background(), &ListOptions{
		Email: "alice@example.com",
		Max:   5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	for _, want := range []string{"email=alice%40example.com", "max=5", "showAllTypes=true"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}

	if _, err := c.List(context.Background(), &ListOptions{IDs: []string{"a", "b"}}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gotQuery, "id=a%2Cb") {
		t.Errorf("ids not joined into the id param, query %q", gotQuery)
	}
}

func TestResolverResolveByExternalID(t *testing.T) {
	uuid := "8a7b3c1d-0000-4000-8000-123456789abc"
	hydraID := InferPersonIDFromUUID(uuid)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/people/"+hydraID) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(Person{
			ID:          hydraID,
			DisplayName: "Bob Remote",
			Avatar:      "https://avatar.example.com/bob.png",
		})
	}))
	t.Cleanup(srv.Close)

	r := NewResolver(newTestClient(t, srv.URL, nil))

	info, err := r.ResolveByExternalID(context.Background(), uuid)
	if err != nil {
		t.Fatal(err)
	}
	if info.Name != "Bob Remote" {
		t.Errorf("name %q", info.Name)
	}
	if info.ID != hydraID {
		t.Errorf("id %q", info.ID)
	}
	if info.AvatarSrc == "" {
		t.Error("avatar not carried over")
	}

	if _, err := r.ResolveByExternalID(context.Background(), "unknown-uuid"); err == nil {
		t.Error("expected lookup failure for unknown ID")
	}
}

func TestInferPersonIDFromUUID(t *testing.T) {
	uuid := "8a7b3c1d-0000-4000-8000-123456789abc"
	hydraID := InferPersonIDFromUUID(uuid)

	decoded, err := DecodeBase64(hydraID)
	if err != nil {
		t.Fatal(err)
	}
	if decoded != "ciscospark://us/PEOPLE/"+uuid {
		t.Errorf("decoded hydra ID %q", decoded)
	}

	// A value that is already a Hydra ID passes through unchanged.
	if got := InferPersonIDFromUUID(hydraID); got != hydraID {
		t.Errorf("hydra ID was re-encoded to %q", got)
	}
}
