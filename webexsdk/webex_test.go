/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

package webexsdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		accessToken string
		config      *Config
		expectError bool
	}{
		{
			name:        "Valid with default config",
			accessToken: "valid-token",
			config:      nil,
			expectError: false,
		},
		{
			name:        "Valid with custom config",
			accessToken: "valid-token",
			config: &Config{
				BaseURL: "https://api.example.com",
				Timeout: 60 * time.Second,
				DefaultHeaders: map[string]string{
					"X-Custom-Header": "value",
				},
			},
			expectError: false,
		},
		{
			name:        "Empty access token",
			accessToken: "",
			config:      nil,
			expectError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(tc.accessToken, tc.config)

			if tc.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			if client == nil {
				t.Errorf("Expected non-nil client")
				return
			}

			if client.GetAccessToken() != tc.accessToken {
				t.Errorf("Expected AccessToken %q, got %q", tc.accessToken, client.GetAccessToken())
			}

			if tc.config != nil {
				if client.BaseURL.String() != tc.config.BaseURL {
					t.Errorf("Expected BaseURL %q, got %q", tc.config.BaseURL, client.BaseURL.String())
				}

				if client.GetHTTPClient().Timeout != tc.config.Timeout {
					t.Errorf("Expected Timeout %v, got %v", tc.config.Timeout, client.GetHTTPClient().Timeout)
				}
			} else {
				defaultConfig := DefaultConfig()
				if client.BaseURL.String() != defaultConfig.BaseURL {
					t.Errorf("Expected default BaseURL %q, got %q", defaultConfig.BaseURL, client.BaseURL.String())
				}
			}
		})
	}
}

func TestTrackingID(t *testing.T) {
	client, _ := NewClient("test-token", nil)

	id1 := client.TrackingID()
	id2 := client.TrackingID()

	if !strings.HasPrefix(id1, "webex-web-client_") {
		t.Errorf("Expected tracking ID prefix 'webex-web-client_', got %q", id1)
	}
	if id1 == id2 {
		t.Error("Expected unique tracking IDs per call")
	}
}

func TestRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader != "Bearer test-token" {
			t.Errorf("Expected Authorization header 'Bearer test-token', got %q", authHeader)
		}

		contentType := r.Header.Get("Content-Type")
		if contentType != "application/json" {
			t.Errorf("Expected Content-Type header 'application/json', got %q", contentType)
		}

		customHeader := r.Header.Get("X-Custom-Header")
		if customHeader != "custom-value" {
			t.Errorf("Expected X-Custom-Header 'custom-value', got %q", customHeader)
		}

		if r.Header.Get("TrackingID") == "" {
			t.Error("Expected TrackingID header to be set")
		}

		if r.Method != http.MethodGet {
			t.Errorf("Expected method GET, got %s", r.Method)
		}

		if r.URL.Path != "/test" {
			t.Errorf("Expected path '/test', got %q", r.URL.Path)
		}

		if r.URL.Query().Get("param1") != "value1" {
			t.Errorf("Expected query param 'param1=value1', got %q", r.URL.Query().Get("param1"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"status": "success"}`)
	}))
	defer server.Close()

	baseURL, _ := url.Parse(server.URL)
	config := &Config{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
		DefaultHeaders: map[string]string{
			"X-Custom-Header": "custom-value",
		},
		HttpClient: server.Client(),
	}
	client, _ := NewClient("test-token", config)
	client.BaseURL = baseURL

	params := url.Values{}
	params.Set("param1", "value1")

	resp, err := client.Request(http.MethodGet, "test", params, nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var responseData struct {
		Status string `json:"status"`
	}

	err = ParseResponse(resp, &responseData)
	if err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if responseData.Status != "success" {
		t.Errorf("Expected status 'success', got %q", responseData.Status)
	}
}

func TestRequestURL(t *testing.T) {
	// Mobius device URIs are absolute. RequestURL must hit them as given,
	// ignoring the client's BaseURL.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/device/abc/status" {
			t.Errorf("Expected path '/device/abc/status', got %q", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected method POST, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{}`)
	}))
	defer server.Close()

	config := &Config{
		BaseURL:        "https://unused.example.com",
		HttpClient:     server.Client(),
		DefaultHeaders: make(map[string]string),
	}
	client, _ := NewClient("test-token", config)

	resp, err := client.RequestURL(http.MethodPost, server.URL+"/device/abc/status", nil)
	if err != nil {
		t.Fatalf("RequestURL failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name         string
		statusCode   int
		responseBody string
		expectError  bool
	}{
		{
			name:         "Valid response",
			statusCode:   http.StatusOK,
			responseBody: `{"key": "value"}`,
			expectError:  false,
		},
		{
			name:         "Error response",
			statusCode:   http.StatusBadRequest,
			responseBody: `{"error": "Bad request"}`,
			expectError:  true,
		},
		{
			name:         "Invalid JSON",
			statusCode:   http.StatusOK,
			responseBody: `{"key": "value"`, // Incomplete JSON
			expectError:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := &http.Response{
				StatusCode: tc.statusCode,
				Header:     http.Header{},
				Body:       newMockReadCloser(tc.responseBody),
			}

			var data map[string]string
			err := ParseResponse(resp, &data)

			if tc.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			if len(data) == 0 {
				t.Errorf("Expected non-empty data")
			}
		})
	}
}

func TestParseResponse_NilTarget(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusNoContent,
		Header:     http.Header{},
		Body:       newMockReadCloser(""),
	}
	if err := ParseResponse(resp, nil); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://mobius.example.com/api/v1", "device", "https://mobius.example.com/api/v1/device"},
		{"https://mobius.example.com/api/v1/", "device", "https://mobius.example.com/api/v1/device"},
		{"https://mobius.example.com/api/v1/", "/device", "https://mobius.example.com/api/v1/device"},
	}
	for _, tc := range tests {
		if got := JoinURL(tc.base, tc.path); got != tc.want {
			t.Errorf("JoinURL(%q, %q) = %q, want %q", tc.base, tc.path, got, tc.want)
		}
	}
}

// Mock ReadCloser for testing ParseResponse
type mockReadCloser struct {
	data  string
	index int
}

func newMockReadCloser(data string) *mockReadCloser {
	return &mockReadCloser{data: data}
}

func (m *mockReadCloser) Read(p []byte) (n int, err error) {
	if m.index >= len(m.data) {
		return 0, io.EOF
	}

	n = copy(p, m.data[m.index:])
	m.index += n
	return n, nil
}

func (m *mockReadCloser) Close() error {
	return nil
}

// --- Retry tests ---

func TestRequest_Retries429(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintln(w, `{"message":"rate limited"}`)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"status":"ok"}`)
	}))
	defer server.Close()

	baseURL, _ := url.Parse(server.URL)
	config := &Config{
		BaseURL:        server.URL,
		HttpClient:     server.Client(),
		MaxRetries:     3,
		RetryBaseDelay: 1 * time.Millisecond,
		DefaultHeaders: make(map[string]string),
	}
	client, _ := NewClient("test-token", config)
	client.BaseURL = baseURL

	resp, err := client.Request(http.MethodGet, "test", nil, nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}

func TestRequest_Retries502(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprintln(w, `{"message":"bad gateway"}`)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"status":"ok"}`)
	}))
	defer server.Close()

	baseURL, _ := url.Parse(server.URL)
	config := &Config{
		BaseURL:        server.URL,
		HttpClient:     server.Client(),
		MaxRetries:     3,
		RetryBaseDelay: 1 * time.Millisecond,
		DefaultHeaders: make(map[string]string),
	}
	client, _ := NewClient("test-token", config)
	client.BaseURL = baseURL

	resp, err := client.Request(http.MethodGet, "test", nil, nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRequest_NoRetryOn400(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(w, `{"message":"bad request"}`)
	}))
	defer server.Close()

	baseURL, _ := url.Parse(server.URL)
	config := &Config{
		BaseURL:        server.URL,
		HttpClient:     server.Client(),
		MaxRetries:     3,
		RetryBaseDelay: 1 * time.Millisecond,
		DefaultHeaders: make(map[string]string),
	}
	client, _ := NewClient("test-token", config)
	client.BaseURL = baseURL

	resp, err := client.Request(http.MethodGet, "test", nil, nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt (no retry), got %d", attempts)
	}
}

func TestRequest_NoRetryOn401(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprintln(w, `{"message":"unauthorized"}`)
	}))
	defer server.Close()

	baseURL, _ := url.Parse(server.URL)
	config := &Config{
		BaseURL:        server.URL,
		HttpClient:     server.Client(),
		MaxRetries:     3,
		RetryBaseDelay: 1 * time.Millisecond,
		DefaultHeaders: make(map[string]string),
	}
	client, _ := NewClient("test-token", config)
	client.BaseURL = baseURL

	resp, err := client.Request(http.MethodGet, "test", nil, nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if attempts != 1 {
		t.Errorf("Expected 1 attempt (no retry for 401), got %d", attempts)
	}
}

func TestRequest_ExhaustsRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintln(w, `{"message":"unavailable"}`)
	}))
	defer server.Close()

	baseURL, _ := url.Parse(server.URL)
	config := &Config{
		BaseURL:        server.URL,
		HttpClient:     server.Client(),
		MaxRetries:     2,
		RetryBaseDelay: 1 * time.Millisecond,
		DefaultHeaders: make(map[string]string),
	}
	client, _ := NewClient("test-token", config)
	client.BaseURL = baseURL

	resp, err := client.Request(http.MethodGet, "test", nil, nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", resp.StatusCode)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRequestURLOnce_NoRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintln(w, `{"message":"unavailable"}`)
	}))
	defer server.Close()

	config := &Config{
		BaseURL:        server.URL,
		HttpClient:     server.Client(),
		MaxRetries:     3,
		RetryBaseDelay: 1 * time.Millisecond,
		DefaultHeaders: make(map[string]string),
	}
	client, _ := NewClient("test-token", config)

	resp, err := client.RequestURLOnce(context.Background(), http.MethodPost, server.URL+"/device", nil)
	if err != nil {
		t.Fatalf("RequestURLOnce failed: %v", err)
	}
	defer resp.Body.Close()

	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}

func TestRequest_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Header().Set("Retry-After", "300")
		fmt.Fprintln(w, `{"message":"rate limited"}`)
	}))
	defer server.Close()

	baseURL, _ := url.Parse(server.URL)
	config := &Config{
		BaseURL:        server.URL,
		HttpClient:     server.Client(),
		MaxRetries:     5,
		RetryBaseDelay: 10 * time.Second,
		DefaultHeaders: make(map[string]string),
	}
	client, _ := NewClient("test-token", config)
	client.BaseURL = baseURL

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.RequestWithRetry(ctx, http.MethodGet, "test", nil, nil)
	if err == nil {
		t.Fatal("Expected error from context cancellation")
	}
}
