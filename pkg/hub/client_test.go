package hub

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testCredential() Credential {
	return Credential{
		User:     "tech-user",
		Password: "secret",
		APIKey:   "key-123",
		Region:   RegionStaging,
	}
}

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append(opts, WithBaseURLs(srv.URL+"/v1/", srv.URL+"/oauth/token"))
	client, err := NewClient(testCredential(), opts...)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, srv
}

func TestCredentialValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Credential)
		wantErr bool
	}{
		{"valid", func(c *Credential) {}, false},
		{"missing user", func(c *Credential) { c.User = "" }, true},
		{"missing password", func(c *Credential) { c.Password = "" }, true},
		{"missing api key", func(c *Credential) { c.APIKey = "" }, true},
		{"bad region", func(c *Credential) { c.Region = "Mars" }, true},
		{"with secret", func(c *Credential) { c.APISecret = "s" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred := testCredential()
			tt.mutate(&cred)
			err := cred.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCallSendsAuthHeaders(t *testing.T) {
	var gotAuth, gotKey, gotRequestID string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("Api-Key")
		gotRequestID = r.Header.Get("X-Request-Id")
		fmt.Fprint(w, `{"assets": []}`)
	}))

	if _, err := client.Call(context.Background(), "GET", "assets", nil); err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("tech-user:secret"))
	if gotAuth != wantAuth {
		t.Errorf("Expected basic auth header %q, got %q", wantAuth, gotAuth)
	}
	if gotKey != "key-123" {
		t.Errorf("Expected api key header, got %q", gotKey)
	}
	if gotRequestID == "" {
		t.Error("Expected a request id header on every call")
	}
}

func TestCallRejectsInvalidVerb(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	_, err := client.Call(context.Background(), "TRACE", "assets", nil)
	if !errors.Is(err, ErrInvalidVerb) {
		t.Errorf("Expected ErrInvalidVerb, got %v", err)
	}
}

func TestCallSurfacesErrorField(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors": [{"type": "not_found_no_permission"}]}`)
	}))

	_, err := client.Call(context.Background(), "GET", "nodes/99", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Errors == "" {
		t.Error("Expected the raw errors payload to be preserved")
	}
}

func TestCallErrorPassThrough(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors": [{"type": "quota"}]}`)
	}), WithErrorPassThrough())

	body, err := client.Call(context.Background(), "GET", "nodes", nil)
	if err != nil {
		t.Fatalf("Expected pass-through to suppress the error, got %v", err)
	}
	var decoded struct {
		Errors []map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil || len(decoded.Errors) != 1 {
		t.Errorf("Expected error payload in body, got %s", body)
	}
}

func TestCallEmptyDeleteBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	body, err := client.Call(context.Background(), "DELETE", "assets/1/values/k", nil)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	if body != nil {
		t.Errorf("Expected nil body for empty DELETE response, got %s", body)
	}
}

func TestCallHTTPStatusError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"detail": "boom"}`)
	}))

	_, err := client.Call(context.Background(), "GET", "nodes", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError for 500, got %v", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", apiErr.StatusCode)
	}
}

func TestCallPaginatedFollowsNextLinks(t *testing.T) {
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/nodes", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"nodes": [{"id": 1}, {"id": 2}], "pagination": {"nodes": %q}}`, srv.URL+"/v1/nodes2")
	})
	mux.HandleFunc("/v1/nodes2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"nodes": [{"id": 3}], "pagination": {}}`)
	})
	client, s := newTestClient(t, mux)
	srv = s

	records, err := client.CallPaginated(context.Background(), "nodes", "nodes")
	if err != nil {
		t.Fatalf("CallPaginated failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records across pages, got %d", len(records))
	}

	// Server order must be preserved
	var first struct {
		ID int `json:"id"`
	}
	json.Unmarshal(records[0], &first)
	if first.ID != 1 {
		t.Errorf("Expected first record id 1, got %d", first.ID)
	}
	var last struct {
		ID int `json:"id"`
	}
	json.Unmarshal(records[2], &last)
	if last.ID != 3 {
		t.Errorf("Expected last record id 3, got %d", last.ID)
	}
}

func TestCallPaginatedFailsOnBrokenPage(t *testing.T) {
	var srv *httptest.Server
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/nodes", func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprintf(w, `{"nodes": [{"id": 1}], "pagination": {"nodes": %q}}`, srv.URL+"/v1/broken")
	})
	mux.HandleFunc("/v1/broken", func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"errors": [{"type": "server_error"}]}`)
	})
	client, s := newTestClient(t, mux)
	srv = s

	_, err := client.CallPaginated(context.Background(), "nodes", "nodes")
	if err == nil {
		t.Fatal("Expected a failing page to fail the whole fetch")
	}
	if calls != 2 {
		t.Errorf("Expected 2 page calls, got %d", calls)
	}
}

func TestOAuthPasswordGrantAndRefresh(t *testing.T) {
	var tokenCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		n := tokenCalls.Add(1)
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm failed: %v", err)
		}
		switch n {
		case 1:
			if got := r.Form.Get("grant_type"); got != "password" {
				t.Errorf("Expected password grant first, got %q", got)
			}
		default:
			if got := r.Form.Get("grant_type"); got != "refresh_token" {
				t.Errorf("Expected refresh grant, got %q", got)
			}
			if got := r.Form.Get("refresh_token"); got != "refresh-1" {
				t.Errorf("Expected cached refresh token, got %q", got)
			}
		}
		// created_at in the past so the token is immediately expired
		fmt.Fprintf(w, `{"access_token": "access-%d", "refresh_token": "refresh-%d", "token_type": "Bearer", "expires_in": 10, "created_at": %d}`,
			n, n, time.Now().Add(-time.Hour).Unix())
	})
	var lastAuth string
	mux.HandleFunc("/v1/assets", func(w http.ResponseWriter, r *http.Request) {
		lastAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"assets": []}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cred := testCredential()
	cred.APISecret = "oauth-secret"
	client, err := NewClient(cred, WithBaseURLs(srv.URL+"/v1/", srv.URL+"/oauth/token"))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if _, err := client.Call(context.Background(), "GET", "assets", nil); err != nil {
		t.Fatalf("First call failed: %v", err)
	}
	if lastAuth != "Bearer access-1" {
		t.Errorf("Expected bearer token on first call, got %q", lastAuth)
	}

	// Token expired immediately, so the next call must refresh
	if _, err := client.Call(context.Background(), "GET", "assets", nil); err != nil {
		t.Fatalf("Second call failed: %v", err)
	}
	if lastAuth != "Bearer access-2" {
		t.Errorf("Expected refreshed bearer token, got %q", lastAuth)
	}
	if tokenCalls.Load() != 2 {
		t.Errorf("Expected 2 token endpoint calls, got %d", tokenCalls.Load())
	}
}

func TestOAuthFailureSurfaces(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cred := testCredential()
	cred.APISecret = "oauth-secret"
	client, err := NewClient(cred, WithBaseURLs(srv.URL+"/v1/", srv.URL+"/oauth/token"))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.Call(context.Background(), "GET", "assets", nil)
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("Expected ErrAuthFailed, got %v", err)
	}
}

func TestNewClientRejectsInvalidCredential(t *testing.T) {
	_, err := NewClient(Credential{})
	if err == nil {
		t.Fatal("Expected error for empty credential")
	}
}
