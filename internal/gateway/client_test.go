// Package gateway tests cover the HTTP client against a stub server.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopkeeper/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.Handler, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(ClientOptions{
		BaseURL: srv.URL,
		Logger:  testLogger(),
		Token:   func(context.Context) string { return token },
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

// TestLoginExchangesCredentials posts to /auth/login and returns the token.
func TestLoginExchangesCredentials(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body struct{ Username, Password string }
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body.Username != "kevin" || body.Password != "hunter2" {
			t.Errorf("unexpected credentials: %+v", body)
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("login must not carry a bearer token")
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-abc"})
	}), "")

	tok, err := c.Login(context.Background(), "kevin", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tok != "tok-abc" {
		t.Fatalf("expected tok-abc, got %q", tok)
	}
}

// TestBearerAttachedWhenPresent verifies the credential derived from the
// current token travels on authenticated calls.
func TestBearerAttachedWhenPresent(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("expected bearer header, got %q", got)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Errorf("expected a request id")
		}
		_ = json.NewEncoder(w).Encode([]model.Product{{ID: 1, Title: "A"}})
	}), "tok-1")

	items, err := c.Products().List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].ID != 1 {
		t.Fatalf("unexpected items: %+v", items)
	}
}

// TestProductsListAllowsAnonymous covers the public catalog read.
func TestProductsListAllowsAnonymous(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("expected anonymous request, got %q", got)
		}
		_ = json.NewEncoder(w).Encode([]model.Product{})
	}), "")

	if _, err := c.Products().List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}
}

// TestAuthRequiredFailsFast never sends a request without a token.
func TestAuthRequiredFailsFast(t *testing.T) {
	hits := 0
	c := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		hits++
	}), "")

	_, err := c.Users().List(context.Background())
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if hits != 0 {
		t.Fatalf("expected no request on the wire, got %d", hits)
	}
}

// TestUnauthorizedInvokesHook covers the 401 recovery path: the hook fires
// and the caller sees ErrUnauthorized.
func TestUnauthorizedInvokesHook(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}), "stale-token")

	hookCalled := false
	c.SetUnauthorizedHook(func() { hookCalled = true })

	_, err := c.Products().Get(context.Background(), 3)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if !hookCalled {
		t.Fatalf("expected unauthorized hook to fire")
	}
}

// TestErrorEnvelopeSurfaces decodes the server's error message.
func TestErrorEnvelopeSurfaces(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "kaboom"})
	}), "tok-1")

	err := c.Products().Delete(context.Background(), 3)
	if err == nil || err.Error() != "kaboom" {
		t.Fatalf("expected kaboom, got %v", err)
	}
}

// TestUserCreateIsSimulatedLocally never hits the wire and mints strictly
// increasing identifiers with the password blanked.
func TestUserCreateIsSimulatedLocally(t *testing.T) {
	hits := 0
	c := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		hits++
	}), "tok-1")
	users := c.Users()
	ctx := context.Background()

	u1, err := users.Create(ctx, model.User{Username: "a", Password: "pw"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	u2, err := users.Create(ctx, model.User{Username: "b", Password: "pw"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if hits != 0 {
		t.Fatalf("expected no requests, got %d", hits)
	}
	if u1.ID <= 0 || u2.ID <= u1.ID {
		t.Fatalf("expected strictly increasing ids, got %d then %d", u1.ID, u2.ID)
	}
	if u1.Password != "" {
		t.Fatalf("expected password blanked")
	}
}

// TestUserUpdateOmitsAbsentPassword keeps "unchanged" semantics on the wire.
func TestUserUpdateOmitsAbsentPassword(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/users/7" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode: %v", err)
		}
		if _, ok := raw["password"]; ok {
			t.Errorf("empty password must be omitted from the body")
		}
		_ = json.NewEncoder(w).Encode(model.User{ID: 7, Username: "kevin", Email: "k@example.com"})
	}), "tok-1")

	got, err := c.Users().Update(context.Background(), 7, model.User{Username: "kevin", Email: "k@example.com"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.ID != 7 || got.Username != "kevin" {
		t.Fatalf("unexpected user: %+v", got)
	}
}
