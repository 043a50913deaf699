package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"shopkeeper/internal/model"
)

// TokenFunc yields the current bearer token, or "" when logged out. The
// client consults it on every authenticated call, so a token erased by a
// concurrent logout is simply not attached.
type TokenFunc func(ctx context.Context) string

// Client is a JSON-over-HTTP client for the storefront API.
type Client struct {
	baseURL *url.URL
	hc      *http.Client
	log     *slog.Logger
	token   TokenFunc

	mu             sync.Mutex
	onUnauthorized func()
}

// ClientOptions configures NewClient.
type ClientOptions struct {
	BaseURL     string
	Timeout     time.Duration
	InsecureTLS bool
	Logger      *slog.Logger
	Token       TokenFunc
}

// NewClient validates the options and builds a Client.
func NewClient(opt ClientOptions) (*Client, error) {
	if opt.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	u, err := url.Parse(opt.BaseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if u.Host == "" {
		return nil, errors.New("invalid base URL")
	}

	t := &http.Transport{}
	if strings.EqualFold(u.Scheme, "https") {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: opt.InsecureTLS} //nolint:gosec
	}
	timeout := opt.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	token := opt.Token
	if token == nil {
		token = func(context.Context) string { return "" }
	}

	return &Client{
		baseURL: u,
		hc:      &http.Client{Transport: t, Timeout: timeout},
		log:     log,
		token:   token,
	}, nil
}

// SetUnauthorizedHook registers the callback invoked when the server answers
// 401. Wired to the session store's forced-logout path.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *Client) unauthorized() {
	c.mu.Lock()
	fn := c.onUnauthorized
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// authMode controls how a request handles the bearer token.
type authMode int

const (
	authNone     authMode = iota // never attach a token
	authOptional                 // attach when present
	authRequired                 // fail fast without one
)

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	req := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", authNone, req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// ProductsAPI adapts the client to the product collection gateway.
type ProductsAPI struct{ c *Client }

// Products returns the catalog surface of the client.
func (c *Client) Products() ProductsAPI { return ProductsAPI{c} }

// productBody is the write shape for create/update; identifiers and
// server-owned fields (rating) never go on the wire.
type productBody struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
}

func toProductBody(p model.Product) productBody {
	return productBody{
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
	}
}

// List fetches the whole catalog. It is a public read: the token is attached
// when present but anonymous access is allowed.
func (p ProductsAPI) List(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	if err := p.c.doJSON(ctx, http.MethodGet, "/products", authOptional, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one product by id.
func (p ProductsAPI) Get(ctx context.Context, id int64) (model.Product, error) {
	var out model.Product
	err := p.c.doJSON(ctx, http.MethodGet, "/products/"+itoa(id), authRequired, nil, &out)
	return out, err
}

// Create posts a new product; the server assigns the identifier.
func (p ProductsAPI) Create(ctx context.Context, prod model.Product) (model.Product, error) {
	var out model.Product
	err := p.c.doJSON(ctx, http.MethodPost, "/products", authRequired, toProductBody(prod), &out)
	return out, err
}

// Update replaces a product by id and returns the server's copy.
func (p ProductsAPI) Update(ctx context.Context, id int64, prod model.Product) (model.Product, error) {
	var out model.Product
	err := p.c.doJSON(ctx, http.MethodPut, "/products/"+itoa(id), authRequired, toProductBody(prod), &out)
	return out, err
}

// Delete removes a product by id.
func (p ProductsAPI) Delete(ctx context.Context, id int64) error {
	return p.c.doJSON(ctx, http.MethodDelete, "/products/"+itoa(id), authRequired, nil, nil)
}

// UsersAPI adapts the client to the user collection gateway. Reads, updates
// and deletes go to the remote directory; creation has no remote endpoint
// and is simulated locally with a minted identifier.
type UsersAPI struct {
	c   *Client
	ids *idMint
}

// Users returns the directory surface of the client.
func (c *Client) Users() *UsersAPI { return &UsersAPI{c: c, ids: &idMint{}} }

// List fetches the whole user directory.
func (u *UsersAPI) List(ctx context.Context) ([]model.User, error) {
	var out []model.User
	if err := u.c.doJSON(ctx, http.MethodGet, "/users", authRequired, nil, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = out[i].Sanitized()
	}
	return out, nil
}

// Get fetches one user by id.
func (u *UsersAPI) Get(ctx context.Context, id int64) (model.User, error) {
	var out model.User
	if err := u.c.doJSON(ctx, http.MethodGet, "/users/"+itoa(id), authRequired, nil, &out); err != nil {
		return model.User{}, err
	}
	return out.Sanitized(), nil
}

// Create mints an identifier locally and echoes the payload back with the
// password blanked. Nothing is sent to the remote directory.
func (u *UsersAPI) Create(ctx context.Context, user model.User) (model.User, error) {
	out := user.Sanitized()
	out.ID = u.ids.next()
	return out, nil
}

// Update sends a partial body; an omitted password means "unchanged".
func (u *UsersAPI) Update(ctx context.Context, id int64, user model.User) (model.User, error) {
	user.ID = 0 // identifier travels in the path, not the body
	var out model.User
	if err := u.c.doJSON(ctx, http.MethodPut, "/users/"+itoa(id), authRequired, user, &out); err != nil {
		return model.User{}, err
	}
	out = out.Sanitized()
	if out.ID == 0 {
		out.ID = id
	}
	return out, nil
}

// Delete removes a user by id.
func (u *UsersAPI) Delete(ctx context.Context, id int64) error {
	return u.c.doJSON(ctx, http.MethodDelete, "/users/"+itoa(id), authRequired, nil, nil)
}

// doJSON performs one round trip. A 401 answer erases the session via the
// unauthorized hook and surfaces ErrUnauthorized.
func (c *Client) doJSON(ctx context.Context, method, path string, mode authMode, body, out any) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(b)
	}
	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, u.String(), buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if mode != authNone {
		tok := c.token(ctx)
		if tok == "" && mode == authRequired {
			return ErrAuthRequired
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	reqID := uuid.NewString()
	req.Header.Set("X-Request-Id", reqID)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn("api request", "method", method, "path", path, "request_id", reqID, "err", err)
		return err
	}
	defer resp.Body.Close()

	lvl := slog.LevelDebug
	if resp.StatusCode >= 400 {
		lvl = slog.LevelWarn
	}
	c.log.Log(ctx, lvl, "api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode == http.StatusUnauthorized {
		c.unauthorized()
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var er struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&er)
		if er.Error != "" {
			return errors.New(er.Error)
		}
		return fmt.Errorf("api error: %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
