package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/idilsaglam/tada/internal/dto"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/session"
)

const apiPrefix = "/api/v1"

// Client talks to todod over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

type ClientOptions struct {
	BaseURL string
	// Token returns the bearer token for each request; empty means none.
	Token   func() string
	Timeout time.Duration
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

func NewClient(opts ClientOptions) *Client {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: &authTransport{token: opts.Token, base: base},
		},
	}
}

func (c *Client) ListAll(ctx context.Context) ([]model.RemoteTodo, error) {
	var out dto.ListTodosResponse
	if err := c.do(ctx, http.MethodGet, "/todos", "", nil, &out); err != nil {
		return nil, err
	}
	list := make([]model.RemoteTodo, len(out.Items))
	for i, it := range out.Items {
		list[i] = model.RemoteTodo{
			ID:          it.ID,
			Text:        it.Text,
			Completed:   it.Completed,
			CreatedByID: it.CreatedByID,
			CreatedAt:   it.CreatedAt,
			UpdatedAt:   it.UpdatedAt,
		}
	}
	return list, nil
}

func (c *Client) Create(ctx context.Context, text string) error {
	text, err := model.NormalizeText(text)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return c.do(ctx, http.MethodPost, "/todos", "", dto.CreateTodoRequest{Text: text}, nil)
}

func (c *Client) Update(ctx context.Context, id int64, p model.Patch) error {
	p, err := p.Normalize()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	req := dto.UpdateTodoRequest{Text: p.Text, Completed: p.Completed}
	return c.do(ctx, http.MethodPatch, "/todos/"+strconv.FormatInt(id, 10), "", req, nil)
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/todos/"+strconv.FormatInt(id, 10), "", nil, nil)
}

// Session reports who token belongs to. A rejected token yields session.ErrNoSession.
func (c *Client) Session(ctx context.Context, token string) (session.User, error) {
	var out dto.SessionResponse
	err := c.do(ctx, http.MethodGet, "/auth/session", token, nil, &out)
	if errors.Is(err, ErrUnauthenticated) {
		return session.User{}, session.ErrNoSession
	}
	if err != nil {
		return session.User{}, err
	}
	return session.User{ID: out.User.ID, Name: out.User.Username}, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (dto.AuthResponse, error) {
	var out dto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", dto.LoginRequest{Username: username, Password: password}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, username, password string) (dto.AuthResponse, error) {
	var out dto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", "", dto.RegisterRequest{Username: username, Password: password}, &out)
	return out, err
}

// do sends one request. token overrides the transport's token when set.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var e dto.ErrorResponse
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(b))
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		msg = e.Error
	}
	var kind error
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = ErrValidation
	case http.StatusUnauthorized:
		kind = ErrUnauthenticated
	case http.StatusNotFound:
		kind = ErrNotFound
	default:
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, msg)
	}
	if msg == "" {
		return kind
	}
	return fmt.Errorf("%w: %s", kind, msg)
}

// authTransport injects the bearer token into outgoing requests that don't carry one.
type authTransport struct {
	token func() string
	base  http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token == nil || req.Header.Get("Authorization") != "" {
		return t.base.RoundTrip(req)
	}
	tok := t.token()
	if tok == "" {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+tok)
	return t.base.RoundTrip(req)
}
