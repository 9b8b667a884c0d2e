package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/quietbay/chesscourt/internal/domain"
)

// HeaderProvider allows injecting per-request headers
type HeaderProvider func() map[string]string

// Bridge renders boards by POSTing layout requests to the block-placement
// bridge service.
type Bridge struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Bridge)

func WithTimeout(d time.Duration) Option {
	return func(b *Bridge) { b.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(b *Bridge) { b.http.MaxConnsPerHost = n }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(b *Bridge) { b.headers = h }
}

func WithRetry(max int) Option {
	return func(b *Bridge) { b.retryMax = max }
}

// WithToken sends the token as a bearer Authorization header.
func WithToken(token string) Option {
	return func(b *Bridge) {
		b.headers = func() map[string]string {
			return map[string]string{"Authorization": "Bearer " + token}
		}
	}
}

func NewBridge(baseURL string, opts ...Option) *Bridge {
	b := &Bridge{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 64},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type checkerboardRequest struct {
	Board  string      `json:"board"`
	World  string      `json:"world"`
	Anchor domain.Vec3 `json:"anchor"`
	Black  string      `json:"black_material"`
	White  string      `json:"white_material"`
	Border string      `json:"border_material,omitempty"`
}

type positionRequest struct {
	Board  string      `json:"board"`
	World  string      `json:"world"`
	Anchor domain.Vec3 `json:"anchor"`
	FEN    string      `json:"fen"`
}

func (b *Bridge) Checkerboard(ctx context.Context, def domain.BoardDefinition) error {
	req := checkerboardRequest{
		Board:  def.Name,
		World:  def.World,
		Anchor: def.Anchor,
		Black:  def.Materials.Black,
		White:  def.Materials.White,
		Border: def.Materials.Border,
	}
	return b.doJSON(ctx, fasthttp.MethodPost, "/render/checkerboard", req, nil, true)
}

func (b *Bridge) Position(ctx context.Context, def domain.BoardDefinition, fen string) error {
	req := positionRequest{
		Board:  def.Name,
		World:  def.World,
		Anchor: def.Anchor,
		FEN:    fen,
	}
	return b.doJSON(ctx, fasthttp.MethodPost, "/render/position", req, nil, true)
}

func (b *Bridge) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	url := b.baseURL + path
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	req.Header.SetContentType("application/json")

	if b.headers != nil {
		for k, v := range b.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry {
		attempts = b.retryMax
		if attempts <= 0 {
			attempts = 1
		}
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		deadline := b.computeDeadline(ctx)
		err := b.http.DoDeadline(req, resp, deadline)
		if err != nil {
			if attempt == attempts || !retry {
				return fmt.Errorf("request failed: %w", err)
			}
			lastErr = err
			if sleepErr := b.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			body := string(resp.Body())
			err := fmt.Errorf("bridge api error: status=%d body=%s", status, truncate(body, 512))
			if attempt == attempts || !retry || !shouldRetryStatus(status) {
				return err
			}
			lastErr = err
			if sleepErr := b.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func (b *Bridge) computeDeadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		clientDL := time.Now().Add(b.defaultTimeout)
		if dl.Before(clientDL) {
			return dl
		}
		return clientDL
	}
	return time.Now().Add(b.defaultTimeout)
}

func (b *Bridge) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
