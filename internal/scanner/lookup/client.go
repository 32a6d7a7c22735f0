package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/scansync/internal/scanner/models"
)

const (
	DefaultTimeout = 10 * time.Second

	retryBaseDelay = 200 * time.Millisecond
	retryMaxDelay  = 2 * time.Second
	retryMax       = 2
)

// errorEnvelope is the service's error response shape.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client is the HTTP implementation of Service.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// NewClient builds a Client for the service at baseURL. A non-positive
// timeout falls back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		timeout: timeout,
	}
}

// NewClientWithHTTP is NewClient with an injected *http.Client for tests.
func NewClientWithHTTP(baseURL string, timeout time.Duration, hc *http.Client) *Client {
	c := NewClient(baseURL, timeout)
	c.http = hc
	return c
}

// Lookup resolves code to a product. Transient attempt failures are retried
// with exponential backoff inside the call's own deadline; deadline expiry
// is an ordinary timeout error, and a late upstream response is discarded.
func (c *Client) Lookup(ctx context.Context, code string) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var product *models.Product

	backoff := retry.WithCappedDuration(retryMaxDelay,
		retry.WithMaxRetries(retryMax, retry.NewExponential(retryBaseDelay)))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := c.fetchProduct(ctx, code)
		if err != nil {
			if IsTransient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, c.classifyDeadline(ctx, err)
	}
	return product, nil
}

// Commit writes the confirmed scan as a diary entry. No retries: the diary
// write is not known to be idempotent on the service side.
func (c *Client) Commit(ctx context.Context, entry models.DiaryEntry) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(entry)
	if err != nil {
		return &Error{Kind: KindUpstream, Message: "encoding diary entry", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/diary/entries", bytes.NewReader(body))
	if err != nil {
		return &Error{Kind: KindUpstream, Message: "building request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return c.classifyDeadline(ctx, classifyTransport(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyStatus(resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) fetchProduct(ctx context.Context, code string) (*models.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/barcode/"+code, nil)
	if err != nil {
		return nil, &Error{Kind: KindUpstream, Message: "building request", Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp)
	}

	var p models.Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, &Error{Kind: KindUpstream, Message: "decoding product", Err: err}
	}
	p.Name = CleanName(p.Name, p.Brand)
	return &p, nil
}

// classifyDeadline rewrites an error as a timeout when the call's own
// deadline was what killed it.
func (c *Client) classifyDeadline(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: fmt.Sprintf("request exceeded %s", c.timeout), Err: err}
	}
	return err
}

func classifyTransport(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	return &Error{Kind: KindUnavailable, Message: "service unreachable", Err: err}
}

func classifyStatus(resp *http.Response) error {
	var env errorEnvelope
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Error.Message != "" {
		msg = env.Error.Message
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Message: msg}
	case resp.StatusCode >= 500:
		// The service or its upstream is struggling; worth another pass.
		return &Error{Kind: KindUnavailable, Message: msg}
	default:
		return &Error{Kind: KindUpstream, Message: msg}
	}
}
