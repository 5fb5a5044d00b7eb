// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package rpc is a minimal JSON-RPC 2.0 client for the ledger's view queries.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/near-go/nearcli/internal/util"
	"github.com/near-go/nearcli/internal/version"
)

// DefaultTimeout bounds a single request when the caller's context has no
// deadline.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 16 << 20

// Client talks to one JSON-RPC endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the given endpoint URL.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  version.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL the client talks to.
func (c *Client) Endpoint() string { return c.endpoint }

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

// Query runs a view query at the given block. Ledger-side failures are
// returned as *QueryError; anything else is a *TransportError.
func (c *Client) Query(ctx context.Context, block BlockReference, q QueryRequest) (*QueryResponse, error) {
	purpose := q.Kind.purpose()

	raw, err := c.call(ctx, "query", q.params(block))
	if err != nil {
		var qe *QueryError
		if errors.As(err, &qe) {
			qe.Purpose = purpose
			return nil, qe
		}
		return nil, &TransportError{Purpose: purpose, Err: err}
	}

	var env queryEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &TransportError{Purpose: purpose, Err: fmt.Errorf("failed to decode result: %w", err)}
	}
	if env.Error != "" {
		qe := legacyQueryError(env.Error)
		qe.Purpose = purpose
		return nil, qe
	}

	return &QueryResponse{
		Kind:        q.Kind,
		BlockHeight: env.BlockHeight,
		BlockHash:   env.BlockHash,
		raw:         raw,
	}, nil
}

// call performs one JSON-RPC round trip and returns the raw result.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := uuid.NewString()
	body, err := json.Marshal(request{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	util.Debug("rpc request", "endpoint", c.endpoint, "method", method, "id", id)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var out response
	if err := json.Unmarshal(data, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	util.Debug("rpc response", "id", out.ID, "status", resp.StatusCode)

	if out.Error != nil {
		return nil, out.Error.toQueryError()
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}
	if len(out.Result) == 0 || string(out.Result) == "null" {
		return nil, errors.New("empty result")
	}
	return out.Result, nil
}
