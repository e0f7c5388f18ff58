package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

const maxResponseBytes = 8 << 20

type request struct {
	operation   string
	method      string
	path        string
	payload     any
	body        []byte
	contentType string
	skipAuth    bool
	schema      string
	// allowEmpty accepts a 2xx response without a body.
	allowEmpty bool
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	call := func(callCtx context.Context) error {
		return c.roundTrip(callCtx, req, out)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "backend."+req.operation, call, classifyBackendError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapCircuitError(req.operation, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, req request, out any) error {
	var body io.Reader
	contentType := req.contentType
	switch {
	case req.payload != nil:
		raw, err := json.Marshal(req.payload)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", req.operation, err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	case req.body != nil:
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", req.operation, err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	if !req.skipAuth && c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("read session token: %w", err)
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	finish := c.startCall(req.operation)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		finish(0, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		slog.Warn("backend_request", "operation", req.operation, "error", err)
		return NetworkError(req.operation, err)
	}
	defer resp.Body.Close()
	finish(resp.StatusCode, nil)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return NetworkError(req.operation, fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("backend_request", "operation", req.operation, "status", resp.StatusCode)
		return DecodeHTTPError(req.operation, resp.StatusCode, raw)
	}
	slog.Debug("backend_request", "operation", req.operation, "status", resp.StatusCode, "bytes", len(raw))

	if out == nil {
		return nil
	}
	if req.allowEmpty && len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if c.validator != nil && req.schema != "" {
		if err := c.validator.Validate(req.schema, raw); err != nil {
			return fmt.Errorf("%s: %w", req.operation, err)
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return decodeError(req.operation, err)
	}
	return nil
}

func (c *Client) startCall(operation string) func(int, error) {
	if c.observer == nil {
		return func(int, error) {}
	}
	return c.observer.StartCall(c.service, operation)
}
