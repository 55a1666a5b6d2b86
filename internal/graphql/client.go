package graphql

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

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// OrgHeader identifies the tenant on every request
const OrgHeader = "X-ORG-SLUG"

// RequestIDHeader correlates client and server log lines
const RequestIDHeader = "X-Request-ID"

// Request is the JSON body POSTed to the endpoint.
type Request struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Doer executes a single GraphQL operation and returns the raw data field.
type Doer interface {
	Do(ctx context.Context, req Request) (json.RawMessage, error)
}

// Config holds the transport settings.
type Config struct {
	Endpoint string
	OrgSlug  string
	Timeout  time.Duration
}

// Client implements Doer over HTTP POST.
type Client struct {
	cfg  Config
	http *http.Client
	log  *logrus.Entry
}

// NewClient creates a Client for the configured endpoint.
func NewClient(cfg Config, log *logrus.Entry) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		log: log.WithField("component", "graphql"),
	}
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	start := time.Now()
	reqID := uuid.NewString()
	log := c.log.WithFields(logrus.Fields{
		"operation":  req.OperationName,
		"request_id": reqID,
	})

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	data, err := c.do(ctx, reqID, req)
	log = log.WithField("duration_ms", time.Since(start).Milliseconds())
	switch {
	case err == nil:
		log.Debug("graphql request completed")
	case errors.Is(err, context.Canceled):
		log.Debug("graphql request abandoned")
	default:
		log.WithError(err).Warn("graphql request failed")
	}
	return data, err
}

func (c *Client) do(ctx context.Context, reqID string, req Request) (json.RawMessage, error) {
	op := req.OperationName

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%s: marshaling request: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(OrgHeader, c.cfg.OrgSlug)
	httpReq.Header.Set(RequestIDHeader, reqID)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
			return nil, ctxErr
		}
		return nil, &TransportError{Op: op, Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	var resp response
	decodeErr := json.Unmarshal(respBody, &resp)

	// graphene answers 400 with a well formed errors array for bad input
	if decodeErr == nil && len(resp.Errors) > 0 {
		return nil, serverError(op, resp)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &TransportError{Op: op, StatusCode: httpResp.StatusCode, Err: errors.New(truncate(string(respBody), 200))}
	}
	if decodeErr != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", decodeErr)}
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil, &TransportError{Op: op, Err: errors.New("response has no data")}
	}
	return resp.Data, nil
}

func serverError(op string, resp response) *ServerError {
	msgs := make([]string, 0, len(resp.Errors))
	for _, e := range resp.Errors {
		msgs = append(msgs, e.Message)
	}
	return &ServerError{Op: op, Messages: msgs}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
