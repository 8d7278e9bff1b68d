package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/smallbiznis/storepulse/internal/observability/tracing"
)

const (
	maxErrorBody    = 512
	maxResponseBody = 32 << 20
)

// StatusError is returned when a storefront answers with a non-2xx status.
type StatusError struct {
	Code     int
	Resource string
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s request failed with status %d", e.Resource, e.Code)
	}
	return fmt.Sprintf("%s request failed with status %d: %s", e.Resource, e.Code, e.Body)
}

func (e *StatusError) StatusCode() int {
	return e.Code
}

type getRequest struct {
	resource string
	url      string
	query    url.Values
	header   http.Header

	basicUser string
	basicPass string
}

type client struct {
	http    *http.Client
	maxBody int64
}

func newClient(httpClient *http.Client) *client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &client{http: tracing.WrapHTTPClient(httpClient), maxBody: maxResponseBody}
}

func (c *client) getJSON(ctx context.Context, req getRequest, out any) error {
	target := req.url
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "application/json")
	for key, values := range req.header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if req.basicUser != "" {
		httpReq.SetBasicAuth(req.basicUser, req.basicPass)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Code:     resp.StatusCode,
			Resource: req.resource,
			Body:     strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBody)).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.resource, err)
	}
	return nil
}
