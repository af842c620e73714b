// Package netbox is a thin client for the NetBox REST API. One sub-client
// per resource group, token authentication, paginated lists, and typed
// errors mapped from status codes so stages can branch on the class of
// failure.
package netbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	serviceErrs "github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

const pageLimit = 200

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) DCIM() *DCIMClient                   { return &DCIMClient{c} }
func (c *Client) IPAM() *IPAMClient                   { return &IPAMClient{c} }
func (c *Client) Virtualization() *VirtualizationClient { return &VirtualizationClient{c} }
func (c *Client) Extras() *ExtrasClient               { return &ExtrasClient{c} }
func (c *Client) Tenancy() *TenancyClient             { return &TenancyClient{c} }

// Ping verifies that the API answers and the token is accepted. Called
// once at startup; failure aborts the run.
func (c *Client) Ping(ctx context.Context) error {
	var status map[string]any
	if err := c.do(ctx, http.MethodGet, "/api/status/", nil, nil, &status); err != nil {
		return err
	}
	zap.S().Debugw("netbox reachable", "status", status)
	return nil
}

// Get reads a single resource into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("netbox request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	case http.StatusNoContent:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return serviceErrs.NewUnauthorizedError()
	case http.StatusNotFound:
		return serviceErrs.NewResourceNotFoundError("endpoint", path)
	case http.StatusConflict:
		return serviceErrs.NewConflictError("resource", path)
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusBadRequest && looksLikeDuplicate(detail) {
			return serviceErrs.NewConflictError("resource", path)
		}
		return fmt.Errorf("netbox returned %s for %s %s: %s", resp.Status, method, path, detail)
	}
}

// looksLikeDuplicate spots uniqueness violations that NetBox reports as
// plain 400s.
func looksLikeDuplicate(body []byte) bool {
	lower := strings.ToLower(string(body))
	return strings.Contains(lower, "already exists") ||
		strings.Contains(lower, "must be unique") ||
		strings.Contains(lower, "duplicate")
}

type page[T any] struct {
	Count   int     `json:"count"`
	Next    *string `json:"next"`
	Results []T     `json:"results"`
}

// list walks the paginated endpoint until exhausted.
func list[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("limit", strconv.Itoa(pageLimit))

	var all []T
	offset := 0
	for {
		query.Set("offset", strconv.Itoa(offset))
		var p page[T]
		if err := c.do(ctx, http.MethodGet, path, query, nil, &p); err != nil {
			return nil, err
		}
		all = append(all, p.Results...)
		if p.Next == nil || len(p.Results) == 0 {
			return all, nil
		}
		offset += pageLimit
	}
}

func create[T any](ctx context.Context, c *Client, path string, params any) (*T, error) {
	var out T
	if err := c.do(ctx, http.MethodPost, path, nil, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func patch[T any](ctx context.Context, c *Client, path string, params any) (*T, error) {
	var out T
	if err := c.do(ctx, http.MethodPatch, path, nil, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateThenFind creates a resource and, when the destination reports a
// conflict, re-reads it by the caller's finder under a bounded exponential
// backoff. The destination applies writes with eventual consistency, so
// the first re-read after a concurrent create may come back empty.
func CreateThenFind[T any](ctx context.Context, createFn func(context.Context) (*T, error), findFn func(context.Context) (*T, error)) (*T, error) {
	created, err := createFn(ctx)
	if err == nil {
		return created, nil
	}
	if !serviceErrs.IsConflictError(err) {
		return nil, err
	}

	return backoff.Retry(ctx, func() (*T, error) {
		found, findErr := findFn(ctx)
		if findErr != nil {
			if serviceErrs.IsUnauthorizedError(findErr) {
				return nil, backoff.Permanent(findErr)
			}
			return nil, findErr
		}
		if found == nil {
			return nil, serviceErrs.NewResourceNotFoundError("resource", "created concurrently")
		}
		return found, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(5))
}
