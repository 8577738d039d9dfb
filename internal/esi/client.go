package esi

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
)

// Client is a rate-limited ESI HTTP client.
type Client struct {
	http     *resty.Client
	baseURL  string
	maxConns int
}

// NewClient creates an ESI client with the given base URL and concurrency cap.
// ESI tolerates up to 150 error-free requests/sec; maxConns bounds how many
// are in flight at once.
func NewClient(baseURL, userAgent string, maxConns int) *Client {
	if maxConns <= 0 {
		maxConns = 20
	}
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetQueryParam("datasource", "tranquility")
	return &Client{http: http, baseURL: baseURL, maxConns: maxConns}
}

// HealthCheck pings ESI to verify connectivity.
func (c *Client) HealthCheck(ctx context.Context) bool {
	resp, err := c.http.R().SetContext(ctx).Get("/status/")
	return err == nil && resp.StatusCode() == 200
}

// getJSON fetches a path and decodes the JSON response into dst.
func (c *Client) getJSON(ctx context.Context, path string, query map[string]string, dst interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(dst).
		Get(path)
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("ESI %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// getPaginated fetches every page of a paginated ESI endpoint, calling fetch
// once per page. Page 1 is fetched first to learn the total page count from
// the X-Pages header; remaining pages are fetched concurrently.
func getPaginated[T any](ctx context.Context, c *Client, path string, query map[string]string) ([]T, error) {
	page1Query := withPage(query, 1)
	var page1 []T
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(page1Query).
		SetResult(&page1).
		Get(path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("ESI %d: %s", resp.StatusCode(), resp.String())
	}

	totalPages := 1
	if p := resp.Header().Get("X-Pages"); p != "" {
		totalPages, _ = strconv.Atoi(p)
	}
	if totalPages <= 1 {
		return page1, nil
	}

	pages := make([][]T, totalPages+1)
	pages[1] = page1

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConns)
	for p := 2; p <= totalPages; p++ {
		p := p
		g.Go(func() error {
			var data []T
			if err := c.getJSON(gctx, path, withPage(query, p), &data); err != nil {
				return fmt.Errorf("page %d: %w", p, err)
			}
			pages[p] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]T, 0, len(page1)*totalPages)
	for p := 1; p <= totalPages; p++ {
		all = append(all, pages[p]...)
	}
	return all, nil
}

func withPage(query map[string]string, page int) map[string]string {
	out := make(map[string]string, len(query)+1)
	for k, v := range query {
		out[k] = v
	}
	out["page"] = strconv.Itoa(page)
	return out
}
