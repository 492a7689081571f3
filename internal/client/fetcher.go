package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"voy.com/portfolio/pkg/apperror"
	"voy.com/portfolio/pkg/dto"
)

// Fetcher is the network form of the catalog query as seen by the controller.
type Fetcher interface {
	Fetch(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error)
}

// HTTPFetcher queries the portfolio endpoint over HTTP. No request timeout is
// imposed here: a hung request stays pending until it resolves or the caller
// supersedes it through the context.
type HTTPFetcher struct {
	base   string
	client *http.Client
}

// NewHTTPFetcher builds a fetcher against the endpoint URL from the boot
// payload. A nil httpClient falls back to http.DefaultClient.
func NewHTTPFetcher(base string, httpClient *http.Client) *HTTPFetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPFetcher{base: base, client: httpClient}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
	u, err := url.Parse(f.base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrRepositoryUnavailable, err)
	}

	q := u.Query()
	q.Set("page", strconv.Itoa(state.Page))
	q.Set("per_page", strconv.Itoa(state.PageSize))
	if term := strings.TrimSpace(state.Search); term != "" {
		q.Set("search", term)
	}
	if state.CategoryID != nil {
		q.Set("category", strconv.Itoa(*state.CategoryID))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrRepositoryUnavailable, err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperror.ErrRequestCancelled
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrRepositoryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", apperror.ErrRepositoryUnavailable, resp.StatusCode)
	}

	var result dto.QueryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if ctx.Err() != nil {
			return nil, apperror.ErrRequestCancelled
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrRepositoryUnavailable, err)
	}

	return &result, nil
}
