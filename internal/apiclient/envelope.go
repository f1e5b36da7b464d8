package apiclient

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// Page is the list envelope returned by paginated endpoints.
type Page[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// Pages returns how many pages of perPage items Count spans.
func (p Page[T]) Pages(perPage int) int {
	if perPage <= 0 || p.Count <= 0 {
		return 0
	}
	return (p.Count + perPage - 1) / perPage
}

// UnmarshalJSON also accepts a bare array, which some endpoints return
// instead of the envelope.
func (p *Page[T]) UnmarshalJSON(b []byte) error {
	var arr []T
	if err := json.Unmarshal(b, &arr); err == nil {
		p.Data = arr
		p.Count = len(arr)
		return nil
	}
	var env struct {
		Data  []T `json:"data"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	p.Data, p.Count = env.Data, env.Count
	if p.Data == nil {
		p.Data = []T{}
	}
	return nil
}

// List fetches one page of path, adding page and limit query parameters
// when they are positive.
func List[T any](ctx context.Context, c *Client, path string, page, limit int) (Page[T], error) {
	var out Page[T]
	u, err := url.Parse(path)
	if err != nil {
		return out, &APIError{Message: err.Error(), Code: CodeRequestError}
	}
	q := u.Query()
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u.RawQuery = q.Encode()
	err = c.Get(ctx, u.String(), &out)
	return out, err
}
