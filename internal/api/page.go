package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// MaxPageSize is the largest page the API serves.
const MaxPageSize = 1000

// Page is one server-side page. Page is 0-based; the wire is 1-based.
type Page[T any] struct {
	Items []T `json:"items" yaml:"items"`
	Total int `json:"total" yaml:"total"`
	Page  int `json:"page" yaml:"page"`
	Size  int `json:"size" yaml:"size"`
}

// Pages returns the number of pages needed for Total at Size.
func (p *Page[T]) Pages() int {
	if p.Size <= 0 || p.Total <= 0 {
		return 0
	}
	return (p.Total + p.Size - 1) / p.Size
}

// Resource is the list/create/update/delete surface a screen drives.
type Resource[T any, In any] interface {
	List(ctx context.Context, page, size int) (*Page[T], error)
	Create(ctx context.Context, in In) (*T, error)
	Update(ctx context.Context, id string, in In) (*T, error)
	Delete(ctx context.Context, id string) (*Ack, error)
}

// ValidatePage checks a 0-based page and a size in 1..MaxPageSize.
func ValidatePage(page, size int) error {
	if page < 0 {
		return fmt.Errorf("%w: page must be >= 0, got %d", ErrInvalidPage, page)
	}
	if size < 1 || size > MaxPageSize {
		return fmt.Errorf("%w: size must be between 1 and %d, got %d", ErrInvalidPage, MaxPageSize, size)
	}
	return nil
}

func pageQuery(page, size int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page+1))
	q.Set("limit", strconv.Itoa(size))
	return q
}

// listShape names the keys a list endpoint uses for its items and total.
type listShape struct {
	items string
	total string
}

// decodePage reads items from shape.items and the total from shape.total,
// pagination.<total> or total, whichever is present first. Missing keys
// decode as an empty page.
func decodePage[T any](raw json.RawMessage, shape listShape, page, size int) (*Page[T], error) {
	out := &Page[T]{Items: []T{}, Page: page, Size: size}
	if len(raw) == 0 {
		return out, nil
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &DecodeError{Err: err, Body: raw}
	}

	if items, ok := body[shape.items]; ok && string(items) != "null" {
		if err := json.Unmarshal(items, &out.Items); err != nil {
			return nil, &DecodeError{Err: fmt.Errorf("%s: %w", shape.items, err), Body: raw}
		}
	}

	total, found, err := intField(body, shape.total)
	if err != nil {
		return nil, &DecodeError{Err: err, Body: raw}
	}
	if !found {
		if pag, ok := body["pagination"]; ok {
			var nested map[string]json.RawMessage
			if json.Unmarshal(pag, &nested) == nil {
				total, found, err = intField(nested, shape.total)
				if err != nil {
					return nil, &DecodeError{Err: err, Body: raw}
				}
			}
		}
	}
	if !found {
		total, _, _ = intField(body, "total")
	}
	out.Total = total
	return out, nil
}

func intField(m map[string]json.RawMessage, key string) (int, bool, error) {
	v, ok := m[key]
	if !ok || string(v) == "null" {
		return 0, false, nil
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	i, err := strconv.Atoi(n.String())
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return 0, false, fmt.Errorf("%s: %w", key, err)
		}
		i = int(f)
	}
	return i, true, nil
}

// decodeItem pulls the created/updated record out of a mutation response.
// The API answers with {message, <key>: {...}}, {data: {...}} or the record
// itself; when none is present the returned record is nil.
func decodeItem[T any](raw json.RawMessage, keys ...string) (*T, string, error) {
	if len(raw) == 0 {
		return nil, "", nil
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, "", &DecodeError{Err: err, Body: raw}
	}

	var ack Ack
	_ = json.Unmarshal(raw, &ack)

	for _, key := range append(keys, "data") {
		v, ok := body[key]
		if !ok || len(v) == 0 || v[0] != '{' {
			continue
		}
		var item T
		if err := json.Unmarshal(v, &item); err != nil {
			return nil, ack.Message, &DecodeError{Err: err, Body: raw}
		}
		return &item, ack.Message, nil
	}
	if _, ok := body["_id"]; ok {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, ack.Message, &DecodeError{Err: err, Body: raw}
		}
		return &item, ack.Message, nil
	}
	return nil, ack.Message, nil
}
