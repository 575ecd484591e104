package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// endpoints describes one resource's routes. Item routes end in {id}.
type endpoints struct {
	name    string // span/metric prefix, e.g. "users"
	list    string
	create  string
	update  string
	remove  string
	shape   listShape
	itemKey string
}

func (e endpoints) itemPath(tmpl, id string) string {
	return strings.Replace(tmpl, "{id}", url.PathEscape(id), 1)
}

// collection implements the shared list/create/update/delete flow.
type collection[T any, In any] struct {
	c         *Client
	ep        endpoints
	validate  func(In) error
	fromInput func(id string, in In) T
}

func (col *collection[T, In]) List(ctx context.Context, page, size int) (*Page[T], error) {
	if err := ValidatePage(page, size); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	err := col.c.do(ctx, request{
		op:     col.ep.name + ".list",
		method: http.MethodGet,
		route:  col.ep.list,
		path:   col.ep.list,
		query:  pageQuery(page, size),
		out:    &raw,
	})
	if err != nil {
		return nil, err
	}
	return decodePage[T](raw, col.ep.shape, page, size)
}

func (col *collection[T, In]) Create(ctx context.Context, in In) (*T, error) {
	if col.validate != nil {
		if err := col.validate(in); err != nil {
			return nil, err
		}
	}
	var raw json.RawMessage
	err := col.c.do(ctx, request{
		op:     col.ep.name + ".create",
		method: http.MethodPost,
		route:  col.ep.create,
		path:   col.ep.create,
		body:   in,
		out:    &raw,
	})
	if err != nil {
		return nil, err
	}
	return col.result(raw, "", in)
}

func (col *collection[T, In]) Update(ctx context.Context, id string, in In) (*T, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	err := col.c.do(ctx, request{
		op:     col.ep.name + ".update",
		method: http.MethodPut,
		route:  col.ep.update,
		path:   col.ep.itemPath(col.ep.update, id),
		body:   in,
		out:    &raw,
	})
	if err != nil {
		return nil, err
	}
	return col.result(raw, id, in)
}

func (col *collection[T, In]) Delete(ctx context.Context, id string) (*Ack, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var ack Ack
	err := col.c.do(ctx, request{
		op:     col.ep.name + ".delete",
		method: http.MethodDelete,
		route:  col.ep.remove,
		path:   col.ep.itemPath(col.ep.remove, id),
		out:    &ack,
	})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// result prefers the record echoed by the server and falls back to one
// built from the input.
func (col *collection[T, In]) result(raw json.RawMessage, id string, in In) (*T, error) {
	item, _, err := decodeItem[T](raw, col.ep.itemKey)
	if err != nil {
		return nil, err
	}
	if item == nil {
		v := col.fromInput(id, in)
		item = &v
	}
	return item, nil
}
