package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Reels manages uploaded reels. The API has no reel update endpoint.
type Reels struct {
	c  *Client
	ep endpoints
}

// Reels returns the reels service.
func (c *Client) Reels() *Reels {
	return &Reels{c: c, ep: endpoints{
		name:    "reels",
		list:    "/admin/get/reels",
		create:  "/admin/upload/reel",
		remove:  "/admin/delete/reel/{id}",
		shape:   listShape{items: "reels", total: "totalReels"},
		itemKey: "reel",
	}}
}

// List returns one page of reels.
func (r *Reels) List(ctx context.Context, page, size int) (*Page[Reel], error) {
	if err := ValidatePage(page, size); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	err := r.c.do(ctx, request{
		op:     "reels.list",
		method: http.MethodGet,
		route:  r.ep.list,
		path:   r.ep.list,
		query:  pageQuery(page, size),
		out:    &raw,
	})
	if err != nil {
		return nil, err
	}
	p, err := decodePage[Reel](raw, r.ep.shape, page, size)
	if err != nil {
		return nil, err
	}
	// Rows without an id cannot be acted on.
	kept := p.Items[:0]
	for _, reel := range p.Items {
		if reel.ID != "" {
			kept = append(kept, reel)
		}
	}
	p.Items = kept
	return p, nil
}

// Upload creates a reel from local video and thumbnail files.
func (r *Reels) Upload(ctx context.Context, in ReelUpload) (*Reel, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	err := r.c.do(ctx, request{
		op:     "reels.upload",
		method: http.MethodPost,
		route:  r.ep.create,
		path:   r.ep.create,
		form:   in.form(),
		out:    &raw,
	})
	if err != nil {
		return nil, err
	}
	item, _, err := decodeItem[Reel](raw, r.ep.itemKey)
	if err != nil {
		return nil, err
	}
	if item == nil {
		item = &Reel{
			Title:       in.Title,
			Description: in.Description,
			User:        Ref{ID: in.UserID},
			Skills:      Refs{{ID: in.SkillID}},
		}
		if in.SubSkillID != "" {
			item.SubSkills = Refs{{ID: in.SubSkillID}}
		}
	}
	return item, nil
}

// Create is Upload, so Reels satisfies Resource.
func (r *Reels) Create(ctx context.Context, in ReelUpload) (*Reel, error) {
	return r.Upload(ctx, in)
}

// Update always fails: reels are immutable through the admin API.
func (r *Reels) Update(ctx context.Context, id string, in ReelUpload) (*Reel, error) {
	return nil, fmt.Errorf("%w: reels cannot be edited", ErrUnsupported)
}

// Delete removes a reel.
func (r *Reels) Delete(ctx context.Context, id string) (*Ack, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var ack Ack
	err := r.c.do(ctx, request{
		op:     "reels.delete",
		method: http.MethodDelete,
		route:  r.ep.remove,
		path:   r.ep.itemPath(r.ep.remove, id),
		out:    &ack,
	})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}
