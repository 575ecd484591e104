package api

import (
	"context"
	"net/http"
)

const catalogPath = "/skills-and-subskills"

// CatalogService reads the skill/sub-skill catalog.
type CatalogService struct {
	c *Client
}

// Catalog returns the catalog service.
func (c *Client) Catalog() *CatalogService {
	return &CatalogService{c: c}
}

// SkillsAndSubSkills returns every skill and sub-skill.
func (s *CatalogService) SkillsAndSubSkills(ctx context.Context) (*Catalog, error) {
	var body struct {
		Data *Catalog `json:"data"`
	}
	err := s.c.do(ctx, request{
		op:     "catalog.get",
		method: http.MethodGet,
		route:  catalogPath,
		path:   catalogPath,
		out:    &body,
	})
	if err != nil {
		return nil, err
	}
	if body.Data == nil {
		return &Catalog{}, nil
	}
	return body.Data, nil
}
