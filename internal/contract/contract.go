// Package contract pins the admin REST API the client is allowed to call.
//
// The contract is an OpenAPI 3 document embedded at build time. It backs the
// client's strict mode and the `skilladmin contract` command.
package contract

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var document []byte

// Endpoint is one method+path pair from the contract.
type Endpoint struct {
	Method      string `json:"method" yaml:"method"`
	Path        string `json:"path" yaml:"path"`
	OperationID string `json:"operation_id" yaml:"operation_id"`
	Summary     string `json:"summary" yaml:"summary"`
	Public      bool   `json:"public" yaml:"public"`
}

// Contract is a loaded and validated OpenAPI document.
type Contract struct {
	doc *openapi3.T
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*Contract, error) {
	return Parse(ctx, document)
}

// Parse loads an OpenAPI document from data.
func Parse(ctx context.Context, data []byte) (*Contract, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load API contract: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid API contract: %w", err)
	}
	return &Contract{doc: doc}, nil
}

// Raw returns the embedded document bytes.
func Raw() []byte {
	return document
}

// Version returns info.version of the document.
func (c *Contract) Version() string {
	if c.doc.Info == nil {
		return ""
	}
	return c.doc.Info.Version
}

// Match reports whether method+path is part of the contract and returns the
// path template it matched, e.g. "/admin/delete/user/{id}" for
// "/admin/delete/user/64f0". Query strings are ignored.
func (c *Contract) Match(method, path string) (string, bool) {
	path = normalizePath(path)
	method = strings.ToUpper(method)

	if item := c.doc.Paths.Find(path); item != nil && item.GetOperation(method) != nil {
		return path, true
	}

	reqSegments := strings.Split(strings.Trim(path, "/"), "/")
	for tmpl, item := range c.doc.Paths.Map() {
		if item.GetOperation(method) == nil {
			continue
		}
		if segmentsMatch(reqSegments, strings.Split(strings.Trim(tmpl, "/"), "/")) {
			return tmpl, true
		}
	}
	return "", false
}

// Endpoints lists every operation sorted by path then method.
func (c *Contract) Endpoints() []Endpoint {
	var out []Endpoint
	for path, item := range c.doc.Paths.Map() {
		for method, op := range item.Operations() {
			out = append(out, Endpoint{
				Method:      method,
				Path:        path,
				OperationID: op.OperationID,
				Summary:     op.Summary,
				Public:      op.Security != nil && len(*op.Security) == 0,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func segmentsMatch(req, tmpl []string) bool {
	if len(req) != len(tmpl) {
		return false
	}
	for i := range tmpl {
		if strings.HasPrefix(tmpl[i], "{") && strings.HasSuffix(tmpl[i], "}") {
			if req[i] == "" {
				return false
			}
			continue
		}
		if req[i] != tmpl[i] {
			return false
		}
	}
	return true
}

func normalizePath(path string) string {
	if idx := strings.IndexAny(path, "?#"); idx != -1 {
		path = path[:idx]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
