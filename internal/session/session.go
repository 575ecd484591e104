// Package session holds the admin session: the opaque token issued at login
// and the admin profile returned with it.
//
// A Store persists exactly one session. Backends differ only in where the
// two values ("token" and "admin") live; all of them share the same
// contract, which TestStoreContract runs against every backend.
package session

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
)

// Admin is the profile the server returns next to the token.
// Fields the client does not model are kept in Extra so a round trip
// through a store does not lose them.
type Admin struct {
	ID       string
	Email    string
	Role     string
	FullName string
	Extra    map[string]any
}

var adminKnownKeys = []string{"_id", "id", "email", "role", "fullName", "name"}

// UnmarshalJSON accepts both "_id" and "id" for the identifier.
func (a *Admin) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	str := func(key string) string {
		if v, ok := raw[key].(string); ok {
			return v
		}
		return ""
	}

	*a = Admin{
		ID:       str("_id"),
		Email:    str("email"),
		Role:     str("role"),
		FullName: str("fullName"),
	}
	if a.ID == "" {
		a.ID = str("id")
	}
	if a.FullName == "" {
		a.FullName = str("name")
	}

	for _, k := range adminKnownKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		a.Extra = raw
	}
	return nil
}

// MarshalJSON writes the server's field names back out.
func (a Admin) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Extra)+4)
	for k, v := range a.Extra {
		out[k] = v
	}
	out["_id"] = a.ID
	if a.Email != "" {
		out["email"] = a.Email
	}
	if a.Role != "" {
		out["role"] = a.Role
	}
	if a.FullName != "" {
		out["fullName"] = a.FullName
	}
	return json.Marshal(out)
}

// Session is the persisted login state.
type Session struct {
	Token string `json:"token"`
	Admin Admin  `json:"admin"`
}

// Validate checks the fields every backend requires before persisting.
func (s Session) Validate() error {
	if strings.TrimSpace(s.Token) == "" {
		return &StoreError{Op: "set", Err: stderrors.Join(ErrInvalidSession, stderrors.New("token cannot be empty"))}
	}
	if strings.TrimSpace(s.Admin.ID) == "" {
		return &StoreError{Op: "set", Err: stderrors.Join(ErrInvalidSession, stderrors.New("admin id cannot be empty"))}
	}
	return nil
}

// Store persists a single session.
//
// Implementations must be safe for concurrent use. Set overwrites any prior
// session, Get returns ErrNoSession when nothing is stored, and Clear is
// idempotent.
type Store interface {
	Set(ctx context.Context, s Session) error
	Get(ctx context.Context) (Session, error)
	Clear(ctx context.Context) error
}

// Token returns the stored token and whether one is present.
// A missing session is not an error; a backend failure is.
func Token(ctx context.Context, st Store) (string, bool, error) {
	s, err := st.Get(ctx)
	if err != nil {
		if stderrors.Is(err, ErrNoSession) {
			return "", false, nil
		}
		return "", false, err
	}
	if s.Token == "" {
		return "", false, nil
	}
	return s.Token, true, nil
}

// Keys under which the token and admin profile are persisted.
const (
	KeyToken = "token"
	KeyAdmin = "admin"
)
