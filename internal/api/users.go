package api

import (
	"context"
	"strings"
)

// Users manages platform users.
type Users struct {
	collection[User, UserInput]
}

// Users returns the users service.
func (c *Client) Users() *Users {
	return &Users{collection[User, UserInput]{
		c: c,
		ep: endpoints{
			name:    "users",
			list:    "/admin/get/users",
			create:  "/admin/add/user",
			update:  "/admin/update/user/{id}",
			remove:  "/admin/delete/user/{id}",
			shape:   listShape{items: "users", total: "totalUsers"},
			itemKey: "user",
		},
		validate: func(in UserInput) error { return in.validateCreate() },
		fromInput: func(id string, in UserInput) User {
			return User{
				ID:         id,
				FullName:   in.FullName,
				Email:      in.Email,
				Phone:      in.Phone,
				Role:       in.Role,
				Occupation: in.Occupation,
				AboutUser:  in.AboutUser,
			}
		},
	}}
}

// Create adds a user. An empty role becomes DefaultUserRole.
func (u *Users) Create(ctx context.Context, in UserInput) (*User, error) {
	if strings.TrimSpace(in.Role) == "" {
		in.Role = DefaultUserRole
	}
	return u.collection.Create(ctx, in)
}
