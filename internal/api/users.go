package api

import (
	"context"
	"net/http"
)

// AccountSummary is one row of the admin user listing.
type AccountSummary struct {
	ID    int    `json:"id"`
	Name  string `json:"nom"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ListUsers returns all accounts. The backend restricts this to
// authenticated callers like every other protected route.
func (c *Client) ListUsers(ctx context.Context) ([]AccountSummary, error) {
	var users []AccountSummary
	if err := c.DoJSON(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}
