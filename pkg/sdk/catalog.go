package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	usersPath = "/api/v1/user"
	booksPath = "/api/v1/book"
)

// PageInput selects one page of a listing.
type PageInput struct {
	Current  int
	PageSize int
}

func (p PageInput) query() url.Values {
	q := url.Values{}
	if p.Current > 0 {
		q.Set("current", strconv.Itoa(p.Current))
	}
	if p.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	return q
}

// PageMeta describes the position of a page in a listing.
type PageMeta struct {
	Current  int `json:"current"`
	PageSize int `json:"pageSize"`
	Pages    int `json:"pages"`
	Total    int `json:"total"`
}

// User is a row of the admin user listing.
type User struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     Role   `json:"role"`
}

// Book is a row of the catalog listing.
type Book struct {
	ID       string  `json:"_id"`
	MainText string  `json:"mainText"`
	Author   string  `json:"author"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Sold     int     `json:"sold"`
}

// UserPage is one page of users.
type UserPage struct {
	Meta   PageMeta `json:"meta"`
	Result []User   `json:"result"`
}

// BookPage is one page of books.
type BookPage struct {
	Meta   PageMeta `json:"meta"`
	Result []Book   `json:"result"`
}

// ListUsers returns one page of users. Requires an admin token.
func (c *Client) ListUsers(ctx context.Context, page PageInput) (*UserPage, error) {
	var out UserPage
	if err := c.getPage(ctx, usersPath, page, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBooks returns one page of books.
func (c *Client) ListBooks(ctx context.Context, page PageInput) (*BookPage, error) {
	var out BookPage
	if err := c.getPage(ctx, booksPath, page, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getPage(ctx context.Context, path string, page PageInput, out any) error {
	body, err := c.do(ctx, c.authed, http.MethodGet, path, page.query(), nil)
	if err != nil {
		return err
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		body = envelope.Data
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
