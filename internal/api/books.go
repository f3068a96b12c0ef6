package api

import (
	"context"
	"fmt"
	"net/http"
)

// Book is a catalog record. The JSON field names are the backend's,
// which speaks French.
type Book struct {
	ID     int    `json:"id" yaml:"id"`
	Title  string `json:"titre" yaml:"title"`
	Author string `json:"auteur" yaml:"author"`
	Year   int    `json:"annee,omitempty" yaml:"year,omitempty"`
	Genre  string `json:"genre,omitempty" yaml:"genre,omitempty"`
}

// ListBooks returns the whole catalog.
func (c *Client) ListBooks(ctx context.Context) ([]Book, error) {
	var books []Book
	if err := c.DoJSON(ctx, http.MethodGet, "/books", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// GetBook fetches a single record by id.
func (c *Client) GetBook(ctx context.Context, id int) (*Book, error) {
	var book Book
	if err := c.DoJSON(ctx, http.MethodGet, fmt.Sprintf("/books/%d", id), nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// AddBook creates a record and returns it with the server-assigned id.
func (c *Client) AddBook(ctx context.Context, book Book) (*Book, error) {
	var created Book
	if err := c.DoJSON(ctx, http.MethodPost, "/books", book, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateBook replaces a record's fields.
func (c *Client) UpdateBook(ctx context.Context, id int, book Book) (*Book, error) {
	var updated Book
	if err := c.DoJSON(ctx, http.MethodPut, fmt.Sprintf("/books/%d", id), book, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// RenameBook changes only the title, through the dedicated PATCH route.
func (c *Client) RenameBook(ctx context.Context, id int, title string) (*Book, error) {
	payload := struct {
		Title string `json:"titre"`
	}{Title: title}

	var renamed Book
	if err := c.DoJSON(ctx, http.MethodPatch, fmt.Sprintf("/books/%d/titre", id), payload, &renamed); err != nil {
		return nil, err
	}
	return &renamed, nil
}

// DeleteBook removes a record by id.
func (c *Client) DeleteBook(ctx context.Context, id int) error {
	_, err := c.Do(ctx, http.MethodDelete, fmt.Sprintf("/books/%d", id), nil)
	return err
}
