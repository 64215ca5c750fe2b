package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	err := c.Do(ctx, http.MethodGet, "/categories", nil, &categories)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) GetCategory(ctx context.Context, slug string) (*Category, error) {
	var category Category
	err := c.Do(ctx, http.MethodGet, "/categories/"+url.PathEscape(slug), nil, &category)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) ListComments(ctx context.Context, postID int) ([]Comment, error) {
	var comments []Comment
	err := c.Do(ctx, http.MethodGet, "/comments/post/"+strconv.Itoa(postID), nil, &comments)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) CreateComment(ctx context.Context, in CommentInput) (*Comment, error) {
	var comment Comment
	err := c.Do(ctx, http.MethodPost, "/comments", in, &comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) GetReactionSummary(ctx context.Context, postID int) (*ReactionSummary, error) {
	var summary ReactionSummary
	err := c.Do(ctx, http.MethodGet, "/reactions/post/"+strconv.Itoa(postID)+"/summary", nil, &summary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// React toggles the caller's reaction. Removing a reaction answers without a body.
func (c *Client) React(ctx context.Context, in ReactionInput) error {
	return c.Do(ctx, http.MethodPost, "/reactions", in, nil)
}

func (c *Client) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var result SearchResult
	err := c.Do(ctx, http.MethodGet, "/search?"+q.Encode(), nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) About(ctx context.Context) (*About, error) {
	var about About
	err := c.Do(ctx, http.MethodGet, "/about", nil, &about)
	if err != nil {
		return nil, err
	}
	return &about, nil
}
