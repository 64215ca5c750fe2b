package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) ListPosts(ctx context.Context, f PostFilter) ([]Post, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.CategoryID > 0 {
		q.Set("category_id", strconv.Itoa(f.CategoryID))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}

	path := "/posts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var posts []Post
	err := c.Do(ctx, http.MethodGet, path, nil, &posts)
	if err != nil {
		return nil, err
	}

	return posts, nil
}

func (c *Client) GetPostBySlug(ctx context.Context, slug string) (*Post, error) {
	var post Post
	err := c.Do(ctx, http.MethodGet, "/posts/"+url.PathEscape(slug), nil, &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) GetPostByID(ctx context.Context, id int) (*Post, error) {
	var post Post
	err := c.Do(ctx, http.MethodGet, "/posts/id/"+strconv.Itoa(id), nil, &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) CreatePost(ctx context.Context, in PostInput) (*Post, error) {
	var post Post
	err := c.Do(ctx, http.MethodPost, "/posts", in, &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) UpdatePost(ctx context.Context, id int, in PostInput) (*Post, error) {
	var post Post
	err := c.Do(ctx, http.MethodPut, "/posts/"+strconv.Itoa(id), in, &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) DeletePost(ctx context.Context, id int) error {
	return c.Do(ctx, http.MethodDelete, "/posts/"+strconv.Itoa(id), nil, nil)
}

func (c *Client) PublishPost(ctx context.Context, id int) (*Post, error) {
	var post Post
	err := c.Do(ctx, http.MethodPost, "/posts/"+strconv.Itoa(id)+"/publish", nil, &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
