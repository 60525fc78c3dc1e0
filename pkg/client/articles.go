package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Article is a blog article.
type Article struct {
	ID          string     `json:"id,omitempty"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Summary     string     `json:"summary,omitempty"`
	CoverImage  string     `json:"cover_image,omitempty"`
	Category    string     `json:"category,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	AuthorID    string     `json:"author_id,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func articlePath(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", errors.New("client: article id is required")
	}
	return "/admin/articles/" + url.PathEscape(strings.TrimSpace(id)), nil
}

// ListArticles lists articles. Filters may carry category, author_id,
// date_from and date_to.
func (c *Client) ListArticles(ctx context.Context, q ListQuery) (Page[Article], error) {
	var page Page[Article]
	err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/admin/articles",
		Query:  q.values("page_size", "search"),
	}, &page)
	if err == nil && page.Pagination.Page == 0 {
		page.Pagination.Page = max(q.Page, 1)
	}
	return page, err
}

// GetArticle fetches one article.
func (c *Client) GetArticle(ctx context.Context, id string) (Article, error) {
	path, err := articlePath(id)
	if err != nil {
		return Article{}, err
	}
	var article Article
	err = c.Do(ctx, Request{Method: http.MethodGet, Path: path}, &article)
	return article, err
}

// CreateArticle creates an article.
func (c *Client) CreateArticle(ctx context.Context, article Article) (Article, error) {
	var created Article
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/admin/articles", Body: article}, &created)
	return created, err
}

// UpdateArticle replaces an article's editable attributes.
func (c *Client) UpdateArticle(ctx context.Context, article Article) (Article, error) {
	path, err := articlePath(article.ID)
	if err != nil {
		return Article{}, err
	}
	var updated Article
	err = c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: article}, &updated)
	return updated, err
}

// DeleteArticle removes an article.
func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	path, err := articlePath(id)
	if err != nil {
		return err
	}
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, nil)
}
