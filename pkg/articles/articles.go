// Package articles publishes blog articles from the back office. Articles
// that cannot reach the server are kept as local drafts and flushed later;
// list deletions are applied optimistically.
package articles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-pawhealth/internal/store"
	"github.com/goliatone/go-pawhealth/pkg/client"
)

// DraftKind is the draft queue used for unpublished articles.
const DraftKind = "article"

// ErrDrafted is returned by Publish when the article was stored as a draft
// because the server could not be reached.
var ErrDrafted = errors.New("articles: server unreachable, article saved as draft")

// API is the article surface of the back office client.
type API interface {
	ListArticles(ctx context.Context, q client.ListQuery) (client.Page[client.Article], error)
	CreateArticle(ctx context.Context, article client.Article) (client.Article, error)
	UpdateArticle(ctx context.Context, article client.Article) (client.Article, error)
	DeleteArticle(ctx context.Context, id string) error
}

// Drafts queues articles locally.
type Drafts interface {
	SaveDraft(ctx context.Context, kind string, payload any) (store.Draft, error)
	Drafts(ctx context.Context, kind string) ([]store.Draft, error)
	DeleteDraft(ctx context.Context, id string) error
	MarkDraftFailed(ctx context.Context, id string, cause error) error
}

// Publisher creates and updates articles.
type Publisher struct {
	api    API
	drafts Drafts
	logger *zap.Logger
}

// NewPublisher returns a publisher. drafts may be nil to disable the
// offline fallback.
func NewPublisher(api API, drafts Drafts, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{api: api, drafts: drafts, logger: logger}
}

// Validate checks the fields required before an article is sent.
func Validate(a client.Article) error {
	var missing []string
	if strings.TrimSpace(a.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(a.Content) == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return fmt.Errorf("articles: %s required", strings.Join(missing, " and "))
	}
	return nil
}

// Slugify derives a URL slug from a title.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Publish creates the article, or updates it when it has an id. Transport
// failures store the article as a draft and return ErrDrafted together with
// the draft. Server rejections are returned as is.
func (p *Publisher) Publish(ctx context.Context, a client.Article) (client.Article, *store.Draft, error) {
	if err := Validate(a); err != nil {
		return client.Article{}, nil, err
	}
	if a.Slug == "" {
		a.Slug = Slugify(a.Title)
	}
	saved, err := p.send(ctx, a)
	if err == nil {
		return saved, nil, nil
	}
	if !errors.Is(err, client.ErrTransport) || p.drafts == nil {
		return client.Article{}, nil, err
	}
	draft, derr := p.drafts.SaveDraft(ctx, DraftKind, a)
	if derr != nil {
		return client.Article{}, nil, errors.Join(err, derr)
	}
	p.logger.Warn("article saved as draft", zap.String("draft_id", draft.ID), zap.Error(err))
	return client.Article{}, &draft, fmt.Errorf("%w: %w", ErrDrafted, err)
}

func (p *Publisher) send(ctx context.Context, a client.Article) (client.Article, error) {
	if a.ID != "" {
		return p.api.UpdateArticle(ctx, a)
	}
	return p.api.CreateArticle(ctx, a)
}

// FlushResult summarises a Flush.
type FlushResult struct {
	Published []client.Article
	Remaining int
}

// Flush retries queued drafts oldest first. Published drafts are removed;
// failures are recorded on the draft and kept. A transport failure stops the
// flush since later drafts would fail the same way.
func (p *Publisher) Flush(ctx context.Context) (FlushResult, error) {
	if p.drafts == nil {
		return FlushResult{}, nil
	}
	queued, err := p.drafts.Drafts(ctx, DraftKind)
	if err != nil {
		return FlushResult{}, err
	}
	var result FlushResult
	for i, d := range queued {
		var a client.Article
		if err := json.Unmarshal(d.Payload, &a); err != nil {
			p.markFailed(ctx, d.ID, err)
			result.Remaining++
			continue
		}
		saved, err := p.send(ctx, a)
		if err != nil {
			p.markFailed(ctx, d.ID, err)
			if errors.Is(err, client.ErrTransport) {
				result.Remaining += len(queued) - i
				return result, err
			}
			result.Remaining++
			continue
		}
		if err := p.drafts.DeleteDraft(ctx, d.ID); err != nil {
			return result, err
		}
		result.Published = append(result.Published, saved)
	}
	return result, nil
}

func (p *Publisher) markFailed(ctx context.Context, id string, cause error) {
	if err := p.drafts.MarkDraftFailed(ctx, id, cause); err != nil {
		p.logger.Warn("articles: record draft failure",
			zap.String("draft_id", id),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
	}
}

// Catalog is a loaded page of articles with optimistic deletion.
type Catalog struct {
	api    API
	logger *zap.Logger

	mu       sync.RWMutex
	articles []client.Article
}

// NewCatalog returns an empty catalog.
func NewCatalog(api API, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{api: api, logger: logger}
}

// Load replaces the catalog contents with one page of articles.
func (c *Catalog) Load(ctx context.Context, q client.ListQuery) (client.Page[client.Article], error) {
	page, err := c.api.ListArticles(ctx, q)
	if err != nil {
		return client.Page[client.Article]{}, err
	}
	c.mu.Lock()
	c.articles = slices.Clone(page.Items)
	c.mu.Unlock()
	return page, nil
}

// Articles returns the current list.
func (c *Catalog) Articles() []client.Article {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.articles)
}

// Delete removes the article from the list immediately and then from the
// server. If the server call fails the article is restored at its position.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := slices.IndexFunc(c.articles, func(a client.Article) bool { return a.ID == id })
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("articles: %s not in catalog", id)
	}
	removed := c.articles[idx]
	c.articles = slices.Delete(c.articles, idx, idx+1)
	c.mu.Unlock()

	if err := c.api.DeleteArticle(ctx, id); err != nil {
		c.mu.Lock()
		c.articles = slices.Insert(c.articles, min(idx, len(c.articles)), removed)
		c.mu.Unlock()
		c.logger.Warn("article delete failed, restored", zap.String("article_id", id), zap.Error(err))
		return fmt.Errorf("articles: delete %s: %w", id, err)
	}
	return nil
}
