package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ListQuery holds the common list parameters for back office resources.
type ListQuery struct {
	Page    int
	PerPage int
	Q       string
	// Filters carries resource specific parameters such as status or plan.
	Filters map[string]string
}

// values encodes q. sizeKey names the page size parameter, which differs
// between resources ("per_page" or "page_size"); searchKey names the search
// parameter ("q" or "search").
func (q ListQuery) values(sizeKey, searchKey string) url.Values {
	out := url.Values{}
	if q.Page > 0 {
		out.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		out.Set(sizeKey, strconv.Itoa(q.PerPage))
	}
	if trimmed := strings.TrimSpace(q.Q); trimmed != "" {
		out.Set(searchKey, trimmed)
	}
	for key, value := range q.Filters {
		if strings.TrimSpace(key) == "" || strings.TrimSpace(value) == "" {
			continue
		}
		out.Set(key, value)
	}
	return out
}

// Pagination is the pagination block of a list response.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page,omitempty"`
	TotalPages int `json:"total_pages"`
}

// Page is one page of a list response.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
	Total      int
	// Extra keeps envelope members besides the items and pagination, such as
	// the totals block of the users listing.
	Extra map[string]json.RawMessage
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool {
	return p.Pagination.TotalPages > 0 && p.Pagination.Page < p.Pagination.TotalPages
}

var itemKeys = []string{"items", "users", "feedbacks", "feedback", "articles", "submissions", "dogs"}

// UnmarshalJSON accepts a bare array or an object with the items under any of
// the known envelope keys.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("client: decode page items: %w", err)
		}
		*p = Page[T]{
			Items:      items,
			Pagination: Pagination{Page: 1, TotalPages: 1},
			Total:      len(items),
		}
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("client: decode page: %w", err)
	}

	out := Page[T]{}
	for _, key := range itemKeys {
		if items, ok := raw[key]; ok {
			if err := json.Unmarshal(items, &out.Items); err != nil {
				return fmt.Errorf("client: decode page %s: %w", key, err)
			}
			delete(raw, key)
			break
		}
	}
	if pag, ok := raw["pagination"]; ok {
		if err := json.Unmarshal(pag, &out.Pagination); err != nil {
			return fmt.Errorf("client: decode pagination: %w", err)
		}
		delete(raw, "pagination")
	}
	if total, ok := raw["total"]; ok {
		_ = json.Unmarshal(total, &out.Total)
		delete(raw, "total")
	}
	if out.Total == 0 {
		out.Total = totalFromPagination(raw, len(out.Items))
	}
	delete(raw, "success")
	if len(raw) > 0 {
		out.Extra = raw
	}
	*p = out
	return nil
}

func totalFromPagination(raw map[string]json.RawMessage, fallback int) int {
	var totals struct {
		FilteredUsers int `json:"filtered_users"`
	}
	if block, ok := raw["totals"]; ok && json.Unmarshal(block, &totals) == nil && totals.FilteredUsers > 0 {
		return totals.FilteredUsers
	}
	return fallback
}
