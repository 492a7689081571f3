package dto

import (
	"fmt"
	"strconv"
	"strings"
)

// Category is a portfolio taxonomy term as it travels on the wire.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// RenderedTitle keeps the nested title shape the front end binds to.
type RenderedTitle struct {
	Rendered string `json:"rendered"`
}

// Project is one catalog item on the wire. The `title.rendered` nesting and
// the `project_cat_links` field name are part of the contract between the
// query endpoint and the client controller.
type Project struct {
	ID         int           `json:"id"`
	Title      RenderedTitle `json:"title"`
	Link       string        `json:"link"`
	Image      string        `json:"image"`
	Srcset     string        `json:"srcset"`
	Categories []Category    `json:"project_cat_links"`
}

// QueryResult is one page of the catalog plus everything needed to paint it:
// the in-use category set and pagination totals ride along so a cache hit
// never needs a second round-trip.
type QueryResult struct {
	Projects   []Project  `json:"projects"`
	Categories []Category `json:"categories"`
	Total      int64      `json:"total"`
	TotalPages int        `json:"total_pages"`
}

// FilterState is a resolved catalog filter snapshot. A nil CategoryID means
// no category filter. Page and PageSize are expected to be in range already;
// the resolver owns clamping.
type FilterState struct {
	CategoryID *int
	Search     string
	Page       int
	PageSize   int
}

// Key returns the canonical cache key for the state. Semantically equal
// states (nil category vs empty token, untrimmed search) map to the same key.
func (f FilterState) Key() string {
	cat := "all"
	if f.CategoryID != nil {
		cat = strconv.Itoa(*f.CategoryID)
	}
	return fmt.Sprintf("%s|%s|%d|%d", cat, strings.TrimSpace(f.Search), f.Page, f.PageSize)
}

// Equal reports whether two states resolve to the same canonical query.
func (f FilterState) Equal(other FilterState) bool {
	return f.Key() == other.Key()
}
