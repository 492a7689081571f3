package client

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"voy.com/portfolio/pkg/apperror"
	"voy.com/portfolio/pkg/dto"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	}
	return "unknown"
}

// DefaultDebounce is the quiescence window after the last keystroke before a
// search request is issued.
const DefaultDebounce = 650 * time.Millisecond

// emptyMessage is the generic empty-result text; repository failures degrade
// to it instead of exposing transport detail.
const emptyMessage = "Sin resultados"

// Renderer receives a snapshot every time the visible state changes. The
// painting technology is up to the host surface.
type Renderer interface {
	Render(snap Snapshot)
}

// RenderFunc adapts a plain function to the Renderer interface.
type RenderFunc func(Snapshot)

func (f RenderFunc) Render(snap Snapshot) { f(snap) }

// Snapshot is an immutable view of a controller's visible state.
type Snapshot struct {
	State          State
	Projects       []dto.Project
	Categories     []dto.Category
	ActiveCategory *int
	Search         string
	Page           int
	TotalPages     int
	Total          int64
	Message        string
	// ImagesLoaded is the transient per-item "image has loaded" flag used for
	// the UI transition only; it is not part of any cached payload.
	ImagesLoaded map[int]bool
}

// Controller owns one widget's filter state, cache and in-flight request.
// All visible-state transitions funnel through it: idle -> loading on a
// filter change, loading -> idle on success, loading -> error on failure.
// A new change while loading cancels the in-flight request first, so at most
// one request ever resolves into the visible state.
type Controller struct {
	mu sync.Mutex

	cfg         BootConfig
	fetcher     Fetcher
	renderer    Renderer
	cache       *Cache
	placeholder string

	state          State
	projects       []dto.Project
	categories     []dto.Category
	activeCategory *int
	search         string
	page           int
	totalPages     int
	total          int64
	message        string
	loaded         map[int]bool

	cancel        context.CancelFunc
	pendingSearch string
	debounce      *time.Timer
	debounceGen   uint64
	debounceDelay time.Duration
}

type Option func(*Controller)

// WithDebounce overrides the search quiescence window.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounceDelay = d }
}

// NewController builds a controller from its boot payload. The server-rendered
// result is seeded into the cache under its own canonical key, so remounting
// the same state never refetches.
func NewController(boot BootPayload, fetcher Fetcher, renderer Renderer, opts ...Option) *Controller {
	cfg := boot.Config
	if cfg.ItemsPerPage < 1 {
		cfg.ItemsPerPage = 8
	}
	if cfg.ItemsPerPage > 50 {
		cfg.ItemsPerPage = 50
	}

	c := &Controller{
		cfg:            cfg,
		fetcher:        fetcher,
		renderer:       renderer,
		cache:          NewCache(),
		placeholder:    boot.Placeholder,
		state:          StateIdle,
		projects:       boot.Initial.Projects,
		categories:     boot.Initial.Categories,
		activeCategory: boot.Initial.ActiveCategory,
		search:         strings.TrimSpace(boot.Initial.Search),
		page:           boot.Initial.CurrentPage,
		totalPages:     boot.Initial.TotalPages,
		total:          boot.Initial.Total,
		loaded:         make(map[int]bool),
		debounceDelay:  DefaultDebounce,
	}
	if c.page < 1 {
		c.page = 1
	}
	if c.totalPages < 1 {
		c.totalPages = 1
	}
	// Server-side rendering already painted these images.
	for _, p := range c.projects {
		c.loaded[p.ID] = true
	}

	for _, opt := range opts {
		opt(c)
	}

	initial := boot.Initial.QueryResult
	c.cache.Put(c.currentFilterLocked().Key(), &initial)

	return c
}

// Mount reconciles the address bar with the server-rendered state. The slug
// token from the URL is resolved against the categories the server shipped;
// a refetch happens only when the decoded state actually differs.
func (c *Controller) Mount(rawQuery string) {
	c.mu.Lock()

	before := c.currentFilterLocked()
	urlState := DecodeURLState(rawQuery, c.cfg)

	if c.cfg.EnablePaginator && urlState.Page >= 1 {
		c.page = urlState.Page
	}
	if c.cfg.EnableSearch {
		c.search = urlState.Search
	}
	if c.cfg.EnableFilters && urlState.Category != "" {
		if id, ok := c.resolveTokenLocked(urlState.Category); ok {
			c.activeCategory = &id
		}
	}

	if c.currentFilterLocked().Equal(before) {
		c.mu.Unlock()
		return
	}

	snap, fetch := c.applyLocked()
	c.mu.Unlock()

	c.render(snap)
	if fetch != nil {
		go fetch()
	}
}

// ChangeCategory selects a category (nil means "all"). It resets the page and
// clears the search text: category and free text are mutually exclusive entry
// points into the same result set.
func (c *Controller) ChangeCategory(id *int) {
	if !c.cfg.EnableFilters {
		return
	}

	c.mu.Lock()
	if id != nil {
		v := *id
		c.activeCategory = &v
	} else {
		c.activeCategory = nil
	}
	if c.cfg.EnableSearch {
		c.search = ""
		c.pendingSearch = ""
		c.debounceGen++
		if c.debounce != nil {
			c.debounce.Stop()
		}
	}
	c.page = 1
	snap, fetch := c.applyLocked()
	c.mu.Unlock()

	c.render(snap)
	if fetch != nil {
		go fetch()
	}
}

// ChangePage moves to another page. Out-of-range targets are rejected as a
// no-op; no other field changes.
func (c *Controller) ChangePage(page int) {
	if !c.cfg.EnablePaginator {
		return
	}

	c.mu.Lock()
	if page < 1 || page > c.totalPages || page == c.page {
		c.mu.Unlock()
		return
	}
	c.page = page
	snap, fetch := c.applyLocked()
	c.mu.Unlock()

	c.render(snap)
	if fetch != nil {
		go fetch()
	}
}

// SetSearch records a keystroke. The request fires only after the quiescence
// window elapses with no further input, and resets the page to 1.
func (c *Controller) SetSearch(term string) {
	if !c.cfg.EnableSearch {
		return
	}

	c.mu.Lock()
	c.pendingSearch = term
	if c.debounce != nil {
		c.debounce.Stop()
	}
	// Stop may lose the race with an already-fired timer blocked on the
	// mutex; the generation check makes such a timer a no-op.
	c.debounceGen++
	gen := c.debounceGen
	c.debounce = time.AfterFunc(c.debounceDelay, func() { c.fireSearch(gen) })
	c.mu.Unlock()
}

func (c *Controller) fireSearch(gen uint64) {
	c.mu.Lock()
	if gen != c.debounceGen {
		c.mu.Unlock()
		return
	}
	c.search = strings.TrimSpace(c.pendingSearch)
	c.page = 1
	snap, fetch := c.applyLocked()
	c.mu.Unlock()

	c.render(snap)
	if fetch != nil {
		fetch()
	}
}

// MarkImageLoaded flags one item's image as painted. Purely a UI transition
// aid; cached payloads are unaffected.
func (c *Controller) MarkImageLoaded(projectID int) {
	c.mu.Lock()
	c.loaded[projectID] = true
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.render(snap)
}

// URLQuery encodes the current state for the address bar, preferring the
// category slug over its id so deep links stay readable.
func (c *Controller) URLQuery() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	token := ""
	if c.activeCategory != nil {
		token = strconv.Itoa(*c.activeCategory)
		for _, cat := range c.categories {
			if cat.ID == *c.activeCategory {
				token = cat.Slug
				break
			}
		}
	}

	return EncodeURLState(URLState{Category: token, Search: c.search, Page: c.page}, c.cfg)
}

// Snapshot returns the current visible state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) currentFilterLocked() dto.FilterState {
	return dto.FilterState{
		CategoryID: c.activeCategory,
		Search:     c.search,
		Page:       c.page,
		PageSize:   c.cfg.ItemsPerPage,
	}
}

// applyLocked resolves the current filter snapshot: straight from cache when
// possible (no network, no loading flicker), otherwise it supersedes any
// in-flight request and hands back the fetch to run after unlock.
func (c *Controller) applyLocked() (Snapshot, func()) {
	state := c.currentFilterLocked()

	// The new state supersedes whatever is in flight, even when it resolves
	// from cache: a late response for the old state must never land.
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if cached, ok := c.cache.Get(state.Key()); ok {
		c.applyResultLocked(cached)
		c.state = StateIdle
		return c.snapshotLocked(), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.state = StateLoading
	c.message = ""

	fetch := func() {
		result, err := c.fetcher.Fetch(ctx, state)
		c.complete(ctx, state, result, err)
	}
	return c.snapshotLocked(), fetch
}

// complete applies a finished fetch. The cancellation token decides whether
// the result may touch shared state: a superseded request finds its context
// cancelled and is discarded without any visible effect, regardless of when
// its network call actually returned.
func (c *Controller) complete(ctx context.Context, state dto.FilterState, result *dto.QueryResult, err error) {
	c.mu.Lock()

	if ctx.Err() != nil {
		c.mu.Unlock()
		return
	}

	if err != nil {
		if errors.Is(err, apperror.ErrRequestCancelled) {
			c.mu.Unlock()
			return
		}
		c.state = StateError
		c.projects = nil
		c.total = 0
		c.totalPages = 1
		c.message = emptyMessage
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.render(snap)
		return
	}

	c.decorateLocked(result)
	c.cache.Put(state.Key(), result)
	c.applyResultLocked(result)
	c.state = StateIdle
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.render(snap)
}

// decorateLocked substitutes the placeholder for items without media and
// marks them painted immediately, so the grid never waits on a missing image.
func (c *Controller) decorateLocked(result *dto.QueryResult) {
	for i := range result.Projects {
		if result.Projects[i].Image == "" {
			result.Projects[i].Image = c.placeholder
			c.loaded[result.Projects[i].ID] = true
		}
	}
}

func (c *Controller) applyResultLocked(result *dto.QueryResult) {
	c.projects = result.Projects
	c.total = result.Total
	c.totalPages = result.TotalPages
	if c.totalPages < 1 {
		c.totalPages = 1
	}
	// First paint can arrive through a cache-seeded path with no categories
	// attached yet; only an empty list is ever replaced.
	if len(c.categories) == 0 && len(result.Categories) > 0 {
		c.categories = result.Categories
	}
	c.message = ""
}

func (c *Controller) resolveTokenLocked(token string) (int, bool) {
	if id, err := strconv.Atoi(token); err == nil {
		return id, true
	}
	for _, cat := range c.categories {
		if cat.Slug == token {
			return cat.ID, true
		}
	}
	return 0, false
}

func (c *Controller) snapshotLocked() Snapshot {
	loaded := make(map[int]bool, len(c.loaded))
	for id, ok := range c.loaded {
		loaded[id] = ok
	}

	return Snapshot{
		State:          c.state,
		Projects:       c.projects,
		Categories:     c.categories,
		ActiveCategory: c.activeCategory,
		Search:         c.search,
		Page:           c.page,
		TotalPages:     c.totalPages,
		Total:          c.total,
		Message:        c.message,
		ImagesLoaded:   loaded,
	}
}

func (c *Controller) render(snap Snapshot) {
	if c.renderer != nil {
		c.renderer.Render(snap)
	}
}
