package client

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"voy.com/portfolio/pkg/apperror"
	"voy.com/portfolio/pkg/dto"
)

type fetchFunc func(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error)

func (f fetchFunc) Fetch(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
	return f(ctx, state)
}

func testBoot() BootPayload {
	return BootPayload{
		Config: BootConfig{
			EnableSearch:    true,
			EnableFilters:   true,
			EnablePaginator: true,
			ItemsPerPage:    8,
		},
		Initial: BootInitial{
			QueryResult: dto.QueryResult{
				Projects: []dto.Project{
					{ID: 1, Title: dto.RenderedTitle{Rendered: "Atlas Rebrand"}, Image: "atlas.jpg"},
				},
				Categories: []dto.Category{
					{ID: 3, Name: "Branding", Slug: "branding"},
					{ID: 4, Name: "Web", Slug: "web"},
				},
				Total:      17,
				TotalPages: 3,
			},
			CurrentPage: 1,
		},
		APIBase:     "/api/portfolio",
		Placeholder: "placeholder.png",
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestControllerMountSameStateDoesNotFetch(t *testing.T) {
	var fetches int32
	fetcher := fetchFunc(func(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
		atomic.AddInt32(&fetches, 1)
		return &dto.QueryResult{TotalPages: 1}, nil
	})

	c := NewController(testBoot(), fetcher, nil)
	c.Mount("")

	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&fetches); n != 0 {
		t.Errorf("fetches = %d, want 0: boot result should serve the initial state", n)
	}
	if snap := c.Snapshot(); snap.State != StateIdle {
		t.Errorf("state = %v, want idle", snap.State)
	}
}

func TestControllerMountResolvesSlugAndRefetches(t *testing.T) {
	var got atomic.Value
	fetcher := fetchFunc(func(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
		got.Store(state)
		return &dto.QueryResult{
			Projects:   []dto.Project{{ID: 2, Image: "mercado.jpg"}},
			Total:      1,
			TotalPages: 1,
		}, nil
	})

	c := NewController(testBoot(), fetcher, nil)
	c.Mount("c=branding&page=2")

	waitFor(t, func() bool {
		snap := c.Snapshot()
		return snap.State == StateIdle && len(snap.Projects) == 1 && snap.Projects[0].ID == 2
	})

	state := got.Load().(dto.FilterState)
	if state.CategoryID == nil || *state.CategoryID != 3 {
		t.Errorf("fetched category = %v, want 3 (resolved from slug)", state.CategoryID)
	}
	if state.Page != 2 {
		t.Errorf("fetched page = %d, want 2", state.Page)
	}
}

func TestControllerMountLegacyCategoryAlias(t *testing.T) {
	var got atomic.Value
	fetcher := fetchFunc(func(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
		got.Store(state)
		return &dto.QueryResult{TotalPages: 1}, nil
	})

	c := NewController(testBoot(), fetcher, nil)
	c.Mount("cat=web")

	waitFor(t, func() bool { return got.Load() != nil })

	state := got.Load().(dto.FilterState)
	if state.CategoryID == nil || *state.CategoryID != 4 {
		t.Errorf("fetched category = %v, want 4 (resolved from legacy alias)", state.CategoryID)
	}
}

func TestControllerCacheHitSkipsSecondFetch(t *testing.T) {
	var fetches int32
	fetcher := fetchFunc(func(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
		atomic.AddInt32(&fetches, 1)
		return &dto.QueryResult{
			Projects:   []dto.Project{{ID: 9, Image: "faro.jpg"}},
			Total:      17,
			TotalPages: 3,
		}, nil
	})

	c := NewController(testBoot(), fetcher, nil)

	c.ChangePage(2)
	waitFor(t, func() bool { return c.Snapshot().Page == 2 && c.Snapshot().State == StateIdle })

	// Back to the boot-seeded page, then forward again: both served from cache.
	c.ChangePage(1)
	c.ChangePage(2)
	waitFor(t, func() bool { return c.Snapshot().Page == 2 && c.Snapshot().State == StateIdle })

	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Errorf("fetches = %d, want 1", n)
	}
}

func TestControllerSupersession(t *testing.T) {
	release := make(chan struct{})
	staleResult := &dto.QueryResult{
		Projects:   []dto.Project{{ID: 100, Image: "stale.jpg"}},
		Total:      1,
		TotalPages: 1,
	}
	freshResult := &dto.QueryResult{
		Projects:   []dto.Project{{ID: 200, Image: "fresh.jpg"}},
		Total:      1,
		TotalPages: 1,
	}

	fetcher := fetchFunc(func(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
		if state.CategoryID == nil {
			// First request hangs until after it has been superseded.
			<-release
			return staleResult, nil
		}
		return freshResult, nil
	})

	c := NewController(testBoot(), fetcher, nil)

	c.ChangePage(2)
	waitFor(t, func() bool { return c.Snapshot().State == StateLoading })

	cat := 3
	c.ChangeCategory(&cat)
	waitFor(t, func() bool {
		snap := c.Snapshot()
		return snap.State == StateIdle && len(snap.Projects) == 1 && snap.Projects[0].ID == 200
	})

	// Let the superseded request finish late; it must not disturb anything.
	close(release)
	time.Sleep(50 * time.Millisecond)

	snap := c.Snapshot()
	if snap.State != StateIdle || len(snap.Projects) != 1 || snap.Projects[0].ID != 200 {
		t.Errorf("late stale result leaked into visible state: %+v", snap.Projects)
	}
}

func TestControllerCacheHitSupersedesInFlightFetch(t *testing.T) {
	release := make(chan struct{})
	staleResult := &dto.QueryResult{
		Projects:   []dto.Project{{ID: 777, Image: "stale.jpg"}},
		Total:      1,
		TotalPages: 3,
	}

	fetcher := fetchFunc(func(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
		<-release
		return staleResult, nil
	})

	c := NewController(testBoot(), fetcher, nil)

	// Page 2 misses the cache and hangs in flight.
	c.ChangePage(2)
	waitFor(t, func() bool { return c.Snapshot().State == StateLoading })

	// Back to page 1, which the boot payload seeded: served from cache,
	// and the hanging request is superseded by it all the same.
	c.ChangePage(1)
	waitFor(t, func() bool {
		snap := c.Snapshot()
		return snap.State == StateIdle && snap.Page == 1
	})

	close(release)
	time.Sleep(50 * time.Millisecond)

	snap := c.Snapshot()
	if snap.Page != 1 || len(snap.Projects) != 1 || snap.Projects[0].ID != 1 {
		t.Errorf("late in-flight result overwrote the cache-served state: page=%d projects=%+v", snap.Page, snap.Projects)
	}
}

func TestControllerSearchDebounce(t *testing.T) {
	var fetches int32
	var got atomic.Value
	fetcher := fetchFunc(func(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
		atomic.AddInt32(&fetches, 1)
		got.Store(state)
		return &dto.QueryResult{TotalPages: 1}, nil
	})

	c := NewController(testBoot(), fetcher, nil, WithDebounce(30*time.Millisecond))

	c.SetSearch("l")
	c.SetSearch("lo")
	c.SetSearch(" logo ")

	waitFor(t, func() bool { return atomic.LoadInt32(&fetches) == 1 })
	time.Sleep(60 * time.Millisecond)

	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Errorf("fetches = %d, want 1: only the last keystroke fires", n)
	}

	state := got.Load().(dto.FilterState)
	if state.Search != "logo" {
		t.Errorf("search = %q, want %q", state.Search, "logo")
	}
	if state.Page != 1 {
		t.Errorf("page = %d, want 1: search resets pagination", state.Page)
	}
}

func TestControllerStaleDebounceTimerIsNoOp(t *testing.T) {
	var fetches int32
	var got atomic.Value
	fetcher := fetchFunc(func(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
		atomic.AddInt32(&fetches, 1)
		got.Store(state)
		return &dto.QueryResult{TotalPages: 1}, nil
	})

	c := NewController(testBoot(), fetcher, nil, WithDebounce(time.Hour))

	c.SetSearch("bran")
	c.mu.Lock()
	stale := c.debounceGen
	c.mu.Unlock()

	c.SetSearch("branding")

	// A timer that fired before Stop caught it carries the older generation
	// and must not issue anything.
	c.fireSearch(stale)
	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&fetches); n != 0 {
		t.Fatalf("fetches = %d, want 0 from a superseded timer", n)
	}

	c.mu.Lock()
	current := c.debounceGen
	c.mu.Unlock()
	c.fireSearch(current)

	waitFor(t, func() bool { return atomic.LoadInt32(&fetches) == 1 })
	state := got.Load().(dto.FilterState)
	if state.Search != "branding" {
		t.Errorf("search = %q, want the latest term only", state.Search)
	}
}

func TestControllerErrorStateAndRecovery(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	fetcher := fetchFunc(func(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
		if fail.Load() {
			return nil, apperror.ErrRepositoryUnavailable
		}
		return &dto.QueryResult{
			Projects:   []dto.Project{{ID: 5, Image: "nimbus.jpg"}},
			Total:      1,
			TotalPages: 1,
		}, nil
	})

	c := NewController(testBoot(), fetcher, nil)

	c.ChangePage(2)
	waitFor(t, func() bool { return c.Snapshot().State == StateError })

	snap := c.Snapshot()
	if snap.Message != "Sin resultados" {
		t.Errorf("message = %q, want %q", snap.Message, "Sin resultados")
	}
	if len(snap.Projects) != 0 {
		t.Errorf("projects = %d, want 0 after error", len(snap.Projects))
	}
	if snap.TotalPages != 1 {
		t.Errorf("totalPages = %d, want 1 after error", snap.TotalPages)
	}

	// A cached state recovers without a network round-trip.
	c.ChangeCategory(nil)
	waitFor(t, func() bool { return c.Snapshot().State == StateIdle })
	if snap := c.Snapshot(); len(snap.Projects) != 1 || snap.Projects[0].ID != 1 {
		t.Errorf("cache recovery projects = %+v, want boot projects", snap.Projects)
	}

	// And an uncached one recovers through a successful fetch.
	fail.Store(false)
	cat := 4
	c.ChangeCategory(&cat)
	waitFor(t, func() bool {
		snap := c.Snapshot()
		return snap.State == StateIdle && len(snap.Projects) == 1 && snap.Projects[0].ID == 5
	})
}

func TestControllerPageRejection(t *testing.T) {
	var fetches int32
	fetcher := fetchFunc(func(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
		atomic.AddInt32(&fetches, 1)
		return &dto.QueryResult{TotalPages: 3}, nil
	})

	c := NewController(testBoot(), fetcher, nil)

	c.ChangePage(0)
	c.ChangePage(4)
	c.ChangePage(1)

	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&fetches); n != 0 {
		t.Errorf("fetches = %d, want 0: out-of-range and current page are no-ops", n)
	}
	if snap := c.Snapshot(); snap.Page != 1 {
		t.Errorf("page = %d, want 1", snap.Page)
	}
}

func TestControllerCategoryChangeClearsSearch(t *testing.T) {
	fetcher := fetchFunc(func(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
		return &dto.QueryResult{TotalPages: 1}, nil
	})

	c := NewController(testBoot(), fetcher, nil, WithDebounce(time.Millisecond))

	c.SetSearch("logo")
	waitFor(t, func() bool { return c.Snapshot().Search == "logo" })

	cat := 3
	c.ChangeCategory(&cat)
	waitFor(t, func() bool {
		snap := c.Snapshot()
		return snap.State == StateIdle && snap.ActiveCategory != nil
	})

	snap := c.Snapshot()
	if snap.Search != "" {
		t.Errorf("search = %q, want cleared on category change", snap.Search)
	}
	if snap.Page != 1 {
		t.Errorf("page = %d, want 1", snap.Page)
	}
}

func TestControllerPlaceholderSubstitution(t *testing.T) {
	fetcher := fetchFunc(func(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
		return &dto.QueryResult{
			Projects:   []dto.Project{{ID: 7}, {ID: 8, Image: "real.jpg"}},
			Total:      2,
			TotalPages: 3,
		}, nil
	})

	c := NewController(testBoot(), fetcher, nil)

	c.ChangePage(2)
	waitFor(t, func() bool { return c.Snapshot().State == StateIdle && c.Snapshot().Page == 2 })

	snap := c.Snapshot()
	if snap.Projects[0].Image != "placeholder.png" {
		t.Errorf("image = %q, want placeholder for items without media", snap.Projects[0].Image)
	}
	if !snap.ImagesLoaded[7] {
		t.Error("placeholder items should be marked loaded immediately")
	}
	if snap.ImagesLoaded[8] {
		t.Error("real images start unloaded until the surface reports them")
	}

	c.MarkImageLoaded(8)
	if !c.Snapshot().ImagesLoaded[8] {
		t.Error("MarkImageLoaded should flag the item")
	}
}

func TestControllerURLQueryPrefersSlug(t *testing.T) {
	fetcher := fetchFunc(func(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
		return &dto.QueryResult{TotalPages: 1}, nil
	})

	c := NewController(testBoot(), fetcher, nil)

	cat := 3
	c.ChangeCategory(&cat)
	waitFor(t, func() bool { return c.Snapshot().State == StateIdle && c.Snapshot().ActiveCategory != nil })

	if got := c.URLQuery(); got != "c=branding" {
		t.Errorf("URLQuery() = %q, want %q", got, "c=branding")
	}

	// An id without a known slug falls back to the numeric token.
	unknown := 99
	c.ChangeCategory(&unknown)
	waitFor(t, func() bool {
		snap := c.Snapshot()
		return snap.ActiveCategory != nil && *snap.ActiveCategory == 99 && snap.State == StateIdle
	})
	if got := c.URLQuery(); got != "c=99" {
		t.Errorf("URLQuery() = %q, want %q", got, "c=99")
	}
}

func TestControllerDisabledFeaturesAreNoOps(t *testing.T) {
	var fetches int32
	fetcher := fetchFunc(func(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
		atomic.AddInt32(&fetches, 1)
		return &dto.QueryResult{TotalPages: 3}, nil
	})

	boot := testBoot()
	boot.Config.EnableSearch = false
	boot.Config.EnableFilters = false
	boot.Config.EnablePaginator = false

	c := NewController(boot, fetcher, nil)

	cat := 3
	c.ChangeCategory(&cat)
	c.ChangePage(2)
	c.SetSearch("logo")
	c.Mount("c=branding&search=logo&page=2")

	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&fetches); n != 0 {
		t.Errorf("fetches = %d, want 0 with every feature disabled", n)
	}
}

func TestControllerRendersOnTransitions(t *testing.T) {
	fetcher := fetchFunc(func(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
		return &dto.QueryResult{Projects: []dto.Project{{ID: 2, Image: "x.jpg"}}, Total: 1, TotalPages: 3}, nil
	})

	var states []State
	var mu = make(chan struct{}, 1)
	mu <- struct{}{}
	renderer := RenderFunc(func(snap Snapshot) {
		<-mu
		states = append(states, snap.State)
		mu <- struct{}{}
	})

	c := NewController(testBoot(), fetcher, renderer)

	c.ChangePage(2)
	waitFor(t, func() bool { return c.Snapshot().State == StateIdle && c.Snapshot().Page == 2 })

	<-mu
	got := strings.Builder{}
	for _, s := range states {
		got.WriteString(s.String())
		got.WriteString(" ")
	}
	mu <- struct{}{}

	if !strings.Contains(got.String(), "loading") || !strings.Contains(got.String(), "idle") {
		t.Errorf("render sequence = %q, want loading then idle", got.String())
	}
}

func TestControllerRegistryIsolation(t *testing.T) {
	fetcher := fetchFunc(func(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
		return &dto.QueryResult{TotalPages: 3}, nil
	})

	reg := NewRegistry()
	a := reg.Mount(testBoot(), fetcher, nil)
	b := reg.Mount(testBoot(), fetcher, nil)

	if a.ID == b.ID {
		t.Error("instances must get distinct ids")
	}
	if len(reg.Instances()) != 2 {
		t.Errorf("Instances() = %d, want 2", len(reg.Instances()))
	}

	a.Controller.ChangePage(2)
	waitFor(t, func() bool { return a.Controller.Snapshot().Page == 2 })

	if b.Controller.Snapshot().Page != 1 {
		t.Error("instances must not share filter state")
	}

	var errFetch = fetchFunc(func(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
		return nil, errors.New("down")
	})
	cErr := reg.Mount(testBoot(), errFetch, nil)
	cErr.Controller.ChangePage(2)
	waitFor(t, func() bool { return cErr.Controller.Snapshot().State == StateError })

	if a.Controller.Snapshot().State == StateError || b.Controller.Snapshot().State == StateError {
		t.Error("one instance failing must not affect the others")
	}
}
