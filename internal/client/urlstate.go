package client

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	paramPage   = "page"
	paramSearch = "search"
	// Category parameter: "c" is current, "cat" is kept for old deep links.
	paramCategory       = "c"
	paramCategoryLegacy = "cat"
)

// URLState is the navigable filter state. Category is a raw id-or-slug token;
// resolving it against the taxonomy happens elsewhere, the codec never talks
// to the repository.
type URLState struct {
	Category string
	Search   string
	Page     int
}

// EncodeURLState renders the state as an address-bar query string. Fields at
// their defaults are omitted so shareable URLs stay minimal; a disabled
// feature's field is never written.
func EncodeURLState(state URLState, cfg BootConfig) string {
	v := url.Values{}

	if cfg.EnablePaginator && state.Page > 1 {
		v.Set(paramPage, strconv.Itoa(state.Page))
	}
	if cfg.EnableFilters && state.Category != "" {
		v.Set(paramCategory, state.Category)
	}
	if cfg.EnableSearch {
		if q := strings.TrimSpace(state.Search); q != "" {
			v.Set(paramSearch, q)
		}
	}

	return v.Encode()
}

// DecodeURLState parses an address-bar query string into a partial filter
// state. Absent fields mean defaults; "c" wins over the legacy "cat" alias
// when both are present; a disabled feature's field is never read.
func DecodeURLState(rawQuery string, cfg BootConfig) URLState {
	state := URLState{Page: 1}

	v, err := url.ParseQuery(rawQuery)
	if err != nil {
		return state
	}

	if cfg.EnablePaginator {
		if p, err := strconv.Atoi(v.Get(paramPage)); err == nil && p > 1 {
			state.Page = p
		}
	}
	if cfg.EnableFilters {
		state.Category = v.Get(paramCategory)
		if state.Category == "" {
			state.Category = v.Get(paramCategoryLegacy)
		}
	}
	if cfg.EnableSearch {
		state.Search = strings.TrimSpace(v.Get(paramSearch))
	}

	return state
}
