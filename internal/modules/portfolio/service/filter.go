package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"voy.com/portfolio/pkg/apperror"
	"voy.com/portfolio/pkg/dto"
)

// Resolve normalizes raw filter input into a canonical FilterState.
//
// A numeric-looking category token passes through as an id untouched: a
// non-existent id simply matches nothing downstream. A slug is looked up in
// the taxonomy; when it does not resolve the filter is dropped and the named
// ErrUnresolvableCategorySlug outcome is returned next to a usable state, so
// callers can tell "no filter requested" from "filter requested but not found"
// while still degrading to the full catalog.
func (s *service) Resolve(ctx context.Context, rawCategory, rawSearch string, rawPage, rawPageSize int) (dto.FilterState, error) {
	page := rawPage
	if page < 1 {
		page = 1
	}

	size := rawPageSize
	if size < 1 {
		size = 1
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	state := dto.FilterState{
		Search:   strings.TrimSpace(s.sanitizer.Sanitize(rawSearch)),
		Page:     page,
		PageSize: size,
	}

	token := strings.TrimSpace(rawCategory)
	if token == "" {
		return state, nil
	}

	if id, err := strconv.Atoi(token); err == nil {
		state.CategoryID = &id
		return state, nil
	}

	term, err := s.repo.FindCategoryBySlug(ctx, slugify(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return state, apperror.ErrUnresolvableCategorySlug
		}
		return state, fmt.Errorf("%w: %v", apperror.ErrRepositoryUnavailable, err)
	}

	state.CategoryID = &term.ID
	return state, nil
}

// slugify normalizes a raw category token the way taxonomy slugs are stored:
// lowercase, spaces to hyphens, anything else outside [a-z0-9-] dropped.
func slugify(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ' || r == '_':
			b.WriteRune('-')
		}
	}
	return b.String()
}
