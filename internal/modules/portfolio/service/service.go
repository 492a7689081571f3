package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"voy.com/portfolio/internal/entity"
	"voy.com/portfolio/internal/modules/portfolio/repository"
	search "voy.com/portfolio/internal/modules/search/service"
	"voy.com/portfolio/pkg/apperror"
	"voy.com/portfolio/pkg/dto"
	"voy.com/portfolio/pkg/storage"
)

const (
	DefaultPageSize = 8
	MaxPageSize     = 50

	// Cap on the id set pulled from the search index per query.
	searchLimit = 200

	cacheKeyPrefix = "portfolio:query:"
)

type Service interface {
	Resolve(ctx context.Context, rawCategory, rawSearch string, rawPage, rawPageSize int) (dto.FilterState, error)
	Execute(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error)
}

type service struct {
	repo        repository.Repository
	images      storage.ImageResolver
	search      search.SearchService
	redisClient *redis.Client
	sanitizer   *bluemonday.Policy
	siteBaseURL string
	cacheTTL    time.Duration
}

// NewService builds the catalog query service. searchSvc and redisClient may
// be nil: search then degrades to repository ILIKE and the shared response
// cache is skipped.
func NewService(repo repository.Repository, images storage.ImageResolver, searchSvc search.SearchService, redisClient *redis.Client, siteBaseURL string, cacheTTL time.Duration) Service {
	return &service{
		repo:        repo,
		images:      images,
		search:      searchSvc,
		redisClient: redisClient,
		sanitizer:   bluemonday.StrictPolicy(),
		siteBaseURL: strings.TrimRight(siteBaseURL, "/"),
		cacheTTL:    cacheTTL,
	}
}

// Execute runs the canonical query and assembles the full paintable payload:
// one page of projects, the in-use category set and pagination totals.
func (s *service) Execute(ctx context.Context, state dto.FilterState) (*dto.QueryResult, error) {
	cacheKey := cacheKeyPrefix + state.Key()
	if cached := s.cacheGet(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	var (
		ids        []int
		searchTerm = strings.TrimSpace(state.Search)
		noMatches  bool
	)
	if searchTerm != "" && s.search != nil {
		found, err := s.search.SearchProjects(searchTerm, searchLimit)
		switch {
		case err != nil:
			log.Printf("search index unavailable, falling back to repository search: %v", err)
		case len(found) == 0:
			noMatches = true
		default:
			ids = found
			searchTerm = "" // already applied through the id predicate
		}
	}

	var (
		projects []*entity.Project
		total    int64
	)
	if !noMatches {
		var err error
		projects, total, err = s.repo.FindProjects(ctx, state.CategoryID, searchTerm, ids, (state.Page-1)*state.PageSize, state.PageSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperror.ErrRepositoryUnavailable, err)
		}
	}

	// The category set is independent of the current filter: the filter bar
	// never loses options as results narrow.
	categories, err := s.repo.FindInUseCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrRepositoryUnavailable, err)
	}

	result := &dto.QueryResult{
		Projects:   make([]dto.Project, 0, len(projects)),
		Categories: make([]dto.Category, 0, len(categories)),
		Total:      total,
		TotalPages: totalPagesFor(total, state.PageSize),
	}

	for _, cat := range categories {
		result.Categories = append(result.Categories, dto.Category{ID: cat.ID, Name: cat.Name, Slug: cat.Slug})
	}

	for _, project := range projects {
		result.Projects = append(result.Projects, s.buildProjectResponse(project))
	}

	s.cachePut(ctx, cacheKey, result)
	return result, nil
}

func (s *service) buildProjectResponse(project *entity.Project) dto.Project {
	src, srcset := s.images.Resolve(project.ImagePublicID)

	wire := dto.Project{
		ID:         project.ID,
		Title:      dto.RenderedTitle{Rendered: project.Title},
		Link:       s.siteBaseURL + "/portfolio/" + project.Slug,
		Image:      src,
		Srcset:     srcset,
		Categories: make([]dto.Category, 0, len(project.Categories)),
	}
	for _, cat := range project.Categories {
		wire.Categories = append(wire.Categories, dto.Category{ID: cat.ID, Name: cat.Name, Slug: cat.Slug})
	}
	return wire
}

// totalPagesFor is ceil(total/pageSize) with a floor of one page: an empty
// result still reports exactly one page.
func totalPagesFor(total int64, pageSize int) int {
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if pages < 1 {
		pages = 1
	}
	return pages
}

func (s *service) cacheGet(ctx context.Context, key string) *dto.QueryResult {
	if s.redisClient == nil {
		return nil
	}

	raw, err := s.redisClient.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("query cache read failed: %v", err)
		}
		return nil
	}

	var result dto.QueryResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil
	}
	return &result
}

func (s *service) cachePut(ctx context.Context, key string, result *dto.QueryResult) {
	if s.redisClient == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return
	}

	if err := s.redisClient.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		log.Printf("query cache write failed: %v", err)
	}
}
