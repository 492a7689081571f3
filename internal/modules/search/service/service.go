package search

import (
	"html"
	"log"
	"strconv"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"voy.com/portfolio/internal/entity"
)

const projectIndex = "projects"

type SearchService interface {
	IndexProject(project *entity.Project) error
	DeleteProject(id int) error
	// SearchProjects resolves a free-text term to matching project ids,
	// best match first.
	SearchProjects(query string, limit int) ([]int, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewMeiliSearchService(client meilisearch.ServiceManager) SearchService {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	searchable := []string{"title", "content"}
	if _, err := s.client.Index(projectIndex).UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("Failed to update projects searchable attributes: %v", err)
	}

	sortable := []string{"published_at"}
	if _, err := s.client.Index(projectIndex).UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("Failed to update projects sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

type meiliProjectDoc struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Slug        string `json:"slug"`
	PublishedAt int64  `json:"published_at"`
}

func (s *meiliSearchService) cleanContentForIndex(content string) string {
	// 1. Replace block tags with spaces to prevent text merging
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	// 2. Sanitize
	sanitized := s.sanitizer.Sanitize(content)

	// 3. Unescape entities
	cleanText := html.UnescapeString(sanitized)

	// 4. Normalize whitespace
	cleanText = strings.Join(strings.Fields(cleanText), " ")

	return cleanText
}

func (s *meiliSearchService) IndexProject(project *entity.Project) error {
	doc := meiliProjectDoc{
		ID:          project.ID,
		Title:       project.Title,
		Content:     s.cleanContentForIndex(project.Content),
		Slug:        project.Slug,
		PublishedAt: project.PublishedAt.Unix(),
	}

	task, err := s.client.Index(projectIndex).AddDocuments([]meiliProjectDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed project %d, task id: %d", project.ID, task.TaskUID)
	return nil
}

func (s *meiliSearchService) DeleteProject(id int) error {
	_, err := s.client.Index(projectIndex).DeleteDocument(strconv.Itoa(id))
	return err
}

func (s *meiliSearchService) SearchProjects(query string, limit int) ([]int, error) {
	resp, err := s.client.Index(projectIndex).Search(query, &meilisearch.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		return nil, err
	}

	return hitIDs(resp.Hits), nil
}

func hitIDs(hits []meilisearch.Hit) []int {
	ids := make([]int, 0, len(hits))
	for _, hit := range hits {
		var doc meiliProjectDoc
		if err := hit.DecodeInto(&doc); err != nil {
			continue
		}
		ids = append(ids, doc.ID)
	}
	return ids
}

func strPtr(s string) *string {
	return &s
}
