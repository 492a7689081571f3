package repository

import (
	"context"

	"gorm.io/gorm"
	"voy.com/portfolio/internal/entity"
)

type Repository interface {
	// FindProjects returns one page of published projects under a stable
	// ordering (publication date, then id) so that page+size+predicate always
	// reproduce the same slice. A nil ids slice means no id predicate; a
	// non-empty one replaces the free-text search (the ids already encode it).
	FindProjects(ctx context.Context, categoryID *int, search string, ids []int, offset, limit int) ([]*entity.Project, int64, error)
	// FindInUseCategories returns every category with at least one published
	// project, independent of any current filter.
	FindInUseCategories(ctx context.Context) ([]*entity.Category, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*entity.Category, error)
	FindCategoryByID(ctx context.Context, id int) (*entity.Category, error)
	AllPublished(ctx context.Context) ([]*entity.Project, error)
	CreateProject(ctx context.Context, project *entity.Project) error
	CreateCategory(ctx context.Context, category *entity.Category) error
	CountProjects(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindProjects(ctx context.Context, categoryID *int, search string, ids []int, offset, limit int) ([]*entity.Project, int64, error) {
	var projects []*entity.Project
	var total int64

	query := r.db.WithContext(ctx).
		Preload("Categories").
		Where("projects.status = ?", entity.StatusPublished)

	if categoryID != nil {
		query = query.
			Joins("JOIN project_categories pc ON pc.project_id = projects.id").
			Where("pc.category_id = ?", *categoryID)
	}

	if len(ids) > 0 {
		query = query.Where("projects.id IN ?", ids)
	} else if search != "" {
		query = query.Where("title ILIKE ? OR content ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Model(&entity.Project{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("published_at DESC").
		Order("projects.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

func (r *repository) FindInUseCategories(ctx context.Context) ([]*entity.Category, error) {
	var categories []*entity.Category

	if err := r.db.WithContext(ctx).
		Joins("JOIN project_categories pc ON pc.category_id = categories.id").
		Joins("JOIN projects p ON p.id = pc.project_id").
		Where("p.status = ?", entity.StatusPublished).
		Distinct().
		Order("categories.name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *repository) FindCategoryBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) FindCategoryByID(ctx context.Context, id int) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) AllPublished(ctx context.Context) ([]*entity.Project, error) {
	var projects []*entity.Project
	if err := r.db.WithContext(ctx).
		Where("status = ?", entity.StatusPublished).
		Order("published_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *repository) CreateProject(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *repository) CreateCategory(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) CountProjects(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Project{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
