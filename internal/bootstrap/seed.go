package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"voy.com/portfolio/internal/entity"
	"voy.com/portfolio/internal/modules/portfolio/repository"
)

// Migrate keeps the schema in step with the entities on boot.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Category{},
		&entity.Project{},
	)
}

// SeedPortfolio fills an empty database with sample work so development
// environments render a populated grid immediately. A non-empty projects table
// is left untouched.
func SeedPortfolio(ctx context.Context, db *gorm.DB) error {
	repo := repository.NewRepository(db)

	count, err := repo.CountProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to count projects: %w", err)
	}
	if count > 0 {
		log.Println("projects already present, skipping seed")
		return nil
	}

	categories := []*entity.Category{
		{Name: "Branding", Slug: "branding"},
		{Name: "Web", Slug: "web"},
		{Name: "Editorial", Slug: "editorial"},
		{Name: "Packaging", Slug: "packaging"},
	}
	for _, category := range categories {
		if err := repo.CreateCategory(ctx, category); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", category.Slug, err)
		}
	}

	now := time.Now()
	projects := []*entity.Project{
		{
			Title:       "Atlas Rebrand",
			Slug:        "atlas-rebrand",
			Content:     "Complete identity refresh for a logistics startup.",
			Status:      entity.StatusPublished,
			PublishedAt: now.AddDate(0, 0, -1),
			Categories:  []entity.Category{*categories[0]},
		},
		{
			Title:       "Mercado Online Store",
			Slug:        "mercado-online-store",
			Content:     "E-commerce storefront with a custom checkout flow.",
			Status:      entity.StatusPublished,
			PublishedAt: now.AddDate(0, 0, -3),
			Categories:  []entity.Category{*categories[1]},
		},
		{
			Title:       "Faro Annual Report",
			Slug:        "faro-annual-report",
			Content:     "120-page editorial design for a cultural foundation.",
			Status:      entity.StatusPublished,
			PublishedAt: now.AddDate(0, 0, -7),
			Categories:  []entity.Category{*categories[2]},
		},
		{
			Title:       "Sierra Coffee Packaging",
			Slug:        "sierra-coffee-packaging",
			Content:     "Packaging line for a specialty coffee roaster.",
			Status:      entity.StatusPublished,
			PublishedAt: now.AddDate(0, 0, -10),
			Categories:  []entity.Category{*categories[3], *categories[0]},
		},
		{
			Title:       "Nimbus Product Site",
			Slug:        "nimbus-product-site",
			Content:     "Marketing site and design system for a SaaS product.",
			Status:      entity.StatusPublished,
			PublishedAt: now.AddDate(0, 0, -14),
			Categories:  []entity.Category{*categories[1], *categories[0]},
		},
	}
	for _, project := range projects {
		if err := repo.CreateProject(ctx, project); err != nil {
			return fmt.Errorf("failed to seed project %s: %w", project.Slug, err)
		}
	}

	log.Printf("seeded %d categories and %d projects", len(categories), len(projects))
	return nil
}
