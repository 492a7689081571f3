package entity

import "time"

const StatusPublished = "published"

type Project struct {
	ID            int        `gorm:"primaryKey" json:"id"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Slug          string     `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Content       string     `gorm:"type:text" json:"content"`
	ImagePublicID string     `gorm:"size:255" json:"image_public_id"`
	Status        string     `gorm:"size:20;not null;default:published;index" json:"status"`
	PublishedAt   time.Time  `gorm:"index" json:"published_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	Categories    []Category `gorm:"many2many:project_categories" json:"categories"`
}
