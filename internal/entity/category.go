package entity

import "time"

// Category is a portfolio taxonomy term. Integer IDs are deliberate: the wire
// contract exposes numeric term identifiers and accepts them back as filters.
type Category struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Slug      string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
