package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Post is a marketplace listing. Posts are hard-deleted.
type Post struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string         `gorm:"size:120;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	PriceCents  int64          `gorm:"not null;default:0" json:"price_cents"`
	Category    string         `gorm:"size:50;index" json:"category"`
	Location    string         `gorm:"size:100" json:"location"`
	ImageURLs   datatypes.JSON `json:"image_urls"`
	Status      string         `gorm:"size:20;default:'active'" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = "active"
	}
	return nil
}

// Images decodes the stored gallery URLs.
func (p *Post) Images() []string {
	if len(p.ImageURLs) == 0 {
		return nil
	}
	var urls []string
	if err := json.Unmarshal(p.ImageURLs, &urls); err != nil {
		return nil
	}
	return urls
}

// SetImages encodes the gallery URLs.
func (p *Post) SetImages(urls []string) {
	if urls == nil {
		urls = []string{}
	}
	b, _ := json.Marshal(urls)
	p.ImageURLs = datatypes.JSON(b)
}

func (Post) TableName() string {
	return "posts"
}
