package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlaceholderImage is shown for products without any uploaded image.
const PlaceholderImage = "https://via.placeholder.com/600x600?text=No+Image"

type Product struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string         `gorm:"not null;index" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       float64        `gorm:"not null;index" json:"price"`
	CategoryID  string         `gorm:"type:varchar(36);index" json:"category_id"`
	ImageURLs   []string       `gorm:"type:text;serializer:json" json:"image_urls"`
	Sizes       []string       `gorm:"type:text;serializer:json" json:"sizes"`
	Colors      []string       `gorm:"type:text;serializer:json" json:"colors"`
	Stock       int            `gorm:"default:0" json:"stock"`
	IsFeatured  bool           `gorm:"default:false;index" json:"is_featured"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PrimaryImage returns the canonical (first) image URL.
func (p *Product) PrimaryImage() string {
	if len(p.ImageURLs) > 0 && p.ImageURLs[0] != "" {
		return p.ImageURLs[0]
	}
	return PlaceholderImage
}

// OffersVariant reports whether color and size are among the product's options.
// An empty option list accepts any value.
func (p *Product) OffersVariant(color, size string) bool {
	return contains(p.Colors, color) && contains(p.Sizes, size)
}

func contains(options []string, v string) bool {
	if len(options) == 0 {
		return true
	}
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
