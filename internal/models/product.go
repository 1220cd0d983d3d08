package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRecord is the local ledger entry written after a product is created
// on the remote shop.
type ProductRecord struct {
	ID              string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	RemoteID        string     `json:"remote_id" gorm:"index;not null"`
	ShopID          string     `json:"shop_id" gorm:"index"`
	Title           string     `json:"title" gorm:"not null"`
	BlueprintID     int        `json:"blueprint_id"`
	PrintProviderID int        `json:"print_provider_id"`
	VariantCount    int        `json:"variant_count"`
	SourcePath      string     `json:"source_path"`
	Status          string     `json:"status" gorm:"default:CREATED"`
	Payload         JSONB      `json:"payload" gorm:"type:text"`
	PublishedAt     *time.Time `json:"published_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

const (
	ProductStatusCreated   = "CREATED"
	ProductStatusPublished = "PUBLISHED"
	ProductStatusDeleted   = "DELETED"
)

func (p *ProductRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// ImageRecord is the ledger entry for an uploaded image asset.
type ImageRecord struct {
	ID         string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	AssetID    string    `json:"asset_id" gorm:"index;not null"`
	FileName   string    `json:"file_name"`
	Source     string    `json:"source"`
	URL        string    `json:"url"`
	PreviewURL string    `json:"preview_url"`
	CreatedAt  time.Time `json:"created_at"`
}

func (i *ImageRecord) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}
