package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog product.
//
// SKU and Slug are independent unique identities: an imported row matching
// an existing product on either one is merged into that product rather than
// inserted as a duplicate. Prices are stored as decimal strings to avoid
// floating point drift.
type Product struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SKU           string    `json:"sku" gorm:"not null;uniqueIndex"`
	Slug          string    `json:"slug" gorm:"not null;uniqueIndex"`
	Name          string    `json:"name" gorm:"not null"`
	Description   *string   `json:"description,omitempty"`
	Price         string    `json:"price" gorm:"type:decimal(12,2);not null;default:0"`
	OriginalPrice *string   `json:"originalPrice,omitempty" gorm:"type:decimal(12,2)"`
	Stock         int       `json:"stock" gorm:"not null;default:0"`
	CategoryID    uuid.UUID `json:"categoryId" gorm:"type:uuid;not null;index"`
	ImageURL      *string   `json:"imageUrl,omitempty"`
	IsActive      bool      `json:"isActive" gorm:"default:true"`
	IsFeatured    bool      `json:"isFeatured" gorm:"default:false"`
	Supplier      *string   `json:"supplier,omitempty" gorm:"index"`
	Attributes    *JSON     `json:"attributes,omitempty" gorm:"type:jsonb"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// ProductListResponse represents a paginated list of products
type ProductListResponse struct {
	Success    bool            `json:"success"`
	Data       []Product       `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}
