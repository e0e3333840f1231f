// models/product.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HandBag is a product master record.
type HandBag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string    `gorm:"size:30;uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Colors []BagColor `gorm:"foreignKey:HandBagID" json:"colors,omitempty"`
}

// BagColor is a color variant of a handbag.
type BagColor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	HandBagID uuid.UUID `gorm:"type:uuid;index;not null" json:"handBagId"`
	Code      string    `gorm:"size:30;not null" json:"code"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BagProcess is a production process step (cutting, sewing, edge painting, ...).
type BagProcess struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string    `gorm:"size:30;uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h *HandBag) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return
}

func (c *BagColor) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

func (p *BagProcess) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
