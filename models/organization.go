// models/organization.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Factory is the top of the organizational hierarchy:
// factory -> line -> team -> group -> worker.
type Factory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string    `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Lines []Line `gorm:"foreignKey:FactoryID" json:"lines,omitempty"`
}

type Line struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FactoryID uuid.UUID `gorm:"type:uuid;index;not null" json:"factoryId"`
	Factory   *Factory  `gorm:"foreignKey:FactoryID" json:"factory,omitempty"`
	Code      string    `gorm:"size:20;not null" json:"code"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Teams []Team `gorm:"foreignKey:LineID" json:"teams,omitempty"`
}

type Team struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LineID    uuid.UUID `gorm:"type:uuid;index;not null" json:"lineId"`
	Line      *Line     `gorm:"foreignKey:LineID" json:"line,omitempty"`
	Code      string    `gorm:"size:20;not null" json:"code"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Groups []Group `gorm:"foreignKey:TeamID" json:"groups,omitempty"`
}

type Group struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TeamID    uuid.UUID `gorm:"type:uuid;index;not null" json:"teamId"`
	Team      *Team     `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Code      string    `gorm:"size:20;not null" json:"code"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (f *Factory) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return
}

func (l *Line) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}

func (t *Team) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

func (g *Group) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return
}
