// models/digital_form.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecordStatus is the lifecycle state of a digital form.
// Transitions only move forward: DRAFT -> PENDING -> CONFIRMED | REJECTED.
type RecordStatus string

const (
	StatusDraft     RecordStatus = "DRAFT"
	StatusPending   RecordStatus = "PENDING"
	StatusConfirmed RecordStatus = "CONFIRMED"
	StatusRejected  RecordStatus = "REJECTED"
)

// IsTerminal reports whether no further transition is allowed.
func (s RecordStatus) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusRejected
}

// DigitalForm is one production-tracking document scoped to a date, shift and
// organizational unit. Content is immutable once the form leaves DRAFT except
// through the explicit workflow transitions.
type DigitalForm struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	FormCode    string       `gorm:"size:60;uniqueIndex:idx_form_code,where:deleted_at IS NULL;not null" json:"formCode"`
	FormName    string       `gorm:"size:150;not null" json:"formName"`
	Description string       `gorm:"size:500" json:"description,omitempty"`
	Date        time.Time    `gorm:"type:date;index;not null" json:"date"`
	ShiftType   ShiftType    `gorm:"size:20;not null;default:'REGULAR'" json:"shiftType"`
	Status      RecordStatus `gorm:"size:20;index;not null;default:'DRAFT'" json:"status"`

	FactoryID uuid.UUID  `gorm:"type:uuid;index;not null" json:"factoryId"`
	Factory   *Factory   `gorm:"foreignKey:FactoryID" json:"factory,omitempty"`
	LineID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"lineId"`
	Line      *Line      `gorm:"foreignKey:LineID" json:"line,omitempty"`
	TeamID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"teamId"`
	Team      *Team      `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	GroupID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"groupId"`
	Group     *Group     `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"userId,omitempty"`

	CreatedByID uuid.UUID  `gorm:"type:uuid;index;not null" json:"createdById"`
	CreatedBy   *User      `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	UpdatedByID *uuid.UUID `gorm:"type:uuid" json:"updatedById,omitempty"`

	SubmittedAt       *time.Time `json:"submittedAt,omitempty"`
	ApprovedAt        *time.Time `json:"approvedAt,omitempty"`
	ApprovalRequestID *string    `gorm:"size:100" json:"approvalRequestId,omitempty"`

	IsExported bool   `gorm:"default:false" json:"isExported"`
	SyncStatus string `gorm:"size:20;default:'NONE'" json:"syncStatus"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Entries []ProductionEntry `gorm:"foreignKey:FormID" json:"entries,omitempty"`
}

func (f *DigitalForm) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return
}

// DateKey returns the calendar-day key used by daily breakdowns.
func (f *DigitalForm) DateKey() string {
	return f.Date.Format("2006-01-02")
}
