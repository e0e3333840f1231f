// models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role constants for the factory hierarchy.
const (
	RoleSuperAdmin  = "SUPER_ADMIN"
	RoleAdmin       = "ADMIN"
	RoleLineManager = "LINE_MANAGER"
	RoleTeamLeader  = "TEAM_LEADER"
	RoleWorker      = "WORKER"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeCode string     `gorm:"size:30;uniqueIndex;not null" json:"employeeCode"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	Email        string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         string     `gorm:"size:30;not null;default:'WORKER'" json:"role"`
	GroupID      *uuid.UUID `gorm:"type:uuid;index" json:"groupId,omitempty"`
	Group        *Group     `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	IsActive     bool       `gorm:"default:true" json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// IsAdminTier reports whether the user holds an admin-tier role. Admin-tier
// actors may act on any form regardless of who created it.
func (u *User) IsAdminTier() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// CanCreateForms reports whether the role is allowed to create digital forms.
func (u *User) CanCreateForms() bool {
	switch u.Role {
	case RoleTeamLeader, RoleLineManager, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanEditForm is the single ownership check reused across update, delete and
// submit: the creator may act, and so may any admin-tier role.
func (u *User) CanEditForm(form *DigitalForm) bool {
	return form.CreatedByID == u.ID || u.IsAdminTier()
}
